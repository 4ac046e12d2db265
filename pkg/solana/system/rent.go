package system

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/escrow-payments/escrow-server/pkg/solana"
	"github.com/escrow-payments/escrow-server/pkg/solana/binary"
)

// RentSize is the serialized size of the rent sysvar state.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L12-L24
const RentSize = 8 + 8 + 1

const (
	// Default cluster rent parameters.
	defaultLamportsPerByteYear = 1_000_000_000 / 100 * 365 / (1024 * 1024)
	defaultExemptionThreshold  = 2.0
	defaultBurnPercent         = 50

	// Accounts carry a fixed storage overhead on top of their data.
	accountStorageOverhead = 128
)

var ErrInvalidRentSysVar = errors.New("invalid rent sysvar account")

// Rent holds the rent sysvar state: the cost of storing data on chain, and
// the threshold at which an account balance exempts it from rent collection.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the rent parameters used by mainnet and test
// validators.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: defaultLamportsPerByteYear,
		ExemptionThreshold:  defaultExemptionThreshold,
		BurnPercent:         defaultBurnPercent,
	}
}

// RentFromAccount unpacks the rent sysvar state from the provided account.
// The account key must be the rent sysvar address.
func RentFromAccount(account *solana.Account) (rent Rent, err error) {
	if !bytes.Equal(account.Key, RentSysVar) {
		return rent, ErrInvalidRentSysVar
	}
	if err := rent.Unmarshal(account.Data); err != nil {
		return rent, err
	}

	return rent, nil
}

// MinimumBalance returns the minimum balance for an account of the given
// data length to be exempt from rent collection.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	byteYears := uint64(dataLen+accountStorageOverhead) * r.LamportsPerByteYear
	return uint64(float64(byteYears) * r.ExemptionThreshold)
}

// IsExempt reports whether an account with the given balance and data
// length is exempt from rent collection.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

func (r Rent) Marshal() []byte {
	b := make([]byte, RentSize)

	var offset int
	binary.PutUint64(b[offset:], r.LamportsPerByteYear, &offset)
	binary.PutFloat64(b[offset:], r.ExemptionThreshold, &offset)
	binary.PutUint8(b[offset:], r.BurnPercent, &offset)

	return b
}

func (r *Rent) Unmarshal(data []byte) error {
	if len(data) != RentSize {
		return ErrInvalidRentSysVar
	}

	var offset int
	binary.GetUint64(data[offset:], &r.LamportsPerByteYear, &offset)
	binary.GetFloat64(data[offset:], &r.ExemptionThreshold, &offset)
	binary.GetUint8(data[offset:], &r.BurnPercent, &offset)

	return nil
}
