package escrow

import (
	"crypto/ed25519"

	"github.com/escrow-payments/escrow-server/pkg/solana"
	"github.com/escrow-payments/escrow-server/pkg/solana/binary"
)

// AccountSize is the serialized size of the escrow state record.
//
// The layout is fixed offset, little endian:
//
//	is_initialized              : u8  (0 or 1)
//	initializer                 : 32 bytes
//	custody_account             : 32 bytes
//	initializer_receive_account : 32 bytes
//	expected_amount             : u64
const AccountSize = 1 + 32 + 32 + 32 + 8

// State is the record persisted in an escrow state account for the
// lifetime of an open offer.
type State struct {
	// IsInitialized is set once the record has been populated by an
	// InitEscrow instruction.
	IsInitialized bool
	// Initializer is the main (fee paying) account of the party that
	// opened the escrow. Rent reclaimed at settlement is returned here.
	Initializer ed25519.PublicKey
	// CustodyAccount is the token account holding the deposit, owned by
	// the program's derived authority.
	CustodyAccount ed25519.PublicKey
	// InitializerReceiveAccount is the token account that receives the
	// counter asset at settlement.
	InitializerReceiveAccount ed25519.PublicKey
	// ExpectedAmount is the counter asset amount the initializer demands.
	ExpectedAmount uint64
}

// Marshal serializes the record into dst, which must be exactly
// AccountSize bytes.
func (s *State) Marshal(dst []byte) error {
	if len(dst) != AccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int
	binary.PutBool(dst, s.IsInitialized, &offset)
	binary.PutKey32(dst[offset:], s.Initializer, &offset)
	binary.PutKey32(dst[offset:], s.CustodyAccount, &offset)
	binary.PutKey32(dst[offset:], s.InitializerReceiveAccount, &offset)
	binary.PutUint64(dst[offset:], s.ExpectedAmount, &offset)
	return nil
}

// Unmarshal deserializes an initialized record, returning
// solana.ErrUninitializedAccount if the record has not yet been populated.
func (s *State) Unmarshal(src []byte) error {
	if err := s.UnmarshalUnchecked(src); err != nil {
		return err
	}
	if !s.IsInitialized {
		return solana.ErrUninitializedAccount
	}
	return nil
}

// UnmarshalUnchecked deserializes the record without requiring it to be
// initialized. Callers use this on fresh accounts during initialization.
func (s *State) UnmarshalUnchecked(src []byte) error {
	if len(src) != AccountSize {
		return solana.ErrInvalidAccountData
	}

	var offset int
	if !binary.GetBool(src, &s.IsInitialized, &offset) {
		return solana.ErrInvalidAccountData
	}
	binary.GetKey32(src[offset:], &s.Initializer, &offset)
	binary.GetKey32(src[offset:], &s.CustodyAccount, &offset)
	binary.GetKey32(src[offset:], &s.InitializerReceiveAccount, &offset)
	binary.GetUint64(src[offset:], &s.ExpectedAmount, &offset)
	return nil
}
