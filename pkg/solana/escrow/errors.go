package escrow

import (
	"github.com/escrow-payments/escrow-server/pkg/solana"
)

// Custom errors surfaced by the escrow program. The values are stable and
// appear as `custom program error` codes in transaction metadata.
const (
	// ErrorInvalidInstruction indicates the instruction data could not be
	// decoded into a known command.
	ErrorInvalidInstruction solana.CustomError = iota

	// ErrorNotRentExempt indicates the escrow state account was funded
	// below the rent-exemption threshold for its size.
	ErrorNotRentExempt

	// ErrorInvalidAmount indicates the custody balance did not match the
	// amount declared in the exchange instruction.
	ErrorInvalidAmount

	// ErrorAmountOverflow indicates a lamport balance would have
	// overflowed while settling the exchange.
	ErrorAmountOverflow
)
