package solana

import (
	"fmt"

	"github.com/pkg/errors"
)

// Program errors surfaced by an instruction processor. These mirror the
// runtime's ProgramError variants and abort the whole transaction when
// returned from an instruction handler.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/program_error.rs
var (
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrInvalidInstructionData    = errors.New("invalid instruction data")
	ErrInvalidAccountData        = errors.New("invalid account data")
	ErrAccountDataTooSmall       = errors.New("account data too small")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrIncorrectProgramID        = errors.New("incorrect program id")
	ErrMissingRequiredSignature  = errors.New("missing required signature")
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrUninitializedAccount      = errors.New("uninitialized account")
	ErrNotEnoughAccountKeys      = errors.New("not enough account keys")
)

// CustomError is the numerical error returned by a non-system program.
type CustomError uint32

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %#x", uint32(c))
}
