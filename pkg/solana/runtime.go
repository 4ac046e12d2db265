package solana

import (
	"crypto/ed25519"
)

// Account is the runtime view of a transaction account handed to an
// instruction processor. Lamports and Data are owned by the host for the
// duration of the instruction; mutations are discarded along with the rest
// of the transaction if any instruction fails.
type Account struct {
	Key      ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte

	IsSigner   bool
	IsWritable bool
}

// Invoker executes cross-program calls on behalf of the running program.
//
// Invoke requires every signer listed in the instruction's account metas
// to have signed the outer transaction. InvokeSigned additionally treats
// the program address derived from signerSeeds (and the invoking program's
// id) as a signer, which is how a program authorizes actions as one of its
// derived authorities.
type Invoker interface {
	Invoke(instruction Instruction) error
	InvokeSigned(instruction Instruction, signerSeeds ...[]byte) error
}
