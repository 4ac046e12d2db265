package escrow

import (
	"crypto/ed25519"

	"github.com/escrow-payments/escrow-server/pkg/solana"
)

var authoritySeed = []byte("escrow")

// GetAuthorityAddress derives the escrow program's custody authority for
// the provided program id, along with the bump seed that proves the
// address is off curve.
//
// The authority is shared by every escrow under the program. It owns all
// custody token accounts between initialization and settlement, and only
// the program can sign as it.
func GetAuthorityAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, authoritySeed)
}
