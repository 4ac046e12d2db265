// Package escrow implements a trustless token swap between two parties.
//
// The initializer deposits an asset into a custody token account owned by
// a program derived authority, and records the amount of a counter asset
// they expect in return. A taker later settles the swap in a single
// transaction: their payment, the custody payout, and the cleanup of both
// escrow accounts all succeed or fail together, so neither party can end
// up holding both assets.
package escrow

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/escrow-payments/escrow-server/pkg/solana"
	"github.com/escrow-payments/escrow-server/pkg/solana/system"
	"github.com/escrow-payments/escrow-server/pkg/solana/token"
)

// Processor executes escrow instructions against the accounts provided by
// the host transaction runtime.
type Processor struct {
	log     *logrus.Entry
	invoker solana.Invoker
}

// NewProcessor returns a Processor that performs token program calls
// through the provided invoker.
func NewProcessor(invoker solana.Invoker) *Processor {
	return &Processor{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type": "solana/escrow/processor",
		}),
		invoker: invoker,
	}
}

// Process decodes and executes a single escrow instruction. The accounts
// slice is the instruction's account list in wire order.
func (p *Processor) Process(program ed25519.PublicKey, accounts []*solana.Account, data []byte) error {
	instruction, err := UnmarshalInstructionData(data)
	if err != nil {
		return err
	}

	switch instruction.Command {
	case CommandInitEscrow:
		return p.processInitEscrow(program, accounts, instruction.Amount)
	case CommandExchange:
		return p.processExchange(program, accounts, instruction.Amount)
	default:
		return ErrorInvalidInstruction
	}
}

func (p *Processor) processInitEscrow(program ed25519.PublicKey, accounts []*solana.Account, expectedAmount uint64) error {
	log := p.log.WithField("method", "processInitEscrow")

	if len(accounts) < 6 {
		return solana.ErrNotEnoughAccountKeys
	}

	initializer := accounts[0]
	if !initializer.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	custody := accounts[1]

	initializerReceive := accounts[2]
	if !bytes.Equal(initializerReceive.Owner, token.ProgramKey) {
		return solana.ErrIncorrectProgramID
	}

	escrowAccount := accounts[3]

	rent, err := system.RentFromAccount(accounts[4])
	if err != nil {
		return err
	}
	if !rent.IsExempt(escrowAccount.Lamports, len(escrowAccount.Data)) {
		return ErrorNotRentExempt
	}

	var state State
	if err := state.UnmarshalUnchecked(escrowAccount.Data); err != nil {
		return err
	}

	state.IsInitialized = true
	state.Initializer = initializer.Key
	state.CustodyAccount = custody.Key
	state.InitializerReceiveAccount = initializerReceive.Key
	state.ExpectedAmount = expectedAmount

	if err := state.Marshal(escrowAccount.Data); err != nil {
		return err
	}

	authority, _, err := GetAuthorityAddress(program)
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow authority")
	}

	log.WithFields(logrus.Fields{
		"custody":         base58.Encode(custody.Key),
		"expected_amount": expectedAmount,
	}).Debug("transferring custody ownership to the escrow authority")

	return p.invoker.Invoke(token.SetAuthority(
		custody.Key,
		initializer.Key,
		authority,
		token.AuthorityTypeAccountHolder,
	))
}

func (p *Processor) processExchange(program ed25519.PublicKey, accounts []*solana.Account, amount uint64) error {
	log := p.log.WithField("method", "processExchange")

	if len(accounts) < 9 {
		return solana.ErrNotEnoughAccountKeys
	}

	taker := accounts[0]
	if !taker.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	takerSend := accounts[1]
	takerReceive := accounts[2]
	custody := accounts[3]
	initializerMain := accounts[4]
	initializerReceive := accounts[5]
	escrowAccount := accounts[6]

	var custodyState token.Account
	if !custodyState.Unmarshal(custody.Data) {
		return solana.ErrInvalidAccountData
	}

	// The taker declares the custody balance they expect to receive. Any
	// drift between the offer they saw and the deposit on chain fails the
	// exchange instead of settling on surprise terms.
	if custodyState.Amount != amount {
		return ErrorInvalidAmount
	}

	var state State
	if err := state.Unmarshal(escrowAccount.Data); err != nil {
		return err
	}
	if !bytes.Equal(state.CustodyAccount, custody.Key) {
		return solana.ErrInvalidAccountData
	}
	if !bytes.Equal(state.Initializer, initializerMain.Key) {
		return solana.ErrInvalidAccountData
	}
	if !bytes.Equal(state.InitializerReceiveAccount, initializerReceive.Key) {
		return solana.ErrInvalidAccountData
	}

	authority, bump, err := GetAuthorityAddress(program)
	if err != nil {
		return errors.Wrap(err, "failed to derive escrow authority")
	}

	log.WithFields(logrus.Fields{
		"escrow":          base58.Encode(escrowAccount.Key),
		"amount":          amount,
		"expected_amount": state.ExpectedAmount,
	}).Debug("settling exchange")

	err = p.invoker.Invoke(token.Transfer(
		takerSend.Key,
		initializerReceive.Key,
		taker.Key,
		state.ExpectedAmount,
	))
	if err != nil {
		return err
	}

	err = p.invoker.InvokeSigned(token.Transfer(
		custody.Key,
		takerReceive.Key,
		authority,
		amount,
	), authoritySeed, []byte{bump})
	if err != nil {
		return err
	}

	err = p.invoker.InvokeSigned(token.CloseAccount(
		custody.Key,
		initializerMain.Key,
		authority,
	), authoritySeed, []byte{bump})
	if err != nil {
		return err
	}

	// Return the state account's rent to the initializer and clear the
	// record so the account cannot be settled twice.
	if escrowAccount.Lamports > math.MaxUint64-initializerMain.Lamports {
		return ErrorAmountOverflow
	}
	initializerMain.Lamports += escrowAccount.Lamports
	escrowAccount.Lamports = 0
	escrowAccount.Data = nil

	return nil
}
