package escrow

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/escrow-payments/escrow-server/pkg/solana"
	"github.com/escrow-payments/escrow-server/pkg/solana/system"
	"github.com/escrow-payments/escrow-server/pkg/solana/token"
)

var (
	// ErrEscrowNotFound indicates there is no account at the escrow state
	// address.
	ErrEscrowNotFound = errors.New("escrow not found")
	// ErrInvalidEscrowAccount indicates an account exists at the escrow
	// state address, but it is not an initialized record owned by the
	// program.
	ErrInvalidEscrowAccount = errors.New("invalid escrow account")
	// ErrInsufficientDeposit indicates the deposit source holds less than
	// the requested deposit amount.
	ErrInsufficientDeposit = errors.New("insufficient deposit balance")
)

// Client builds and submits escrow transactions against a deployed
// instance of the program.
type Client struct {
	log     *logrus.Entry
	sc      solana.Client
	program ed25519.PublicKey
}

// NewClient creates a Client for the program deployed at the provided
// address.
func NewClient(sc solana.Client, program ed25519.PublicKey) *Client {
	return &Client{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type":    "solana/escrow/client",
			"program": base58.Encode(program),
		}),
		sc:      sc,
		program: program,
	}
}

// InitializeEscrowResult describes an escrow opened by InitializeEscrow.
type InitializeEscrowResult struct {
	Signature solana.Signature

	// EscrowAccount is the state account address, and the handle a taker
	// needs to settle the swap.
	EscrowAccount ed25519.PublicKey
	// CustodyAccount is the token account holding the deposit.
	CustodyAccount ed25519.PublicKey
}

// InitializeEscrow opens an escrow in a single transaction: it creates and
// funds the custody token account, moves depositAmount of mint into it
// from depositSource, creates the state account, and executes the
// InitEscrow instruction.
//
// receiveAccount is the initializer's token account for the counter asset;
// the taker's payment of expectedAmount lands there at settlement.
func (c *Client) InitializeEscrow(
	initializer ed25519.PrivateKey,
	mint ed25519.PublicKey,
	depositSource ed25519.PublicKey,
	receiveAccount ed25519.PublicKey,
	depositAmount uint64,
	expectedAmount uint64,
) (*InitializeEscrowResult, error) {
	initializerPub := initializer.Public().(ed25519.PublicKey)

	// Fail fast on a deposit source that isn't a token account of the
	// offered mint, or that can't cover the deposit.
	source, err := token.NewClient(c.sc, mint).GetAccount(depositSource, solana.CommitmentConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "invalid deposit source")
	}
	if source.Amount < depositAmount {
		return nil, ErrInsufficientDeposit
	}

	custodyPub, custodyPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate custody account")
	}
	statePub, statePriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate state account")
	}

	custodyRent, err := c.sc.GetMinimumBalanceForRentExemption(token.AccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get custody rent")
	}
	stateRent, err := c.sc.GetMinimumBalanceForRentExemption(AccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get state rent")
	}

	txn := solana.NewTransaction(
		initializerPub,
		system.CreateAccount(initializerPub, custodyPub, token.ProgramKey, custodyRent, token.AccountSize),
		token.InitializeAccount(custodyPub, mint, initializerPub),
		token.Transfer(depositSource, custodyPub, initializerPub, depositAmount),
		system.CreateAccount(initializerPub, statePub, c.program, stateRent, AccountSize),
		InitEscrow(c.program, initializerPub, custodyPub, receiveAccount, statePub, expectedAmount),
	)

	bh, err := c.sc.GetLatestBlockhash()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest blockhash")
	}
	txn.SetBlockhash(bh)

	if err := txn.Sign(initializer, custodyPriv, statePriv); err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := c.sc.SubmitTransaction(txn, solana.CommitmentConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit transaction")
	}

	c.log.WithFields(logrus.Fields{
		"escrow":  base58.Encode(statePub),
		"custody": base58.Encode(custodyPub),
	}).Debug("initialized escrow")

	return &InitializeEscrowResult{
		Signature:      sig,
		EscrowAccount:  statePub,
		CustodyAccount: custodyPub,
	}, nil
}

// GetEscrow loads and validates the state record at the provided escrow
// state address.
func (c *Client) GetEscrow(escrowAccount ed25519.PublicKey, commitment solana.Commitment) (*State, error) {
	accountInfo, err := c.sc.GetAccountInfo(escrowAccount, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrEscrowNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(accountInfo.Owner, c.program) {
		return nil, ErrInvalidEscrowAccount
	}

	var state State
	if err := state.Unmarshal(accountInfo.Data); err != nil {
		return nil, ErrInvalidEscrowAccount
	}

	return &state, nil
}

// Exchange settles the escrow at escrowAccount. takerSend must hold at
// least the initializer's expected amount of the counter asset, and
// takerReceive receives the full custody balance.
func (c *Client) Exchange(
	taker ed25519.PrivateKey,
	escrowAccount ed25519.PublicKey,
	takerSend ed25519.PublicKey,
	takerReceive ed25519.PublicKey,
) (solana.Signature, error) {
	takerPub := taker.Public().(ed25519.PublicKey)

	state, err := c.GetEscrow(escrowAccount, solana.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, err
	}

	custodyInfo, err := c.sc.GetAccountInfo(state.CustodyAccount, solana.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to get custody account info")
	}
	var custodyState token.Account
	if !custodyState.Unmarshal(custodyInfo.Data) {
		return solana.Signature{}, token.ErrInvalidTokenAccount
	}

	authority, _, err := GetAuthorityAddress(c.program)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to derive escrow authority")
	}

	txn := solana.NewTransaction(
		takerPub,
		Exchange(
			c.program,
			takerPub,
			takerSend,
			takerReceive,
			state.CustodyAccount,
			state.Initializer,
			state.InitializerReceiveAccount,
			escrowAccount,
			authority,
			custodyState.Amount,
		),
	)

	bh, err := c.sc.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to get latest blockhash")
	}
	txn.SetBlockhash(bh)

	if err := txn.Sign(taker); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := c.sc.SubmitTransaction(txn, solana.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to submit transaction")
	}

	c.log.WithFields(logrus.Fields{
		"escrow": base58.Encode(escrowAccount),
		"amount": custodyState.Amount,
	}).Debug("settled escrow")

	return sig, nil
}
