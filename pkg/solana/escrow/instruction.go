package escrow

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/escrow-payments/escrow-server/pkg/solana"
	"github.com/escrow-payments/escrow-server/pkg/solana/system"
	"github.com/escrow-payments/escrow-server/pkg/solana/token"
)

type Command byte

const (
	// CommandInitEscrow opens an escrow: it records the offer terms and
	// hands the custody token account over to the derived authority.
	CommandInitEscrow Command = iota
	// CommandExchange settles an open escrow atomically.
	CommandExchange
)

// instructionSize is the serialized size of every escrow instruction:
// a one byte command tag followed by a little endian u64 amount.
const instructionSize = 1 + 8

// InstructionData is the decoded payload of an escrow instruction.
type InstructionData struct {
	Command Command

	// Amount is the expected counter asset amount for CommandInitEscrow,
	// and the taker's claimed custody balance for CommandExchange.
	Amount uint64
}

// UnmarshalInstructionData decodes raw instruction data, returning
// ErrorInvalidInstruction if the payload is malformed or the command tag
// is unknown.
func UnmarshalInstructionData(data []byte) (*InstructionData, error) {
	if len(data) != instructionSize {
		return nil, ErrorInvalidInstruction
	}

	switch Command(data[0]) {
	case CommandInitEscrow, CommandExchange:
	default:
		return nil, ErrorInvalidInstruction
	}

	return &InstructionData{
		Command: Command(data[0]),
		Amount:  binary.LittleEndian.Uint64(data[1:]),
	}, nil
}

func marshalInstructionData(command Command, amount uint64) []byte {
	data := make([]byte, instructionSize)
	data[0] = byte(command)
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// InitEscrow opens an escrow offering the balance of the custody token
// account in exchange for expectedAmount of the counter asset, paid into
// initializerReceive.
//
// The custody account must already hold the deposit and be owned by the
// initializer; the instruction reassigns it to the derived authority.
func InitEscrow(program, initializer, custody, initializerReceive, escrowState ed25519.PublicKey, expectedAmount uint64) solana.Instruction {
	return solana.NewInstruction(
		program,
		marshalInstructionData(CommandInitEscrow, expectedAmount),
		solana.NewAccountMeta(initializer, true),
		solana.NewAccountMeta(custody, false),
		solana.NewReadonlyAccountMeta(initializerReceive, false),
		solana.NewAccountMeta(escrowState, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

// Exchange settles an open escrow. The taker sends the initializer's
// expected amount from takerSend and receives the custody balance into
// takerReceive. amount must equal the custody balance exactly.
func Exchange(program, taker, takerSend, takerReceive, custody, initializerMain, initializerReceive, escrowState, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		program,
		marshalInstructionData(CommandExchange, amount),
		solana.NewAccountMeta(taker, true),
		solana.NewAccountMeta(takerSend, false),
		solana.NewAccountMeta(takerReceive, false),
		solana.NewAccountMeta(custody, false),
		solana.NewAccountMeta(initializerMain, false),
		solana.NewAccountMeta(initializerReceive, false),
		solana.NewAccountMeta(escrowState, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(authority, false),
	)
}
