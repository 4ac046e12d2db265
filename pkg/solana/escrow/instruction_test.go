package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrow-payments/escrow-server/pkg/solana/system"
	"github.com/escrow-payments/escrow-server/pkg/solana/token"
)

func TestUnmarshalInstructionData(t *testing.T) {
	decoded, err := UnmarshalInstructionData([]byte{0, 0xf4, 0x01, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, CommandInitEscrow, decoded.Command)
	assert.EqualValues(t, 500, decoded.Amount)

	decoded, err = UnmarshalInstructionData([]byte{1, 0xe8, 0x03, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, CommandExchange, decoded.Command)
	assert.EqualValues(t, 1000, decoded.Amount)

	invalid := [][]byte{
		nil,
		{},
		{0},
		{0, 1, 2, 3},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{2, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for _, data := range invalid {
		_, err := UnmarshalInstructionData(data)
		assert.Equal(t, ErrorInvalidInstruction, err)
	}
}

func TestInitEscrow(t *testing.T) {
	program := generateKey(t)
	initializer := generateKey(t)
	custody := generateKey(t)
	receive := generateKey(t)
	state := generateKey(t)

	instruction := InitEscrow(program, initializer, custody, receive, state, 500)

	assert.Equal(t, program, instruction.Program)

	decoded, err := UnmarshalInstructionData(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, CommandInitEscrow, decoded.Command)
	assert.EqualValues(t, 500, decoded.Amount)

	require.Len(t, instruction.Accounts, 6)
	assert.Equal(t, initializer, instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.Equal(t, custody, instruction.Accounts[1].PublicKey)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.Equal(t, receive, instruction.Accounts[2].PublicKey)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.Equal(t, state, instruction.Accounts[3].PublicKey)
	assert.True(t, instruction.Accounts[3].IsWritable)
	assert.Equal(t, system.RentSysVar, instruction.Accounts[4].PublicKey)
	assert.Equal(t, token.ProgramKey, instruction.Accounts[5].PublicKey)

	for _, meta := range instruction.Accounts[1:] {
		assert.False(t, meta.IsSigner)
	}
}

func TestExchange(t *testing.T) {
	program := generateKey(t)
	taker := generateKey(t)
	takerSend := generateKey(t)
	takerReceive := generateKey(t)
	custody := generateKey(t)
	initializerMain := generateKey(t)
	initializerReceive := generateKey(t)
	state := generateKey(t)
	authority := generateKey(t)

	instruction := Exchange(program, taker, takerSend, takerReceive, custody, initializerMain, initializerReceive, state, authority, 1000)

	assert.Equal(t, program, instruction.Program)

	decoded, err := UnmarshalInstructionData(instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, CommandExchange, decoded.Command)
	assert.EqualValues(t, 1000, decoded.Amount)

	require.Len(t, instruction.Accounts, 9)

	expected := []struct {
		key      []byte
		writable bool
	}{
		{taker, true},
		{takerSend, true},
		{takerReceive, true},
		{custody, true},
		{initializerMain, true},
		{initializerReceive, true},
		{state, true},
		{token.ProgramKey, false},
		{authority, false},
	}
	for i, e := range expected {
		assert.EqualValues(t, e.key, instruction.Accounts[i].PublicKey, "account %d", i)
		assert.Equal(t, e.writable, instruction.Accounts[i].IsWritable, "account %d", i)
		assert.Equal(t, i == 0, instruction.Accounts[i].IsSigner, "account %d", i)
	}
}
