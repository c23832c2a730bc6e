package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

func TestGetCommand_Error(t *testing.T) {
	keys := generateKeys(t, 4)

	// invalid program
	cmd, err := GetCommand(solana.NewInstruction(keys[1], []byte{}))
	assert.Equal(t, CommandUnknown, cmd)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	// no data
	cmd, err = GetCommand(solana.NewInstruction(ProgramKey, []byte{}))
	assert.Equal(t, CommandUnknown, cmd)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing data")
}

func TestInitializeAccount(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := InitializeAccount(keys[0], keys[1], keys[2])

	assert.Equal(t, []byte{1}, instruction.Data)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	for i := 1; i < 4; i++ {
		assert.False(t, instruction.Accounts[i].IsSigner)
		assert.False(t, instruction.Accounts[i].IsWritable)
	}

	decompiled, err := DecompileInitializeAccount(instruction)
	assert.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.Mint)
	assert.Equal(t, keys[2], decompiled.Owner)

	cmd, err := GetCommand(instruction)
	require.NoError(t, err)
	assert.Equal(t, CommandInitializeAccount, cmd)

	instruction.Accounts[3].PublicKey = keys[3]
	_, err = DecompileInitializeAccount(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid rent program"))

	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecompileInitializeAccount(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid number of accounts"))

	instruction.Data[0] = byte(CommandTransfer)
	_, err = DecompileInitializeAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileInitializeAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestTransfer(t *testing.T) {
	keys := generateKeys(t, 4)

	instruction := Transfer(keys[0], keys[1], keys[2], 38_333_000_000_000)

	expectedAmount := make([]byte, 8)
	binary.LittleEndian.PutUint64(expectedAmount, 38_333_000_000_000)

	assert.EqualValues(t, 3, instruction.Data[0])
	assert.EqualValues(t, expectedAmount, instruction.Data[1:])

	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	assert.True(t, instruction.Accounts[2].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)

	decompiled, err := DecompileTransfer(instruction)
	assert.NoError(t, err)
	assert.EqualValues(t, 38_333_000_000_000, decompiled.Amount)
	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)

	cmd, err := GetCommand(instruction)
	require.NoError(t, err)
	assert.Equal(t, CommandTransfer, cmd)

	instruction.Data = instruction.Data[:1]
	_, err = DecompileTransfer(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid instruction data size"))

	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecompileTransfer(instruction)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid number of accounts"))

	instruction.Data[0] = byte(CommandInitializeAccount)
	_, err = DecompileTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
