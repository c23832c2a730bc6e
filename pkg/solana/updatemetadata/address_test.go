package updatemetadata

import (
	"testing"

	sologo "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVaultPoolAddress(t *testing.T) {
	vault := generateKeys(t, 1)[0]

	address, bump, err := GetVaultPoolAddress(&GetVaultPoolAddressArgs{Vault: vault})
	require.NoError(t, err)

	expected, expectedBump, err := sologo.FindProgramAddress(
		[][]byte{[]byte("vault_pool"), vault},
		sologo.PublicKeyFromBytes(PROGRAM_ID),
	)
	require.NoError(t, err)
	assert.EqualValues(t, expected.Bytes(), address)
	assert.Equal(t, expectedBump, bump)

	created, err := CreateVaultPoolAddress(vault, bump)
	require.NoError(t, err)
	assert.Equal(t, address, created)
}
