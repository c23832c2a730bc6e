package updatemetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

var (
	VaultPoolPrefix = []byte("vault_pool")
)

type GetVaultPoolAddressArgs struct {
	Vault ed25519.PublicKey
}

// GetVaultPoolAddress finds the pool authority for a vault and the bump to pass
// to initialize_vault.
func GetVaultPoolAddress(args *GetVaultPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		VaultPoolPrefix,
		args.Vault,
	)
}

// CreateVaultPoolAddress derives the pool authority from an explicit bump, as
// stored in the vault.
func CreateVaultPoolAddress(vault ed25519.PublicKey, bump uint8) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddressWithBump(
		PROGRAM_ID,
		bump,
		VaultPoolPrefix,
		vault,
	)
}
