package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/metadata-vault/pkg/solana"
)

var metadataPrefix = []byte("metadata")

type GetMetadataAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMetadataAddress(args *GetMetadataAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		metadataPrefix,
		PROGRAM_ID,
		args.Mint,
	)
}
