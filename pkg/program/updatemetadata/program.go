package updatemetadata

import (
	"bytes"

	"github.com/code-payments/metadata-vault/pkg/runtime"
	update_metadata "github.com/code-payments/metadata-vault/pkg/solana/updatemetadata"
)

const discriminatorSize = 8

type program struct{}

// New returns the update metadata program. It tracks, per vault, which mints
// had their metadata uri updated and when, charging a token fee for each
// update.
//
// The program invokes the system, token, associated token account and token
// metadata programs, which must be registered on the same runtime.
func New() runtime.Program {
	return &program{}
}

// Register makes the update metadata program executable on r.
func Register(r *runtime.Runtime) {
	r.RegisterProgram(update_metadata.PROGRAM_ID, New())
}

func (p *program) Process(ictx *runtime.InvokeContext) error {
	if len(ictx.Data) < discriminatorSize {
		return update_metadata.ErrorInstructionMissing
	}

	discriminator := ictx.Data[:discriminatorSize]
	switch {
	case bytes.Equal(discriminator, update_metadata.InitializeVaultInstructionDiscriminator):
		return p.initializeVault(ictx)
	case bytes.Equal(discriminator, update_metadata.UpdateInstructionDiscriminator):
		return p.update(ictx)
	default:
		return update_metadata.ErrorInstructionFallbackNotFound
	}
}
