package runtime

import (
	"github.com/mr-tron/base58/base58"
)

// Program is an executable on-chain program.
//
// Process runs a single instruction. It returns a solana.CustomError or a
// solana.InstructionErrorKey to fail the instruction with that error. Any
// other error fails it with ProgramFailedToComplete.
type Program interface {
	Process(ictx *InvokeContext) error
}

// ProgramFunc adapts a function to a Program.
type ProgramFunc func(ictx *InvokeContext) error

func (f ProgramFunc) Process(ictx *InvokeContext) error {
	return f(ictx)
}

// NativeLoader owns every builtin program account.
var NativeLoader = mustBase58Decode("NativeLoader1111111111111111111111111111111")

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
