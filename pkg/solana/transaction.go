package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrMissingSignature = errors.New("transaction is missing a signature")
	ErrInvalidSignature = errors.New("transaction has an invalid signature")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// CompiledInstruction is an instruction whose program and accounts are
// indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// Message is a legacy transaction message.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#message-format
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

type compiledAccount struct {
	AccountMeta
	isPayer   bool
	isProgram bool
}

// NewTransaction compiles instructions into a transaction paid for by payer.
//
// Accounts are ordered by:
//  1. Payer first.
//  2. Signers before non-signers.
//  3. Writable accounts before read-only accounts.
//  4. Programs last.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []compiledAccount{
		{
			AccountMeta: NewAccountMeta(payer, true),
			isPayer:     true,
		},
	}

	for _, i := range instructions {
		accounts = append(accounts, compiledAccount{
			AccountMeta: NewReadonlyAccountMeta(i.Program, false),
			isProgram:   true,
		})
		for _, meta := range i.Accounts {
			accounts = append(accounts, compiledAccount{AccountMeta: meta})
		}
	}

	accounts = filterUnique(accounts)
	sort.SliceStable(accounts, func(i, j int) bool {
		return lessAccount(accounts[i], accounts[j])
	})

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			m.Header.NumSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Data:         i.Data,
		}

		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(m.Accounts, a.PublicKey)))
		}

		m.Instructions = append(m.Instructions, c)
	}

	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the fee payer's signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// VerifySignatures checks that every required signer produced a valid
// signature over the message.
func (t *Transaction) VerifySignatures() error {
	if len(t.Signatures) != int(t.Message.Header.NumSignatures) {
		return ErrMissingSignature
	}
	if len(t.Message.Accounts) < len(t.Signatures) {
		return ErrMissingSignature
	}

	messageBytes := t.Message.Marshal()

	var empty Signature
	for i, s := range t.Signatures {
		if s == empty {
			return ErrMissingSignature
		}
		if !ed25519.Verify(t.Message.Accounts[i], messageBytes, s[:]) {
			return ErrInvalidSignature
		}
	}

	return nil
}

// IsSigner reports whether the account at index signed the message.
func (m Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable reports whether the account at index was requested as writable.
func (m Message) IsWritable(index int) bool {
	if index < int(m.Header.NumSignatures) {
		return index < int(m.Header.NumSignatures-m.Header.NumReadonlySigned)
	}

	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// DecompileInstructions expands the compiled instructions back into
// instructions carrying the message level signer and writable flags.
func (m Message) DecompileInstructions() ([]Instruction, error) {
	instructions := make([]Instruction, len(m.Instructions))
	for i, c := range m.Instructions {
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return nil, errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}

		accounts := make([]AccountMeta, len(c.Accounts))
		for j, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return nil, errors.Errorf("account index out of range: %d:%d", i, index)
			}

			accounts[j] = AccountMeta{
				PublicKey:  m.Accounts[index],
				IsSigner:   m.IsSigner(int(index)),
				IsWritable: m.IsWritable(int(index)),
			}
		}

		instructions[i] = Instruction{
			Program:  m.Accounts[c.ProgramIndex],
			Accounts: accounts,
			Data:     c.Data,
		}
	}

	return instructions, nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, base58.Encode(s[:])))
	}
	sb.WriteString("Message:\n")
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", t.Message.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", t.Message.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", t.Message.Header.NumReadonlySigned))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", t.Message.Instructions[i].ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", t.Message.Instructions[i].Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", t.Message.Instructions[i].Data))
	}
	return sb.String()
}

func lessAccount(a, b compiledAccount) bool {
	if a.isPayer != b.isPayer {
		return a.isPayer
	}
	if a.isProgram != b.isProgram {
		return !a.isProgram
	}
	if a.IsSigner != b.IsSigner {
		return a.IsSigner
	}
	if a.IsWritable != b.IsWritable {
		return a.IsWritable
	}

	return bytes.Compare(a.PublicKey, b.PublicKey) < 0
}

func filterUnique(accounts []compiledAccount) []compiledAccount {
	filtered := make([]compiledAccount, 0, len(accounts))

	for i := range accounts {
		for j := range filtered {
			// Seen before, so only promote permissions.
			if bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				if accounts[i].IsSigner {
					filtered[j].IsSigner = true
				}
				if accounts[i].IsWritable {
					filtered[j].IsWritable = true
				}
				if accounts[i].isPayer {
					filtered[j].isPayer = true
				}
				if filtered[j].IsSigner || filtered[j].IsWritable {
					filtered[j].isProgram = false
				}

				goto next
			}
		}

		filtered = append(filtered, accounts[i])
	next:
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
