package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// https://explorer.solana.com/address/11111111111111111111111111111111
var SystemAccount ed25519.PublicKey

// SysvarOwner owns every sysvar account.
var SysvarOwner ed25519.PublicKey

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar ed25519.PublicKey

// ClockSysVar points to the system variable "Clock"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/clock.rs#L7
var ClockSysVar ed25519.PublicKey

func init() {
	var err error

	RentSysVar, err = base58.Decode("SysvarRent111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	ClockSysVar, err = base58.Decode("SysvarC1ock11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SysvarOwner, err = base58.Decode("Sysvar1111111111111111111111111111111111111")
	if err != nil {
		panic(err)
	}

	SystemAccount, err = base58.Decode("11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
	copy(ProgramKey[:], SystemAccount)
}

const (
	// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L21-L35
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
	DefaultBurnPercent         = 50

	// AccountStorageOverhead is the per account bookkeeping charged on top of
	// the data size.
	AccountStorageOverhead = 128

	RentSize  = 8 + 8 + 1
	ClockSize = 8 + 8 + 8 + 8 + 8
)

// Rent is the rent sysvar.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the cluster defaults.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance is the lamport balance required for an account holding size
// bytes to be rent exempt.
func (r Rent) MinimumBalance(size uint64) uint64 {
	bytes := size + AccountStorageOverhead
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether lamports covers the exemption threshold for size bytes.
func (r Rent) IsExempt(lamports, size uint64) bool {
	return lamports >= r.MinimumBalance(size)
}

func (r Rent) Marshal() []byte {
	b := make([]byte, RentSize)
	binary.LittleEndian.PutUint64(b, r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(b[8:], math.Float64bits(r.ExemptionThreshold))
	b[16] = r.BurnPercent
	return b
}

func (r *Rent) Unmarshal(b []byte) error {
	if len(b) != RentSize {
		return errors.Errorf("invalid rent sysvar size: %d", len(b))
	}

	r.LamportsPerByteYear = binary.LittleEndian.Uint64(b)
	r.ExemptionThreshold = math.Float64frombits(binary.LittleEndian.Uint64(b[8:]))
	r.BurnPercent = b[16]
	return nil
}

// Clock is the clock sysvar.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/clock.rs#L129
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c Clock) Marshal() []byte {
	b := make([]byte, ClockSize)
	binary.LittleEndian.PutUint64(b, c.Slot)
	binary.LittleEndian.PutUint64(b[8:], uint64(c.EpochStartTimestamp))
	binary.LittleEndian.PutUint64(b[16:], c.Epoch)
	binary.LittleEndian.PutUint64(b[24:], c.LeaderScheduleEpoch)
	binary.LittleEndian.PutUint64(b[32:], uint64(c.UnixTimestamp))
	return b
}

func (c *Clock) Unmarshal(b []byte) error {
	if len(b) != ClockSize {
		return errors.Errorf("invalid clock sysvar size: %d", len(b))
	}

	c.Slot = binary.LittleEndian.Uint64(b)
	c.EpochStartTimestamp = int64(binary.LittleEndian.Uint64(b[8:]))
	c.Epoch = binary.LittleEndian.Uint64(b[16:])
	c.LeaderScheduleEpoch = binary.LittleEndian.Uint64(b[24:])
	c.UnixTimestamp = int64(binary.LittleEndian.Uint64(b[32:]))
	return nil
}
