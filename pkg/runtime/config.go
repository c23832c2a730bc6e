package runtime

import (
	"github.com/code-payments/metadata-vault/pkg/config"
	"github.com/code-payments/metadata-vault/pkg/config/env"
	"github.com/code-payments/metadata-vault/pkg/config/memory"
	"github.com/code-payments/metadata-vault/pkg/config/wrapper"
)

const (
	envConfigPrefix = "RUNTIME_"

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	MaxInvokeDepthConfigEnvName = envConfigPrefix + "MAX_INVOKE_DEPTH"
	defaultMaxInvokeDepth       = 4

	MaxInstructionsConfigEnvName = envConfigPrefix + "MAX_INSTRUCTIONS"
	defaultMaxInstructions       = 64

	SlotsPerEpochConfigEnvName = envConfigPrefix + "SLOTS_PER_EPOCH"
	defaultSlotsPerEpoch       = 432_000
)

type conf struct {
	lockStripes     config.Uint64
	maxInvokeDepth  config.Uint64
	maxInstructions config.Uint64
	slotsPerEpoch   config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:     env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			maxInvokeDepth:  env.NewUint64Config(MaxInvokeDepthConfigEnvName, defaultMaxInvokeDepth),
			maxInstructions: env.NewUint64Config(MaxInstructionsConfigEnvName, defaultMaxInstructions),
			slotsPerEpoch:   env.NewUint64Config(SlotsPerEpochConfigEnvName, defaultSlotsPerEpoch),
		}
	}
}

type testOverrides struct {
	lockStripes     uint64
	maxInvokeDepth  uint64
	maxInstructions uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		lockStripes := overrides.lockStripes
		if lockStripes == 0 {
			lockStripes = defaultLockStripes
		}
		maxInvokeDepth := overrides.maxInvokeDepth
		if maxInvokeDepth == 0 {
			maxInvokeDepth = defaultMaxInvokeDepth
		}
		maxInstructions := overrides.maxInstructions
		if maxInstructions == 0 {
			maxInstructions = defaultMaxInstructions
		}

		return &conf{
			lockStripes:     wrapper.NewUint64Config(memory.NewConfig(lockStripes), lockStripes),
			maxInvokeDepth:  wrapper.NewUint64Config(memory.NewConfig(maxInvokeDepth), maxInvokeDepth),
			maxInstructions: wrapper.NewUint64Config(memory.NewConfig(maxInstructions), maxInstructions),
			slotsPerEpoch:   wrapper.NewUint64Config(memory.NewConfig(uint64(defaultSlotsPerEpoch)), defaultSlotsPerEpoch),
		}
	}
}
