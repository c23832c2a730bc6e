package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithEnvConfigs(t *testing.T) {
	ctx := context.Background()

	conf := WithEnvConfigs()()
	assert.EqualValues(t, defaultLockStripes, conf.lockStripes.Get(ctx))
	assert.EqualValues(t, defaultMaxInvokeDepth, conf.maxInvokeDepth.Get(ctx))
	assert.EqualValues(t, defaultMaxInstructions, conf.maxInstructions.Get(ctx))
	assert.EqualValues(t, defaultSlotsPerEpoch, conf.slotsPerEpoch.Get(ctx))

	t.Setenv(MaxInvokeDepthConfigEnvName, "2")
	t.Setenv(LockStripesConfigEnvName, "16")

	conf = WithEnvConfigs()()
	assert.EqualValues(t, 16, conf.lockStripes.Get(ctx))
	assert.EqualValues(t, 2, conf.maxInvokeDepth.Get(ctx))
	assert.EqualValues(t, defaultMaxInstructions, conf.maxInstructions.Get(ctx))
}
