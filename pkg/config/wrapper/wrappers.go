package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/metadata-vault/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// Uint64Config is a utility wrapper for a uint64 config
type Uint64Config struct {
	override     config.Config
	defaultValue uint64

	stateMu   sync.RWMutex
	lastValue uint64
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return &Uint64Config{
		override:     override,
		defaultValue: defaultValue,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. The last
// known value is returned alongside any error.
func (c *Uint64Config) GetSafe(ctx context.Context) (uint64, error) {
	override, err := c.override.Get(ctx)
	if err == config.ErrNoValue {
		c.set(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return c.last(), err
	}

	var newValue uint64
	switch override := override.(type) {
	case []byte:
		newValue, err = strconv.ParseUint(string(override), 10, 64)
		if err != nil {
			return c.last(), err
		}
	case uint64:
		newValue = override
	case uint:
		newValue = uint64(override)
	case int:
		if override < 0 {
			return c.last(), errors.Errorf("config: negative value %d", override)
		}
		newValue = uint64(override)
	default:
		return c.last(), ErrUnsuportedConversion
	}

	c.set(newValue)
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *Uint64Config) Get(ctx context.Context) uint64 {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *Uint64Config) Shutdown() {
	c.override.Shutdown()
}

func (c *Uint64Config) last() uint64 {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastValue
}

func (c *Uint64Config) set(value uint64) {
	c.stateMu.Lock()
	c.lastValue = value
	c.stateMu.Unlock()
}
