package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/metadata-vault/pkg/config"
	"github.com/code-payments/metadata-vault/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig reads key from the environment once. Keys are upper cased.
func NewConfig(key string) config.Config {
	return &conf{
		val: os.Getenv(strings.ToUpper(key)),
	}
}

// Get implements Config.Get
func (c *conf) Get(ctx context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}

	return []byte(c.val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}
