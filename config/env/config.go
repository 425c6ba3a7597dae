package env

import (
	"context"
	"os"

	"github.com/kinecosystem/agora-await/config"
)

type conf struct {
	key string
}

// NewConfig returns a config backed by the environment variable key. The
// variable is read on every Get, so changes are observed immediately.
func NewConfig(key string) config.Config {
	return &conf{key: key}
}

// Get implements config.Config.Get.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	v, ok := os.LookupEnv(c.key)
	if !ok {
		return nil, config.ErrNoValue
	}
	return []byte(v), nil
}

// Shutdown implements config.Config.Shutdown.
func (c *conf) Shutdown() {}
