package config

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue is returned when no value is available for a config.
	ErrNoValue = errors.New("config has no value")

	// ErrShutdown is returned when a config is used after Shutdown.
	ErrShutdown = errors.New("config has been shut down")
)

// Config is a dynamic configuration value.
type Config interface {
	// Get returns the current raw value of the config.
	//
	// ErrNoValue is returned if no value is currently available.
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases any resources held by the config. Subsequent calls to
	// Get return ErrShutdown.
	Shutdown()
}

// GetString returns the value of c as a string. Raw values of type []byte,
// string and fmt.Stringer are supported.
func GetString(ctx context.Context, c Config) (string, error) {
	v, err := c.Get(ctx)
	if err != nil {
		return "", err
	}

	switch t := v.(type) {
	case []byte:
		return string(t), nil
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", errors.Errorf("unsupported config value type %T", v)
	}
}
