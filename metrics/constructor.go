package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownClientType is returned when no constructor is registered for the
// requested client type.
var ErrUnknownClientType = errors.New("unknown metrics client type")

// Client exports metrics. Tags use the "key:value" form produced by GetTags.
type Client interface {
	Count(name string, value int64, tags []string) error

	// Gauge reports the value of a metric at a point in time.
	Gauge(name string, value float64, tags []string) error

	Timing(name string, value time.Duration, tags []string) error

	Close() error
}

var (
	ctorMu sync.RWMutex
	ctors  = make(map[string]ClientCtor)
)

// ClientCtor creates a client from a config. Backends register one from an
// init function, so importing the backend package is enough to make its type
// available.
type ClientCtor func(config *ClientConfig) (Client, error)

// RegisterClientCtor registers ctor under clientType. It panics if the type is
// already taken.
func RegisterClientCtor(clientType string, ctor ClientCtor) {
	ctorMu.Lock()
	defer ctorMu.Unlock()

	if _, exists := ctors[clientType]; exists {
		panic(fmt.Sprintf("metrics.ClientCtor already registered for clientType '%s'", clientType))
	}
	ctors[clientType] = ctor
}

// ClientTypes returns the registered client types, sorted.
func ClientTypes() []string {
	ctorMu.RLock()
	defer ctorMu.RUnlock()

	types := make([]string, 0, len(ctors))
	for t := range ctors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// CreateClient creates a client of the requested type.
func CreateClient(clientType string, config *ClientConfig) (Client, error) {
	ctorMu.RLock()
	ctor, ok := ctors[clientType]
	ctorMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownClientType, "%q (registered: %s)", clientType, strings.Join(ClientTypes(), ", "))
	}

	if config != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	return ctor(config)
}

// NewClient creates a client of the requested type from options.
func NewClient(clientType string, opts ...ClientOption) (Client, error) {
	return CreateClient(clientType, NewClientConfig(opts...))
}
