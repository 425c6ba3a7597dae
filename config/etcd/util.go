package etcd

import (
	"context"
	"path"
	"strconv"
	"time"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/config"
	"github.com/kinecosystem/agora-await/timeutil"
)

// Keys below a prefix that hold wait defaults.
const (
	TimeoutKey       = "timeout"
	PollIntervalKey  = "poll_interval"
	PollDelayKey     = "poll_delay"
	CatchUncaughtKey = "catch_uncaught"
)

// SetConfig stores value under name. Durations are stored in ISO 8601 form
// so that await.ParseDuration accepts them.
func SetConfig(ctx context.Context, client *clientv3.Client, name string, value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case bool:
		raw = strconv.FormatBool(v)
	case int64:
		raw = strconv.FormatInt(v, 10)
	case uint64:
		raw = strconv.FormatUint(v, 10)
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Duration:
		raw = timeutil.FormatISO8601(v)
	case await.Duration:
		switch {
		case v.IsForever():
			raw = "forever"
		case v.IsSameAsPollInterval():
			raw = "same_as_poll_interval"
		case !v.IsDefined():
			return errors.Errorf("cannot store undefined duration in %s", name)
		default:
			raw = timeutil.FormatISO8601(v.Std())
		}
	default:
		return errors.Errorf("unsupported config value type %T for %s", value, name)
	}

	_, err := client.Put(ctx, name, raw)
	return errors.Wrapf(err, "failed to put %s", name)
}

// NewSources returns etcd backed sources for the wait defaults stored below
// prefix. The returned function shuts the sources down.
func NewSources(client *clientv3.Client, prefix string) (await.Sources, func(), error) {
	var configs []config.Config
	shutdown := func() {
		for _, c := range configs {
			c.Shutdown()
		}
	}

	var s await.Sources
	for key, dst := range map[string]*config.Config{
		TimeoutKey:       &s.Timeout,
		PollIntervalKey:  &s.PollInterval,
		PollDelayKey:     &s.PollDelay,
		CatchUncaughtKey: &s.CatchUncaught,
	} {
		c, err := NewConfig(client, path.Join(prefix, key))
		if err != nil {
			shutdown()
			return await.Sources{}, func() {}, err
		}
		configs = append(configs, c)
		*dst = c
	}

	return s, shutdown, nil
}
