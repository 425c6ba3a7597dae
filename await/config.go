package await

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/kinecosystem/agora-await/config"
)

// Viper keys and environment variables read by Config.Load.
const (
	TimeoutKey       = "await.timeout"
	PollIntervalKey  = "await.poll_interval"
	PollDelayKey     = "await.poll_delay"
	CatchUncaughtKey = "await.catch_uncaught"

	TimeoutEnv       = "AWAIT_TIMEOUT"
	PollIntervalEnv  = "AWAIT_POLL_INTERVAL"
	PollDelayEnv     = "AWAIT_POLL_DELAY"
	CatchUncaughtEnv = "AWAIT_CATCH_UNCAUGHT"
)

// Config holds the defaults applied to every wait built from it. It is safe
// for concurrent use.
type Config struct {
	mu sync.RWMutex

	timeout       Duration
	pollInterval  PollInterval
	pollDelay     Duration
	ignorePolicy  IgnorePolicy
	listener      Listener
	catchUncaught bool
	failures      *FailureChannel
	log           *logrus.Entry
}

// DefaultConfig returns a config with the factory defaults: a fixed 100ms
// poll interval, a poll delay equal to the poll interval, a 10 second
// timeout, no ignored errors, no listener, and uncaught failures on
// DefaultFailureChannel failing the wait.
func DefaultConfig() *Config {
	c := &Config{}
	c.reset()
	return c
}

// Reset restores the factory defaults.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Config) reset() {
	c.timeout = TenSeconds
	c.pollInterval = FixedPollInterval{d: OneHundredMilliseconds}
	c.pollDelay = SameAsPollInterval
	c.ignorePolicy = IgnoreNothing
	c.listener = nil
	c.catchUncaught = true
	c.failures = DefaultFailureChannel
	c.log = logrus.StandardLogger().WithField("type", "await")
}

// SetTimeout sets the default maximum wait time.
func (c *Config) SetTimeout(d Duration) error {
	if !d.IsDefined() || d.IsSameAsPollInterval() {
		return errors.Wrapf(ErrInvalidConfiguration, "invalid default timeout: %s", d)
	}

	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
	return nil
}

// SetPollInterval sets the default poll interval.
func (c *Config) SetPollInterval(p PollInterval) error {
	if p == nil {
		return errors.Wrap(ErrInvalidConfiguration, "poll interval cannot be nil")
	}

	c.mu.Lock()
	c.pollInterval = p
	c.mu.Unlock()
	return nil
}

// SetPollDelay sets the default delay before the first evaluation.
func (c *Config) SetPollDelay(d Duration) error {
	if d.IsForever() {
		return errors.Wrap(ErrInvalidConfiguration, "poll delay cannot be forever")
	}
	if !d.IsDefined() {
		d = SameAsPollInterval
	}

	c.mu.Lock()
	c.pollDelay = d
	c.mu.Unlock()
	return nil
}

// SetIgnorePolicy sets which evaluation errors are treated as unmatched polls.
func (c *Config) SetIgnorePolicy(p IgnorePolicy) {
	c.mu.Lock()
	c.ignorePolicy = p
	c.mu.Unlock()
}

// SetListener sets the default listener. A nil listener disables events.
func (c *Config) SetListener(l Listener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

// SetCatchUncaught sets whether published failures abort waits.
func (c *Config) SetCatchUncaught(catch bool) {
	c.mu.Lock()
	c.catchUncaught = catch
	c.mu.Unlock()
}

// SetFailureChannel sets the channel consulted for uncaught failures. A nil
// channel restores DefaultFailureChannel.
func (c *Config) SetFailureChannel(ch *FailureChannel) {
	if ch == nil {
		ch = DefaultFailureChannel
	}

	c.mu.Lock()
	c.failures = ch
	c.mu.Unlock()
}

// SetLogger sets the entry used for engine diagnostics.
func (c *Config) SetLogger(log *logrus.Entry) {
	if log == nil {
		log = logrus.StandardLogger().WithField("type", "await")
	}

	c.mu.Lock()
	c.log = log
	c.mu.Unlock()
}

// Timeout returns the default maximum wait time.
func (c *Config) Timeout() Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

// PollInterval returns the default poll interval.
func (c *Config) PollInterval() PollInterval {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pollInterval
}

// PollDelay returns the default delay before the first evaluation.
func (c *Config) PollDelay() Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pollDelay
}

// IgnorePolicy returns the default ignore policy.
func (c *Config) IgnorePolicy() IgnorePolicy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ignorePolicy
}

// Listener returns the default listener, or nil.
func (c *Config) Listener() Listener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listener
}

// CatchUncaught reports whether published failures abort waits.
func (c *Config) CatchUncaught() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catchUncaught
}

// FailureChannel returns the channel waits consume failures from.
func (c *Config) FailureChannel() *FailureChannel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failures
}

// Settings returns a snapshot of the config as wait settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Settings{
		Constraint:    NewWaitConstraint(c.timeout),
		PollInterval:  c.pollInterval,
		PollDelay:     c.pollDelay,
		IgnorePolicy:  c.ignorePolicy,
		Listener:      c.listener,
		CatchUncaught: c.catchUncaught,
		Failures:      c.failures,
		Log:           c.log,
	}
}

// Clone returns an independent copy of c.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		timeout:       c.timeout,
		pollInterval:  c.pollInterval,
		pollDelay:     c.pollDelay,
		ignorePolicy:  c.ignorePolicy,
		listener:      c.listener,
		catchUncaught: c.catchUncaught,
		failures:      c.failures,
		log:           c.log,
	}
}

// Await returns a Factory initialized from a snapshot of c. Later changes to
// c do not affect the returned factory.
func (c *Config) Await() *Factory {
	return newFactory(c.Settings())
}

// Load applies the values found in v, binding the AWAIT_* environment
// variables first. If v is nil, the global viper instance is used. Keys that
// are not set leave the current value untouched. Nothing is applied if any
// value fails to parse.
func (c *Config) Load(v *viper.Viper) error {
	if v == nil {
		v = viper.GetViper()
	}

	_ = v.BindEnv(TimeoutKey, TimeoutEnv)
	_ = v.BindEnv(PollIntervalKey, PollIntervalEnv)
	_ = v.BindEnv(PollDelayKey, PollDelayEnv)
	_ = v.BindEnv(CatchUncaughtKey, CatchUncaughtEnv)

	var u update
	if err := u.parse(TimeoutKey, v.GetString(TimeoutKey)); err != nil {
		return err
	}
	if err := u.parse(PollIntervalKey, v.GetString(PollIntervalKey)); err != nil {
		return err
	}
	if err := u.parse(PollDelayKey, v.GetString(PollDelayKey)); err != nil {
		return err
	}
	if v.IsSet(CatchUncaughtKey) {
		catch := v.GetBool(CatchUncaughtKey)
		u.catchUncaught = &catch
	}

	c.apply(u)
	return nil
}

// Sources are dynamic config values for the engine defaults. Nil sources are
// skipped, as are sources without a value.
type Sources struct {
	Timeout       config.Config
	PollInterval  config.Config
	PollDelay     config.Config
	CatchUncaught config.Config
}

// LoadSources applies the current values of s. Values use the same format as
// Load.
func (c *Config) LoadSources(ctx context.Context, s Sources) error {
	var u update
	for key, src := range map[string]config.Config{
		TimeoutKey:      s.Timeout,
		PollIntervalKey: s.PollInterval,
		PollDelayKey:    s.PollDelay,
	} {
		raw, ok, err := sourceString(ctx, src)
		if err != nil {
			return errors.Wrapf(err, "failed to load %s", key)
		}
		if !ok {
			continue
		}
		if err := u.parse(key, raw); err != nil {
			return err
		}
	}

	raw, ok, err := sourceString(ctx, s.CatchUncaught)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", CatchUncaughtKey)
	}
	if ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			catch := true
			u.catchUncaught = &catch
		case "false", "0", "no":
			catch := false
			u.catchUncaught = &catch
		default:
			return errors.Wrapf(ErrInvalidConfiguration, "invalid %s value %q", CatchUncaughtKey, raw)
		}
	}

	c.apply(u)
	return nil
}

func sourceString(ctx context.Context, src config.Config) (string, bool, error) {
	if src == nil {
		return "", false, nil
	}

	raw, err := config.GetString(ctx, src)
	if err == config.ErrNoValue {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

// update is a parsed, not yet applied, set of config changes.
type update struct {
	timeout       *Duration
	pollInterval  PollInterval
	pollDelay     *Duration
	catchUncaught *bool
}

func (u *update) parse(key, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if key == PollIntervalKey && strings.EqualFold(raw, "fibonacci") {
		u.pollInterval = Fibonacci()
		return nil
	}

	d, err := ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}

	switch key {
	case TimeoutKey:
		if d.IsSameAsPollInterval() {
			return errors.Wrapf(ErrInvalidConfiguration, "invalid %s: %s", key, raw)
		}
		u.timeout = &d
	case PollIntervalKey:
		p, err := NewFixedPollInterval(d)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", key)
		}
		u.pollInterval = p
	case PollDelayKey:
		if d.IsForever() {
			return errors.Wrapf(ErrInvalidConfiguration, "invalid %s: %s", key, raw)
		}
		u.pollDelay = &d
	}
	return nil
}

func (c *Config) apply(u update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.timeout != nil {
		c.timeout = *u.timeout
	}
	if u.pollInterval != nil {
		c.pollInterval = u.pollInterval
	}
	if u.pollDelay != nil {
		c.pollDelay = *u.pollDelay
	}
	if u.catchUncaught != nil {
		c.catchUncaught = *u.catchUncaught
	}

	c.log.WithFields(logrus.Fields{
		"timeout":        c.timeout.String(),
		"poll_delay":     c.pollDelay.String(),
		"catch_uncaught": c.catchUncaught,
	}).Debug("loaded await config")
}
