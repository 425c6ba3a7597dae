package await

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/timeutil"
)

type durationKind int

const (
	finite durationKind = iota
	forever
	sameAsPollInterval
)

// Duration is an immutable amount of time expressed in a unit, or one of the
// two sentinels Forever and SameAsPollInterval.
//
// The zero value is an undefined duration; use Zero for a defined zero length.
type Duration struct {
	amount int64
	unit   time.Duration
	kind   durationKind
}

var (
	// Forever is longer than every finite duration.
	Forever = Duration{kind: forever}

	// SameAsPollInterval is only valid as a poll delay. It resolves to the
	// first interval produced by the configured PollInterval.
	SameAsPollInterval = Duration{kind: sameAsPollInterval}

	Zero                    = MustDuration(0, time.Millisecond)
	OneMillisecond          = MustDuration(1, time.Millisecond)
	OneHundredMilliseconds  = MustDuration(100, time.Millisecond)
	TwoHundredMilliseconds  = MustDuration(200, time.Millisecond)
	FiveHundredMilliseconds = MustDuration(500, time.Millisecond)
	OneSecond               = MustDuration(1, time.Second)
	TwoSeconds              = MustDuration(2, time.Second)
	FiveSeconds             = MustDuration(5, time.Second)
	TenSeconds              = MustDuration(10, time.Second)
	OneMinute               = MustDuration(1, time.Minute)
	TwoMinutes              = MustDuration(2, time.Minute)
	FiveMinutes             = MustDuration(5, time.Minute)
	TenMinutes              = MustDuration(10, time.Minute)
)

// NewDuration returns a duration of amount units. The amount must not be
// negative and the unit must be positive.
func NewDuration(amount int64, unit time.Duration) (Duration, error) {
	if amount < 0 {
		return Duration{}, errors.Wrapf(ErrInvalidConfiguration, "duration amount must be non-negative (was %d)", amount)
	}
	if unit <= 0 {
		return Duration{}, errors.Wrapf(ErrInvalidConfiguration, "duration unit must be positive (was %d)", int64(unit))
	}
	return Duration{amount: amount, unit: unit}, nil
}

// MustDuration is like NewDuration but panics on invalid input.
func MustDuration(amount int64, unit time.Duration) Duration {
	d, err := NewDuration(amount, unit)
	if err != nil {
		panic(err)
	}
	return d
}

// Of converts a standard library duration, picking the coarsest unit that
// represents it exactly.
func Of(d time.Duration) (Duration, error) {
	if d < 0 {
		return Duration{}, errors.Wrapf(ErrInvalidConfiguration, "duration must be non-negative (was %s)", d)
	}
	if d == 0 {
		return Zero, nil
	}
	for _, unit := range []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond, time.Microsecond} {
		if d%unit == 0 {
			return Duration{amount: int64(d / unit), unit: unit}, nil
		}
	}
	return Duration{amount: int64(d), unit: time.Nanosecond}, nil
}

// MustOf is like Of but panics on negative input.
func MustOf(d time.Duration) Duration {
	v, err := Of(d)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseDuration parses a Go duration string ("250ms"), an ISO-8601 duration
// ("PT0.25S"), "forever" or "same_as_poll_interval".
func ParseDuration(s string) (Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forever":
		return Forever, nil
	case "same_as_poll_interval", "same-as-poll-interval":
		return SameAsPollInterval, nil
	case "":
		return Duration{}, errors.Wrap(ErrInvalidConfiguration, "empty duration")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return Of(d)
	}

	if !timeutil.IsISO8601(s) {
		return Duration{}, errors.Wrapf(ErrInvalidConfiguration, "invalid duration %q", s)
	}
	d, err := timeutil.ParseISO8601(s)
	if err != nil {
		return Duration{}, errors.Wrapf(ErrInvalidConfiguration, "invalid duration %q: %v", s, err)
	}
	return Of(d)
}

// Amount returns the amount of units. It is zero for sentinels.
func (d Duration) Amount() int64 { return d.amount }

// Unit returns the unit. It is zero for sentinels.
func (d Duration) Unit() time.Duration { return d.unit }

// IsDefined reports whether d is a sentinel or was built by a constructor.
func (d Duration) IsDefined() bool { return d.kind != finite || d.unit > 0 }

// IsForever reports whether d is the Forever sentinel.
func (d Duration) IsForever() bool { return d.kind == forever }

// IsSameAsPollInterval reports whether d is the SameAsPollInterval sentinel.
func (d Duration) IsSameAsPollInterval() bool { return d.kind == sameAsPollInterval }

// IsZero reports whether d is a defined, finite duration of zero length.
func (d Duration) IsZero() bool { return d.kind == finite && d.unit > 0 && d.amount == 0 }

// Millis returns d in whole milliseconds. Forever maps to math.MaxInt64.
func (d Duration) Millis() int64 {
	d.mustBeResolved()
	if d.kind == forever {
		return math.MaxInt64
	}
	return int64(d.Std() / time.Millisecond)
}

// Std converts d to a time.Duration, saturating on overflow. Forever maps to
// the largest representable time.Duration.
func (d Duration) Std() time.Duration {
	d.mustBeResolved()
	if d.kind == forever {
		return time.Duration(math.MaxInt64)
	}
	if d.unit == 0 || d.amount == 0 {
		return 0
	}
	if d.amount > int64(math.MaxInt64)/int64(d.unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d.amount) * d.unit
}

// Compare returns -1, 0 or 1. Finite durations are compared after
// normalising to milliseconds.
func (d Duration) Compare(o Duration) int {
	d.mustBeResolved()
	o.mustBeResolved()
	switch {
	case d.kind == forever && o.kind == forever:
		return 0
	case d.kind == forever:
		return 1
	case o.kind == forever:
		return -1
	}

	a, b := d.Millis(), o.Millis()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether d and o denote the same time at millisecond
// precision. Sub-millisecond differences are ignored.
func (d Duration) Equal(o Duration) bool {
	if d.kind != o.kind {
		return false
	}
	if d.kind != finite {
		return true
	}
	if !d.IsDefined() || !o.IsDefined() {
		return d.IsDefined() == o.IsDefined()
	}
	return d.Millis() == o.Millis()
}

// Plus returns d+o expressed in the finer of the two units.
func (d Duration) Plus(o Duration) Duration {
	d.mustBeResolved()
	o.mustBeResolved()
	if d.kind == forever || o.kind == forever {
		return Forever
	}
	unit := finerUnit(d.unit, o.unit)
	sum := d.Std() + o.Std()
	if sum < 0 {
		return Forever
	}
	return Duration{amount: int64(sum / unit), unit: unit}
}

// Minus returns d-o, never less than zero.
func (d Duration) Minus(o Duration) Duration {
	d.mustBeResolved()
	o.mustBeResolved()
	switch {
	case d.kind == forever:
		return Forever
	case o.kind == forever:
		return Duration{amount: 0, unit: finerUnit(d.unit, time.Millisecond)}
	}
	unit := finerUnit(d.unit, o.unit)
	diff := d.Std() - o.Std()
	if diff < 0 {
		diff = 0
	}
	return Duration{amount: int64(diff / unit), unit: unit}
}

// Multiply scales d by factor, which must not be negative.
func (d Duration) Multiply(factor int64) Duration {
	d.mustBeResolved()
	if factor < 0 {
		panic(fmt.Sprintf("await: cannot multiply duration by negative factor %d", factor))
	}
	if d.kind == forever {
		return Forever
	}
	if d.amount != 0 && factor > math.MaxInt64/d.amount {
		return Forever
	}
	return Duration{amount: d.amount * factor, unit: d.unit}
}

// Divide divides d by divisor, which must be positive.
func (d Duration) Divide(divisor int64) Duration {
	d.mustBeResolved()
	if divisor <= 0 {
		panic(fmt.Sprintf("await: cannot divide duration by %d", divisor))
	}
	if d.kind == forever {
		return Forever
	}
	if d.amount%divisor == 0 {
		return Duration{amount: d.amount / divisor, unit: d.unit}
	}
	return Duration{amount: int64(d.Std()) / divisor, unit: time.Nanosecond}
}

func (d Duration) String() string {
	switch {
	case d.kind == forever:
		return "forever"
	case d.kind == sameAsPollInterval:
		return "same as poll interval"
	case !d.IsDefined():
		return "undefined"
	}

	name, ok := unitNames[d.unit]
	if !ok {
		return d.Std().String()
	}
	if d.amount == 1 {
		name = strings.TrimSuffix(name, "s")
	}
	return fmt.Sprintf("%d %s", d.amount, name)
}

func (d Duration) mustBeResolved() {
	if d.kind == sameAsPollInterval {
		panic("await: SameAsPollInterval must be resolved against a poll interval before use")
	}
}

var unitNames = map[time.Duration]string{
	time.Nanosecond:  "nanoseconds",
	time.Microsecond: "microseconds",
	time.Millisecond: "milliseconds",
	time.Second:      "seconds",
	time.Minute:      "minutes",
	time.Hour:        "hours",
}

func finerUnit(a, b time.Duration) time.Duration {
	switch {
	case a <= 0 && b <= 0:
		return time.Millisecond
	case a <= 0:
		return b
	case b <= 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
