package await

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuration(t *testing.T) {
	d, err := NewDuration(0, time.Second)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	assert.True(t, d.IsDefined())

	_, err = NewDuration(-1, time.Second)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	_, err = NewDuration(1, 0)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	assert.Panics(t, func() { MustDuration(-5, time.Millisecond) })
}

func TestDuration_MillisMonotonic(t *testing.T) {
	for _, unit := range []time.Duration{time.Microsecond, time.Millisecond, time.Second, time.Minute} {
		var previous int64 = -1
		for amount := int64(0); amount < 2000; amount += 7 {
			ms := MustDuration(amount, unit).Millis()
			assert.True(t, ms >= previous, "unit %s amount %d", unit, amount)
			previous = ms
		}
	}
}

func TestDuration_Sentinels(t *testing.T) {
	assert.True(t, Forever.IsForever())
	assert.True(t, Forever.IsDefined())
	assert.False(t, Forever.IsZero())
	assert.True(t, SameAsPollInterval.IsSameAsPollInterval())
	assert.False(t, Duration{}.IsDefined())

	assert.Equal(t, 1, Forever.Compare(TenMinutes))
	assert.Equal(t, -1, TenMinutes.Compare(Forever))
	assert.Equal(t, 0, Forever.Compare(Forever))

	assert.Equal(t, Forever, Forever.Plus(OneSecond))
	assert.Equal(t, Forever, OneSecond.Plus(Forever))
	assert.True(t, OneSecond.Minus(Forever).IsZero())

	assert.Panics(t, func() { SameAsPollInterval.Std() })
	assert.Panics(t, func() { OneSecond.Plus(SameAsPollInterval) })
}

func TestDuration_Arithmetic(t *testing.T) {
	sum := OneSecond.Plus(FiveHundredMilliseconds)
	assert.Equal(t, time.Millisecond, sum.Unit())
	assert.EqualValues(t, 1500, sum.Amount())

	assert.True(t, OneHundredMilliseconds.Minus(OneSecond).IsZero())
	assert.EqualValues(t, 900, OneSecond.Minus(OneHundredMilliseconds).Millis())

	assert.True(t, TwoSeconds.Equal(OneSecond.Multiply(2)))
	assert.True(t, OneSecond.Equal(TwoSeconds.Divide(2)))
	assert.EqualValues(t, 333, OneSecond.Divide(3).Millis())

	assert.Panics(t, func() { OneSecond.Multiply(-1) })
	assert.Panics(t, func() { OneSecond.Divide(0) })
}

func TestDuration_Equal(t *testing.T) {
	assert.True(t, OneSecond.Equal(MustDuration(1000, time.Millisecond)))
	assert.True(t, OneMillisecond.Equal(MustDuration(1000500, time.Nanosecond)))
	assert.False(t, OneSecond.Equal(Forever))
	assert.False(t, Forever.Equal(SameAsPollInterval))
	assert.True(t, Duration{}.Equal(Duration{}))
	assert.False(t, Zero.Equal(Duration{}))
}

func TestOf(t *testing.T) {
	d, err := Of(1500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, d.Unit())
	assert.EqualValues(t, 1500, d.Amount())

	d, err = Of(2 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "2 minutes", d.String())

	d, err = Of(0)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Of(-time.Second)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestParseDuration(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Duration
	}{
		{"forever", Forever},
		{"FOREVER", Forever},
		{"same_as_poll_interval", SameAsPollInterval},
		{"250ms", MustDuration(250, time.Millisecond)},
		{"1m30s", MustDuration(90, time.Second)},
		{"PT0.5S", FiveHundredMilliseconds},
		{"PT10S", TenSeconds},
		{"P1D", MustDuration(24, time.Hour)},
	} {
		t.Run(tc.in, func(t *testing.T) {
			d, err := ParseDuration(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(d), "expected %s, got %s", tc.expected, d)
		})
	}

	for _, in := range []string{"", "soon", "-5s", "PT-1S"} {
		_, err := ParseDuration(in)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), in)
	}
}

func TestDuration_String(t *testing.T) {
	assert.Equal(t, "500 milliseconds", FiveHundredMilliseconds.String())
	assert.Equal(t, "1 second", OneSecond.String())
	assert.Equal(t, "10 minutes", TenMinutes.String())
	assert.Equal(t, "forever", Forever.String())
	assert.Equal(t, "same as poll interval", SameAsPollInterval.String())
	assert.Equal(t, "undefined", Duration{}.String())
}
