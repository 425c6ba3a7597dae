package timeutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PnDTnHnMn.nS, with optional signs on the whole value and on every
// component, as accepted by java.time.Duration.
var iso8601 = regexp.MustCompile(`(?i)^([-+]?)P(?:([-+]?[0-9]+)D)?(?:T(?:([-+]?[0-9]+)H)?(?:([-+]?[0-9]+)M)?(?:([-+]?[0-9]+)(?:[.,]([0-9]{0,9}))?S)?)?$`)

var iso8601Units = []struct {
	group int
	unit  time.Duration
}{
	{group: 2, unit: 24 * time.Hour},
	{group: 3, unit: time.Hour},
	{group: 4, unit: time.Minute},
	{group: 5, unit: time.Second},
}

// IsISO8601 reports whether s looks like an ISO-8601 duration. It does not
// check for overflow.
func IsISO8601(s string) bool {
	return iso8601.MatchString(strings.TrimSpace(s))
}

// ParseISO8601 parses an ISO-8601 duration such as "PT1M30S" or "-P1DT2.5S".
// Like java.time.Duration, signed components are accepted, and the
// fractional seconds take the sign of the seconds component. Durations that
// do not fit in a time.Duration are rejected.
func ParseISO8601(s string) (time.Duration, error) {
	m := iso8601.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return 0, errors.Errorf("invalid duration %s", s)
	}

	var total time.Duration
	for _, u := range iso8601Units {
		if m[u.group] == "" {
			continue
		}

		n, err := strconv.ParseInt(m[u.group], 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid duration %s", s)
		}
		if n > math.MaxInt64/int64(u.unit) || n < math.MinInt64/int64(u.unit) {
			return 0, errors.Errorf("invalid duration %s: overflow", s)
		}

		if total, err = addDuration(total, time.Duration(n)*u.unit); err != nil {
			return 0, errors.Wrapf(err, "invalid duration %s", s)
		}
	}

	if m[6] != "" {
		// [0-9]{0,9} always parses.
		nanos, _ := strconv.ParseInt((m[6] + "000000000")[:9], 10, 64)
		if strings.HasPrefix(m[5], "-") {
			nanos = -nanos
		}

		var err error
		if total, err = addDuration(total, time.Duration(nanos)); err != nil {
			return 0, errors.Wrapf(err, "invalid duration %s", s)
		}
	}

	if m[1] == "-" {
		if total == math.MinInt64 {
			return 0, errors.Errorf("invalid duration %s: overflow", s)
		}
		total = -total
	}
	return total, nil
}

// FormatISO8601 formats d as an ISO-8601 duration, using hours as the
// largest unit: 90*time.Second is "PT1M30S".
func FormatISO8601(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
	}
	b.WriteString("PT")

	// Work on the magnitude as a uint64 so that math.MinInt64 is handled.
	v := uint64(d)
	if d < 0 {
		v = uint64(-(d + 1)) + 1
	}

	if h := v / uint64(time.Hour); h > 0 {
		b.WriteString(strconv.FormatUint(h, 10) + "H")
		v %= uint64(time.Hour)
	}
	if m := v / uint64(time.Minute); m > 0 {
		b.WriteString(strconv.FormatUint(m, 10) + "M")
		v %= uint64(time.Minute)
	}
	if v > 0 {
		b.WriteString(strconv.FormatUint(v/uint64(time.Second), 10))
		if frac := v % uint64(time.Second); frac > 0 {
			b.WriteString("." + strings.TrimRight(strconv.FormatUint(frac+uint64(time.Second), 10)[1:], "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

func addDuration(x, y time.Duration) (time.Duration, error) {
	r := x + y
	if (x^r)&(y^r) < 0 {
		return 0, errors.New("time.Duration overflow")
	}
	return r, nil
}
