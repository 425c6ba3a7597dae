package await

import (
	"github.com/pkg/errors"
)

// WaitConstraint bounds how long a wait may take and how long a condition
// must hold. Values are immutable; the With* methods return modified copies.
type WaitConstraint struct {
	min  Duration
	max  Duration
	hold Duration
}

// NewWaitConstraint returns a constraint with no minimum wait and no hold
// time.
func NewWaitConstraint(max Duration) WaitConstraint {
	return WaitConstraint{min: Zero, max: max}
}

// MinWaitTime returns the earliest time a match is accepted, Zero if unset.
func (c WaitConstraint) MinWaitTime() Duration {
	if !c.min.IsDefined() {
		return Zero
	}
	return c.min
}

// MaxWaitTime returns the time after which the wait times out.
func (c WaitConstraint) MaxWaitTime() Duration {
	return c.max
}

// HoldPredicateTime returns the time a condition must be continuously true,
// and whether one was configured.
func (c WaitConstraint) HoldPredicateTime() (Duration, bool) {
	return c.hold, c.hold.IsDefined()
}

// WithMinWaitTime returns a copy of c with the minimum wait set to d.
func (c WaitConstraint) WithMinWaitTime(d Duration) WaitConstraint {
	c.min = d
	return c
}

// WithMaxWaitTime returns a copy of c with the maximum wait set to d.
func (c WaitConstraint) WithMaxWaitTime(d Duration) WaitConstraint {
	c.max = d
	return c
}

// WithHoldPredicateTime returns a copy of c that requires a match to hold
// for d.
func (c WaitConstraint) WithHoldPredicateTime(d Duration) WaitConstraint {
	c.hold = d
	return c
}

// Validate checks the constraint invariants.
func (c WaitConstraint) Validate() error {
	min := c.MinWaitTime()
	switch {
	case !c.max.IsDefined():
		return errors.Wrap(ErrInvalidConfiguration, "maximum wait time must be specified")
	case c.max.IsSameAsPollInterval():
		return errors.Wrap(ErrInvalidConfiguration, "cannot use SameAsPollInterval as maximum wait time")
	case min.IsSameAsPollInterval():
		return errors.Wrap(ErrInvalidConfiguration, "cannot use SameAsPollInterval as minimum wait time")
	case min.IsForever():
		return errors.Wrap(ErrInvalidConfiguration, "minimum wait time cannot be forever")
	case c.hold.IsSameAsPollInterval():
		return errors.Wrap(ErrInvalidConfiguration, "cannot use SameAsPollInterval as hold predicate time")
	case c.hold.IsForever():
		return errors.Wrap(ErrInvalidConfiguration, "hold predicate time cannot be forever")
	}

	if !c.max.IsForever() && min.Compare(c.max) > 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "minimum wait time (%s) must be less than or equal to maximum wait time (%s)", min, c.max)
	}
	if c.hold.IsDefined() && !c.max.IsForever() && c.hold.Compare(c.max) > 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "hold predicate time (%s) must be less than or equal to maximum wait time (%s)", c.hold, c.max)
	}
	return nil
}
