package await

import (
	"github.com/pkg/errors"
)

// IgnoreRule reports whether an error should be treated as "condition not
// yet true" instead of failing the wait.
type IgnoreRule func(err error) bool

// IgnorePolicy decides which errors raised while evaluating a condition are
// ignored. An error is ignored if any rule matches it. The zero value ignores
// nothing.
type IgnorePolicy struct {
	rules []IgnoreRule
}

// IgnoreNothing is the default policy.
var IgnoreNothing = IgnorePolicy{}

// NewIgnorePolicy returns a policy that ignores errors matched by any of rules.
func NewIgnorePolicy(rules ...IgnoreRule) IgnorePolicy {
	return IgnorePolicy{}.With(rules...)
}

// With returns a copy of p extended with rules.
func (p IgnorePolicy) With(rules ...IgnoreRule) IgnorePolicy {
	combined := make([]IgnoreRule, 0, len(p.rules)+len(rules))
	combined = append(combined, p.rules...)
	for _, r := range rules {
		if r != nil {
			combined = append(combined, r)
		}
	}
	return IgnorePolicy{rules: combined}
}

// ShouldIgnore implements the policy.
func (p IgnorePolicy) ShouldIgnore(err error) bool {
	if err == nil {
		return false
	}
	for _, r := range p.rules {
		if r(err) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the policy has no rules.
func (p IgnorePolicy) IsEmpty() bool {
	return len(p.rules) == 0
}

// IgnoreErrors matches errors whose chain contains any of targets.
func IgnoreErrors(targets ...error) IgnoreRule {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

// IgnoreErrorsOfType matches errors whose chain contains an E. When E is an
// interface type, any implementation matches.
func IgnoreErrorsOfType[E error]() IgnoreRule {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// IgnoreErrorsMatching matches errors for which predicate returns true.
func IgnoreErrorsMatching(predicate func(error) bool) IgnoreRule {
	return func(err error) bool {
		return predicate != nil && predicate(err)
	}
}

// IgnoreAllErrors matches every error.
func IgnoreAllErrors() IgnoreRule {
	return func(error) bool { return true }
}
