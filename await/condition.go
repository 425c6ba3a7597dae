package await

import (
	"fmt"
	"strings"

	"github.com/stretchr/testify/require"
)

// Evaluation is the outcome of a single condition evaluation.
type Evaluation struct {
	Matched     bool
	Description string
	Value       string
	HasValue    bool
}

// Condition is evaluated once per poll on the waiting goroutine.
type Condition interface {
	Evaluate() (Evaluation, error)
}

// Supplier produces the value under test.
type Supplier[T any] func() (T, error)

// Matcher decides whether a supplied value is acceptable and describes it.
type Matcher[T any] interface {
	Matches(v T) bool
	Describe() string
	DescribeMismatch(v T) string
}

// ConditionFunc adapts a predicate that may fail.
type ConditionFunc func() (bool, error)

// Evaluate implements Condition.Evaluate.
func (f ConditionFunc) Evaluate() (Evaluation, error) {
	ok, err := f()
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Matched: ok, Description: fmt.Sprintf("condition returned %t", ok)}, nil
}

// BoolConditionFunc adapts a predicate that cannot fail.
type BoolConditionFunc func() bool

// Evaluate implements Condition.Evaluate.
func (f BoolConditionFunc) Evaluate() (Evaluation, error) {
	return ConditionFunc(func() (bool, error) { return f(), nil }).Evaluate()
}

type describedCondition struct {
	description string
	f           func() (bool, error)
}

// DescribedCondition is like ConditionFunc but uses description in listener
// records and timeout messages.
func DescribedCondition(description string, f func() (bool, error)) Condition {
	return &describedCondition{description: description, f: f}
}

func (c *describedCondition) Evaluate() (Evaluation, error) {
	ok, err := c.f()
	if err != nil {
		return Evaluation{}, err
	}
	if ok {
		return Evaluation{Matched: true, Description: c.description + " was fulfilled"}, nil
	}
	return Evaluation{Description: c.description + " was not fulfilled"}, nil
}

// NoErrorCondition matches once f returns nil. Errors returned by f are not
// failures; they are reported as the mismatch description.
func NoErrorCondition(f func() error) Condition {
	return noErrorCondition(f)
}

type noErrorCondition func() error

func (f noErrorCondition) Evaluate() (Evaluation, error) {
	if err := f(); err != nil {
		return Evaluation{Description: fmt.Sprintf("function returned error: %v", err)}, nil
	}
	return Evaluation{Matched: true, Description: "function returned no error"}, nil
}

// ValueCondition matches when the supplied value satisfies m. The last
// supplied value is available through Last.
type ValueCondition[T any] struct {
	supplier Supplier[T]
	matcher  Matcher[T]

	last    T
	hasLast bool
}

var _ Condition = (*ValueCondition[int])(nil)

func NewValueCondition[T any](s Supplier[T], m Matcher[T]) *ValueCondition[T] {
	return &ValueCondition[T]{supplier: s, matcher: m}
}

// Evaluate implements Condition.Evaluate.
func (c *ValueCondition[T]) Evaluate() (Evaluation, error) {
	v, err := c.supplier()
	if err != nil {
		return Evaluation{}, err
	}
	c.last, c.hasLast = v, true

	e := Evaluation{Value: fmt.Sprintf("%v", v), HasValue: true}
	if c.matcher.Matches(v) {
		e.Matched = true
		e.Description = fmt.Sprintf("value %v matched %s", v, c.matcher.Describe())
	} else {
		e.Description = fmt.Sprintf("expected %s but %s", c.matcher.Describe(), c.matcher.DescribeMismatch(v))
	}
	return e, nil
}

// Last returns the most recently supplied value.
func (c *ValueCondition[T]) Last() (T, bool) {
	return c.last, c.hasLast
}

// AssertionCondition matches when f records no assertion failures. f receives
// a require.TestingT, so both assert and require helpers can be used.
func AssertionCondition(f func(t require.TestingT)) Condition {
	return assertionCondition(f)
}

type assertionCondition func(t require.TestingT)

func (f assertionCondition) Evaluate() (e Evaluation, err error) {
	c := &collector{}
	defer func() {
		if r := recover(); r != nil {
			if r != errFailNow {
				panic(r)
			}
		}
		if len(c.failures) == 0 {
			e = Evaluation{Matched: true, Description: "assertion passed"}
			return
		}
		e = Evaluation{Description: "assertion failed: " + strings.Join(c.failures, "; ")}
	}()

	f(c)
	return
}

var errFailNow = &struct{ name string }{"await: FailNow"}

// collector records assertion failures instead of failing a test.
type collector struct {
	failures []string
}

func (c *collector) Errorf(format string, args ...interface{}) {
	c.failures = append(c.failures, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (c *collector) FailNow() {
	panic(errFailNow)
}

// equalMatcher backs Factory.UntilEqual without depending on the match
// package.
type equalMatcher[T comparable] struct {
	expected T
}

func (m equalMatcher[T]) Matches(v T) bool { return v == m.expected }

func (m equalMatcher[T]) Describe() string { return fmt.Sprintf("equal to %v", m.expected) }

func (m equalMatcher[T]) DescribeMismatch(v T) string { return fmt.Sprintf("was %v", v) }
