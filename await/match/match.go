// Package match provides Matcher implementations for value conditions.
package match

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kinecosystem/agora-await/await"
)

type funcMatcher[T any] struct {
	description string
	f           func(T) bool
}

// Func adapts a predicate. description is used as the matcher description.
func Func[T any](description string, f func(T) bool) await.Matcher[T] {
	return funcMatcher[T]{description: description, f: f}
}

func (m funcMatcher[T]) Matches(v T) bool { return m.f(v) }
func (m funcMatcher[T]) Describe() string { return m.description }
func (m funcMatcher[T]) DescribeMismatch(v T) string { return fmt.Sprintf("was %v", v) }

type not[T any] struct {
	m await.Matcher[T]
}

// Not inverts m.
func Not[T any](m await.Matcher[T]) await.Matcher[T] {
	return not[T]{m: m}
}

func (n not[T]) Matches(v T) bool { return !n.m.Matches(v) }
func (n not[T]) Describe() string { return "not " + n.m.Describe() }
func (n not[T]) DescribeMismatch(v T) string { return fmt.Sprintf("was %v", v) }

// Nil matches nil interfaces, pointers, maps, slices, channels and functions.
func Nil[T any]() await.Matcher[T] {
	return Func[T]("nil", func(v T) bool { return isNil(v) })
}

// NotNil is Not(Nil()).
func NotNil[T any]() await.Matcher[T] {
	return Not(Nil[T]())
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

type contains struct {
	substr string
}

// Contains matches strings containing substr.
func Contains(substr string) await.Matcher[string] {
	return contains{substr: substr}
}

func (c contains) Matches(v string) bool { return strings.Contains(v, c.substr) }
func (c contains) Describe() string { return fmt.Sprintf("a string containing %q", c.substr) }
func (c contains) DescribeMismatch(v string) string { return fmt.Sprintf("was %q", v) }

type hasLen[T any] struct {
	n int
}

// HasLen matches arrays, channels, maps, slices and strings of length n.
// Values of other kinds never match.
func HasLen[T any](n int) await.Matcher[T] {
	return hasLen[T]{n: n}
}

func (h hasLen[T]) Matches(v T) bool {
	l, ok := length(v)
	return ok && l == h.n
}

func (h hasLen[T]) Describe() string {
	return fmt.Sprintf("length %d", h.n)
}

func (h hasLen[T]) DescribeMismatch(v T) string {
	l, ok := length(v)
	if !ok {
		return fmt.Sprintf("%T has no length", v)
	}
	return fmt.Sprintf("had length %d", l)
}

func length(v interface{}) (int, bool) {
	if v == nil {
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len(), true
	default:
		return 0, false
	}
}

type allOf[T any] []await.Matcher[T]

// AllOf matches when every matcher matches. An empty AllOf always matches.
func AllOf[T any](matchers ...await.Matcher[T]) await.Matcher[T] {
	return allOf[T](matchers)
}

func (a allOf[T]) Matches(v T) bool {
	for _, m := range a {
		if !m.Matches(v) {
			return false
		}
	}
	return true
}

func (a allOf[T]) Describe() string {
	return join(a, " and ")
}

func (a allOf[T]) DescribeMismatch(v T) string {
	for _, m := range a {
		if !m.Matches(v) {
			return fmt.Sprintf("%s: %s", m.Describe(), m.DescribeMismatch(v))
		}
	}
	return fmt.Sprintf("was %v", v)
}

type anyOf[T any] []await.Matcher[T]

// AnyOf matches when at least one matcher matches. An empty AnyOf never
// matches.
func AnyOf[T any](matchers ...await.Matcher[T]) await.Matcher[T] {
	return anyOf[T](matchers)
}

func (a anyOf[T]) Matches(v T) bool {
	for _, m := range a {
		if m.Matches(v) {
			return true
		}
	}
	return false
}

func (a anyOf[T]) Describe() string {
	return join(a, " or ")
}

func (a anyOf[T]) DescribeMismatch(v T) string {
	return fmt.Sprintf("was %v", v)
}

func join[T any](matchers []await.Matcher[T], sep string) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = "(" + m.Describe() + ")"
	}
	return strings.Join(parts, sep)
}
