package match

import (
	"cmp"
	"fmt"

	"github.com/kinecosystem/agora-await/await"
)

type ordered[T cmp.Ordered] struct {
	bound  T
	op     string
	accept func(c int) bool
}

func (m ordered[T]) Matches(v T) bool {
	return m.accept(cmp.Compare(v, m.bound))
}

func (m ordered[T]) Describe() string {
	return fmt.Sprintf("%s %v", m.op, m.bound)
}

func (m ordered[T]) DescribeMismatch(v T) string {
	return fmt.Sprintf("was %v", v)
}

func GreaterThan[T cmp.Ordered](bound T) await.Matcher[T] {
	return ordered[T]{bound: bound, op: "greater than", accept: func(c int) bool { return c > 0 }}
}

func GreaterThanOrEqual[T cmp.Ordered](bound T) await.Matcher[T] {
	return ordered[T]{bound: bound, op: "greater than or equal to", accept: func(c int) bool { return c >= 0 }}
}

func LessThan[T cmp.Ordered](bound T) await.Matcher[T] {
	return ordered[T]{bound: bound, op: "less than", accept: func(c int) bool { return c < 0 }}
}

func LessThanOrEqual[T cmp.Ordered](bound T) await.Matcher[T] {
	return ordered[T]{bound: bound, op: "less than or equal to", accept: func(c int) bool { return c <= 0 }}
}
