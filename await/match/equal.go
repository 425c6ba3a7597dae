package match

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/kinecosystem/agora-await/await"
)

type equal[T any] struct {
	expected T
	opts     []cmp.Option
}

// Equal matches values deeply equal to expected, as decided by cmp.Equal with
// opts. Mismatches are described with a cmp.Diff.
func Equal[T any](expected T, opts ...cmp.Option) await.Matcher[T] {
	return equal[T]{expected: expected, opts: opts}
}

func (m equal[T]) Matches(v T) bool {
	return cmp.Equal(m.expected, v, m.opts...)
}

func (m equal[T]) Describe() string {
	return fmt.Sprintf("equal to %v", m.expected)
}

func (m equal[T]) DescribeMismatch(v T) string {
	return fmt.Sprintf("was %v (-expected +actual):\n%s", v, cmp.Diff(m.expected, v, m.opts...))
}
