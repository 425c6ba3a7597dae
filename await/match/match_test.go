package match

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
	"github.com/kinecosystem/agora-await/metrics/memory"
)

type member struct {
	ID    string
	Peers []string
}

func TestEqual(t *testing.T) {
	m := Equal(member{ID: "a", Peers: []string{"b", "c"}})
	assert.True(t, m.Matches(member{ID: "a", Peers: []string{"b", "c"}}))
	assert.False(t, m.Matches(member{ID: "a", Peers: []string{"c", "b"}}))

	mismatch := m.DescribeMismatch(member{ID: "a"})
	assert.Contains(t, mismatch, "-expected +actual")
	assert.Contains(t, mismatch, "Peers")

	sorted := Equal([]string{"b", "c"}, cmpopts.SortSlices(func(a, b string) bool { return a < b }))
	assert.True(t, sorted.Matches([]string{"c", "b"}))
}

func TestOrdered(t *testing.T) {
	assert.True(t, GreaterThan(3).Matches(4))
	assert.False(t, GreaterThan(3).Matches(3))
	assert.True(t, GreaterThanOrEqual(3).Matches(3))
	assert.True(t, LessThan(1.5).Matches(1.0))
	assert.False(t, LessThan("b").Matches("c"))
	assert.True(t, LessThanOrEqual(time.Second).Matches(time.Second))

	assert.Equal(t, "greater than 3", GreaterThan(3).Describe())
	assert.Equal(t, "was 1", GreaterThan(3).DescribeMismatch(1))
}

func TestNil(t *testing.T) {
	var p *member
	var s []int
	var e error

	assert.True(t, Nil[*member]().Matches(p))
	assert.True(t, Nil[[]int]().Matches(s))
	assert.True(t, Nil[error]().Matches(e))
	assert.False(t, Nil[*member]().Matches(&member{}))
	assert.False(t, Nil[int]().Matches(0))

	assert.True(t, NotNil[*member]().Matches(&member{}))
	assert.Equal(t, "not nil", NotNil[*member]().Describe())
}

func TestContainsAndRegexp(t *testing.T) {
	assert.True(t, Contains("ready").Matches("server ready on :8080"))
	assert.False(t, Contains("ready").Matches("starting"))

	m, err := Regexp(`^server ready on :\d+$`)
	require.NoError(t, err)
	assert.True(t, m.Matches("server ready on :8080"))
	assert.False(t, m.Matches("server ready on :http"))
	assert.Equal(t, `a string matching /^server ready on :\d+$/`, m.Describe())

	_, err = Regexp(`(`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustRegexp(`[`) })
}

func TestPatternCacheStats(t *testing.T) {
	client, err := metrics.CreateClient(memory.ClientType, &metrics.ClientConfig{Namespace: "test"})
	require.NoError(t, err)

	c := NewPatternCache(8, client)
	defer c.Close()

	for i := 0; i < 3; i++ {
		_, err := c.Regexp(`\d+`)
		require.NoError(t, err)
	}

	mem := client.(*memory.Client)
	hits, misses := mem.CountTotal("test_cache_hits"), mem.CountTotal("test_cache_misses")
	assert.EqualValues(t, 3, hits+misses)
	assert.True(t, misses >= 1)
	assert.True(t, hits >= 1)

	st := c.Stats()
	assert.EqualValues(t, 3, st.HitCount+st.MissCount)
	assert.EqualValues(t, 1, st.LoadSuccessCount)
	assert.Zero(t, st.LoadErrorCount)

	_, err = c.Regexp(`(`)
	require.Error(t, err)
	assert.EqualValues(t, 1, c.Stats().LoadErrorCount)
}

func TestHasLen(t *testing.T) {
	assert.True(t, HasLen[[]int](2).Matches([]int{1, 2}))
	assert.True(t, HasLen[map[string]int](0).Matches(nil))
	assert.True(t, HasLen[string](5).Matches("hello"))
	assert.False(t, HasLen[int](0).Matches(0))
	assert.Equal(t, "had length 1", HasLen[[]int](2).DescribeMismatch([]int{1}))
	assert.Equal(t, "int has no length", HasLen[int](0).DescribeMismatch(0))
}

func TestCombinators(t *testing.T) {
	between := AllOf(GreaterThan(1), LessThan(5))
	assert.True(t, between.Matches(3))
	assert.False(t, between.Matches(5))
	assert.Equal(t, "(greater than 1) and (less than 5)", between.Describe())
	assert.Equal(t, "less than 5: was 7", between.DescribeMismatch(7))

	outside := AnyOf(LessThan(1), GreaterThan(5))
	assert.True(t, outside.Matches(0))
	assert.False(t, outside.Matches(3))
	assert.Equal(t, "(less than 1) or (greater than 5)", outside.Describe())

	assert.True(t, AllOf[int]().Matches(0))
	assert.False(t, AnyOf[int]().Matches(0))

	even := Func("even", func(v int) bool { return v%2 == 0 })
	assert.True(t, even.Matches(4))
	assert.True(t, Not(even).Matches(3))
	assert.Equal(t, "not even", Not(even).Describe())
}

func TestUntilValueWithMatchers(t *testing.T) {
	var n int32
	supplier := func() (int32, error) { return atomic.AddInt32(&n, 1), nil }

	f := await.New().AtMost(await.TwoSeconds).PollEvery(await.OneMillisecond).FailureChannel(await.NewFailureChannel())
	v, err := await.UntilValue(context.Background(), f, supplier, AllOf(GreaterThan[int32](3), Func("even", func(v int32) bool { return v%2 == 0 })))
	require.NoError(t, err)
	assert.EqualValues(t, 4, v)

	log := []string{}
	_, err = await.UntilValue(context.Background(), f.AtMost(await.MustDuration(30, time.Millisecond)), func() (string, error) {
		log = append(log, "line")
		return strings.Join(log, "\n"), nil
	}, Contains("ready"))
	assert.ErrorIs(t, err, await.ErrTimeout)
	assert.Contains(t, err.Error(), `expected a string containing "ready"`)
}
