package match

import (
	"fmt"
	"regexp"

	"github.com/goburrow/cache"
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-await/await"
	"github.com/kinecosystem/agora-await/metrics"
)

const defaultPatternCacheSize = 256

// PatternCache holds compiled regular expressions, keyed by pattern.
type PatternCache struct {
	patterns cache.LoadingCache
}

var defaultPatterns = NewPatternCache(defaultPatternCacheSize, nil)

// NewPatternCache returns a cache of at most size compiled patterns. If
// client is not nil, cache statistics are reported through it.
func NewPatternCache(size int, client metrics.Client) *PatternCache {
	opts := []cache.Option{cache.WithMaximumSize(size)}
	if client != nil {
		opts = append(opts, cache.WithStatsCounter(metrics.NewMangoStatsCounter(client, "cache:match_patterns")))
	}

	return &PatternCache{
		patterns: cache.NewLoadingCache(func(k cache.Key) (cache.Value, error) {
			return regexp.Compile(k.(string))
		}, opts...),
	}
}

// Regexp returns a matcher for strings matching pattern.
func (c *PatternCache) Regexp(pattern string) (await.Matcher[string], error) {
	v, err := c.patterns.Get(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
	}
	return regexpMatcher{re: v.(*regexp.Regexp)}, nil
}

// Stats returns the cache statistics.
func (c *PatternCache) Stats() cache.Stats {
	var st cache.Stats
	c.patterns.Stats(&st)
	return st
}

// Close releases the cache.
func (c *PatternCache) Close() error {
	return c.patterns.Close()
}

// Regexp returns a matcher for strings matching pattern, using a shared
// pattern cache.
func Regexp(pattern string) (await.Matcher[string], error) {
	return defaultPatterns.Regexp(pattern)
}

// MustRegexp is like Regexp but panics on an invalid pattern.
func MustRegexp(pattern string) await.Matcher[string] {
	m, err := Regexp(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

type regexpMatcher struct {
	re *regexp.Regexp
}

func (r regexpMatcher) Matches(v string) bool { return r.re.MatchString(v) }

func (r regexpMatcher) Describe() string {
	return fmt.Sprintf("a string matching /%s/", r.re)
}

func (r regexpMatcher) DescribeMismatch(v string) string {
	return fmt.Sprintf("was %q", v)
}
