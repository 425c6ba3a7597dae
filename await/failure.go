package await

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// FailureChannel lets goroutines outside the waiter's control report
// failures. Only the most recent publication is kept.
//
// A wait started at time t claims a publication only if it was published at
// or after t; claiming clears the slot, so a given failure is observed by at
// most one wait.
type FailureChannel struct {
	log *logrus.Entry

	slot       atomic.Pointer[publication]
	generation atomic.Uint64
	dropped    atomic.Uint64
}

type publication struct {
	err         error
	publishedAt time.Time
	generation  uint64
	// stale is set once a wait that started after publishedAt has seen it.
	stale atomic.Bool
}

// DefaultFailureChannel is the process-wide channel used when a Config does
// not provide its own.
var DefaultFailureChannel = NewFailureChannel()

func NewFailureChannel() *FailureChannel {
	return &FailureChannel{
		log: logrus.StandardLogger().WithField("type", "await/failures"),
	}
}

// Publish records err. It is safe for concurrent use. A nil err is ignored.
func (c *FailureChannel) Publish(err error) {
	if err == nil {
		return
	}

	p := &publication{
		err:         err,
		publishedAt: time.Now(),
		generation:  c.generation.Add(1),
	}
	prev := c.slot.Swap(p)
	switch {
	case prev == nil:
	case prev.stale.Load():
		c.logger().WithError(prev.err).WithField("generation", prev.generation).Debug("stale failure overwritten")
	default:
		c.dropped.Add(1)
		c.logger().WithError(prev.err).WithField("generation", prev.generation).Warn("unclaimed failure overwritten by a newer one")
	}
}

// PublishPanic records a recovered panic value.
func (c *FailureChannel) PublishPanic(r interface{}) {
	c.Publish(NewPanicError(r))
}

// Recover publishes the in-flight panic, if any. It must be deferred
// directly:
//
//	defer failures.Recover()
func (c *FailureChannel) Recover() {
	if r := recover(); r != nil {
		c.PublishPanic(r)
	}
}

// Go runs fn on a new goroutine, publishing any panic it raises.
func (c *FailureChannel) Go(fn func()) {
	go func() {
		defer c.Recover()
		fn()
	}()
}

// GoErr runs fn on a new goroutine, publishing the error it returns or any
// panic it raises.
func (c *FailureChannel) GoErr(fn func() error) {
	go func() {
		defer c.Recover()
		c.Publish(fn())
	}()
}

// Consume atomically claims and clears the current publication if it was
// published at or after since. Older publications are left in place for
// waits that started earlier, but are marked stale: overwriting a stale
// publication is not counted by Dropped.
func (c *FailureChannel) Consume(since time.Time) error {
	for {
		p := c.slot.Load()
		if p == nil {
			return nil
		}
		if p.publishedAt.Before(since) {
			p.stale.Store(true)
			return nil
		}
		if c.slot.CompareAndSwap(p, nil) {
			return p.err
		}
	}
}

func (c *FailureChannel) logger() *logrus.Entry {
	if c.log == nil {
		return logrus.StandardLogger().WithField("type", "await/failures")
	}
	return c.log
}

// Generation returns the number of publications so far.
func (c *FailureChannel) Generation() uint64 {
	return c.generation.Load()
}

// Dropped returns how many unclaimed publications were overwritten before
// any running wait could have seen them.
func (c *FailureChannel) Dropped() uint64 {
	return c.dropped.Load()
}

// Clear discards any pending publication.
func (c *FailureChannel) Clear() {
	c.slot.Store(nil)
}
