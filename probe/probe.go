// Package probe provides readiness conditions for infrastructure a program
// or test depends on. A probe that cannot reach its target does not fail the
// wait; the last failure is reported in the timeout message instead.
package probe

import (
	"context"
	"fmt"

	"github.com/kinecosystem/agora-await/await"
)

type probe struct {
	ctx         context.Context
	description string
	check       func(ctx context.Context) error
	o           opts
}

// Func returns a condition that is satisfied once check returns nil. Every
// attempt gets a context derived from ctx that is bounded by the attempt
// timeout.
func Func(ctx context.Context, description string, check func(ctx context.Context) error, options ...Option) await.Condition {
	return &probe{
		ctx:         ctx,
		description: description,
		check:       check,
		o:           newOpts(options),
	}
}

// Evaluate implements await.Condition.Evaluate.
func (p *probe) Evaluate() (await.Evaluation, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.o.attemptTimeout)
	defer cancel()

	if err := p.check(ctx); err != nil {
		p.o.log.WithError(err).WithField("probe", p.description).Trace("probe attempt failed")
		return await.Evaluation{Description: fmt.Sprintf("%s is not ready: %v", p.description, err)}, nil
	}
	return await.Evaluation{Matched: true, Description: fmt.Sprintf("%s is ready", p.description)}, nil
}
