package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Effects runs best-effort side effects (progression rewards, notification
// fan-out) after a primary write has already succeeded. Failures and panics
// are logged and never reach the caller.
type Effects struct {
	Logger  *logrus.Logger
	Async   bool
	Timeout time.Duration

	wg conc.WaitGroup
}

// NewEffects builds a runner. When async is true effects run on their own
// goroutine with a context detached from the caller's cancellation.
func NewEffects(logger *logrus.Logger, async bool, timeout time.Duration) *Effects {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Effects{Logger: logger, Async: async, Timeout: timeout}
}

// Run executes fn under the runner policy. Steps inside fn run in order.
func (e *Effects) Run(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if e == nil {
		return
	}
	if !e.Async {
		e.exec(ctx, name, fn)
		return
	}
	detached := context.WithoutCancel(ctx)
	e.wg.Go(func() {
		c, cancel := context.WithTimeout(detached, e.Timeout)
		defer cancel()
		e.exec(c, name, fn)
	})
}

// Wait blocks until every async effect finished.
func (e *Effects) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

func (e *Effects) exec(ctx context.Context, name string, fn func(ctx context.Context) error) {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = fn(ctx) })
	if r := pc.Recovered(); r != nil {
		if e.Logger != nil {
			e.Logger.WithField("effect", name).WithField("panic", r.Value).Error("side effect panicked")
		}
		return
	}
	if err != nil && e.Logger != nil {
		e.Logger.WithError(err).WithField("effect", name).Warn("side effect failed")
	}
}
