package application_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/midnight-circuit/internal/application"
)

func TestEffectsSwallowErrorsAndPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fx := application.NewEffects(logger, false, time.Second)
	ctx := context.Background()

	fx.Run(ctx, "boom", func(context.Context) error { return errors.New("boom") })
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data["effect"])

	assert.NotPanics(t, func() {
		fx.Run(ctx, "panic", func(context.Context) error { panic("nil map") })
	})
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	fx.Run(ctx, "ok", func(context.Context) error { return nil })
	assert.Len(t, hook.Entries, 2)
}

func TestEffectsAsyncOutliveCallerContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	fx := application.NewEffects(logger, true, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	var done, cancelled atomic.Int32
	release := make(chan struct{})
	for i := 0; i < 5; i++ {
		fx.Run(ctx, "count", func(c context.Context) error {
			<-release
			if c.Err() != nil {
				cancelled.Add(1)
			}
			done.Add(1)
			return nil
		})
	}
	cancel()
	close(release)
	fx.Wait()

	assert.EqualValues(t, 5, done.Load())
	assert.Zero(t, cancelled.Load())
}

func TestEffectsAsyncTimeout(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fx := application.NewEffects(logger, true, 20*time.Millisecond)

	fx.Run(context.Background(), "slow", func(c context.Context) error {
		<-c.Done()
		return c.Err()
	})
	fx.Wait()

	require.Len(t, hook.Entries, 1)
	assert.ErrorIs(t, hook.LastEntry().Data[logrus.ErrorKey].(error), context.DeadlineExceeded)
}

func TestNilEffectsIsNoop(t *testing.T) {
	var fx *application.Effects
	ran := false
	fx.Run(context.Background(), "x", func(context.Context) error { ran = true; return nil })
	fx.Wait()
	assert.False(t, ran)
}
