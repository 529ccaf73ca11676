package syncdb

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPromoter struct {
	calls atomic.Int32
	err   error
}

func (p *countingPromoter) PromoteStarted(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep without deadline")
	}
	return 0, p.err
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	p := &countingPromoter{}
	ctx, cancel := context.WithCancel(context.Background())

	Run(ctx, p, 10*time.Millisecond)
	assert.EqualValues(t, 1, p.calls.Load(), "first sweep runs before returning")

	assert.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(30 * time.Millisecond)
	stopped := p.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, p.calls.Load())
}

func TestSweepErrorsAreLogged(t *testing.T) {
	p := &countingPromoter{err: errors.New("db down")}
	assert.NotPanics(t, func() { syncOnce(context.Background(), p) })
	assert.EqualValues(t, 1, p.calls.Load())
}
