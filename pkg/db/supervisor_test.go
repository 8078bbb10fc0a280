package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int32
}

func (f *fakePinger) PingContext(context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) set(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func TestSupervisor_CheckTracksState(t *testing.T) {
	p := &fakePinger{}
	s := NewSupervisor(p, time.Minute)

	var changes []bool
	s.OnChange = func(up bool) { changes = append(changes, up) }

	assert.True(t, s.Check(context.Background()))
	assert.True(t, s.Healthy())

	p.set(errors.New("connection refused"))
	assert.False(t, s.Check(context.Background()))
	assert.False(t, s.Healthy())
	assert.False(t, s.Check(context.Background()))

	p.set(nil)
	assert.True(t, s.Check(context.Background()))

	assert.Equal(t, []bool{false, true}, changes)
}

func TestSupervisor_RunRecovers(t *testing.T) {
	p := &fakePinger{err: errors.New("down")}
	s := NewSupervisor(p, 10*time.Millisecond)
	s.backoff.Min = time.Millisecond
	s.backoff.Max = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !s.Healthy() }, time.Second, 5*time.Millisecond)

	p.set(nil)
	assert.Eventually(t, s.Healthy, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.GreaterOrEqual(t, p.calls.Load(), int32(2))
}
