package poll

import (
	"sync"
	"time"
)

type systemPlatform struct {
	start time.Time
	epoch uint64
}

// SystemPlatform reads the wall clock once and advances it with the
// monotonic clock, so ClockSeconds never goes backwards.
func SystemPlatform() Platform {
	now := time.Now()
	return &systemPlatform{start: now, epoch: uint64(now.Unix())}
}

func (p *systemPlatform) ClockSeconds() uint64 {
	return p.epoch + uint64(time.Since(p.start)/time.Second)
}

func (p *systemPlatform) NewTimer() Timer {
	return &systemTimer{}
}

type systemTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

func (t *systemTimer) OnTimeout(d time.Duration) <-chan struct{} {
	fired := make(chan struct{})
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.t != nil {
		t.t.Stop()
	}
	t.t = time.AfterFunc(d, func() { close(fired) })
	return fired
}

func (t *systemTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}
