package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemPlatform_Clock(t *testing.T) {
	p := SystemPlatform()
	first := p.ClockSeconds()

	assert.InDelta(t, float64(time.Now().Unix()), float64(first), 1)
	assert.GreaterOrEqual(t, p.ClockSeconds(), first)
}

func TestSystemTimer_Fires(t *testing.T) {
	timer := SystemPlatform().NewTimer()
	defer timer.Stop()

	select {
	case <-timer.OnTimeout(10 * time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSystemTimer_StopPreventsFiring(t *testing.T) {
	timer := SystemPlatform().NewTimer()
	fired := timer.OnTimeout(20 * time.Millisecond)
	timer.Stop()

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}
