package clock_test

import (
	"testing"
	"time"

	"github.com/stateforward/go-fsa/clock"
)

func TestManual(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := clock.Manual(epoch)
	if !c.Now().Equal(epoch) {
		t.Fatalf("manual clock should start at its epoch, got %v", c.Now())
	}
	c.Advance(time.Minute)
	if got := c.Now(); !got.Equal(epoch.Add(time.Minute)) {
		t.Fatalf("manual clock should advance by exactly one minute, got %v", got)
	}
	c.Reset()
	if !c.Now().Equal(epoch) {
		t.Fatalf("manual clock should return to its epoch after reset, got %v", c.Now())
	}
}

func TestSystemAdvance(t *testing.T) {
	c := clock.System()
	before := time.Now()
	c.Advance(time.Hour)
	if got := c.Now(); got.Sub(before) < time.Hour {
		t.Fatalf("system clock should run ahead after advance, got %v", got)
	}
	c.Reset()
	if got := c.Now(); got.Sub(time.Now()) > time.Second {
		t.Fatalf("system clock should track wall time after reset, got %v", got)
	}
}
