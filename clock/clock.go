// Package clock abstracts time for the engine so history timestamps can be
// driven deterministically in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	Advance(d time.Duration)
	Reset()
}

// system tells wall time, offset by whatever has been Advanced.
type system struct {
	delta time.Duration
}

func (c *system) Now() time.Time {
	return time.Now().Add(c.delta)
}

func (c *system) Advance(d time.Duration) {
	c.delta += d
}

func (c *system) Reset() {
	c.delta = 0
}

func System() Clock {
	return &system{}
}

// manual only moves when Advanced. Reset returns it to its epoch.
type manual struct {
	epoch time.Time
	delta time.Duration
}

func (c *manual) Now() time.Time {
	return c.epoch.Add(c.delta)
}

func (c *manual) Advance(d time.Duration) {
	c.delta += d
}

func (c *manual) Reset() {
	c.delta = 0
}

func Manual(epoch time.Time) Clock {
	return &manual{epoch: epoch}
}
