package playback

import (
	"time"

	"github.com/freespirits/gaia/internal/resource"
)

// Event is something the engine observed about the loaded audio.
type Event interface {
	Resource() resource.Handle
}

// TimeUpdate reports the playback position while playing.
type TimeUpdate struct {
	Handle resource.Handle
	At     time.Duration
}

// MetadataLoaded reports the total duration once it is known.
type MetadataLoaded struct {
	Handle   resource.Handle
	Duration time.Duration
}

// Ended reports that playback reached the end of the audio.
type Ended struct {
	Handle resource.Handle
}

func (e TimeUpdate) Resource() resource.Handle     { return e.Handle }
func (e MetadataLoaded) Resource() resource.Handle { return e.Handle }
func (e Ended) Resource() resource.Handle          { return e.Handle }

const eventBuffer = 64

// emitter fans engine observations into a buffered channel. Position
// updates are dropped when nobody is listening; the others block briefly so
// state changes are not lost.
type emitter struct {
	events chan Event
}

func newEmitter() emitter {
	return emitter{events: make(chan Event, eventBuffer)}
}

func (e *emitter) Events() <-chan Event { return e.events }

func (e *emitter) emit(ev Event) {
	if _, ok := ev.(TimeUpdate); ok {
		select {
		case e.events <- ev:
		default:
		}
		return
	}
	select {
	case e.events <- ev:
	case <-time.After(time.Second):
	}
}

// clock tracks a playback position from wall time, for outputs that cannot
// report one themselves.
type clock struct {
	now     func() time.Time
	base    time.Duration
	started time.Time
	running bool
}

func newClock() clock {
	return clock{now: time.Now}
}

func (c *clock) start() {
	if c.running {
		return
	}
	c.started = c.now()
	c.running = true
}

func (c *clock) stop() {
	if !c.running {
		return
	}
	c.base += c.now().Sub(c.started)
	c.running = false
}

func (c *clock) set(d time.Duration) {
	c.base = d
	if c.running {
		c.started = c.now()
	}
}

func (c *clock) position() time.Duration {
	if !c.running {
		return c.base
	}
	return c.base + c.now().Sub(c.started)
}
