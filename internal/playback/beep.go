//go:build (linux && cgo) || windows || darwin

package playback

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
	"github.com/gopxl/beep/v2"
	beepwav "github.com/gopxl/beep/v2/wav"
	"github.com/gopxl/beep/v2/speaker"
)

// Beep plays audio through the gopxl/beep speaker.
type Beep struct {
	emitter

	mu         sync.Mutex
	sampleRate beep.SampleRate
	interval   time.Duration

	handle   resource.Handle
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	armed    bool
	playing  bool
	closed   bool
	done     chan struct{}
}

// NewBeep initializes the speaker at the format's sample rate.
func NewBeep(f wav.Format) (*Beep, error) {
	sr := beep.SampleRate(f.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("unable to initialize speaker: %w", err)
	}
	return &Beep{
		emitter:    newEmitter(),
		sampleRate: sr,
		interval:   DefaultTickInterval,
	}, nil
}

// Load implements Engine.
func (b *Beep) Load(h resource.Handle, container []byte) error {
	streamer, format, err := beepwav.Decode(bytes.NewReader(container))
	if err != nil {
		return fmt.Errorf("unable to decode audio: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = streamer.Close()
		return ErrClosed
	}
	b.unloadLocked()

	b.handle = h
	b.streamer = streamer
	b.format = format
	b.done = make(chan struct{})
	b.armLocked()
	go b.run(h, b.done)

	d := format.SampleRate.D(streamer.Len())
	go b.emit(MetadataLoaded{Handle: h, Duration: d})
	return nil
}

// armLocked hands a paused control streamer for the current audio to the
// speaker. The speaker drops it once the audio ends, so it is re-armed on
// the next Play.
func (b *Beep) armLocked() {
	var s beep.Streamer = b.streamer
	if b.format.SampleRate != b.sampleRate {
		s = beep.Resample(4, b.format.SampleRate, b.sampleRate, s)
	}
	h := b.handle
	b.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(s, beep.Callback(func() {
			go b.finished(h)
		})),
		Paused: true,
	}
	b.armed = true
	speaker.Play(b.ctrl)
}

func (b *Beep) finished(h resource.Handle) {
	b.mu.Lock()
	if b.handle != h {
		b.mu.Unlock()
		return
	}
	b.armed = false
	b.playing = false
	end := b.format.SampleRate.D(b.streamer.Len())
	speaker.Lock()
	err := b.streamer.Seek(0)
	speaker.Unlock()
	b.mu.Unlock()

	if err != nil {
		log.Warn("Unable to rewind audio", "error", err)
	}
	b.emit(TimeUpdate{Handle: h, At: end})
	b.emit(Ended{Handle: h})
}

// Play implements Engine.
func (b *Beep) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(); err != nil {
		return err
	}
	if !b.armed {
		b.armLocked()
	}
	speaker.Lock()
	b.ctrl.Paused = false
	speaker.Unlock()
	b.playing = true
	return nil
}

// Pause implements Engine.
func (b *Beep) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(); err != nil {
		return err
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
	b.playing = false
	return nil
}

// Seek implements Engine.
func (b *Beep) Seek(t time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkLocked(); err != nil {
		return err
	}
	n := min(b.format.SampleRate.N(t), b.streamer.Len())
	speaker.Lock()
	err := b.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("unable to seek: %w", err)
	}
	return nil
}

// Unload implements Engine.
func (b *Beep) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unloadLocked()
	return nil
}

// Close implements Engine.
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unloadLocked()
	b.closed = true
	return nil
}

func (b *Beep) checkLocked() error {
	if b.closed {
		return ErrClosed
	}
	if b.streamer == nil {
		return ErrNothingLoaded
	}
	return nil
}

func (b *Beep) unloadLocked() {
	if b.done != nil {
		close(b.done)
		b.done = nil
	}
	speaker.Clear()
	if b.streamer != nil {
		_ = b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	b.handle = ""
	b.armed = false
	b.playing = false
}

func (b *Beep) run(h resource.Handle, done <-chan struct{}) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		b.tick(h)
	}
}

// tick reports the position of h. It emits while holding mu, so an update
// can never land after the Ended sent by finished.
func (b *Beep) tick(h resource.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.playing || b.streamer == nil || b.handle != h {
		return
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	b.emit(TimeUpdate{Handle: h, At: b.format.SampleRate.D(pos)})
}
