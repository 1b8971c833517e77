//go:build (linux && cgo) || windows || darwin

package playback

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/freespirits/gaia/internal/resource"
	"github.com/freespirits/gaia/internal/wav"
)

// Oto plays audio through an oto context opened for a fixed format.
type Oto struct {
	emitter

	mu       sync.Mutex
	context  *oto.Context
	format   wav.Format
	interval time.Duration

	handle resource.Handle
	player *oto.Player
	// pcm must stay reachable while the player reads from it.
	pcm      []byte
	duration time.Duration
	clock    clock
	playing  bool
	closed   bool
	done     chan struct{}
}

// NewOto opens the output device. Only 16-bit signed little endian PCM is
// supported.
func NewOto(f wav.Format) (*Oto, error) {
	if f.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: %d bit output is not supported", ErrFormatMismatch, f.BitsPerSample)
	}

	op := &oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return &Oto{
		emitter:  newEmitter(),
		context:  ctx,
		format:   f,
		interval: DefaultTickInterval,
		clock:    newClock(),
	}, nil
}

// Load implements Engine.
func (o *Oto) Load(h resource.Handle, container []byte) error {
	f, pcm, err := wav.Parse(container)
	if err != nil {
		return fmt.Errorf("unable to load audio: %w", err)
	}
	if f != o.format {
		return fmt.Errorf("%w: got %s, device is %s", ErrFormatMismatch, f, o.format)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	o.unloadLocked()

	o.handle = h
	o.pcm = pcm
	o.player = o.context.NewPlayer(bytes.NewReader(pcm))
	o.duration = f.Duration(len(pcm))
	o.clock = newClock()
	o.done = make(chan struct{})
	go o.run(h, o.done)

	go o.emit(MetadataLoaded{Handle: h, Duration: o.duration})
	return nil
}

// Play implements Engine.
func (o *Oto) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkLocked(); err != nil {
		return err
	}
	o.player.Play()
	o.clock.start()
	o.playing = true
	return nil
}

// Pause implements Engine.
func (o *Oto) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkLocked(); err != nil {
		return err
	}
	o.player.Pause()
	o.clock.stop()
	o.playing = false
	return nil
}

// Seek implements Engine.
func (o *Oto) Seek(t time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.checkLocked(); err != nil {
		return err
	}
	off := min(o.format.Offset(t), int64(len(o.pcm)))
	if _, err := o.player.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek: %w", err)
	}
	o.clock.set(t)
	return nil
}

// Unload implements Engine.
func (o *Oto) Unload() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unloadLocked()
	return nil
}

// Close implements Engine.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unloadLocked()
	o.closed = true
	return nil
}

func (o *Oto) checkLocked() error {
	if o.closed {
		return ErrClosed
	}
	if o.player == nil {
		return ErrNothingLoaded
	}
	return nil
}

func (o *Oto) unloadLocked() {
	if o.done != nil {
		close(o.done)
		o.done = nil
	}
	if o.player != nil {
		o.player.Pause()
		_ = o.player.Close()
		o.player = nil
	}
	o.pcm = nil
	o.handle = ""
	o.duration = 0
	o.playing = false
	o.clock = newClock()
}

func (o *Oto) run(h resource.Handle, done <-chan struct{}) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		o.mu.Lock()
		if !o.playing || o.player == nil {
			o.mu.Unlock()
			continue
		}
		pos := min(o.clock.position(), o.duration)
		ended := !o.player.IsPlaying() && pos >= o.duration-o.interval
		if ended {
			o.playing = false
			o.clock.stop()
			o.clock.set(0)
			_, _ = o.player.Seek(0, io.SeekStart)
			pos = o.duration
		}
		o.mu.Unlock()

		o.emit(TimeUpdate{Handle: h, At: pos})
		if ended {
			o.emit(Ended{Handle: h})
		}
	}
}
