package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	gowav "github.com/go-audio/wav"
)

// HeaderSize is the size of the canonical PCM container header.
const HeaderSize = 44

const (
	fmtChunkSize = 16
	formatPCM    = 1
)

// Default format of the audio summaries returned by the remote voice model.
const (
	DefaultSampleRate    = 24000
	DefaultChannels      = 1
	DefaultBitsPerSample = 16
)

var (
	// ErrInvalidContainer is returned by Parse when the input is not a
	// RIFF/WAVE container.
	ErrInvalidContainer = errors.New("not a wav container")

	// ErrNoDataChunk is returned by Parse when no data chunk was found.
	ErrNoDataChunk = errors.New("wav container has no data chunk")
)

// Format describes the PCM samples carried in a container.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat returns 24000 Hz, mono, 16-bit.
func DefaultFormat() Format {
	return Format{
		SampleRate:    DefaultSampleRate,
		Channels:      DefaultChannels,
		BitsPerSample: DefaultBitsPerSample,
	}
}

// BlockAlign is the size of one frame (one sample for every channel).
func (f Format) BlockAlign() int {
	return f.Channels * (f.BitsPerSample / 8)
}

// ByteRate is the number of payload bytes per second of audio.
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// Duration returns the playing time of n payload bytes.
func (f Format) Duration(n int) time.Duration {
	rate := f.ByteRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(rate))
}

// Offset converts a playing position into a frame aligned byte offset.
func (f Format) Offset(d time.Duration) int64 {
	align := int64(f.BlockAlign())
	if align <= 0 || d <= 0 {
		return 0
	}
	frames := int64(d) * int64(f.SampleRate) / int64(time.Second)
	return frames * align
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d bit", f.SampleRate, f.Channels, f.BitsPerSample)
}

// Header returns the 44-byte header for a payload of dataLen bytes.
func Header(dataLen uint32, f Format) [HeaderSize]byte {
	var h [HeaderSize]byte
	le := binary.LittleEndian

	copy(h[0:4], "RIFF")
	le.PutUint32(h[4:8], 36+dataLen)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	le.PutUint32(h[16:20], fmtChunkSize)
	le.PutUint16(h[20:22], formatPCM)
	le.PutUint16(h[22:24], uint16(f.Channels))      //nolint:gosec
	le.PutUint32(h[24:28], uint32(f.SampleRate))    //nolint:gosec
	le.PutUint32(h[28:32], uint32(f.ByteRate()))    //nolint:gosec
	le.PutUint16(h[32:34], uint16(f.BlockAlign()))  //nolint:gosec
	le.PutUint16(h[34:36], uint16(f.BitsPerSample)) //nolint:gosec
	copy(h[36:40], "data")
	le.PutUint32(h[40:44], dataLen)

	return h
}

// Synthesize returns payload prefixed with a PCM container header. The
// payload is not inspected: any byte slice, including an empty one, yields a
// structurally valid container.
func Synthesize(payload []byte, f Format) []byte {
	h := Header(uint32(len(payload)), f) //nolint:gosec
	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, h[:]...)
	return append(out, payload...)
}

// Parse reads a RIFF/WAVE container and returns its format and the raw
// bytes of its data chunk.
func Parse(container []byte) (Format, []byte, error) {
	d := gowav.NewDecoder(bytes.NewReader(container))
	if !d.IsValidFile() {
		return Format{}, nil, ErrInvalidContainer
	}
	if err := d.FwdToPCM(); err != nil {
		return Format{}, nil, fmt.Errorf("unable to find pcm data: %w", err)
	}
	if d.PCMChunk == nil {
		return Format{}, nil, ErrNoDataChunk
	}

	pcm := make([]byte, dataSize(container, d.PCMSize))
	if _, err := io.ReadFull(d.PCMChunk, pcm); err != nil {
		return Format{}, nil, fmt.Errorf("unable to read pcm data: %w", err)
	}

	f := Format{
		SampleRate:    int(d.SampleRate),
		Channels:      int(d.NumChans),
		BitsPerSample: int(d.BitDepth),
	}
	return f, pcm, nil
}

// dataSize is the length of the data chunk. The decoder rounds odd chunk
// sizes up to the RIFF pad byte, which Synthesize never writes, so the size
// declared in a canonical header wins when it is smaller.
func dataSize(container []byte, chunkSize int) int {
	if len(container) < HeaderSize || string(container[36:40]) != "data" {
		return chunkSize
	}
	declared := int(binary.LittleEndian.Uint32(container[40:44]))
	return min(declared, chunkSize)
}
