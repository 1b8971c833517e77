package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-audio/wav"
	beepwav "github.com/gopxl/beep/v2/wav"
)

func TestSynthesizeExample(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	out := Synthesize(payload, DefaultFormat())

	if len(out) != 52 {
		t.Fatalf("len = %d, want 52", len(out))
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(out[4:8]), 44},
		{"fmt size", le.Uint32(out[16:20]), 16},
		{"audio format", uint32(le.Uint16(out[20:22])), 1},
		{"channels", uint32(le.Uint16(out[22:24])), 1},
		{"sample rate", le.Uint32(out[24:28]), 24000},
		{"byte rate", le.Uint32(out[28:32]), 48000},
		{"block align", uint32(le.Uint16(out[32:34])), 2},
		{"bits per sample", uint32(le.Uint16(out[34:36])), 16},
		{"data size", le.Uint32(out[40:44]), 8},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	for _, m := range []struct {
		at   int
		want string
	}{{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"}} {
		if got := string(out[m.at : m.at+4]); got != m.want {
			t.Errorf("marker at %d = %q, want %q", m.at, got, m.want)
		}
	}

	if !bytes.Equal(out[HeaderSize:], payload) {
		t.Errorf("payload not copied verbatim: %v", out[HeaderSize:])
	}
}

func TestSynthesizeLengths(t *testing.T) {
	le := binary.LittleEndian
	for _, n := range []int{0, 1, 2, 3, 44, 1000, 48000, 65537} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		out := Synthesize(payload, DefaultFormat())
		if len(out) != HeaderSize+n {
			t.Errorf("n=%d: len = %d, want %d", n, len(out), HeaderSize+n)
		}
		if got := le.Uint32(out[4:8]); got != uint32(n+36) {
			t.Errorf("n=%d: riff size = %d, want %d", n, got, n+36)
		}
		if got := le.Uint32(out[40:44]); got != uint32(n) {
			t.Errorf("n=%d: data size = %d, want %d", n, got, n)
		}
	}
}

func TestSynthesizeDoesNotAliasPayload(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	out := Synthesize(payload, DefaultFormat())
	payload[0] = 0xff
	if out[HeaderSize] != 1 {
		t.Error("container shares memory with the payload")
	}
}

func TestHeaderFormats(t *testing.T) {
	tests := []struct {
		name       string
		format     Format
		byteRate   uint32
		blockAlign uint16
	}{
		{"default", DefaultFormat(), 48000, 2},
		{"cd stereo", Format{44100, 2, 16}, 176400, 4},
		{"8 bit mono", Format{8000, 1, 8}, 8000, 1},
		{"24 bit stereo", Format{48000, 2, 24}, 288000, 6},
	}

	le := binary.LittleEndian
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Header(10, tt.format)
			if got := le.Uint32(h[28:32]); got != tt.byteRate {
				t.Errorf("byte rate = %d, want %d", got, tt.byteRate)
			}
			if got := le.Uint16(h[32:34]); got != tt.blockAlign {
				t.Errorf("block align = %d, want %d", got, tt.blockAlign)
			}
			if got := le.Uint16(h[22:24]); int(got) != tt.format.Channels {
				t.Errorf("channels = %d, want %d", got, tt.format.Channels)
			}
		})
	}
}

func TestRoundTripGoAudio(t *testing.T) {
	payload := make([]byte, 4800)
	for i := range payload {
		payload[i] = byte(i)
	}
	container := Synthesize(payload, DefaultFormat())

	d := wav.NewDecoder(bytes.NewReader(container))
	if !d.IsValidFile() {
		t.Fatal("decoder rejected container")
	}
	if d.SampleRate != 24000 || d.NumChans != 1 || d.BitDepth != 16 {
		t.Errorf("format = %d/%d/%d", d.SampleRate, d.NumChans, d.BitDepth)
	}
	if err := d.FwdToPCM(); err != nil {
		t.Fatalf("FwdToPCM: %v", err)
	}
	got, err := io.ReadAll(io.LimitReader(d.PCMChunk, int64(d.PCMSize)))
	if err != nil {
		t.Fatalf("reading data chunk: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("data chunk differs from payload (%d vs %d bytes)", len(got), len(payload))
	}
}

func TestRoundTripBeep(t *testing.T) {
	format := Format{SampleRate: 24000, Channels: 2, BitsPerSample: 16}
	payload := make([]byte, 4*1000) // 1000 stereo frames
	container := Synthesize(payload, format)

	streamer, f, err := beepwav.Decode(bytes.NewReader(container))
	if err != nil {
		t.Fatalf("beep decode: %v", err)
	}
	defer streamer.Close() //nolint:errcheck

	if int(f.SampleRate) != 24000 {
		t.Errorf("sample rate = %d", f.SampleRate)
	}
	if f.NumChannels != 2 {
		t.Errorf("channels = %d", f.NumChannels)
	}
	if f.Precision != 2 {
		t.Errorf("precision = %d", f.Precision)
	}
	if streamer.Len() != 1000 {
		t.Errorf("frames = %d, want 1000", streamer.Len())
	}
}

func TestParse(t *testing.T) {
	payload := []byte{9, 8, 7, 6, 5, 4}
	f := Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

	got, pcm, err := Parse(Synthesize(payload, f))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != f {
		t.Errorf("format = %+v, want %+v", got, f)
	}
	if !bytes.Equal(pcm, payload) {
		t.Errorf("pcm = %v, want %v", pcm, payload)
	}
}

func TestParseOddLengths(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 4801} {
		t.Run(fmt.Sprintf("%d bytes", n), func(t *testing.T) {
			payload := make([]byte, n)
			for i := range payload {
				payload[i] = byte(i*7 + 1)
			}

			got, pcm, err := Parse(Synthesize(payload, DefaultFormat()))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != DefaultFormat() {
				t.Errorf("format = %+v, want %+v", got, DefaultFormat())
			}
			if !bytes.Equal(pcm, payload) {
				t.Errorf("pcm has %d bytes, want the %d payload bytes", len(pcm), n)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, _, err := Parse([]byte("definitely not audio, just some words")); err == nil {
		t.Error("expected an error")
	}
}

func TestFormatDuration(t *testing.T) {
	f := DefaultFormat()
	if got := f.Duration(48000); got != time.Second {
		t.Errorf("Duration(48000) = %v, want 1s", got)
	}
	if got := f.Duration(0); got != 0 {
		t.Errorf("Duration(0) = %v", got)
	}
	if got := (Format{}).Duration(100); got != 0 {
		t.Errorf("zero format duration = %v", got)
	}
	if got := f.Offset(1500 * time.Millisecond); got != 72000 {
		t.Errorf("Offset(1.5s) = %d, want 72000", got)
	}
}
