package session

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	tests := map[time.Duration]string{
		0:                                     "0:00",
		-time.Second:                          "0:00",
		999 * time.Millisecond:                "0:00",
		9 * time.Second:                       "0:09",
		61 * time.Second:                      "1:01",
		10*time.Minute + 5*time.Second:        "10:05",
		59*time.Minute + 59*time.Second + 1e8: "59:59",
	}
	for d, want := range tests {
		if got := Clock(d); got != want {
			t.Errorf("Clock(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestStateProgress(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  float64
	}{
		{"no duration", State{Status: StatusReady, CurrentTime: time.Second}, 0},
		{"start", State{Status: StatusReady, Duration: 4 * time.Second}, 0},
		{"half", State{Status: StatusReady, CurrentTime: 2 * time.Second, Duration: 4 * time.Second}, 0.5},
		{"past the end", State{Status: StatusReady, CurrentTime: 5 * time.Second, Duration: 4 * time.Second}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Progress(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStateClamp(t *testing.T) {
	s := State{Status: StatusReady, Duration: 3 * time.Second}

	if got := s.Clamp(-time.Second); got != 0 {
		t.Errorf("expected 0, got %s", got)
	}
	if got := s.Clamp(time.Second); got != time.Second {
		t.Errorf("expected 1s, got %s", got)
	}
	if got := s.Clamp(time.Minute); got != 3*time.Second {
		t.Errorf("expected 3s, got %s", got)
	}
}

func TestStatePlaying(t *testing.T) {
	if (State{Status: StatusGenerating, Transport: Playing}).Playing() {
		t.Error("only ready sessions can play")
	}
	if !(State{Status: StatusReady, Transport: Playing}).Playing() {
		t.Error("expected playing")
	}
}
