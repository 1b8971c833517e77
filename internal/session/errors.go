package session

import "errors"

var (
	// ErrNotReady is returned by transport and export calls before the
	// audio is ready.
	ErrNotReady = errors.New("audio summary not ready")

	// ErrSeekOutOfRange is returned when a seek target lies outside
	// [0, duration]. Callers are expected to clamp first.
	ErrSeekOutOfRange = errors.New("seek position out of range")

	// ErrGenerationFailed is reported when the audio source returned nothing.
	ErrGenerationFailed = errors.New("audio summary generation failed")

	// ErrClosed is returned after the session has ended.
	ErrClosed = errors.New("session closed")
)
