package session

import "github.com/freespirits/gaia/internal/resource"

// GeneratedMsg carries the outcome of a generation request. PoemID and
// Token identify the request so that late results can be recognised.
type GeneratedMsg struct {
	PoemID  int
	Token   uint64
	Payload []byte // Raw PCM
	OK      bool
}

// RevealMsg asks the view to bring the existing audio player into view.
type RevealMsg struct {
	PoemID int
}

// ReadyMsg reports that generated audio was loaded.
type ReadyMsg struct {
	PoemID int
	Handle resource.Handle
}

// FailedMsg reports that generation or loading failed. The session is back
// to absent and the request may be retried.
type FailedMsg struct {
	PoemID int
	Err    error
}
