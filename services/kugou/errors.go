package kugou

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery   = errors.New("query must not be empty")
	ErrMissingIndex = errors.New("song index must not be empty")

	// ErrInvalidStream means the upstream has no playable URL for the song.
	ErrInvalidStream = errors.New("invalid music url, song cannot be played")
)

// UpstreamError is returned when the remote endpoint answers with a non-2xx status
type UpstreamError struct {
	Op         string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed with status %d", e.Op, e.StatusCode)
}

// IsUpstreamError reports whether err wraps an *UpstreamError and returns it
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
