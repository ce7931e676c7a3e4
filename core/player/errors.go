package player

import (
	"errors"
	"fmt"
)

// ErrNoAudioSource is returned when a track has no resolvable audio source.
// The device is never touched in that case.
var ErrNoAudioSource = errors.New("track has no audio source")

// PlaybackError wraps a device-level failure (decode error, network failure,
// autoplay block). The current track is intentionally kept so the UI still
// shows what was attempted.
type PlaybackError struct {
	Title string
	Err   error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed for %q: %v", e.Title, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
