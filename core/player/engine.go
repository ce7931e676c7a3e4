package player

import (
	"context"

	"musichub/logger"
	"musichub/model"
)

// Engine owns the playback state: current track, play/pause flag, active
// queue and derived progress. All mutation goes through its methods; the
// play flag and progress fields are only ever set from device
// notifications, never optimistically.
//
// The engine is written for single-goroutine ownership (one engine per
// session, driven by one event loop), matching the cooperative scheduling
// of the media device. It does no locking of its own.
type Engine struct {
	device Device
	store  SnapshotStore
	userID int64

	current  *model.Song
	playing  bool
	queue    Queue
	position float64
	duration float64

	lastErr error
	onError func(error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnapshotStore enables per-identity snapshot persistence. The userID
// must come from a verified identity; restore is gated on it.
func WithSnapshotStore(store SnapshotStore, userID int64) Option {
	return func(e *Engine) {
		e.store = store
		e.userID = userID
	}
}

// WithErrorHandler registers a callback invoked when the device reports an
// asynchronous failure, so the UI can surface a dismissible message.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine creates an engine driving the given device.
func NewEngine(device Device, opts ...Option) *Engine {
	e := &Engine{device: device}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the current track, or nil when nothing is loaded.
func (e *Engine) Current() *model.Song {
	return e.current
}

// IsPlaying reports whether the device has confirmed playback.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// Queue returns the active queue.
func (e *Engine) Queue() Queue {
	return e.queue
}

// Position returns the playback position in seconds.
func (e *Engine) Position() float64 {
	return e.position
}

// Duration returns the known track duration in seconds (0 before the
// device reports metadata).
func (e *Engine) Duration() float64 {
	return e.duration
}

// Progress returns the playback progress as a 0-100 percentage, derived
// from position and duration. 0 when the duration is unknown.
func (e *Engine) Progress() float64 {
	if e.duration <= 0 {
		return 0
	}
	return e.position / e.duration * 100
}

// Err returns the last device failure, cleared on the next successful
// play request.
func (e *Engine) Err() error {
	return e.lastErr
}

// Play starts playback of the given track. A non-nil queue replaces the
// active queue and provenance; the queue is extended with the track when
// the backing list does not contain it, so the current track is always a
// member of its own queue. Passing a nil queue keeps the active queue
// (used by next/previous and resume).
//
// Returns ErrNoAudioSource when the track has no source (state unchanged),
// or a *PlaybackError when the device rejects the request. On a device
// failure the current track stays set so the UI keeps a retry target, and
// the play flag is forced false.
func (e *Engine) Play(song *model.Song, queue *Queue) error {
	if song == nil || song.FileURL == "" {
		return ErrNoAudioSource
	}

	if queue != nil {
		e.queue = queue.withSong(song)
	} else if e.queue.Len() == 0 {
		e.queue = Queue{source: e.queue.source, songs: []*model.Song{song}}
	}

	sameTrack := e.current != nil && e.current.ID == song.ID
	if !sameTrack {
		e.device.Load(song.FileURL)
		e.current = song
		e.position = 0
		e.duration = 0
	}
	e.lastErr = nil

	if err := e.device.Play(); err != nil {
		e.playing = false
		e.lastErr = &PlaybackError{Title: song.Title, Err: err}
		e.snapshot()
		return e.lastErr
	}

	// Playback start is confirmed asynchronously via HandlePlayStarted.
	e.snapshot()
	return nil
}

// TogglePlayPause pauses a playing device or resumes a paused one. No-op
// when no track is loaded.
func (e *Engine) TogglePlayPause() error {
	if e.current == nil {
		return nil
	}
	if e.playing {
		e.device.Pause()
		return nil
	}
	if err := e.device.Play(); err != nil {
		e.playing = false
		e.lastErr = &PlaybackError{Title: e.current.Title, Err: err}
		return e.lastErr
	}
	return nil
}

// Seek jumps to the given percentage (0-100) of the track. Seeking before
// the duration is known is a defined no-op, not an error: it is a common
// harmless race with metadata loading.
func (e *Engine) Seek(percent float64) {
	if e.duration <= 0 {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	e.device.Seek(percent / 100 * e.duration)
}

// PlayNext advances to the track after the current one in the queue.
// No-op at the end of the queue (no wraparound) and when the current
// track is not queued.
func (e *Engine) PlayNext() error {
	if e.current == nil {
		return nil
	}
	next := e.queue.NextAfter(e.current.ID)
	if next == nil {
		return nil
	}
	return e.Play(next, nil)
}

// PlayPrevious steps back to the track before the current one. No-op at
// the start of the queue and when the current track is not queued.
func (e *Engine) PlayPrevious() error {
	if e.current == nil {
		return nil
	}
	prev := e.queue.PreviousBefore(e.current.ID)
	if prev == nil {
		return nil
	}
	return e.Play(prev, nil)
}

// HandlePlayStarted is the device's play-started notification.
func (e *Engine) HandlePlayStarted() {
	if e.current == nil {
		return
	}
	e.playing = true
	e.snapshot()
}

// HandlePaused is the device's paused notification. It also fires when
// the device pauses autonomously (external interruption), which is why
// the flag is never set optimistically.
func (e *Engine) HandlePaused() {
	e.playing = false
	e.snapshot()
}

// HandleEnded is the device's end-of-track notification. It behaves like
// PlayNext; at the end of the queue playback simply stops and the current
// track stays loaded.
func (e *Engine) HandleEnded() {
	e.playing = false
	if err := e.PlayNext(); err != nil {
		e.reportError(err)
	}
	e.snapshot()
}

// HandleTimeUpdate is the device's progress notification.
func (e *Engine) HandleTimeUpdate(seconds float64) {
	e.position = seconds
	e.snapshot()
}

// HandleMetadataLoaded is the device's metadata notification carrying the
// track duration in seconds.
func (e *Engine) HandleMetadataLoaded(duration float64) {
	if duration < 0 {
		duration = 0
	}
	e.duration = duration
}

// HandleError is the device's asynchronous failure notification. The
// current track and queue are untouched; only the play flag drops.
func (e *Engine) HandleError(err error) {
	e.playing = false
	if e.current != nil {
		e.lastErr = &PlaybackError{Title: e.current.Title, Err: err}
	} else {
		e.lastErr = err
	}
	e.reportError(e.lastErr)
	e.snapshot()
}

// Restore rehydrates the engine from the identity's persisted snapshot:
// the saved track is loaded, the device seeked to the saved position, and
// playback resumed only if the snapshot was playing. A failed resume is
// tolerated silently (autoplay restrictions are the device's concern).
// No-op when no snapshot exists or no store is configured.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil || e.userID == 0 {
		return nil
	}

	snap, err := e.store.Load(ctx, e.userID)
	if err != nil {
		return err
	}
	if snap == nil || snap.Song == nil || snap.Song.FileURL == "" {
		return nil
	}

	e.device.Load(snap.Song.FileURL)
	e.current = snap.Song
	e.position = snap.Position
	e.duration = 0
	e.device.Seek(snap.Position)

	if snap.IsPlaying {
		if err := e.device.Play(); err != nil {
			logger.Debug("resume after restore rejected", logger.ErrorField(err))
		}
	}
	return nil
}

// snapshot persists the playback state, fire-and-forget.
func (e *Engine) snapshot() {
	if e.store == nil || e.userID == 0 || e.current == nil {
		return
	}
	snap := &model.PlayerSnapshot{
		Song:      e.current,
		Position:  e.position,
		IsPlaying: e.playing,
	}
	if err := e.store.Save(context.Background(), e.userID, snap); err != nil {
		logger.Debug("failed to persist player snapshot",
			logger.Int64("userId", e.userID),
			logger.ErrorField(err))
	}
}

func (e *Engine) reportError(err error) {
	if e.onError != nil && err != nil {
		e.onError(err)
	}
}
