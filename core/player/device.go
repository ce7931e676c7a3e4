package player

import (
	"context"

	"musichub/model"
)

// Device is the single playable-media resource the engine drives. It is
// owned exclusively by the Engine; no other component calls its control
// methods. All operations are asynchronous: the device confirms playback
// start, pause, end-of-track and progress through the Engine's Handle*
// methods, never through return values of these calls.
type Device interface {
	// Load points the device at a new audio source. Any in-flight load of
	// a previous source is implicitly superseded (last call wins).
	Load(url string)
	// Play requests playback. An immediate rejection (decode error,
	// network failure, autoplay block) is returned; successful start is
	// only known once the play-started notification arrives.
	Play() error
	Pause()
	// Seek sets the absolute playback position in seconds.
	Seek(seconds float64)
}

// SnapshotStore persists per-identity playback snapshots. Writes are
// best-effort: the engine logs and continues when a write fails.
type SnapshotStore interface {
	Save(ctx context.Context, userID int64, snapshot *model.PlayerSnapshot) error
	Load(ctx context.Context, userID int64) (*model.PlayerSnapshot, error)
	Clear(ctx context.Context, userID int64) error
}
