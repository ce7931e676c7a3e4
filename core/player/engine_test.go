package player

import (
	"context"
	"errors"
	"testing"

	"musichub/model"
)

func song(id int64, title string) *model.Song {
	return &model.Song{
		ID:      id,
		Title:   title,
		Artist:  "artist",
		FileURL: "https://cdn.example.com/songs/" + title + ".mp3",
	}
}

func catalogOf(songs ...*model.Song) Queue {
	return NewCatalogQueue(songs)
}

func TestEngine_InitialState(t *testing.T) {
	e := NewEngine(NewMockDevice())

	if e.Current() != nil {
		t.Error("Current() should be nil for a fresh engine")
	}
	if e.IsPlaying() {
		t.Error("IsPlaying() should be false with no current track")
	}
	if e.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0", e.Progress())
	}
}

func TestEngine_PlayLoadsAndSetsCurrent(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a := song(1, "a")

	q := catalogOf(a, song(2, "b"))
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if e.Current() != a {
		t.Errorf("Current() = %v, want %v", e.Current(), a)
	}
	if dev.LastLoaded() != a.FileURL {
		t.Errorf("loaded %q, want %q", dev.LastLoaded(), a.FileURL)
	}
	if !e.Queue().Contains(a.ID) {
		t.Error("queue must contain the current track")
	}
	// Playback start is asynchronous: not playing until the device confirms.
	if e.IsPlaying() {
		t.Error("IsPlaying() should be false before the play-started notification")
	}

	e.HandlePlayStarted()
	if !e.IsPlaying() {
		t.Error("IsPlaying() should be true after the play-started notification")
	}
}

func TestEngine_PlayAppendsTrackMissingFromQueue(t *testing.T) {
	e := NewEngine(NewMockDevice())
	a, b, c := song(1, "a"), song(2, "b"), song(3, "c")

	q := catalogOf(a, b)
	if err := e.Play(c, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if !e.Queue().Contains(c.ID) {
		t.Error("queue must contain the current track even when the backing list does not")
	}
	if e.Queue().Len() != 3 {
		t.Errorf("queue length = %d, want 3", e.Queue().Len())
	}
}

func TestEngine_PlayNoAudioSource(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)

	err := e.Play(&model.Song{ID: 1, Title: "broken"}, nil)
	if !errors.Is(err, ErrNoAudioSource) {
		t.Fatalf("Play() error = %v, want ErrNoAudioSource", err)
	}

	if e.Current() != nil {
		t.Error("state must be unchanged after ErrNoAudioSource")
	}
	if len(dev.LoadCalls()) != 0 {
		t.Error("the device must never be touched for a track without a source")
	}
}

func TestEngine_PlayDeviceFailureKeepsCurrent(t *testing.T) {
	dev := NewMockDevice()
	dev.SetPlayError(errors.New("decode error"))
	e := NewEngine(dev)
	a := song(1, "a")

	q := catalogOf(a)
	err := e.Play(a, &q)

	var pbErr *PlaybackError
	if !errors.As(err, &pbErr) {
		t.Fatalf("Play() error = %v, want *PlaybackError", err)
	}
	// Current stays set so the UI keeps a visible retry target.
	if e.Current() != a {
		t.Errorf("Current() = %v, want %v after device failure", e.Current(), a)
	}
	if e.IsPlaying() {
		t.Error("IsPlaying() must be forced false after device failure")
	}
}

func TestEngine_PlaySameTrackResumesWithoutReload(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if err := e.Play(a, nil); err != nil {
		t.Fatalf("second Play() error = %v", err)
	}

	if len(dev.LoadCalls()) != 1 {
		t.Errorf("Load called %d times, want 1 (same track resumes)", len(dev.LoadCalls()))
	}
	if dev.PlayCalls() != 2 {
		t.Errorf("Play called %d times, want 2", dev.PlayCalls())
	}
}

func TestEngine_TogglePlayPause(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)

	// No current track: no-op.
	if err := e.TogglePlayPause(); err != nil {
		t.Fatalf("TogglePlayPause() error = %v", err)
	}
	if dev.PlayCalls() != 0 || dev.PauseCalls() != 0 {
		t.Error("toggle with no current track must not touch the device")
	}

	a := song(1, "a")
	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e.HandlePlayStarted()

	if err := e.TogglePlayPause(); err != nil {
		t.Fatalf("TogglePlayPause() error = %v", err)
	}
	if dev.PauseCalls() != 1 {
		t.Errorf("Pause called %d times, want 1", dev.PauseCalls())
	}

	// The flag only drops once the device reports it.
	if !e.IsPlaying() {
		t.Error("IsPlaying() must not drop before the paused notification")
	}
	e.HandlePaused()
	if e.IsPlaying() {
		t.Error("IsPlaying() should be false after the paused notification")
	}
}

func TestEngine_SeekBeforeMetadataIsNoop(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	e.Seek(50)
	if len(dev.SeekCalls()) != 0 {
		t.Error("Seek before metadata must be a silent no-op")
	}
	if e.Position() != 0 {
		t.Errorf("Position() = %v, want 0", e.Position())
	}
}

func TestEngine_SeekComputesAbsoluteTime(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e.HandleMetadataLoaded(200)

	e.Seek(50)
	if got := dev.SeekCalls(); len(got) != 1 || got[0] != 100 {
		t.Errorf("Seek calls = %v, want [100]", got)
	}
}

func TestEngine_SequentialNavigation(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a, b, c := song(1, "a"), song(2, "b"), song(3, "c")

	q := catalogOf(a, b, c)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	if e.Current() != b {
		t.Errorf("Current() = %v, want %v", e.Current(), b)
	}

	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	if e.Current() != c {
		t.Errorf("Current() = %v, want %v", e.Current(), c)
	}

	// Provenance is preserved across navigation.
	if e.Queue().Source() != SourceCatalog {
		t.Errorf("queue source = %v, want catalog", e.Queue().Source())
	}
}

func TestEngine_NoWraparound(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a, b, c := song(1, "a"), song(2, "b"), song(3, "c")

	q := catalogOf(a, b, c)
	if err := e.Play(c, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	if e.Current() != c {
		t.Error("PlayNext at the end of the queue must be a no-op")
	}

	if err := e.Play(a, nil); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if err := e.PlayPrevious(); err != nil {
		t.Fatalf("PlayPrevious() error = %v", err)
	}
	if e.Current() != a {
		t.Error("PlayPrevious at the start of the queue must be a no-op")
	}
}

func TestEngine_NavigationWithTrackRemovedFromQueue(t *testing.T) {
	e := NewEngine(NewMockDevice())
	a, b := song(1, "a"), song(2, "b")
	orphan := song(9, "orphan")

	q := catalogOf(a, b)
	if err := e.Play(orphan, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	// Simulate the track disappearing from the backing list mid-playback.
	q2 := catalogOf(a, b)
	e.queue = q2

	if err := e.PlayNext(); err != nil {
		t.Fatalf("PlayNext() error = %v", err)
	}
	if e.Current() != orphan {
		t.Error("PlayNext with current track missing from the queue must be a no-op")
	}
}

func TestEngine_EndOfQueueStops(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a, b := song(1, "a"), song(2, "b")

	q := catalogOf(a, b)
	if err := e.Play(b, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e.HandlePlayStarted()

	e.HandleEnded()

	if e.IsPlaying() {
		t.Error("IsPlaying() should be false after the final track ends")
	}
	if e.Current() != b {
		t.Errorf("Current() = %v, want %v (unchanged at end of queue)", e.Current(), b)
	}
}

func TestEngine_EndedAdvancesToNextTrack(t *testing.T) {
	dev := NewMockDevice()
	e := NewEngine(dev)
	a, b := song(1, "a"), song(2, "b")

	q := catalogOf(a, b)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e.HandlePlayStarted()

	e.HandleEnded()

	if e.Current() != b {
		t.Errorf("Current() = %v, want %v after track end", e.Current(), b)
	}
	if dev.LastLoaded() != b.FileURL {
		t.Errorf("loaded %q, want %q", dev.LastLoaded(), b.FileURL)
	}
}

func TestEngine_ProgressDerivation(t *testing.T) {
	e := NewEngine(NewMockDevice())
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	e.HandleTimeUpdate(30)
	if e.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0 while duration unknown", e.Progress())
	}

	e.HandleMetadataLoaded(120)
	e.HandleTimeUpdate(30)
	if e.Progress() != 25 {
		t.Errorf("Progress() = %v, want 25", e.Progress())
	}
}

func TestEngine_DeviceErrorSurfacedNotFatal(t *testing.T) {
	var reported error
	dev := NewMockDevice()
	e := NewEngine(dev, WithErrorHandler(func(err error) { reported = err }))
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e.HandlePlayStarted()

	e.HandleError(errors.New("network failure"))

	if e.IsPlaying() {
		t.Error("IsPlaying() should be false after a device error")
	}
	if e.Current() != a {
		t.Error("Current() must survive a device error")
	}
	if reported == nil {
		t.Error("device errors must be reported to the error handler")
	}
	var pbErr *PlaybackError
	if !errors.As(e.Err(), &pbErr) {
		t.Errorf("Err() = %v, want *PlaybackError", e.Err())
	}
}

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	store := NewMemorySnapshotStore()
	a := song(1, "a")

	// First session for user 1: play, report progress, pause.
	dev1 := NewMockDevice()
	e1 := NewEngine(dev1, WithSnapshotStore(store, 1))
	q := catalogOf(a)
	if err := e1.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e1.HandlePlayStarted()
	e1.HandleMetadataLoaded(120)
	e1.HandleTimeUpdate(42)

	// Fresh session for the same identity restores the snapshot.
	dev2 := NewMockDevice()
	e2 := NewEngine(dev2, WithSnapshotStore(store, 1))
	if err := e2.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if e2.Current() == nil || e2.Current().ID != a.ID {
		t.Fatalf("Current() = %v, want track %d", e2.Current(), a.ID)
	}
	if got := dev2.SeekCalls(); len(got) != 1 || got[0] != 42 {
		t.Errorf("Seek calls = %v, want [42]", got)
	}
	// Snapshot was playing, so the engine attempts resume.
	if dev2.PlayCalls() != 1 {
		t.Errorf("Play called %d times, want 1 (resume attempt)", dev2.PlayCalls())
	}

	// A different identity restores nothing.
	dev3 := NewMockDevice()
	e3 := NewEngine(dev3, WithSnapshotStore(store, 2))
	if err := e3.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if e3.Current() != nil {
		t.Error("a different identity must not inherit another user's snapshot")
	}
}

func TestEngine_RestoreWithoutResumeWhenPaused(t *testing.T) {
	store := NewMemorySnapshotStore()
	a := song(1, "a")

	dev1 := NewMockDevice()
	e1 := NewEngine(dev1, WithSnapshotStore(store, 1))
	q := catalogOf(a)
	if err := e1.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	e1.HandlePlayStarted()
	e1.HandlePaused() // snapshot now records isPlaying=false

	dev2 := NewMockDevice()
	e2 := NewEngine(dev2, WithSnapshotStore(store, 1))
	if err := e2.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if dev2.PlayCalls() != 0 {
		t.Error("restore must not resume when the snapshot was paused")
	}
	if e2.IsPlaying() {
		t.Error("IsPlaying() should be false after restoring a paused snapshot")
	}
}

func TestEngine_SnapshotFailureIsSilent(t *testing.T) {
	store := NewMemorySnapshotStore()
	store.SetSaveError(errors.New("redis down"))

	e := NewEngine(NewMockDevice(), WithSnapshotStore(store, 1))
	a := song(1, "a")

	q := catalogOf(a)
	if err := e.Play(a, &q); err != nil {
		t.Fatalf("Play() error = %v, persistence must be fire-and-forget", err)
	}
}
