package player

import (
	"context"
	"testing"
)

func TestSelection_OpenPreselectsTrack(t *testing.T) {
	a := song(1, "a")
	sel := NewSelection()

	sel.Open(a)
	if !sel.IsOpen() {
		t.Fatal("selection should be open")
	}
	if got := len(sel.Songs()); got != 1 {
		t.Fatalf("selection has %d songs, want 1", got)
	}

	sel.Open(nil)
	if got := len(sel.Songs()); got != 0 {
		t.Errorf("reopening without a track should reset the set, got %d songs", got)
	}
}

func TestSelection_ToggleFlipsMembership(t *testing.T) {
	a, b := song(1, "a"), song(2, "b")
	sel := NewSelection()
	sel.Open(a)

	sel.Toggle(b)
	if got := len(sel.Songs()); got != 2 {
		t.Fatalf("selection has %d songs, want 2", got)
	}

	sel.Toggle(a)
	if got := sel.Songs(); len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("toggling a selected track should remove it, got %v", got)
	}
}

func TestSelection_CloseClearsState(t *testing.T) {
	sel := NewSelection()
	sel.Open(song(1, "a"))
	sel.SetTarget("p1")
	sel.SetDraftName("mix")

	sel.Close()
	if sel.IsOpen() || len(sel.Songs()) != 0 || sel.Target() != "" || sel.DraftName() != "" {
		t.Error("close must clear the pending set, target and draft name")
	}
}

func TestSelection_ApplyIsNoopWithoutTarget(t *testing.T) {
	ctx := context.Background()
	a := song(1, "a")
	provider := newFakeProvider(a)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	sel := NewSelection()
	sel.Open(a)
	if err := sel.Apply(ctx, lib); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !sel.IsOpen() {
		t.Error("no-op apply must leave the workflow open")
	}
}

func TestSelection_ApplyAddsBatchAndCloses(t *testing.T) {
	ctx := context.Background()
	a, b := song(1, "a"), song(2, "b")
	provider := newFakeProvider(a, b)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	sel := NewSelection()
	sel.Open(a)
	sel.Toggle(b)
	sel.SetTarget(p.ID)

	if err := sel.Apply(ctx, lib); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if sel.IsOpen() {
		t.Error("apply must close the workflow on success")
	}
	if got := len(lib.PlaylistByID(p.ID).Songs); got != 2 {
		t.Errorf("playlist has %d songs, want 2", got)
	}
}

func TestSelection_ApplyKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	a := song(1, "a")
	provider := newFakeProvider(a)
	lib := NewLibrary(provider)
	if err := lib.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	p, err := lib.CreatePlaylist(ctx, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	sel := NewSelection()
	sel.Open(a)
	sel.SetTarget(p.ID)

	provider.failAdd = true
	if err := sel.Apply(ctx, lib); err == nil {
		t.Fatal("Apply() should surface the provider failure")
	}
	if !sel.IsOpen() || len(sel.Songs()) != 1 {
		t.Error("failed apply must keep the workflow open with its pending set")
	}
}
