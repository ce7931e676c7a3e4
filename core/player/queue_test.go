package player

import (
	"testing"

	"musichub/model"
)

func TestQueue_IndexOfFirstOccurrence(t *testing.T) {
	a, b := song(1, "a"), song(2, "b")
	dup := &model.Song{ID: 1, Title: "a-dup", FileURL: a.FileURL}
	q := NewCatalogQueue([]*model.Song{a, b, dup})

	if got := q.IndexOf(1); got != 0 {
		t.Errorf("IndexOf(1) = %d, want 0 (first occurrence)", got)
	}
}

func TestQueue_IndexOfMissing(t *testing.T) {
	q := NewCatalogQueue([]*model.Song{song(1, "a")})

	if got := q.IndexOf(99); got != -1 {
		t.Errorf("IndexOf(99) = %d, want -1", got)
	}
}

func TestQueue_NextAfter(t *testing.T) {
	a, b, c := song(1, "a"), song(2, "b"), song(3, "c")
	q := NewCatalogQueue([]*model.Song{a, b, c})

	if got := q.NextAfter(1); got != b {
		t.Errorf("NextAfter(1) = %v, want %v", got, b)
	}
	if got := q.NextAfter(3); got != nil {
		t.Errorf("NextAfter(3) = %v, want nil (no wraparound)", got)
	}
	if got := q.NextAfter(99); got != nil {
		t.Errorf("NextAfter(99) = %v, want nil (not queued)", got)
	}
}

func TestQueue_PreviousBefore(t *testing.T) {
	a, b, c := song(1, "a"), song(2, "b"), song(3, "c")
	q := NewCatalogQueue([]*model.Song{a, b, c})

	if got := q.PreviousBefore(3); got != b {
		t.Errorf("PreviousBefore(3) = %v, want %v", got, b)
	}
	if got := q.PreviousBefore(1); got != nil {
		t.Errorf("PreviousBefore(1) = %v, want nil (start of queue)", got)
	}
	if got := q.PreviousBefore(99); got != nil {
		t.Errorf("PreviousBefore(99) = %v, want nil (not queued)", got)
	}
}

func TestQueue_Provenance(t *testing.T) {
	cq := NewCatalogQueue(nil)
	if cq.Source() != SourceCatalog {
		t.Errorf("Source() = %v, want catalog", cq.Source())
	}
	if cq.PlaylistID() != "" {
		t.Errorf("PlaylistID() = %q, want empty", cq.PlaylistID())
	}

	pq := NewPlaylistQueue("pl-1", []*model.Song{song(1, "a")})
	if pq.Source() != SourcePlaylist {
		t.Errorf("Source() = %v, want playlist", pq.Source())
	}
	if pq.PlaylistID() != "pl-1" {
		t.Errorf("PlaylistID() = %q, want pl-1", pq.PlaylistID())
	}
}

func TestQueue_WithSong(t *testing.T) {
	a, b := song(1, "a"), song(2, "b")
	q := NewPlaylistQueue("pl-1", []*model.Song{a})

	same := q.withSong(a)
	if same.Len() != 1 {
		t.Errorf("withSong(existing) length = %d, want 1", same.Len())
	}

	extended := q.withSong(b)
	if extended.Len() != 2 {
		t.Errorf("withSong(new) length = %d, want 2", extended.Len())
	}
	if extended.PlaylistID() != "pl-1" {
		t.Error("withSong must preserve provenance")
	}
	// The original queue is untouched.
	if q.Len() != 1 {
		t.Errorf("original queue length = %d, want 1", q.Len())
	}
}

func TestSourceString(t *testing.T) {
	if SourceCatalog.String() != "catalog" {
		t.Errorf("SourceCatalog.String() = %q", SourceCatalog.String())
	}
	if SourcePlaylist.String() != "playlist" {
		t.Errorf("SourcePlaylist.String() = %q", SourcePlaylist.String())
	}
}
