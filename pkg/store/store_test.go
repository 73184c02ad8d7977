package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"podcast-archive/pkg/domain"
)

func TestLedger_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("Expected empty ledger for missing file, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Expected empty ledger, got %d entries", l.Len())
	}

	l.Add("ep-1")
	l.Add("ep-2")
	l.Add("ep-1") // duplicate, must be a no-op
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	reloaded, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !reloaded.Has("ep-1") || !reloaded.Has("ep-2") {
		t.Error("Expected reloaded ledger to contain both ids")
	}
	if reloaded.Has("ep-3") {
		t.Error("Expected ep-3 to be absent")
	}
	if got := reloaded.IDs(); !reflect.DeepEqual(got, []string{"ep-1", "ep-2"}) {
		t.Errorf("Expected insertion order preserved, got %v", got)
	}
}

func TestLedger_EmptyFlushWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	l, _ := LoadLedger(path)
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read ledger file: %v", err)
	}
	if string(data) == "" || string(data) == "null" {
		t.Fatalf("Expected JSON object, got %q", data)
	}
	reloaded, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Errorf("Expected empty ledger, got %d", reloaded.Len())
	}
}

func TestLedger_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLedger(path); err == nil {
		t.Fatal("Expected error for corrupt ledger, got nil")
	}
}

func writeBundle(t *testing.T, s *Store, id, title string, publishedTS int64) {
	t.Helper()
	meta := domain.Meta{ID: id, Title: title, Published: "some date", PublishedTS: publishedTS}
	if err := s.WriteMeta(meta); err != nil {
		t.Fatalf("WriteMeta failed: %v", err)
	}
	if err := s.WriteTranscript(id, "text of "+id); err != nil {
		t.Fatalf("WriteTranscript failed: %v", err)
	}
	if err := s.WriteSummary(id, domain.Summary{OverallTheme: "t", Quotes: []string{}}); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
}

func TestStore_LoadEpisodes_NewestFirst(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "episodes"))
	writeBundle(t, s, "a", "First", 1762789390)
	writeBundle(t, s, "b", "Second", 1763376968)
	writeBundle(t, s, "c", "Third", 1761669011)

	episodes, err := s.LoadEpisodes()
	if err != nil {
		t.Fatalf("LoadEpisodes failed: %v", err)
	}

	got := make([]string, len(episodes))
	for i, e := range episodes {
		got[i] = e.ID
	}
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Expected newest-first order [b a c], got %v", got)
	}
}

func TestStore_LoadEpisodes_MissingTimestampSortsLast(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "episodes"))
	writeBundle(t, s, "has-ts", "WithTS", 1763376968)
	writeBundle(t, s, "no-ts-a", "NoTS A", 0)
	writeBundle(t, s, "no-ts-b", "NoTS B", 0)

	episodes, err := s.LoadEpisodes()
	if err != nil {
		t.Fatalf("LoadEpisodes failed: %v", err)
	}
	if episodes[0].ID != "has-ts" {
		t.Errorf("Expected timestamped episode first, got %q", episodes[0].ID)
	}
	if len(episodes) != 3 {
		t.Fatalf("Expected 3 episodes, got %d", len(episodes))
	}
}

func TestStore_LoadEpisodes_EmptyDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	episodes, err := s.LoadEpisodes()
	if err != nil {
		t.Fatalf("Expected no error for missing dir, got %v", err)
	}
	if len(episodes) != 0 {
		t.Errorf("Expected no episodes, got %d", len(episodes))
	}
}

func TestStore_LoadEpisodes_IncompleteBundle(t *testing.T) {
	// A bundle with only meta.json (crash before transcription) still loads
	// with empty defaults and non-nil summary lists.
	dir := filepath.Join(t.TempDir(), "episodes")
	s := NewStore(dir)
	if err := s.WriteMeta(domain.Meta{ID: "partial", Title: "Partial"}); err != nil {
		t.Fatalf("WriteMeta failed: %v", err)
	}

	episodes, err := s.LoadEpisodes()
	if err != nil {
		t.Fatalf("LoadEpisodes failed: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("Expected 1 episode, got %d", len(episodes))
	}
	e := episodes[0]
	if e.Transcript != "" {
		t.Errorf("Expected empty transcript, got %q", e.Transcript)
	}
	if e.Summary.Quotes == nil || e.Summary.BiblePassages == nil {
		t.Error("Expected non-nil summary lists for incomplete bundle")
	}
}

func TestStore_FallbackTitleIsID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "episodes")
	if err := os.MkdirAll(filepath.Join(dir, "bare"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)

	episodes, err := s.LoadEpisodes()
	if err != nil {
		t.Fatalf("LoadEpisodes failed: %v", err)
	}
	if len(episodes) != 1 || episodes[0].Title != "bare" {
		t.Errorf("Expected title to fall back to id, got %#v", episodes)
	}
}
