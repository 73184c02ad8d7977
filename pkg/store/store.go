package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"podcast-archive/pkg/domain"
)

// Bundle file names inside each per-episode directory.
const (
	metaFile       = "meta.json"
	transcriptFile = "transcript.json"
	summaryFile    = "summary.json"
)

// transcriptDoc is the on-disk shape of transcript.json.
type transcriptDoc struct {
	Text string `json:"text"`
}

// Store reads and writes per-episode artifact bundles under the episodes
// directory: one subdirectory per stable id holding meta.json,
// transcript.json, and summary.json.
type Store struct {
	episodesDir string
}

// NewStore creates a bundle store rooted at episodesDir.
func NewStore(episodesDir string) *Store {
	return &Store{episodesDir: episodesDir}
}

// EpisodeDir returns the bundle directory for id.
func (s *Store) EpisodeDir(id string) string {
	return filepath.Join(s.episodesDir, id)
}

// WriteMeta persists the episode metadata document.
func (s *Store) WriteMeta(meta domain.Meta) error {
	return writeJSON(filepath.Join(s.EpisodeDir(meta.ID), metaFile), meta)
}

// WriteTranscript persists the full transcript text.
func (s *Store) WriteTranscript(id, text string) error {
	return writeJSON(filepath.Join(s.EpisodeDir(id), transcriptFile), transcriptDoc{Text: text})
}

// WriteSummary persists the structured summary.
func (s *Store) WriteSummary(id string, summary domain.Summary) error {
	return writeJSON(filepath.Join(s.EpisodeDir(id), summaryFile), summary)
}

// LoadEpisodes reads every bundle back for rendering, newest first. Episodes
// without a published timestamp sort after those that have one. Missing
// bundle files yield empty defaults rather than errors, so a bundle left
// incomplete by a crash never breaks publishing.
func (s *Store) LoadEpisodes() ([]domain.Episode, error) {
	entries, err := os.ReadDir(s.episodesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read episodes dir: %w", err)
	}

	var episodes []domain.Episode
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		episodes = append(episodes, s.loadEpisode(entry.Name()))
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].PublishedTS > episodes[j].PublishedTS
	})
	return episodes, nil
}

func (s *Store) loadEpisode(id string) domain.Episode {
	dir := s.EpisodeDir(id)

	var meta domain.Meta
	readJSON(filepath.Join(dir, metaFile), &meta)

	var summary domain.Summary
	readJSON(filepath.Join(dir, summaryFile), &summary)
	ensureLists(&summary)

	var transcript transcriptDoc
	readJSON(filepath.Join(dir, transcriptFile), &transcript)

	title := meta.Title
	if title == "" {
		title = id
	}

	return domain.Episode{
		ID:          id,
		Title:       title,
		Published:   meta.Published,
		PublishedTS: meta.PublishedTS,
		Link:        meta.Link,
		ImageURL:    meta.ImageURL,
		Summary:     summary,
		Transcript:  transcript.Text,
	}
}

// ensureLists keeps the summary's list fields non-nil so rendered JSON shows
// empty lists, never null.
func ensureLists(s *domain.Summary) {
	if s.Quotes == nil {
		s.Quotes = []string{}
	}
	if s.BiblePassages == nil {
		s.BiblePassages = []string{}
	}
	if s.FollowOnQuestions == nil {
		s.FollowOnQuestions = []string{}
	}
	if s.FurtherBiblePassages == nil {
		s.FurtherBiblePassages = []string{}
	}
}

// readJSON fills v from the file at path, leaving v untouched when the file
// is missing or unreadable.
func readJSON(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	json.Unmarshal(data, v)
}
