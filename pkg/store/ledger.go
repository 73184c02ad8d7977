// Package store persists the processed ledger and per-episode artifact
// bundles as flat JSON files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ledgerFile is the on-disk shape of the processed ledger.
type ledgerFile struct {
	ProcessedIDs []string `json:"processed_ids"`
}

// Ledger is the ordered set of stable ids that have completed the pipeline.
// Membership is O(1); insertion order is preserved for the on-disk list.
type Ledger struct {
	path  string
	ids   []string
	index map[string]struct{}
}

// LoadLedger reads the ledger at path, returning an empty ledger when the
// file does not exist yet.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{
		path:  path,
		index: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	for _, id := range file.ProcessedIDs {
		l.Add(id)
	}
	return l, nil
}

// Has reports whether id has completed the pipeline.
func (l *Ledger) Has(id string) bool {
	_, ok := l.index[id]
	return ok
}

// Add records id as processed. Adding an id twice is a no-op.
func (l *Ledger) Add(id string) {
	if l.Has(id) {
		return
	}
	l.ids = append(l.ids, id)
	l.index[id] = struct{}{}
}

// Len returns the number of processed ids.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// IDs returns the processed ids in insertion order.
func (l *Ledger) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Flush rewrites the ledger file wholesale. Called after every episode
// commit so a crash mid-run preserves all prior commits.
func (l *Ledger) Flush() error {
	ids := l.ids
	if ids == nil {
		ids = []string{}
	}
	return writeJSON(l.path, ledgerFile{ProcessedIDs: ids})
}

// writeJSON writes v as indented JSON, creating parent directories as needed.
func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
