// Package feed discovers new episode candidates across RSS, Atom, and YouTube
// feeds and deduplicates them against the processed ledger.
package feed

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"podcast-archive/pkg/domain"
	"podcast-archive/pkg/httpclient"
)

// ProcessedSet answers whether a stable id has already completed the pipeline.
type ProcessedSet interface {
	Has(id string) bool
}

// Watcher finds new episode candidates across a set of feeds.
type Watcher struct {
	parser       *gofeed.Parser
	perFeedLimit int
}

// NewWatcher creates a watcher that considers at most perFeedLimit of the
// most recent entries per feed. Feed fetches share the 30-second-timeout
// client used for all non-media requests.
func NewWatcher(perFeedLimit int) *Watcher {
	parser := gofeed.NewParser()
	parser.Client = httpclient.NewClient(httpclient.FeedClient).Std()
	parser.UserAgent = httpclient.UserAgent
	return &Watcher{
		parser:       parser,
		perFeedLimit: perFeedLimit,
	}
}

// FindNew returns candidates across all feeds that have a resolvable audio URL
// and are absent from the processed set. Candidates are concatenated in
// feed-iteration order; entries within one feed are limited to the most recent
// perFeedLimit by timestamp. A feed that fails to parse contributes nothing and
// does not affect the other feeds.
func (w *Watcher) FindNew(ctx context.Context, feedURLs []string, seen ProcessedSet) []domain.Candidate {
	var candidates []domain.Candidate
	for _, feedURL := range feedURLs {
		entries, err := w.parseFeed(ctx, feedURL)
		if err != nil {
			log.Printf("feed: skipping unparsable feed %s: %v", feedURL, err)
			continue
		}

		for _, c := range entries {
			if c.AudioURL == "" {
				continue
			}
			if seen.Has(c.ID) {
				continue
			}
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// parseFeed parses one feed and returns its most recent entries, newest first,
// capped at the per-feed limit.
func (w *Watcher) parseFeed(ctx context.Context, feedURL string) ([]domain.Candidate, error) {
	parsed, err := w.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	type timed struct {
		candidate domain.Candidate
		at        time.Time
	}

	entries := make([]timed, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		guid := entryGUID(item)
		if guid == "" {
			continue
		}

		at := entryTime(item)
		c := domain.Candidate{
			ID:         StableID(guid),
			GUID:       guid,
			Title:      entryTitle(item),
			Link:       item.Link,
			Published:  entryPublished(item),
			AudioURL:   AudioURL(item),
			ImageURL:   ImageURL(item),
			ShowNotes:  ShowNotes(item),
			SourceFeed: feedURL,
		}
		if !at.IsZero() {
			c.PublishedTS = at.Unix()
		}
		entries = append(entries, timed{candidate: c, at: at})
	}

	// Newest first; entries without a parseable timestamp sort as oldest.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})

	if w.perFeedLimit > 0 && len(entries) > w.perFeedLimit {
		entries = entries[:w.perFeedLimit]
	}

	log.Printf("feed: parsed %d entries from %s, considering %d", len(parsed.Items), feedURL, len(entries))

	result := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.candidate)
	}
	return result, nil
}

// entryGUID picks the entry's most-identifying available field.
func entryGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}
	return item.Title
}

func entryTitle(item *gofeed.Item) string {
	if item.Title != "" {
		return item.Title
	}
	return "Untitled Episode"
}

func entryPublished(item *gofeed.Item) string {
	if item.Published != "" {
		return item.Published
	}
	return item.Updated
}

// entryTime computes the entry's recency timestamp best-effort: gofeed's own
// parse first, then a lenient parse of the raw strings. Zero means unknown.
func entryTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if at, err := dateparse.ParseAny(raw); err == nil {
			return at
		}
	}
	return time.Time{}
}
