package domain

// Candidate represents a feed entry that has been selected for processing but has
// not yet run through the pipeline.
type Candidate struct {
	// ID is the stable, filesystem-safe identifier derived from the entry's GUID
	// (or link, or title, in that priority order). Two entries with the same GUID
	// always yield the same ID.
	ID string

	// GUID is the raw identifying value the ID was derived from.
	GUID string

	// Title is the episode title, when available.
	Title string

	// Link is the episode page URL.
	Link string

	// Published is the raw published string as it appeared in the feed.
	Published string

	// PublishedTS is the unix timestamp parsed from Published, or 0 when the
	// feed gave nothing parseable.
	PublishedTS int64

	// AudioURL is the resolved audio (or watch-page) URL for the entry.
	AudioURL string

	// ImageURL is a best-effort episode image, when one could be found.
	ImageURL string

	// ShowNotes is the plain-text rendering of the entry's HTML description,
	// when one could be extracted.
	ShowNotes string

	// SourceFeed is the feed URL this entry came from.
	SourceFeed string
}

// Meta is the persisted per-episode metadata document (meta.json).
type Meta struct {
	ID           string `json:"id"`
	GUID         string `json:"guid"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	Published    string `json:"published"`
	PublishedTS  int64  `json:"published_ts,omitempty"`
	FeedAudioURL string `json:"feed_audio_url"`
	ImageURL     string `json:"image_url,omitempty"`
	ShowNotes    string `json:"show_notes,omitempty"`
}

// Summary is the structured extraction result persisted as summary.json.
// All fields are always present; list fields default to empty, never null.
type Summary struct {
	OverallTheme         string   `json:"overall_theme"`
	Quotes               []string `json:"quotes"`
	BiblePassages        []string `json:"bible_passages"`
	FollowOnQuestions    []string `json:"follow_on_questions"`
	FurtherBiblePassages []string `json:"further_bible_passages"`
}

// Episode is the fully-loaded artifact bundle handed to the site publisher.
type Episode struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Published   string  `json:"published"`
	PublishedTS int64   `json:"published_ts,omitempty"`
	Link        string  `json:"link"`
	ImageURL    string  `json:"image_url,omitempty"`
	Summary     Summary `json:"summary"`
	Transcript  string  `json:"transcript"`
}
