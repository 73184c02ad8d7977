package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// Feeds disagree wildly on where they put audio and artwork. Each concern is a
// prioritized list of extraction strategies over the parsed entry; the first
// strategy returning a non-empty URL wins.

var audioExtensions = []string{".mp3", ".m4a", ".aac"}

var audioStrategies = []func(*gofeed.Item) string{
	audioFromTypedEnclosure,
	audioFromEnclosureExtension,
	audioFromMediaContent,
	audioFromWatchLink,
}

var imageStrategies = []func(*gofeed.Item) string{
	imageFromITunes,
	imageFromItemImage,
	imageFromMediaExtension,
	imageFromHTMLBody,
}

// AudioURL resolves the entry's audio (or watch-page) URL, or "" when the entry
// carries no recognizable media.
func AudioURL(item *gofeed.Item) string {
	return firstNonEmpty(item, audioStrategies)
}

// ImageURL resolves a best-effort episode image URL, or "".
func ImageURL(item *gofeed.Item) string {
	return firstNonEmpty(item, imageStrategies)
}

func firstNonEmpty(item *gofeed.Item, strategies []func(*gofeed.Item) string) string {
	for _, strategy := range strategies {
		if url := strategy(item); url != "" {
			return url
		}
	}
	return ""
}

func audioFromTypedEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.Contains(enc.Type, "audio") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func audioFromEnclosureExtension(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if hasAudioExtension(enc.URL) {
			return enc.URL
		}
	}
	return ""
}

func audioFromMediaContent(item *gofeed.Item) string {
	for _, content := range item.Extensions["media"]["content"] {
		url := content.Attrs["url"]
		if url == "" {
			continue
		}
		if strings.Contains(content.Attrs["type"], "audio") || content.Attrs["medium"] == "audio" || hasAudioExtension(url) {
			return url
		}
	}
	return ""
}

// audioFromWatchLink treats a video-hosting page link as the media URL; the
// downloader delegates these to an external extraction tool.
func audioFromWatchLink(item *gofeed.Item) string {
	if IsWatchPageURL(item.Link) {
		return item.Link
	}
	return ""
}

// IsWatchPageURL reports whether the URL points at a video watch page rather
// than a direct media payload.
func IsWatchPageURL(url string) bool {
	return strings.Contains(url, "youtube.com/watch") ||
		strings.Contains(url, "youtube.com/shorts") ||
		strings.Contains(url, "youtu.be/")
}

func hasAudioExtension(url string) bool {
	url = strings.ToLower(strings.SplitN(url, "?", 2)[0])
	for _, ext := range audioExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

func imageFromITunes(item *gofeed.Item) string {
	if item.ITunesExt != nil {
		return item.ITunesExt.Image
	}
	return ""
}

func imageFromItemImage(item *gofeed.Item) string {
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

func imageFromMediaExtension(item *gofeed.Item) string {
	for _, thumb := range item.Extensions["media"]["thumbnail"] {
		if url := thumb.Attrs["url"]; url != "" {
			return url
		}
	}
	for _, content := range item.Extensions["media"]["content"] {
		url := content.Attrs["url"]
		if url == "" {
			continue
		}
		if strings.Contains(content.Attrs["type"], "image") || content.Attrs["medium"] == "image" {
			return url
		}
	}
	return ""
}

func imageFromHTMLBody(item *gofeed.Item) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	if body == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// ShowNotes renders the entry's HTML description as plain text, or "" when the
// entry has no usable body.
func ShowNotes(item *gofeed.Item) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(body), nil)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	// Fallback: strip tags directly
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}
