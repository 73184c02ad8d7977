package feed

import (
	"regexp"
	"strings"
)

// maxStableIDLen bounds ids so they stay usable as directory names.
const maxStableIDLen = 80

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	manyHyphens = regexp.MustCompile(`-{2,}`)
)

// StableID derives a deterministic, filesystem-safe identifier from a feed
// entry's identifying value (GUID, link, or title). The same input always
// yields the same id.
func StableID(value string) string {
	id := strings.ToLower(strings.TrimSpace(value))
	id = nonAlnum.ReplaceAllString(id, "-")
	id = manyHyphens.ReplaceAllString(id, "-")
	id = strings.Trim(id, "-")
	if len(id) > maxStableIDLen {
		id = id[:maxStableIDLen]
		id = strings.Trim(id, "-")
	}
	return id
}
