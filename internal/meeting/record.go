package meeting

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxStoredTextLen caps the text persisted with a meeting.
	MaxStoredTextLen = 1000
	// MaxDisplayTextLen caps the text returned on every read path.
	MaxDisplayTextLen = 500
	// TruncationMarker is appended whenever text is cut.
	TruncationMarker = "..."
)

// Metadata keys of the persisted record.
const (
	metaTimestamp  = "timestamp"
	metaUserID     = "user_id"
	metaCategories = "categories"
	metaLength     = "length"
	metaHash       = "hash"
	metaMeetingID  = "meeting_id"
)

// TruncateText cuts text to at most max runes, appending the truncation
// marker when anything was cut.
func TruncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + TruncationMarker
}

// ContentHash fingerprints post-truncation text for exact-duplicate
// detection. It carries no semantic identity beyond the 8-char prefix
// embedded in the meeting ID.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewMeetingID builds the stable meeting identifier from the store time
// (second precision) and the content hash prefix.
func NewMeetingID(now time.Time, contentHash string) string {
	return fmt.Sprintf("meeting_%s_%s", now.Format("20060102_150405"), contentHash[:8])
}

// ParseCategory maps a single token to a Category. Matching is
// case-insensitive and whitespace-trimming.
func ParseCategory(token string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(token))) {
	case CategoryAPI:
		return CategoryAPI, true
	case CategorySecurity:
		return CategorySecurity, true
	case CategoryPlanning:
		return CategoryPlanning, true
	case CategoryReview:
		return CategoryReview, true
	case CategoryOther:
		return CategoryOther, true
	}
	return CategoryOther, false
}

// EncodeCategories serializes a category set for store metadata:
// deduplicated, in enumeration order, comma-joined. An empty set encodes
// as the default category so persisted metadata is never empty.
func EncodeCategories(categories []Category) string {
	seen := make(map[Category]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}

	var parts []string
	for _, c := range categoryOrder {
		if seen[c] {
			parts = append(parts, string(c))
		}
	}
	if len(parts) == 0 {
		return string(CategoryOther)
	}
	return strings.Join(parts, ",")
}

// DecodeCategories parses the comma-joined metadata form back into a
// category set. Decoding is defensive: unknown tokens map to the default
// category and the result is never empty.
func DecodeCategories(encoded string) []Category {
	if strings.TrimSpace(encoded) == "" {
		return []Category{CategoryOther}
	}

	seen := make(map[Category]bool)
	for _, token := range strings.Split(encoded, ",") {
		cat, _ := ParseCategory(token)
		seen[cat] = true
	}

	var categories []Category
	for _, c := range categoryOrder {
		if seen[c] {
			categories = append(categories, c)
		}
	}
	return categories
}

// NewRecord builds the persisted form of a meeting. The record ID and
// the meeting_id metadata field carry the same value.
func NewRecord(id string, userID string, text string, categories []Category, now time.Time) *Record {
	return &Record{
		ID:       id,
		Document: text,
		Metadata: map[string]string{
			metaTimestamp:  now.Format(time.RFC3339),
			metaUserID:     userID,
			metaCategories: EncodeCategories(categories),
			metaLength:     fmt.Sprintf("%d", len([]rune(text))),
			metaHash:       ContentHash(text),
			metaMeetingID:  id,
		},
	}
}

// MeetingFromRecord reconstructs the typed entity from the persisted
// form. Missing metadata falls back to safe defaults rather than
// failing: the record ID stands in for a missing meeting_id and absent
// categories decode to the default category.
func MeetingFromRecord(rec *Record) Meeting {
	id := rec.Metadata[metaMeetingID]
	if id == "" {
		id = rec.ID
	}

	return Meeting{
		MeetingID:  id,
		Text:       TruncateText(rec.Document, MaxDisplayTextLen),
		Timestamp:  rec.Metadata[metaTimestamp],
		Categories: DecodeCategories(rec.Metadata[metaCategories]),
	}
}
