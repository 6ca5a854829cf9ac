package meeting

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func TestTruncateText(t *testing.T) {
	gt.Equal(t, TruncateText("short", 1000), "short")

	long := strings.Repeat("a", 1500)
	stored := TruncateText(long, MaxStoredTextLen)
	gt.Equal(t, len([]rune(stored)), MaxStoredTextLen+len(TruncationMarker))
	gt.True(t, strings.HasSuffix(stored, TruncationMarker))

	display := TruncateText(stored, MaxDisplayTextLen)
	gt.Equal(t, len([]rune(display)), MaxDisplayTextLen+len(TruncationMarker))

	// Rune-aware: multibyte text must not be cut mid-character.
	multibyte := strings.Repeat("ü", 10)
	gt.Equal(t, TruncateText(multibyte, 4), "üüüü"+TruncationMarker)
}

func TestNewMeetingID(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	hash := ContentHash("some meeting text")

	id := NewMeetingID(now, hash)
	gt.Equal(t, id, "meeting_20250314_092653_"+hash[:8])
}

func TestCategoryCodecRoundTrip(t *testing.T) {
	// Every non-empty subset of the enumeration survives a round trip.
	for mask := 1; mask < 1<<len(categoryOrder); mask++ {
		var subset []Category
		for i, c := range categoryOrder {
			if mask&(1<<i) != 0 {
				subset = append(subset, c)
			}
		}

		decoded := DecodeCategories(EncodeCategories(subset))
		gt.Equal(t, decoded, subset)
	}
}

func TestEncodeCategoriesCanonical(t *testing.T) {
	// Order and duplicates do not affect the encoding.
	encoded := EncodeCategories([]Category{CategoryReview, CategoryAPI, CategoryReview})
	gt.Equal(t, encoded, "api,review")

	gt.Equal(t, EncodeCategories(nil), "other")
}

func TestDecodeCategoriesDefensive(t *testing.T) {
	gt.Equal(t, DecodeCategories(""), []Category{CategoryOther})
	gt.Equal(t, DecodeCategories("   "), []Category{CategoryOther})
	gt.Equal(t, DecodeCategories("bogus"), []Category{CategoryOther})
	gt.Equal(t, DecodeCategories(" api , SECURITY "), []Category{CategoryAPI, CategorySecurity})
}

func TestMeetingFromRecordDefaults(t *testing.T) {
	// A record lacking metadata decodes with safe defaults.
	rec := &Record{ID: "meeting_x", Document: "some text", Metadata: map[string]string{}}

	mt := MeetingFromRecord(rec)
	gt.Equal(t, mt.MeetingID, "meeting_x")
	gt.Equal(t, mt.Categories, []Category{CategoryOther})
	gt.Equal(t, mt.Text, "some text")
	gt.True(t, mt.SimilarityScore == nil)
}

func TestNewRecordMetadata(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	text := "Planning the API roadmap"
	id := NewMeetingID(now, ContentHash(text))

	rec := NewRecord(id, "u1", text, []Category{CategoryAPI, CategoryPlanning}, now)
	gt.Equal(t, rec.ID, id)
	gt.Equal(t, rec.Metadata["meeting_id"], id)
	gt.Equal(t, rec.Metadata["user_id"], "u1")
	gt.Equal(t, rec.Metadata["categories"], "api,planning")
	gt.Equal(t, rec.Metadata["timestamp"], "2025-03-14T09:26:53Z")
	gt.Equal(t, rec.Metadata["hash"], ContentHash(text))
	gt.Equal(t, rec.Metadata["length"], "24")
}
