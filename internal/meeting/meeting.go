package meeting

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags distinguish failure kinds so callers can map them without
// string-matching messages.
var (
	TagValidation = goerr.NewTag("validation")
	TagBackend    = goerr.NewTag("backend")
)

// Category is a topic tag attached to a meeting.
type Category string

const (
	CategoryAPI      Category = "api"
	CategorySecurity Category = "security"
	CategoryPlanning Category = "planning"
	CategoryReview   Category = "review"
	CategoryOther    Category = "other"
)

// categoryOrder is the canonical enumeration order used by the codec.
var categoryOrder = []Category{
	CategoryAPI,
	CategorySecurity,
	CategoryPlanning,
	CategoryReview,
	CategoryOther,
}

// Meeting is the domain entity returned to callers.
// SimilarityScore is set only on context-retrieval results.
type Meeting struct {
	MeetingID       string     `json:"meeting_id"`
	Text            string     `json:"text"`
	Timestamp       string     `json:"timestamp"`
	Categories      []Category `json:"categories"`
	SimilarityScore *float64   `json:"similarity_score"`
}

// Record is the flat persisted form of a meeting: the document text plus
// string-typed metadata, as required by the collection store.
type Record struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
}

// QueryResult is one similarity-search hit. Distance is the vector
// distance reported by the store; lower means more similar.
type QueryResult struct {
	Record   *Record
	Distance float64
}

// Store is the per-user persisted collection backend.
// Implementations must scope every operation to the given user ID and
// create the user's collection lazily on first access.
type Store interface {
	// Add inserts one record. The caller guarantees ID uniqueness.
	Add(ctx context.Context, userID string, rec *Record) error

	// GetAll returns every record in the user's collection, in
	// unspecified order. An absent collection yields an empty slice.
	GetAll(ctx context.Context, userID string) ([]*Record, error)

	// Query returns the topN nearest records to text, ranked by
	// ascending distance. topN is clamped to the collection size; an
	// empty collection yields an empty result, not an error. The query
	// embedding is computed internally with the embedding function the
	// collection was created with.
	Query(ctx context.Context, userID string, text string, topN int) ([]QueryResult, error)

	// Delete removes a record by ID. Deleting an absent ID is not an
	// error; found reports whether the record existed.
	Delete(ctx context.Context, userID string, meetingID string) (found bool, err error)

	// Count returns the number of records in the user's collection.
	Count(ctx context.Context, userID string) (int, error)

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), openai (API-based), onnx (local).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	// Deterministic for identical input and model version.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
