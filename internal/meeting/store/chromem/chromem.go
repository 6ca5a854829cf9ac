// Package chromem implements the meeting Store on top of chromem-go,
// an embedded pure-Go vector database, paired with a bbolt record store.
//
// The vector index answers similarity queries; the bbolt side holds the
// authoritative records and makes full scans, counts and existence
// checks cheap, since chromem collections cannot be enumerated. Both
// live under one data root and survive restarts.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
	"go.etcd.io/bbolt"

	"github.com/meetingmind/contextd/internal/meeting"
)

// Store is a per-user persisted vector collection.
// Collection names follow the durable contract user_<user_id>_meetings;
// renaming the scheme orphans existing data.
type Store struct {
	db      *chromem.DB
	records *bbolt.DB
	embed   chromem.EmbeddingFunc

	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New opens (or creates) the store under dataDir. Every collection is
// bound to the given embedder for its whole lifetime; reopening an
// existing data root with a different embedding model invalidates the
// stored vectors.
func New(dataDir string, embedder meeting.Embedder) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dataDir))
	}

	db, err := chromem.NewPersistentDB(filepath.Join(dataDir, "index"), false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open vector index", goerr.V("dir", dataDir))
	}

	records, err := bbolt.Open(filepath.Join(dataDir, "meetings.db"), 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open record store", goerr.V("dir", dataDir))
	}

	return &Store{
		db:          db,
		records:     records,
		embed:       embedder.Embed,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

func collectionName(userID string) string {
	return fmt.Sprintf("user_%s_meetings", userID)
}

// collection returns the user's collection, creating it lazily.
// Get-or-create is idempotent; repeat calls are served from the cache.
func (s *Store) collection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, ok := s.collections[userID]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if col, ok := s.collections[userID]; ok {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(
		collectionName(userID),
		map[string]string{"user_id": userID},
		s.embed,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open collection", goerr.V("user_id", userID))
	}

	s.collections[userID] = col
	return col, nil
}

// Add inserts one record into both the vector index and the record
// store. The embedding is computed by the collection's bound function.
func (s *Store) Add(ctx context.Context, userID string, rec *meeting.Record) error {
	col, err := s.collection(userID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:       rec.ID,
		Content:  rec.Document,
		Metadata: rec.Metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add document to vector index",
			goerr.V("user_id", userID), goerr.V("id", rec.ID))
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal record", goerr.V("id", rec.ID))
	}

	err = s.records.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(collectionName(userID)))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(rec.ID), data)
	})
	if err != nil {
		// Undo the index write so the two stores stay in step.
		_ = col.Delete(ctx, nil, nil, rec.ID)
		return goerr.Wrap(err, "failed to persist record",
			goerr.V("user_id", userID), goerr.V("id", rec.ID))
	}

	return nil
}

// GetAll returns every record in the user's collection. Order follows
// the record store's key order; callers re-sort as needed.
func (s *Store) GetAll(ctx context.Context, userID string) ([]*meeting.Record, error) {
	var records []*meeting.Record

	err := s.records.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collectionName(userID)))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, data []byte) error {
			var rec meeting.Record
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan record store", goerr.V("user_id", userID))
	}

	return records, nil
}

// Query returns the topN nearest records to text by cosine distance.
// topN is clamped to the collection size; an empty collection is a valid
// no-results state.
func (s *Store) Query(ctx context.Context, userID string, text string, topN int) ([]meeting.QueryResult, error) {
	col, err := s.collection(userID)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if topN > count {
		topN = count
	}
	if topN <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, text, topN, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query vector index", goerr.V("user_id", userID))
	}

	out := make([]meeting.QueryResult, 0, len(results))
	for _, res := range results {
		out = append(out, meeting.QueryResult{
			Record: &meeting.Record{
				ID:       res.ID,
				Document: res.Content,
				Metadata: res.Metadata,
			},
			// chromem reports cosine similarity; the Store contract
			// speaks in distance.
			Distance: 1 - float64(res.Similarity),
		})
	}
	return out, nil
}

// Delete removes a record from both stores. Absent IDs are a no-op.
func (s *Store) Delete(ctx context.Context, userID string, meetingID string) (bool, error) {
	found := false
	err := s.records.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collectionName(userID)))
		if bucket == nil || bucket.Get([]byte(meetingID)) == nil {
			return nil
		}
		found = true
		return bucket.Delete([]byte(meetingID))
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to delete record",
			goerr.V("user_id", userID), goerr.V("id", meetingID))
	}

	if found {
		col, err := s.collection(userID)
		if err != nil {
			return false, err
		}
		if err := col.Delete(ctx, nil, nil, meetingID); err != nil {
			return false, goerr.Wrap(err, "failed to delete from vector index",
				goerr.V("user_id", userID), goerr.V("id", meetingID))
		}
	}

	return found, nil
}

// Count returns the number of records in the user's collection.
func (s *Store) Count(ctx context.Context, userID string) (int, error) {
	count := 0
	err := s.records.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(collectionName(userID)))
		if bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count records", goerr.V("user_id", userID))
	}
	return count, nil
}

// Close releases the record store. The chromem index needs no teardown.
func (s *Store) Close() error {
	return s.records.Close()
}
