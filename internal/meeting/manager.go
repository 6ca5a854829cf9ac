package meeting

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultContextResults is the number of neighbors retrieved when the
// caller does not specify one.
const DefaultContextResults = 3

// DefaultHistoryLimit is the history page size when none is given.
const DefaultHistoryLimit = 10

// Manager orchestrates the meeting store: storing with dedup and
// auto-categorization, context retrieval, history browsing, deletion.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	locks  sync.Map // userID -> *sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for operational events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// userLock returns the mutex serializing writes to one user's
// collection. The dedup check is a read-scan-then-write sequence, so
// concurrent identical stores would otherwise both pass it.
func (m *Manager) userLock(userID string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// StoreResult reports the outcome of StoreMeeting. Duplicate is set when
// identical content was already stored; the existing meeting ID is
// returned and nothing is inserted.
type StoreResult struct {
	MeetingID  string
	Categories []Category
	Duplicate  bool
}

// StoreMeeting persists a meeting for the user. Text is trimmed and
// truncated before hashing; identical content is detected by a full
// metadata scan and treated as success without a second insert. When no
// categories are supplied they are derived from the text.
//
// The duplicate scan reads the whole collection on every call. That is
// the documented contract; it becomes a scalability ceiling for very
// large collections.
func (m *Manager) StoreMeeting(ctx context.Context, userID string, text string, categories []Category) (*StoreResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, goerr.New("meeting text is empty",
			goerr.T(TagValidation), goerr.V("user_id", userID))
	}

	stored := TruncateText(trimmed, MaxStoredTextLen)
	hash := ContentHash(stored)

	mu := m.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := m.store.GetAll(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to scan collection for duplicates",
			goerr.T(TagBackend), goerr.V("user_id", userID))
	}
	for _, rec := range existing {
		if rec.Metadata[metaHash] == hash {
			m.logger.Info("skipping duplicate meeting content",
				"user_id", userID, "meeting_id", rec.ID)
			return &StoreResult{
				MeetingID:  rec.ID,
				Categories: DecodeCategories(rec.Metadata[metaCategories]),
				Duplicate:  true,
			}, nil
		}
	}

	if len(categories) == 0 {
		categories = Categorize(stored)
	}

	now := m.now().UTC()
	id := NewMeetingID(now, hash)
	rec := NewRecord(id, userID, stored, categories, now)

	if err := m.store.Add(ctx, userID, rec); err != nil {
		return nil, goerr.Wrap(err, "failed to store meeting",
			goerr.T(TagBackend), goerr.V("user_id", userID), goerr.V("meeting_id", id))
	}

	m.logger.Info("stored meeting",
		"user_id", userID, "meeting_id", id, "categories", rec.Metadata[metaCategories])

	return &StoreResult{
		MeetingID:  id,
		Categories: DecodeCategories(rec.Metadata[metaCategories]),
	}, nil
}

// GetRelevantContext retrieves up to n stored meetings most similar to
// currentText, most similar first. An empty collection yields an empty
// slice, not an error.
//
// The similarity score is 1 - distance, rounded to 3 decimals. With
// normalized embeddings and cosine distance this lands in [0, 1]; the
// formula is kept as-is for other metrics.
func (m *Manager) GetRelevantContext(ctx context.Context, userID string, currentText string, n int) ([]Meeting, error) {
	if n <= 0 {
		n = DefaultContextResults
	}

	results, err := m.store.Query(ctx, userID, currentText, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query relevant context",
			goerr.T(TagBackend), goerr.V("user_id", userID))
	}

	meetings := make([]Meeting, 0, len(results))
	for _, res := range results {
		mt := MeetingFromRecord(res.Record)
		score := math.Round((1-res.Distance)*1000) / 1000
		mt.SimilarityScore = &score
		meetings = append(meetings, mt)
	}

	m.logger.Debug("retrieved relevant context",
		"user_id", userID, "count", len(meetings))
	return meetings, nil
}

// HistoryQuery filters and paginates GetMeetingHistory.
// Date bounds are inclusive RFC3339 strings compared lexicographically,
// which is valid because all stored timestamps share format and zone.
type HistoryQuery struct {
	Limit      int
	Skip       int
	SearchText string
	Categories []Category
	StartDate  string
	EndDate    string
}

// HistoryPage is one page of history plus the post-filter,
// pre-pagination total.
type HistoryPage struct {
	Meetings []Meeting
	Total    int
}

// GetMeetingHistory scans the user's collection, applies filters, sorts
// newest first and windows the result. A skip beyond the filtered total
// yields an empty page with the correct total.
func (m *Manager) GetMeetingHistory(ctx context.Context, userID string, q HistoryQuery) (*HistoryPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	records, err := m.store.GetAll(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load meeting history",
			goerr.T(TagBackend), goerr.V("user_id", userID))
	}

	search := strings.ToLower(q.SearchText)

	meetings := make([]Meeting, 0, len(records))
	for _, rec := range records {
		// Tolerate records that violate the non-empty invariant.
		if strings.TrimSpace(rec.Document) == "" {
			continue
		}

		mt := MeetingFromRecord(rec)

		if search != "" && !strings.Contains(strings.ToLower(mt.Text), search) {
			continue
		}
		if len(q.Categories) > 0 && !categoriesIntersect(mt.Categories, q.Categories) {
			continue
		}
		if q.StartDate != "" && mt.Timestamp < q.StartDate {
			continue
		}
		if q.EndDate != "" && mt.Timestamp > q.EndDate {
			continue
		}

		meetings = append(meetings, mt)
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Timestamp > meetings[j].Timestamp
	})

	total := len(meetings)

	start := q.Skip
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return &HistoryPage{Meetings: meetings[start:end], Total: total}, nil
}

// DeleteMeeting removes a meeting by ID. The operation is idempotent;
// found reports whether the meeting existed.
func (m *Manager) DeleteMeeting(ctx context.Context, userID string, meetingID string) (bool, error) {
	found, err := m.store.Delete(ctx, userID, meetingID)
	if err != nil {
		return false, goerr.Wrap(err, "failed to delete meeting",
			goerr.T(TagBackend), goerr.V("user_id", userID), goerr.V("meeting_id", meetingID))
	}

	m.logger.Info("deleted meeting",
		"user_id", userID, "meeting_id", meetingID, "found", found)
	return found, nil
}

func categoriesIntersect(a []Category, b []Category) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
