package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/meetingmind/contextd/internal/meeting"
	"github.com/meetingmind/contextd/internal/summary"
)

// Version is reported by the health endpoint.
const Version = "0.2.0"

// Input limits of the create-meeting operation, in runes.
const (
	maxUserIDLen      = 100
	maxMeetingTextLen = 10000
	maxHistoryLimit   = 100
)

// Handler holds the HTTP handlers over the meeting manager.
type Handler struct {
	manager   *meeting.Manager
	summaries summary.Generator
	logger    *slog.Logger
}

// NewHandler creates the API handler. A nil generator falls back to the
// deterministic template summary.
func NewHandler(manager *meeting.Manager, summaries summary.Generator, logger *slog.Logger) *Handler {
	if summaries == nil {
		summaries = summary.Template{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{manager: manager, summaries: summaries, logger: logger}
}

type processMeetingRequest struct {
	UserID      string   `json:"user_id"`
	MeetingText string   `json:"meeting_text"`
	Categories  []string `json:"categories,omitempty"`
}

type meetingSummaryResponse struct {
	Summary      string            `json:"summary"`
	ContextUsed  []meeting.Meeting `json:"context_used"`
	ContextCount int               `json:"context_count"`
	Timestamp    string            `json:"timestamp"`
}

type meetingHistoryResponse struct {
	Meetings      []meeting.Meeting `json:"meetings"`
	Total         int               `json:"total"`
	Skip          int               `json:"skip"`
	Limit         int               `json:"limit"`
	FilteredTotal int               `json:"filtered_total"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

// ProcessMeeting retrieves related context for the incoming transcript,
// stores it, and returns a summary. Context retrieval failure is
// degraded to empty context rather than failing the request.
func (h *Handler) ProcessMeeting(w http.ResponseWriter, r *http.Request) {
	var req processMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if n := len([]rune(req.UserID)); n < 1 || n > maxUserIDLen {
		writeError(w, http.StatusBadRequest, "user_id must be 1-100 characters")
		return
	}
	if n := len([]rune(req.MeetingText)); n < 1 || n > maxMeetingTextLen {
		writeError(w, http.StatusBadRequest, "meeting_text must be 1-10000 characters")
		return
	}

	categories, err := parseCategories(req.Categories)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	// Retrieve context before storing so the new meeting does not
	// appear in its own context.
	contextUsed, err := h.manager.GetRelevantContext(ctx, req.UserID, req.MeetingText, 0)
	if err != nil {
		h.logger.Warn("context retrieval failed, continuing without context",
			"user_id", req.UserID, "error", err)
		contextUsed = nil
	}

	if _, err := h.manager.StoreMeeting(ctx, req.UserID, req.MeetingText, categories); err != nil {
		if goerr.HasTag(err, meeting.TagValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to store meeting", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store meeting in database")
		return
	}

	line, err := h.summaries.Summarize(ctx, req.MeetingText, len(contextUsed))
	if err != nil {
		h.logger.Warn("summary generation failed, using template", "error", err)
		line, _ = summary.Template{}.Summarize(ctx, req.MeetingText, len(contextUsed))
	}

	if contextUsed == nil {
		contextUsed = []meeting.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetingSummaryResponse{
		Summary:      line,
		ContextUsed:  contextUsed,
		ContextCount: len(contextUsed),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// MeetingHistory returns a filtered, paginated page of the user's
// meetings, newest first.
func (h *Handler) MeetingHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	query := r.URL.Query()

	limit, err := intParam(query.Get("limit"), meeting.DefaultHistoryLimit)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	if limit > maxHistoryLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be <= %d", maxHistoryLimit))
		return
	}

	skip, err := intParam(query.Get("skip"), 0)
	if err != nil || skip < 0 {
		writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}

	categories, err := parseCategories(query["categories"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.manager.GetMeetingHistory(r.Context(), userID, meeting.HistoryQuery{
		Limit:      limit,
		Skip:       skip,
		SearchText: query.Get("search_text"),
		Categories: categories,
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	})
	if err != nil {
		h.logger.Error("failed to load meeting history", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve meeting history")
		return
	}

	meetings := page.Meetings
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetingHistoryResponse{
		Meetings:      meetings,
		Total:         page.Total,
		Skip:          skip,
		Limit:         limit,
		FilteredTotal: len(meetings),
	})
}

// DeleteMeeting removes one meeting by ID.
func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	meetingID := chi.URLParam(r, "meetingID")

	found, err := h.manager.DeleteMeeting(r.Context(), userID, meetingID)
	if err != nil {
		h.logger.Error("failed to delete meeting",
			"user_id", userID, "meeting_id", meetingID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete meeting")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Meeting %s deleted", meetingID),
	})
}

func parseCategories(tokens []string) ([]meeting.Category, error) {
	var categories []meeting.Category
	for _, token := range tokens {
		cat, ok := meeting.ParseCategory(token)
		if !ok {
			return nil, goerr.New("invalid category: " + token)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func intParam(raw string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError emits errors as {"detail": ...}, the shape clients of
// this API expect.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
