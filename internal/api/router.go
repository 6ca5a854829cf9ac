package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// NewRouter builds the HTTP surface over the handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(requestID)

	r.Get("/health", h.Health)
	r.Post("/process-meeting", h.ProcessMeeting)
	r.Get("/meetings/{userID}/history", h.MeetingHistory)
	r.Delete("/meetings/{userID}/{meetingID}", h.DeleteMeeting)

	return r
}

// requestID tags every response with a request ID, honoring one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
