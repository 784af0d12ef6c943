package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventra/notify/internal/storage"
)

// handleListInbox returns a user's in-app notifications, newest first.
// ?unread=true restricts to unread entries; ?limit=N caps the result.
func (s *Server) handleListInbox(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	unreadOnly := r.URL.Query().Get("unread") == "true"

	entries, err := s.notificationSvc.ListInbox(r.Context(), userID, unreadOnly, limitParam(r, 50))
	if err != nil {
		s.logger.Error("failed to list inbox", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list inbox")
		return
	}
	if entries == nil {
		entries = []storage.InboxEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleMarkInboxRead marks all of a user's unread in-app notifications as read.
func (s *Server) handleMarkInboxRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	n, err := s.notificationSvc.MarkInboxRead(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to mark inbox read", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark inbox read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
