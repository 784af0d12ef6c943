// Package api implements the REST facade over the notification service.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eventra/notify/internal/service"
)

const errInvalidJSONBody = "invalid JSON body"

// Server holds all dependencies for the REST API handlers.
type Server struct {
	notificationSvc service.NotificationService
	logger          *slog.Logger
}

// New creates a new API Server backed by the provided service.
func New(notificationSvc service.NotificationService, logger *slog.Logger) *Server {
	return &Server{notificationSvc: notificationSvc, logger: logger}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Dispatch and intent log
	r.Post("/notifications", s.handleSendNotification)
	r.Get("/notifications", s.handleListIntents)
	r.Get("/notifications/{id}", s.handleGetIntent)

	// In-app inbox
	r.Get("/inbox/{userID}", s.handleListInbox)
	r.Post("/inbox/{userID}/read", s.handleMarkInboxRead)

	// Channel status
	r.Get("/channels", s.handleChannelStatus)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// limitParam parses the optional ?limit=N query parameter.
func limitParam(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}
