package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventra/notify/internal/notify"
	"github.com/eventra/notify/internal/storage"
)

// sendNotificationRequest is the body of POST /notifications.
type sendNotificationRequest struct {
	Recipient notify.Recipient  `json:"recipient"`
	Kind      string            `json:"kind"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Payload   map[string]string `json:"payload"`
	Priority  string            `json:"priority"`
	Channels  []string          `json:"channels"`
}

// handleSendNotification dispatches one notification and returns the
// delivery summary. Validation problems are 400; a failed intent write is
// 502 because nothing was tracked or attempted.
func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var body sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	if body.Recipient.UserID == "" {
		writeError(w, http.StatusBadRequest, "recipient.user_id is required")
		return
	}

	channels, err := notify.ParseChannels(body.Channels)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := notify.Request{
		Kind:     notify.Kind(body.Kind),
		Subject:  body.Subject,
		Body:     body.Body,
		Payload:  body.Payload,
		Priority: notify.Priority(body.Priority),
		Channels: channels,
	}

	summary, err := s.notificationSvc.Send(r.Context(), body.Recipient, req)
	switch {
	case errors.Is(err, notify.ErrEmptyChannels), errors.Is(err, notify.ErrUnsupportedChannel):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("notification dispatch failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to record notification intent")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleListIntents returns recent notification intents.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListIntents(w http.ResponseWriter, r *http.Request) {
	views, err := s.notificationSvc.ListIntents(r.Context(), limitParam(r, 50))
	if err != nil {
		s.logger.Error("failed to list intents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetIntent returns one intent by id.
func (s *Server) handleGetIntent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.notificationSvc.GetIntent(r.Context(), id)
	if errors.Is(err, storage.ErrIntentNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load intent", "intent_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load notification")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
