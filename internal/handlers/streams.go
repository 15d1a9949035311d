package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
)

// PlayRecorder records listening events.
type PlayRecorder interface {
	RecordPlay(ctx context.Context, userID, trackID string) error
	PlayCount(trackID string) int64
}

// StreamsHandler handles HTTP requests that report a play.
type StreamsHandler struct {
	plays PlayRecorder
}

// NewStreamsHandler creates a new StreamsHandler.
func NewStreamsHandler(plays PlayRecorder) *StreamsHandler {
	return &StreamsHandler{plays: plays}
}

// StreamRequest is the body of POST /streams.
type StreamRequest struct {
	UserID  string `json:"user_id"`
	TrackID string `json:"track_id"`
}

// StreamResponse acknowledges a recorded play.
type StreamResponse struct {
	Status  string `json:"status"`
	UserID  string `json:"user_id,omitempty"`
	TrackID string `json:"track_id"`
	Plays   int64  `json:"plays"`
}

// ServeHTTP handles POST /streams.
func (h *StreamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req StreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.TrackID = strings.TrimSpace(req.TrackID)

	if err := h.plays.RecordPlay(ctx, req.UserID, req.TrackID); err != nil {
		writeServiceError(ctx, w, err, "Failed to record play")
		return
	}

	writeJSON(ctx, w, http.StatusOK, StreamResponse{
		Status:  "ok",
		UserID:  req.UserID,
		TrackID: req.TrackID,
		Plays:   h.plays.PlayCount(req.TrackID),
	})
}
