package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/recommend"
)

// RecommendHandler handles HTTP requests for ranked recommendations.
type RecommendHandler struct {
	ranker recommend.Ranker
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(ranker recommend.Ranker) *RecommendHandler {
	return &RecommendHandler{ranker: ranker}
}

// ServeHTTP handles HTTP requests for recommendations.
//
// swagger:route GET /recommend recommend
//
// # Recommend tracks for a user
//
// Ranks stored tracks by content similarity fused with an optional mood,
// popularity and freshness. An empty catalog answers 200 with an error field.
//
// ---
// produces:
// - application/json
// parameters:
//   - in: query
//     name: user_id
//     type: string
//   - in: query
//     name: mood
//     type: string
//   - in: query
//     name: top_n
//     type: integer
//     description: 1 to 50, default 5
//   - in: query
//     name: exclude
//     type: string
//     description: comma-separated track ids
//
// responses:
//
//	'200':
//	  description: Ranked recommendations, or an informational error when no tracks exist
//	'400':
//	  description: top_n out of range or not a number
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *RecommendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	req := recommend.Request{
		UserID: strings.TrimSpace(q.Get("user_id")),
		Mood:   strings.TrimSpace(q.Get("mood")),
		TopN:   recommend.DefaultTopN,
	}
	if raw := strings.TrimSpace(q.Get("top_n")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			logger.WarnContext(ctx, "invalid top_n", "top_n", raw)
			writeError(ctx, w, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		req.TopN = n
	}
	for _, id := range strings.Split(q.Get("exclude"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.Exclude = append(req.Exclude, id)
		}
	}

	res, err := h.ranker.Rank(ctx, req)
	switch {
	case err == nil:
		writeJSON(ctx, w, http.StatusOK, res)
	case errors.Is(err, recommend.ErrInvalidTopN):
		logger.WarnContext(ctx, "rejected ranking request", "error", err)
		writeError(ctx, w, http.StatusBadRequest, recommend.ErrInvalidTopN.Error())
	case errors.Is(err, recommend.ErrEmptyStore), errors.Is(err, recommend.ErrInvalidUserVector):
		logger.InfoContext(ctx, "nothing to rank", "reason", err)
		writeError(ctx, w, http.StatusOK, err.Error())
	default:
		writeServiceError(ctx, w, err, "Failed to rank tracks")
	}
}
