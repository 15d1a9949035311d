package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Git20254/ai-core-public/internal/discover"
	"github.com/Git20254/ai-core-public/internal/service"
)

// Discoverer answers geographic discovery queries.
type Discoverer interface {
	Nearby(ctx context.Context, loc discover.Location) (discover.Location, []discover.NearbyTrack, error)
	Ranked(ctx context.Context, loc discover.Location, userID, mood string) (discover.Location, []discover.RankedTrack, error)
	Trending(ctx context.Context, loc discover.Location) (discover.Location, []discover.TrendingTrack, error)
}

// DiscoverHandler serves the discovery endpoints.
type DiscoverHandler struct {
	discoverer Discoverer
}

// NewDiscoverHandler creates a new DiscoverHandler.
func NewDiscoverHandler(discoverer Discoverer) *DiscoverHandler {
	return &DiscoverHandler{discoverer: discoverer}
}

// NearbyResponse lists tracks around a location.
type NearbyResponse struct {
	Location discover.Location      `json:"location"`
	Count    int                    `json:"count"`
	Results  []discover.NearbyTrack `json:"results"`
}

// RankedResponse lists nearby tracks scored for a listener.
type RankedResponse struct {
	Location discover.Location      `json:"location"`
	UserID   string                 `json:"user_id,omitempty"`
	Mood     string                 `json:"mood,omitempty"`
	Count    int                    `json:"count"`
	Results  []discover.RankedTrack `json:"results"`
}

// TrendingResponse lists nearby tracks by momentum.
type TrendingResponse struct {
	Location    discover.Location        `json:"location"`
	Count       int                      `json:"count"`
	TopTrending []discover.TrendingTrack `json:"top_trending"`
}

// parseLocation reads lat, lng and radius_km. lat and lng are required.
func parseLocation(r *http.Request) (discover.Location, error) {
	var loc discover.Location

	lat, ok, err := queryFloat(r, "lat")
	if err != nil {
		return loc, err
	}
	if !ok {
		return loc, &service.ValidationError{Field: "lat", Message: "is required"}
	}
	lng, ok, err := queryFloat(r, "lng")
	if err != nil {
		return loc, err
	}
	if !ok {
		return loc, &service.ValidationError{Field: "lng", Message: "is required"}
	}
	radius, _, err := queryFloat(r, "radius_km")
	if err != nil {
		return loc, err
	}

	loc.Lat, loc.Lng, loc.RadiusKm = lat, lng, radius
	return loc, loc.Validate()
}

// Nearby handles GET /discover.
func (h *DiscoverHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc, err := parseLocation(r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	loc, results, err := h.discoverer.Nearby(ctx, loc)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to discover tracks")
		return
	}
	writeJSON(ctx, w, http.StatusOK, NearbyResponse{Location: loc, Count: len(results), Results: results})
}

// Ranked handles GET /discover/ranked.
func (h *DiscoverHandler) Ranked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc, err := parseLocation(r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	mood := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mood")))

	loc, results, err := h.discoverer.Ranked(ctx, loc, userID, mood)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to rank nearby tracks")
		return
	}
	writeJSON(ctx, w, http.StatusOK, RankedResponse{
		Location: loc,
		UserID:   userID,
		Mood:     mood,
		Count:    len(results),
		Results:  results,
	})
}

// Trending handles GET /discover/trending.
func (h *DiscoverHandler) Trending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc, err := parseLocation(r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	loc, results, err := h.discoverer.Trending(ctx, loc)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to compute trending tracks")
		return
	}
	writeJSON(ctx, w, http.StatusOK, TrendingResponse{Location: loc, Count: len(results), TopTrending: results})
}
