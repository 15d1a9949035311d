// Package geo resolves the approximate location attached to an upload.
package geo

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_locator.go -package=mocks github.com/Git20254/ai-core-public/internal/geo Locator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/service"
)

// UnknownCity labels uploads whose city could not be determined.
const UnknownCity = "Unknown"

// ErrLookupFailed is returned when the lookup service answers without a location.
var ErrLookupFailed = errors.New("location lookup failed")

// Place is a resolved location. Lat and Lng are nil when unknown.
type Place struct {
	City string   `json:"city"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// HasCoordinates reports whether both coordinates are set.
func (p Place) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}

// Locator looks up the server's approximate location.
type Locator interface {
	Locate(ctx context.Context) (Place, error)
}

// HTTPLocator queries an IP geolocation endpoint returning
// {"status": "success", "city": ..., "lat": ..., "lon": ...}.
type HTTPLocator struct {
	URL    string
	client *http.Client
}

// NewHTTPLocator creates a locator for url.
func NewHTTPLocator(url string, timeout time.Duration) *HTTPLocator {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPLocator{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Status string   `json:"status"`
	City   string   `json:"city"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

// Locate performs the lookup.
func (l *HTTPLocator) Locate(ctx context.Context) (Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Place{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("%w: failed to send request: %v", service.ErrExternalService, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Place{}, fmt.Errorf("%w: bad status %d: %s", service.ErrExternalService, resp.StatusCode, string(raw))
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Place{}, fmt.Errorf("%w: failed to decode response: %v", service.ErrExternalService, err)
	}
	if out.Status != "" && out.Status != "success" {
		return Place{}, fmt.Errorf("%w: status %q", ErrLookupFailed, out.Status)
	}
	return Place{City: out.City, Lat: out.Lat, Lng: out.Lon}, nil
}

// Resolve completes a caller-supplied place. Values given by the caller win;
// missing ones are filled from the locator when it is set and answers.
// The city falls back to UnknownCity.
func Resolve(ctx context.Context, locator Locator, given Place) Place {
	out := given
	if locator != nil && (out.City == "" || !out.HasCoordinates()) {
		found, err := locator.Locate(ctx)
		if err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "location lookup failed", "error", err)
		} else {
			if out.City == "" {
				out.City = found.City
			}
			if !out.HasCoordinates() && found.HasCoordinates() {
				out.Lat, out.Lng = found.Lat, found.Lng
			}
		}
	}
	if out.City == "" {
		out.City = UnknownCity
	}
	return out
}

var _ Locator = (*HTTPLocator)(nil)
