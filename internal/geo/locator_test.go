package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/Git20254/ai-core-public/internal/geo"
	"github.com/Git20254/ai-core-public/internal/geo/mocks"
	"github.com/Git20254/ai-core-public/internal/service"
)

func ptr(v float64) *float64 { return &v }

func TestHTTPLocator_Locate(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCity string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"status":"success","city":"Lagos","lat":6.45,"lon":3.39}`,
			wantCity: "Lagos",
		},
		{
			name:    "lookup failure",
			status:  http.StatusOK,
			body:    `{"status":"fail","message":"reserved range"}`,
			wantErr: geo.ErrLookupFailed,
		},
		{
			name:    "bad status",
			status:  http.StatusTooManyRequests,
			body:    "slow down",
			wantErr: service.ErrExternalService,
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    "{",
			wantErr: service.ErrExternalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			place, err := geo.NewHTTPLocator(server.URL, time.Second).Locate(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Locate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate() unexpected error: %v", err)
			}
			if place.City != tt.wantCity || !place.HasCoordinates() {
				t.Errorf("Locate() = %+v", place)
			}
			if *place.Lat != 6.45 || *place.Lng != 3.39 {
				t.Errorf("Locate() coordinates = %v,%v", *place.Lat, *place.Lng)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	lagos := geo.Place{City: "Lagos", Lat: ptr(6.45), Lng: ptr(3.39)}

	t.Run("caller values win", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locator := mocks.NewMockLocator(ctrl)
		// No lookup when the caller supplied everything.
		given := geo.Place{City: "Accra", Lat: ptr(5.6), Lng: ptr(-0.19)}
		got := geo.Resolve(ctx, locator, given)
		if got.City != "Accra" || *got.Lat != 5.6 {
			t.Errorf("Resolve() = %+v", got)
		}
	})

	t.Run("fills missing from lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locator := mocks.NewMockLocator(ctrl)
		locator.EXPECT().Locate(gomock.Any()).Return(lagos, nil)

		got := geo.Resolve(ctx, locator, geo.Place{City: "Ikeja"})
		if got.City != "Ikeja" {
			t.Errorf("Resolve() city = %q, want Ikeja", got.City)
		}
		if !got.HasCoordinates() || *got.Lat != 6.45 {
			t.Errorf("Resolve() coordinates = %+v", got)
		}
	})

	t.Run("lookup failure falls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locator := mocks.NewMockLocator(ctrl)
		locator.EXPECT().Locate(gomock.Any()).Return(geo.Place{}, errors.New("offline"))

		got := geo.Resolve(ctx, locator, geo.Place{})
		if got.City != geo.UnknownCity || got.HasCoordinates() {
			t.Errorf("Resolve() = %+v, want unknown city without coordinates", got)
		}
	})

	t.Run("nil locator", func(t *testing.T) {
		got := geo.Resolve(ctx, nil, geo.Place{Lat: ptr(1), Lng: ptr(2)})
		if got.City != geo.UnknownCity || !got.HasCoordinates() {
			t.Errorf("Resolve() = %+v", got)
		}
	})
}
