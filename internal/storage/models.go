package storage

import "time"

// Track is a catalog row describing an ingested track.
// Its vector lives in the vector store under the same ID.
type Track struct {
	ID     string
	Title  string
	Artist string
	Genre  string
	Mood   string
	City   string
	// Lat and Lng are nil when the upload had no location.
	Lat *float64
	Lng *float64
	// Context is the geo/mood fingerprint vector recorded at upload.
	Context         []float64
	Source          string // "embed", "artist", "vector", "import"
	Plays           int64
	Recommendations int64
	UploadedAt      time.Time
}

// HasLocation reports whether the track carries coordinates.
func (t *Track) HasLocation() bool {
	return t.Lat != nil && t.Lng != nil
}

// Play is one listening event.
type Play struct {
	UserID   string
	TrackID  string
	PlayedAt time.Time
}
