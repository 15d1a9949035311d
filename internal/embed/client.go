// Package embed turns uploaded audio into fixed-size feature vectors by
// calling an external feature extraction service.
package embed

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks github.com/Git20254/ai-core-public/internal/embed Embedder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/similarity"
)

// ErrEmptyAudio is returned when the upload has no content.
var ErrEmptyAudio = errors.New("empty audio payload")

// Embedder produces an audio embedding.
type Embedder interface {
	// Embed reads audio and returns a unit-length vector of the configured size.
	Embed(ctx context.Context, filename string, audio io.Reader) ([]float64, error)
}

// Client is a client for the feature extraction service.
type Client struct {
	BaseURL      string
	ExpectedSize int // output vectors are padded or truncated to this size
	client       *http.Client
}

// NewClient creates a new embedding client.
func NewClient(baseURL string, expectedSize int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ExpectedSize: expectedSize,
		client:       &http.Client{Timeout: timeout},
	}
}

// Response is the payload returned by the extraction service.
type Response struct {
	Embedding []float64 `json:"embedding"`
}

// Embed uploads the audio and returns the normalized embedding.
func (c *Client) Embed(ctx context.Context, filename string, audio io.Reader) ([]float64, error) {
	logger := contextutil.LoggerFromContext(ctx)

	body, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(body) == 0 {
		return nil, ErrEmptyAudio
	}

	url := fmt.Sprintf("%s/v1/embed", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", service.ErrExternalService, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: bad status %d: %s", service.ErrExternalService, resp.StatusCode, string(raw))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", service.ErrExternalService, err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", service.ErrExternalService)
	}
	for i, v := range out.Embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: embedding value %d is not finite", service.ErrExternalService, i)
		}
	}

	vec := out.Embedding
	if c.ExpectedSize > 0 {
		vec = similarity.Resize(vec, c.ExpectedSize)
	}
	vec = similarity.Normalize(vec)

	logger.DebugContext(ctx, "embedded audio",
		"filename", filename,
		"bytes", len(body),
		"raw_size", len(out.Embedding),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return vec, nil
}

var _ Embedder = (*Client)(nil)
