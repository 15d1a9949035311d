package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/Git20254/ai-core-public/internal/contextutil"
)

const (
	// trackIDField holds the caller's track id in the point payload.
	trackIDField = "track_id"
	// metadataField holds the record metadata in the point payload.
	metadataField = "metadata"
	scrollPageSize = 256
)

// pointNamespace derives stable point UUIDs from arbitrary track ids.
var pointNamespace = uuid.MustParse("6f1c9a52-3b8e-4d57-9a43-0c2f5e1d7b90")

// QdrantBackend persists vectors as points in a Qdrant collection.
// Qdrant stores float32, so vectors read back are truncated to single precision.
type QdrantBackend struct {
	client     *qdrant.Client
	collection string
	vectorSize int
}

// NewQdrantBackend creates a new Qdrant backend client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantBackend(urlStr, collection string, vectorSize int) (*QdrantBackend, error) {
	host, port, err := grpcTarget(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantBackend{
		client:     client,
		collection: collection,
		vectorSize: vectorSize,
	}, nil
}

// grpcTarget resolves the gRPC host and port from a Qdrant HTTP URL.
func grpcTarget(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is typically HTTP port + 1
	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}
	return host, port, nil
}

// PointID returns the Qdrant point UUID used for a track id.
func PointID(trackID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(trackID)).String()
}

// Name returns "qdrant".
func (b *QdrantBackend) Name() string { return "qdrant" }

// Ping checks the server and makes sure the collection exists.
func (b *QdrantBackend) Ping(ctx context.Context) error {
	if _, err := b.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return b.EnsureCollection(ctx, b.collection, b.vectorSize)
}

// Save upserts one point.
func (b *QdrantBackend) Save(ctx context.Context, rec Record) error {
	logger := contextutil.LoggerFromContext(ctx)

	vec := make([]float32, len(rec.Vector))
	for i, v := range rec.Vector {
		vec[i] = float32(v)
	}

	payload := map[string]any{
		trackIDField:  rec.ID,
		metadataField: copyMetadata(rec.Metadata),
	}
	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		// Unsupported metadata types are dropped rather than failing the write.
		logger.WarnContext(ctx, "metadata not representable in qdrant payload", "track_id", rec.ID, "error", err)
		values = qdrant.NewValueMap(map[string]any{trackIDField: rec.ID})
	}

	_, err = b.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: b.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(PointID(rec.ID)),
			Vectors: qdrant.NewVectors(vec...),
			Payload: values,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Fetch reads one point by track id.
func (b *QdrantBackend) Fetch(ctx context.Context, id string) (Record, error) {
	points, err := b.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: b.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(PointID(id))},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to get point: %w", err)
	}
	if len(points) == 0 {
		return Record{}, ErrNotFound
	}

	lr := recordFromPoint(points[0])
	if lr.Err != nil {
		return Record{}, lr.Err
	}
	lr.ID = id
	return lr.Record, nil
}

// LoadAll scrolls the whole collection.
func (b *QdrantBackend) LoadAll(ctx context.Context) ([]LoadedRecord, error) {
	limit := uint32(scrollPageSize)
	var offset *qdrant.PointId
	var out []LoadedRecord

	for {
		req := &qdrant.ScrollPoints{
			CollectionName: b.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		}
		points, err := b.client.Scroll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		full := uint32(len(points)) == limit
		// The offset point is inclusive; skip it on follow-up pages.
		if offset != nil && len(points) > 0 && points[0].GetId().GetUuid() == offset.GetUuid() {
			points = points[1:]
		}
		for _, p := range points {
			out = append(out, recordFromPoint(p))
		}
		if !full || len(points) == 0 {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	sortLoaded(out)
	return out, nil
}

func recordFromPoint(p *qdrant.RetrievedPoint) LoadedRecord {
	meta := map[string]any{}
	trackID := ""
	if p.Payload != nil {
		payload := convertPayloadToMap(p.Payload)
		trackID, _ = payload[trackIDField].(string)
		if m, ok := payload[metadataField].(map[string]any); ok {
			meta = m
		}
	}
	if trackID == "" {
		trackID = p.GetId().GetUuid()
	}

	data := p.GetVectors().GetVector().GetData()
	if len(data) == 0 {
		return LoadedRecord{Record: Record{ID: trackID}, Err: fmt.Errorf("point has no dense vector")}
	}
	vec := make([]float64, len(data))
	for i, v := range data {
		vec[i] = float64(v)
	}
	return LoadedRecord{Record: Record{ID: trackID, Vector: vec, Metadata: meta}}
}

// Close closes the client connection.
func (b *QdrantBackend) Close() error {
	return b.client.Close()
}

// CollectionExists checks if a collection exists.
func (b *QdrantBackend) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := b.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection ensures a collection exists with the specified vector size.
// If the collection exists, validates that the vector size matches.
// If it doesn't exist, creates it with the specified vector size.
func (b *QdrantBackend) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := b.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := b.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := b.GetCollectionInfo(ctx, collection)
	if err != nil {
		return err
	}
	if info.VectorSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if info.VectorSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, info.VectorSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize, "points", info.PointsCount)
	return nil
}

// GetCollectionInfo returns information about a collection including point count.
func (b *QdrantBackend) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	info, err := b.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// CollectionInfo contains information about a Qdrant collection.
type CollectionInfo struct {
	VectorSize  int
	PointsCount int
	Status      string
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}

var _ Backend = (*QdrantBackend)(nil)
