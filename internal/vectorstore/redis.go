package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultVectorsKey  = "vectors"
	defaultMetadataKey = "metadata"
)

// RedisBackend persists vectors and metadata as two Redis hashes keyed by track id.
// Vectors are stored as JSON arrays so float64 values round-trip exactly.
type RedisBackend struct {
	client      *redis.Client
	vectorsKey  string
	metadataKey string
}

// NewRedisBackend creates a Redis backend. It does not connect; use Ping.
func NewRedisBackend(addr string, db int) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return NewRedisBackendWithClient(client)
}

// NewRedisBackendWithClient wraps an existing client.
func NewRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client:      client,
		vectorsKey:  defaultVectorsKey,
		metadataKey: defaultMetadataKey,
	}
}

// Name returns "redis".
func (b *RedisBackend) Name() string { return "redis" }

// Ping checks the connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Save writes the vector and metadata hashes in one pipeline.
func (b *RedisBackend) Save(ctx context.Context, rec Record) error {
	vec, err := encodeVector(rec.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	meta, err := encodeMetadata(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.HSet(ctx, b.vectorsKey, rec.ID, vec)
	pipe.HSet(ctx, b.metadataKey, rec.ID, meta)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save vector: %w", err)
	}
	return nil
}

// Fetch reads one record. Missing metadata yields an empty map.
func (b *RedisBackend) Fetch(ctx context.Context, id string) (Record, error) {
	raw, err := b.client.HGet(ctx, b.vectorsKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to fetch vector: %w", err)
	}

	vec, err := decodeVector(raw)
	if err != nil {
		return Record{}, err
	}

	var meta map[string]any
	rawMeta, err := b.client.HGet(ctx, b.metadataKey, id).Bytes()
	if err == nil {
		meta = decodeMetadata(rawMeta)
	} else {
		meta = map[string]any{}
	}

	return Record{ID: id, Vector: vec, Metadata: meta}, nil
}

// LoadAll reads both hashes. Undecodable vectors are returned with Err set.
func (b *RedisBackend) LoadAll(ctx context.Context) ([]LoadedRecord, error) {
	vectors, err := b.client.HGetAll(ctx, b.vectorsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read vectors hash: %w", err)
	}
	metadata, err := b.client.HGetAll(ctx, b.metadataKey).Result()
	if err != nil {
		// Vectors without metadata are still usable.
		metadata = map[string]string{}
	}

	out := make([]LoadedRecord, 0, len(vectors))
	for id, raw := range vectors {
		vec, err := decodeVector([]byte(raw))
		if err != nil {
			out = append(out, LoadedRecord{Record: Record{ID: id}, Err: err})
			continue
		}
		out = append(out, LoadedRecord{Record: Record{
			ID:       id,
			Vector:   vec,
			Metadata: decodeMetadata([]byte(metadata[id])),
		}})
	}
	sortLoaded(out)
	return out, nil
}

// Close closes the client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
