package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGrpcTarget(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcTarget(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcTarget() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcTarget() error = %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantBackend_InvalidURL(t *testing.T) {
	_, err := NewQdrantBackend("://invalid", "tracks", 128)
	if err == nil {
		t.Error("NewQdrantBackend() with invalid URL should return error")
	}
}

func TestPointID_Stable(t *testing.T) {
	a := PointID("track-1")
	if a != PointID("track-1") {
		t.Error("PointID() should be deterministic")
	}
	if a == PointID("track-2") {
		t.Error("PointID() should differ for different track ids")
	}
}

func TestRecordFromPoint(t *testing.T) {
	payload, err := qdrant.TryValueMap(map[string]any{
		trackIDField: "t1",
		metadataField: map[string]any{
			"genre": "afrobeat",
			"bpm":   int64(112),
		},
	})
	if err != nil {
		t.Fatalf("TryValueMap() error = %v", err)
	}

	p := &qdrant.RetrievedPoint{
		Id:      qdrant.NewID(PointID("t1")),
		Payload: payload,
		Vectors: &qdrant.VectorsOutput{
			VectorsOptions: &qdrant.VectorsOutput_Vector{
				Vector: &qdrant.VectorOutput{Data: []float32{0.5, 0.25}},
			},
		},
	}

	lr := recordFromPoint(p)
	if lr.Err != nil {
		t.Fatalf("recordFromPoint() error = %v", lr.Err)
	}
	if lr.ID != "t1" {
		t.Errorf("ID = %q, want t1", lr.ID)
	}
	if len(lr.Vector) != 2 || lr.Vector[0] != 0.5 || lr.Vector[1] != 0.25 {
		t.Errorf("Vector = %v, want [0.5 0.25]", lr.Vector)
	}
	if lr.Metadata["genre"] != "afrobeat" {
		t.Errorf("Metadata[genre] = %v, want afrobeat", lr.Metadata["genre"])
	}
	if lr.Metadata["bpm"] != int64(112) {
		t.Errorf("Metadata[bpm] = %v, want 112", lr.Metadata["bpm"])
	}
}

func TestRecordFromPoint_NoVector(t *testing.T) {
	p := &qdrant.RetrievedPoint{Id: qdrant.NewID(PointID("t1"))}
	lr := recordFromPoint(p)
	if lr.Err == nil {
		t.Error("recordFromPoint() without a vector should set Err")
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil {
		t.Error("convertPayloadToMap() should return empty map, not nil")
	}
	if len(result) != 0 {
		t.Errorf("convertPayloadToMap() with nil should return empty map, got %d items", len(result))
	}
}
