package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fluxml/ml"
)

func newTestMux(models ModelProvider) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandlers(models, nil, ModelInfo{
		ModelName:    "Random Forest Classifier",
		ModelVersion: "v1",
		Container:    "models",
		BlobName:     "model_v1.json",
	}).Register(mux)
	return mux
}

func TestHealthHandler(t *testing.T) {
	mux := newTestMux(&fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Fatalf("unexpected status %q", payload["status"])
	}
	if payload["service"] != ServiceName || payload["version"] != ServiceVersion {
		t.Fatalf("unexpected identity: %v", payload)
	}
}

func TestModelInfoHandler(t *testing.T) {
	mux := newTestMux(&fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/model-info", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var info ModelInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if info.ModelName != "Random Forest Classifier" || info.ModelVersion != "v1" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.FeaturesRequired != ml.FeatureCount {
		t.Fatalf("expected %d features required, got %d", ml.FeatureCount, info.FeaturesRequired)
	}
	if len(info.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %v", info.Classes)
	}
}

func TestModelUpdatedHandler(t *testing.T) {
	provider := &fakeProvider{}
	mux := newTestMux(provider)

	req := httptest.NewRequest(http.MethodPost, "/api/model-updated", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if provider.invalidations != 1 {
		t.Fatalf("expected 1 invalidation, got %d", provider.invalidations)
	}
}
