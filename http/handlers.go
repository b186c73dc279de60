package http

import (
	"encoding/json"
	"math"
	"net/http"

	"go.uber.org/zap"

	"fluxml/ml"
)

const (
	ServiceName    = "fluxml"
	ServiceVersion = "1.0.0"
)

// ModelInfo is the static descriptive metadata served at /api/model-info.
type ModelInfo struct {
	ModelName        string `json:"model_name"`
	ModelVersion     string `json:"model_version"`
	Container        string `json:"container"`
	BlobName         string `json:"blob_name"`
	FeaturesRequired int    `json:"features_required"`
	Classes          []int  `json:"classes"`
}

// Handlers holds the serving dependencies. The hub is optional.
type Handlers struct {
	models ModelProvider
	hub    *Hub
	info   ModelInfo
}

func NewHandlers(models ModelProvider, hub *Hub, info ModelInfo) *Handlers {
	if info.FeaturesRequired == 0 {
		info.FeaturesRequired = ml.FeatureCount
	}
	if info.Classes == nil {
		info.Classes = []int{0, 1}
	}
	return &Handlers{models: models, hub: hub, info: info}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/model-info", h.handleModelInfo)
	mux.HandleFunc("POST /api/model-updated", h.handleModelUpdated)
	if h.hub != nil {
		mux.HandleFunc("GET /api/ws/events", h.hub.HandleWS)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction  int                `json:"prediction"`
	Probability map[string]float64 `json:"probability"`
	Confidence  float64            `json:"confidence"`
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Features) == 0 {
		writeError(w, http.StatusBadRequest, "missing 'features' in request body")
		return
	}
	if len(req.Features) != ml.FeatureCount {
		writeError(w, http.StatusBadRequest, "expected 10 features")
		return
	}
	for _, v := range req.Features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(w, http.StatusBadRequest, "features must be finite numbers")
			return
		}
	}

	model, err := h.models.Get(r.Context())
	if err != nil {
		zap.L().Error("failed to obtain model", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	probs, err := model.PredictProba(req.Features)
	if err != nil {
		zap.L().Error("inference failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	prediction := 0
	if probs[1] > probs[0] {
		prediction = 1
	}

	resp := predictResponse{
		Prediction: prediction,
		Probability: map[string]float64{
			"class_0": probs[0],
			"class_1": probs[1],
		},
		Confidence: math.Max(probs[0], probs[1]),
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{Type: EventPredictionServed, Data: resp})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// handleModelUpdated is the artifact-change notification hook: it evicts the
// cached model so the next prediction reloads the new artifact.
func (h *Handlers) handleModelUpdated(w http.ResponseWriter, r *http.Request) {
	h.models.Invalidate()
	if h.hub != nil {
		h.hub.Broadcast(Event{Type: EventModelReloaded})
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
