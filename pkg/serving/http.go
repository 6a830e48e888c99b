package serving

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/life-expectancy/pkg/assets"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/observability/metrics"
)

// HTTPHandler exposes the pipeline as a JSON API.
type HTTPHandler struct {
	service *Service
	assets  *assets.Store
}

func NewHTTPHandler(service *Service, store *assets.Store) *HTTPHandler {
	return &HTTPHandler{service: service, assets: store}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)
	router.HandleFunc("/assets/{key}", h.handleAsset).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/schema", h.handleSchema).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	// Omitted fields keep the form defaults.
	raw := features.DefaultInputs()
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		logger.Log.WithError(err).Warn("invalid prediction payload")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.service.Predict(r.Context(), raw)
	if err != nil {
		f := describe(err)
		writeJSON(w, f.status, models.ErrorResponse{Error: f.message, Field: f.field})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Schema())
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, enabled, err := h.service.Stats(r.Context())
	if !enabled {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "stage statistics disabled"})
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to read stage statistics")
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "stage statistics unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stages": counts})
}

func (h *HTTPHandler) handleAsset(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if h.assets == nil {
		http.NotFound(w, r)
		return
	}
	data, contentType, err := h.assets.Open(key)
	if err != nil {
		if errors.Is(err, assets.ErrAssetMissing) {
			http.NotFound(w, r)
			return
		}
		logger.Log.WithError(err).WithField("key", key).Error("failed to read asset")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
