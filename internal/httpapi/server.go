package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"switchd/internal/control"
	"switchd/internal/telemetry"
	"switchd/pkg/types"
)

// ModelService is the lifecycle surface required by the HTTP layer.
type ModelService interface {
	Installed(ctx context.Context) ([]types.Model, error)
	Active() types.ActiveModel
	SwitchTo(ctx context.Context, model string) (types.SwitchResult, error)
}

// TelemetryService is the monitoring surface required by the HTTP layer.
type TelemetryService interface {
	Latest() (types.Snapshot, bool)
	Averages() types.Averages
	HistoryLen() int
	Subscribe() (<-chan types.Snapshot, func())
}

// NewMux assembles the API router.
func NewMux(models ModelService, telem TelemetryService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", handleModels(models))
	r.Post("/models/switch", handleSwitch(models))
	r.Get("/telemetry/health", handleHealth(telem))
	r.Get("/telemetry/metrics", handleMetrics(telem))
	r.Get("/telemetry/recommendations", handleRecommendations(telem))
	r.Get("/telemetry/ws", handleTelemetryWS(telem))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := telem.Latest(); ok {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("warming"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleModels godoc
// @Summary      List installed models
// @Description  Returns the runtime's installed models and the confirmed active model.
// @Produce      json
// @Success      200 {object} types.ModelsResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /models [get]
func handleModels(models ModelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		installed, err := models.Installed(ctx)
		if err != nil {
			zlog.Warn().Err(err).Msg("model listing failed")
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		resp := types.ModelsResponse{
			Available: installed,
			Current:   models.Active().Name,
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleSwitch godoc
// @Summary      Switch the active model
// @Description  Stops running instances, starts the target model and waits until the runtime confirms it. Switching to the active model is a no-op.
// @Accept       json
// @Produce      json
// @Param        request body types.SwitchRequest true "switch request"
// @Success      200 {object} types.SwitchResult
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.SwitchResult
// @Failure      500 {object} types.SwitchResult
// @Router       /models/switch [post]
func handleSwitch(models ModelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SwitchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}

		start := time.Now()
		rid := middleware.GetReqID(r.Context())
		zlog.Info().Str("model", req.Model).Str("request_id", rid).Msg("switch requested")

		// Join server base context with request context so shutdown
		// cancels the verify polling too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := models.SwitchTo(ctx, req.Model)
		status := http.StatusOK
		if err != nil {
			switch {
			case r.Context().Err() != nil || serverBaseCtx.Err() != nil:
				return
			case control.IsModelNotFound(err):
				status = http.StatusNotFound
			case control.IsRuntimeUnavailable(err):
				status = http.StatusServiceUnavailable
			default:
				status = http.StatusInternalServerError
			}
		}
		zlog.Info().
			Str("model", req.Model).
			Str("request_id", rid).
			Int("status", status).
			Dur("dur", time.Since(start)).
			Bool("success", res.Success).
			Msg("switch finished")
		writeJSON(w, status, res)
	}
}

// handleHealth godoc
// @Summary      Telemetry health view
// @Description  A dashboard-friendly view of the latest snapshot. Degrades to an "unavailable" payload instead of failing when hardware data is missing.
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Router       /telemetry/health [get]
func handleHealth(telem TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := telem.Latest()
		resp := types.HealthResponse{
			Sampled:              ok,
			AcceleratorAvailable: snap.AcceleratorAvailable,
			AcceleratorName:      snap.AcceleratorName,
			UtilizationPct:       snap.UtilizationPct,
			MemoryUsage:          "n/a",
			TemperatureC:         snap.TemperatureC,
			ActiveModel:          snap.ActiveModel,
			AcceleratorBacked:    snap.AcceleratorBacked,
			SampledAt:            snap.Timestamp,
		}
		if snap.AcceleratorAvailable && snap.MemoryTotalBytes > 0 {
			resp.MemoryUsage = fmt.Sprintf("%d/%d MB",
				snap.MemoryUsedBytes/(1024*1024), snap.MemoryTotalBytes/(1024*1024))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleMetrics godoc
// @Summary      Current telemetry and rolling averages
// @Produce      json
// @Success      200 {object} types.MetricsResponse
// @Router       /telemetry/metrics [get]
func handleMetrics(telem TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, _ := telem.Latest()
		writeJSON(w, http.StatusOK, types.MetricsResponse{
			Current:  snap,
			Averages: telem.Averages(),
			Samples:  telem.HistoryLen(),
		})
	}
}

// handleRecommendations godoc
// @Summary      Advisories derived from telemetry
// @Produce      json
// @Success      200 {object} types.RecommendationsResponse
// @Router       /telemetry/recommendations [get]
func handleRecommendations(telem TelemetryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, _ := telem.Latest()
		writeJSON(w, http.StatusOK, types.RecommendationsResponse{
			Recommendations: telemetry.Recommendations(snap, telem.Averages()),
			GeneratedAt:     time.Now(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
