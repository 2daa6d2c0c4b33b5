package types

import "time"

// ModelsResponse is returned by GET /models.
type ModelsResponse struct {
	// Installed models reported by the runtime.
	Available []Model `json:"available"`
	// Name of the confirmed active model, empty when none.
	// example: qwen2.5:7b
	Current string `json:"current" example:"qwen2.5:7b"`
}

// SwitchRequest is the body of POST /models/switch.
type SwitchRequest struct {
	// Target model name including tag.
	// example: qwen2.5:7b
	Model string `json:"model" example:"qwen2.5:7b"`
}

// SwitchResult is the outcome of one switch operation.
type SwitchResult struct {
	// Whether the target model was confirmed active.
	// example: true
	Success bool `json:"success" example:"true"`
	// Human-readable outcome description.
	// example: switched to qwen2.5:7b
	Message string `json:"message" example:"switched to qwen2.5:7b"`
	// Name of the active model after the operation, when known.
	// example: qwen2.5:7b
	ActiveModel string `json:"active_model,omitempty" example:"qwen2.5:7b"`
}

// HealthResponse is returned by GET /telemetry/health.
type HealthResponse struct {
	// Whether at least one telemetry sample has been taken.
	// example: true
	Sampled bool `json:"sampled" example:"true"`
	// Whether the hardware probe answered on the latest sample.
	// example: true
	AcceleratorAvailable bool `json:"accelerator_available" example:"true"`
	// Accelerator device name, empty when unavailable.
	// example: NVIDIA GeForce RTX 4090
	AcceleratorName string `json:"accelerator_name,omitempty" example:"NVIDIA GeForce RTX 4090"`
	// Compute utilization percentage at the latest sample.
	// example: 87
	UtilizationPct int `json:"utilization_pct" example:"87"`
	// Device memory usage rendered as "used/total MB", "n/a" when unavailable.
	// example: 5647/24576 MB
	MemoryUsage string `json:"memory_usage" example:"5647/24576 MB"`
	// Core temperature in Celsius at the latest sample.
	// example: 62
	TemperatureC int `json:"temperature_c" example:"62"`
	// Model the runtime reports as loaded, empty when none.
	// example: qwen2.5:7b
	ActiveModel string `json:"active_model,omitempty" example:"qwen2.5:7b"`
	// Whether the loaded instance is accelerator-backed.
	// example: true
	AcceleratorBacked bool `json:"accelerator_backed" example:"true"`
	// When the latest sample was taken.
	SampledAt time.Time `json:"sampled_at,omitempty"`
}

// MetricsResponse is returned by GET /telemetry/metrics.
type MetricsResponse struct {
	// The most recent snapshot.
	Current Snapshot `json:"current"`
	// Rolling means over the snapshots currently held.
	Averages Averages `json:"averages"`
	// Number of snapshots currently held in the history buffer.
	// example: 50
	Samples int `json:"samples" example:"50"`
}

// RecommendationsResponse is returned by GET /telemetry/recommendations.
type RecommendationsResponse struct {
	// Ordered advisory strings derived from the latest telemetry.
	Recommendations []string `json:"recommendations"`
	// When the advisories were generated.
	GeneratedAt time.Time `json:"generated_at"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
