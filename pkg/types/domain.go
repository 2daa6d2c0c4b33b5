package types

import "time"

// Model describes one installed model as reported by the runtime listing.
type Model struct {
	// Model name including tag.
	// example: qwen2.5:7b
	Name string `json:"name" example:"qwen2.5:7b"`
	// Content digest assigned by the runtime.
	// example: 845dbda0ea48ed74
	Digest string `json:"digest,omitempty" example:"845dbda0ea48ed74"`
	// On-disk size in bytes.
	// example: 4683087332
	SizeBytes int64 `json:"size_bytes" example:"4683087332"`
	// Last modification time reported by the runtime.
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// RunningModel is one loaded instance from the runtime's process listing.
type RunningModel struct {
	// Model name including tag.
	// example: qwen2.5:7b
	Name string `json:"name" example:"qwen2.5:7b"`
	// Total resident size in bytes.
	// example: 5921374000
	SizeBytes int64 `json:"size_bytes" example:"5921374000"`
	// Bytes resident on the accelerator.
	// example: 5921374000
	SizeVRAMBytes int64 `json:"size_vram_bytes" example:"5921374000"`
	// Share of the instance offloaded to the accelerator (0-100).
	// example: 100
	AcceleratorPct int `json:"accelerator_pct" example:"100"`
	// When the runtime will unload the instance absent further use.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// AcceleratorStats is one reading from the hardware probe.
type AcceleratorStats struct {
	// Device name.
	// example: NVIDIA GeForce RTX 4090
	Name string `json:"name" example:"NVIDIA GeForce RTX 4090"`
	// Compute utilization percentage (0-100).
	// example: 87
	UtilizationPct int `json:"utilization_pct" example:"87"`
	// Device memory in use, bytes.
	MemoryUsedBytes int64 `json:"memory_used_bytes"`
	// Total device memory, bytes.
	MemoryTotalBytes int64 `json:"memory_total_bytes"`
	// Core temperature in Celsius.
	// example: 62
	TemperatureC int `json:"temperature_c" example:"62"`
	// Power draw in watts.
	// example: 280
	PowerDrawW int `json:"power_draw_w,omitempty" example:"280"`
	// Driver version string.
	// example: 550.54.14
	DriverVersion string `json:"driver_version,omitempty" example:"550.54.14"`
}

// ActiveModel is the single process-wide "what is running now" record.
// The zero value means no model is confirmed active.
type ActiveModel struct {
	// Name of the confirmed active model, empty when none.
	// example: qwen2.5:7b
	Name string `json:"name,omitempty" example:"qwen2.5:7b"`
	// Whether the runtime reports the instance as accelerator-backed.
	// example: true
	AcceleratorBacked bool `json:"accelerator_backed" example:"true"`
	// Runtime memory attributed to the instance, bytes.
	RuntimeMemoryBytes int64 `json:"runtime_memory_bytes"`
}

// Snapshot is one point-in-time telemetry reading. Immutable once created.
type Snapshot struct {
	// When the sample was taken.
	Timestamp time.Time `json:"timestamp"`
	// Whether the hardware probe answered for this sample.
	// example: true
	AcceleratorAvailable bool `json:"accelerator_available" example:"true"`
	// Accelerator name, empty when unavailable.
	// example: NVIDIA GeForce RTX 4090
	AcceleratorName string `json:"accelerator_name,omitempty" example:"NVIDIA GeForce RTX 4090"`
	// Compute utilization percentage (0-100).
	// example: 87
	UtilizationPct int `json:"utilization_pct" example:"87"`
	// Device memory in use, bytes.
	MemoryUsedBytes int64 `json:"memory_used_bytes"`
	// Total device memory, bytes.
	MemoryTotalBytes int64 `json:"memory_total_bytes"`
	// Core temperature in Celsius.
	// example: 62
	TemperatureC int `json:"temperature_c" example:"62"`
	// Name of the model the runtime reports as loaded, empty when none.
	// example: qwen2.5:7b
	ActiveModel string `json:"active_model,omitempty" example:"qwen2.5:7b"`
	// Whether the loaded instance is accelerator-backed.
	// example: true
	AcceleratorBacked bool `json:"accelerator_backed" example:"true"`
	// Runtime memory attributed to the loaded instance, bytes.
	RuntimeMemoryBytes int64 `json:"runtime_memory_bytes"`
	// Most recently observed inference throughput, tokens per second.
	// example: 42.5
	TokensPerSec float64 `json:"tokens_per_sec"`
}

// Averages holds rolling means computed over the snapshots currently held
// in the history buffer.
type Averages struct {
	// Mean compute utilization percentage.
	// example: 74.3
	UtilizationPct float64 `json:"utilization_pct" example:"74.3"`
	// Mean device memory in use, bytes.
	MemoryUsedBytes float64 `json:"memory_used_bytes"`
	// Mean core temperature in Celsius.
	// example: 61.2
	TemperatureC float64 `json:"temperature_c" example:"61.2"`
	// Mean inference throughput, tokens per second.
	// example: 38.1
	TokensPerSec float64 `json:"tokens_per_sec" example:"38.1"`
}
