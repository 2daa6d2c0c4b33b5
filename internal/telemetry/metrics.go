package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"switchd/pkg/types"
)

var (
	gpuAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "gpu",
		Name:      "available",
		Help:      "Whether the hardware probe answered on the last sample (1/0)",
	})

	gpuUtilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "gpu",
		Name:      "utilization_pct",
		Help:      "Accelerator compute utilization percentage",
	})

	gpuMemoryUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "gpu",
		Name:      "memory_used_bytes",
		Help:      "Accelerator memory in use",
	})

	gpuMemoryTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "gpu",
		Name:      "memory_total_bytes",
		Help:      "Total accelerator memory",
	})

	gpuTemperature = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "gpu",
		Name:      "temperature_celsius",
		Help:      "Accelerator core temperature",
	})

	runtimeMemory = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "runtime",
		Name:      "model_memory_bytes",
		Help:      "Memory attributed to the loaded model instance",
	})

	runtimeTokensPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "switchd",
		Subsystem: "runtime",
		Name:      "tokens_per_sec",
		Help:      "Most recently observed inference throughput",
	})
)

func init() {
	prometheus.MustRegister(
		gpuAvailable, gpuUtilization, gpuMemoryUsed, gpuMemoryTotal,
		gpuTemperature, runtimeMemory, runtimeTokensPerSec,
	)
}

func updateGauges(s types.Snapshot) {
	if s.AcceleratorAvailable {
		gpuAvailable.Set(1)
	} else {
		gpuAvailable.Set(0)
	}
	gpuUtilization.Set(float64(s.UtilizationPct))
	gpuMemoryUsed.Set(float64(s.MemoryUsedBytes))
	gpuMemoryTotal.Set(float64(s.MemoryTotalBytes))
	gpuTemperature.Set(float64(s.TemperatureC))
	runtimeMemory.Set(float64(s.RuntimeMemoryBytes))
	runtimeTokensPerSec.Set(s.TokensPerSec)
}
