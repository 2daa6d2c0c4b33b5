package telemetry

import (
	"fmt"

	"switchd/pkg/types"
)

// Advisory thresholds. Utilization and memory are percentages,
// temperature is Celsius, headroom is bytes.
const (
	utilExcellentPct = 90
	utilLowPct       = 50
	tempWarnC        = 80
	tempOptimalC     = 40
	memLowPct        = 30
	memHighPct       = 90
	headroomLargeB   = 4 << 30
	headroomMediumB  = 2 << 30
)

// Recommendations derives human-readable advisories from the latest
// snapshot and the rolling averages. Pure function: no state, no side
// effects, stable ordering.
func Recommendations(latest types.Snapshot, avg types.Averages) []string {
	if !latest.AcceleratorAvailable {
		return []string{
			"accelerator monitoring unavailable - check driver tooling",
			"no acceleration: inference will run on CPU",
		}
	}

	var recs []string

	if latest.MemoryTotalBytes > 0 {
		memPct := latest.MemoryUsedBytes * 100 / latest.MemoryTotalBytes
		switch {
		case memPct < memLowPct:
			recs = append(recs, "accelerator memory usage is low - a larger model would improve quality")
		case memPct > memHighPct:
			recs = append(recs, "accelerator memory usage is high - a smaller model would avoid out-of-memory errors")
		}
	}

	switch {
	case latest.TemperatureC >= tempWarnC:
		recs = append(recs, fmt.Sprintf("thermal warning: accelerator at %d°C - check cooling before sustained workloads", latest.TemperatureC))
	case latest.TemperatureC > 0 && latest.TemperatureC < tempOptimalC:
		recs = append(recs, "accelerator temperature is optimal for sustained workloads")
	}

	switch {
	case latest.UtilizationPct >= utilExcellentPct:
		recs = append(recs, "excellent acceleration: utilization near maximum")
	case avg.UtilizationPct > 0 && avg.UtilizationPct < utilLowPct:
		recs = append(recs, "average utilization is low - batching requests would improve efficiency")
	}

	if latest.ActiveModel != "" {
		if latest.AcceleratorBacked {
			recs = append(recs, "runtime is using accelerator offload for the active model")
		} else {
			recs = append(recs, "runtime is not using the accelerator - check runtime configuration")
		}
	}

	if latest.MemoryTotalBytes > 0 {
		headroom := latest.MemoryTotalBytes - latest.MemoryUsedBytes
		switch {
		case headroom > headroomLargeB:
			recs = append(recs, "sufficient accelerator memory free for larger models (7B+)")
		case headroom > headroomMediumB:
			recs = append(recs, "moderate accelerator memory free - 3B-class models fit comfortably")
		default:
			recs = append(recs, "limited accelerator memory free - prefer smaller models")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "accelerator is healthy - no action needed")
	}
	return recs
}
