// Package gpu abstracts the hardware probe: a single read of accelerator
// utilization, memory, and temperature. Any concrete implementation
// (subprocess, NVML, sysfs) satisfies the same contract, which keeps the
// telemetry path testable with fakes.
package gpu

import (
	"context"

	"switchd/pkg/types"
)

// Probe reads current accelerator counters. A failed read is an error,
// never a panic; callers degrade to an "unavailable" view.
type Probe interface {
	ReadAccelerator(ctx context.Context) (types.AcceleratorStats, error)
}
