package gpu

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"switchd/pkg/types"
)

// smiQuery selects the fields parsed by parseSMILine, in order.
const smiQuery = "name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw,driver_version"

// SMIProbe reads accelerator counters by invoking nvidia-smi.
type SMIProbe struct {
	bin string
	log zerolog.Logger
}

// NewSMIProbe constructs a probe around the given nvidia-smi binary.
// An empty bin falls back to "nvidia-smi" on PATH.
func NewSMIProbe(bin string, log zerolog.Logger) *SMIProbe {
	if bin == "" {
		bin = "nvidia-smi"
	}
	return &SMIProbe{bin: bin, log: log.With().Str("component", "gpu_probe").Logger()}
}

func (p *SMIProbe) ReadAccelerator(ctx context.Context) (types.AcceleratorStats, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"--query-gpu="+smiQuery,
		"--format=csv,noheader,nounits",
	)
	out, err := cmd.Output()
	if err != nil {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: empty output")
	}
	// Only the first device is considered; the system assumes a single
	// accelerator serving the local runtime.
	stats, err := parseSMILine(lines[0])
	if err != nil {
		return types.AcceleratorStats{}, err
	}
	return stats, nil
}

// parseSMILine parses one CSV row produced by the smiQuery field list.
// Memory values arrive in MiB and are converted to bytes.
func parseSMILine(line string) (types.AcceleratorStats, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 7 {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: short row: %q", line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	util, err := strconv.Atoi(parts[1])
	if err != nil {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: utilization: %w", err)
	}
	memUsedMiB, err := strconv.Atoi(parts[2])
	if err != nil {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: memory.used: %w", err)
	}
	memTotalMiB, err := strconv.Atoi(parts[3])
	if err != nil {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: memory.total: %w", err)
	}
	temp, err := strconv.Atoi(parts[4])
	if err != nil {
		return types.AcceleratorStats{}, fmt.Errorf("nvidia-smi: temperature: %w", err)
	}
	// Power draw is reported as a float and may be "[N/A]" on some boards.
	power := 0
	if f, err := strconv.ParseFloat(parts[5], 64); err == nil {
		power = int(f)
	}
	return types.AcceleratorStats{
		Name:             parts[0],
		UtilizationPct:   util,
		MemoryUsedBytes:  int64(memUsedMiB) * 1024 * 1024,
		MemoryTotalBytes: int64(memTotalMiB) * 1024 * 1024,
		TemperatureC:     temp,
		PowerDrawW:       power,
		DriverVersion:    parts[6],
	}, nil
}
