package telemetry

import (
	"strings"
	"testing"

	"switchd/pkg/types"
)

func containsSubstring(recs []string, sub string) bool {
	for _, r := range recs {
		if strings.Contains(r, sub) {
			return true
		}
	}
	return false
}

func TestRecommendationsUnavailable(t *testing.T) {
	recs := Recommendations(types.Snapshot{AcceleratorAvailable: false}, types.Averages{})
	if len(recs) != 2 {
		t.Fatalf("expected 2 advisories, got %d: %v", len(recs), recs)
	}
	if !containsSubstring(recs, "CPU") {
		t.Fatalf("expected CPU fallback advisory, got %v", recs)
	}
}

func TestRecommendationsThermalWarning(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		TemperatureC:         85,
		MemoryUsedBytes:      12 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	recs := Recommendations(snap, types.Averages{})
	if !containsSubstring(recs, "thermal warning") {
		t.Fatalf("expected thermal warning at 85C, got %v", recs)
	}
}

func TestRecommendationsHighUtilization(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		UtilizationPct:       95,
		TemperatureC:         65,
		MemoryUsedBytes:      12 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	recs := Recommendations(snap, types.Averages{UtilizationPct: 92})
	if !containsSubstring(recs, "excellent acceleration") {
		t.Fatalf("expected excellent-acceleration advisory, got %v", recs)
	}
}

func TestRecommendationsLowAverageUtilization(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		UtilizationPct:       30,
		TemperatureC:         55,
		MemoryUsedBytes:      12 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	recs := Recommendations(snap, types.Averages{UtilizationPct: 25})
	if !containsSubstring(recs, "batching") {
		t.Fatalf("expected batching advisory at low average utilization, got %v", recs)
	}
}

func TestRecommendationsMemoryPressure(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		TemperatureC:         60,
		MemoryUsedBytes:      23 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	recs := Recommendations(snap, types.Averages{})
	if !containsSubstring(recs, "smaller model") {
		t.Fatalf("expected high-memory advisory, got %v", recs)
	}
	if !containsSubstring(recs, "limited accelerator memory") {
		t.Fatalf("expected limited-headroom advisory, got %v", recs)
	}
}

func TestRecommendationsLargeHeadroom(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		TemperatureC:         60,
		MemoryUsedBytes:      2 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	recs := Recommendations(snap, types.Averages{})
	if !containsSubstring(recs, "7B+") {
		t.Fatalf("expected large-headroom advisory, got %v", recs)
	}
	if !containsSubstring(recs, "larger model would improve quality") {
		t.Fatalf("expected low-memory-usage advisory, got %v", recs)
	}
}

func TestRecommendationsCPUBackedModel(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		TemperatureC:         60,
		MemoryUsedBytes:      12 << 30,
		MemoryTotalBytes:     24 << 30,
		ActiveModel:          "qwen2.5:7b",
		AcceleratorBacked:    false,
	}
	recs := Recommendations(snap, types.Averages{})
	if !containsSubstring(recs, "not using the accelerator") {
		t.Fatalf("expected offload advisory, got %v", recs)
	}
}

func TestRecommendationsPure(t *testing.T) {
	snap := types.Snapshot{
		AcceleratorAvailable: true,
		UtilizationPct:       95,
		TemperatureC:         60,
		MemoryUsedBytes:      12 << 30,
		MemoryTotalBytes:     24 << 30,
	}
	first := Recommendations(snap, types.Averages{})
	second := Recommendations(snap, types.Averages{})
	if len(first) != len(second) {
		t.Fatalf("expected stable output, got %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected stable ordering, got %v vs %v", first, second)
		}
	}
}
