package optimization

import "sort"

// MaterialityThreshold is the raw weight at or below which an asset is
// dropped from the allocation. The 1% floor applies to every caller,
// CLI and HTTP alike.
const MaterialityThreshold = 0.01

// ProcessAllocation converts a raw weight vector into a human-facing
// allocation list: weights are normalized to percentages of the total,
// immaterial entries are dropped, and the result is ordered descending by
// percentage with ties keeping original asset order.
//
// A non-positive total yields an empty allocation rather than an error;
// callers must check emptiness.
func ProcessAllocation(weights []float64, assets []string) Allocation {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return Allocation{}
	}

	allocation := make(Allocation, 0, len(weights))
	for i, w := range weights {
		if w <= MaterialityThreshold {
			continue
		}
		allocation = append(allocation, AllocationEntry{
			Asset:      assets[i],
			Percentage: w / total * 100,
		})
	}

	sort.SliceStable(allocation, func(i, j int) bool {
		return allocation[i].Percentage > allocation[j].Percentage
	})

	return allocation
}
