package analysis

import (
	"context"
	"errors"
	"math"
)

// StatsPayload is the input for statistical_analysis tasks.
type StatsPayload struct {
	Values []float64 `json:"values"`
}

// Validate implements the pool's payload check.
func (p StatsPayload) Validate() error {
	if len(p.Values) == 0 {
		return errors.New("stats payload requires at least one value")
	}
	for _, v := range p.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("stats payload values must be finite")
		}
	}
	return nil
}

// StatsResult is the outcome of one statistical_analysis task.
type StatsResult struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
	// StdDev is the population standard deviation.
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// runStatistics computes summary statistics over the payload values.
func runStatistics(ctx context.Context, payload StatsPayload) (any, error) {
	result := StatsResult{
		Count: len(payload.Values),
		Min:   payload.Values[0],
		Max:   payload.Values[0],
	}

	for _, v := range payload.Values {
		result.Sum += v
		if v < result.Min {
			result.Min = v
		}
		if v > result.Max {
			result.Max = v
		}
	}
	result.Mean = result.Sum / float64(result.Count)

	variance := 0.0
	for _, v := range payload.Values {
		d := v - result.Mean
		variance += d * d
	}
	result.StdDev = math.Sqrt(variance / float64(result.Count))

	return result, nil
}
