// Package pipeline adapts unbounded and bulk inputs into bounded pool
// submissions. It accumulates line streams into batches, fans records out
// into per-record task groups, slices bulk arrays into streaming chunks,
// and folds every outcome into a uniform run summary with throughput and
// success statistics.
package pipeline
