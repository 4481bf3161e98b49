// Package task manages concurrent task queuing, dispatch, and lifecycle.
// It provides a fixed-size pool of isolated execution units fed by a
// two-level priority queue, submission primitives for single tasks and
// batches, and crash containment so a misbehaving handler cannot take
// down its neighbors or the pool itself.
package task
