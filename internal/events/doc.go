// Package events decouples run lifecycle notifications from their
// consumers. The pipeline service emits a RunCompletedEvent when a run
// finishes; subscribers such as the run recorder react without the service
// knowing about persistence.
package events
