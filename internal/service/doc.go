// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between the worker pool, the processing
// pipeline, and repositories (defined in internal/store) to fulfill
// application features.
//
// The service package implements the application layer in the clean architecture,
// containing use cases that coordinate the flow of data between external interfaces
// (API handlers) and the processing core. It abstracts away infrastructure
// details while orchestrating the pool and pipeline to fulfill requests.
//
// Key components:
//
// 1. AnalysisService:
//   - Submits individual tasks and batches to the worker pool
//   - Drives full pipeline runs over line streams and structured records
//   - Records run history through the RunRepository when one is configured
//   - Emits completion events so downstream handlers can react to finished runs
//
// 2. RunRecorder:
//   - An events.EventHandler that persists the final state of a run when its
//     completion event arrives, decoupling persistence from request handling
//
// 3. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Run history is optional: a nil RunRepository disables it rather than
//     failing construction
//
// 4. Error Handling:
//   - Translate pool and store errors to application-level errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations, maintaining the Dependency
// Inversion Principle of clean architecture.
package service
