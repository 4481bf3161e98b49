// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services: task and batch submission, pipeline
// runs, run history and pool statistics, plus the API-key-for-token exchange
// that guards them.
package api
