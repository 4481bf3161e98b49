// Package store defines the persistence interfaces for run history. The
// interfaces keep the application's core independent of the database
// technology; internal/platform/postgres provides the SQL implementation.
package store
