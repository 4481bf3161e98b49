// Package postgres provides PostgreSQL-backed implementations of the
// storage interfaces defined in the internal/store package. It owns the
// SQL for run history persistence and the mapping between domain entities
// and database rows, including translation of driver errors into the
// store package's sentinel errors.
package postgres
