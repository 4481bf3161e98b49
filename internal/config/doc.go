// Package config loads and validates application settings from environment
// variables (LOGLEARN_ prefix) and an optional loglearn.yaml file, with
// environment taking precedence. It exposes typed groups for the server,
// task pool, pipeline, database, auth, classifier, and metrics settings so
// the rest of the application never touches raw configuration sources.
package config
