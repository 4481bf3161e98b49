// Package logger configures the application's structured logging. Setup
// builds a JSON slog logger at the configured level and installs it as the
// process default; TestLogBuffer and SetupTestLogger support asserting on
// log output in tests.
package logger
