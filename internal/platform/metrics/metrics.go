// Package metrics wires the task pool's measurement hooks to OpenTelemetry.
// It owns the meter provider lifecycle: a periodic stdout exporter when
// metrics are enabled, and a disabled recorder otherwise.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/quillback/loglearn/internal/config"
)

// instrumentationName identifies this package's meter.
const instrumentationName = "github.com/quillback/loglearn/internal/platform/metrics"

// serviceName labels exported metrics with the owning service.
const serviceName = "loglearn"

// ShutdownFunc flushes and stops the meter provider. Safe to call once.
type ShutdownFunc func(ctx context.Context) error

// noopShutdown is returned when no provider was started.
func noopShutdown(context.Context) error { return nil }

// Setup initializes the OpenTelemetry metrics pipeline according to cfg.
//
// When metrics are disabled it returns a nil Recorder (the pool treats a
// nil recorder as "record nothing") and a no-op shutdown function. When
// enabled, it builds a meter provider backed by a periodic stdout exporter,
// registers it globally, and returns a Recorder bound to it.
func Setup(cfg config.MetricsConfig, logger *slog.Logger) (*Recorder, ShutdownFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.Enabled {
		logger.Debug("metrics disabled, skipping meter provider setup")
		return nil, noopShutdown, nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
	}

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build metrics resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	recorder, err := NewRecorder(provider.Meter(instrumentationName))
	if err != nil {
		// Tear the provider back down so a half-built pipeline never leaks.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("failed to shut down meter provider after recorder error",
				slog.String("error", shutdownErr.Error()))
		}
		return nil, nil, err
	}

	logger.Info("metrics pipeline started",
		slog.Duration("export_interval", interval))

	return recorder, provider.Shutdown, nil
}
