package observability

import (
	"github.com/opsgrid/facilitypulse/internal/config"
	"github.com/opsgrid/facilitypulse/internal/observability/logger"
	"github.com/opsgrid/facilitypulse/internal/observability/metrics"
	"github.com/opsgrid/facilitypulse/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(ensureSnapshotMetrics),
	fx.Invoke(ensureTracingProvider),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.AppVersion,
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		IncludeCaller: true,
	}
}

func provideTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.AppName,
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func provideMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	}
}

func ensureSnapshotMetrics(cfg metrics.Config) {
	metrics.SnapshotWithConfig(cfg)
}

// ensureTracingProvider forces provider construction even when nothing
// else depends on it, so the global tracer is installed at startup.
func ensureTracingProvider(_ *sdktrace.TracerProvider) {}
