package telemetry

import (
	"context"
	"errors"

	"github.com/clubhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Providers bundles the tracer and meter providers of the process
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
}

// Setup builds both providers from the telemetry section of the config
func Setup(ctx context.Context, cfg config.TelemetryConfig, svc Service, logger *zap.Logger) (*Providers, error) {
	if svc.Name == "" {
		svc.Name = cfg.ServiceName
	}
	tp, err := NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		Insecure:          cfg.Insecure,
		Service:           svc,
	}, logger)
	if err != nil {
		return nil, err
	}
	mp, err := NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		Insecure:          cfg.Insecure,
		Service:           svc,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return &Providers{Tracer: tp, Meter: mp}, nil
}

// Shutdown flushes metrics first, then spans
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Meter.Shutdown(ctx), p.Tracer.Shutdown(ctx))
}
