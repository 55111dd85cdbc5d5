package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tricol/supplierchain/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type appMetricSet struct {
	seederPhaseCounter     metric.Int64Counter
	seederRunDuration      metric.Float64Histogram
	authzDecisionCounter   metric.Int64Counter
	authProxyCounter       metric.Int64Counter
	authProxyDuration      metric.Float64Histogram
	tokenValidationCounter metric.Int64Counter
	permCacheCounter       metric.Int64Counter
	rateLimitCounter       metric.Int64Counter
	mwValidationCounter    metric.Int64Counter
	healthCheckCounter     metric.Int64Counter
	healthCheckDuration    metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *appMetricSet
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("supplierchain")
	seederPhaseCounter, err := meter.Int64Counter("seeder.phase.events")
	if err != nil {
		return nil, err
	}
	seederRunDuration, err := meter.Float64Histogram(
		"seeder.run.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of a full bootstrap seeding run in seconds"),
	)
	if err != nil {
		return nil, err
	}
	authzDecisionCounter, err := meter.Int64Counter("authz.decisions")
	if err != nil {
		return nil, err
	}
	authProxyCounter, err := meter.Int64Counter("auth.provider.requests")
	if err != nil {
		return nil, err
	}
	authProxyDuration, err := meter.Float64Histogram(
		"auth.provider.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of identity provider calls in seconds"),
	)
	if err != nil {
		return nil, err
	}
	tokenValidationCounter, err := meter.Int64Counter("auth.access_token.validation.events")
	if err != nil {
		return nil, err
	}
	permCacheCounter, err := meter.Int64Counter("authz.permission.cache.events")
	if err != nil {
		return nil, err
	}
	rateLimitCounter, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	mwValidationCounter, err := meter.Int64Counter("http.middleware.validation.events")
	if err != nil {
		return nil, err
	}
	healthCheckCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthCheckDuration, err := meter.Float64Histogram(
		"health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"),
	)
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &appMetricSet{
		seederPhaseCounter:     seederPhaseCounter,
		seederRunDuration:      seederRunDuration,
		authzDecisionCounter:   authzDecisionCounter,
		authProxyCounter:       authProxyCounter,
		authProxyDuration:      authProxyDuration,
		tokenValidationCounter: tokenValidationCounter,
		permCacheCounter:       permCacheCounter,
		rateLimitCounter:       rateLimitCounter,
		mwValidationCounter:    mwValidationCounter,
		healthCheckCounter:     healthCheckCounter,
		healthCheckDuration:    healthCheckDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *appMetricSet {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordSeederPhase(ctx context.Context, phase, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.seederPhaseCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordSeederDuration(ctx context.Context, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.seederRunDuration.Record(ctx, d.Seconds())
}

func RecordAuthzDecision(ctx context.Context, check, required, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.authzDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("required", required),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthProxy(ctx context.Context, operation, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authProxyCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func RecordAuthProxyDuration(ctx context.Context, operation string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authProxyDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func RecordTokenValidation(ctx context.Context, result string) {
	m := current()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func RecordPermissionCacheEvent(ctx context.Context, event string) {
	m := current()
	if m == nil {
		return
	}
	m.permCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

func RecordRateLimitDecision(ctx context.Context, scope, decision string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("decision", decision),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, event string) {
	m := current()
	if m == nil {
		return
	}
	m.mwValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("event", event),
	))
}

func RecordHealthCheck(ctx context.Context, name string, healthy bool, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", name),
		attribute.Bool("healthy", healthy),
	))
	m.healthCheckDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("check", name),
	))
}
