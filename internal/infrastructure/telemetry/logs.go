package telemetry

import (
	"context"
	"fmt"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider ships zap entries to the collector as OTLP log records.
type LoggerProvider struct {
	sdk   *sdklog.LoggerProvider
	log   *zap.Logger
	scope string
}

// NewLoggerProvider is a no-op unless both telemetry and log export are on.
func NewLoggerProvider(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{log: log, scope: cfg.ServiceName}
	if !cfg.Enabled || !cfg.LogsEnabled {
		log.Info("Log export disabled")
		return lp, nil
	}

	exporter, err := otlploggrpc.New(ctx, exporterOptions(cfg.CollectorEndpoint, cfg.Insecure,
		otlploggrpc.WithEndpoint, otlploggrpc.WithInsecure)...)
	if err != nil {
		return nil, fmt.Errorf("otlp log exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(lp.sdk)
	log.Info("Log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

func (lp *LoggerProvider) IsEnabled() bool { return lp.sdk != nil }

// ZapCore bridges zap into the provider. It is nil while export is off;
// logger.New skips nil cores.
func (lp *LoggerProvider) ZapCore() zapcore.Core {
	if lp.sdk == nil {
		return nil
	}
	return otelzap.NewCore(lp.scope, otelzap.WithLoggerProvider(lp.sdk))
}

// Shutdown flushes buffered records
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.sdk == nil {
		return nil
	}
	return flush(ctx, lp.log, "log", lp.sdk.Shutdown)
}
