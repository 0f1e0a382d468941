// Package di wires the workflow step dependencies.
package di

import (
	"context"

	"clickstream-backend/internal/config"
	"clickstream-backend/internal/handlers/workflow"
	"clickstream-backend/internal/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *observability.Collector
	MetricsFlusher *observability.CloudWatchFlusher
	Tracing        *observability.TracerProvider
	Handler        *workflow.Handler
}

// Shutdown flushes telemetry and releases the exporter.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.MetricsFlusher.Flush(ctx); err != nil {
		c.Logger.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := c.Tracing.Shutdown(ctx); err != nil {
		c.Logger.Warn("Failed to shut down tracing", zap.Error(err))
	}
	_ = c.Logger.Sync()
}
