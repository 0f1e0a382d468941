package di

import (
	"context"
	"testing"

	"clickstream-backend/internal/config"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		ServiceName: "clickstream-load-workflow",
		AWSRegion:   "us-east-1",
		LogLevel:    "info",
		Ledger:      config.LedgerConfig{TableName: "clickstream-jobs"},
		Redshift: config.RedshiftConfig{
			Database:      "dev",
			TargetTable:   "ods_events",
			CopyRoleARN:   "arn:aws:iam::123456789012:role/copy",
			Mode:          "SERVERLESS",
			WorkgroupName: "wg1",
		},
	}
}

func TestProvideLogger(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "warn"

	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	cfg.LogLevel = "verbose"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestInitializeContainer(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	container, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, container.Handler)
	require.NotNil(t, container.Metrics)

	// Telemetry is disabled, so flushing and shutdown touch no network.
	require.NoError(t, container.MetricsFlusher.Flush(context.Background()))
	container.Shutdown(context.Background())
}

func TestInitializeContainer_BadMode(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := testConfig()
	cfg.Redshift.Mode = "LOCAL"

	_, err := InitializeContainer(context.Background(), cfg)
	assert.True(t, appErrors.IsConfigurationMissing(err))
}
