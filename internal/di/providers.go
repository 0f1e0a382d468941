package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"clickstream-backend/internal/config"
	"clickstream-backend/internal/handlers/workflow"
	"clickstream-backend/internal/ledger"
	"clickstream-backend/internal/loader"
	"clickstream-backend/internal/messaging/eventbridge"
	"clickstream-backend/internal/observability"
	"clickstream-backend/internal/redshift"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a JSON logger in production and a console logger elsewhere.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideAWSConfig loads the default AWS configuration for the configured region.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx, awsConfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates the ledger's DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsDynamodb.Client {
	return awsDynamodb.NewFromConfig(awsCfg, func(o *awsDynamodb.Options) {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	})
}

// ProvideSTSClient creates the STS client used for role assumption.
func ProvideSTSClient(awsCfg aws.Config) *sts.Client {
	return sts.NewFromConfig(awsCfg)
}

// ProvideRedshiftDataClient creates a Data API client that runs as the
// configured Data API role, or as the function role when none is set.
func ProvideRedshiftDataClient(awsCfg aws.Config, stsClient *sts.Client, cfg *config.Config) *redshiftdata.Client {
	return redshiftdata.NewFromConfig(redshift.AssumeRoleConfig(awsCfg, stsClient, cfg.Redshift.DataAPIRoleARN))
}

// ProvideCollector creates the metrics collector.
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("clickstream")
}

// ProvideMetricsFlusher creates the CloudWatch flusher. It does nothing when
// metrics are disabled.
func ProvideMetricsFlusher(awsCfg aws.Config, cfg *config.Config, collector *observability.Collector, logger *zap.Logger) *observability.CloudWatchFlusher {
	if !cfg.Metrics.Enabled {
		return observability.NewCloudWatchFlusher(nil, collector.Registry(), cfg.MetricsNamespace(), logger)
	}
	client := cloudwatch.NewFromConfig(awsCfg)
	return observability.NewCloudWatchFlusher(client, collector.Registry(), cfg.MetricsNamespace(), logger)
}

// ProvideTracerProvider starts the OTLP exporter when tracing is enabled.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return observability.NewNoopTracerProvider(cfg.ServiceName), nil
	}
	return observability.InitTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.Tracing.Endpoint)
}

// ProvideTracer returns the service tracer.
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideLedger creates the DynamoDB job ledger wrapped with tracing and metrics.
func ProvideLedger(
	client *awsDynamodb.Client,
	cfg *config.Config,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) ledger.Ledger {
	var l ledger.Ledger = ledger.NewDynamoDBLedger(client, cfg.Ledger.TableName, logger)
	l = ledger.WithTracing(l, tracer)
	l = ledger.WithMetrics(l, collector)
	return l
}

// ProvideRedshiftClient creates the statement submission client.
func ProvideRedshiftClient(
	api *redshiftdata.Client,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *redshift.Client {
	return redshift.NewClient(api, logger, collector, tracer)
}

// ProvideEventPublisher creates the load outcome publisher. Without a bus it
// publishes nothing.
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) *eventbridge.Publisher {
	if cfg.Events.BusName == "" {
		return eventbridge.NewPublisher(nil, "", cfg.Events.Source, logger)
	}
	client := awsEventbridge.NewFromConfig(awsCfg, func(o *awsEventbridge.Options) {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	})
	return eventbridge.NewPublisher(client, cfg.Events.BusName, cfg.Events.Source, logger)
}

// ProvideManifestLoader creates the load orchestrator.
func ProvideManifestLoader(
	l ledger.Ledger,
	client *redshift.Client,
	cfg *config.Config,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) (*loader.ManifestLoader, error) {
	return loader.NewManifestLoader(l, client, cfg.Redshift, collector, tracer, logger)
}

// ProvideStatusChecker creates the load status checker.
func ProvideStatusChecker(
	l ledger.Ledger,
	client *redshift.Client,
	publisher *eventbridge.Publisher,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *loader.StatusChecker {
	return loader.NewStatusChecker(l, client, publisher, collector, tracer, logger)
}

// ProvideHandler creates the workflow step handler. Metrics flush before traces.
func ProvideHandler(
	manifestLoader *loader.ManifestLoader,
	checker *loader.StatusChecker,
	flusher *observability.CloudWatchFlusher,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) *workflow.Handler {
	return workflow.NewHandler(manifestLoader, checker, logger, flusher, tp)
}
