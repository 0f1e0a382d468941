// Package loader drives a manifest through the job ledger into Redshift and
// follows the submitted statement to its outcome.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clickstream-backend/internal/config"
	"clickstream-backend/internal/domain/load"
	"clickstream-backend/internal/ledger"
	"clickstream-backend/internal/observability"
	"clickstream-backend/internal/redshift"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Submitter sends a statement without waiting for it to run.
type Submitter interface {
	Submit(ctx context.Context, stmt redshift.Statement) (string, error)
}

// ManifestLoader marks every file of a manifest as processing and submits the
// COPY that loads them.
type ManifestLoader struct {
	ledger     ledger.Ledger
	submitter  Submitter
	settings   config.RedshiftConfig
	connection load.Connection
	validate   *validator.Validate
	collector  *observability.Collector
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewManifestLoader creates a loader for the Redshift target in settings. The
// connection is resolved here so a bad mode fails at startup.
func NewManifestLoader(
	l ledger.Ledger,
	submitter Submitter,
	settings config.RedshiftConfig,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) (*ManifestLoader, error) {
	connection, err := settings.Connection()
	if err != nil {
		return nil, err
	}

	return &ManifestLoader{
		ledger:     l,
		submitter:  submitter,
		settings:   settings,
		connection: connection,
		validate:   validator.New(),
		collector:  collector,
		tracer:     tracer,
		logger:     logger,
	}, nil
}

// LoadManifest records every entry as JOB_PROCESSING in entry order, then
// submits one COPY for the whole manifest. A failed ledger write stops the
// run before anything is submitted; entries written before it stay written.
func (l *ManifestLoader) LoadManifest(ctx context.Context, manifest load.Manifest) (*load.LoadSubmission, error) {
	ctx, span := l.tracer.Start(ctx, "loader.LoadManifest",
		trace.WithAttributes(
			attribute.String("manifest.uri", manifest.ManifestURI),
			attribute.String("manifest.tenant_id", manifest.TenantID),
			attribute.Int("manifest.entries", len(manifest.Entries)),
		),
	)
	defer span.End()

	submission, err := l.loadManifest(ctx, manifest)
	observability.RecordError(span, err)
	if l.collector != nil {
		l.collector.Manifests.WithLabelValues(observability.Outcome(err)).Inc()
	}
	return submission, err
}

func (l *ManifestLoader) loadManifest(ctx context.Context, manifest load.Manifest) (*load.LoadSubmission, error) {
	if err := l.validateManifest(manifest); err != nil {
		return nil, err
	}

	logger := l.logger.With(
		zap.String("manifest", manifest.ManifestURI),
		zap.String("execution_id", manifest.CorrelationID),
	)

	schema := load.ResolveSchema(manifest.TenantID)
	var totalBytes int64
	for _, entry := range manifest.Entries {
		totalBytes += entry.ContentLength()
	}
	logger.Info("Loading manifest",
		zap.String("tenant_id", manifest.TenantID),
		zap.String("schema", schema),
		zap.Int("entries", len(manifest.Entries)),
		zap.Int64("bytes", totalBytes),
	)

	for i, entry := range manifest.Entries {
		if err := l.ledger.MarkStatus(ctx, entry.URL, load.JobStatusProcessing); err != nil {
			logger.Error("Failed to mark entry as processing",
				zap.Int("index", i),
				zap.String("s3_uri", entry.URL),
				zap.Error(err),
			)
			appErr := appErrors.NewLedgerWriteError(entry.URL, err)
			appErr.Details["index"] = i
			return nil, appErr
		}
	}
	if l.collector != nil {
		l.collector.ManifestEntries.Add(float64(len(manifest.Entries)))
	}

	stmt := redshift.Statement{
		SQL:        load.BuildCopyStatement(schema, l.settings.TargetTable, manifest.ManifestURI, l.settings.CopyRoleARN),
		Database:   l.settings.Database,
		Connection: l.connection,
		Name:       statementName(schema),
	}
	if l.settings.IdempotentSubmit {
		stmt.ClientToken = clientToken(manifest)
	}

	queryID, err := l.submitter.Submit(ctx, stmt)
	if err != nil {
		logger.Error("Failed to submit load statement", zap.Error(err))
		return nil, err
	}

	logger.Info("Load statement submitted",
		zap.String("query_id", queryID),
		zap.String("schema", schema),
	)

	return &load.LoadSubmission{
		QueryID:      queryID,
		TenantSchema: schema,
		Manifest:     manifest,
	}, nil
}

func (l *ManifestLoader) validateManifest(manifest load.Manifest) error {
	err := l.validate.Struct(manifest)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return appErrors.NewInternalError("failed to validate manifest").WithCause(err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fe.Namespace())
	}
	return appErrors.NewValidationError(fmt.Sprintf("invalid manifest: %s", strings.Join(fields, ", "))).
		WithDetails(map[string]interface{}{"fields": fields}).
		WithCause(err)
}

func statementName(schema string) string {
	return fmt.Sprintf("clickstream-load-%s", schema)
}

// clientToken is stable for one workflow execution and manifest, so a retried
// step resubmits under the same token. Without an execution id every call is
// treated as a new load.
func clientToken(manifest load.Manifest) string {
	if manifest.CorrelationID == "" {
		return ""
	}
	name := manifest.CorrelationID + "|" + manifest.ManifestURI
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
