package loader

import (
	"context"
	"fmt"

	"clickstream-backend/internal/domain/load"
	"clickstream-backend/internal/ledger"
	"clickstream-backend/internal/observability"
	"clickstream-backend/internal/redshift"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Describer reports the state of a submitted statement.
type Describer interface {
	Describe(ctx context.Context, queryID string) (*redshift.StatementStatus, error)
}

// OutcomePublisher announces finished loads.
type OutcomePublisher interface {
	PublishLoadOutcome(ctx context.Context, status load.LoadStatus) error
}

// StatusChecker polls a submitted load once and, when it has finished, moves
// every file of its manifest to the matching terminal job status.
type StatusChecker struct {
	ledger    ledger.Ledger
	describer Describer
	publisher OutcomePublisher
	collector *observability.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewStatusChecker creates a status checker. publisher and collector may be nil.
func NewStatusChecker(
	l ledger.Ledger,
	describer Describer,
	publisher OutcomePublisher,
	collector *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *StatusChecker {
	return &StatusChecker{
		ledger:    l,
		describer: describer,
		publisher: publisher,
		collector: collector,
		tracer:    tracer,
		logger:    logger,
	}
}

// CheckStatus makes one DescribeStatement call for submission. In-progress
// loads are returned untouched; terminal loads are written to the ledger and
// published before returning.
func (c *StatusChecker) CheckStatus(ctx context.Context, submission load.LoadSubmission) (*load.LoadStatus, error) {
	ctx, span := c.tracer.Start(ctx, "loader.CheckStatus",
		trace.WithAttributes(
			attribute.String("redshift.query_id", submission.QueryID),
			attribute.String("manifest.uri", submission.Manifest.ManifestURI),
		),
	)
	defer span.End()

	status, err := c.checkStatus(ctx, submission)
	observability.RecordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("load.state", string(status.State)))
		if c.collector != nil {
			c.collector.LoadOutcomes.WithLabelValues(string(status.State)).Inc()
		}
	}
	return status, err
}

func (c *StatusChecker) checkStatus(ctx context.Context, submission load.LoadSubmission) (*load.LoadStatus, error) {
	if submission.QueryID == "" {
		return nil, appErrors.NewValidationError("submission has no query id")
	}

	logger := c.logger.With(
		zap.String("query_id", submission.QueryID),
		zap.String("manifest", submission.Manifest.ManifestURI),
	)

	described, err := c.describer.Describe(ctx, submission.QueryID)
	if err != nil {
		logger.Error("Failed to describe load statement", zap.Error(err))
		return nil, err
	}

	status := &load.LoadStatus{
		QueryID:    submission.QueryID,
		Submission: submission,
	}

	var jobStatus load.JobStatus
	switch {
	case described.Status == types.StatusStringFinished:
		status.State = load.LoadSucceeded
		jobStatus = load.JobStatusSucceeded
	case described.IsTerminal():
		// FAILED or ABORTED
		status.State = load.LoadFailed
		status.Message = described.Error
		status.Failure = classifyFailure(submission.TenantSchema, described)
		jobStatus = load.JobStatusFailed
	case described.Status == types.StatusStringSubmitted,
		described.Status == types.StatusStringPicked,
		described.Status == types.StatusStringStarted:
		status.State = load.LoadInProgress
		logger.Debug("Load still running", zap.String("status", string(described.Status)))
		return status, nil
	default:
		return nil, appErrors.NewInternalError(fmt.Sprintf("unexpected statement status '%s'", described.Status))
	}

	for i, entry := range submission.Manifest.Entries {
		if err := c.ledger.MarkStatus(ctx, entry.URL, jobStatus); err != nil {
			logger.Error("Failed to record load outcome",
				zap.Int("index", i),
				zap.String("s3_uri", entry.URL),
				zap.String("job_status", string(jobStatus)),
				zap.Error(err),
			)
			if appErrors.IsInvalidTransition(err) {
				return nil, err
			}
			appErr := appErrors.NewLedgerWriteError(entry.URL, err)
			appErr.Details["index"] = i
			return nil, appErr
		}
	}

	if status.Failure != nil {
		logger.Warn("Load failed",
			zap.String("status", string(described.Status)),
			zap.String("message", status.Message),
			zap.Error(status.Failure),
		)
	} else {
		logger.Info("Load finished", zap.Int("entries", len(submission.Manifest.Entries)))
	}

	if c.publisher != nil {
		if err := c.publisher.PublishLoadOutcome(ctx, *status); err != nil {
			logger.Error("Failed to publish load outcome", zap.Error(err))
			return nil, err
		}
	}

	return status, nil
}

func classifyFailure(schema string, described *redshift.StatementStatus) error {
	if redshift.IsSchemaFailure(described.Error) {
		return appErrors.NewSchemaInvalidError(schema, described.Error)
	}
	if described.Status == types.StatusStringAborted {
		return appErrors.NewSubmissionRejectedError("load statement was aborted", nil)
	}
	return appErrors.NewSubmissionRejectedError(fmt.Sprintf("load statement failed: %s", described.Error), nil)
}
