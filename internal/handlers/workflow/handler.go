// Package workflow adapts the load orchestration to Step Functions task
// invocations.
package workflow

import (
	"context"
	"time"

	"clickstream-backend/internal/domain/load"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

// ManifestLoader submits a manifest load.
type ManifestLoader interface {
	LoadManifest(ctx context.Context, manifest load.Manifest) (*load.LoadSubmission, error)
}

// StatusChecker polls a submitted load.
type StatusChecker interface {
	CheckStatus(ctx context.Context, submission load.LoadSubmission) (*load.LoadStatus, error)
}

// Flusher pushes buffered telemetry before the invocation returns.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Handler serves both workflow steps.
type Handler struct {
	loader   ManifestLoader
	checker  StatusChecker
	flushers []Flusher
	logger   *zap.Logger
}

// NewHandler creates a workflow handler. Every flusher runs after each invocation.
func NewHandler(loader ManifestLoader, checker StatusChecker, logger *zap.Logger, flushers ...Flusher) *Handler {
	return &Handler{
		loader:   loader,
		checker:  checker,
		flushers: flushers,
		logger:   logger,
	}
}

// LoadManifest is the load step entrypoint.
func (h *Handler) LoadManifest(ctx context.Context, event LoadManifestEvent) (*SubmissionEvent, error) {
	start := time.Now()
	logger := h.requestLogger(ctx)
	defer h.flush(ctx, logger)

	logger.Info("Load manifest request",
		zap.String("execution_id", event.Detail.ExecutionID),
		zap.String("appId", event.Detail.AppID),
		zap.String("manifestFileName", event.Detail.ManifestFileName),
		zap.Int("entries", len(event.Detail.JobList.Entries)),
	)

	submission, err := h.loader.LoadManifest(ctx, event.Detail.manifest())
	if err != nil {
		logger.Error("Load manifest failed",
			zap.String("error_type", errorType(err)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("Load manifest submitted",
		zap.String("query_id", submission.QueryID),
		zap.Duration("duration", time.Since(start)),
	)
	return &SubmissionEvent{Detail: newSubmissionDetail(submission)}, nil
}

// CheckLoadStatus is the status step entrypoint.
func (h *Handler) CheckLoadStatus(ctx context.Context, event SubmissionEvent) (*StatusEvent, error) {
	logger := h.requestLogger(ctx)
	defer h.flush(ctx, logger)

	logger.Info("Check load status request",
		zap.String("query_id", event.Detail.ID),
		zap.String("manifestFileName", event.Detail.ManifestFileName),
	)

	status, err := h.checker.CheckStatus(ctx, event.Detail.submission())
	if err != nil {
		logger.Error("Check load status failed",
			zap.String("error_type", errorType(err)),
			zap.Error(err),
		)
		return nil, err
	}

	out := &StatusEvent{Detail: StatusDetail{
		SubmissionDetail: event.Detail,
		Status:           string(status.State),
		Message:          status.Message,
	}}
	if status.Failure != nil {
		out.Detail.ErrorType = errorType(status.Failure)
	}

	logger.Info("Load status", zap.String("status", out.Detail.Status))
	return out, nil
}

func (h *Handler) requestLogger(ctx context.Context) *zap.Logger {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return h.logger.With(zap.String("request_id", lc.AwsRequestID))
	}
	return h.logger
}

// flush failures are logged only; the step result is already decided.
func (h *Handler) flush(ctx context.Context, logger *zap.Logger) {
	for _, f := range h.flushers {
		if err := f.Flush(ctx); err != nil {
			logger.Warn("Failed to flush telemetry", zap.Error(err))
		}
	}
}

func errorType(err error) string {
	if appErr := appErrors.GetAppError(err); appErr != nil {
		return string(appErr.Type)
	}
	return string(appErrors.ErrorTypeInternal)
}
