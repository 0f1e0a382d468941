// Package redshift submits SQL statements through the Redshift Data API.
package redshift

import (
	"context"
	"time"

	"clickstream-backend/internal/domain/load"
	"clickstream-backend/internal/observability"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DataAPI is the subset of the Redshift Data API client used here.
type DataAPI interface {
	ExecuteStatement(ctx context.Context, params *redshiftdata.ExecuteStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, params *redshiftdata.DescribeStatementInput, optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
}

var _ DataAPI = (*redshiftdata.Client)(nil)

// Statement is one SQL text addressed to a database over a connection.
type Statement struct {
	SQL        string
	Database   string
	Connection load.Connection

	// Name labels the statement in the Redshift console. Optional.
	Name string

	// ClientToken makes resubmission of the same statement return the
	// first query id. Optional.
	ClientToken string
}

// StatementStatus is the state of a submitted statement as reported by the Data API.
type StatementStatus struct {
	QueryID string
	Status  types.StatusString
	Error   string
}

// IsTerminal reports whether the statement will not change state again.
func (s StatementStatus) IsTerminal() bool {
	switch s.Status {
	case types.StatusStringFinished, types.StatusStringFailed, types.StatusStringAborted:
		return true
	}
	return false
}

// Client submits statements and reports their status. Submit never waits for
// the statement to complete.
type Client struct {
	api       DataAPI
	logger    *zap.Logger
	collector *observability.Collector
	tracer    trace.Tracer
}

// NewClient creates a Data API client. collector may be nil.
func NewClient(api DataAPI, logger *zap.Logger, collector *observability.Collector, tracer trace.Tracer) *Client {
	return &Client{
		api:       api,
		logger:    logger,
		collector: collector,
		tracer:    tracer,
	}
}

// Submit sends stmt in a single ExecuteStatement call and returns the query id.
func (c *Client) Submit(ctx context.Context, stmt Statement) (string, error) {
	if stmt.SQL == "" || stmt.Database == "" {
		return "", appErrors.NewValidationError("statement requires SQL and a database")
	}

	input := &redshiftdata.ExecuteStatementInput{
		Sql:      aws.String(stmt.SQL),
		Database: aws.String(stmt.Database),
	}
	if stmt.Name != "" {
		input.StatementName = aws.String(stmt.Name)
	}
	if stmt.ClientToken != "" {
		input.ClientToken = aws.String(stmt.ClientToken)
	}

	switch conn := stmt.Connection.(type) {
	case load.Serverless:
		input.WorkgroupName = aws.String(conn.WorkgroupName)
	case load.Provisioned:
		input.DbUser = aws.String(conn.DBUser)
		input.ClusterIdentifier = aws.String(conn.ClusterIdentifier)
	default:
		return "", appErrors.NewConfigurationMissingError("REDSHIFT_MODE")
	}
	mode := string(stmt.Connection.Mode())

	ctx, span := c.tracer.Start(ctx, "redshift.ExecuteStatement",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redshift"),
			attribute.String("db.name", stmt.Database),
			attribute.String("redshift.mode", mode),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := c.api.ExecuteStatement(ctx, input)
	c.observe(mode, start, err)

	if err != nil {
		err = classifySubmitError(err)
		observability.RecordError(span, err)
		c.logger.Error("Statement submission rejected",
			zap.String("mode", mode),
			zap.String("database", stmt.Database),
			zap.Error(err),
		)
		return "", err
	}

	queryID := aws.ToString(out.Id)
	if queryID == "" {
		err := appErrors.NewSubmissionRejectedError("execution service returned no query id", nil)
		observability.RecordError(span, err)
		return "", err
	}
	span.SetAttributes(attribute.String("redshift.query_id", queryID))

	c.logger.Info("Statement submitted",
		zap.String("query_id", queryID),
		zap.String("mode", mode),
	)
	return queryID, nil
}

// Describe reports the current state of queryID in a single DescribeStatement call.
func (c *Client) Describe(ctx context.Context, queryID string) (*StatementStatus, error) {
	if queryID == "" {
		return nil, appErrors.NewValidationError("query id is required")
	}

	ctx, span := c.tracer.Start(ctx, "redshift.DescribeStatement",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("redshift.query_id", queryID)),
	)
	defer span.End()

	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{
		Id: aws.String(queryID),
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, appErrors.Wrapf(err, "failed to describe statement %s", queryID)
	}

	status := &StatementStatus{
		QueryID: queryID,
		Status:  out.Status,
		Error:   aws.ToString(out.Error),
	}
	span.SetAttributes(attribute.String("redshift.status", string(status.Status)))
	return status, nil
}

func (c *Client) observe(mode string, start time.Time, err error) {
	if c.collector == nil {
		return
	}
	c.collector.SubmissionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	c.collector.Submissions.WithLabelValues(mode, observability.Outcome(err)).Inc()
}
