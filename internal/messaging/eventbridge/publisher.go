// Package eventbridge publishes load outcome events to an EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clickstream-backend/internal/domain/load"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// Detail types of published events.
const (
	DetailTypeLoadSucceeded = "ManifestLoadSucceeded"
	DetailTypeLoadFailed    = "ManifestLoadFailed"
)

// API is the subset of the EventBridge client used by the publisher.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var _ API = (*eventbridge.Client)(nil)

// LoadOutcome is the event detail of a finished load.
type LoadOutcome struct {
	QueryID       string    `json:"queryId"`
	CorrelationID string    `json:"executionId,omitempty"`
	TenantSchema  string    `json:"appId"`
	ManifestURI   string    `json:"manifestFileName"`
	State         string    `json:"state"`
	Message       string    `json:"message,omitempty"`
	SourceURIs    []string  `json:"files"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher sends load outcomes to a bus. A publisher without a bus name
// drops every event.
type Publisher struct {
	client       API
	eventBusName string
	source       string
	logger       *zap.Logger
	now          func() time.Time
}

// NewPublisher creates a publisher for eventBusName.
func NewPublisher(client API, eventBusName, source string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       source,
		logger:       logger,
		now:          time.Now,
	}
}

// Enabled reports whether events are sent anywhere.
func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil && p.eventBusName != ""
}

// PublishLoadOutcome sends one event for a terminal load status. In-progress
// statuses are ignored.
func (p *Publisher) PublishLoadOutcome(ctx context.Context, status load.LoadStatus) error {
	var detailType string
	switch status.State {
	case load.LoadSucceeded:
		detailType = DetailTypeLoadSucceeded
	case load.LoadFailed:
		detailType = DetailTypeLoadFailed
	default:
		return nil
	}

	if !p.Enabled() {
		return nil
	}

	now := p.now().UTC()
	detail, err := json.Marshal(LoadOutcome{
		QueryID:       status.QueryID,
		CorrelationID: status.Submission.Manifest.CorrelationID,
		TenantSchema:  status.Submission.TenantSchema,
		ManifestURI:   status.Submission.Manifest.ManifestURI,
		State:         string(status.State),
		Message:       status.Message,
		SourceURIs:    status.Submission.Manifest.SourceURIs(),
		Timestamp:     now,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal load outcome: %w", err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(p.source),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(detail)),
				Time:         aws.Time(now),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Failed to publish event",
					zap.String("detailType", detailType),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Load outcome published",
		zap.String("detailType", detailType),
		zap.String("query_id", status.QueryID),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}
