package ledger

import (
	"context"
	"errors"
	"fmt"

	"clickstream-backend/internal/domain/load"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	attrSourceURI = "s3_uri"
	attrJobStatus = "job_status"
)

// DynamoDBAPI is the subset of the DynamoDB client the ledger uses.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

var (
	_ DynamoDBAPI = (*dynamodb.Client)(nil)
	_ Ledger      = (*DynamoDBLedger)(nil)
)

// DynamoDBLedger stores job records in a table whose partition key is s3_uri.
type DynamoDBLedger struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewDynamoDBLedger creates a ledger over tableName.
func NewDynamoDBLedger(client DynamoDBAPI, tableName string, logger *zap.Logger) *DynamoDBLedger {
	return &DynamoDBLedger{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type jobKey struct {
	SourceURI string `dynamodbav:"s3_uri"`
}

func (l *DynamoDBLedger) key(sourceURI string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(jobKey{SourceURI: sourceURI})
}

// MarkStatus sets job_status of sourceURI. PROCESSING is written
// unconditionally because every load attempt, including a retry of a finished
// file, starts there. Terminal statuses only replace PROCESSING or the same
// terminal status; anything else is an invalid transition.
//
// Storage errors are returned as the SDK produced them.
func (l *DynamoDBLedger) MarkStatus(ctx context.Context, sourceURI string, status load.JobStatus) error {
	if sourceURI == "" {
		return appErrors.NewValidationError("source URI is required")
	}
	if !status.IsValid() {
		return appErrors.NewValidationError(fmt.Sprintf("unknown job status '%s'", status))
	}

	key, err := l.key(sourceURI)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	builder := expression.NewBuilder().WithUpdate(
		expression.Set(expression.Name(attrJobStatus), expression.Value(string(status))),
	)
	if status.IsTerminal() {
		builder = builder.WithCondition(
			expression.Name(attrJobStatus).In(
				expression.Value(string(load.JobStatusProcessing)),
				expression.Value(string(status)),
			),
		)
	}

	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	l.logger.Debug("Updating job status",
		zap.String("s3_uri", sourceURI),
		zap.String("job_status", string(status)),
	)

	_, err = l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(l.tableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return appErrors.NewInvalidTransitionError(sourceURI, string(status), err)
		}
		l.logger.Error("Failed to update job status",
			zap.String("s3_uri", sourceURI),
			zap.String("job_status", string(status)),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Get reads the record of sourceURI with a strongly consistent read.
func (l *DynamoDBLedger) Get(ctx context.Context, sourceURI string) (*load.JobRecord, error) {
	key, err := l.key(sourceURI)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	out, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(l.tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var record load.JobRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}
	return &record, nil
}
