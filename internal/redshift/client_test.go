package redshift

import (
	"context"
	"errors"
	"testing"

	"clickstream-backend/internal/domain/load"
	"clickstream-backend/internal/mocks"
	"clickstream-backend/internal/observability"
	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(api DataAPI) *Client {
	return NewClient(api, zap.NewNop(), observability.NewCollector("test"), observability.NewNoopTracerProvider("test").Tracer())
}

func TestSubmit_Serverless(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)

	var captured *redshiftdata.ExecuteStatementInput
	api.On("ExecuteStatement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*redshiftdata.ExecuteStatementInput)
		}).
		Return(&redshiftdata.ExecuteStatementOutput{Id: aws.String("q-123")}, nil)

	id, err := client.Submit(context.Background(), Statement{
		SQL:        "COPY a.b FROM 'x';",
		Database:   "dev",
		Connection: load.Serverless{WorkgroupName: "wg1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "q-123", id)

	require.NotNil(t, captured)
	assert.Equal(t, "COPY a.b FROM 'x';", aws.ToString(captured.Sql))
	assert.Equal(t, "dev", aws.ToString(captured.Database))
	assert.Equal(t, "wg1", aws.ToString(captured.WorkgroupName))
	assert.Nil(t, captured.ClusterIdentifier)
	assert.Nil(t, captured.DbUser)
	assert.Nil(t, captured.ClientToken)
	api.AssertNumberOfCalls(t, "ExecuteStatement", 1)
}

func TestSubmit_Provisioned(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)

	var captured *redshiftdata.ExecuteStatementInput
	api.On("ExecuteStatement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*redshiftdata.ExecuteStatementInput)
		}).
		Return(&redshiftdata.ExecuteStatementOutput{Id: aws.String("q-456")}, nil)

	id, err := client.Submit(context.Background(), Statement{
		SQL:         "COPY a.b FROM 'x';",
		Database:    "dev",
		Connection:  load.Provisioned{DBUser: "bi_user", ClusterIdentifier: "cluster1"},
		Name:        "load",
		ClientToken: "token-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "q-456", id)

	assert.Equal(t, "bi_user", aws.ToString(captured.DbUser))
	assert.Equal(t, "cluster1", aws.ToString(captured.ClusterIdentifier))
	assert.Nil(t, captured.WorkgroupName)
	assert.Equal(t, "load", aws.ToString(captured.StatementName))
	assert.Equal(t, "token-1", aws.ToString(captured.ClientToken))
}

func TestSubmit_RequiresConnection(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)

	_, err := client.Submit(context.Background(), Statement{SQL: "SELECT 1", Database: "dev"})
	assert.True(t, appErrors.IsConfigurationMissing(err))
	api.AssertNotCalled(t, "ExecuteStatement", mock.Anything, mock.Anything)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"validation", &smithy.GenericAPIError{Code: "ValidationException", Message: "bad sql"}, "ValidationException"},
		{"active statements", &smithy.GenericAPIError{Code: "ActiveStatementsExceededException"}, "ActiveStatementsExceededException"},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, "AccessDeniedException"},
		{"other api error", &smithy.GenericAPIError{Code: "ThrottlingException"}, "ThrottlingException"},
		{"transport", errors.New("connection reset"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mocks.MockDataAPI)
			client := newTestClient(api)
			api.On("ExecuteStatement", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := client.Submit(context.Background(), Statement{
				SQL:        "SELECT 1",
				Database:   "dev",
				Connection: load.Serverless{WorkgroupName: "wg1"},
			})
			require.Error(t, err)
			assert.True(t, appErrors.IsSubmissionRejected(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantCode, appErrors.GetAppError(err).Code)
		})
	}
}

func TestSubmit_EmptyQueryID(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)
	api.On("ExecuteStatement", mock.Anything, mock.Anything).Return(&redshiftdata.ExecuteStatementOutput{}, nil)

	_, err := client.Submit(context.Background(), Statement{
		SQL:        "SELECT 1",
		Database:   "dev",
		Connection: load.Serverless{WorkgroupName: "wg1"},
	})
	assert.True(t, appErrors.IsSubmissionRejected(err))
}

func TestDescribe(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)

	api.On("DescribeStatement", mock.Anything, mock.MatchedBy(func(in *redshiftdata.DescribeStatementInput) bool {
		return aws.ToString(in.Id) == "q-1"
	})).Return(&redshiftdata.DescribeStatementOutput{
		Id:     aws.String("q-1"),
		Status: types.StatusStringFailed,
		Error:  aws.String(`ERROR: schema "app1" does not exist`),
	}, nil)

	status, err := client.Describe(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusStringFailed, status.Status)
	assert.True(t, status.IsTerminal())
	assert.True(t, IsSchemaFailure(status.Error))
}

func TestDescribe_APIErrorIsInternal(t *testing.T) {
	api := new(mocks.MockDataAPI)
	client := newTestClient(api)

	cause := errors.New("connection reset")
	api.On("DescribeStatement", mock.Anything, mock.Anything).
		Return(nil, cause)

	status, err := client.Describe(context.Background(), "q-2")
	require.Error(t, err)
	assert.Nil(t, status)
	assert.True(t, appErrors.IsType(err, appErrors.ErrorTypeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "q-2")
}

func TestStatementStatus_IsTerminal(t *testing.T) {
	for status, want := range map[types.StatusString]bool{
		types.StatusStringSubmitted: false,
		types.StatusStringPicked:    false,
		types.StatusStringStarted:   false,
		types.StatusStringFinished:  true,
		types.StatusStringFailed:    true,
		types.StatusStringAborted:   true,
	} {
		assert.Equal(t, want, StatementStatus{Status: status}.IsTerminal(), string(status))
	}
}

func TestIsSchemaFailure(t *testing.T) {
	assert.True(t, IsSchemaFailure(`ERROR: schema "app1_test_project" does not exist`))
	assert.True(t, IsSchemaFailure("Invalid schema name"))
	assert.False(t, IsSchemaFailure("ERROR: permission denied for relation ods_events"))
}

func TestAssumeRoleConfig(t *testing.T) {
	base := aws.Config{Region: "us-east-1"}
	stsClient := sts.NewFromConfig(base)

	unchanged := AssumeRoleConfig(base, stsClient, "")
	assert.Nil(t, unchanged.Credentials)

	assumed := AssumeRoleConfig(base, stsClient, "arn:aws:iam::123456789012:role/data-api")
	require.NotNil(t, assumed.Credentials)
	_, ok := assumed.Credentials.(*aws.CredentialsCache)
	assert.True(t, ok)
	assert.Equal(t, "us-east-1", assumed.Region)
	assert.Nil(t, base.Credentials)
}
