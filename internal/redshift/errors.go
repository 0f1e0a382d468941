package redshift

import (
	"errors"
	"fmt"
	"regexp"

	appErrors "clickstream-backend/pkg/errors"

	"github.com/aws/smithy-go"
)

// Error codes the Data API returns for statements it refuses outright.
const (
	codeValidation         = "ValidationException"
	codeExecuteStatement   = "ExecuteStatementException"
	codeActiveStatements   = "ActiveStatementsExceededException"
	codeAccessDenied       = "AccessDeniedException"
	codeInternalServer     = "InternalServerException"
	codeUnrecognizedClient = "UnrecognizedClientException"
)

var schemaFailure = regexp.MustCompile(`(?i)schema\s+"?([A-Za-z0-9_]+)"?\s+does not exist|invalid schema name`)

// classifySubmitError turns an ExecuteStatement failure into a
// SubmissionRejected error that keeps the SDK error as its cause.
func classifySubmitError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return appErrors.NewSubmissionRejectedError("statement submission failed", err)
	}

	var message string
	switch apiErr.ErrorCode() {
	case codeValidation:
		message = "statement failed validation"
	case codeExecuteStatement:
		message = "statement could not be executed"
	case codeActiveStatements:
		message = "too many active statements"
	case codeAccessDenied, codeUnrecognizedClient:
		message = "not authorized to submit statement"
	case codeInternalServer:
		message = "execution service internal error"
	default:
		message = fmt.Sprintf("statement submission failed: %s", apiErr.ErrorCode())
	}

	return appErrors.NewSubmissionRejectedError(message, err).WithCode(apiErr.ErrorCode())
}

// IsSchemaFailure reports whether a statement error message says the target
// schema is missing or malformed.
func IsSchemaFailure(message string) bool {
	return schemaFailure.MatchString(message)
}
