// Package ledger records the load status of every source file in DynamoDB.
//
// Each write is an independent upsert of one item keyed by s3_uri; there is
// no cross-file transaction and concurrent writers for the same file race
// with last-write-wins.
package ledger

import (
	"context"

	"clickstream-backend/internal/domain/load"
)

// Ledger is the durable per-file job status store.
type Ledger interface {
	// MarkStatus upserts the status of sourceURI. Writing the same pair twice
	// leaves the item unchanged.
	MarkStatus(ctx context.Context, sourceURI string, status load.JobStatus) error

	// Get returns the record for sourceURI, or nil when none exists.
	Get(ctx context.Context, sourceURI string) (*load.JobRecord, error)
}
