package load

// JobStatus is the value stored in the ledger's job_status attribute.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "JOB_PROCESSING"
	JobStatusSucceeded  JobStatus = "JOB_SUCCEEDED"
	JobStatusFailed     JobStatus = "JOB_FAILED"
)

// IsValid reports whether s is one of the known statuses.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusProcessing, JobStatusSucceeded, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s ends a load attempt.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// CanTransitionTo reports whether a record in status s may be moved to next.
// PROCESSING is always reachable since every load attempt starts there;
// a terminal status only follows PROCESSING or itself.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if next == JobStatusProcessing {
		return true
	}
	if !next.IsTerminal() {
		return false
	}
	return s == JobStatusProcessing || s == next
}

// JobRecord is one ledger row, keyed by the source object URI.
type JobRecord struct {
	SourceURI string    `dynamodbav:"s3_uri"`
	Status    JobStatus `dynamodbav:"job_status"`
}
