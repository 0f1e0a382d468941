package workflow

import "clickstream-backend/internal/domain/load"

// JobList is the set of source files of one manifest.
type JobList struct {
	Entries []load.ManifestEntry `json:"entries"`
}

// LoadManifestEvent is the input of the load step.
type LoadManifestEvent struct {
	Detail LoadManifestDetail `json:"detail"`
}

// LoadManifestDetail carries the manifest written by the preceding step.
type LoadManifestDetail struct {
	ExecutionID      string  `json:"execution_id"`
	AppID            string  `json:"appId"`
	JobList          JobList `json:"jobList"`
	ManifestFileName string  `json:"manifestFileName"`
}

// SubmissionEvent is the output of the load step and the input of the status step.
type SubmissionEvent struct {
	Detail SubmissionDetail `json:"detail"`
}

// SubmissionDetail identifies a submitted load. AppID holds the resolved schema.
type SubmissionDetail struct {
	ID               string  `json:"id"`
	AppID            string  `json:"appId"`
	ManifestFileName string  `json:"manifestFileName"`
	JobList          JobList `json:"jobList"`
	ExecutionID      string  `json:"execution_id,omitempty"`
}

// StatusEvent is the output of the status step.
type StatusEvent struct {
	Detail StatusDetail `json:"detail"`
}

// StatusDetail is a SubmissionDetail with the polled load state.
type StatusDetail struct {
	SubmissionDetail
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
}

func (d LoadManifestDetail) manifest() load.Manifest {
	return load.Manifest{
		ManifestURI:   d.ManifestFileName,
		Entries:       d.JobList.Entries,
		TenantID:      d.AppID,
		CorrelationID: d.ExecutionID,
	}
}

func newSubmissionDetail(s *load.LoadSubmission) SubmissionDetail {
	return SubmissionDetail{
		ID:               s.QueryID,
		AppID:            s.TenantSchema,
		ManifestFileName: s.Manifest.ManifestURI,
		JobList:          JobList{Entries: s.Manifest.Entries},
		ExecutionID:      s.Manifest.CorrelationID,
	}
}

// submission rebuilds the load submission. TenantID is the resolved schema
// since the raw app id is not carried between steps.
func (d SubmissionDetail) submission() load.LoadSubmission {
	return load.LoadSubmission{
		QueryID:      d.ID,
		TenantSchema: d.AppID,
		Manifest: load.Manifest{
			ManifestURI:   d.ManifestFileName,
			Entries:       d.JobList.Entries,
			TenantID:      d.AppID,
			CorrelationID: d.ExecutionID,
		},
	}
}
