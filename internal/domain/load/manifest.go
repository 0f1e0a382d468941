package load

// ManifestEntry references one source object. Meta is passed through untouched.
type ManifestEntry struct {
	URL  string                 `json:"url" validate:"required"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// ContentLength returns meta.content_length, or 0 when absent.
func (e ManifestEntry) ContentLength() int64 {
	switch v := e.Meta["content_length"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Manifest is a batch of files loaded by a single COPY statement. The manifest
// document itself has already been written to ManifestURI.
type Manifest struct {
	ManifestURI   string          `validate:"required"`
	Entries       []ManifestEntry `validate:"required,min=1,dive"`
	TenantID      string          `validate:"required"`
	CorrelationID string
}

// SourceURIs lists entry URLs in manifest order.
func (m Manifest) SourceURIs() []string {
	uris := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		uris = append(uris, entry.URL)
	}
	return uris
}

// LoadSubmission correlates a submitted statement with its manifest so the
// polling step can find it again.
type LoadSubmission struct {
	QueryID      string
	TenantSchema string
	Manifest     Manifest
}

// LoadState is the coarse outcome of a submitted load.
type LoadState string

const (
	LoadInProgress LoadState = "IN_PROGRESS"
	LoadSucceeded  LoadState = "SUCCEEDED"
	LoadFailed     LoadState = "FAILED"
)

// LoadStatus is the result of one poll of a submitted load.
type LoadStatus struct {
	State      LoadState
	QueryID    string
	Message    string
	Submission LoadSubmission

	// Failure classifies a failed load. Nil unless State is LoadFailed.
	Failure error
}
