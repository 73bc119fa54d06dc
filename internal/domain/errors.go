package domain

import "fmt"

// DetectionErrorKind classifies why URL classification failed. Each kind maps
// to a distinct HTTP status at the transport boundary.
type DetectionErrorKind string

const (
	DetectTimeout          DetectionErrorKind = "timeout"
	DetectUnreachable      DetectionErrorKind = "unreachable"
	DetectUpstreamRejected DetectionErrorKind = "upstream_rejected"
	DetectUnknown          DetectionErrorKind = "unknown"
)

// DetectionError is returned when the download collaborator cannot classify
// a URL. No task exists yet when it occurs.
type DetectionError struct {
	Kind DetectionErrorKind
	Err  error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detect: %s: %v", e.Kind, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

func NewDetectionError(kind DetectionErrorKind, err error) *DetectionError {
	return &DetectionError{Kind: kind, Err: err}
}
