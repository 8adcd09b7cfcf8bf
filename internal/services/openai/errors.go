package openai

import "fmt"

// CapabilityError reports a model/operation mismatch. It is always raised
// before any upstream call is made.
type CapabilityError struct {
	Model     string
	Operation string
	Reason    string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// UpstreamError reports a failed provider call after any allowed retry.
// Status is 0 when the request never reached the provider.
type UpstreamError struct {
	Status  int
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream request failed: %s", e.Message)
}

// Transient reports whether the failure may be retried: network errors and
// provider 5xx only. 4xx responses (bad request, content policy) are final.
func (e *UpstreamError) Transient() bool {
	return e.Status == 0 || e.Status >= 500
}
