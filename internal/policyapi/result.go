package policyapi

import (
	"fmt"
	"net/http"

	"github.com/DeafMist/policy-depot/internal/models"
)

// Kind classifies a lookup outcome for presentation.
type Kind int

const (
	// KindError covers transport faults, non-404 HTTP errors and empty successes.
	KindError Kind = iota
	// KindDocument is a 200 response with a non-empty payload.
	KindDocument
	// KindNotFound is a 404 response.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Failure is the typed failure half of a Result.
type Failure struct {
	StatusCode int
	Detail     string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("policy lookup failed (status %d): %s", f.StatusCode, f.Detail)
}

// Result is the outcome of a single lookup. Payload is never nil: on failure
// it holds {"detail": message}.
type Result struct {
	StatusCode int
	Payload    map[string]any
	Failure    *Failure
}

func failed(status int, detail string) Result {
	return Result{
		StatusCode: status,
		Payload:    map[string]any{"detail": detail},
		Failure:    &Failure{StatusCode: status, Detail: detail},
	}
}

// Kind reports how the result should be presented.
func (r Result) Kind() Kind {
	switch {
	case r.Failure == nil && r.StatusCode == http.StatusOK && len(r.Payload) > 0:
		return KindDocument
	case r.StatusCode == http.StatusNotFound:
		return KindNotFound
	default:
		return KindError
	}
}

// Detail returns the captured failure message, or "" on success.
func (r Result) Detail() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Detail
}

// Document maps the payload onto a PolicyDocument. Only meaningful when
// Kind() is KindDocument.
func (r Result) Document() models.PolicyDocument {
	return models.DocumentFromPayload(r.Payload)
}
