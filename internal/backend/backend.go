// Package backend implements the extraction backends that turn a PDF
// document into a raw field payload. The orchestrator in pipeline picks
// which backend's output survives.
package backend

import (
	"context"
	"fmt"

	"github.com/ledgerline/billparse/internal/model"
)

// Backend extracts raw bill fields from PDF bytes.
type Backend interface {
	// Name identifies the backend in logs and stored records.
	Name() string
	Extract(ctx context.Context, pdf []byte) (*model.RawExtraction, error)
}

// ExtractionError is a backend failure the orchestrator may recover
// from by falling back to another backend.
type ExtractionError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s extraction: %s", e.Backend, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ConfigurationError means a backend was constructed without a
// credential or setting it cannot run without. Credentials are never
// defaulted; the caller must supply them explicitly.
type ConfigurationError struct {
	Backend string
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s backend: missing %s", e.Backend, e.Missing)
}
