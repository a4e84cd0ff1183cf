package extract

import (
	"context"
	"fmt"

	"github.com/agenthands/atlas/internal/core/model"
)

// Extractor is one extraction backend. Backends normalize their output to
// RawMentions and surface their own failures; they never decide fallback
// policy. When several backends run, the caller concatenates the results —
// dedup happens downstream at the Place level, by coordinates, not strings.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.RawMention, error)
	Backend() model.Source
}

// ExtractionError wraps a backend failure: service unreachable or output
// that cannot be normalized. Recoverable — the caller may retry or switch
// backends.
type ExtractionError struct {
	Backend model.Source
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Backend, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
