package core

import (
	"context"
	"errors"

	"github.com/agenthands/atlas/internal/core/model"
	"github.com/agenthands/atlas/internal/extract"
)

type MockExtractor struct {
	Source   model.Source
	Mentions []model.RawMention
	Err      error
}

func (m *MockExtractor) Backend() model.Source { return m.Source }

func (m *MockExtractor) Extract(ctx context.Context, text string) ([]model.RawMention, error) {
	if m.Err != nil {
		return nil, &extract.ExtractionError{Backend: m.Source, Err: m.Err}
	}
	return m.Mentions, nil
}

// MockResolver resolves mentions from a fixed coordinate table; names not in
// the table fail resolution.
type MockResolver struct {
	Coords map[string][2]float64
	Err    error
}

func (m *MockResolver) Resolve(ctx context.Context, raw model.RawMention) (model.ResolvedMention, error) {
	out := model.ResolvedMention{RawMention: raw, Confidence: model.ConfidenceFailed}
	if m.Err != nil {
		return out, m.Err
	}
	coords, ok := m.Coords[raw.Text]
	if !ok {
		return out, nil
	}
	out.Lat = coords[0]
	out.Lng = coords[1]
	out.Confidence = model.ConfidenceExact
	return out, nil
}

var errBackendDown = errors.New("backend unreachable")
