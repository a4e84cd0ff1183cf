package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/agenthands/atlas/internal/core/model"
	"github.com/agenthands/atlas/internal/core/reconcile"
	"github.com/agenthands/atlas/internal/extract"
	"github.com/agenthands/atlas/internal/geocode"
	"github.com/agenthands/atlas/internal/store"
)

// MapStore is the persistence contract the pipeline drives.
type MapStore interface {
	Load(name string) (model.Map, error)
	Save(m model.Map) error
	Exists(name string) bool
}

// Atlas wires the extraction backends, the geocoding resolver, the
// reconciler and the map store into one pipeline.
type Atlas struct {
	Extractors map[model.Source]extract.Extractor
	Resolver   geocode.Resolver
	Reconciler *reconcile.Reconciler
	Store      MapStore
}

func NewAtlas(extractors map[model.Source]extract.Extractor, resolver geocode.Resolver, reconciler *reconcile.Reconciler, mapStore MapStore) *Atlas {
	return &Atlas{
		Extractors: extractors,
		Resolver:   resolver,
		Reconciler: reconciler,
		Store:      mapStore,
	}
}

// Session is the explicit per-user working context. It starts empty and is
// only reflected in storage on an explicit ingest/save; there is no implicit
// process-wide state.
type Session struct {
	ID          string             `json:"id"`
	MapName     string             `json:"map_name"`
	LastSummary *reconcile.Summary `json:"last_summary,omitempty"`
}

func NewSession(mapName string) *Session {
	return &Session{
		ID:      uuid.New().String(),
		MapName: mapName,
	}
}

// IngestResult summarizes one extraction-and-reconcile cycle.
type IngestResult struct {
	Extracted int               `json:"extracted"`
	Resolved  int               `json:"resolved"`
	New       int               `json:"new"`
	Merged    int               `json:"merged"`
	Failed    int               `json:"failed"`
	Map       model.Map         `json:"map"`
	Backends  map[string]string `json:"backend_errors,omitempty"`
}

// ExtractMentions runs the requested backends over the text and concatenates
// their mentions. Mentions are not deduplicated here: identity is decided
// downstream by coordinates, not by name strings. One backend failing while
// another succeeds is reported per backend, not as a hard error; every
// backend failing is.
func (a *Atlas) ExtractMentions(ctx context.Context, text string, backends []model.Source) ([]model.RawMention, map[string]string, error) {
	if len(backends) == 0 {
		backends = []model.Source{model.SourceLLM}
	}

	var mentions []model.RawMention
	backendErrs := make(map[string]string)
	succeeded := 0

	for _, b := range backends {
		extractor, ok := a.Extractors[b]
		if !ok {
			backendErrs[string(b)] = "backend not configured"
			continue
		}
		found, err := extractor.Extract(ctx, text)
		if err != nil {
			log.Printf("Extraction backend %s failed: %v", b, err)
			backendErrs[string(b)] = err.Error()
			continue
		}
		succeeded++
		mentions = append(mentions, found...)
	}

	if succeeded == 0 {
		return nil, backendErrs, &extract.ExtractionError{
			Backend: backends[0],
			Err:     fmt.Errorf("all extraction backends failed: %v", backendErrs),
		}
	}
	return mentions, backendErrs, nil
}

// Ingest runs the full pipeline for one text: extract, resolve, reconcile
// into the named map, persist. Per-mention resolution failures are counted
// and dropped; they never abort the batch. An extraction failure aborts the
// whole call before the stored map is touched.
func (a *Atlas) Ingest(ctx context.Context, session *Session, mapName, text string, backends []model.Source) (*IngestResult, error) {
	mentions, backendErrs, err := a.ExtractMentions(ctx, text, backends)
	if err != nil {
		return nil, err
	}

	resolved := make([]model.ResolvedMention, 0, len(mentions))
	for _, m := range mentions {
		rm, err := a.Resolver.Resolve(ctx, m)
		if err != nil {
			// Treat an unreachable geocoder like any other per-mention
			// failure: count it, keep going.
			log.Printf("Failed to resolve %q: %v", m.Text, err)
			rm = model.ResolvedMention{RawMention: m, Confidence: model.ConfidenceFailed}
		}
		resolved = append(resolved, rm)
	}

	current, err := a.Store.Load(mapName)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		current = model.NewMap(mapName)
	}

	updated, sum := a.Reconciler.Reconcile(current, resolved)
	if err := a.Store.Save(updated); err != nil {
		return nil, err
	}

	if session != nil {
		session.MapName = mapName
		session.LastSummary = &sum
	}

	result := &IngestResult{
		Extracted: len(mentions),
		Resolved:  sum.Resolved,
		New:       sum.New,
		Merged:    sum.Merged,
		Failed:    sum.Failed,
		Map:       updated,
	}
	if len(backendErrs) > 0 {
		result.Backends = backendErrs
	}
	return result, nil
}

// EditPlace applies a user edit (note, sentiment override) through the same
// merge path the reconciler uses, then persists.
func (a *Atlas) EditPlace(ctx context.Context, mapName, placeID string, edit reconcile.PlaceEdit) (model.Map, error) {
	current, err := a.Store.Load(mapName)
	if err != nil {
		return model.Map{}, err
	}

	updated, err := reconcile.UpdatePlace(current, placeID, edit)
	if err != nil {
		return model.Map{}, err
	}

	if err := a.Store.Save(updated); err != nil {
		return model.Map{}, err
	}
	return updated, nil
}

// DeletePlace removes a place on explicit user request and persists.
func (a *Atlas) DeletePlace(ctx context.Context, mapName, placeID string) (model.Map, error) {
	current, err := a.Store.Load(mapName)
	if err != nil {
		return model.Map{}, err
	}

	updated, err := reconcile.RemovePlace(current, placeID)
	if err != nil {
		return model.Map{}, err
	}

	if err := a.Store.Save(updated); err != nil {
		return model.Map{}, err
	}
	return updated, nil
}
