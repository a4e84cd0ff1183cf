package reconcile

import (
	"fmt"
	"time"

	"github.com/agenthands/atlas/internal/core/model"
)

// Tagger classifies a resolved mention into the tag taxonomy.
type Tagger interface {
	Tag(m model.ResolvedMention) string
}

// Summary reports what a reconciliation pass did with a mention batch.
type Summary struct {
	Resolved int `json:"resolved"`
	New      int `json:"new"`
	Merged   int `json:"merged"`
	Failed   int `json:"failed"`
}

type Reconciler struct {
	Tagger Tagger
}

func NewReconciler(t Tagger) *Reconciler {
	return &Reconciler{Tagger: t}
}

// Reconcile merges resolved mentions into a map and returns the updated map
// value. The input map is never mutated; callers persist the result
// explicitly. Mentions that failed resolution are dropped and counted.
//
// Merge rules for an existing place (matched by coordinate-derived id):
//   - the mention context is appended to the audit trail, duplicates allowed
//   - a user-set note is never touched
//   - sentiment is only filled in while it is still unknown; a prior known
//     sentiment wins over any later extraction
func (r *Reconciler) Reconcile(m model.Map, mentions []model.ResolvedMention) (model.Map, Summary) {
	out := m.Clone()
	var sum Summary

	for _, mention := range mentions {
		if mention.Confidence == model.ConfidenceFailed {
			sum.Failed++
			continue
		}
		sum.Resolved++

		id := model.PlaceID(mention.Lat, mention.Lng)
		if i := out.FindPlace(id); i >= 0 {
			p := &out.Places[i]
			p.SourceContexts = append(p.SourceContexts, mention.Context)
			if p.Sentiment == model.SentimentUnknown {
				p.Sentiment = mention.Sentiment
			}
			sum.Merged++
			continue
		}

		out.Places = append(out.Places, model.Place{
			ID:             id,
			Name:           mention.Text,
			Lat:            mention.Lat,
			Lng:            mention.Lng,
			Tag:            r.Tagger.Tag(mention),
			Sentiment:      mention.Sentiment,
			Note:           "",
			SourceContexts: []string{mention.Context},
		})
		sum.New++
	}

	out.UpdatedAt = time.Now().UTC()
	return out, sum
}

// PlaceEdit carries an explicit user edit. Nil fields are left untouched.
// Unlike extraction-sourced merges, a user edit may override a known
// sentiment and set the note.
type PlaceEdit struct {
	Note      *string
	Sentiment *model.Sentiment
}

// UpdatePlace applies a user edit to one place, returning the updated map
// value. UI edits go through here rather than mutating the stored map.
func UpdatePlace(m model.Map, id string, edit PlaceEdit) (model.Map, error) {
	i := m.FindPlace(id)
	if i < 0 {
		return model.Map{}, fmt.Errorf("no place with id %s in map %q", id, m.Name)
	}

	out := m.Clone()
	p := &out.Places[i]
	if edit.Note != nil {
		p.Note = *edit.Note
	}
	if edit.Sentiment != nil {
		p.Sentiment = *edit.Sentiment
	}
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// RemovePlace drops a place from the map. Reconciliation never removes
// places; this is the explicit user deletion path.
func RemovePlace(m model.Map, id string) (model.Map, error) {
	i := m.FindPlace(id)
	if i < 0 {
		return model.Map{}, fmt.Errorf("no place with id %s in map %q", id, m.Name)
	}

	out := m.Clone()
	out.Places = append(out.Places[:i], out.Places[i+1:]...)
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}
