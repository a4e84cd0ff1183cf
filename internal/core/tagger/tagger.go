package tagger

import (
	"fmt"
	"strings"

	"github.com/agenthands/atlas/internal/config"
	"github.com/agenthands/atlas/internal/core/model"
)

// TagOther is the fallback when no rule matches.
const TagOther = "other"

// Taxonomy is the fixed set of category tags a Place may carry.
var Taxonomy = []string{
	"restaurant",
	"cafe",
	"bar",
	"landmark",
	"lodging",
	"transit",
	"shopping",
	"nature",
	"culture",
	TagOther,
}

// Rule maps keyword signals to a taxonomy tag. Rules are evaluated in order,
// first match wins.
type Rule struct {
	Keywords []string
	Tag      string
}

type Tagger struct {
	rules []Rule
}

// New builds a tagger from an ordered rule table. Every rule tag must belong
// to the taxonomy.
func New(rules []Rule) (*Tagger, error) {
	valid := make(map[string]bool, len(Taxonomy))
	for _, t := range Taxonomy {
		valid[t] = true
	}
	for i, r := range rules {
		if !valid[r.Tag] {
			return nil, fmt.Errorf("rule %d: tag %q is not in the taxonomy", i, r.Tag)
		}
	}
	return &Tagger{rules: rules}, nil
}

// FromConfig builds a tagger from the configured rule table, falling back to
// the default table when none is configured.
func FromConfig(cfg config.TaggerConfig) (*Tagger, error) {
	if len(cfg.Rules) == 0 {
		return New(DefaultRules())
	}
	rules := make([]Rule, len(cfg.Rules))
	for i, r := range cfg.Rules {
		rules[i] = Rule{Keywords: r.Keywords, Tag: r.Tag}
	}
	return New(rules)
}

// Tag assigns a taxonomy tag to a resolved mention. The geocoder's place-type
// hint is checked before the extraction context. Deterministic: no external
// calls, no randomness.
func (t *Tagger) Tag(m model.ResolvedMention) string {
	hint := strings.ToLower(m.PlaceType)
	context := strings.ToLower(m.Context)

	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if hint != "" && strings.Contains(hint, kw) {
				return r.Tag
			}
			if context != "" && strings.Contains(context, kw) {
				return r.Tag
			}
		}
	}
	return TagOther
}

// DefaultRules is the built-in rule table, derived from the tag vocabulary
// the extraction prompt asks for plus common Google place types.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"restaurant", "dinner", "lunch", "eat", "food", "meal"}, Tag: "restaurant"},
		{Keywords: []string{"cafe", "coffee", "bakery", "brunch", "breakfast"}, Tag: "cafe"},
		{Keywords: []string{"bar", "pub", "nightlife", "club", "drinks", "brewery"}, Tag: "bar"},
		{Keywords: []string{"hotel", "hostel", "lodging", "accommodation", "stayed", "airbnb", "guest house"}, Tag: "lodging"},
		{Keywords: []string{"airport", "station", "train", "bus", "metro", "subway", "ferry", "transit"}, Tag: "transit"},
		{Keywords: []string{"shop", "market", "mall", "store", "boutique"}, Tag: "shopping"},
		{Keywords: []string{"park", "beach", "mountain", "lake", "trail", "natural", "garden", "forest"}, Tag: "nature"},
		{Keywords: []string{"museum", "gallery", "theater", "theatre", "concert", "cathedral", "church", "temple", "cultural"}, Tag: "culture"},
		{Keywords: []string{"landmark", "monument", "tower", "tourist_attraction", "attraction", "viewpoint", "point_of_interest"}, Tag: "landmark"},
	}
}
