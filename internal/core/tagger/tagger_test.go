package tagger

import (
	"testing"

	"github.com/agenthands/atlas/internal/config"
	"github.com/agenthands/atlas/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(context, placeType string) model.ResolvedMention {
	return model.ResolvedMention{
		RawMention: model.RawMention{Text: "somewhere", Context: context},
		PlaceType:  placeType,
	}
}

func TestTagFirstMatchWins(t *testing.T) {
	tg, err := New(DefaultRules())
	require.NoError(t, err)

	// "dinner at the hotel restaurant" matches the restaurant rule before
	// the lodging rule because of table order.
	got := tg.Tag(resolved("We had dinner at the hotel restaurant.", ""))
	assert.Equal(t, "restaurant", got)
}

func TestTagUsesPlaceTypeHint(t *testing.T) {
	tg, err := New(DefaultRules())
	require.NoError(t, err)

	got := tg.Tag(resolved("We walked past it on the way home.", "tourist_attraction"))
	assert.Equal(t, "landmark", got)
}

func TestTagFallsBackToOther(t *testing.T) {
	tg, err := New(DefaultRules())
	require.NoError(t, err)

	got := tg.Tag(resolved("It was a place.", ""))
	assert.Equal(t, TagOther, got)
}

func TestTagDeterministic(t *testing.T) {
	tg, err := New(DefaultRules())
	require.NoError(t, err)

	m := resolved("A lovely walk through the park near the museum.", "")
	first := tg.Tag(m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, tg.Tag(m))
	}
}

func TestNewRejectsUnknownTag(t *testing.T) {
	_, err := New([]Rule{{Keywords: []string{"pier"}, Tag: "waterfront"}})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	tg, err := FromConfig(config.TaggerConfig{Rules: []config.TaggerRule{
		{Keywords: []string{"ramen"}, Tag: "restaurant"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "restaurant", tg.Tag(resolved("Best ramen in town.", "")))
	// The configured table replaces the default one entirely.
	assert.Equal(t, TagOther, tg.Tag(resolved("A nice park.", "")))
}
