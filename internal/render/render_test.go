package render

import (
	"strings"
	"testing"

	"github.com/agenthands/atlas/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	m := model.NewMap("paris")
	m.Places = []model.Place{
		{ID: "a", Name: "Eiffel Tower", Lat: 48.8584, Lng: 2.2945, Tag: "landmark", Sentiment: model.SentimentPositive, Note: "go at night"},
		{ID: "b", Name: "Gare du Nord", Lat: 48.8809, Lng: 2.3553, Tag: "transit", Sentiment: model.SentimentNegative},
	}

	page, err := HTML(m, "test-key")
	require.NoError(t, err)

	assert.Contains(t, page, "Eiffel Tower")
	assert.Contains(t, page, "green-dot.png")
	assert.Contains(t, page, "red-dot.png")
	assert.Contains(t, page, "go at night")
	assert.Contains(t, page, "key=test-key")
	assert.Equal(t, 2, strings.Count(page, "new google.maps.Marker"))
}

func TestHTMLEscapesUserContent(t *testing.T) {
	m := model.NewMap("evil")
	m.Places = []model.Place{
		{ID: "a", Name: "X", Lat: 1, Lng: 1, Tag: "other", Sentiment: model.SentimentNeutral, Note: `<script>alert("x")</script>`},
	}

	page, err := HTML(m, "k")
	require.NoError(t, err)
	assert.NotContains(t, page, `<script>alert`)
}

func TestHTMLEmptyMap(t *testing.T) {
	page, err := HTML(model.NewMap("empty"), "k")
	require.NoError(t, err)
	assert.Contains(t, page, "initMap")
	assert.NotContains(t, page, "new google.maps.Marker")
}
