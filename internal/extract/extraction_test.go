package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/atlas/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMExtract(t *testing.T) {
	mockJSON := `[
		{"name": "Eiffel Tower", "context": "We loved the Eiffel Tower at sunset.", "sentiment": "positive"},
		{"name": "Gare du Nord", "context": "The train left from Gare du Nord.", "sentiment": "neutral"}
	]`
	mockLLM := &MockLLMClient{Response: mockJSON}
	extractor := NewLLMExtractor(mockLLM, "")

	mentions, err := extractor.Extract(context.Background(), "We loved the Eiffel Tower at sunset. The train left from Gare du Nord.")

	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.Equal(t, "Eiffel Tower", mentions[0].Text)
	assert.Equal(t, model.SentimentPositive, mentions[0].Sentiment)
	assert.Equal(t, model.SourceLLM, mentions[0].Source)
	assert.Equal(t, "The train left from Gare du Nord.", mentions[1].Context)

	// The prompt carries the taxonomy and the input text.
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "landmark")
	assert.Contains(t, mockLLM.Prompts[0], "Gare du Nord")
}

func TestLLMExtractHandlesFencedReply(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "```json\n[{\"name\": \"Louvre\", \"context\": \"\", \"sentiment\": \"unknown\"}]\n```"}
	extractor := NewLLMExtractor(mockLLM, "")

	mentions, err := extractor.Extract(context.Background(), "Louvre")
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, model.SentimentUnknown, mentions[0].Sentiment)
	assert.Empty(t, mentions[0].Context)
}

func TestLLMExtractEmptyArray(t *testing.T) {
	extractor := NewLLMExtractor(&MockLLMClient{Response: "[]"}, "")

	mentions, err := extractor.Extract(context.Background(), "Nothing geographic here.")
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

func TestLLMExtractSkipsNamelessEntries(t *testing.T) {
	extractor := NewLLMExtractor(&MockLLMClient{Response: `[{"name": "  ", "context": "x", "sentiment": "neutral"}]`}, "")

	mentions, err := extractor.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, mentions)
}

func TestLLMExtractBackendError(t *testing.T) {
	extractor := NewLLMExtractor(&MockLLMClient{Err: errors.New("connection refused")}, "")

	_, err := extractor.Extract(context.Background(), "text")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, model.SourceLLM, exErr.Backend)
}

func TestLLMExtractMalformedReply(t *testing.T) {
	extractor := NewLLMExtractor(&MockLLMClient{Response: "I found some places but won't format them."}, "")

	_, err := extractor.Extract(context.Background(), "text")
	var exErr *ExtractionError
	require.ErrorAs(t, err, &exErr)
}

func TestSentenceAround(t *testing.T) {
	text := "We arrived late. The Eiffel Tower was glowing! Then we went home."

	start := 21 // "Eiffel"
	end := start + len("Eiffel Tower")
	assert.Equal(t, "The Eiffel Tower was glowing!", sentenceAround(text, start, end))

	// Out-of-range span falls back to the whole text.
	assert.Equal(t, text, sentenceAround(text, -1, 5))
	assert.Equal(t, text, sentenceAround(text, 10, 500))
}
