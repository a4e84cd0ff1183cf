package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/atlas/internal/core/common"
	"github.com/agenthands/atlas/internal/core/model"
	"github.com/agenthands/atlas/internal/core/tagger"
	"github.com/agenthands/atlas/internal/llm"
)

// DefaultPrompt is the extraction prompt used when the config provides none.
// First placeholder is the taxonomy list, second is the input text.
const DefaultPrompt = `Extract all place names or locations mentioned in the following text.
For each location provide:
1. "name": the exact name as it appears in the text
2. "context": the sentence or minimal snippet of the text that mentions it
3. "sentiment": "positive", "negative" or "neutral" based on how the location is described, or "unknown" if the text gives no signal

Category hints to look for: %s.

Format your response as a JSON array of objects with the fields "name", "context" and "sentiment".
Only return the JSON array, nothing else. If no locations are found, return an empty array: []

Here is the text:

%s`

// llmPlace is the reply shape the extraction prompt asks for.
type llmPlace struct {
	Name      string `json:"name"`
	Context   string `json:"context"`
	Sentiment string `json:"sentiment"`
}

// LLMExtractor asks a language model for place mentions.
type LLMExtractor struct {
	client llm.Client
	prompt string
}

func NewLLMExtractor(client llm.Client, prompt string) *LLMExtractor {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &LLMExtractor{client: client, prompt: prompt}
}

func (e *LLMExtractor) Backend() model.Source { return model.SourceLLM }

func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]model.RawMention, error) {
	prompt := fmt.Sprintf(e.prompt, strings.Join(tagger.Taxonomy, ", "), text)

	response, err := e.client.Generate(ctx, prompt)
	if err != nil {
		return nil, &ExtractionError{Backend: model.SourceLLM, Err: err}
	}

	places, err := common.ParseJSON[[]llmPlace](response)
	if err != nil {
		return nil, &ExtractionError{Backend: model.SourceLLM, Err: err}
	}

	mentions := make([]model.RawMention, 0, len(places))
	for _, p := range places {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		mentions = append(mentions, model.RawMention{
			Text:      strings.TrimSpace(p.Name),
			Context:   strings.TrimSpace(p.Context),
			Sentiment: model.ParseSentiment(p.Sentiment),
			Source:    model.SourceLLM,
		})
	}
	return mentions, nil
}
