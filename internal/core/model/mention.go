package model

// Sentiment attached to a place mention. Extraction backends that carry no
// sentiment signal report SentimentUnknown, which the reconciler treats as
// overridable.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUnknown  Sentiment = "unknown"
)

// ParseSentiment maps free-form backend output onto the Sentiment enum.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return Sentiment(s)
	default:
		return SentimentUnknown
	}
}

// Source identifies which extraction backend produced a mention.
type Source string

const (
	SourceNER Source = "ner"
	SourceLLM Source = "llm"
)

// Confidence is the qualitative outcome of geocoding a mention.
type Confidence string

const (
	ConfidenceExact       Confidence = "exact"
	ConfidenceApproximate Confidence = "approximate"
	ConfidenceFailed      Confidence = "failed"
)

// RawMention is a single place name found in source text, before coordinate
// resolution. Ephemeral, never persisted directly.
type RawMention struct {
	Text      string    `json:"text"`
	Context   string    `json:"context"`
	Sentiment Sentiment `json:"sentiment"`
	Source    Source    `json:"source"`
}

// ResolvedMention is a RawMention after geocoding. When Confidence is
// ConfidenceFailed the coordinates are meaningless and must not be consulted.
type ResolvedMention struct {
	RawMention
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	FormattedAddress string     `json:"formatted_address"`
	PlaceType        string     `json:"place_type,omitempty"`
	Confidence       Confidence `json:"resolution_confidence"`
}
