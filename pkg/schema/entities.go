package schema

import "strings"

type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// ParseSentiment folds s to a known sentiment, falling back to Neutral.
func ParseSentiment(s string) Sentiment {
	switch v := Sentiment(toLowerTrim(s)); v {
	case Positive, Negative, Neutral:
		return v
	default:
		return Neutral
	}
}

func toLowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// AnalysisResult is the document-scoped output of one analysis run.
type AnalysisResult struct {
	Characters   []string      `json:"characters" jsonschema_description:"Distinct character names"`
	Interactions []Interaction `json:"interactions" jsonschema_description:"Interactions between characters in text order"`
}

type Interaction struct {
	From      string    `json:"from" jsonschema_description:"Character who speaks or acts"`
	To        string    `json:"to" jsonschema_description:"Character spoken to or about"`
	Count     int       `json:"count" jsonschema_description:"How many times the interaction occurs"`
	Quotes    []string  `json:"quotes" jsonschema_description:"A few short supporting quotes"`
	Sentiment Sentiment `json:"sentiment" jsonschema:"enum=positive,enum=negative,enum=neutral" jsonschema_description:"Overall sentiment of the interaction"`
	Positions []float64 `json:"positions" jsonschema_description:"Fractions between 0 and 1 marking where the interaction occurs"`
}

// Book is a retrieved document ready for analysis.
type Book struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
