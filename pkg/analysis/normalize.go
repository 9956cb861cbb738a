package analysis

import (
	"math"
	"strings"

	"interplay/pkg/schema"
)

const maxQuotes = 3

// Extraction is the normalized content of one chunk reply. Positions are
// still chunk-relative.
type Extraction struct {
	Characters   []string
	Interactions []schema.Interaction
}

// Normalize applies defaults to a decoded chunk reply. It never fails:
// malformed fields are defaulted or dropped.
func Normalize(obj map[string]any) Extraction {
	var out Extraction

	chars, _ := obj["characters"].([]any)
	for _, c := range chars {
		if name, ok := characterName(c); ok {
			out.Characters = append(out.Characters, name)
		}
	}

	items, _ := obj["interactions"].([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if in, ok := normalizeInteraction(m); ok {
			out.Interactions = append(out.Interactions, in)
		}
	}
	return out
}

func characterName(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, c != ""
	case map[string]any:
		name, ok := c["name"].(string)
		return name, ok && name != ""
	}
	return "", false
}

func normalizeInteraction(m map[string]any) (schema.Interaction, bool) {
	from, _ := m["from"].(string)
	to, _ := m["to"].(string)
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return schema.Interaction{}, false
	}

	sentiment, _ := m["sentiment"].(string)
	return schema.Interaction{
		From:      from,
		To:        to,
		Count:     normalizeCount(m["count"]),
		Quotes:    normalizeQuotes(m["quotes"]),
		Sentiment: schema.ParseSentiment(sentiment),
		Positions: rawPositions(m),
	}, true
}

func normalizeCount(v any) int {
	n, ok := v.(float64)
	if !ok || n < 0 || math.IsInf(n, 0) {
		return 1
	}
	return int(math.Round(n))
}

func normalizeQuotes(v any) []string {
	quotes := make([]string, 0, maxQuotes)
	list, _ := v.([]any)
	for _, q := range list {
		if len(quotes) == maxQuotes {
			break
		}
		if s, ok := q.(string); ok {
			quotes = append(quotes, s)
		}
	}
	return quotes
}

// rawPositions collects chunk-relative positions. "positions" wins over a
// scalar "position". Values that are not numbers in [0, 1] are dropped.
func rawPositions(m map[string]any) []float64 {
	var raw []any
	if list, ok := m["positions"].([]any); ok && len(list) > 0 {
		raw = list
	} else if p, ok := m["position"]; ok {
		raw = []any{p}
	}

	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		p, ok := v.(float64)
		if !ok || math.IsNaN(p) || p < 0 || p > 1 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Place remaps every position of e from chunk-relative to document-global.
func (e *Extraction) Place(c Chunk, size, total int) {
	for i := range e.Interactions {
		in := &e.Interactions[i]
		for j, p := range in.Positions {
			in.Positions[j] = Remap(p, c.Index, size, c.Length, total)
		}
	}
}
