package analysis

import "interplay/pkg/schema"

// Aggregator folds chunk extractions into one result. It is owned by a
// single Analyze call and is not safe for concurrent use.
type Aggregator struct {
	seen         map[string]struct{}
	characters   []string
	interactions []schema.Interaction
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Add merges characters by exact name and appends interactions as-is.
func (a *Aggregator) Add(e Extraction) {
	for _, c := range e.Characters {
		if _, ok := a.seen[c]; ok {
			continue
		}
		a.seen[c] = struct{}{}
		a.characters = append(a.characters, c)
	}
	a.interactions = append(a.interactions, e.Interactions...)
}

// Result returns the accumulated state. Characters come out in first-seen order.
func (a *Aggregator) Result() *schema.AnalysisResult {
	res := &schema.AnalysisResult{
		Characters:   make([]string, len(a.characters)),
		Interactions: make([]schema.Interaction, len(a.interactions)),
	}
	copy(res.Characters, a.characters)
	copy(res.Interactions, a.interactions)
	return res
}
