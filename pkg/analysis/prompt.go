package analysis

import "strings"

const systemPrompt = "You are a helpful assistant that returns only valid JSON."

const extractPrompt = `You are a JSON-only response AI.

From the following text chunk, extract:
1. A list of characters
2. All interactions between characters
3. For each interaction:
   - who talks to whom ("from" speaks to or about "to")
   - how many times
   - a few short quotes (at most 3)
   - the sentiment (positive, negative, neutral)
   - positions: an array of numbers between 0 and 1 marking where in THIS chunk the interaction happens (0 is the start of the chunk, 1 is the end)

Respond in strict JSON. No markdown, no code fences and no explanation before or after the JSON.

Return format:
{
  "characters": ["Name"],
  "interactions": [
    {
      "from": "Name",
      "to": "Other Name",
      "count": 1,
      "quotes": ["short quote"],
      "sentiment": "neutral",
      "positions": [0.23, 0.54]
    }
  ]
}

If there are no characters or interactions, return: {"characters": [], "interactions": []}

Text:
"""
`

// BuildPrompt returns the user instruction for one chunk.
func BuildPrompt(chunk string) string {
	var b strings.Builder
	b.Grow(len(extractPrompt) + len(chunk) + 8)
	b.WriteString(extractPrompt)
	b.WriteString(chunk)
	b.WriteString("\n\"\"\"\n")
	return b.String()
}

// SystemPrompt is sent alongside every chunk prompt.
func SystemPrompt() string { return systemPrompt }
