package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRX = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)\\s*```")

// Reply is the outcome of recovering a JSON object from a model reply.
// A failed recovery is an ordinary value with a Reason, not an error.
type Reply struct {
	Object map[string]any
	Reason string
}

func (r Reply) OK() bool { return r.Object != nil }

// ParseReply isolates and decodes the JSON object inside raw model output.
// Candidates are tried in order: the first fenced code block, then the span
// from the first '{' to the last '}' of the whole reply.
func ParseReply(raw string) Reply {
	raw = stripThinking(raw)
	if strings.TrimSpace(raw) == "" {
		return Reply{Reason: "empty reply"}
	}

	var candidates []string
	if m := fenceRX.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, raw)

	var reason string
	for _, c := range candidates {
		obj, why := decodeObject(c)
		if obj != nil {
			return Reply{Object: obj}
		}
		if reason == "" {
			reason = why
		}
	}
	return Reply{Reason: reason}
}

func decodeObject(s string) (map[string]any, string) {
	span, ok := braceSpan(s)
	if !ok {
		return nil, "no JSON object found"
	}
	span = stripControl(span)

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, "invalid JSON: " + err.Error()
	}
	if obj == nil {
		return nil, "JSON value is not an object"
	}
	return obj, ""
}

func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}

// stripControl drops ASCII control characters (0x00-0x1F).
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

func stripThinking(s string) string {
	if strings.Contains(s, "<think>") {
		if idx := strings.LastIndex(s, "</think>"); idx != -1 {
			return s[idx+len("</think>"):]
		}
	}
	return s
}
