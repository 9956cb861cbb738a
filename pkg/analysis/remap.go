package analysis

import "math"

// Remap converts a chunk-relative fraction p into a document-global fraction.
// index and size locate the chunk (preceding chunks are assumed full-sized),
// length is the chunk's actual length and total the document length.
// The result is always within [0, 1]; p below 0 or NaN yields 0 and p above 1 yields 1.
func Remap(p float64, index, size, length, total int) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 1:
		return 1
	case total <= 0:
		return 0
	}
	offset := float64(index)*float64(size) + p*float64(length)
	return clamp01(offset / float64(total))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
