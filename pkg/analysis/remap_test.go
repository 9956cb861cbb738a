package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemap_Example(t *testing.T) {
	got := Remap(0.5, 2, 4000, 1000, 9000)
	assert.InDelta(t, 8500.0/9000.0, got, 1e-12)
	assert.InDelta(t, 0.944, got, 0.001)
}

func TestRemap_FirstChunk(t *testing.T) {
	assert.Equal(t, 0.0, Remap(0, 0, 4000, 4000, 9000))
	assert.InDelta(t, 2000.0/9000, Remap(0.5, 0, 4000, 4000, 9000), 1e-12)
}

func TestRemap_Monotonic(t *testing.T) {
	for _, tc := range []struct{ index, length int }{{0, 4000}, {1, 4000}, {2, 1000}} {
		prev := -1.0
		for p := -0.5; p <= 1.5; p += 0.01 {
			got := Remap(p, tc.index, 4000, tc.length, 9000)
			assert.GreaterOrEqual(t, got, prev, "chunk %d p=%.2f", tc.index, p)
			prev = got
		}
	}
}

func TestRemap_Clamp(t *testing.T) {
	for _, p := range []float64{-0.1, -10, math.Inf(-1), math.NaN()} {
		assert.Equal(t, 0.0, Remap(p, 1, 4000, 4000, 9000), "p=%v", p)
	}
	for _, p := range []float64{1.01, 7, math.Inf(1)} {
		assert.Equal(t, 1.0, Remap(p, 0, 4000, 4000, 9000), "p=%v", p)
	}

	// offsets past the end of the document (inconsistent inputs) still clamp
	assert.Equal(t, 1.0, Remap(1, 5, 4000, 4000, 9000))
	assert.Equal(t, 0.0, Remap(0.5, 0, 4000, 4000, 0))
}

func TestRemap_AlwaysInRange(t *testing.T) {
	for _, p := range []float64{-1, 0, 0.3, 0.999, 1, 2, math.NaN()} {
		for index := 0; index < 4; index++ {
			got := Remap(p, index, 2750, 2750, 9000)
			assert.False(t, math.IsNaN(got))
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}
