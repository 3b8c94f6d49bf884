package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"whole", 100, 100},
		{"already cents", 12.34, 12.34},
		{"half cent up", 1.005, 1.01},
		{"binary error", 0.1 + 0.2, 0.3},
		{"below half", 2.344, 2.34},
		{"negative", -3.456, -3.46},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestRound2Idempotent(t *testing.T) {
	values := []float64{0, 0.004, 0.005, 1.005, 2.675, 10.0 / 3, 1234567.891, -8.125, 99.995, 1e-9}
	for _, v := range values {
		once := Round2(v)
		assert.Equal(t, once, Round2(once), "value %v", v)

		cents := once * 100
		assert.InDelta(t, math.Round(cents), cents, 1e-6, "value %v has more than two decimals", v)
	}
}

func TestSum2(t *testing.T) {
	assert.Equal(t, 0.3, Sum2(0.1, 0.2))
	assert.Equal(t, 600.0, Sum2(500, 100, 0))
	assert.Equal(t, 0.0, Sum2())
}
