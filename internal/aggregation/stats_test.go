package aggregation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		values []float64
		want   Stats
	}{
		{
			name:   "empty",
			values: nil,
			want:   Stats{Mean: nan, Median: nan, Std: nan, Min: nan, Max: nan, P10: nan, P25: nan, P75: nan, P90: nan},
		},
		{
			name:   "single value has no deviation",
			values: []float64{1800},
			want:   Stats{N: 1, Mean: 1800, Median: 1800, Std: nan, Min: 1800, Max: 1800, P10: 1800, P25: 1800, P75: 1800, P90: 1800},
		},
		{
			name:   "two values",
			values: []float64{1800, 1700},
			want: Stats{
				N: 2, Mean: 1750, Median: 1750, Std: math.Sqrt(5000), Min: 1700, Max: 1800,
				P10: 1710, P25: 1725, P75: 1775, P90: 1790,
			},
		},
		{
			name:   "non finite values are ignored",
			values: []float64{4, nan, 1, math.Inf(1), 3, 2},
			want: Stats{
				N: 4, Mean: 2.5, Median: 2.5, Std: math.Sqrt(5.0 / 3.0), Min: 1, Max: 4,
				P10: 1.3, P25: 1.75, P75: 3.25, P90: 3.7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.values)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribeDoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Describe(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, 10.0, percentile(sorted, 0))
	assert.Equal(t, 50.0, percentile(sorted, 1))
	assert.Equal(t, 30.0, percentile(sorted, 0.5))
	assert.InDelta(t, 14.0, percentile(sorted, 0.1), 1e-9)
	assert.InDelta(t, 46.0, percentile(sorted, 0.9), 1e-9)
	assert.True(t, math.IsNaN(percentile(nil, 0.5)))
}

func TestRoundAndShare(t *testing.T) {
	assert.Equal(t, 1750.13, round(1750.125, 2))
	assert.Equal(t, -2.5, round(-2.45, 1))
	assert.True(t, math.IsNaN(round(math.NaN(), 2)))

	assert.Equal(t, 33.3, share(1, 3))
	assert.True(t, math.IsNaN(share(0, 0)))
}
