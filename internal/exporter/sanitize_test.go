package exporter

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocaged/pkg/contracts/domain"
)

type inner struct {
	Count int `json:"count"`
}

type sample struct {
	Name     string            `json:"name"`
	Score    float64           `json:"score"`
	Missing  float64           `json:"missing"`
	When     time.Time         `json:"when"`
	Tags     []string          `json:"tags"`
	Nil      []int             `json:"nil_list"`
	Ptr      *int              `json:"ptr"`
	Hidden   string            `json:"-"`
	Optional string            `json:"optional,omitempty"`
	ByCode   map[int]float32   `json:"by_code"`
	Nested   inner             `json:"nested"`
	Extra    map[string]any    `json:"extra"`
	Small    uint8             `json:"small"`
	Labels   map[string]string `json:"labels"`
	inner
	private int
}

func TestSanitize(t *testing.T) {
	seven := 7
	in := sample{
		Name:    "Sojicultura",
		Score:   1.5,
		Missing: math.NaN(),
		When:    time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC),
		Tags:    []string{"a", "b"},
		Ptr:     &seven,
		Hidden:  "secret",
		ByCode:  map[int]float32{1: 2.5, 2: float32(math.Inf(1))},
		Nested:  inner{Count: 3},
		Extra:   map[string]any{"inf": math.Inf(-1), "n": int32(4)},
		Small:   9,
		Labels:  map[string]string{"k": "v"},
		inner:   inner{Count: 11},
		private: 1,
	}

	got, err := Sanitize(in)
	require.NoError(t, err)

	want := map[string]any{
		"name":     "Sojicultura",
		"score":    1.5,
		"missing":  nil,
		"when":     "2024-02-29",
		"tags":     []any{"a", "b"},
		"nil_list": []any{},
		"ptr":      int64(7),
		"by_code":  map[string]any{"1": 2.5, "2": nil},
		"nested":   map[string]any{"count": int64(3)},
		"extra":    map[string]any{"inf": nil, "n": int64(4)},
		"small":    int64(9),
		"labels":   map[string]any{"k": "v"},
		"count":    int64(11),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		42,
		math.NaN(),
		"text",
		[]float64{1, math.Inf(1), 3},
		domain.ChainRow{Chain: "Outros", Flow: domain.NewFlow(2, 1), SalaryStd: math.NaN()},
		map[string]any{"rows": []domain.CubeRow{{Municipality: "410690", SalaryMean: math.NaN()}}},
	}

	for _, in := range inputs {
		once, err := Sanitize(in)
		require.NoError(t, err)
		twice, err := Sanitize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestSanitizeFlattensEmbeddedFlow(t *testing.T) {
	got, err := Sanitize(domain.TimeseriesRow{Period: "2024-01", Flow: domain.NewFlow(3, 1), SalaryMean: math.NaN()})
	require.NoError(t, err)

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(3), m["admissoes"])
	assert.Equal(t, int64(1), m["demissoes"])
	assert.Equal(t, int64(2), m["saldo"])
	assert.Nil(t, m["salario_medio"])
	assert.Contains(t, m, "salario_medio")
	assert.NotContains(t, m, "Flow")
}

func TestSanitizeRejectsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"channel", make(chan int)},
		{"function", func() {}},
		{"complex", complex(1, 2)},
		{"float map key", map[float64]int{1.5: 1}},
		{"nested channel", map[string]any{"c": make(chan int)}},
		{"uint overflow", uint64(math.MaxUint64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(tt.in)
			assert.ErrorIs(t, err, ErrUnsupportedValue)
		})
	}
}

type node struct {
	Label string `json:"label"`
	Next  *node  `json:"next"`
}

func TestSanitizeCycles(t *testing.T) {
	t.Run("pointer cycle", func(t *testing.T) {
		n := &node{Label: "a"}
		n.Next = &node{Label: "b", Next: n}

		_, err := Sanitize(n)
		require.ErrorIs(t, err, ErrUnsupportedValue)
		assert.Contains(t, err.Error(), "cyclic")
	})

	t.Run("map containing itself", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m

		_, err := Sanitize(m)
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	})

	t.Run("slice containing itself", func(t *testing.T) {
		s := []any{nil}
		s[0] = s

		_, err := Sanitize(s)
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	})

	t.Run("shared reference is not a cycle", func(t *testing.T) {
		shared := &node{Label: "leaf"}
		got, err := Sanitize([]*node{shared, shared})
		require.NoError(t, err)

		leaf := map[string]any{"label": "leaf", "next": nil}
		assert.Equal(t, []any{leaf, leaf}, got)
	})
}
