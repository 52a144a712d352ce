package aggregation

import (
	"math"

	"agrocaged/pkg/contracts/domain"
)

// bucket accumulates the movements of one group
type bucket struct {
	admissions   int64
	terminations int64
	salaries     []float64
}

func (b *bucket) add(r *domain.EnrichedMovement, withSalary bool) {
	if r.IsAdmission {
		b.admissions++
	}
	if r.IsTermination {
		b.terminations++
	}
	if withSalary && !math.IsNaN(r.SalaryValue) {
		b.salaries = append(b.salaries, r.SalaryValue)
	}
}

func (b *bucket) flow() domain.Flow {
	return domain.NewFlow(b.admissions, b.terminations)
}

func (b *bucket) stats() Stats {
	return Describe(b.salaries)
}

func (b *bucket) mean() float64 {
	return mean(b.salaries)
}

// groups holds buckets keyed by a comparable key tuple
type groups[K comparable] struct {
	keys    []K
	buckets map[K]*bucket
}

// groupBy reduces records by key. Salaries are kept only when withSalary is set,
// so count-only tables do not hold a copy of every value.
func groupBy[K comparable](records []domain.EnrichedMovement, key func(*domain.EnrichedMovement) K, withSalary bool) *groups[K] {
	g := &groups[K]{buckets: make(map[K]*bucket)}
	for i := range records {
		r := &records[i]
		k := key(r)
		b, ok := g.buckets[k]
		if !ok {
			b = &bucket{}
			g.buckets[k] = b
			g.keys = append(g.keys, k)
		}
		b.add(r, withSalary)
	}
	return g
}

// totalAdmissions sums admissions across every group
func (g *groups[K]) totalAdmissions() int64 {
	var total int64
	for _, b := range g.buckets {
		total += b.admissions
	}
	return total
}

// distinct counts distinct values of field per group key
func distinct[K comparable](records []domain.EnrichedMovement, key func(*domain.EnrichedMovement) K, field func(*domain.EnrichedMovement) string) map[K]int {
	sets := make(map[K]map[string]struct{})
	for i := range records {
		r := &records[i]
		k := key(r)
		set, ok := sets[k]
		if !ok {
			set = make(map[string]struct{})
			sets[k] = set
		}
		set[field(r)] = struct{}{}
	}

	counts := make(map[K]int, len(sets))
	for k, set := range sets {
		counts[k] = len(set)
	}
	return counts
}

// dominant returns the most frequent value of field per group key. Equal counts
// resolve to the lexicographically smallest value.
func dominant[K comparable](records []domain.EnrichedMovement, key func(*domain.EnrichedMovement) K, field func(*domain.EnrichedMovement) string) map[K]string {
	counts := make(map[K]map[string]int)
	for i := range records {
		r := &records[i]
		k := key(r)
		c, ok := counts[k]
		if !ok {
			c = make(map[string]int)
			counts[k] = c
		}
		c[field(r)]++
	}

	out := make(map[K]string, len(counts))
	for k, c := range counts {
		best, bestCount := "", -1
		for label, n := range c {
			if n > bestCount || (n == bestCount && label < best) {
				best, bestCount = label, n
			}
		}
		out[k] = best
	}
	return out
}
