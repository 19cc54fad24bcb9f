package similarity

import "slices"

// Matrix holds the pairwise scores of a set of files.
type Matrix struct {
	n      int
	scores []float64
}

// NewMatrix scores every pair of counts. The diagonal is left at zero.
func NewMatrix(counts []Counts) *Matrix {
	n := len(counts)
	m := &Matrix{n: n, scores: make([]float64, n*n)}
	for i := range n {
		for j := i + 1; j < n; j++ {
			s := Score(counts[i], counts[j])
			m.scores[i*n+j] = s
			m.scores[j*n+i] = s
		}
	}
	return m
}

// Len returns the number of files.
func (m *Matrix) Len() int { return m.n }

// At returns the score of files i and j.
func (m *Matrix) At(i, j int) float64 { return m.scores[i*m.n+j] }

// MostSimilarPair returns the distinct pair with the highest score, the
// earliest pair in row-major order on ties. ok is false for fewer than two
// files.
func (m *Matrix) MostSimilarPair() (i, j int, ok bool) {
	best := -1.0
	for a := range m.n {
		for b := a + 1; b < m.n; b++ {
			if s := m.At(a, b); s > best {
				best, i, j, ok = s, a, b, true
			}
		}
	}
	return i, j, ok
}

// Chain orders the files greedily: start from the most similar pair, then
// repeatedly append the unused file most similar to the last one placed,
// preferring the earliest index on ties. It returns indices into the matrix.
func (m *Matrix) Chain() []int {
	if m.n == 0 {
		return nil
	}
	start, _, ok := m.MostSimilarPair()
	if !ok {
		return []int{0}
	}

	used := make([]bool, m.n)
	order := make([]int, 0, m.n)
	cur := start
	for {
		used[cur] = true
		order = append(order, cur)
		next, best := -1, -1.0
		for k := range m.n {
			if !used[k] && m.At(cur, k) > best {
				next, best = k, m.At(cur, k)
			}
		}
		if next < 0 {
			return order
		}
		cur = next
	}
}

// Order chains ids by the similarity of their counts. ids and counts are
// parallel.
func Order(ids []string, counts []Counts) []string {
	idx := NewMatrix(counts).Chain()
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = ids[k]
	}
	return out
}

// OrderByProfile stable-sorts ids by the [Profile] of their counts.
func OrderByProfile(ids []string, counts []Counts) []string {
	type entry struct {
		id      string
		profile []TokenCount
	}
	entries := make([]entry, len(ids))
	for i := range ids {
		entries[i] = entry{ids[i], Profile(counts[i])}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return CompareProfiles(a.profile, b.profile)
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}
