package rps

// Rand is the part of *math/rand.Rand the package draws from.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Sample draws an index with probability proportional to weights.
// Negative weights count as zero; when nothing is positive the draw is
// uniform over all indices.
func Sample(weights []float64, r Rand) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return r.Intn(len(weights))
	}
	x := r.Float64() * total
	acc := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if x < acc {
			return i
		}
	}
	// float rounding can leave x == total
	return last
}
