package nlp

import "math"

// Vector is a sparse feature vector. Indices are strictly increasing and
// every index is below Dim.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Len returns the number of stored (non-zero) entries
func (v Vector) Len() int {
	return len(v.Indices)
}

// At returns the value at column i, zero if the column is not stored
func (v Vector) At(i int) float64 {
	lo, hi := 0, len(v.Indices)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case v.Indices[mid] == i:
			return v.Values[mid]
		case v.Indices[mid] < i:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// Norm returns the Euclidean length of the vector
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}
