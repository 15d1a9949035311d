package similarity

import "math"

// DefaultFusionWeight is the share of the context vector in a fused user vector.
const DefaultFusionWeight = 0.25

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns a copy of v scaled to unit length.
// A vector whose norm is zero or not finite is returned unchanged (as a copy),
// so NaN never propagates into scores.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := Norm(v)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// It is 0 when either input normalizes to the zero vector. Inputs of different
// length are compared after resizing b to the length of a.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) != len(a) {
		b = Resize(b, len(a))
	}

	na := Normalize(a)
	nb := Normalize(b)
	if isZero(na) || isZero(nb) {
		return 0
	}

	var dot float64
	for i := range na {
		dot += na[i] * nb[i]
	}
	if math.IsNaN(dot) {
		return 0
	}
	// Rounding can push the dot product of unit vectors just past ±1.
	if dot > 1 {
		return 1
	}
	if dot < -1 {
		return -1
	}
	return dot
}

// Resize truncates v to n elements or right-pads it with zeros.
// The result is always a new slice.
func Resize(v []float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	copy(out, v)
	return out
}

// Fuse blends a user vector with an optional context vector:
// normalize((1-weight)*user + weight*resize(context, len(user))).
// A nil context returns user unchanged. weight is clamped to [0, 1].
func Fuse(user, context []float64, weight float64) []float64 {
	if context == nil {
		return user
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	ctx := Resize(context, len(user))
	blended := make([]float64, len(user))
	for i := range user {
		blended[i] = (1-weight)*user[i] + weight*ctx[i]
	}
	return Normalize(blended)
}

// Mean returns the elementwise mean of vectors, each resized to dim.
// It returns a zero vector of length dim when vectors is empty.
func Mean(vectors [][]float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(vectors) == 0 {
		return out
	}
	for _, v := range vectors {
		n := len(v)
		if n > dim {
			n = dim
		}
		for i := 0; i < n; i++ {
			out[i] += v[i]
		}
	}
	count := float64(len(vectors))
	for i := range out {
		out[i] /= count
	}
	return out
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	return isZero(v)
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
