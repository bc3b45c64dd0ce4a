package state

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Every function below follows a dst-first, floats-backed arithmetic
// convention but is written against the Vector interface so it works
// uniformly over Dense, Scalar, and any backend a caller plugs in. When
// every operand exposes the optional Raw() fast path the call is forwarded
// to gonum/floats; otherwise it falls back to a plain At/Set loop.

// Copy sets dst = src element-wise.
func Copy(dst, src Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(src); ok2 {
			copy(dr, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, src.At(i))
	}
}

// Add performs dst = dst + s element-wise.
func Add(dst, s Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.Add(dr, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)+s.At(i))
	}
}

// AddTo performs dst = a + b element-wise and returns dst.
func AddTo(dst, a, b Vector) Vector {
	if dr, ok := raw(dst); ok {
		if ar, ok2 := raw(a); ok2 {
			if br, ok3 := raw(b); ok3 {
				floats.AddTo(dr, ar, br)
				return dst
			}
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, a.At(i)+b.At(i))
	}
	return dst
}

// AddConst adds the scalar c to every element of dst.
func AddConst(c float64, dst Vector) {
	if dr, ok := raw(dst); ok {
		floats.AddConst(c, dr)
		return
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)+c)
	}
}

// AddScaled performs dst = dst + alpha*s element-wise.
func AddScaled(dst Vector, alpha float64, s Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.AddScaled(dr, alpha, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)+alpha*s.At(i))
	}
}

// AddScaledTo performs dst = y + alpha*s element-wise and returns dst.
func AddScaledTo(dst, y Vector, alpha float64, s Vector) Vector {
	if dr, ok := raw(dst); ok {
		if yr, ok2 := raw(y); ok2 {
			if sr, ok3 := raw(s); ok3 {
				floats.AddScaledTo(dr, yr, alpha, sr)
				return dst
			}
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, y.At(i)+alpha*s.At(i))
	}
	return dst
}

// Div performs dst = dst / s element-wise.
func Div(dst, s Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.Div(dr, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)/s.At(i))
	}
}

// DivTo performs dst = a / b element-wise and returns dst.
func DivTo(dst, a, b Vector) Vector {
	if dr, ok := raw(dst); ok {
		if ar, ok2 := raw(a); ok2 {
			if br, ok3 := raw(b); ok3 {
				floats.DivTo(dr, ar, br)
				return dst
			}
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, a.At(i)/b.At(i))
	}
	return dst
}

// Mul performs dst = dst * s element-wise.
func Mul(dst, s Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.Mul(dr, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)*s.At(i))
	}
}

// Scale multiplies every element of dst by c.
func Scale(c float64, dst Vector) {
	if dr, ok := raw(dst); ok {
		floats.Scale(c, dr)
		return
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, c*dst.At(i))
	}
}

// ScaleTo sets dst = c*s element-wise and returns dst.
func ScaleTo(dst Vector, c float64, s Vector) Vector {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.ScaleTo(dr, c, sr)
			return dst
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, c*s.At(i))
	}
	return dst
}

// Sub performs dst = dst - s element-wise.
func Sub(dst, s Vector) {
	if dr, ok := raw(dst); ok {
		if sr, ok2 := raw(s); ok2 {
			floats.Sub(dr, sr)
			return
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, dst.At(i)-s.At(i))
	}
}

// SubTo performs dst = a - b element-wise and returns dst.
func SubTo(dst, a, b Vector) Vector {
	if dr, ok := raw(dst); ok {
		if ar, ok2 := raw(a); ok2 {
			if br, ok3 := raw(b); ok3 {
				floats.SubTo(dr, ar, br)
				return dst
			}
		}
	}
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, a.At(i)-b.At(i))
	}
	return dst
}

// Abs replaces every element of dst with its absolute value.
func Abs(dst Vector) {
	for i := 0; i < dst.Len(); i++ {
		dst.Set(i, math.Abs(dst.At(i)))
	}
}

// Max returns the largest element of v.
func Max(v Vector) float64 {
	if r, ok := raw(v); ok {
		return floats.Max(r)
	}
	m := math.Inf(-1)
	for i := 0; i < v.Len(); i++ {
		if v.At(i) > m {
			m = v.At(i)
		}
	}
	return m
}

// Min returns the smallest element of v.
func Min(v Vector) float64 {
	if r, ok := raw(v); ok {
		return floats.Min(r)
	}
	m := math.Inf(1)
	for i := 0; i < v.Len(); i++ {
		if v.At(i) < m {
			m = v.At(i)
		}
	}
	return m
}

// Norm2 returns the Euclidean (L2) norm of v, degrading to |x| for a
// length-1 (scalar) vector, per the "single polymorphic norm entry point"
// design note.
func Norm2(v Vector) float64 {
	sum := 0.0
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		sum += x * x
	}
	return math.Sqrt(sum)
}

// NormInf returns the infinity norm (largest absolute value) of v.
func NormInf(v Vector) float64 {
	m := 0.0
	for i := 0; i < v.Len(); i++ {
		a := math.Abs(v.At(i))
		if a > m {
			m = a
		}
	}
	return m
}

// WeightedRMS computes the weighted root-mean-square norm used by every
// embedded/adaptive error controller in the core:
//
//	wrms(err) = sqrt( (1/n) * sum_i (err_i / (atol + rtol*|ref_i|))^2 )
//
// Because it is written only in terms of Len/At it is the one norm shared by
// scalar, dense, and any future backend, resolving Open Question (c).
func WeightedRMS(err Vector, atol, rtol float64, ref Vector) float64 {
	n := err.Len()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		scale := atol + rtol*math.Abs(ref.At(i))
		if scale == 0 {
			scale = atol
		}
		r := err.At(i) / scale
		sum += r * r
	}
	return math.Sqrt(sum / float64(n))
}

// HasNonFinite reports whether any element of v is NaN or +/-Inf, the
// arithmetic-error detector run after every accepted step.
func HasNonFinite(v Vector) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}
