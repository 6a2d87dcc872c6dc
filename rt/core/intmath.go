package core

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b) for non-negative a and positive b.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// CeilPow2 returns the smallest power of two >= v, and 1 for v <= 1.
func CeilPow2[T constraints.Integer](v T) T {
	p := T(1)
	for p < v {
		p <<= 1
	}
	return p
}
