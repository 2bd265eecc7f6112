// Package utils holds small pure helpers shared by several hint
// bodies: integer square root and Python-style floor division, both
// needed to match the literal divmod/isqrt semantics spec.md's hint
// table describes.
package utils

import "math/big"

// Isqrt returns the floor of the square root of a non-negative n.
func Isqrt(n *big.Int) *big.Int {
	return new(big.Int).Sqrt(n)
}

// FloorDivMod returns (q, r) such that a = q*b + r, 0 <= r < |b|, for
// b > 0 — Python's divmod semantics, which big.Int.DivMod already
// implements (Euclidean division) when the divisor is positive.
func FloorDivMod(a, b *big.Int) (q, r *big.Int) {
	q = new(big.Int)
	r = new(big.Int)
	q.DivMod(a, b, r)
	return q, r
}
