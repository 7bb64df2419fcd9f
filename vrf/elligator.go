package vrf

import (
	"fmt"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

// curveA is the Montgomery curve coefficient A = 486662 of Curve25519.
var curveA = mustFieldElement(486662)

func mustFieldElement(v uint32) field.Element {
	var b [32]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	var e field.Element
	if _, err := e.SetBytes(b[:]); err != nil {
		panic("vrf: field constant: " + err.Error())
	}
	return e
}

// PointFromUniform maps 32 uniform bytes to a point in the prime-order
// subgroup of edwards25519, byte-compatible with the reference
// ge25519_from_uniform routine. Both VRF suites use it as the core of
// hash_to_curve, so the map has to reproduce the reference bit for bit:
//
//	x  = -A / (1 + 2r^2)            on the Montgomery curve
//	e  = chi(x^3 + A x^2 + x)       Legendre symbol of the curve equation
//	x  = -x - A                     when e = -1 (take the other root)
//	y  = (x - 1) / (x + 1)          birational map to Edwards form
//
// The top bit of r carries the sign of the Edwards x coordinate, and the
// result is multiplied by the cofactor 8.
func PointFromUniform(r []byte) (*edwards25519.Point, error) {
	if len(r) != 32 {
		return nil, fmt.Errorf("vrf: bad uniform input length %d, want 32", len(r))
	}

	var s [32]byte
	copy(s[:], r)
	xSign := s[31] & 0x80
	s[31] &= 0x7f

	var one = new(field.Element).One()

	// rr2 = 1 / (2r^2 + 1)
	rr2 := new(field.Element)
	if _, err := rr2.SetBytes(s[:]); err != nil {
		return nil, fmt.Errorf("vrf: uniform input: %w", err)
	}
	rr2.Square(rr2)
	rr2.Add(rr2, rr2)
	rr2.Add(rr2, one)
	rr2.Invert(rr2)

	// x = -A * rr2
	x := new(field.Element).Multiply(&curveA, rr2)
	x.Negate(x)

	// e = x^3 + A x^2 + x
	x2 := new(field.Element).Square(x)
	e := new(field.Element).Multiply(x2, x)
	e.Add(e, x)
	ax2 := new(field.Element).Multiply(x2, &curveA)
	e.Add(e, ax2)

	// e is a square (or zero) exactly when x is the Montgomery
	// x-coordinate of a curve point; otherwise take -x - A.
	_, isSquare := new(field.Element).SqrtRatio(e, one)
	notSquare := 1 - isSquare

	negx := new(field.Element).Negate(x)
	x.Select(negx, x, notSquare)
	adj := new(field.Element).Select(&curveA, new(field.Element), notSquare)
	x.Subtract(x, adj)

	// y = (x - 1) / (x + 1)
	xp1 := new(field.Element).Add(x, one)
	xm1 := new(field.Element).Subtract(x, one)
	xp1.Invert(xp1)
	y := new(field.Element).Multiply(xm1, xp1)

	// Compress with the carried sign bit and decompress as an Edwards
	// point, then clear the cofactor.
	var yb = y.Bytes()
	yb[31] |= xSign

	P, err := edwards25519.NewIdentityPoint().SetBytes(yb)
	if err != nil {
		return nil, fmt.Errorf("vrf: elligator output: %w", err)
	}
	return P.MultByCofactor(P), nil
}
