// Package ietfdraft03 implements ECVRF-ED25519-SHA512-Elligator2 as
// specified by draft-irtf-cfrg-vrf-03. This is the proof format of the
// historical chain: 80-byte proofs carrying the gamma point, a 16-byte
// challenge, and the response scalar.
package ietfdraft03

import (
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/FractionEstate/Cardano-KES/vrf"
)

const (
	// SeedSize is the secret seed length in bytes.
	SeedSize = vrf.SeedSize

	// SecretKeySize is the secret key length: seed || public key.
	SecretKeySize = vrf.SecretKeySize

	// PublicKeySize is the public key length in bytes.
	PublicKeySize = vrf.PublicKeySize

	// ProofSize is the proof (pi) length: gamma || c (16) || s (32).
	ProofSize = 80

	// OutputSize is the VRF output (beta) length in bytes.
	OutputSize = vrf.OutputSize

	suiteString = 0x04
	oneString   = 0x01
	twoString   = 0x02
	threeString = 0x03
)

// ErrVerificationFailed is returned when a proof does not verify.
var ErrVerificationFailed = errors.New("ietfdraft03: proof verification failed")

// KeyPairFromSeed derives the VRF keypair from a 32-byte seed.
func KeyPairFromSeed(seed []byte) (sk, pk []byte, err error) {
	return vrf.KeyPairFromSeed(seed)
}

// Prove evaluates the VRF with secret key sk on alpha and returns the
// 80-byte proof pi. The proof is deterministic: proving the same message
// twice yields identical bytes.
func Prove(sk, alpha []byte) ([]byte, error) {
	x, prefix, err := vrf.ExpandSecretKey(sk)
	if err != nil {
		return nil, err
	}
	pk := sk[vrf.SeedSize:]

	// H = hash_to_curve(pk, alpha)
	H, err := hashToCurve(pk, alpha)
	if err != nil {
		return nil, err
	}
	hString := H.Bytes()

	// Gamma = x*H
	gamma := edwards25519.NewIdentityPoint().ScalarMult(x, H)

	// k = sha512(prefix || H) mod L
	var nonceInput = make([]byte, 0, 32+32)
	nonceInput = append(nonceInput, prefix...)
	nonceInput = append(nonceInput, hString...)
	nonceDigest := sha512.Sum512(nonceInput)
	k, err := edwards25519.NewScalar().SetUniformBytes(nonceDigest[:])
	if err != nil {
		return nil, fmt.Errorf("ietfdraft03: nonce scalar: %w", err)
	}
	for i := range nonceInput {
		nonceInput[i] = 0
	}

	// c = hash_points(H, Gamma, k*B, k*H)
	kB := edwards25519.NewIdentityPoint().ScalarBaseMult(k)
	kH := edwards25519.NewIdentityPoint().ScalarMult(k, H)
	c := hashPoints(hString, gamma.Bytes(), kB.Bytes(), kH.Bytes())

	// s = k + c*x mod L
	s := edwards25519.NewScalar().Multiply(c, x)
	s.Add(s, k)

	// pi = Gamma || c[:16] || s
	var pi = make([]byte, 0, ProofSize)
	pi = append(pi, gamma.Bytes()...)
	pi = append(pi, c.Bytes()[:16]...)
	pi = append(pi, s.Bytes()...)
	return pi, nil
}

// Verify checks proof pi for public key pk and message alpha, returning the
// 64-byte VRF output beta on success.
func Verify(pk, pi, alpha []byte) ([]byte, error) {
	if len(pi) != ProofSize {
		return nil, fmt.Errorf("ietfdraft03: bad proof length %d, want %d", len(pi), ProofSize)
	}
	Y, err := vrf.DecodePublicKey(pk)
	if err != nil {
		return nil, err
	}
	gamma, c, s, err := decodeProof(pi)
	if err != nil {
		return nil, err
	}

	// H = hash_to_curve(pk, alpha)
	H, err := hashToCurve(pk, alpha)
	if err != nil {
		return nil, err
	}

	// U = s*B - c*Y
	negY := edwards25519.NewIdentityPoint().Negate(Y)
	U := edwards25519.NewIdentityPoint().VarTimeDoubleScalarBaseMult(c, negY, s)

	// V = s*H - c*Gamma
	negGamma := edwards25519.NewIdentityPoint().Negate(gamma)
	V := edwards25519.NewIdentityPoint().VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{s, c},
		[]*edwards25519.Point{H, negGamma},
	)

	// c' must round-trip through the transcript
	cPrime := hashPoints(H.Bytes(), pi[:32], U.Bytes(), V.Bytes())
	if c.Equal(cPrime) == 0 {
		return nil, ErrVerificationFailed
	}
	return gammaToHash(gamma), nil
}

// ProofToHash converts a proof to its 64-byte VRF output without verifying
// it. Run it only on proofs known to come from Prove, or inside Verify.
func ProofToHash(pi []byte) ([]byte, error) {
	if len(pi) != ProofSize {
		return nil, fmt.Errorf("ietfdraft03: bad proof length %d, want %d", len(pi), ProofSize)
	}
	gamma, _, _, err := decodeProof(pi)
	if err != nil {
		return nil, err
	}
	return gammaToHash(gamma), nil
}

// hashToCurve maps (pk, alpha) to a curve point:
//
//	r = sha512(suite || 0x01 || pk || alpha)[:32], sign bit cleared
//	H = elligator2(r)
func hashToCurve(pk, alpha []byte) (*edwards25519.Point, error) {
	h := sha512.New()
	h.Write([]byte{suiteString, oneString})
	h.Write(pk)
	h.Write(alpha)
	var r = h.Sum(nil)[:32]
	r[31] &= 0x7f
	return vrf.PointFromUniform(r)
}

// hashPoints computes the 16-byte challenge over the transcript
// suite || 0x02 || H || Gamma || U || V, zero-extended to a scalar.
func hashPoints(h, gamma, u, v []byte) *edwards25519.Scalar {
	d := sha512.New()
	d.Write([]byte{suiteString, twoString})
	d.Write(h)
	d.Write(gamma)
	d.Write(u)
	d.Write(v)
	digest := d.Sum(nil)

	var cString [32]byte
	copy(cString[:16], digest[:16])
	c, err := edwards25519.NewScalar().SetCanonicalBytes(cString[:])
	if err != nil {
		// 16 bytes zero-extended are always below the group order.
		panic("ietfdraft03: challenge scalar: " + err.Error())
	}
	return c
}

// gammaToHash computes beta = sha512(suite || 0x03 || cofactor*Gamma).
func gammaToHash(gamma *edwards25519.Point) []byte {
	cG := edwards25519.NewIdentityPoint().MultByCofactor(gamma)
	h := sha512.New()
	h.Write([]byte{suiteString, threeString})
	h.Write(cG.Bytes())
	return h.Sum(nil)
}

func decodeProof(pi []byte) (gamma *edwards25519.Point, c, s *edwards25519.Scalar, err error) {
	gamma, err = edwards25519.NewIdentityPoint().SetBytes(pi[:32])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ietfdraft03: invalid gamma: %w", err)
	}
	if subtle.ConstantTimeCompare(gamma.Bytes(), pi[:32]) != 1 {
		return nil, nil, nil, errors.New("ietfdraft03: non-canonical gamma")
	}

	var cString [32]byte
	copy(cString[:16], pi[32:48])
	c, err = edwards25519.NewScalar().SetCanonicalBytes(cString[:])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ietfdraft03: invalid challenge: %w", err)
	}

	s, err = edwards25519.NewScalar().SetCanonicalBytes(pi[48:])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ietfdraft03: invalid response scalar: %w", err)
	}
	return gamma, c, s, nil
}
