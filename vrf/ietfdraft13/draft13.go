// Package ietfdraft13 implements the batch-compatible ECVRF variant of
// draft-irtf-cfrg-vrf-13 over edwards25519 with SHA-512 and Elligator2.
//
// Proofs are 128 bytes: gamma || U || V || s, where U = k*B and V = k*H are
// the nonce commitments. Storing the commitments instead of the challenge
// is what makes proofs batch-verifiable; a verifier recomputes the 16-byte
// challenge from them. Relative to draft-03, the public key joins the
// challenge transcript and every transcript gains a trailing zero
// domain-separator byte.
package ietfdraft13

import (
	"crypto/sha512"
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

	// ProofSize is the proof (pi) length: gamma || U || V || s.
	ProofSize = 128

	// OutputSize is the VRF output (beta) length in bytes.
	OutputSize = vrf.OutputSize

	suiteString = 0x04
	oneString   = 0x01
	twoString   = 0x02
	threeString = 0x03
	zeroString  = 0x00
)

// ErrVerificationFailed is returned when a proof does not verify.
var ErrVerificationFailed = errors.New("ietfdraft13: proof verification failed")

// KeyPairFromSeed derives the VRF keypair from a 32-byte seed. Key
// derivation is shared with draft-03; only proofs differ between the two
// suites.
func KeyPairFromSeed(seed []byte) (sk, pk []byte, err error) {
	return vrf.KeyPairFromSeed(seed)
}

// Prove evaluates the VRF with secret key sk on alpha and returns the
// 128-byte batch-compatible proof.
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
		return nil, fmt.Errorf("ietfdraft13: nonce scalar: %w", err)
	}
	for i := range nonceInput {
		nonceInput[i] = 0
	}

	// U = k*B, V = k*H go into the proof; the challenge binds them.
	U := edwards25519.NewIdentityPoint().ScalarBaseMult(k)
	V := edwards25519.NewIdentityPoint().ScalarMult(k, H)
	c := hashPoints(pk, hString, gamma.Bytes(), U.Bytes(), V.Bytes())

	// s = k + c*x mod L
	s := edwards25519.NewScalar().Multiply(c, x)
	s.Add(s, k)

	// pi = Gamma || U || V || s
	var pi = make([]byte, 0, ProofSize)
	pi = append(pi, gamma.Bytes()...)
	pi = append(pi, U.Bytes()...)
	pi = append(pi, V.Bytes()...)
	pi = append(pi, s.Bytes()...)
	return pi, nil
}

// Verify checks proof pi for public key pk and message alpha, returning the
// 64-byte VRF output beta on success.
func Verify(pk, pi, alpha []byte) ([]byte, error) {
	if len(pi) != ProofSize {
		return nil, fmt.Errorf("ietfdraft13: bad proof length %d, want %d", len(pi), ProofSize)
	}
	Y, err := vrf.DecodePublicKey(pk)
	if err != nil {
		return nil, err
	}
	gamma, err := vrf.DecodePoint(pi[:32], "gamma")
	if err != nil {
		return nil, err
	}
	if _, err := vrf.DecodePoint(pi[32:64], "nonce commitment U"); err != nil {
		return nil, err
	}
	if _, err := vrf.DecodePoint(pi[64:96], "nonce commitment V"); err != nil {
		return nil, err
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(pi[96:])
	if err != nil {
		return nil, fmt.Errorf("ietfdraft13: invalid response scalar: %w", err)
	}

	// H = hash_to_curve(pk, alpha)
	H, err := hashToCurve(pk, alpha)
	if err != nil {
		return nil, err
	}

	// c is recomputed from the stored commitments.
	c := hashPoints(pk, H.Bytes(), pi[:32], pi[32:64], pi[64:96])

	// s*B - c*Y must equal U
	negY := edwards25519.NewIdentityPoint().Negate(Y)
	U := edwards25519.NewIdentityPoint().VarTimeDoubleScalarBaseMult(c, negY, s)
	if !equal32(U.Bytes(), pi[32:64]) {
		return nil, ErrVerificationFailed
	}

	// s*H - c*Gamma must equal V
	negGamma := edwards25519.NewIdentityPoint().Negate(gamma)
	V := edwards25519.NewIdentityPoint().VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{s, c},
		[]*edwards25519.Point{H, negGamma},
	)
	if !equal32(V.Bytes(), pi[64:96]) {
		return nil, ErrVerificationFailed
	}

	return gammaToHash(gamma), nil
}

// ProofToHash converts a proof to its 64-byte VRF output without verifying
// it. Run it only on proofs known to come from Prove, or inside Verify.
func ProofToHash(pi []byte) ([]byte, error) {
	if len(pi) != ProofSize {
		return nil, fmt.Errorf("ietfdraft13: bad proof length %d, want %d", len(pi), ProofSize)
	}
	gamma, err := vrf.DecodePoint(pi[:32], "gamma")
	if err != nil {
		return nil, err
	}
	return gammaToHash(gamma), nil
}

// hashToCurve maps (pk, alpha) to a curve point:
//
//	r = sha512(suite || 0x01 || pk || alpha || 0x00)[:32], sign bit cleared
//	H = elligator2(r)
func hashToCurve(pk, alpha []byte) (*edwards25519.Point, error) {
	h := sha512.New()
	h.Write([]byte{suiteString, oneString})
	h.Write(pk)
	h.Write(alpha)
	h.Write([]byte{zeroString})
	var r = h.Sum(nil)[:32]
	r[31] &= 0x7f
	return vrf.PointFromUniform(r)
}

// hashPoints computes the 16-byte challenge over the transcript
// suite || 0x02 || Y || H || Gamma || U || V || 0x00, zero-extended to a
// scalar.
func hashPoints(y, h, gamma, u, v []byte) *edwards25519.Scalar {
	d := sha512.New()
	d.Write([]byte{suiteString, twoString})
	d.Write(y)
	d.Write(h)
	d.Write(gamma)
	d.Write(u)
	d.Write(v)
	d.Write([]byte{zeroString})
	digest := d.Sum(nil)

	var cString [32]byte
	copy(cString[:16], digest[:16])
	c, err := edwards25519.NewScalar().SetCanonicalBytes(cString[:])
	if err != nil {
		panic("ietfdraft13: challenge scalar: " + err.Error())
	}
	return c
}

// gammaToHash computes beta = sha512(suite || 0x03 || cofactor*Gamma || 0x00).
func gammaToHash(gamma *edwards25519.Point) []byte {
	cG := edwards25519.NewIdentityPoint().MultByCofactor(gamma)
	h := sha512.New()
	h.Write([]byte{suiteString, threeString})
	h.Write(cG.Bytes())
	h.Write([]byte{zeroString})
	return h.Sum(nil)
}

func equal32(a, b []byte) bool {
	var v byte
	for i := 0; i < 32; i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
