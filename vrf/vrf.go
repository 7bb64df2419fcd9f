// Package vrf holds the material shared by the two ECVRF suites used for
// slot-leader election: key derivation from a seed, expansion of the secret
// key into its signing scalar and nonce prefix, and the Elligator2 map both
// suites build their hash-to-curve on.
//
// The concrete suites live in the subpackages ietfdraft03 (80-byte proofs,
// the original chain format) and ietfdraft13 (128-byte batch-compatible
// proofs).
package vrf

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// SeedSize is the secret seed length in bytes.
	SeedSize = 32

	// SecretKeySize is the secret key length: seed || public key.
	SecretKeySize = 64

	// PublicKeySize is the public key length in bytes.
	PublicKeySize = 32

	// OutputSize is the VRF output (beta) length in bytes.
	OutputSize = sha512.Size
)

// KeyPairFromSeed derives the VRF keypair from a 32-byte seed. The secret
// key is the seed concatenated with the public key, exactly the Ed25519
// private-key layout, so VRF keys interoperate with Ed25519 tooling.
func KeyPairFromSeed(seed []byte) (sk, pk []byte, err error) {
	if len(seed) != SeedSize {
		return nil, nil, fmt.Errorf("vrf: bad seed length %d, want %d", len(seed), SeedSize)
	}
	var priv = ed25519.NewKeyFromSeed(seed)
	sk = make([]byte, SecretKeySize)
	copy(sk, priv)
	pk = make([]byte, PublicKeySize)
	copy(pk, sk[SeedSize:])
	return sk, pk, nil
}

// ExpandSecretKey splits sha512(seed) into the clamped secret scalar x and
// the 32-byte nonce prefix used for deterministic nonce generation.
func ExpandSecretKey(sk []byte) (x *edwards25519.Scalar, prefix []byte, err error) {
	if len(sk) != SecretKeySize {
		return nil, nil, fmt.Errorf("vrf: bad secret key length %d, want %d", len(sk), SecretKeySize)
	}

	// (x || prefix) = sha512(seed), with x clamped as in Ed25519
	var digest = sha512.Sum512(sk[:SeedSize])
	x, err = edwards25519.NewScalar().SetBytesWithClamping(digest[:32])
	if err != nil {
		return nil, nil, fmt.Errorf("vrf: secret scalar: %w", err)
	}
	prefix = make([]byte, 32)
	copy(prefix, digest[32:])
	for i := range digest {
		digest[i] = 0
	}
	return x, prefix, nil
}

// DecodePublicKey decodes and validates a public key for verification: the
// encoding must be canonical and the point must not be of small order.
func DecodePublicKey(pk []byte) (*edwards25519.Point, error) {
	if len(pk) != PublicKeySize {
		return nil, fmt.Errorf("vrf: bad public key length %d, want %d", len(pk), PublicKeySize)
	}
	Y, err := edwards25519.NewIdentityPoint().SetBytes(pk)
	if err != nil {
		return nil, fmt.Errorf("vrf: invalid public key: %w", err)
	}
	// SetBytes accepts a few non-canonical encodings; re-encode to reject
	// them, then rule out the small-order subgroup.
	if !equalBytes(Y.Bytes(), pk) {
		return nil, fmt.Errorf("vrf: non-canonical public key")
	}
	cY := edwards25519.NewIdentityPoint().MultByCofactor(Y)
	if cY.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return nil, fmt.Errorf("vrf: public key has small order")
	}
	return Y, nil
}

// DecodePoint decodes a canonical point encoding (used for proof elements).
func DecodePoint(b []byte, what string) (*edwards25519.Point, error) {
	P, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("vrf: invalid %s: %w", what, err)
	}
	if !equalBytes(P.Bytes(), b) {
		return nil, fmt.Errorf("vrf: non-canonical %s", what)
	}
	return P, nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
