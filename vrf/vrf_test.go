package vrf

import (
	"crypto/ed25519"
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/require"
)

func TestKeyPairFromSeed(t *testing.T) {
	var seed = make([]byte, SeedSize)
	seed[0] = 0x42

	sk, pk, err := KeyPairFromSeed(seed)
	require.NoError(t, err)
	require.Len(t, sk, SecretKeySize)
	require.Len(t, pk, PublicKeySize)

	// The layout is the Ed25519 private-key layout: seed || pk.
	require.Equal(t, seed, sk[:SeedSize])
	priv := ed25519.NewKeyFromSeed(seed)
	require.Equal(t, []byte(priv[SeedSize:]), pk)

	_, _, err = KeyPairFromSeed(seed[:16])
	require.Error(t, err)
}

func TestExpandSecretKey(t *testing.T) {
	sk, pk, err := KeyPairFromSeed(make([]byte, SeedSize))
	require.NoError(t, err)

	x, prefix, err := ExpandSecretKey(sk)
	require.NoError(t, err)
	require.Len(t, prefix, 32)

	// x*B must reproduce the public key.
	xB := edwards25519.NewIdentityPoint().ScalarBaseMult(x)
	require.Equal(t, pk, xB.Bytes())
}

func TestDecodePublicKeyRejectsSmallOrder(t *testing.T) {
	// The identity element is a canonical encoding of a small-order point.
	identity := edwards25519.NewIdentityPoint().Bytes()
	_, err := DecodePublicKey(identity)
	require.Error(t, err)
}

func TestPointFromUniformDeterministic(t *testing.T) {
	var r = make([]byte, 32)
	for i := range r {
		r[i] = byte(i)
	}

	p1, err := PointFromUniform(r)
	require.NoError(t, err)
	p2, err := PointFromUniform(r)
	require.NoError(t, err)
	require.Equal(t, p1.Bytes(), p2.Bytes())

	// Different inputs land on different points.
	r[0] ^= 0xFF
	p3, err := PointFromUniform(r)
	require.NoError(t, err)
	require.NotEqual(t, p1.Bytes(), p3.Bytes())

	_, err = PointFromUniform(r[:16])
	require.Error(t, err)
}

func TestPointFromUniformNotIdentity(t *testing.T) {
	var r = make([]byte, 32)
	for fill := 0; fill < 8; fill++ {
		for i := range r {
			r[i] = byte(fill*31 + i)
		}
		p, err := PointFromUniform(r)
		require.NoError(t, err)
		require.Zero(t, p.Equal(edwards25519.NewIdentityPoint()))
	}
}
