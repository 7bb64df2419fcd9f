package kes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactSingleSignVerify(t *testing.T) {
	var ctx Context
	sk, err := CompactSingle.GenKeyFromSeed(testSeed(0x42))
	require.NoError(t, err)
	vk, err := CompactSingle.DeriveVerificationKey(sk)
	require.NoError(t, err)

	message := []byte("compact single message")
	sig, err := CompactSingle.Sign(ctx, 0, message, sk)
	require.NoError(t, err)
	require.Len(t, sig, 96)

	require.NoError(t, CompactSingle.Verify(ctx, vk, 0, message, sig))
	require.ErrorIs(t, CompactSingle.Verify(ctx, vk, 0, []byte("other"), sig), ErrVerificationFailed)
}

func TestCompactSingleEmbeddedKey(t *testing.T) {
	var ctx Context
	sk, err := CompactSingle.GenKeyFromSeed(testSeed(0x43))
	require.NoError(t, err)
	vk, err := CompactSingle.DeriveVerificationKey(sk)
	require.NoError(t, err)

	sig, err := CompactSingle.Sign(ctx, 0, []byte("m"), sk)
	require.NoError(t, err)

	// The trailing 32 bytes are the signer's verification key.
	embedded, err := CompactSingle.VerificationKeyFromSignature(0, sig)
	require.NoError(t, err)
	require.Equal(t, vk, embedded)
	require.Equal(t, vk, sig[64:])
}

func TestCompactSingleRejectsForeignEmbeddedKey(t *testing.T) {
	var ctx Context
	sk, err := CompactSingle.GenKeyFromSeed(testSeed(0x44))
	require.NoError(t, err)
	vk, err := CompactSingle.DeriveVerificationKey(sk)
	require.NoError(t, err)

	skOther, err := CompactSingle.GenKeyFromSeed(testSeed(0x45))
	require.NoError(t, err)
	vkOther, err := CompactSingle.DeriveVerificationKey(skOther)
	require.NoError(t, err)

	sig, err := CompactSingle.Sign(ctx, 0, []byte("m"), sk)
	require.NoError(t, err)

	// Swapping in another signer's key must fail: both against the
	// original key (embedded mismatch) and against the foreign key
	// (signature mismatch).
	mangled := append(append([]byte(nil), sig[:64]...), vkOther...)
	require.ErrorIs(t, CompactSingle.Verify(ctx, vk, 0, []byte("m"), mangled), ErrVerificationFailed)
	require.ErrorIs(t, CompactSingle.Verify(ctx, vkOther, 0, []byte("m"), mangled), ErrVerificationFailed)
}

func TestCompactSingleUpdateExpires(t *testing.T) {
	var ctx Context
	sk, err := CompactSingle.GenKeyFromSeed(testSeed(0x46))
	require.NoError(t, err)

	next, err := CompactSingle.Update(ctx, sk, 0)
	require.NoError(t, err)
	require.Nil(t, next)

	_, err = CompactSingle.Sign(ctx, 0, []byte("m"), sk)
	require.ErrorIs(t, err, ErrKeyExpired)
}
