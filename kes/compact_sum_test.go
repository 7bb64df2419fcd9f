package kes

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactSumSchemeSizes(t *testing.T) {
	cases := []struct {
		scheme  CompactScheme
		periods Period
		sigSize int
		skSize  int
	}{
		{CompactSum0, 1, 96, 32},
		{CompactSum1, 2, 128, 96},
		{CompactSum2, 4, 160, 160},
		{CompactSum6, 64, 288, 416},
		{CompactSum7, 128, 320, 480},
	}
	for _, c := range cases {
		require.Equal(t, c.periods, c.scheme.TotalPeriods(), c.scheme.Name())
		require.Equal(t, c.sigSize, c.scheme.SignatureSize(), c.scheme.Name())
		require.Equal(t, c.skSize, c.scheme.SigningKeySize(), c.scheme.Name())
	}
}

// A CompactSumN signature saves one verification key per tree level over
// the plain SumN signature, less the one key the compact leaf signature
// embeds: N-1 keys in all.
func TestCompactSignaturesAreSmaller(t *testing.T) {
	require.Equal(t, Sum6.SignatureSize()-CompactSum6.SignatureSize(), 5*32)
}

func TestCompactSum2Walk(t *testing.T) {
	var ctx Context
	seed := testSeed(0x50)

	sk, err := CompactSum2.GenKeyFromSeed(seed)
	require.NoError(t, err)
	vk, err := CompactSum2.DeriveVerificationKey(sk)
	require.NoError(t, err)

	for period := Period(0); period < 4; period++ {
		message := []byte(fmt.Sprintf("Block at period %d", period))

		sig, err := CompactSum2.Sign(ctx, period, message, sk)
		require.NoError(t, err)
		require.Len(t, sig, 160)
		require.NoError(t, CompactSum2.Verify(ctx, vk, period, message, sig))

		// The whole point of the compact scheme: the parent key is
		// recomputable from the signature alone.
		rebuilt, err := CompactSum2.VerificationKeyFromSignature(period, sig)
		require.NoError(t, err)
		require.Equal(t, vk, rebuilt)

		if period < 3 {
			sk, err = CompactSum2.Update(ctx, sk, period)
			require.NoError(t, err)
		}
	}
}

// The stored sibling key swaps sides when the key crosses the halfway
// boundary; the verification key must be unaffected.
func TestCompactSumSiblingSwap(t *testing.T) {
	var ctx Context
	seed := testSeed(0x51)

	sk, err := CompactSum1.GenKeyFromSeed(seed)
	require.NoError(t, err)
	vk, err := CompactSum1.DeriveVerificationKey(sk)
	require.NoError(t, err)

	sk, err = CompactSum1.Update(ctx, sk, 0)
	require.NoError(t, err)

	vkAfter, err := CompactSum1.DeriveVerificationKey(sk)
	require.NoError(t, err)
	require.Equal(t, vk, vkAfter)

	sig, err := CompactSum1.Sign(ctx, 1, []byte("right side"), sk)
	require.NoError(t, err)
	require.NoError(t, CompactSum1.Verify(ctx, vk, 1, []byte("right side"), sig))
}

func TestCompactSum6Evolution(t *testing.T) {
	var ctx Context
	seed := testSeed(0x52)

	sk, err := CompactSum6.GenKeyFromSeed(seed)
	require.NoError(t, err)
	vk, err := CompactSum6.DeriveVerificationKey(sk)
	require.NoError(t, err)

	type signed struct {
		period  Period
		message []byte
		sig     []byte
	}
	var history []signed

	for period := Period(0); period < 63; period++ {
		message := []byte(fmt.Sprintf("Period %d message", period))
		sig, err := CompactSum6.Sign(ctx, period, message, sk)
		require.NoError(t, err)
		history = append(history, signed{period, message, sig})

		sk, err = CompactSum6.Update(ctx, sk, period)
		require.NoError(t, err)
		require.NotNil(t, sk)
	}

	message := []byte("Period 63 message")
	sig, err := CompactSum6.Sign(ctx, 63, message, sk)
	require.NoError(t, err)
	require.NoError(t, CompactSum6.Verify(ctx, vk, 63, message, sig))

	for _, h := range history {
		require.NoError(t, CompactSum6.Verify(ctx, vk, h.period, h.message, h.sig))
	}
}

func TestCompactSumCrossPeriodRejection(t *testing.T) {
	var ctx Context
	sk, err := CompactSum2.GenKeyFromSeed(testSeed(0x53))
	require.NoError(t, err)
	vk, err := CompactSum2.DeriveVerificationKey(sk)
	require.NoError(t, err)

	message := []byte("period mismatch test")
	sig, err := CompactSum2.Sign(ctx, 0, message, sk)
	require.NoError(t, err)

	require.NoError(t, CompactSum2.Verify(ctx, vk, 0, message, sig))
	for _, wrong := range []Period{1, 2, 3} {
		require.Error(t, CompactSum2.Verify(ctx, vk, wrong, message, sig))
	}
}

func TestCompactSumTamperRejection(t *testing.T) {
	var ctx Context
	sk, err := CompactSum1.GenKeyFromSeed(testSeed(0x54))
	require.NoError(t, err)
	vk, err := CompactSum1.DeriveVerificationKey(sk)
	require.NoError(t, err)

	message := []byte("tamper test")
	sig, err := CompactSum1.Sign(ctx, 0, message, sk)
	require.NoError(t, err)

	require.ErrorIs(t, CompactSum1.Verify(ctx, vk, 0, []byte("other message"), sig), ErrVerificationFailed)

	for _, i := range []int{0, 70, 100, 127} {
		mangled := append([]byte(nil), sig...)
		mangled[i] ^= 0x01
		require.Error(t, CompactSum1.Verify(ctx, vk, 0, message, mangled), "byte %d", i)
	}
}

func TestCompactSumForwardSecurity(t *testing.T) {
	var ctx Context
	seed := testSeed(0x55)

	r0, _ := ExpandSeed(Blake2b256, seed)

	sk, err := CompactSum1.GenKeyFromSeed(seed)
	require.NoError(t, err)

	// Cross the boundary; the left leaf key (r0) must be erased.
	sk, err = CompactSum1.Update(ctx, sk, 0)
	require.NoError(t, err)

	raw, err := UnsoundSerializeSigningKey(CompactSum1, sk)
	require.NoError(t, err)
	require.False(t, bytes.Contains(raw, seed))
	require.False(t, bytes.Contains(raw, r0))

	_, err = CompactSum1.Sign(ctx, 0, []byte("m"), sk)
	var perr *PeriodOutOfRangeError
	require.ErrorAs(t, err, &perr)
}

func TestCompactSumUnsoundRoundTrip(t *testing.T) {
	var ctx Context
	sk, err := CompactSum2.GenKeyFromSeed(testSeed(0x56))
	require.NoError(t, err)
	vk, err := CompactSum2.DeriveVerificationKey(sk)
	require.NoError(t, err)

	for period := Period(0); period < 3; period++ {
		sk, err = CompactSum2.Update(ctx, sk, period)
		require.NoError(t, err)
	}

	raw, err := UnsoundSerializeSigningKey(CompactSum2, sk)
	require.NoError(t, err)
	require.Len(t, raw, CompactSum2.SigningKeySize())

	sk2, err := UnsoundDeserializeSigningKey(CompactSum2, raw)
	require.NoError(t, err)

	cur, err := CurrentPeriod(CompactSum2, sk2)
	require.NoError(t, err)
	require.Equal(t, Period(3), cur)

	sig, err := CompactSum2.Sign(ctx, 3, []byte("restored"), sk2)
	require.NoError(t, err)
	require.NoError(t, CompactSum2.Verify(ctx, vk, 3, []byte("restored"), sig))
}

func TestCompactSumExpiration(t *testing.T) {
	var ctx Context
	sk, err := CompactSum1.GenKeyFromSeed(testSeed(0x57))
	require.NoError(t, err)

	sk, err = CompactSum1.Update(ctx, sk, 0)
	require.NoError(t, err)

	next, err := CompactSum1.Update(ctx, sk, 1)
	require.NoError(t, err)
	require.Nil(t, next)

	_, err = CompactSum1.Sign(ctx, 1, []byte("m"), sk)
	require.ErrorIs(t, err, ErrKeyExpired)
}
