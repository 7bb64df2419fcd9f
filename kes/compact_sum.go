package kes

import (
	"bytes"
	"fmt"

	"github.com/FractionEstate/Cardano-KES/metrics"
)

// The CompactSum tower over Blake2b256. Period counts match the Sum tower,
// but a CompactSumN signature is 64 + 32*N + 32 bytes instead of
// 64 + 64*N: each level stores only the sibling verification key, because
// the active side's key is already embedded in the child signature.
var (
	CompactSum0 CompactScheme = CompactSingle
	CompactSum1 CompactScheme = NewCompactSum(CompactSum0, Blake2b256)
	CompactSum2 CompactScheme = NewCompactSum(CompactSum1, Blake2b256)
	CompactSum3 CompactScheme = NewCompactSum(CompactSum2, Blake2b256)
	CompactSum4 CompactScheme = NewCompactSum(CompactSum3, Blake2b256)
	CompactSum5 CompactScheme = NewCompactSum(CompactSum4, Blake2b256)
	CompactSum6 CompactScheme = NewCompactSum(CompactSum5, Blake2b256)
	CompactSum7 CompactScheme = NewCompactSum(CompactSum6, Blake2b256)
)

// NewCompactSum composes a compact child into a scheme with twice the
// periods. Signatures carry the sibling verification key only:
//
//	sig = sig_child || vk_sibling
//
// The verifier extracts the active side's key from sig_child, hashes the
// pair in tree order, and compares against the trusted parent key.
func NewCompactSum(child CompactScheme, h Hash) CompactScheme {
	return &compactSumScheme{
		child: child,
		hash:  h,
		name:  mungeName(child.Name()),
	}
}

type compactSumScheme struct {
	child CompactScheme
	hash  Hash
	name  string
}

// compactSumKey mirrors sumKey, except only the sibling verification key is
// stored: vk1 while the key is in the left half, vk0 after it crosses into
// the right. The active side's key is always recomputable from the child.
type compactSumKey struct {
	child     SigningKey
	rightSeed []byte
	vkOther   []byte
}

func (k *compactSumKey) Wipe() {
	if k.child != nil {
		k.child.Wipe()
		k.child = nil
	}
	wipe(k.rightSeed)
	k.rightSeed = nil
}

func (s *compactSumScheme) Name() string { return s.name }

func (s *compactSumScheme) SeedSize() int { return s.hash.Size() }

func (s *compactSumScheme) VerificationKeySize() int { return s.hash.Size() }

func (s *compactSumScheme) SigningKeySize() int {
	return s.child.SigningKeySize() + s.SeedSize() + s.child.VerificationKeySize()
}

func (s *compactSumScheme) SignatureSize() int {
	return s.child.SignatureSize() + s.child.VerificationKeySize()
}

func (s *compactSumScheme) TotalPeriods() Period { return 2 * s.child.TotalPeriods() }

func (s *compactSumScheme) GenKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != s.SeedSize() {
		return nil, wrongLength("compact sum seed", s.SeedSize(), len(seed))
	}

	r0, r1 := ExpandSeed(s.hash, seed)

	skChild, err := s.child.GenKeyFromSeed(r0)
	wipe(r0)
	if err != nil {
		wipe(r1)
		return nil, err
	}

	// Only the sibling key is stored. The key starts on the left, so the
	// sibling is vk1, derived from a throwaway right child.
	skTemp, err := s.child.GenKeyFromSeed(r1)
	if err != nil {
		skChild.Wipe()
		wipe(r1)
		return nil, err
	}
	vk1, err := s.child.DeriveVerificationKey(skTemp)
	skTemp.Wipe()
	if err != nil {
		skChild.Wipe()
		wipe(r1)
		return nil, err
	}

	metrics.RecordSigningKey(s.SigningKeySize())
	return &compactSumKey{child: skChild, rightSeed: r1, vkOther: vk1}, nil
}

func (s *compactSumScheme) DeriveVerificationKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	vkActive, err := s.child.DeriveVerificationKey(k.child)
	if err != nil {
		return nil, err
	}
	if k.rightSeed != nil {
		return HashConcat(s.hash, vkActive, k.vkOther), nil
	}
	return HashConcat(s.hash, k.vkOther, vkActive), nil
}

func (s *compactSumScheme) Sign(ctx Context, period Period, message []byte, sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	total := s.TotalPeriods()
	if period >= total {
		return nil, periodOutOfRange(period, total)
	}
	cur, err := s.currentPeriod(k)
	if err != nil {
		return nil, err
	}
	if period != cur {
		return nil, periodOutOfRange(period, total)
	}

	half := total / 2
	childPeriod := period
	if period >= half {
		childPeriod = period - half
	}
	sigChild, err := s.child.Sign(ctx, childPeriod, message, k.child)
	if err != nil {
		return nil, err
	}

	var sig = make([]byte, 0, s.SignatureSize())
	sig = append(sig, sigChild...)
	sig = append(sig, k.vkOther...)
	metrics.RecordSignature(len(sig))
	return sig, nil
}

func (s *compactSumScheme) Verify(ctx Context, vk []byte, period Period, message, sig []byte) error {
	if len(vk) != s.VerificationKeySize() {
		return wrongLength("compact sum verification key", s.VerificationKeySize(), len(vk))
	}
	if len(sig) != s.SignatureSize() {
		return wrongLength("compact sum signature", s.SignatureSize(), len(sig))
	}
	total := s.TotalPeriods()
	if period >= total {
		return periodOutOfRange(period, total)
	}

	childSigSize := s.child.SignatureSize()
	sigChild := sig[:childSigSize]
	vkOther := sig[childSigSize:]

	half := total / 2
	childPeriod := period
	if period >= half {
		childPeriod = period - half
	}
	vkActive, err := s.child.VerificationKeyFromSignature(childPeriod, sigChild)
	if err != nil {
		return err
	}

	// Rebuild the parent key in tree order and compare with the trusted
	// one; only then descend.
	var rebuilt []byte
	if period < half {
		rebuilt = HashConcat(s.hash, vkActive, vkOther)
	} else {
		rebuilt = HashConcat(s.hash, vkOther, vkActive)
	}
	if !bytes.Equal(rebuilt, vk) {
		return ErrVerificationFailed
	}
	return s.child.Verify(ctx, vkActive, childPeriod, message, sigChild)
}

func (s *compactSumScheme) Update(ctx Context, sk SigningKey, period Period) (SigningKey, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	total := s.TotalPeriods()
	if period >= total {
		k.Wipe()
		return nil, periodOutOfRange(period, total)
	}
	cur, err := s.currentPeriod(k)
	if err != nil {
		k.Wipe()
		return nil, err
	}
	if period != cur {
		k.Wipe()
		return nil, periodOutOfRange(period, total)
	}
	if period+1 == total {
		k.Wipe()
		return nil, nil
	}

	half := total / 2
	switch {
	case period+1 < half:
		if err := s.updateChild(ctx, k, period); err != nil {
			return nil, err
		}

	case period+1 == half:
		// Crossing the boundary. The stored sibling swaps sides: the
		// left child's key replaces vk1, which from now on is carried
		// inside signatures instead.
		vk0, err := s.child.DeriveVerificationKey(k.child)
		if err != nil {
			k.Wipe()
			return nil, err
		}
		skRight, err := s.child.GenKeyFromSeed(k.rightSeed)
		if err != nil {
			k.Wipe()
			return nil, err
		}
		k.child.Wipe()
		k.child = skRight
		wipe(k.rightSeed)
		k.rightSeed = nil
		k.vkOther = vk0

	default:
		if err := s.updateChild(ctx, k, period-half); err != nil {
			return nil, err
		}
	}

	metrics.RecordUpdate()
	return k, nil
}

func (s *compactSumScheme) updateChild(ctx Context, k *compactSumKey, childPeriod Period) error {
	skNew, err := s.child.Update(ctx, k.child, childPeriod)
	if err != nil {
		k.Wipe()
		return err
	}
	if skNew == nil {
		k.Wipe()
		return fmt.Errorf("kes: %s: child expired before subtree boundary", s.name)
	}
	k.child = skNew
	return nil
}

func (s *compactSumScheme) VerificationKeyFromSignature(period Period, sig []byte) ([]byte, error) {
	if len(sig) != s.SignatureSize() {
		return nil, wrongLength("compact sum signature", s.SignatureSize(), len(sig))
	}
	total := s.TotalPeriods()
	if period >= total {
		return nil, periodOutOfRange(period, total)
	}

	childSigSize := s.child.SignatureSize()
	sigChild := sig[:childSigSize]
	vkOther := sig[childSigSize:]

	half := total / 2
	if period < half {
		vkActive, err := s.child.VerificationKeyFromSignature(period, sigChild)
		if err != nil {
			return nil, err
		}
		return HashConcat(s.hash, vkActive, vkOther), nil
	}
	vkActive, err := s.child.VerificationKeyFromSignature(period-half, sigChild)
	if err != nil {
		return nil, err
	}
	return HashConcat(s.hash, vkOther, vkActive), nil
}

func (s *compactSumScheme) ParseVerificationKey(b []byte) ([]byte, error) {
	return parseExact(b, s.VerificationKeySize(), "compact sum verification key")
}

func (s *compactSumScheme) ParseSignature(b []byte) ([]byte, error) {
	return parseExact(b, s.SignatureSize(), "compact sum signature")
}

func (s *compactSumScheme) currentPeriod(sk SigningKey) (Period, error) {
	k, err := s.key(sk)
	if err != nil {
		return 0, err
	}
	childCur, err := s.child.currentPeriod(k.child)
	if err != nil {
		return 0, err
	}
	if k.rightSeed != nil {
		return childCur, nil
	}
	return s.TotalPeriods()/2 + childCur, nil
}

func (s *compactSumScheme) serializeSigningKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	skChild, err := s.child.serializeSigningKey(k.child)
	if err != nil {
		return nil, err
	}

	// sk_child || r1 || vk_sibling; a consumed right seed serializes as
	// zeros.
	var out = make([]byte, 0, s.SigningKeySize())
	out = append(out, skChild...)
	if k.rightSeed != nil {
		out = append(out, k.rightSeed...)
	} else {
		out = append(out, make([]byte, s.SeedSize())...)
	}
	out = append(out, k.vkOther...)
	wipe(skChild)
	return out, nil
}

func (s *compactSumScheme) deserializeSigningKey(b []byte) (SigningKey, error) {
	if len(b) != s.SigningKeySize() {
		return nil, wrongLength("compact sum signing key", s.SigningKeySize(), len(b))
	}
	childSize := s.child.SigningKeySize()
	seedSize := s.SeedSize()

	skChild, err := s.child.deserializeSigningKey(b[:childSize])
	if err != nil {
		return nil, err
	}
	var k = &compactSumKey{
		child:   skChild,
		vkOther: append([]byte(nil), b[childSize+seedSize:]...),
	}
	seed := b[childSize : childSize+seedSize]
	if !bytes.Equal(seed, make([]byte, seedSize)) {
		k.rightSeed = append([]byte(nil), seed...)
	}
	return k, nil
}

func (s *compactSumScheme) key(sk SigningKey) (*compactSumKey, error) {
	k, ok := sk.(*compactSumKey)
	if !ok {
		return nil, errWrongKeyType(s.name)
	}
	if k.child == nil {
		return nil, ErrKeyExpired
	}
	return k, nil
}
