package kes

import (
	"bytes"
	"fmt"

	"github.com/FractionEstate/Cardano-KES/metrics"
)

// The Sum tower over Blake2b256: Sum0 is Single (1 period), and each level
// doubles the period count. Sum6 (64 periods) is the scheme used for block
// signing on mainnet; Sum7 (128 periods) is the largest standard instance.
var (
	Sum0 Scheme = Single
	Sum1 Scheme = NewSum(Sum0, Blake2b256)
	Sum2 Scheme = NewSum(Sum1, Blake2b256)
	Sum3 Scheme = NewSum(Sum2, Blake2b256)
	Sum4 Scheme = NewSum(Sum3, Blake2b256)
	Sum5 Scheme = NewSum(Sum4, Blake2b256)
	Sum6 Scheme = NewSum(Sum5, Blake2b256)
	Sum7 Scheme = NewSum(Sum6, Blake2b256)
)

// NewSum composes child into a scheme with twice the periods. The parent
// verification key is h(vk0 || vk1) over the two child keys, and a parent
// signature is the child signature extended with that key pair:
//
//	sig = sig_child || vk0 || vk1
//
// so a verifier can rebuild the parent key and then descend into the child.
func NewSum(child Scheme, h Hash) Scheme {
	return &sumScheme{
		child: child,
		hash:  h,
		name:  mungeName(child.Name()),
	}
}

type sumScheme struct {
	child Scheme
	hash  Hash
	name  string
}

// sumKey is one node of the in-memory key tree.
//
// While the key is in the left half of its period range, child is the left
// child key and rightSeed holds the seed of the still-unborn right subtree.
// Crossing the halfway boundary consumes rightSeed: the right child is built
// from it, the old child and the seed are wiped, and rightSeed becomes nil.
// Which half the key is in is therefore readable off the struct itself.
type sumKey struct {
	child     SigningKey
	rightSeed []byte
	vk0       []byte
	vk1       []byte
}

func (k *sumKey) Wipe() {
	if k.child != nil {
		k.child.Wipe()
		k.child = nil
	}
	wipe(k.rightSeed)
	k.rightSeed = nil
}

func (s *sumScheme) Name() string { return s.name }

func (s *sumScheme) SeedSize() int { return s.hash.Size() }

func (s *sumScheme) VerificationKeySize() int { return s.hash.Size() }

func (s *sumScheme) SigningKeySize() int {
	return s.child.SigningKeySize() + s.SeedSize() + 2*s.child.VerificationKeySize()
}

func (s *sumScheme) SignatureSize() int {
	return s.child.SignatureSize() + 2*s.child.VerificationKeySize()
}

func (s *sumScheme) TotalPeriods() Period { return 2 * s.child.TotalPeriods() }

func (s *sumScheme) GenKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != s.SeedSize() {
		return nil, wrongLength("sum seed", s.SeedSize(), len(seed))
	}

	// (r0, r1) = expand(seed); the left subtree is built now, the right
	// subtree stays a seed until the key evolves into it.
	r0, r1 := ExpandSeed(s.hash, seed)

	skChild, err := s.child.GenKeyFromSeed(r0)
	wipe(r0)
	if err != nil {
		wipe(r1)
		return nil, err
	}
	vk0, err := s.child.DeriveVerificationKey(skChild)
	if err != nil {
		skChild.Wipe()
		wipe(r1)
		return nil, err
	}

	// vk1 comes from a throwaway right child: build, read the key, wipe.
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
	return &sumKey{child: skChild, rightSeed: r1, vk0: vk0, vk1: vk1}, nil
}

func (s *sumScheme) DeriveVerificationKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	return HashConcat(s.hash, k.vk0, k.vk1), nil
}

func (s *sumScheme) Sign(ctx Context, period Period, message []byte, sk SigningKey) ([]byte, error) {
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
		// The key has evolved past (or not yet reached) this period.
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
	sig = append(sig, k.vk0...)
	sig = append(sig, k.vk1...)
	metrics.RecordSignature(len(sig))
	return sig, nil
}

func (s *sumScheme) Verify(ctx Context, vk []byte, period Period, message, sig []byte) error {
	if len(vk) != s.VerificationKeySize() {
		return wrongLength("sum verification key", s.VerificationKeySize(), len(vk))
	}
	if len(sig) != s.SignatureSize() {
		return wrongLength("sum signature", s.SignatureSize(), len(sig))
	}
	total := s.TotalPeriods()
	if period >= total {
		return periodOutOfRange(period, total)
	}

	childSigSize := s.child.SignatureSize()
	vkSize := s.child.VerificationKeySize()
	sigChild := sig[:childSigSize]
	vk0 := sig[childSigSize : childSigSize+vkSize]
	vk1 := sig[childSigSize+vkSize:]

	// The claimed child key pair must hash to the verification key the
	// caller trusts.
	if !bytes.Equal(HashConcat(s.hash, vk0, vk1), vk) {
		return ErrVerificationFailed
	}

	half := total / 2
	if period < half {
		return s.child.Verify(ctx, vk0, period, message, sigChild)
	}
	return s.child.Verify(ctx, vk1, period-half, message, sigChild)
}

func (s *sumScheme) Update(ctx Context, sk SigningKey, period Period) (SigningKey, error) {
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
		// Expired: nothing left to evolve into.
		k.Wipe()
		return nil, nil
	}

	half := total / 2
	switch {
	case period+1 < half:
		// Still inside the left subtree.
		if err := s.updateChild(ctx, k, period); err != nil {
			return nil, err
		}

	case period+1 == half:
		// Crossing the boundary: the right child is born from the
		// reserved seed, then the spent left child and the seed are
		// destroyed.
		skRight, err := s.child.GenKeyFromSeed(k.rightSeed)
		if err != nil {
			k.Wipe()
			return nil, err
		}
		k.child.Wipe()
		k.child = skRight
		wipe(k.rightSeed)
		k.rightSeed = nil

	default:
		// Inside the right subtree.
		if err := s.updateChild(ctx, k, period-half); err != nil {
			return nil, err
		}
	}

	metrics.RecordUpdate()
	return k, nil
}

// updateChild evolves the child key at its local period. The child cannot
// expire here: expiry of the child coincides with a boundary crossing or
// with expiry of this scheme, both handled by the caller.
func (s *sumScheme) updateChild(ctx Context, k *sumKey, childPeriod Period) error {
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

func (s *sumScheme) ParseVerificationKey(b []byte) ([]byte, error) {
	return parseExact(b, s.VerificationKeySize(), "sum verification key")
}

func (s *sumScheme) ParseSignature(b []byte) ([]byte, error) {
	return parseExact(b, s.SignatureSize(), "sum signature")
}

func (s *sumScheme) currentPeriod(sk SigningKey) (Period, error) {
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

func (s *sumScheme) serializeSigningKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	skChild, err := s.child.serializeSigningKey(k.child)
	if err != nil {
		return nil, err
	}

	// sk_child || r1 || vk0 || vk1; a consumed right seed serializes as
	// zeros.
	var out = make([]byte, 0, s.SigningKeySize())
	out = append(out, skChild...)
	if k.rightSeed != nil {
		out = append(out, k.rightSeed...)
	} else {
		out = append(out, make([]byte, s.SeedSize())...)
	}
	out = append(out, k.vk0...)
	out = append(out, k.vk1...)
	wipe(skChild)
	return out, nil
}

func (s *sumScheme) deserializeSigningKey(b []byte) (SigningKey, error) {
	if len(b) != s.SigningKeySize() {
		return nil, wrongLength("sum signing key", s.SigningKeySize(), len(b))
	}
	childSize := s.child.SigningKeySize()
	seedSize := s.SeedSize()
	vkSize := s.child.VerificationKeySize()

	skChild, err := s.child.deserializeSigningKey(b[:childSize])
	if err != nil {
		return nil, err
	}
	var k = &sumKey{
		child: skChild,
		vk0:   append([]byte(nil), b[childSize+seedSize:childSize+seedSize+vkSize]...),
		vk1:   append([]byte(nil), b[childSize+seedSize+vkSize:]...),
	}
	seed := b[childSize : childSize+seedSize]
	if !bytes.Equal(seed, make([]byte, seedSize)) {
		k.rightSeed = append([]byte(nil), seed...)
	}
	return k, nil
}

func (s *sumScheme) key(sk SigningKey) (*sumKey, error) {
	k, ok := sk.(*sumKey)
	if !ok {
		return nil, errWrongKeyType(s.name)
	}
	if k.child == nil {
		return nil, ErrKeyExpired
	}
	return k, nil
}
