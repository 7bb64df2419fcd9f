package kes

import (
	"crypto/ed25519"

	"github.com/FractionEstate/Cardano-KES/metrics"
)

// Single is the one-period KES scheme: a thin wrapper over Ed25519. It is
// the base case (Sum0) of the Sum tower. Only period 0 is valid, and Update
// always expires the key.
var Single Scheme = singleScheme{}

type singleScheme struct{}

// singleKey stores the 32-byte Ed25519 seed; the expanded private key is
// rebuilt on use and wiped again immediately.
type singleKey struct {
	seed []byte
}

func (k *singleKey) Wipe() {
	wipe(k.seed)
	k.seed = nil
}

func (singleScheme) Name() string { return "single_ed25519" }

func (singleScheme) SeedSize() int { return ed25519.SeedSize }

func (singleScheme) VerificationKeySize() int { return ed25519.PublicKeySize }

func (singleScheme) SigningKeySize() int { return ed25519.SeedSize }

func (singleScheme) SignatureSize() int { return ed25519.SignatureSize }

func (singleScheme) TotalPeriods() Period { return 1 }

func (s singleScheme) GenKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != s.SeedSize() {
		return nil, wrongLength("single seed", s.SeedSize(), len(seed))
	}
	var k = &singleKey{seed: make([]byte, s.SeedSize())}
	copy(k.seed, seed)
	metrics.RecordSigningKey(s.SigningKeySize())
	return k, nil
}

func (s singleScheme) DeriveVerificationKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	var priv = ed25519.NewKeyFromSeed(k.seed)
	var vk = make([]byte, ed25519.PublicKeySize)
	copy(vk, priv[ed25519.SeedSize:])
	wipe(priv)
	return vk, nil
}

func (s singleScheme) Sign(_ Context, period Period, message []byte, sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	if period != 0 {
		return nil, periodOutOfRange(period, 1)
	}
	var priv = ed25519.NewKeyFromSeed(k.seed)
	var sig = ed25519.Sign(priv, message)
	wipe(priv)
	metrics.RecordSignature(len(sig))
	return sig, nil
}

func (s singleScheme) Verify(_ Context, vk []byte, period Period, message, sig []byte) error {
	if len(vk) != s.VerificationKeySize() {
		return wrongLength("single verification key", s.VerificationKeySize(), len(vk))
	}
	if len(sig) != s.SignatureSize() {
		return wrongLength("single signature", s.SignatureSize(), len(sig))
	}
	if period != 0 {
		return periodOutOfRange(period, 1)
	}
	if !ed25519.Verify(ed25519.PublicKey(vk), message, sig) {
		return ErrVerificationFailed
	}
	return nil
}

func (s singleScheme) Update(_ Context, sk SigningKey, period Period) (SigningKey, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	if period != 0 {
		k.Wipe()
		return nil, periodOutOfRange(period, 1)
	}

	// A single-period key expires on its first update.
	k.Wipe()
	return nil, nil
}

func (s singleScheme) ParseVerificationKey(b []byte) ([]byte, error) {
	return parseExact(b, s.VerificationKeySize(), "single verification key")
}

func (s singleScheme) ParseSignature(b []byte) ([]byte, error) {
	return parseExact(b, s.SignatureSize(), "single signature")
}

func (s singleScheme) currentPeriod(sk SigningKey) (Period, error) {
	if _, err := s.key(sk); err != nil {
		return 0, err
	}
	return 0, nil
}

func (s singleScheme) serializeSigningKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	var out = make([]byte, s.SigningKeySize())
	copy(out, k.seed)
	return out, nil
}

func (s singleScheme) deserializeSigningKey(b []byte) (SigningKey, error) {
	if len(b) != s.SigningKeySize() {
		return nil, wrongLength("single signing key", s.SigningKeySize(), len(b))
	}
	var k = &singleKey{seed: make([]byte, s.SigningKeySize())}
	copy(k.seed, b)
	return k, nil
}

// key checks that sk belongs to this scheme and has not been wiped.
func (singleScheme) key(sk SigningKey) (*singleKey, error) {
	k, ok := sk.(*singleKey)
	if !ok {
		return nil, errWrongKeyType("single_ed25519")
	}
	if k.seed == nil {
		return nil, ErrKeyExpired
	}
	return k, nil
}
