package kes

import (
	"bytes"
	"crypto/ed25519"

	"github.com/FractionEstate/Cardano-KES/metrics"
)

// CompactSingle is the one-period scheme whose signatures carry the
// verification key alongside the Ed25519 signature: sig = sigma || vk,
// 96 bytes. Embedding the key is what lets the CompactSum tower recompute
// parent verification keys from signatures alone. It is the base case
// (CompactSum0) of the CompactSum tower.
var CompactSingle CompactScheme = compactSingleScheme{}

type compactSingleScheme struct{}

type compactSingleKey struct {
	seed []byte
}

func (k *compactSingleKey) Wipe() {
	wipe(k.seed)
	k.seed = nil
}

func (compactSingleScheme) Name() string { return "compact_single_ed25519" }

func (compactSingleScheme) SeedSize() int { return ed25519.SeedSize }

func (compactSingleScheme) VerificationKeySize() int { return ed25519.PublicKeySize }

func (compactSingleScheme) SigningKeySize() int { return ed25519.SeedSize }

func (compactSingleScheme) SignatureSize() int {
	return ed25519.SignatureSize + ed25519.PublicKeySize
}

func (compactSingleScheme) TotalPeriods() Period { return 1 }

func (s compactSingleScheme) GenKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != s.SeedSize() {
		return nil, wrongLength("compact single seed", s.SeedSize(), len(seed))
	}
	var k = &compactSingleKey{seed: make([]byte, s.SeedSize())}
	copy(k.seed, seed)
	metrics.RecordSigningKey(s.SigningKeySize())
	return k, nil
}

func (s compactSingleScheme) DeriveVerificationKey(sk SigningKey) ([]byte, error) {
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

func (s compactSingleScheme) Sign(_ Context, period Period, message []byte, sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	if period != 0 {
		return nil, periodOutOfRange(period, 1)
	}

	// sig = ed25519_sign(message) || vk
	var priv = ed25519.NewKeyFromSeed(k.seed)
	var sig = make([]byte, 0, s.SignatureSize())
	sig = append(sig, ed25519.Sign(priv, message)...)
	sig = append(sig, priv[ed25519.SeedSize:]...)
	wipe(priv)
	metrics.RecordSignature(len(sig))
	return sig, nil
}

func (s compactSingleScheme) Verify(_ Context, vk []byte, period Period, message, sig []byte) error {
	if len(vk) != s.VerificationKeySize() {
		return wrongLength("compact single verification key", s.VerificationKeySize(), len(vk))
	}
	if len(sig) != s.SignatureSize() {
		return wrongLength("compact single signature", s.SignatureSize(), len(sig))
	}
	if period != 0 {
		return periodOutOfRange(period, 1)
	}

	// The embedded key must be the key the caller expects; otherwise a
	// signature by any key would pass.
	var embedded = sig[ed25519.SignatureSize:]
	if !bytes.Equal(embedded, vk) {
		return ErrVerificationFailed
	}
	if !ed25519.Verify(ed25519.PublicKey(vk), message, sig[:ed25519.SignatureSize]) {
		return ErrVerificationFailed
	}
	return nil
}

func (s compactSingleScheme) Update(_ Context, sk SigningKey, period Period) (SigningKey, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	if period != 0 {
		k.Wipe()
		return nil, periodOutOfRange(period, 1)
	}
	k.Wipe()
	return nil, nil
}

func (s compactSingleScheme) VerificationKeyFromSignature(period Period, sig []byte) ([]byte, error) {
	if len(sig) != s.SignatureSize() {
		return nil, wrongLength("compact single signature", s.SignatureSize(), len(sig))
	}
	if period != 0 {
		return nil, periodOutOfRange(period, 1)
	}
	var vk = make([]byte, ed25519.PublicKeySize)
	copy(vk, sig[ed25519.SignatureSize:])
	return vk, nil
}

func (s compactSingleScheme) ParseVerificationKey(b []byte) ([]byte, error) {
	return parseExact(b, s.VerificationKeySize(), "compact single verification key")
}

func (s compactSingleScheme) ParseSignature(b []byte) ([]byte, error) {
	return parseExact(b, s.SignatureSize(), "compact single signature")
}

func (s compactSingleScheme) currentPeriod(sk SigningKey) (Period, error) {
	if _, err := s.key(sk); err != nil {
		return 0, err
	}
	return 0, nil
}

func (s compactSingleScheme) serializeSigningKey(sk SigningKey) ([]byte, error) {
	k, err := s.key(sk)
	if err != nil {
		return nil, err
	}
	var out = make([]byte, s.SigningKeySize())
	copy(out, k.seed)
	return out, nil
}

func (s compactSingleScheme) deserializeSigningKey(b []byte) (SigningKey, error) {
	if len(b) != s.SigningKeySize() {
		return nil, wrongLength("compact single signing key", s.SigningKeySize(), len(b))
	}
	var k = &compactSingleKey{seed: make([]byte, s.SigningKeySize())}
	copy(k.seed, b)
	return k, nil
}

func (compactSingleScheme) key(sk SigningKey) (*compactSingleKey, error) {
	k, ok := sk.(*compactSingleKey)
	if !ok {
		return nil, errWrongKeyType("compact_single_ed25519")
	}
	if k.seed == nil {
		return nil, ErrKeyExpired
	}
	return k, nil
}
