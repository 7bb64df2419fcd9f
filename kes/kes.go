// Package kes implements the key evolving signature (KES) schemes used for
// block authorship in the Cardano proof-of-stake protocol: the single-period
// Ed25519 wrapper, its compact variant, and the Sum/CompactSum binary-tree
// compositions that multiply the period count by two per level.
//
// A KES signing key changes irreversibly with time. The key for period t is
// derived from a common seed, and once the key has been evolved past t it is
// computationally infeasible to recover any key for an earlier period. The
// schemes here are byte-compatible with the historical chain: verification
// keys, signatures, and the seed-expansion rule all match the reference
// implementation exactly.
package kes

import (
	"strconv"
	"strings"
)

// Period is the 0-indexed evolution counter of a KES key.
type Period = uint64

// Context is the scheme context parameter. Every scheme defined here takes
// an empty context; the parameter is kept in the call signatures for forward
// compatibility.
type Context struct{}

// SigningKey holds the secret state of one KES key. It is created by a
// Scheme's GenKeyFromSeed, mutated only by Update, and destroyed by Wipe
// (or ForgetSigningKey). All other behavior goes through the owning Scheme.
type SigningKey interface {

	// Wipe overwrites every secret byte held by the key (child signing
	// keys and reserved seeds included) and leaves it unusable. Signing
	// or updating a wiped key fails with ErrKeyExpired.
	Wipe()
}

// Scheme is one KES algorithm. The concrete schemes in this package are
// Single, CompactSingle, and the Sum/CompactSum towers built by NewSum and
// NewCompactSum.
//
// Raw serialization of verification keys and signatures is the identity on
// their byte representations; ParseVerificationKey and ParseSignature
// validate lengths on the way back in.
type Scheme interface {

	// Name identifies the algorithm, e.g. "single_ed25519_2^6".
	Name() string

	// SeedSize is the required seed length in bytes.
	SeedSize() int

	// VerificationKeySize is the serialized verification key length.
	VerificationKeySize() int

	// SigningKeySize is the serialized signing key length (test-only
	// serialization; see UnsoundSerializeSigningKey).
	SigningKeySize() int

	// SignatureSize is the serialized signature length.
	SignatureSize() int

	// TotalPeriods is the number of periods the scheme supports.
	TotalPeriods() Period

	// GenKeyFromSeed derives the period-0 signing key from seed. The
	// seed bytes are copied; the caller's buffer is not retained.
	GenKeyFromSeed(seed []byte) (SigningKey, error)

	// DeriveVerificationKey computes the verification key of sk. For a
	// fixed seed the result is identical at every period of the key's
	// life.
	DeriveVerificationKey(sk SigningKey) ([]byte, error)

	// Sign produces a signature over message at the given period. The
	// period must equal the key's current period.
	Sign(ctx Context, period Period, message []byte, sk SigningKey) ([]byte, error)

	// Verify checks sig over message at the given period against vk.
	Verify(ctx Context, vk []byte, period Period, message, sig []byte) error

	// Update evolves sk from period to period+1, in place, and returns
	// the evolved key. It returns (nil, nil) once the key is expired.
	// period must equal the key's current period. On any failure the
	// input key is wiped; the pre-update state is unrecoverable.
	Update(ctx Context, sk SigningKey, period Period) (SigningKey, error)

	// ParseVerificationKey validates and copies a raw verification key.
	ParseVerificationKey(b []byte) ([]byte, error)

	// ParseSignature validates and copies a raw signature.
	ParseSignature(b []byte) ([]byte, error)

	// currentPeriod derives the period sk currently holds from the
	// key's position in the tree. Sealed: schemes are defined only in
	// this package.
	currentPeriod(sk SigningKey) (Period, error)

	serializeSigningKey(sk SigningKey) ([]byte, error)
	deserializeSigningKey(b []byte) (SigningKey, error)
}

// CompactScheme is a Scheme whose signatures embed the verification key of
// the signer, so a verifier can recompute the key instead of being handed
// it. CompactSingle provides the base case; NewCompactSum requires its child
// to be compact.
type CompactScheme interface {
	Scheme

	// VerificationKeyFromSignature extracts (or recomputes) the
	// verification key embedded in a signature made at the given period.
	VerificationKeyFromSignature(period Period, sig []byte) ([]byte, error)
}

// CurrentPeriod reports the period sk currently holds, derived from the
// key's position in its tree.
func CurrentPeriod(s Scheme, sk SigningKey) (Period, error) {
	return s.currentPeriod(sk)
}

// ForgetSigningKey wipes sk and releases it. Equivalent to sk.Wipe().
func ForgetSigningKey(sk SigningKey) {
	sk.Wipe()
}

// mungeName rolls a child algorithm name into the parent tree name:
// "single_ed25519" becomes "single_ed25519_2^1", which becomes
// "single_ed25519_2^2", and so on up the tower.
func mungeName(base string) string {
	if i := strings.LastIndex(base, "_2^"); i >= 0 {
		if n, err := strconv.Atoi(base[i+3:]); err == nil {
			return base[:i+3] + strconv.Itoa(n+1)
		}
	}
	return base + "_2^1"
}
