package kes

// Signing-key serialization exists only so that tests and vector-generation
// tools can inspect and reconstruct key state. Serializing a signing key
// copies live secret material into an unprotected buffer and defeats the
// forward-security guarantee for anything that retains it.
//
// Production code must not call these functions.

// UnsoundSerializeSigningKey returns the raw byte encoding of sk under
// scheme s. The layout is the recursive tree encoding:
//
//	single:      seed (32)
//	sum:         sk_child || r1 (32, zeros once consumed) || vk0 || vk1
//	compact sum: sk_child || r1 (32, zeros once consumed) || vk_sibling
//
// UNSOUND: the returned buffer holds secrets and is not tracked by Wipe.
func UnsoundSerializeSigningKey(s Scheme, sk SigningKey) ([]byte, error) {
	return s.serializeSigningKey(sk)
}

// UnsoundDeserializeSigningKey rebuilds a signing key from the encoding
// produced by UnsoundSerializeSigningKey. A reserved right seed of all
// zeros is read back as already consumed.
//
// UNSOUND: accepting key material from bytes bypasses seed hygiene.
func UnsoundDeserializeSigningKey(s Scheme, b []byte) (SigningKey, error) {
	return s.deserializeSigningKey(b)
}
