package kes

import (
	"golang.org/x/crypto/blake2b"
)

// Hash is the fixed-output-length hash algorithm used by the binary tree
// constructions. The tree hashes pairs of verification keys, and expands a
// single seed into the two seeds of its subtrees.
type Hash interface {

	// Name identifies the algorithm, e.g. "blake2b_256".
	Name() string

	// Size is the output length in bytes.
	Size() int

	// Sum computes the one-shot digest of data.
	Sum(data []byte) []byte
}

// HashConcat computes h(a || b). The tree constructions use it to bind the
// two child verification keys into the parent key.
func HashConcat(h Hash, a, b []byte) []byte {
	var buf = make([]byte, 0, len(a)+len(b))
	buf = append(buf, a...)
	buf = append(buf, b...)
	return h.Sum(buf)
}

// ExpandSeed derives the two subtree seeds from a parent seed:
//
//	r0 = h(0x01 || seed)
//	r1 = h(0x02 || seed)
//
// The one-byte prefixes are normative; changing them breaks compatibility
// with every verification key ever derived on chain.
func ExpandSeed(h Hash, seed []byte) (r0, r1 []byte) {
	var buf = make([]byte, 0, 1+len(seed))

	buf = append(buf, 0x01)
	buf = append(buf, seed...)
	r0 = h.Sum(buf)

	buf[0] = 0x02
	r1 = h.Sum(buf)

	wipe(buf)
	return r0, r1
}

// Blake2b224 is Blake2b with a 28-byte digest.
var Blake2b224 Hash = blake2bHash{size: 28, name: "blake2b_224"}

// Blake2b256 is Blake2b with a 32-byte digest. This is the algorithm used by
// the standard Sum/CompactSum towers.
var Blake2b256 Hash = blake2bHash{size: 32, name: "blake2b_256"}

// Blake2b512 is Blake2b with a 64-byte digest.
var Blake2b512 Hash = blake2bHash{size: 64, name: "blake2b_512"}

type blake2bHash struct {
	size int
	name string
}

func (h blake2bHash) Name() string { return h.name }

func (h blake2bHash) Size() int { return h.size }

func (h blake2bHash) Sum(data []byte) []byte {
	d, err := blake2b.New(h.size, nil)
	if err != nil {
		// blake2b.New only fails for invalid sizes or keyed hashing.
		panic("kes: blake2b init: " + err.Error())
	}
	d.Write(data)
	return d.Sum(nil)
}
