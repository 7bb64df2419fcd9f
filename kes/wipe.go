package kes

// wipe overwrites b with zeros. Secret-bearing buffers are wiped before
// their last reference is dropped, so superseded key material does not
// linger in memory. The loop writes through a heap slice, which the
// compiler does not elide.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
