// Package metrics keeps advisory counters for KES key operations. The
// counters are monotonic, updated with relaxed atomics, and cost one or two
// uncontended atomic adds per event; nothing in the library reads them.
package metrics

import "sync/atomic"

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	SigningKeys     uint64
	SigningKeyBytes uint64
	Signatures      uint64
	SignatureBytes  uint64
	Updates         uint64
}

var (
	signingKeys     atomic.Uint64
	signingKeyBytes atomic.Uint64
	signatures      atomic.Uint64
	signatureBytes  atomic.Uint64
	updates         atomic.Uint64
)

// RecordSigningKey notes the creation of a signing key of the given size.
func RecordSigningKey(bytes int) {
	signingKeys.Add(1)
	signingKeyBytes.Add(uint64(bytes))
}

// RecordSignature notes the creation of a signature of the given size.
func RecordSignature(bytes int) {
	signatures.Add(1)
	signatureBytes.Add(uint64(bytes))
}

// RecordUpdate notes one key evolution.
func RecordUpdate() {
	updates.Add(1)
}

// Read returns the current counter values.
func Read() Snapshot {
	return Snapshot{
		SigningKeys:     signingKeys.Load(),
		SigningKeyBytes: signingKeyBytes.Load(),
		Signatures:      signatures.Load(),
		SignatureBytes:  signatureBytes.Load(),
		Updates:         updates.Load(),
	}
}

// Reset zeroes all counters.
func Reset() {
	signingKeys.Store(0)
	signingKeyBytes.Store(0)
	signatures.Store(0)
	signatureBytes.Store(0)
	updates.Store(0)
}
