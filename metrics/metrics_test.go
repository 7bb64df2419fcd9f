package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	Reset()

	RecordSigningKey(608)
	RecordSigningKey(32)
	RecordSignature(448)
	RecordUpdate()
	RecordUpdate()

	s := Read()
	require.Equal(t, uint64(2), s.SigningKeys)
	require.Equal(t, uint64(640), s.SigningKeyBytes)
	require.Equal(t, uint64(1), s.Signatures)
	require.Equal(t, uint64(448), s.SignatureBytes)
	require.Equal(t, uint64(2), s.Updates)

	Reset()
	require.Equal(t, Snapshot{}, Read())
}
