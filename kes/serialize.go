package kes

import "fmt"

// parseExact validates the length of a raw byte encoding and returns a copy.
func parseExact(b []byte, size int, context string) ([]byte, error) {
	if len(b) != size {
		return nil, wrongLength(context, size, len(b))
	}
	var out = make([]byte, size)
	copy(out, b)
	return out, nil
}

func errWrongKeyType(scheme string) error {
	return fmt.Errorf("kes: signing key does not belong to %s", scheme)
}
