package economy

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Key format: KRYPTON-XXXXXXX-XXXXXXX-XXXXXXX. Segments are drawn from a
// 32-character alphabet with the easily confused letters removed.
const (
	keyPrefix     = "KRYPTON"
	keySegments   = 3
	keySegmentLen = 7
	keyAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func newKey() (string, error) {
	parts := make([]string, 0, keySegments+1)
	parts = append(parts, keyPrefix)

	buf := make([]byte, keySegmentLen)
	for i := 0; i < keySegments; i++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}
		var seg strings.Builder
		for _, b := range buf {
			seg.WriteByte(keyAlphabet[int(b)%len(keyAlphabet)])
		}
		parts = append(parts, seg.String())
	}
	return strings.Join(parts, "-"), nil
}
