package normalize

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// RowKey computes a SHA-256 over ordered cell values. Values are
// null-separated so ("ab", "c") and ("a", "bc") hash differently.
func RowKey(values ...string) [sha256.Size]byte {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Cell trims whitespace and a leading byte-order mark from a raw cell.
func Cell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
