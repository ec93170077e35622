package devapi

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// newID returns prefix-<8 lowercase base32 chars>.
func newID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}
