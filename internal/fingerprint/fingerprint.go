// Package fingerprint derives stable announcement identifiers.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // identifier derivation, not cryptography
	"encoding/hex"
)

const idLength = 16

// ID returns the first 16 hex characters of MD5(title + "_" + url). The
// truncation keeps identifiers short; collisions across distinct pairs are
// an accepted, bounded risk.
func ID(title, url string) string {
	sum := md5.Sum([]byte(title + "_" + url)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:idLength]
}
