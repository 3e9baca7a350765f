package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// DigestLength is the length of a hex-encoded SHA-256 digest.
const DigestLength = 64

// ErrPasswordMismatch is returned when a presented digest does not match the stored one.
var ErrPasswordMismatch = errors.New("password does not match")

var digestPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// IsDigest reports whether s is exactly 64 hexadecimal characters.
// Clients hash passwords before sending them; plaintext never reaches the API.
func IsDigest(s string) bool {
	return digestPattern.MatchString(s)
}

// NormalizeDigest lower-cases a digest so stored and presented values compare byte-for-byte.
func NormalizeDigest(digest string) string {
	return strings.ToLower(strings.TrimSpace(digest))
}

// HashPassword returns the hex SHA-256 digest of a plaintext password.
// Only used server-side for bootstrap credentials supplied through configuration.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// ComparePassword compares a stored digest with a presented digest in constant time.
func ComparePassword(storedDigest, presentedDigest string) error {
	stored := NormalizeDigest(storedDigest)
	presented := NormalizeDigest(presentedDigest)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
