package utils // utils provides credential generation and hashing helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// NewPairingCode returns a pairing code of the form <prefix><4 digits>,
// e.g. "TV-0417". The 10,000-value space is deliberately small so humans
// can type it; uniqueness among unclaimed codes is guaranteed by the
// store's unique index, with the caller retrying a bounded number of
// times on collision.
func NewPairingCode(prefix string) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % 10000
	return fmt.Sprintf("%s%04d", prefix, n), nil
}

// NewDeviceToken returns a 64-char hex bearer secret from 32 random
// bytes. The raw value is returned to the device exactly once, at claim
// or rotation time, and must never be logged.
func NewDeviceToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashDeviceToken returns the SHA-256 hex of a raw device token. Only
// this hash is persisted, so a leaked database row cannot impersonate a
// device.
func HashDeviceToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
