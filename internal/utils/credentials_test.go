package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPairingCode(t *testing.T) {
	re := regexp.MustCompile(`^TV-\d{4}$`)
	for i := 0; i < 50; i++ {
		code, err := NewPairingCode("TV-")
		assert.NoError(t, err)
		assert.Regexp(t, re, code, "expected prefix plus exactly four digits")
	}
}

func TestNewDeviceToken(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		tok, err := NewDeviceToken()
		assert.NoError(t, err)
		assert.Regexp(t, hexRe, tok, "expected 64 lowercase hex chars")
		assert.False(t, seen[tok], "expected tokens to be unique per issuance")
		seen[tok] = true
	}
}

func TestHashDeviceToken(t *testing.T) {
	tok, err := NewDeviceToken()
	assert.NoError(t, err)

	h1 := HashDeviceToken(tok)
	h2 := HashDeviceToken(tok)
	assert.Equal(t, h1, h2, "hash must be deterministic")
	assert.Len(t, h1, 64)
	assert.NotEqual(t, tok, h1, "hash must differ from the raw token")

	other, err := NewDeviceToken()
	assert.NoError(t, err)
	assert.NotEqual(t, HashDeviceToken(other), h1)
}
