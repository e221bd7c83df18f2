// Package repository provides data access over *sql.DB. The sentinel
// errors defined here let handlers distinguish failure classes without
// inspecting driver errors: ErrNotFound maps to HTTP 404, ErrCodeTaken to
// HTTP 409. Anything else coming out of a repository is a store failure
// and maps to HTTP 500.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced device, room or pairing code
// does not exist or is no longer claimable.
var ErrNotFound = errors.New("not found")

// ErrCodeTaken is returned when a pairing-code write hits the unique
// index, i.e. another unclaimed device currently holds the same code.
// Callers retry with a fresh code up to a budget.
var ErrCodeTaken = errors.New("pairing code taken")

// isDuplicate reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
