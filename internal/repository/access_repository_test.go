package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errDup = errors.New("Error 1062 (23000): Duplicate entry 'TV-0417' for key 'devices.uq_devices_pairing_code'")

func TestNormalizeLabel(t *testing.T) {
	tcases := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "lowercase", in: "a1v1", expected: "A1V1"},
		{name: "mixed case", in: "a1V2", expected: "A1V2"},
		{name: "surrounding whitespace", in: "  A1V1\t", expected: "A1V1"},
		{name: "already normalized", in: "A1V1", expected: "A1V1"},
		{name: "empty", in: "   ", expected: ""},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeLabel(tc.in))
		})
	}
}

func TestNormalizeSet(t *testing.T) {
	tcases := []struct {
		name     string
		in       []string
		expected []string
	}{
		{
			name:     "case variants collapse",
			in:       []string{"a1v1", "A1V2"},
			expected: []string{"A1V1", "A1V2"},
		},
		{
			name:     "duplicates dropped keeping first-seen order",
			in:       []string{"b", "A", "B", "a"},
			expected: []string{"B", "A"},
		},
		{
			name:     "empties dropped",
			in:       []string{"", "  ", "A1V1"},
			expected: []string{"A1V1"},
		},
		{
			name:     "nil input",
			in:       nil,
			expected: []string{},
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeSet(tc.in))
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, isDuplicate(nil))
	assert.False(t, isDuplicate(ErrNotFound))
	assert.True(t, isDuplicate(errDup))
}
