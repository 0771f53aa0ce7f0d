package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsValid(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := New()
		require.True(t, IsValid(id), id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"lowercase", "3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e", true},
		{"uppercase", "3F2B8C1E-4D5A-4B6C-8D7E-9F0A1B2C3D4E", true},
		{"empty", "", false},
		{"short", "abc", false},
		{"no hyphens", "3f2b8c1e4d5a4b6c8d7e9f0a1b2c3d4e", false},
		{"urn form", "urn:uuid:3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e", false},
		{"braces", "{3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e}", false},
		{"bad hex", "zf2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e", false},
		{"path traversal", "../../../../../../../../../etc/passwd", false},
		{"misplaced hyphen", "3f2b8c1e4-d5a-4b6c-8d7e-9f0a1b2c3d4e", false},
		{"object id", "5f8d0d55b54764421b7156c9", false},
		{"padded", " " + strings.Repeat("a", 35), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, IsValid(tt.value))
		})
	}
}
