package auth_test

import (
	"strings"
	"testing"

	"github.com/shibing624/file-server/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		supplied string
		expected string
		want     bool
	}{
		{"matching", "hunter2", "hunter2", true},
		{"mismatch first byte", "Xunter2", "hunter2", false},
		{"mismatch middle byte", "hunXer2", "hunter2", false},
		{"mismatch last byte", "hunterX", "hunter2", false},
		{"supplied shorter", "hunter", "hunter2", false},
		{"supplied longer", "hunter22", "hunter2", false},
		{"empty supplied", "", "hunter2", false},
		{"empty expected", "hunter2", "", false},
		{"both empty", "", "", false},
		{"long matching", strings.Repeat("a", 512), strings.Repeat("a", 512), true},
		{"unicode mismatch", "pässword", "password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.Verify(tt.supplied, tt.expected))
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	first, err := auth.GenerateSecret()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := auth.GenerateSecret()
	require.NoError(t, err)

	// Two generated secrets must differ.
	assert.NotEqual(t, first, second)

	// URL-safe: no padding, slashes or plus signs.
	for _, s := range []string{first, second} {
		assert.NotContains(t, s, "=")
		assert.NotContains(t, s, "/")
		assert.NotContains(t, s, "+")
	}

	// A generated secret verifies against itself.
	assert.True(t, auth.Verify(first, first))
}
