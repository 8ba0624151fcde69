package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/idkit/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	digest, err := password.HashWithCost("correct horse battery staple", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotContains(t, digest, "correct horse")

	assert.True(t, password.Verify("correct horse battery staple", digest))
	assert.False(t, password.Verify("wrong password", digest))
	assert.False(t, password.Verify("", digest))
}

func TestHash_UniqueSalts(t *testing.T) {
	t.Parallel()

	a, err := password.HashWithCost("same password", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := password.HashWithCost("same password", bcrypt.MinCost)
	require.NoError(t, err)

	// Same input must never produce the same digest twice.
	assert.NotEqual(t, a, b)
	assert.True(t, password.Verify("same password", a))
	assert.True(t, password.Verify("same password", b))
}

func TestVerify_MalformedDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "garbage", digest: "not-a-bcrypt-hash"},
		{name: "truncated", digest: "$2a$10$abc"},
		{name: "wrong scheme", digest: "$argon2id$v=19$m=65536$..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, password.Verify("anything", tt.digest))
		})
	}
}

func TestHash_TooLongPassword(t *testing.T) {
	t.Parallel()

	// bcrypt rejects inputs over 72 bytes; the error must surface instead
	// of silently truncating.
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err := password.Hash(string(long))
	require.Error(t, err)
}
