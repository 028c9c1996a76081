package hash_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/datahihi1/craft-mini/pkg/hash"
)

var fastArgon2 = hash.Argon2Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestBcrypt(t *testing.T) {
	t.Parallel()

	h, err := hash.Bcrypt("secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2a$04$"))

	assert.True(t, hash.Verify("secret", h))
	assert.False(t, hash.Verify("wrong", h))
	require.ErrorIs(t, hash.Check("wrong", h), hash.ErrMismatch)
	assert.True(t, hash.NeedsRehash(h))
}

func TestBcrypt_InvalidCost(t *testing.T) {
	t.Parallel()

	_, err := hash.Bcrypt("secret", bcrypt.MaxCost+1)
	require.Error(t, err)
}

func TestArgon2(t *testing.T) {
	t.Parallel()

	h, err := hash.Argon2("secret", fastArgon2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, hash.Verify("secret", h))
	assert.False(t, hash.Verify("Secret", h))
	assert.True(t, hash.NeedsRehash(h))

	h2, err := hash.Argon2("secret", fastArgon2)
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salts must differ")
}

func TestArgon2_FallsBackToBcrypt(t *testing.T) {
	t.Parallel()

	h, err := hash.Argon2("secret", hash.Argon2Params{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2a$"))
	assert.True(t, hash.Verify("secret", h))
}

func TestCheck_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want error
	}{
		{"empty", "", hash.ErrInvalidHash},
		{"plain text", "secret", hash.ErrInvalidHash},
		{"short argon2", "$argon2id$v=19$m=1024", hash.ErrInvalidHash},
		{"bad version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5", hash.ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$x$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5", hash.ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5a2V5a2V5", hash.ErrInvalidHash},
		{"truncated bcrypt", "$2a$04$abc", hash.ErrInvalidHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, hash.Check("secret", tt.hash), tt.want)
			assert.False(t, hash.Verify("secret", tt.hash))
		})
	}
}

func TestNeedsRehash_Defaults(t *testing.T) {
	t.Parallel()

	h, err := hash.Default("secret")
	require.NoError(t, err)
	assert.False(t, hash.NeedsRehash(h))

	assert.True(t, hash.NeedsRehash("not-a-hash"))
}
