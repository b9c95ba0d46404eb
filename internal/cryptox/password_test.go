package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword([]byte("hunter22"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=1,p=4$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPasswordWithParams([]byte("same"), testParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams([]byte("same"), testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_InvalidParams(t *testing.T) {
	_, err := HashPasswordWithParams([]byte("x"), Params{})
	require.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPasswordWithParams([]byte("correct horse"), testParams)
	require.NoError(t, err)

	ok, err := VerifyPassword([]byte("correct horse"), h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("wrong horse"), h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []string{
		"",
		"cGFzc3dvcmQ=",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
		"$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=3,p=4$c2FsdA$a2V5",
	}
	for _, encoded := range tests {
		t.Run(encoded, func(t *testing.T) {
			var (
				ok  bool
				err error
			)
			require.NotPanics(t, func() { ok, err = VerifyPassword([]byte("x"), encoded) })
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestDecodeLegacyPassword(t *testing.T) {
	assert.Equal(t, []byte("secret123"), DecodeLegacyPassword("c2VjcmV0MTIz"))
	assert.Equal(t, []byte("not base64!"), DecodeLegacyPassword("not base64!"))
}
