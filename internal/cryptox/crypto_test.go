package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("device-secret")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(secret, salt)
	key2 := DeriveKey(secret, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("device-secret")

	key1 := DeriveKey(secret, []byte("salt-1"))
	key2 := DeriveKey(secret, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	s, err := NewSealer([]byte("device-secret"), salt)
	require.NoError(t, err)

	token := []byte("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	sealed, err := s.Seal(token)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), string(token))

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, token, opened)
}

func TestSealer_NonceIsRandom(t *testing.T) {
	s, err := NewSealer([]byte("k"), []byte("salt"))
	require.NoError(t, err)

	a, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_WrongSecretFails(t *testing.T) {
	salt := []byte("salt")
	s1, err := NewSealer([]byte("right"), salt)
	require.NoError(t, err)
	s2, err := NewSealer([]byte("wrong"), salt)
	require.NoError(t, err)

	sealed, err := s1.Seal([]byte("token"))
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	require.Error(t, err)
}

func TestSealer_TruncatedInput(t *testing.T) {
	s, err := NewSealer([]byte("k"), []byte("salt"))
	require.NoError(t, err)

	_, err = s.Open([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestPlain_IsIdentity(t *testing.T) {
	var p Plain
	sealed, err := p.Seal([]byte("t"))
	require.NoError(t, err)
	opened, err := p.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("t"), opened)
}
