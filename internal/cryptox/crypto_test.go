package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("0123456789abcdef"))
	plaintext := []byte(`{"accounts":{}}`)

	ciphertext, nonce, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Decrypt(ciphertext, nonce, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key := DeriveKey([]byte("passphrase"), []byte("0123456789abcdef"))
	wrongKey := DeriveKey([]byte("other"), []byte("0123456789abcdef"))

	ciphertext, nonce, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, nonce, wrongKey)
	assert.Error(t, err)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")
	first := DeriveKey([]byte("pw"), salt)
	second := DeriveKey([]byte("pw"), salt)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}
