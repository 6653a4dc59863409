package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, InitializeKeys(key))

	sealed, err := Encrypt("sk-very-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "sk-very-secret", sealed)

	plain, err := Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-very-secret", plain)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	key, err := GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, InitializeKeys(key))

	a, err := Encrypt("same input")
	require.NoError(t, err)
	b, err := Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key, err := GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, InitializeKeys(key))
	sealed, err := Encrypt("payload")
	require.NoError(t, err)

	other, err := GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, InitializeKeys(other))

	_, err = Decrypt(sealed)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	key, err := GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, InitializeKeys(key))

	_, err = Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestInitializeKeysValidation(t *testing.T) {
	assert.Error(t, InitializeKeys(""))
	assert.Error(t, InitializeKeys("dG9vc2hvcnQ="))
}
