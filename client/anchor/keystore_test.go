package anchor

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryKeyStore(t *testing.T) {
	keyStore := NewInMemoryKeyStore()

	address, err := keyStore.NewAddress()
	require.NoError(t, err)
	assert.True(t, keyStore.HasKey(address))

	signedData := []byte("signed data")
	signature, err := keyStore.Sign(address, signedData)
	require.NoError(t, err)
	assert.True(t, signature.AddressSignatureValid(address, signedData))
	assert.False(t, signature.AddressSignatureValid(address, []byte("other data")))

	foreignKeyStore := NewInMemoryKeyStore()
	foreign, err := foreignKeyStore.NewAddress()
	require.NoError(t, err)
	assert.False(t, keyStore.HasKey(foreign))

	_, err = keyStore.Sign(foreign, signedData)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
}
