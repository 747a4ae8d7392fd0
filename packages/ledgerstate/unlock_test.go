package ledgerstate

import (
	"testing"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlocks_Validate(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey()
	require.NoError(t, err)
	signatureUnlock := NewSignatureUnlock(NewED25519Signature(publicKey, privateKey.Sign([]byte("signed data"))))

	assert.NoError(t, Unlocks{signatureUnlock, NewReferenceUnlock(0), NewAliasUnlock(0), NewNFTUnlock(1)}.Validate())

	// references must point strictly backward
	assert.Error(t, Unlocks{signatureUnlock, NewReferenceUnlock(1)}.Validate())
	assert.Error(t, Unlocks{NewReferenceUnlock(1), signatureUnlock}.Validate())
	assert.Error(t, Unlocks{signatureUnlock, NewAliasUnlock(2)}.Validate())

	// a reference unlock must not target another referential unlock
	assert.Error(t, Unlocks{signatureUnlock, NewReferenceUnlock(0), NewReferenceUnlock(1)}.Validate())
}

func TestSignatureUnlock(t *testing.T) {
	signedData := []byte("signed data")
	publicKey, privateKey, err := ed25519.GenerateKey()
	require.NoError(t, err)

	unlock := NewSignatureUnlock(NewED25519Signature(publicKey, privateKey.Sign(signedData)))
	assert.True(t, unlock.AddressSignatureValid(NewED25519Address(publicKey), signedData))
	assert.False(t, unlock.AddressSignatureValid(NewED25519Address(publicKey), []byte("other data")))
	assert.False(t, unlock.AddressSignatureValid(randomAddress(t), signedData))

	restored, err := UnlockFromMarshalUtil(marshalutil.New(unlock.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, unlock.Bytes(), restored.Bytes())
}

func TestReferentialUnlock_Codec(t *testing.T) {
	for _, unlock := range []Unlock{NewReferenceUnlock(7), NewAliasUnlock(1), NewNFTUnlock(3)} {
		restored, err := UnlockFromMarshalUtil(marshalutil.New(unlock.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, unlock.Type(), restored.Type())
		assert.Equal(t, unlock.(ReferentialUnlock).ReferencedIndex(), restored.(ReferentialUnlock).ReferencedIndex())
	}
}
