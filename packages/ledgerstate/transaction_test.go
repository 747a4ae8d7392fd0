package ledgerstate

import (
	"testing"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionBalancesValid(t *testing.T) {
	address := randomAddress(t)

	consumed := Outputs{fundedBasicOutput(t, 1000, address)}
	assert.True(t, TransactionBalancesValid(consumed, NewOutputs(NewBasicOutput(400, address), NewBasicOutput(600, address))))
	assert.False(t, TransactionBalancesValid(consumed, NewOutputs(NewBasicOutput(999, address))))

	// overflows must not wrap into a balanced looking transaction
	overflowing := Outputs{fundedBasicOutput(t, ^uint64(0), address), fundedBasicOutput(t, 1, address)}
	assert.False(t, TransactionBalancesValid(overflowing, NewOutputs(NewBasicOutput(0, address))))
}

func TestTransaction_SignatureUnlock(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey()
	require.NoError(t, err)
	address := NewED25519Address(publicKey)

	consumedOutput := fundedBasicOutput(t, 1000, address)
	consumed := Outputs{consumedOutput}
	produced := NewOutputs(NewBasicOutput(1000, address))

	essence, err := NewTransactionEssence(42, Inputs{consumedOutput.Input()}, produced, consumed)
	require.NoError(t, err)

	signature := NewED25519Signature(publicKey, privateKey.Sign(essence.SigningMessage()))
	transaction, err := NewTransaction(essence, Unlocks{NewSignatureUnlock(signature)})
	require.NoError(t, err)

	valid, err := UnlocksValidWithError(consumed, []Address{address}, transaction)
	require.NoError(t, err)
	assert.True(t, valid)

	// a signature over a different essence must not unlock
	wrongSignature := NewED25519Signature(publicKey, privateKey.Sign([]byte("other essence")))
	forged, err := NewTransaction(essence, Unlocks{NewSignatureUnlock(wrongSignature)})
	require.NoError(t, err)
	valid, err = UnlocksValidWithError(consumed, []Address{address}, forged)
	assert.Error(t, err)
	assert.False(t, valid)
}

func TestTransaction_ReferenceUnlock(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey()
	require.NoError(t, err)
	address := NewED25519Address(publicKey)

	first := fundedBasicOutput(t, 400, address)
	second := fundedBasicOutput(t, 600, address)
	consumed := Outputs{first, second}
	produced := NewOutputs(NewBasicOutput(1000, address))

	essence, err := NewTransactionEssence(42, Inputs{first.Input(), second.Input()}, produced, consumed)
	require.NoError(t, err)

	signature := NewED25519Signature(publicKey, privateKey.Sign(essence.SigningMessage()))
	transaction, err := NewTransaction(essence, Unlocks{NewSignatureUnlock(signature), NewReferenceUnlock(0)})
	require.NoError(t, err)

	valid, err := UnlocksValidWithError(consumed, []Address{address, address}, transaction)
	require.NoError(t, err)
	assert.True(t, valid)

	// a reference pointing at an unlock of a different address is invalid
	valid, err = UnlocksValidWithError(consumed, []Address{address, randomAddress(t)}, transaction)
	assert.Error(t, err)
	assert.False(t, valid)
}

func TestInputsCommitment(t *testing.T) {
	address := randomAddress(t)
	first := fundedBasicOutput(t, 400, address)
	second := fundedBasicOutput(t, 600, address)

	// the commitment is order dependent
	assert.Equal(t, InputsCommitment(Outputs{first, second}), InputsCommitment(Outputs{first, second}))
	assert.NotEqual(t, InputsCommitment(Outputs{first, second}), InputsCommitment(Outputs{second, first}))
}

func TestTransaction_Codec(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey()
	require.NoError(t, err)
	address := NewED25519Address(publicKey)

	consumedOutput := fundedBasicOutput(t, 1000, address)
	essence, err := NewTransactionEssence(42, Inputs{consumedOutput.Input()}, NewOutputs(NewBasicOutput(1000, address)), Outputs{consumedOutput})
	require.NoError(t, err)
	transaction, err := NewTransaction(essence, Unlocks{NewSignatureUnlock(NewED25519Signature(publicKey, privateKey.Sign(essence.SigningMessage())))})
	require.NoError(t, err)

	restored, consumedBytes, err := TransactionFromBytes(transaction.Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(transaction.Bytes()), consumedBytes)
	assert.Equal(t, transaction.ID(), restored.ID())
}

func fundedBasicOutput(t *testing.T, amount uint64, address Address) *BasicOutput {
	output := NewBasicOutput(amount, address)
	output.SetID(NewOutputID(randomTransactionID(t), 0))

	return output
}
