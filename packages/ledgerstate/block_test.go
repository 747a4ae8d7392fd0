package ledgerstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_Codec(t *testing.T) {
	parents := []BlockID{{1}, {2}}

	block, err := NewBlock(parents, nil, 7)
	require.NoError(t, err)

	restored, consumedBytes, err := BlockFromBytes(block.Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(block.Bytes()), consumedBytes)
	assert.Equal(t, block.ID(), restored.ID())
	assert.Equal(t, parents, restored.Parents())
	assert.Nil(t, restored.Payload())
	assert.EqualValues(t, 7, restored.Nonce())
}

func TestNewBlock_ParentCount(t *testing.T) {
	_, err := NewBlock(nil, nil, 0)
	assert.Error(t, err)

	_, err = NewBlock(make([]BlockID, MaxParentCount+1), nil, 0)
	assert.Error(t, err)
}

func TestInclusionState_IsFinal(t *testing.T) {
	assert.False(t, InclusionStatePending.IsFinal())
	assert.True(t, InclusionStateIncluded.IsFinal())
	assert.True(t, InclusionStateNoTransaction.IsFinal())
	assert.False(t, InclusionStateConflicting.IsFinal())
}

func TestRentStructure_MinimumStorageDeposit(t *testing.T) {
	rentStructure := DefaultRentStructure()
	smallOutput := NewBasicOutput(0, randomAddress(t))
	largeOutput, err := NewAliasOutputMint(0, make([]byte, 1024), randomAddress(t), randomAddress(t))
	require.NoError(t, err)

	// the deposit grows with the serialized size
	assert.Greater(t, rentStructure.MinimumStorageDeposit(largeOutput), rentStructure.MinimumStorageDeposit(smallOutput))
	assert.EqualValues(t, (uint64(len(smallOutput.Bytes()))+rentStructure.OutputOverhead)*rentStructure.CostPerByte, rentStructure.MinimumStorageDeposit(smallOutput))
}
