package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/didanchor/client"
	"github.com/iotaledger/didanchor/client/anchor/packages/publishoptions"
	"github.com/iotaledger/didanchor/packages/did"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

func TestPublisher_MintAndUpdate(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)

	document := []byte(`{"id":"` + did.Placeholder(connector.networkHRP) + `"}`)
	published, err := publisher.PlanAndPublish(context.Background(), &Target{
		Document:        document,
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	assert.False(t, published.Document.AliasID.IsEmpty())
	assert.EqualValues(t, 0, published.Document.StateIndex)
	assert.Contains(t, string(published.Document.Data), published.Document.DID)

	// the alias is now indexed on the ledger under its derived identifier
	_, onLedger, err := connector.AliasOutputByAliasID(published.Document.AliasID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, onLedger.StateIndex())

	// a state transition replaces the document and advances the state index
	updated, err := publisher.PlanAndPublish(context.Background(), &Target{
		AliasID:  published.Document.AliasID,
		Document: []byte(`{"id":"` + published.Document.DID + `","updated":true}`),
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, published.Document.AliasID, updated.Document.AliasID)
	assert.EqualValues(t, 1, updated.Document.StateIndex)
	assert.Contains(t, string(updated.Document.Data), `"updated":true`)
}

func TestPublisher_RoundTrip(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)

	document := []byte(`{"service":"agent","payload":"0xdeadbeef"}`)
	published, err := publisher.PlanAndPublish(context.Background(), &Target{
		Document:        document,
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	// a document without placeholders survives publication byte-identical
	assert.Equal(t, document, published.Document.Data)
}

func TestPublisher_GovernanceTransition(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	newController, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)

	published, err := publisher.PlanAndPublish(context.Background(), &Target{
		Document:        []byte("document"),
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	// a controller change keeps the state index
	_, err = publisher.PlanAndPublish(context.Background(), &Target{
		AliasID:              published.Document.AliasID,
		StateController:      newController,
		GovernanceTransition: true,
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	_, onLedger, err := connector.AliasOutputByAliasID(published.Document.AliasID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, onLedger.StateIndex())
	assert.True(t, onLedger.StateController().Equals(newController))
}

func TestPublisher_DeleteAliasOutput(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)

	published, err := publisher.PlanAndPublish(context.Background(), &Target{
		Document:        []byte("document"),
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	err = publisher.DeleteAliasOutput(context.Background(), published.Document.AliasID, walletAddress, publishoptions.RetryInterval(time.Millisecond))
	require.NoError(t, err)

	// the alias is gone from the index
	_, _, err = connector.AliasOutputByAliasID(published.Document.AliasID)
	assert.True(t, errors.Is(err, client.ErrNotFound))

	// deleting it again must fail the same way
	err = publisher.DeleteAliasOutput(context.Background(), published.Document.AliasID, walletAddress)
	assert.True(t, errors.Is(err, client.ErrNotFound))
}

func TestPublisher_UnknownAlias(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	unknown := ledgerstate.AliasIDFromOutputID(ledgerstate.NewOutputID(ledgerstate.TransactionID{9}, 0))
	_, err = publisher.PlanAndPublish(context.Background(), &Target{
		AliasID:  unknown,
		Document: []byte("document"),
	})
	assert.True(t, errors.Is(err, client.ErrNotFound))
}

func TestPublisher_NoWaitForInclusion(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)

	// a connector that never confirms must not block a fire-and-forget publish
	connector.metadataHandler = func(blockID ledgerstate.BlockID) (*client.BlockMetadata, error) {
		return &client.BlockMetadata{BlockID: blockID, InclusionState: ledgerstate.InclusionStatePending}, nil
	}

	published, err := publisher.PlanAndPublish(context.Background(), &Target{
		Document:        []byte("document"),
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.WaitForInclusion(false))
	require.NoError(t, err)
	assert.False(t, published.Document.AliasID.IsEmpty())
	require.Len(t, connector.submittedBlocks, 1)
	assert.Equal(t, connector.submittedBlocks[0], published.BlockID)
}

func TestPublisher_InclusionTimeout(t *testing.T) {
	connector := newMockConnector()
	keyStore := NewInMemoryKeyStore()
	walletAddress, err := keyStore.NewAddress()
	require.NoError(t, err)
	publisher := NewPublisher(connector, keyStore, walletAddress, nil, nil)

	connector.addBasicOutput(100_000, walletAddress)
	connector.metadataHandler = func(blockID ledgerstate.BlockID) (*client.BlockMetadata, error) {
		return &client.BlockMetadata{BlockID: blockID, InclusionState: ledgerstate.InclusionStatePending}, nil
	}

	_, err = publisher.PlanAndPublish(context.Background(), &Target{
		Document:        []byte("document"),
		StateController: walletAddress,
		Governor:        walletAddress,
	}, publishoptions.RetryInterval(time.Millisecond), publishoptions.MaxAttempts(2))
	assert.True(t, errors.Is(err, ErrInclusionTimeout))

	// the block was submitted; only observation gave up
	assert.Len(t, connector.submittedBlocks, 1)
}
