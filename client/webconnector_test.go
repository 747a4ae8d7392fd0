package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

func TestWebConnector_NodeInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/info", r.URL.Path)
		writeJSON(t, w, &NodeInfoResponse{
			Version:        "1.0.0",
			NetworkID:      42,
			NetworkHRP:     "testnet",
			CostPerByte:    1,
			OutputOverhead: 10,
		})
	}))
	defer server.Close()

	connector := NewWebConnector(server.URL)

	networkID, err := connector.NetworkID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, networkID)

	networkHRP, err := connector.NetworkHRP()
	require.NoError(t, err)
	assert.Equal(t, "testnet", networkHRP)

	// rent parameters advertised by the node drive the deposit computation
	output := ledgerstate.NewBasicOutput(0, randomTestAddress(t))
	minimumDeposit, err := connector.MinimumStorageDeposit(output)
	require.NoError(t, err)
	assert.EqualValues(t, (uint64(len(output.Bytes()))+10)*1, minimumDeposit)
}

func TestWebConnector_Output(t *testing.T) {
	output := ledgerstate.NewBasicOutput(1000, randomTestAddress(t))
	outputID := ledgerstate.NewOutputID(ledgerstate.TransactionID{1}, 0)
	output.SetID(outputID)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/outputs/"+outputID.Base58(), r.URL.Path)
		writeJSON(t, w, &OutputResponse{
			OutputID: outputID.Base58(),
			Output:   base58.Encode(output.Bytes()),
			Spent:    true,
		})
	}))
	defer server.Close()

	connector := NewWebConnector(server.URL)

	restored, err := connector.Output(outputID)
	require.NoError(t, err)
	assert.Equal(t, outputID, restored.ID())
	assert.EqualValues(t, 1000, restored.Amount())

	spent, err := connector.OutputSpent(outputID)
	require.NoError(t, err)
	assert.True(t, spent)
}

func TestWebConnector_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	connector := NewWebConnector(server.URL)

	_, _, err := connector.AliasOutputByAliasID(ledgerstate.AliasID{1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWebConnector_SubmitBlock(t *testing.T) {
	block, err := ledgerstate.NewBlock([]ledgerstate.BlockID{{1}}, nil, 0)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/blocks", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		request := &SubmitBlockRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		blockBytes, decodeErr := base58.Decode(request.Block)
		require.NoError(t, decodeErr)
		received, _, parseErr := ledgerstate.BlockFromBytes(blockBytes)
		require.NoError(t, parseErr)

		writeJSON(t, w, &SubmitBlockResponse{BlockID: received.ID().Base58()})
	}))
	defer server.Close()

	connector := NewWebConnector(server.URL)

	blockID, err := connector.SubmitBlock(block)
	require.NoError(t, err)
	assert.Equal(t, block.ID(), blockID)
}

func TestWebConnector_BlockMetadata(t *testing.T) {
	blockID := ledgerstate.BlockID{7}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/blocks/"+blockID.Base58()+"/metadata", r.URL.Path)
		writeJSON(t, w, &BlockMetadataResponse{
			BlockID:        blockID.Base58(),
			InclusionState: "pending",
			ShouldPromote:  true,
		})
	}))
	defer server.Close()

	connector := NewWebConnector(server.URL)

	metadata, err := connector.BlockMetadata(blockID)
	require.NoError(t, err)
	assert.Equal(t, ledgerstate.InclusionStatePending, metadata.InclusionState)
	assert.True(t, metadata.ShouldPromote)
	assert.False(t, metadata.ShouldReattach)
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func randomTestAddress(t *testing.T) ledgerstate.Address {
	t.Helper()

	var aliasID ledgerstate.AliasID
	aliasID[0] = 9

	return ledgerstate.NewAliasAddress(aliasID)
}
