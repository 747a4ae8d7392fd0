package anchor

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/client"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// mockConnector is an in-memory ledger implementing the Connector interface for tests. Submitted transactions are
// applied immediately: consumed outputs turn spent, produced outputs get their identifiers assigned and alias outputs
// are indexed by their derived identifier. Block metadata reports inclusion unless a metadataHandler is installed.
type mockConnector struct {
	networkID  uint64
	networkHRP string
	rent       *ledgerstate.RentStructure

	outputs    map[ledgerstate.OutputID]ledgerstate.Output
	spent      map[ledgerstate.OutputID]bool
	aliasIndex map[ledgerstate.AliasID]ledgerstate.OutputID
	blocks     map[ledgerstate.BlockID]*ledgerstate.Block

	metadataHandler func(blockID ledgerstate.BlockID) (*client.BlockMetadata, error)

	submittedBlocks  []ledgerstate.BlockID
	promotedBlocks   []ledgerstate.BlockID
	reattachedBlocks []ledgerstate.BlockID

	fundingCounter byte
	mutex          sync.Mutex
}

func newMockConnector() *mockConnector {
	return &mockConnector{
		networkID:  42,
		networkHRP: "testnet",
		rent:       &ledgerstate.RentStructure{CostPerByte: 1, OutputOverhead: 10},
		outputs:    make(map[ledgerstate.OutputID]ledgerstate.Output),
		spent:      make(map[ledgerstate.OutputID]bool),
		aliasIndex: make(map[ledgerstate.AliasID]ledgerstate.OutputID),
		blocks:     make(map[ledgerstate.BlockID]*ledgerstate.Block),
	}
}

// addBasicOutput funds the ledger with a Basic Output owned by the given address and returns it with its identifier
// assigned.
func (m *mockConnector) addBasicOutput(amount uint64, address ledgerstate.Address) *ledgerstate.BasicOutput {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.fundingCounter++
	var transactionID ledgerstate.TransactionID
	transactionID[0] = m.fundingCounter
	transactionID[1] = 0xff

	output := ledgerstate.NewBasicOutput(amount, address)
	output.SetID(ledgerstate.NewOutputID(transactionID, 0))
	m.outputs[output.ID()] = output

	return output
}

func (m *mockConnector) UnspentBasicOutputIDs(address ledgerstate.Address) (outputIDs []ledgerstate.OutputID, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for outputID, output := range m.outputs {
		if m.spent[outputID] {
			continue
		}
		basicOutput, ok := output.(*ledgerstate.BasicOutput)
		if !ok || !basicOutput.Address().Equals(address) {
			continue
		}
		outputIDs = append(outputIDs, outputID)
	}

	return outputIDs, nil
}

func (m *mockConnector) Output(outputID ledgerstate.OutputID) (ledgerstate.Output, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	output, exists := m.outputs[outputID]
	if !exists {
		return nil, client.ErrNotFound
	}

	return output, nil
}

func (m *mockConnector) OutputSpent(outputID ledgerstate.OutputID) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.outputs[outputID]; !exists {
		return false, client.ErrNotFound
	}

	return m.spent[outputID], nil
}

func (m *mockConnector) AliasOutputByAliasID(aliasID ledgerstate.AliasID) (ledgerstate.OutputID, *ledgerstate.AliasOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	outputID, exists := m.aliasIndex[aliasID]
	if !exists || m.spent[outputID] {
		return ledgerstate.EmptyOutputID, nil, client.ErrNotFound
	}

	return outputID, m.outputs[outputID].(*ledgerstate.AliasOutput), nil
}

func (m *mockConnector) MinimumStorageDeposit(output ledgerstate.Output) (uint64, error) {
	return m.rent.MinimumStorageDeposit(output), nil
}

func (m *mockConnector) NetworkID() (uint64, error) {
	return m.networkID, nil
}

func (m *mockConnector) NetworkHRP() (string, error) {
	return m.networkHRP, nil
}

func (m *mockConnector) Tips() ([]ledgerstate.BlockID, error) {
	return []ledgerstate.BlockID{{1}}, nil
}

func (m *mockConnector) SubmitBlock(block *ledgerstate.Block) (ledgerstate.BlockID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	blockID := block.ID()
	m.blocks[blockID] = block
	m.submittedBlocks = append(m.submittedBlocks, blockID)
	m.applyPayload(block.Payload())

	return blockID, nil
}

func (m *mockConnector) BlockMetadata(blockID ledgerstate.BlockID) (*client.BlockMetadata, error) {
	if m.metadataHandler != nil {
		return m.metadataHandler(blockID)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.blocks[blockID]; !exists {
		return nil, client.ErrNotFound
	}

	return &client.BlockMetadata{
		BlockID:        blockID,
		InclusionState: ledgerstate.InclusionStateIncluded,
	}, nil
}

func (m *mockConnector) Promote(blockID ledgerstate.BlockID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.blocks[blockID]; !exists {
		return client.ErrNotFound
	}
	m.promotedBlocks = append(m.promotedBlocks, blockID)

	return nil
}

func (m *mockConnector) Reattach(blockID ledgerstate.BlockID) (ledgerstate.BlockID, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	original, exists := m.blocks[blockID]
	if !exists {
		return ledgerstate.EmptyBlockID, client.ErrNotFound
	}

	reattached, err := ledgerstate.NewBlock([]ledgerstate.BlockID{blockID}, original.Payload(), original.Nonce()+1)
	if err != nil {
		return ledgerstate.EmptyBlockID, errors.Errorf("failed to reattach: %w", err)
	}
	newBlockID := reattached.ID()
	m.blocks[newBlockID] = reattached
	m.reattachedBlocks = append(m.reattachedBlocks, newBlockID)

	return newBlockID, nil
}

// applyPayload settles the transaction against the in-memory ledger.
func (m *mockConnector) applyPayload(transaction *ledgerstate.Transaction) {
	if transaction == nil {
		return
	}

	for _, input := range transaction.Essence().Inputs() {
		m.spent[input.ReferencedOutputID()] = true
	}

	transactionID := transaction.ID()
	for index, output := range transaction.Essence().Outputs() {
		produced := output.Clone()
		produced.SetID(ledgerstate.NewOutputID(transactionID, uint16(index)))
		m.outputs[produced.ID()] = produced

		if aliasOutput, ok := produced.(*ledgerstate.AliasOutput); ok {
			m.aliasIndex[aliasOutput.AliasIDOrDerived()] = produced.ID()
		}
	}
}

// code contract (make sure the type implements all required methods).
var _ client.Connector = &mockConnector{}
