package client

import (
	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// ErrNotFound is returned when the ledger has no entry for the requested alias, output or block.
var ErrNotFound = errors.New("not found")

// BlockMetadata is the confirmation status a node reports for a tracked Block.
type BlockMetadata struct {
	// BlockID identifies the Block the metadata belongs to.
	BlockID ledgerstate.BlockID

	// InclusionState reports whether the Block is part of the ledger's accepted history.
	InclusionState ledgerstate.InclusionState

	// ShouldPromote signals that the Block is still a valid tip candidate but needs more confirmation weight.
	ShouldPromote bool

	// ShouldReattach signals that the Block is no longer a valid tip and its payload needs a fresh Block.
	ShouldReattach bool
}

// Connector defines the narrow node interface the anchoring core requires. Implementations talk to a single node and
// surface its view of the ledger.
type Connector interface {
	// UnspentBasicOutputIDs returns the identifiers of the unspent Basic Outputs owned by the given address.
	UnspentBasicOutputIDs(address ledgerstate.Address) ([]ledgerstate.OutputID, error)

	// Output fetches the Output with the given identifier.
	Output(outputID ledgerstate.OutputID) (ledgerstate.Output, error)

	// OutputSpent reports whether the Output with the given identifier is already spent.
	OutputSpent(outputID ledgerstate.OutputID) (bool, error)

	// AliasOutputByAliasID fetches the current unspent Alias Output of the given alias. It fails with ErrNotFound if
	// the ledger has none indexed.
	AliasOutputByAliasID(aliasID ledgerstate.AliasID) (ledgerstate.OutputID, *ledgerstate.AliasOutput, error)

	// MinimumStorageDeposit returns the minimum amount the given Output must hold to remain valid.
	MinimumStorageDeposit(output ledgerstate.Output) (uint64, error)

	// NetworkID returns the identifier of the network the node participates in.
	NetworkID() (uint64, error)

	// NetworkHRP returns the human-readable prefix of the network, used for DID formatting.
	NetworkHRP() (string, error)

	// Tips returns currently valid parent references for a new Block.
	Tips() ([]ledgerstate.BlockID, error)

	// SubmitBlock submits the given Block to the network and returns its identifier.
	SubmitBlock(block *ledgerstate.Block) (ledgerstate.BlockID, error)

	// BlockMetadata fetches the confirmation status of the given Block.
	BlockMetadata(blockID ledgerstate.BlockID) (*BlockMetadata, error)

	// Promote re-references the given Block to give it more confirmation weight. It produces no new payload.
	Promote(blockID ledgerstate.BlockID) error

	// Reattach wraps the payload of the given Block into a fresh Block and returns the new identifier.
	Reattach(blockID ledgerstate.BlockID) (ledgerstate.BlockID, error)
}
