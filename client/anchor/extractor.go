package anchor

import (
	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/packages/did"
	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// ExtractDocuments reconstructs the DID documents anchored by the given Block: every Alias Output among its
// transaction's produced Outputs becomes a Document. Freshly minted aliases (placeholder AliasID) get their identifier
// derived from the Output reference and the placeholder self-references inside the document resolved. It fails with
// ErrNoAnchoredDocument if the Block carries no transaction or no Alias Output.
func ExtractDocuments(block *ledgerstate.Block, networkHRP string) (documents []*did.Document, err error) {
	transaction := block.Payload()
	if transaction == nil {
		return nil, errors.Errorf("block %s carries no transaction payload: %w", block.ID(), ErrNoAnchoredDocument)
	}

	transactionID := transaction.ID()
	for index, output := range transaction.Essence().Outputs() {
		aliasOutput, ok := output.(*ledgerstate.AliasOutput)
		if !ok {
			continue
		}

		outputID := ledgerstate.NewOutputID(transactionID, uint16(index))
		aliasID := aliasOutput.AliasID()
		data := make([]byte, len(aliasOutput.StateMetadata()))
		copy(data, aliasOutput.StateMetadata())
		if aliasID.IsEmpty() {
			aliasID = ledgerstate.AliasIDFromOutputID(outputID)
			data = did.ReplacePlaceholder(data, aliasID, networkHRP)
		}

		documents = append(documents, &did.Document{
			DID:        did.FromAliasID(aliasID, networkHRP),
			AliasID:    aliasID,
			OutputID:   outputID,
			StateIndex: aliasOutput.StateIndex(),
			Data:       data,
		})
	}
	if len(documents) == 0 {
		return nil, errors.Errorf("block %s contains no Alias Output: %w", block.ID(), ErrNoAnchoredDocument)
	}

	return documents, nil
}
