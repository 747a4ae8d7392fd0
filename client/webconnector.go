package client

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/mr-tron/base58"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region WebConnector /////////////////////////////////////////////////////////////////////////////////////////////////

// WebConnector implements the Connector interface against the REST API of a node. Outputs, Transactions and Blocks
// travel as base58 encoded raw bytes so both sides share a single canonical encoding.
type WebConnector struct {
	restClient *resty.Client

	nodeInfoOnce sync.Once
	nodeInfo     *NodeInfoResponse
	nodeInfoErr  error
}

// NewWebConnector creates a Connector that connects to the node at the given base URL.
func NewWebConnector(baseURL string, setters ...func(*resty.Client)) *WebConnector {
	restClient := resty.New().
		SetHostURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	for _, setter := range setters {
		setter(restClient)
	}

	return &WebConnector{
		restClient: restClient,
	}
}

// ServerStatus fetches the info endpoint of the node and reports whether it is reachable and synchronized enough to
// answer ledger queries.
func (w *WebConnector) ServerStatus() (version string, err error) {
	info, err := w.info()
	if err != nil {
		return "", err
	}

	return info.Version, nil
}

// UnspentBasicOutputIDs returns the identifiers of the unspent Basic Outputs owned by the given address.
func (w *WebConnector) UnspentBasicOutputIDs(address ledgerstate.Address) (outputIDs []ledgerstate.OutputID, err error) {
	res := &UnspentOutputsResponse{}
	if err = w.get("/addresses/"+address.Base58()+"/unspentOutputIDs", res, &res.Error); err != nil {
		return nil, errors.Errorf("failed to fetch unspent outputs of %s: %w", address.Base58(), err)
	}

	outputIDs = make([]ledgerstate.OutputID, len(res.OutputIDs))
	for i, encodedOutputID := range res.OutputIDs {
		if outputIDs[i], err = ledgerstate.OutputIDFromBase58(encodedOutputID); err != nil {
			return nil, errors.Errorf("failed to parse OutputID %q: %w", encodedOutputID, err)
		}
	}

	return outputIDs, nil
}

// Output fetches the Output with the given identifier.
func (w *WebConnector) Output(outputID ledgerstate.OutputID) (output ledgerstate.Output, err error) {
	res, err := w.output(outputID)
	if err != nil {
		return nil, err
	}

	return w.decodeOutput(res.Output, outputID)
}

// OutputSpent reports whether the Output with the given identifier is already spent.
func (w *WebConnector) OutputSpent(outputID ledgerstate.OutputID) (spent bool, err error) {
	res, err := w.output(outputID)
	if err != nil {
		return false, err
	}

	return res.Spent, nil
}

// AliasOutputByAliasID fetches the current unspent Alias Output of the given alias.
func (w *WebConnector) AliasOutputByAliasID(aliasID ledgerstate.AliasID) (outputID ledgerstate.OutputID, aliasOutput *ledgerstate.AliasOutput, err error) {
	res := &AliasOutputResponse{}
	if err = w.get("/aliases/"+aliasID.Base58(), res, &res.Error); err != nil {
		err = errors.Errorf("failed to fetch Alias Output of %s: %w", aliasID.Base58(), err)
		return
	}

	if outputID, err = ledgerstate.OutputIDFromBase58(res.OutputID); err != nil {
		err = errors.Errorf("failed to parse OutputID %q: %w", res.OutputID, err)
		return
	}
	output, err := w.decodeOutput(res.Output, outputID)
	if err != nil {
		return
	}
	aliasOutput, ok := output.(*ledgerstate.AliasOutput)
	if !ok {
		err = errors.Errorf("output %s indexed for alias %s is not an Alias Output", outputID, aliasID.Base58())
		return
	}

	return
}

// MinimumStorageDeposit returns the minimum amount the given Output must hold, computed from the rent parameters the
// node advertised in its info endpoint.
func (w *WebConnector) MinimumStorageDeposit(output ledgerstate.Output) (uint64, error) {
	info, err := w.info()
	if err != nil {
		return 0, err
	}
	rentStructure := &ledgerstate.RentStructure{
		CostPerByte:    info.CostPerByte,
		OutputOverhead: info.OutputOverhead,
	}
	if rentStructure.CostPerByte == 0 {
		rentStructure = ledgerstate.DefaultRentStructure()
	}

	return rentStructure.MinimumStorageDeposit(output), nil
}

// NetworkID returns the identifier of the network the node participates in.
func (w *WebConnector) NetworkID() (uint64, error) {
	info, err := w.info()
	if err != nil {
		return 0, err
	}

	return info.NetworkID, nil
}

// NetworkHRP returns the human-readable prefix of the network.
func (w *WebConnector) NetworkHRP() (string, error) {
	info, err := w.info()
	if err != nil {
		return "", err
	}

	return info.NetworkHRP, nil
}

// Tips returns currently valid parent references for a new Block.
func (w *WebConnector) Tips() (blockIDs []ledgerstate.BlockID, err error) {
	res := &TipsResponse{}
	if err = w.get("/tips", res, &res.Error); err != nil {
		return nil, errors.Errorf("failed to fetch tips: %w", err)
	}

	blockIDs = make([]ledgerstate.BlockID, len(res.BlockIDs))
	for i, encodedBlockID := range res.BlockIDs {
		if blockIDs[i], err = ledgerstate.BlockIDFromBase58(encodedBlockID); err != nil {
			return nil, errors.Errorf("failed to parse BlockID %q: %w", encodedBlockID, err)
		}
	}

	return blockIDs, nil
}

// SubmitBlock submits the given Block to the network and returns its identifier.
func (w *WebConnector) SubmitBlock(block *ledgerstate.Block) (blockID ledgerstate.BlockID, err error) {
	res := &SubmitBlockResponse{}
	if err = w.post("/blocks", &SubmitBlockRequest{Block: base58.Encode(block.Bytes())}, res, &res.Error); err != nil {
		err = errors.Errorf("failed to submit Block: %w", err)
		return
	}

	return ledgerstate.BlockIDFromBase58(res.BlockID)
}

// BlockMetadata fetches the confirmation status of the given Block.
func (w *WebConnector) BlockMetadata(blockID ledgerstate.BlockID) (metadata *BlockMetadata, err error) {
	res := &BlockMetadataResponse{}
	if err = w.get("/blocks/"+blockID.Base58()+"/metadata", res, &res.Error); err != nil {
		return nil, errors.Errorf("failed to fetch metadata of Block %s: %w", blockID, err)
	}

	inclusionState, err := inclusionStateFromString(res.InclusionState)
	if err != nil {
		return nil, err
	}

	return &BlockMetadata{
		BlockID:        blockID,
		InclusionState: inclusionState,
		ShouldPromote:  res.ShouldPromote,
		ShouldReattach: res.ShouldReattach,
	}, nil
}

// Promote re-references the given Block to give it more confirmation weight.
func (w *WebConnector) Promote(blockID ledgerstate.BlockID) (err error) {
	res := &PromoteResponse{}
	if err = w.post("/blocks/"+blockID.Base58()+"/promote", nil, res, &res.Error); err != nil {
		return errors.Errorf("failed to promote Block %s: %w", blockID, err)
	}

	return nil
}

// Reattach wraps the payload of the given Block into a fresh Block and returns the new identifier.
func (w *WebConnector) Reattach(blockID ledgerstate.BlockID) (newBlockID ledgerstate.BlockID, err error) {
	res := &ReattachResponse{}
	if err = w.post("/blocks/"+blockID.Base58()+"/reattach", nil, res, &res.Error); err != nil {
		err = errors.Errorf("failed to reattach Block %s: %w", blockID, err)
		return
	}

	return ledgerstate.BlockIDFromBase58(res.BlockID)
}

func (w *WebConnector) info() (*NodeInfoResponse, error) {
	w.nodeInfoOnce.Do(func() {
		res := &NodeInfoResponse{}
		if err := w.get("/info", res, &res.Error); err != nil {
			w.nodeInfoErr = errors.Errorf("failed to fetch node info: %w", err)
			return
		}
		w.nodeInfo = res
	})

	return w.nodeInfo, w.nodeInfoErr
}

func (w *WebConnector) output(outputID ledgerstate.OutputID) (*OutputResponse, error) {
	res := &OutputResponse{}
	if err := w.get("/outputs/"+outputID.Base58(), res, &res.Error); err != nil {
		return nil, errors.Errorf("failed to fetch Output %s: %w", outputID, err)
	}

	return res, nil
}

func (w *WebConnector) decodeOutput(encodedOutput string, outputID ledgerstate.OutputID) (output ledgerstate.Output, err error) {
	outputBytes, err := base58.Decode(encodedOutput)
	if err != nil {
		return nil, errors.Errorf("failed to decode base58 encoded Output: %w", err)
	}
	if output, _, err = ledgerstate.OutputFromBytes(outputBytes); err != nil {
		return nil, errors.Errorf("failed to parse Output: %w", err)
	}
	output.SetID(outputID)

	return output, nil
}

func (w *WebConnector) get(uri string, result interface{}, resultErr *string) error {
	res, err := w.restClient.R().SetResult(result).Get(uri)

	return w.checkResponse(res, err, resultErr)
}

func (w *WebConnector) post(uri string, body interface{}, result interface{}, resultErr *string) error {
	req := w.restClient.R().SetResult(result)
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Post(uri)

	return w.checkResponse(res, err, resultErr)
}

func (w *WebConnector) checkResponse(res *resty.Response, err error, resultErr *string) error {
	if err != nil {
		return err
	}
	if res.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if res.IsError() {
		if *resultErr != "" {
			return errors.Errorf("request failed with status %d: %s", res.StatusCode(), *resultErr)
		}

		return errors.Errorf("request failed with status %d", res.StatusCode())
	}

	return nil
}

func inclusionStateFromString(inclusionState string) (ledgerstate.InclusionState, error) {
	switch inclusionState {
	case "pending":
		return ledgerstate.InclusionStatePending, nil
	case "included":
		return ledgerstate.InclusionStateIncluded, nil
	case "noTransaction":
		return ledgerstate.InclusionStateNoTransaction, nil
	case "conflicting":
		return ledgerstate.InclusionStateConflicting, nil
	default:
		return ledgerstate.InclusionStatePending, errors.Errorf("unknown inclusion state %q", inclusionState)
	}
}

// code contract (make sure the type implements all required methods).
var _ Connector = &WebConnector{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
