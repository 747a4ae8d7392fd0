package client

// region request/response models //////////////////////////////////////////////////////////////////////////////////////

// NodeInfoResponse is the response of the GET /info endpoint.
type NodeInfoResponse struct {
	Version        string `json:"version"`
	NetworkID      uint64 `json:"networkID"`
	NetworkHRP     string `json:"networkHRP"`
	CostPerByte    uint64 `json:"costPerByte"`
	OutputOverhead uint64 `json:"outputOverhead"`
	Error          string `json:"error,omitempty"`
}

// UnspentOutputsResponse is the response of the GET /addresses/:address/unspentOutputIDs endpoint.
type UnspentOutputsResponse struct {
	Address   string   `json:"address"`
	OutputIDs []string `json:"outputIDs"`
	Error     string   `json:"error,omitempty"`
}

// OutputResponse is the response of the GET /outputs/:outputID endpoint. The Output is transported as base58 encoded
// raw bytes so that both sides share a single canonical encoding.
type OutputResponse struct {
	OutputID string `json:"outputID"`
	Output   string `json:"output"`
	Spent    bool   `json:"spent"`
	Error    string `json:"error,omitempty"`
}

// AliasOutputResponse is the response of the GET /aliases/:aliasID endpoint.
type AliasOutputResponse struct {
	AliasID  string `json:"aliasID"`
	OutputID string `json:"outputID"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
}

// TipsResponse is the response of the GET /tips endpoint.
type TipsResponse struct {
	BlockIDs []string `json:"blockIDs"`
	Error    string   `json:"error,omitempty"`
}

// SubmitBlockRequest is the request of the POST /blocks endpoint.
type SubmitBlockRequest struct {
	Block string `json:"block"`
}

// SubmitBlockResponse is the response of the POST /blocks endpoint.
type SubmitBlockResponse struct {
	BlockID string `json:"blockID"`
	Error   string `json:"error,omitempty"`
}

// BlockMetadataResponse is the response of the GET /blocks/:blockID/metadata endpoint.
type BlockMetadataResponse struct {
	BlockID        string `json:"blockID"`
	InclusionState string `json:"inclusionState"`
	ShouldPromote  bool   `json:"shouldPromote"`
	ShouldReattach bool   `json:"shouldReattach"`
	Error          string `json:"error,omitempty"`
}

// PromoteResponse is the response of the POST /blocks/:blockID/promote endpoint.
type PromoteResponse struct {
	BlockID string `json:"blockID"`
	Error   string `json:"error,omitempty"`
}

// ReattachResponse is the response of the POST /blocks/:blockID/reattach endpoint. BlockID carries the identifier of
// the freshly issued Block.
type ReattachResponse struct {
	BlockID string `json:"blockID"`
	Error   string `json:"error,omitempty"`
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
