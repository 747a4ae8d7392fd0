package ledgerstate

import (
	"bytes"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// region NFTID ////////////////////////////////////////////////////////////////////////////////////////////////////////

// NFTIDLength contains the length of an NFTID.
const NFTIDLength = 32

// NFTID is the unique identifier of an NFT Output, derived the same way as an AliasID.
type NFTID [NFTIDLength]byte

// EmptyNFTID is the placeholder NFTID of a not-yet-created NFT.
var EmptyNFTID NFTID

// NFTIDFromOutputID deterministically derives the NFTID from the OutputID of the creating transaction output.
func NFTIDFromOutputID(outputID OutputID) NFTID {
	return blake2b.Sum256(outputID.Bytes())
}

// IsEmpty returns true if the NFTID is the all-zero placeholder.
func (n NFTID) IsEmpty() bool {
	return n == EmptyNFTID
}

// Bytes marshals the NFTID into a sequence of bytes.
func (n NFTID) Bytes() []byte {
	return n[:]
}

// Base58 returns a base58 encoded version of the NFTID.
func (n NFTID) Base58() string {
	return base58.Encode(n[:])
}

// String creates a human readable version of the NFTID.
func (n NFTID) String() string {
	return "NFTID(" + n.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region NFTOutput ////////////////////////////////////////////////////////////////////////////////////////////////////

// NFTOutput is an Output owned by a single Address that carries an immutable identifier.
type NFTOutput struct {
	outputID OutputID
	amount   uint64
	nftID    NFTID
	address  Address
}

// NewNFTOutput creates an NFTOutput holding the given amount, owned by the given Address.
func NewNFTOutput(amount uint64, nftID NFTID, address Address) *NFTOutput {
	return &NFTOutput{
		amount:  amount,
		nftID:   nftID,
		address: address.Clone(),
	}
}

// NFTOutputFromMarshalUtil unmarshals an NFTOutput using a MarshalUtil (for easier unmarshaling).
func NFTOutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *NFTOutput, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if OutputType(outputType) != NFTOutputType {
		err = xerrors.Errorf("invalid OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	output = &NFTOutput{}
	if output.amount, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse amount (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	nftIDBytes, err := marshalUtil.ReadBytes(NFTIDLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse NFTID (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(output.nftID[:], nftIDBytes)
	if output.address, err = AddressFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Address: %w", err)
		return
	}

	return
}

// NFTID returns the identifier carried by the NFTOutput.
func (n *NFTOutput) NFTID() NFTID {
	return n.nftID
}

// NFTIDOrDerived returns the carried NFTID, deriving it from the assigned OutputID when the output still carries the
// placeholder.
func (n *NFTOutput) NFTIDOrDerived() NFTID {
	if !n.nftID.IsEmpty() {
		return n.nftID
	}
	if n.outputID == EmptyOutputID {
		panic("NFTOutput: cannot derive the NFTID of a minting output without an assigned OutputID")
	}

	return NFTIDFromOutputID(n.outputID)
}

// NFTAddress returns the NFTAddress of the NFT this output belongs to.
func (n *NFTOutput) NFTAddress() *NFTAddress {
	return NewNFTAddress(n.NFTIDOrDerived())
}

// Address returns the Address that owns the NFTOutput.
func (n *NFTOutput) Address() Address {
	return n.address
}

// ID returns the identifier of the Output.
func (n *NFTOutput) ID() OutputID {
	return n.outputID
}

// SetID sets the identifier of the Output.
func (n *NFTOutput) SetID(outputID OutputID) Output {
	n.outputID = outputID

	return n
}

// Type returns the OutputType of the Output.
func (n *NFTOutput) Type() OutputType {
	return NFTOutputType
}

// Amount returns the token amount held by the Output.
func (n *NFTOutput) Amount() uint64 {
	return n.amount
}

// UnlockConditions returns the single owner condition of the NFTOutput.
func (n *NFTOutput) UnlockConditions() UnlockConditions {
	return UnlockConditions{NewAddressUnlockCondition(n.address)}
}

// Input returns an Input that references the Output.
func (n *NFTOutput) Input() *Input {
	if n.ID() == EmptyOutputID {
		panic("NFTOutput: Outputs that haven't been assigned an ID yet cannot be converted to an Input")
	}

	return NewInput(n.ID())
}

// Clone creates a copy of the Output.
func (n *NFTOutput) Clone() Output {
	return &NFTOutput{
		outputID: n.outputID,
		amount:   n.amount,
		nftID:    n.nftID,
		address:  n.address.Clone(),
	}
}

// Bytes returns a marshaled version of the Output.
func (n *NFTOutput) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(NFTOutputType)).
		WriteUint64(n.amount).
		WriteBytes(n.nftID.Bytes()).
		WriteBytes(n.address.Bytes()).
		Bytes()
}

// Compare offers a comparator for Outputs.
func (n *NFTOutput) Compare(other Output) int {
	return bytes.Compare(n.Bytes(), other.Bytes())
}

// String returns a human readable version of the Output.
func (n *NFTOutput) String() string {
	return stringify.Struct("NFTOutput",
		stringify.StructField("outputID", n.outputID),
		stringify.StructField("amount", n.amount),
		stringify.StructField("nftID", n.nftID),
		stringify.StructField("address", n.address),
	)
}

// code contract (make sure the type implements all required methods)
var _ Output = &NFTOutput{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
