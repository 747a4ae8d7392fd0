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

// region AliasID //////////////////////////////////////////////////////////////////////////////////////////////////////

// AliasIDLength contains the length of an AliasID.
const AliasIDLength = 32

// AliasID is the unique identifier of an Alias Output. It is the blake2b-256 digest of the OutputID that created the
// alias and never changes afterwards. The all-zero value is the placeholder carried by an Alias Output until its
// creating transaction is known.
type AliasID [AliasIDLength]byte

// EmptyAliasID is the placeholder AliasID of a not-yet-created alias.
var EmptyAliasID AliasID

// AliasIDFromOutputID deterministically derives the AliasID from the OutputID of the creating transaction output.
func AliasIDFromOutputID(outputID OutputID) AliasID {
	return blake2b.Sum256(outputID.Bytes())
}

// AliasIDFromBytes unmarshals an AliasID from a sequence of bytes.
func AliasIDFromBytes(data []byte) (aliasID AliasID, err error) {
	if len(data) != AliasIDLength {
		err = xerrors.Errorf("wrong length of AliasID bytes (%d): %w", len(data), cerrors.ErrParseBytesFailed)
		return
	}
	copy(aliasID[:], data)

	return
}

// AliasIDFromBase58 creates an AliasID from a base58 encoded string.
func AliasIDFromBase58(base58String string) (aliasID AliasID, err error) {
	decodedBytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded AliasID (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}

	return AliasIDFromBytes(decodedBytes)
}

// IsEmpty returns true if the AliasID is the all-zero placeholder.
func (a AliasID) IsEmpty() bool {
	return a == EmptyAliasID
}

// Bytes marshals the AliasID into a sequence of bytes.
func (a AliasID) Bytes() []byte {
	return a[:]
}

// Base58 returns a base58 encoded version of the AliasID.
func (a AliasID) Base58() string {
	return base58.Encode(a[:])
}

// String creates a human readable version of the AliasID.
func (a AliasID) String() string {
	return "AliasID(" + a.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AliasOutput //////////////////////////////////////////////////////////////////////////////////////////////////

// MaxStateMetadataSize is the limit put on the encoded document carried in the state metadata.
const MaxStateMetadataSize = 8 * 1024

// AliasOutput is an Output that carries arbitrary state data (the encoded DID document) and is controlled by two
// separate entities: the state controller may advance the state index and change the state metadata, the governor may
// change the controlling addresses or destroy the alias without touching the state.
type AliasOutput struct {
	outputID OutputID
	amount   uint64

	aliasID         AliasID
	stateIndex      uint32
	stateMetadata   []byte
	stateController Address
	governor        Address
}

// NewAliasOutputMint creates a new AliasOutput that mints an alias, i.e. the one carrying the placeholder AliasID
// until its creating transaction is known.
func NewAliasOutputMint(amount uint64, stateMetadata []byte, stateController, governor Address) (*AliasOutput, error) {
	if stateController == nil || governor == nil {
		return nil, xerrors.New("AliasOutput: state controller and governor addresses are mandatory")
	}
	output := &AliasOutput{
		amount:          amount,
		stateController: stateController.Clone(),
		governor:        governor.Clone(),
	}
	if err := output.SetStateMetadata(stateMetadata); err != nil {
		return nil, err
	}

	return output, nil
}

// NewAliasOutputNext creates the successor of the AliasOutput for the next transaction. A state transition advances
// the state index (the state controller authorizes it), a governance transition keeps the state index unchanged (the
// governor authorizes it).
func (a *AliasOutput) NewAliasOutputNext(governanceUpdate bool) *AliasOutput {
	next := a.clone()
	next.outputID = EmptyOutputID
	next.aliasID = a.AliasIDOrDerived()
	if !governanceUpdate {
		next.stateIndex = a.stateIndex + 1
	}

	return next
}

// AliasOutputFromMarshalUtil unmarshals an AliasOutput using a MarshalUtil (for easier unmarshaling).
func AliasOutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *AliasOutput, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if OutputType(outputType) != AliasOutputType {
		err = xerrors.Errorf("invalid OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	output = &AliasOutput{}
	if output.amount, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse amount (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	aliasIDBytes, err := marshalUtil.ReadBytes(AliasIDLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse AliasID (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(output.aliasID[:], aliasIDBytes)
	if output.stateIndex, err = marshalUtil.ReadUint32(); err != nil {
		err = xerrors.Errorf("failed to parse state index (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	metadataSize, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse state metadata size (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if metadataSize > 0 {
		if output.stateMetadata, err = marshalUtil.ReadBytes(int(metadataSize)); err != nil {
			err = xerrors.Errorf("failed to parse state metadata (%v): %w", err, cerrors.ErrParseBytesFailed)
			return
		}
	}
	if output.stateController, err = AddressFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse state controller address: %w", err)
		return
	}
	if output.governor, err = AddressFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse governor address: %w", err)
		return
	}

	return
}

// AliasID returns the identifier carried by the AliasOutput (the all-zero placeholder for a minting output).
func (a *AliasOutput) AliasID() AliasID {
	return a.aliasID
}

// AliasIDOrDerived returns the carried AliasID, deriving it from the assigned OutputID when the output still carries
// the placeholder. Derivation requires the OutputID to be set.
func (a *AliasOutput) AliasIDOrDerived() AliasID {
	if !a.aliasID.IsEmpty() {
		return a.aliasID
	}
	if a.outputID == EmptyOutputID {
		panic("AliasOutput: cannot derive the AliasID of a minting output without an assigned OutputID")
	}

	return AliasIDFromOutputID(a.outputID)
}

// SetAliasID sets the carried AliasID. It is used when constructing successors of a known alias.
func (a *AliasOutput) SetAliasID(aliasID AliasID) {
	a.aliasID = aliasID
}

// AliasAddress returns the AliasAddress of the alias this output belongs to.
func (a *AliasOutput) AliasAddress() *AliasAddress {
	return NewAliasAddress(a.AliasIDOrDerived())
}

// StateIndex returns the monotonically increasing state index of the AliasOutput.
func (a *AliasOutput) StateIndex() uint32 {
	return a.stateIndex
}

// StateMetadata returns the opaque state metadata bytes (the encoded DID document).
func (a *AliasOutput) StateMetadata() []byte {
	return a.stateMetadata
}

// SetStateMetadata replaces the state metadata bytes.
func (a *AliasOutput) SetStateMetadata(data []byte) error {
	if len(data) > MaxStateMetadataSize {
		return xerrors.Errorf("AliasOutput: state metadata of %d bytes exceeds the maximum of %d", len(data), MaxStateMetadataSize)
	}
	a.stateMetadata = make([]byte, len(data))
	copy(a.stateMetadata, data)

	return nil
}

// StateController returns the Address that authorizes state transitions.
func (a *AliasOutput) StateController() Address {
	return a.stateController
}

// SetStateController replaces the state controller Address.
func (a *AliasOutput) SetStateController(address Address) {
	a.stateController = address.Clone()
}

// Governor returns the Address that authorizes governance transitions.
func (a *AliasOutput) Governor() Address {
	return a.governor
}

// SetGovernor replaces the governor Address.
func (a *AliasOutput) SetGovernor(address Address) {
	a.governor = address.Clone()
}

// SetAmount replaces the token amount held by the AliasOutput.
func (a *AliasOutput) SetAmount(amount uint64) {
	a.amount = amount
}

// ID returns the identifier of the Output.
func (a *AliasOutput) ID() OutputID {
	return a.outputID
}

// SetID sets the identifier of the Output.
func (a *AliasOutput) SetID(outputID OutputID) Output {
	a.outputID = outputID

	return a
}

// Type returns the OutputType of the Output.
func (a *AliasOutput) Type() OutputType {
	return AliasOutputType
}

// Amount returns the token amount held by the Output.
func (a *AliasOutput) Amount() uint64 {
	return a.amount
}

// UnlockConditions returns the state controller and governor conditions of the AliasOutput.
func (a *AliasOutput) UnlockConditions() UnlockConditions {
	return UnlockConditions{
		NewStateControllerAddressUnlockCondition(a.stateController),
		NewGovernorAddressUnlockCondition(a.governor),
	}
}

// Input returns an Input that references the Output.
func (a *AliasOutput) Input() *Input {
	if a.ID() == EmptyOutputID {
		panic("AliasOutput: Outputs that haven't been assigned an ID yet cannot be converted to an Input")
	}

	return NewInput(a.ID())
}

// Clone creates a copy of the Output.
func (a *AliasOutput) Clone() Output {
	return a.clone()
}

func (a *AliasOutput) clone() *AliasOutput {
	cloned := &AliasOutput{
		outputID:        a.outputID,
		amount:          a.amount,
		aliasID:         a.aliasID,
		stateIndex:      a.stateIndex,
		stateMetadata:   make([]byte, len(a.stateMetadata)),
		stateController: a.stateController.Clone(),
		governor:        a.governor.Clone(),
	}
	copy(cloned.stateMetadata, a.stateMetadata)

	return cloned
}

// Bytes returns a marshaled version of the Output.
func (a *AliasOutput) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(AliasOutputType)).
		WriteUint64(a.amount).
		WriteBytes(a.aliasID.Bytes()).
		WriteUint32(a.stateIndex).
		WriteUint16(uint16(len(a.stateMetadata))).
		WriteBytes(a.stateMetadata).
		WriteBytes(a.stateController.Bytes()).
		WriteBytes(a.governor.Bytes()).
		Bytes()
}

// Compare offers a comparator for Outputs.
func (a *AliasOutput) Compare(other Output) int {
	return bytes.Compare(a.Bytes(), other.Bytes())
}

// String returns a human readable version of the Output.
func (a *AliasOutput) String() string {
	return stringify.Struct("AliasOutput",
		stringify.StructField("outputID", a.outputID),
		stringify.StructField("amount", a.amount),
		stringify.StructField("aliasID", a.aliasID),
		stringify.StructField("stateIndex", a.stateIndex),
		stringify.StructField("stateMetadataSize", uint64(len(a.stateMetadata))),
		stringify.StructField("stateController", a.stateController),
		stringify.StructField("governor", a.governor),
	)
}

// code contract (make sure the type implements all required methods)
var _ Output = &AliasOutput{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
