package ledgerstate

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"
)

// region OutputType ///////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// BasicOutputType represents a simple value Output with a single owning Address.
	BasicOutputType OutputType = iota

	// AliasOutputType represents an Output that carries arbitrary state data and is controlled by a state controller
	// and a governor.
	AliasOutputType

	// FoundryOutputType represents an Output that is immutably owned by an alias.
	FoundryOutputType

	// NFTOutputType represents an Output that is owned by an Address and carries an immutable identifier.
	NFTOutputType

	// TreasuryOutputType represents the Output holding the treasury. It can never be spent by a wallet.
	TreasuryOutputType
)

// OutputType represents the type of an Output. Outputs of different types can have different unlock rules.
type OutputType byte

// String returns a human readable representation of the OutputType.
func (o OutputType) String() string {
	return [...]string{
		"BasicOutputType",
		"AliasOutputType",
		"FoundryOutputType",
		"NFTOutputType",
		"TreasuryOutputType",
	}[o]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OutputID /////////////////////////////////////////////////////////////////////////////////////////////////////

// OutputIDLength contains the length of an OutputID (TransactionID plus output index).
const OutputIDLength = TransactionIDLength + marshalutil.Uint16Size

// MaxOutputCount is the maximum number of Outputs a Transaction can create.
const MaxOutputCount = 128

// OutputID is the unique identifier of an Output (the TransactionID of the creating Transaction concatenated with the
// index of the Output within that Transaction).
type OutputID [OutputIDLength]byte

// EmptyOutputID represents the zero value of an OutputID.
var EmptyOutputID OutputID

// NewOutputID is the constructor for the OutputID.
func NewOutputID(transactionID TransactionID, outputIndex uint16) (outputID OutputID) {
	if outputIndex >= MaxOutputCount {
		panic("output index exceeds threshold defined by MaxOutputCount")
	}

	copy(outputID[:TransactionIDLength], transactionID[:])
	binary.LittleEndian.PutUint16(outputID[TransactionIDLength:], outputIndex)

	return
}

// OutputIDFromBytes unmarshals an OutputID from a sequence of bytes.
func OutputIDFromBytes(bytes []byte) (outputID OutputID, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if outputID, err = OutputIDFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse OutputID from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// OutputIDFromBase58 creates an OutputID from a base58 encoded string.
func OutputIDFromBase58(base58String string) (outputID OutputID, err error) {
	decodedBytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded OutputID (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}

	if outputID, _, err = OutputIDFromBytes(decodedBytes); err != nil {
		err = xerrors.Errorf("failed to parse OutputID from bytes: %w", err)
		return
	}

	return
}

// OutputIDFromMarshalUtil unmarshals an OutputID using a MarshalUtil (for easier unmarshaling).
func OutputIDFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (outputID OutputID, err error) {
	outputIDBytes, err := marshalUtil.ReadBytes(OutputIDLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputID (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(outputID[:], outputIDBytes)

	if outputID.OutputIndex() >= MaxOutputCount {
		err = xerrors.Errorf("output index exceeds threshold defined by MaxOutputCount (%d): %w", MaxOutputCount, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// TransactionID returns the TransactionID part of an OutputID.
func (o OutputID) TransactionID() (transactionID TransactionID) {
	copy(transactionID[:], o[:TransactionIDLength])

	return
}

// OutputIndex returns the Output index part of an OutputID.
func (o OutputID) OutputIndex() uint16 {
	return binary.LittleEndian.Uint16(o[TransactionIDLength:])
}

// Bytes marshals the OutputID into a sequence of bytes.
func (o OutputID) Bytes() []byte {
	return o[:]
}

// Base58 returns a base58 encoded version of the OutputID.
func (o OutputID) Base58() string {
	return base58.Encode(o[:])
}

// Compare is a byte-wise comparator over two OutputIDs.
func (o OutputID) Compare(other OutputID) int {
	return bytes.Compare(o[:], other[:])
}

// String creates a human readable version of the OutputID.
func (o OutputID) String() string {
	return stringify.Struct("OutputID",
		stringify.StructField("transactionID", o.TransactionID()),
		stringify.StructField("outputIndex", o.OutputIndex()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Input ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Input is the reference to a consumed Output inside a TransactionEssence.
type Input struct {
	referencedOutputID OutputID
}

// NewInput creates an Input referencing the given OutputID.
func NewInput(outputID OutputID) *Input {
	return &Input{
		referencedOutputID: outputID,
	}
}

// InputFromMarshalUtil unmarshals an Input using a MarshalUtil (for easier unmarshaling).
func InputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (input *Input, err error) {
	input = &Input{}
	if input.referencedOutputID, err = OutputIDFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse referenced OutputID: %w", err)
		return
	}

	return
}

// ReferencedOutputID returns the OutputID of the Output this Input references.
func (i *Input) ReferencedOutputID() OutputID {
	return i.referencedOutputID
}

// Bytes returns a marshaled version of the Input.
func (i *Input) Bytes() []byte {
	return i.referencedOutputID.Bytes()
}

// String returns a human readable version of the Input.
func (i *Input) String() string {
	return stringify.Struct("Input",
		stringify.StructField("referencedOutputID", i.referencedOutputID),
	)
}

// Inputs represents the ordered list of Inputs of a TransactionEssence. The order is owned by the unlock construction
// (inputs follow the byte-wise ordering of their resolved unlock addresses) and is therefore never re-sorted here.
type Inputs []*Input

// Bytes returns a marshaled version of the Inputs.
func (i Inputs) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.WriteUint16(uint16(len(i)))
	for _, input := range i {
		marshalUtil.WriteBytes(input.Bytes())
	}

	return marshalUtil.Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Output ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Output is a generic interface for the different types of Outputs (with different unlock behaviors).
type Output interface {
	// ID returns the identifier of the Output that is used to address the Output in the ledger.
	ID() OutputID

	// SetID allows to set the identifier of the Output. We offer a setter for the property since Outputs that are
	// created to become part of a transaction usually do not have an identifier, yet as their identifier depends on
	// the TransactionID that is only determinable after the Transaction has been fully constructed.
	SetID(outputID OutputID) Output

	// Type returns the OutputType which allows us to generically handle Outputs of different types.
	Type() OutputType

	// Amount returns the ledger-native token amount held by the Output.
	Amount() uint64

	// UnlockConditions returns the conditions restricting who may consume the Output.
	UnlockConditions() UnlockConditions

	// Input returns an Input that references the Output.
	Input() *Input

	// Clone creates a copy of the Output.
	Clone() Output

	// Bytes returns a marshaled version of the Output.
	Bytes() []byte

	// String returns a human readable version of the Output for debug purposes.
	String() string

	// Compare offers a comparator for Outputs which returns -1 if the other Output is bigger, 1 if it is smaller and 0
	// if they are the same.
	Compare(other Output) int
}

// OutputFromBytes unmarshals an Output from a sequence of bytes.
func OutputFromBytes(bytes []byte) (output Output, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if output, err = OutputFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Output from MarshalUtil: %w", err)
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// OutputFromMarshalUtil unmarshals an Output using a MarshalUtil (for easier unmarshaling).
func OutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output Output, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	marshalUtil.ReadSeek(-1)

	switch OutputType(outputType) {
	case BasicOutputType:
		if output, err = BasicOutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse BasicOutput: %w", err)
			return
		}
	case AliasOutputType:
		if output, err = AliasOutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse AliasOutput: %w", err)
			return
		}
	case FoundryOutputType:
		if output, err = FoundryOutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse FoundryOutput: %w", err)
			return
		}
	case NFTOutputType:
		if output, err = NFTOutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse NFTOutput: %w", err)
			return
		}
	case TreasuryOutputType:
		if output, err = TreasuryOutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse TreasuryOutput: %w", err)
			return
		}
	default:
		err = xerrors.Errorf("unsupported OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Outputs //////////////////////////////////////////////////////////////////////////////////////////////////////

// Outputs represents the list of Outputs produced by a Transaction, in a deterministic byte-wise order.
type Outputs []Output

// NewOutputs creates a deterministically ordered list from the given Outputs.
func NewOutputs(outputs ...Output) (result Outputs) {
	result = make(Outputs, len(outputs))
	copy(result, outputs)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Compare(result[j]) < 0
	})

	return
}

// OutputsFromMarshalUtil unmarshals Outputs using a MarshalUtil (for easier unmarshaling).
func OutputsFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (outputs Outputs, err error) {
	outputCount, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse output count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	outputs = make(Outputs, outputCount)
	for i := uint16(0); i < outputCount; i++ {
		if outputs[i], err = OutputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse Output: %w", err)
			return
		}
	}

	return
}

// TotalAmount returns the sum of the amounts held by the Outputs.
func (o Outputs) TotalAmount() (total uint64) {
	for _, output := range o {
		total += output.Amount()
	}

	return
}

// Bytes returns a marshaled version of the Outputs.
func (o Outputs) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.WriteUint16(uint16(len(o)))
	for _, output := range o {
		marshalUtil.WriteBytes(output.Bytes())
	}

	return marshalUtil.Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region BasicOutput //////////////////////////////////////////////////////////////////////////////////////////////////

// BasicOutput is a simple value Output with a single owning Address. It is used as wallet funding and for reclaiming
// or returning excess value.
type BasicOutput struct {
	outputID OutputID
	amount   uint64
	address  Address
}

// NewBasicOutput creates a BasicOutput holding the given amount, owned by the given Address.
func NewBasicOutput(amount uint64, address Address) *BasicOutput {
	return &BasicOutput{
		amount:  amount,
		address: address.Clone(),
	}
}

// BasicOutputFromMarshalUtil unmarshals a BasicOutput using a MarshalUtil (for easier unmarshaling).
func BasicOutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *BasicOutput, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if OutputType(outputType) != BasicOutputType {
		err = xerrors.Errorf("invalid OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	output = &BasicOutput{}
	if output.amount, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse amount (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if output.address, err = AddressFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Address: %w", err)
		return
	}

	return
}

// Address returns the Address that owns the BasicOutput.
func (b *BasicOutput) Address() Address {
	return b.address
}

// ID returns the identifier of the Output.
func (b *BasicOutput) ID() OutputID {
	return b.outputID
}

// SetID sets the identifier of the Output.
func (b *BasicOutput) SetID(outputID OutputID) Output {
	b.outputID = outputID

	return b
}

// Type returns the OutputType of the Output.
func (b *BasicOutput) Type() OutputType {
	return BasicOutputType
}

// Amount returns the token amount held by the Output.
func (b *BasicOutput) Amount() uint64 {
	return b.amount
}

// UnlockConditions returns the single owner condition of the BasicOutput.
func (b *BasicOutput) UnlockConditions() UnlockConditions {
	return UnlockConditions{NewAddressUnlockCondition(b.address)}
}

// Input returns an Input that references the Output.
func (b *BasicOutput) Input() *Input {
	if b.ID() == EmptyOutputID {
		panic("BasicOutput: Outputs that haven't been assigned an ID yet cannot be converted to an Input")
	}

	return NewInput(b.ID())
}

// Clone creates a copy of the Output.
func (b *BasicOutput) Clone() Output {
	return &BasicOutput{
		outputID: b.outputID,
		amount:   b.amount,
		address:  b.address.Clone(),
	}
}

// Bytes returns a marshaled version of the Output.
func (b *BasicOutput) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(BasicOutputType)).
		WriteUint64(b.amount).
		WriteBytes(b.address.Bytes()).
		Bytes()
}

// Compare offers a comparator for Outputs.
func (b *BasicOutput) Compare(other Output) int {
	return bytes.Compare(b.Bytes(), other.Bytes())
}

// String returns a human readable version of the Output.
func (b *BasicOutput) String() string {
	return stringify.Struct("BasicOutput",
		stringify.StructField("outputID", b.outputID),
		stringify.StructField("amount", b.amount),
		stringify.StructField("address", b.address),
	)
}

// code contract (make sure the type implements all required methods)
var _ Output = &BasicOutput{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TreasuryOutput ///////////////////////////////////////////////////////////////////////////////////////////////

// TreasuryOutput is the Output holding the treasury. It is recognized during parsing but can never be spent by this
// module.
type TreasuryOutput struct {
	outputID OutputID
	amount   uint64
}

// NewTreasuryOutput creates a TreasuryOutput holding the given amount.
func NewTreasuryOutput(amount uint64) *TreasuryOutput {
	return &TreasuryOutput{
		amount: amount,
	}
}

// TreasuryOutputFromMarshalUtil unmarshals a TreasuryOutput using a MarshalUtil (for easier unmarshaling).
func TreasuryOutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *TreasuryOutput, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if OutputType(outputType) != TreasuryOutputType {
		err = xerrors.Errorf("invalid OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	output = &TreasuryOutput{}
	if output.amount, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse amount (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// ID returns the identifier of the Output.
func (t *TreasuryOutput) ID() OutputID {
	return t.outputID
}

// SetID sets the identifier of the Output.
func (t *TreasuryOutput) SetID(outputID OutputID) Output {
	t.outputID = outputID

	return t
}

// Type returns the OutputType of the Output.
func (t *TreasuryOutput) Type() OutputType {
	return TreasuryOutputType
}

// Amount returns the token amount held by the Output.
func (t *TreasuryOutput) Amount() uint64 {
	return t.amount
}

// UnlockConditions returns an empty list: the treasury is not unlockable by addresses.
func (t *TreasuryOutput) UnlockConditions() UnlockConditions {
	return UnlockConditions{}
}

// Input panics: the treasury can never be referenced as a wallet Input.
func (t *TreasuryOutput) Input() *Input {
	panic("TreasuryOutput: the treasury cannot be consumed by a wallet transaction")
}

// Clone creates a copy of the Output.
func (t *TreasuryOutput) Clone() Output {
	return &TreasuryOutput{
		outputID: t.outputID,
		amount:   t.amount,
	}
}

// Bytes returns a marshaled version of the Output.
func (t *TreasuryOutput) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(TreasuryOutputType)).
		WriteUint64(t.amount).
		Bytes()
}

// Compare offers a comparator for Outputs.
func (t *TreasuryOutput) Compare(other Output) int {
	return bytes.Compare(t.Bytes(), other.Bytes())
}

// String returns a human readable version of the Output.
func (t *TreasuryOutput) String() string {
	return stringify.Struct("TreasuryOutput",
		stringify.StructField("outputID", t.outputID),
		stringify.StructField("amount", t.amount),
	)
}

// code contract (make sure the type implements all required methods)
var _ Output = &TreasuryOutput{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
