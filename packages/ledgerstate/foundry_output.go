package ledgerstate

import (
	"bytes"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region FoundryOutput ////////////////////////////////////////////////////////////////////////////////////////////////

// FoundryOutput is an Output that is immutably owned by an alias. It is never unlocked by a signature directly, only
// by referencing the unlock of the owning Alias Output consumed in the same transaction.
type FoundryOutput struct {
	outputID       OutputID
	amount         uint64
	serialNumber   uint32
	immutableAlias *AliasAddress
}

// NewFoundryOutput creates a FoundryOutput owned by the given alias Address.
func NewFoundryOutput(amount uint64, serialNumber uint32, immutableAlias *AliasAddress) *FoundryOutput {
	return &FoundryOutput{
		amount:         amount,
		serialNumber:   serialNumber,
		immutableAlias: immutableAlias,
	}
}

// FoundryOutputFromMarshalUtil unmarshals a FoundryOutput using a MarshalUtil (for easier unmarshaling).
func FoundryOutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *FoundryOutput, err error) {
	outputType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse OutputType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if OutputType(outputType) != FoundryOutputType {
		err = xerrors.Errorf("invalid OutputType (%X): %w", outputType, cerrors.ErrParseBytesFailed)
		return
	}

	output = &FoundryOutput{}
	if output.amount, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse amount (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if output.serialNumber, err = marshalUtil.ReadUint32(); err != nil {
		err = xerrors.Errorf("failed to parse serial number (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if output.immutableAlias, err = AliasAddressFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse immutable alias address: %w", err)
		return
	}

	return
}

// ImmutableAlias returns the alias Address that permanently owns the FoundryOutput.
func (f *FoundryOutput) ImmutableAlias() *AliasAddress {
	return f.immutableAlias
}

// SerialNumber returns the serial number of the FoundryOutput.
func (f *FoundryOutput) SerialNumber() uint32 {
	return f.serialNumber
}

// ID returns the identifier of the Output.
func (f *FoundryOutput) ID() OutputID {
	return f.outputID
}

// SetID sets the identifier of the Output.
func (f *FoundryOutput) SetID(outputID OutputID) Output {
	f.outputID = outputID

	return f
}

// Type returns the OutputType of the Output.
func (f *FoundryOutput) Type() OutputType {
	return FoundryOutputType
}

// Amount returns the token amount held by the Output.
func (f *FoundryOutput) Amount() uint64 {
	return f.amount
}

// UnlockConditions returns the immutable alias owner condition of the FoundryOutput.
func (f *FoundryOutput) UnlockConditions() UnlockConditions {
	return UnlockConditions{NewImmutableAliasAddressUnlockCondition(f.immutableAlias)}
}

// Input returns an Input that references the Output.
func (f *FoundryOutput) Input() *Input {
	if f.ID() == EmptyOutputID {
		panic("FoundryOutput: Outputs that haven't been assigned an ID yet cannot be converted to an Input")
	}

	return NewInput(f.ID())
}

// Clone creates a copy of the Output.
func (f *FoundryOutput) Clone() Output {
	return &FoundryOutput{
		outputID:       f.outputID,
		amount:         f.amount,
		serialNumber:   f.serialNumber,
		immutableAlias: f.immutableAlias.Clone().(*AliasAddress),
	}
}

// Bytes returns a marshaled version of the Output.
func (f *FoundryOutput) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(FoundryOutputType)).
		WriteUint64(f.amount).
		WriteUint32(f.serialNumber).
		WriteBytes(f.immutableAlias.Bytes()).
		Bytes()
}

// Compare offers a comparator for Outputs.
func (f *FoundryOutput) Compare(other Output) int {
	return bytes.Compare(f.Bytes(), other.Bytes())
}

// String returns a human readable version of the Output.
func (f *FoundryOutput) String() string {
	return stringify.Struct("FoundryOutput",
		stringify.StructField("outputID", f.outputID),
		stringify.StructField("amount", f.amount),
		stringify.StructField("serialNumber", f.serialNumber),
		stringify.StructField("immutableAlias", f.immutableAlias),
	)
}

// code contract (make sure the type implements all required methods)
var _ Output = &FoundryOutput{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
