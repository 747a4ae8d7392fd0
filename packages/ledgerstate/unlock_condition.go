package ledgerstate

import (
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region UnlockConditionType //////////////////////////////////////////////////////////////////////////////////////////

const (
	// AddressUnlockConditionType restricts consumption to the single owning Address.
	AddressUnlockConditionType UnlockConditionType = iota

	// StateControllerAddressUnlockConditionType names the Address that authorizes state transitions of an Alias Output.
	StateControllerAddressUnlockConditionType

	// GovernorAddressUnlockConditionType names the Address that authorizes governance transitions of an Alias Output.
	GovernorAddressUnlockConditionType

	// ImmutableAliasAddressUnlockConditionType names the alias Address that permanently owns a Foundry Output.
	ImmutableAliasAddressUnlockConditionType
)

// UnlockConditionType represents the type of an UnlockCondition.
type UnlockConditionType byte

// String returns a human readable representation of the UnlockConditionType.
func (u UnlockConditionType) String() string {
	return [...]string{
		"AddressUnlockCondition",
		"StateControllerAddressUnlockCondition",
		"GovernorAddressUnlockCondition",
		"ImmutableAliasAddressUnlockCondition",
	}[u]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region UnlockCondition //////////////////////////////////////////////////////////////////////////////////////////////

// UnlockCondition is a typed predicate attached to an Output that restricts who may consume it.
type UnlockCondition interface {
	// Type returns the UnlockConditionType of the UnlockCondition.
	Type() UnlockConditionType

	// Address returns the Address the UnlockCondition names.
	Address() Address

	// Bytes returns a marshaled version of the UnlockCondition.
	Bytes() []byte

	// String returns a human readable version of the UnlockCondition.
	String() string
}

// UnlockConditionFromMarshalUtil unmarshals an UnlockCondition using a MarshalUtil (for easier unmarshaling).
func UnlockConditionFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (condition UnlockCondition, err error) {
	conditionType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse UnlockConditionType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	address, err := AddressFromMarshalUtil(marshalUtil)
	if err != nil {
		err = xerrors.Errorf("failed to parse Address: %w", err)
		return
	}

	switch UnlockConditionType(conditionType) {
	case AddressUnlockConditionType:
		condition = NewAddressUnlockCondition(address)
	case StateControllerAddressUnlockConditionType:
		condition = NewStateControllerAddressUnlockCondition(address)
	case GovernorAddressUnlockConditionType:
		condition = NewGovernorAddressUnlockCondition(address)
	case ImmutableAliasAddressUnlockConditionType:
		aliasAddress, ok := address.(*AliasAddress)
		if !ok {
			err = xerrors.Errorf("immutable alias condition must name an AliasAddress: %w", cerrors.ErrParseBytesFailed)
			return
		}
		condition = NewImmutableAliasAddressUnlockCondition(aliasAddress)
	default:
		err = xerrors.Errorf("unsupported UnlockConditionType (%X): %w", conditionType, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// UnlockConditions is a list of UnlockConditions attached to an Output.
type UnlockConditions []UnlockCondition

// Get returns the UnlockCondition of the given type, or nil if the Output carries none.
func (u UnlockConditions) Get(conditionType UnlockConditionType) UnlockCondition {
	for _, condition := range u {
		if condition.Type() == conditionType {
			return condition
		}
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region conditions ///////////////////////////////////////////////////////////////////////////////////////////////////

// addressCondition is the shared implementation of the address-naming UnlockConditions.
type addressCondition struct {
	conditionType UnlockConditionType
	address       Address
}

// Type returns the UnlockConditionType of the UnlockCondition.
func (a *addressCondition) Type() UnlockConditionType {
	return a.conditionType
}

// Address returns the Address the UnlockCondition names.
func (a *addressCondition) Address() Address {
	return a.address
}

// Bytes returns a marshaled version of the UnlockCondition.
func (a *addressCondition) Bytes() []byte {
	return marshalutil.New().
		WriteByte(byte(a.conditionType)).
		WriteBytes(a.address.Bytes()).
		Bytes()
}

// String returns a human readable version of the UnlockCondition.
func (a *addressCondition) String() string {
	return stringify.Struct(a.conditionType.String(),
		stringify.StructField("address", a.address),
	)
}

// NewAddressUnlockCondition creates the owner condition of Basic and NFT Outputs.
func NewAddressUnlockCondition(address Address) UnlockCondition {
	return &addressCondition{conditionType: AddressUnlockConditionType, address: address}
}

// NewStateControllerAddressUnlockCondition creates the state controller condition of an Alias Output.
func NewStateControllerAddressUnlockCondition(address Address) UnlockCondition {
	return &addressCondition{conditionType: StateControllerAddressUnlockConditionType, address: address}
}

// NewGovernorAddressUnlockCondition creates the governor condition of an Alias Output.
func NewGovernorAddressUnlockCondition(address Address) UnlockCondition {
	return &addressCondition{conditionType: GovernorAddressUnlockConditionType, address: address}
}

// NewImmutableAliasAddressUnlockCondition creates the immutable owner condition of a Foundry Output.
func NewImmutableAliasAddressUnlockCondition(address *AliasAddress) UnlockCondition {
	return &addressCondition{conditionType: ImmutableAliasAddressUnlockConditionType, address: address}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
