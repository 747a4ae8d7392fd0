package anchor

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region ConsumedOutput ///////////////////////////////////////////////////////////////////////////////////////////////

// ConsumedOutput is an Output selected for consumption, annotated with the address that must authorize its spend.
type ConsumedOutput struct {
	// Output is the ledger Output being consumed.
	Output ledgerstate.Output

	// UnlockAddress is the address that must authorize the consumption, resolved against the produced Outputs.
	UnlockAddress ledgerstate.Address
}

// String returns a human readable version of the ConsumedOutput.
func (c *ConsumedOutput) String() string {
	return stringify.Struct("ConsumedOutput",
		stringify.StructField("output", c.Output),
		stringify.StructField("unlockAddress", c.UnlockAddress),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ResolveUnlockAddress /////////////////////////////////////////////////////////////////////////////////////////

// ResolveUnlockAddress determines the single address that must authorize spending the given Output in a transaction
// producing the given Outputs. For Alias Outputs the produced set decides the transition kind: a successor carrying
// the same AliasID with an advanced state index makes it a state transition (state controller signs), anything else,
// including destruction, is a governance transition (governor signs).
func ResolveUnlockAddress(consumed ledgerstate.Output, produced ledgerstate.Outputs) (ledgerstate.Address, error) {
	switch consumed.Type() {
	case ledgerstate.BasicOutputType:
		return conditionAddress(consumed, ledgerstate.AddressUnlockConditionType)

	case ledgerstate.AliasOutputType:
		aliasOutput, ok := consumed.(*ledgerstate.AliasOutput)
		if !ok {
			return nil, errors.Errorf("output %s is tagged Alias but is not an Alias Output: %w", consumed.ID(), ErrUnresolvedUnlockAddress)
		}
		if isStateTransition(aliasOutput, produced) {
			return conditionAddress(consumed, ledgerstate.StateControllerAddressUnlockConditionType)
		}

		return conditionAddress(consumed, ledgerstate.GovernorAddressUnlockConditionType)

	case ledgerstate.FoundryOutputType:
		return conditionAddress(consumed, ledgerstate.ImmutableAliasAddressUnlockConditionType)

	case ledgerstate.NFTOutputType:
		return conditionAddress(consumed, ledgerstate.AddressUnlockConditionType)

	case ledgerstate.TreasuryOutputType:
		return nil, errors.Errorf("output %s is a Treasury Output: %w", consumed.ID(), ErrUnsupportedOutputKind)

	default:
		return nil, errors.Errorf("output %s has unknown type %d: %w", consumed.ID(), consumed.Type(), ErrUnsupportedOutputKind)
	}
}

// ResolveConsumedOutputs annotates every given Output with its unlock address against the produced set.
func ResolveConsumedOutputs(consumed ledgerstate.Outputs, produced ledgerstate.Outputs) (consumedOutputs []*ConsumedOutput, err error) {
	consumedOutputs = make([]*ConsumedOutput, len(consumed))
	for i, output := range consumed {
		unlockAddress, resolveErr := ResolveUnlockAddress(output, produced)
		if resolveErr != nil {
			return nil, resolveErr
		}
		consumedOutputs[i] = &ConsumedOutput{
			Output:        output,
			UnlockAddress: unlockAddress,
		}
	}

	return consumedOutputs, nil
}

// isStateTransition returns true if the produced Outputs contain a successor of the consumed Alias Output with an
// advanced state index.
func isStateTransition(consumed *ledgerstate.AliasOutput, produced ledgerstate.Outputs) bool {
	consumedAliasID := consumed.AliasIDOrDerived()
	for _, output := range produced {
		successor, ok := output.(*ledgerstate.AliasOutput)
		if !ok {
			continue
		}
		if successor.AliasID() != consumedAliasID {
			continue
		}

		return successor.StateIndex() > consumed.StateIndex()
	}

	return false
}

// conditionAddress extracts the address of the unlock condition with the given type, failing when the Output does not
// carry it.
func conditionAddress(output ledgerstate.Output, conditionType ledgerstate.UnlockConditionType) (ledgerstate.Address, error) {
	condition := output.UnlockConditions().Get(conditionType)
	if condition == nil || condition.Address() == nil {
		return nil, errors.Errorf("output %s of type %s has no %s condition: %w", output.ID(), output.Type(), conditionType, ErrUnresolvedUnlockAddress)
	}

	return condition.Address(), nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
