package anchor

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region SpentChecker /////////////////////////////////////////////////////////////////////////////////////////////////

// SpentChecker is the optional freshness check of the Signer: consumed Outputs that are already spent on-ledger by the
// time of signing are dropped from the transaction instead of producing a conflicting spend.
type SpentChecker interface {
	// OutputSpent reports whether the Output with the given identifier is already spent.
	OutputSpent(outputID ledgerstate.OutputID) (bool, error)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Signer ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Signer deterministically orders the consumed Outputs of a plan, computes the TransactionEssence and produces one
// Unlock per input: the first occurrence of a plain address signs, repeated occurrences become Reference Unlocks and
// alias or NFT addresses become Alias/NFT Unlocks referencing the input of the Output that owns them.
type Signer struct {
	keyStore     KeyStore
	spentChecker SpentChecker
}

// NewSigner creates a Signer drawing its signatures from the given KeyStore. A nil SpentChecker disables the freshness
// check.
func NewSigner(keyStore KeyStore, spentChecker SpentChecker) *Signer {
	return &Signer{
		keyStore:     keyStore,
		spentChecker: spentChecker,
	}
}

// Sign builds and signs the Transaction consuming the given annotated Outputs and producing the given Outputs. It
// returns the Transaction together with the consumed Outputs in final input order.
func (s *Signer) Sign(networkID uint64, consumed []*ConsumedOutput, produced ledgerstate.Outputs) (*ledgerstate.Transaction, []*ConsumedOutput, error) {
	consumed, err := s.unspentOnly(consumed)
	if err != nil {
		return nil, nil, err
	}

	// inputs follow the byte-wise ordering of their unlock addresses so that Reference Unlocks can always point
	// backward and signature-unlockable addresses precede the alias/NFT addresses they own.
	ordered := make([]*ConsumedOutput, len(consumed))
	copy(ordered, consumed)
	sort.Slice(ordered, func(i, j int) bool {
		if comparison := ledgerstate.CompareAddresses(ordered[i].UnlockAddress, ordered[j].UnlockAddress); comparison != 0 {
			return comparison < 0
		}

		return ordered[i].Output.ID().Compare(ordered[j].Output.ID()) < 0
	})

	inputs := make(ledgerstate.Inputs, len(ordered))
	consumedOutputs := make(ledgerstate.Outputs, len(ordered))
	for i, consumedOutput := range ordered {
		inputs[i] = consumedOutput.Output.Input()
		consumedOutputs[i] = consumedOutput.Output
	}

	essence, err := ledgerstate.NewTransactionEssence(networkID, inputs, produced, consumedOutputs)
	if err != nil {
		return nil, nil, errors.Errorf("failed to build TransactionEssence: %w", err)
	}
	unlocks, err := s.unlocks(ordered, essence.SigningMessage())
	if err != nil {
		return nil, nil, err
	}

	transaction, err := ledgerstate.NewTransaction(essence, unlocks)
	if err != nil {
		return nil, nil, errors.Errorf("failed to build Transaction: %w", err)
	}

	return transaction, ordered, nil
}

// unlocks produces one Unlock per input over the given signing message.
func (s *Signer) unlocks(ordered []*ConsumedOutput, signingMessage []byte) (unlocks ledgerstate.Unlocks, err error) {
	unlocks = make(ledgerstate.Unlocks, len(ordered))
	unlockedIndexes := make(map[string]uint16)
	for i, consumedOutput := range ordered {
		index := uint16(i)
		address := consumedOutput.UnlockAddress
		if referencedIndex, alreadyUnlocked := unlockedIndexes[ledgerstate.AddressKey(address)]; alreadyUnlocked {
			unlocks[i] = referentialUnlock(address, referencedIndex)
		} else {
			if unlocks[i], err = s.signatureUnlock(address, signingMessage); err != nil {
				return nil, err
			}
			unlockedIndexes[ledgerstate.AddressKey(address)] = index
		}

		// a consumed alias/NFT input unlocks every other input owned by its derived address, so that address
		// becomes referenceable at this index.
		switch typedOutput := consumedOutput.Output.(type) {
		case *ledgerstate.AliasOutput:
			registerOwnedAddress(unlockedIndexes, typedOutput.AliasAddress(), index)
		case *ledgerstate.NFTOutput:
			registerOwnedAddress(unlockedIndexes, typedOutput.NFTAddress(), index)
		}
	}

	return unlocks, nil
}

// signatureUnlock signs the message for a first-occurrence address. Alias and NFT addresses are owned through ledger
// relationships and can never sign directly.
func (s *Signer) signatureUnlock(address ledgerstate.Address, signingMessage []byte) (ledgerstate.Unlock, error) {
	if address.Type() != ledgerstate.ED25519AddressType {
		return nil, errors.Errorf("address %s of type %s requires a first-time signature but can only be referenced: %w", address.Base58(), address.Type(), ErrMissingSignerUnlock)
	}
	if !s.keyStore.HasKey(address) {
		return nil, errors.Errorf("no key available for address %s: %w", address.Base58(), ErrMissingSignerUnlock)
	}

	signature, err := s.keyStore.Sign(address, signingMessage)
	if err != nil {
		return nil, errors.Errorf("failed to sign for address %s: %w", address.Base58(), err)
	}

	return ledgerstate.NewSignatureUnlock(signature), nil
}

// unspentOnly drops consumed Outputs that are already spent on-ledger, if a freshness check is wired.
func (s *Signer) unspentOnly(consumed []*ConsumedOutput) (unspent []*ConsumedOutput, err error) {
	if s.spentChecker == nil {
		return consumed, nil
	}

	unspent = make([]*ConsumedOutput, 0, len(consumed))
	for _, consumedOutput := range consumed {
		spent, checkErr := s.spentChecker.OutputSpent(consumedOutput.Output.ID())
		if checkErr != nil {
			return nil, errors.Errorf("failed to check spend state of output %s: %w", consumedOutput.Output.ID(), checkErr)
		}
		if !spent {
			unspent = append(unspent, consumedOutput)
		}
	}

	return unspent, nil
}

// referentialUnlock emits the kind-specific Unlock pointing at the earlier index the address was unlocked at.
func referentialUnlock(address ledgerstate.Address, referencedIndex uint16) ledgerstate.Unlock {
	switch address.Type() {
	case ledgerstate.AliasAddressType:
		return ledgerstate.NewAliasUnlock(referencedIndex)
	case ledgerstate.NFTAddressType:
		return ledgerstate.NewNFTUnlock(referencedIndex)
	default:
		return ledgerstate.NewReferenceUnlock(referencedIndex)
	}
}

// registerOwnedAddress records the derived address of a consumed alias/NFT input, keeping the first occurrence when
// the address was already unlockable earlier.
func registerOwnedAddress(unlockedIndexes map[string]uint16, address ledgerstate.Address, index uint16) {
	if _, exists := unlockedIndexes[ledgerstate.AddressKey(address)]; !exists {
		unlockedIndexes[ledgerstate.AddressKey(address)] = index
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
