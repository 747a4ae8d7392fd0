package ledgerstate

import (
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// region TransactionID ////////////////////////////////////////////////////////////////////////////////////////////////

// TransactionIDLength contains the length of a TransactionID.
const TransactionIDLength = 32

// TransactionID is the unique identifier of a Transaction (the blake2b-256 digest of its marshaled bytes).
type TransactionID [TransactionIDLength]byte

// TransactionIDFromBase58 creates a TransactionID from a base58 encoded string.
func TransactionIDFromBase58(base58String string) (transactionID TransactionID, err error) {
	decodedBytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded TransactionID (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}
	if len(decodedBytes) != TransactionIDLength {
		err = xerrors.Errorf("wrong length of TransactionID bytes (%d): %w", len(decodedBytes), cerrors.ErrParseBytesFailed)
		return
	}
	copy(transactionID[:], decodedBytes)

	return
}

// Bytes marshals the TransactionID into a sequence of bytes.
func (t TransactionID) Bytes() []byte {
	return t[:]
}

// Base58 returns a base58 encoded version of the TransactionID.
func (t TransactionID) Base58() string {
	return base58.Encode(t[:])
}

// String creates a human readable version of the TransactionID.
func (t TransactionID) String() string {
	return "TransactionID(" + t.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TransactionEssence ///////////////////////////////////////////////////////////////////////////////////////////

// InputsCommitmentLength contains the length of the commitment digest over the consumed Outputs.
const InputsCommitmentLength = 32

// TransactionEssence is the unsigned, hashable core of a Transaction: the network identifier, the ordered Inputs, the
// ordered produced Outputs and a commitment digest over the consumed Outputs.
type TransactionEssence struct {
	networkID        uint64
	inputs           Inputs
	outputs          Outputs
	inputsCommitment [InputsCommitmentLength]byte
}

// NewTransactionEssence creates a TransactionEssence from the given Inputs and produced Outputs. The consumed Outputs
// must be passed in input order so the inputs commitment can be computed over them.
func NewTransactionEssence(networkID uint64, inputs Inputs, outputs Outputs, consumedOutputs Outputs) (*TransactionEssence, error) {
	if len(inputs) != len(consumedOutputs) {
		return nil, xerrors.Errorf("amount of inputs (%d) and consumed outputs (%d) must match", len(inputs), len(consumedOutputs))
	}

	return &TransactionEssence{
		networkID:        networkID,
		inputs:           inputs,
		outputs:          outputs,
		inputsCommitment: InputsCommitment(consumedOutputs),
	}, nil
}

// InputsCommitment computes the commitment digest over the consumed Outputs: the blake2b-256 digest chained over the
// blake2b-256 digest of each consumed Output's serialized bytes, in input order.
func InputsCommitment(consumedOutputs Outputs) (commitment [InputsCommitmentLength]byte) {
	marshalUtil := marshalutil.New()
	for _, output := range consumedOutputs {
		outputDigest := blake2b.Sum256(output.Bytes())
		marshalUtil.WriteBytes(outputDigest[:])
	}

	return blake2b.Sum256(marshalUtil.Bytes())
}

// TransactionEssenceFromMarshalUtil unmarshals a TransactionEssence using a MarshalUtil (for easier unmarshaling).
func TransactionEssenceFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (essence *TransactionEssence, err error) {
	essence = &TransactionEssence{}
	if essence.networkID, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse network ID (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	inputCount, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse input count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	essence.inputs = make(Inputs, inputCount)
	for i := uint16(0); i < inputCount; i++ {
		if essence.inputs[i], err = InputFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse Input: %w", err)
			return
		}
	}
	commitmentBytes, err := marshalUtil.ReadBytes(InputsCommitmentLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse inputs commitment (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(essence.inputsCommitment[:], commitmentBytes)
	if essence.outputs, err = OutputsFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Outputs: %w", err)
		return
	}

	return
}

// NetworkID returns the identifier of the network the TransactionEssence is valid on.
func (t *TransactionEssence) NetworkID() uint64 {
	return t.networkID
}

// Inputs returns the Inputs of the TransactionEssence.
func (t *TransactionEssence) Inputs() Inputs {
	return t.inputs
}

// Outputs returns the produced Outputs of the TransactionEssence.
func (t *TransactionEssence) Outputs() Outputs {
	return t.outputs
}

// InputsCommitment returns the commitment digest over the consumed Outputs.
func (t *TransactionEssence) InputsCommitment() [InputsCommitmentLength]byte {
	return t.inputsCommitment
}

// SigningMessage returns the digest of the TransactionEssence that Signature Unlocks sign.
func (t *TransactionEssence) SigningMessage() []byte {
	digest := blake2b.Sum256(t.Bytes())

	return digest[:]
}

// Bytes returns a marshaled version of the TransactionEssence.
func (t *TransactionEssence) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.WriteUint64(t.networkID)
	marshalUtil.WriteUint16(uint16(len(t.inputs)))
	for _, input := range t.inputs {
		marshalUtil.WriteBytes(input.Bytes())
	}
	marshalUtil.WriteBytes(t.inputsCommitment[:])
	marshalUtil.WriteBytes(t.outputs.Bytes())

	return marshalUtil.Bytes()
}

// String returns a human readable version of the TransactionEssence.
func (t *TransactionEssence) String() string {
	return stringify.Struct("TransactionEssence",
		stringify.StructField("networkID", t.networkID),
		stringify.StructField("inputs", t.inputs),
		stringify.StructField("outputs", t.outputs),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Transaction //////////////////////////////////////////////////////////////////////////////////////////////////

// Transaction is the signed payload submitted inside a Block: the TransactionEssence plus one Unlock per Input, at
// matching indexes.
type Transaction struct {
	essence *TransactionEssence
	unlocks Unlocks
}

// NewTransaction creates a Transaction from the given TransactionEssence and Unlocks.
func NewTransaction(essence *TransactionEssence, unlocks Unlocks) (*Transaction, error) {
	if len(essence.Inputs()) != len(unlocks) {
		return nil, xerrors.Errorf("amount of inputs (%d) and unlocks (%d) must match", len(essence.Inputs()), len(unlocks))
	}
	if err := unlocks.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid unlocks: %w", err)
	}

	return &Transaction{
		essence: essence,
		unlocks: unlocks,
	}, nil
}

// TransactionFromBytes unmarshals a Transaction from a sequence of bytes.
func TransactionFromBytes(bytes []byte) (transaction *Transaction, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if transaction, err = TransactionFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Transaction from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// TransactionFromMarshalUtil unmarshals a Transaction using a MarshalUtil (for easier unmarshaling).
func TransactionFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (transaction *Transaction, err error) {
	transaction = &Transaction{}
	if transaction.essence, err = TransactionEssenceFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse TransactionEssence: %w", err)
		return
	}
	if transaction.unlocks, err = UnlocksFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Unlocks: %w", err)
		return
	}
	if len(transaction.essence.Inputs()) != len(transaction.unlocks) {
		err = xerrors.Errorf("amount of inputs (%d) and unlocks (%d) must match: %w",
			len(transaction.essence.Inputs()), len(transaction.unlocks), cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// ID returns the identifier of the Transaction.
func (t *Transaction) ID() (transactionID TransactionID) {
	return blake2b.Sum256(t.Bytes())
}

// Essence returns the TransactionEssence of the Transaction.
func (t *Transaction) Essence() *TransactionEssence {
	return t.essence
}

// Unlocks returns the Unlocks of the Transaction.
func (t *Transaction) Unlocks() Unlocks {
	return t.unlocks
}

// Bytes returns a marshaled version of the Transaction.
func (t *Transaction) Bytes() []byte {
	return marshalutil.New().
		WriteBytes(t.essence.Bytes()).
		WriteBytes(t.unlocks.Bytes()).
		Bytes()
}

// String returns a human readable version of the Transaction.
func (t *Transaction) String() string {
	return stringify.Struct("Transaction",
		stringify.StructField("id", t.ID()),
		stringify.StructField("essence", t.essence),
		stringify.StructField("unlocks", t.unlocks),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region validation ///////////////////////////////////////////////////////////////////////////////////////////////////

// TransactionBalancesValid returns true if the sum of the consumed amounts exactly equals the sum of the produced
// amounts. There is no fee abstraction at this layer.
func TransactionBalancesValid(consumed Outputs, produced Outputs) bool {
	var consumedTotal, producedTotal uint64
	for _, output := range consumed {
		if consumedTotal+output.Amount() < consumedTotal {
			return false
		}
		consumedTotal += output.Amount()
	}
	for _, output := range produced {
		if producedTotal+output.Amount() < producedTotal {
			return false
		}
		producedTotal += output.Amount()
	}

	return consumedTotal == producedTotal
}

// UnlocksValidWithError checks that every Unlock of the Transaction authorizes its consumed Output given the resolved
// unlock Addresses (in input order): Signature Unlocks must sign their Address, referential Unlocks must point
// backward at an Unlock that was derived from the same authorizing Address.
func UnlocksValidWithError(consumed Outputs, unlockAddresses []Address, tx *Transaction) (bool, error) {
	if len(consumed) != len(unlockAddresses) || len(consumed) != len(tx.Unlocks()) {
		return false, xerrors.Errorf("amount of consumed outputs (%d), unlock addresses (%d) and unlocks (%d) must match",
			len(consumed), len(unlockAddresses), len(tx.Unlocks()))
	}
	if err := tx.Unlocks().Validate(); err != nil {
		return false, err
	}

	signingMessage := tx.Essence().SigningMessage()
	for i, unlock := range tx.Unlocks() {
		switch typedUnlock := unlock.(type) {
		case *SignatureUnlock:
			if !typedUnlock.AddressSignatureValid(unlockAddresses[i], signingMessage) {
				return false, xerrors.Errorf("signature unlock at index %d does not sign address %s", i, unlockAddresses[i].Base58())
			}
		case ReferentialUnlock:
			referencedAddress := unlockAddresses[typedUnlock.ReferencedIndex()]
			switch unlock.Type() {
			case ReferenceUnlockType:
				if !unlockAddresses[i].Equals(referencedAddress) {
					return false, xerrors.Errorf("reference unlock at index %d points at an unlock of a different address", i)
				}
			case AliasUnlockType:
				aliasOutput, isAlias := consumed[typedUnlock.ReferencedIndex()].(*AliasOutput)
				if !isAlias || !aliasOutput.AliasAddress().Equals(unlockAddresses[i]) {
					return false, xerrors.Errorf("alias unlock at index %d does not point at the owning alias input", i)
				}
			case NFTUnlockType:
				nftOutput, isNFT := consumed[typedUnlock.ReferencedIndex()].(*NFTOutput)
				if !isNFT || !nftOutput.NFTAddress().Equals(unlockAddresses[i]) {
					return false, xerrors.Errorf("nft unlock at index %d does not point at the owning nft input", i)
				}
			}
		default:
			return false, xerrors.Errorf("unsupported unlock type at index %d", i)
		}
	}

	return true, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
