package ledgerstate

import (
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// region BlockID //////////////////////////////////////////////////////////////////////////////////////////////////////

// BlockIDLength contains the length of a BlockID.
const BlockIDLength = 32

// BlockID is the unique identifier of a Block (the blake2b-256 digest of its marshaled bytes).
type BlockID [BlockIDLength]byte

// EmptyBlockID represents the zero value of a BlockID.
var EmptyBlockID BlockID

// BlockIDFromBase58 creates a BlockID from a base58 encoded string.
func BlockIDFromBase58(base58String string) (blockID BlockID, err error) {
	decodedBytes, err := base58.Decode(base58String)
	if err != nil {
		err = xerrors.Errorf("error while decoding base58 encoded BlockID (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}
	if len(decodedBytes) != BlockIDLength {
		err = xerrors.Errorf("wrong length of BlockID bytes (%d): %w", len(decodedBytes), cerrors.ErrParseBytesFailed)
		return
	}
	copy(blockID[:], decodedBytes)

	return
}

// Bytes marshals the BlockID into a sequence of bytes.
func (b BlockID) Bytes() []byte {
	return b[:]
}

// Base58 returns a base58 encoded version of the BlockID.
func (b BlockID) Base58() string {
	return base58.Encode(b[:])
}

// String creates a human readable version of the BlockID.
func (b BlockID) String() string {
	return "BlockID(" + b.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Block ////////////////////////////////////////////////////////////////////////////////////////////////////////

// MaxParentCount is the maximum number of parents a Block can reference.
const MaxParentCount = 8

// Block wraps a Transaction payload together with ledger-assigned parent references and a proof-of-work nonce. It is
// the unit submitted to the network. The nonce is a placeholder here; proof-of-work, where required, is delegated to
// the node.
type Block struct {
	parents []BlockID
	payload *Transaction
	nonce   uint64
}

// NewBlock creates a Block referencing the given parents and carrying the given Transaction payload.
func NewBlock(parents []BlockID, payload *Transaction, nonce uint64) (*Block, error) {
	if len(parents) == 0 || len(parents) > MaxParentCount {
		return nil, xerrors.Errorf("amount of parents (%d) must be between 1 and %d", len(parents), MaxParentCount)
	}

	return &Block{
		parents: parents,
		payload: payload,
		nonce:   nonce,
	}, nil
}

// BlockFromBytes unmarshals a Block from a sequence of bytes.
func BlockFromBytes(bytes []byte) (block *Block, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if block, err = BlockFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Block from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// BlockFromMarshalUtil unmarshals a Block using a MarshalUtil (for easier unmarshaling).
func BlockFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (block *Block, err error) {
	block = &Block{}
	parentCount, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse parent count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if parentCount == 0 || parentCount > MaxParentCount {
		err = xerrors.Errorf("invalid parent count (%d): %w", parentCount, cerrors.ErrParseBytesFailed)
		return
	}
	block.parents = make([]BlockID, parentCount)
	for i := byte(0); i < parentCount; i++ {
		parentBytes, parentErr := marshalUtil.ReadBytes(BlockIDLength)
		if parentErr != nil {
			err = xerrors.Errorf("failed to parse parent (%v): %w", parentErr, cerrors.ErrParseBytesFailed)
			return
		}
		copy(block.parents[i][:], parentBytes)
	}
	payloadPresent, err := marshalUtil.ReadBool()
	if err != nil {
		err = xerrors.Errorf("failed to parse payload flag (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if payloadPresent {
		if block.payload, err = TransactionFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse Transaction payload: %w", err)
			return
		}
	}
	if block.nonce, err = marshalUtil.ReadUint64(); err != nil {
		err = xerrors.Errorf("failed to parse nonce (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// ID returns the identifier of the Block.
func (b *Block) ID() (blockID BlockID) {
	return blake2b.Sum256(b.Bytes())
}

// Parents returns the parent references of the Block.
func (b *Block) Parents() []BlockID {
	return b.parents
}

// Payload returns the Transaction payload of the Block, or nil if the Block carries none.
func (b *Block) Payload() *Transaction {
	return b.payload
}

// Nonce returns the proof-of-work nonce of the Block.
func (b *Block) Nonce() uint64 {
	return b.nonce
}

// Bytes returns a marshaled version of the Block.
func (b *Block) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.WriteByte(byte(len(b.parents)))
	for _, parent := range b.parents {
		marshalUtil.WriteBytes(parent.Bytes())
	}
	marshalUtil.WriteBool(b.payload != nil)
	if b.payload != nil {
		marshalUtil.WriteBytes(b.payload.Bytes())
	}
	marshalUtil.WriteUint64(b.nonce)

	return marshalUtil.Bytes()
}

// String returns a human readable version of the Block.
func (b *Block) String() string {
	return stringify.Struct("Block",
		stringify.StructField("id", b.ID()),
		stringify.StructField("parents", b.parents),
		stringify.StructField("payload", b.payload),
		stringify.StructField("nonce", b.nonce),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region InclusionState ///////////////////////////////////////////////////////////////////////////////////////////////

const (
	// InclusionStatePending means the Block is not yet confirmed as part of the ledger's accepted history.
	InclusionStatePending InclusionState = iota

	// InclusionStateIncluded means the Block is confirmed as part of the ledger's accepted history.
	InclusionStateIncluded

	// InclusionStateNoTransaction means the Block resolved definitively without a ledger mutation.
	InclusionStateNoTransaction

	// InclusionStateConflicting means the Block's Transaction conflicts with an already accepted one.
	InclusionStateConflicting
)

// InclusionState is the reported confirmation state of a submitted Block.
type InclusionState uint8

// IsFinal returns true if the InclusionState is definitively resolved, successfully or as a no-op.
func (i InclusionState) IsFinal() bool {
	return i == InclusionStateIncluded || i == InclusionStateNoTransaction
}

// String returns a human readable representation of the InclusionState.
func (i InclusionState) String() string {
	return [...]string{
		"InclusionStatePending",
		"InclusionStateIncluded",
		"InclusionStateNoTransaction",
		"InclusionStateConflicting",
	}[i]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
