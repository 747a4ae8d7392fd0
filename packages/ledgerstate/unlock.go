package ledgerstate

import (
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region UnlockType ///////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// SignatureUnlockType represents the type of a SignatureUnlock.
	SignatureUnlockType UnlockType = iota

	// ReferenceUnlockType represents the type of a ReferenceUnlock.
	ReferenceUnlockType

	// AliasUnlockType represents the type of an AliasUnlock.
	AliasUnlockType

	// NFTUnlockType represents the type of an NFTUnlock.
	NFTUnlockType
)

// UnlockType represents the type of an Unlock. Different types of Unlocks authorize the spending of different types
// of Outputs.
type UnlockType uint8

// String returns a human readable representation of the UnlockType.
func (u UnlockType) String() string {
	return [...]string{
		"SignatureUnlockType",
		"ReferenceUnlockType",
		"AliasUnlockType",
		"NFTUnlockType",
	}[u]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Unlock ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Unlock is the proof of authorization attached to a transaction input at the same index as the input it authorizes.
type Unlock interface {
	// Type returns the UnlockType of this Unlock.
	Type() UnlockType

	// Bytes returns a marshaled version of this Unlock.
	Bytes() []byte

	// String returns a human readable version of this Unlock.
	String() string
}

// ReferentialUnlock is an Unlock that points at an earlier Unlock instead of carrying its own proof.
type ReferentialUnlock interface {
	Unlock

	// ReferencedIndex returns the index of the Unlock this Unlock points at.
	ReferencedIndex() uint16
}

// UnlockFromMarshalUtil unmarshals an Unlock using a MarshalUtil (for easier unmarshaling).
func UnlockFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (unlock Unlock, err error) {
	unlockType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse UnlockType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	marshalUtil.ReadSeek(-1)

	switch UnlockType(unlockType) {
	case SignatureUnlockType:
		if unlock, err = SignatureUnlockFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse SignatureUnlock from MarshalUtil: %w", err)
			return
		}
	case ReferenceUnlockType, AliasUnlockType, NFTUnlockType:
		if unlock, err = referentialUnlockFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse referential Unlock from MarshalUtil: %w", err)
			return
		}
	default:
		err = xerrors.Errorf("unsupported UnlockType (%X): %w", unlockType, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Unlocks //////////////////////////////////////////////////////////////////////////////////////////////////////

// Unlocks is the ordered list of Unlocks of a Transaction (one per input, same index).
type Unlocks []Unlock

// UnlocksFromMarshalUtil unmarshals Unlocks using a MarshalUtil (for easier unmarshaling).
func UnlocksFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (unlocks Unlocks, err error) {
	unlockCount, err := marshalUtil.ReadUint16()
	if err != nil {
		err = xerrors.Errorf("failed to parse unlock count (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	unlocks = make(Unlocks, unlockCount)
	for i := uint16(0); i < unlockCount; i++ {
		if unlocks[i], err = UnlockFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse Unlock: %w", err)
			return
		}
	}

	return
}

// Validate checks the structural invariants of the Unlocks: a referential Unlock must point strictly backward and its
// target must not itself be referential.
func (u Unlocks) Validate() error {
	for i, unlock := range u {
		referential, isReferential := unlock.(ReferentialUnlock)
		if !isReferential {
			continue
		}
		referencedIndex := referential.ReferencedIndex()
		if int(referencedIndex) >= i {
			return xerrors.Errorf("unlock at index %d references a non-earlier unlock (%d)", i, referencedIndex)
		}
		if _, targetIsReferential := u[referencedIndex].(ReferentialUnlock); targetIsReferential && unlock.Type() == ReferenceUnlockType {
			return xerrors.Errorf("reference unlock at index %d points at another referential unlock (%d)", i, referencedIndex)
		}
	}

	return nil
}

// Bytes returns a marshaled version of the Unlocks.
func (u Unlocks) Bytes() []byte {
	marshalUtil := marshalutil.New()
	marshalUtil.WriteUint16(uint16(len(u)))
	for _, unlock := range u {
		marshalUtil.WriteBytes(unlock.Bytes())
	}

	return marshalUtil.Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region SignatureUnlock //////////////////////////////////////////////////////////////////////////////////////////////

// SignatureUnlock represents an Unlock that contains a Signature for an Address.
type SignatureUnlock struct {
	signature Signature
}

// NewSignatureUnlock is the constructor for SignatureUnlock objects.
func NewSignatureUnlock(signature Signature) *SignatureUnlock {
	return &SignatureUnlock{
		signature: signature,
	}
}

// SignatureUnlockFromMarshalUtil unmarshals a SignatureUnlock using a MarshalUtil (for easier unmarshaling).
func SignatureUnlockFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (unlock *SignatureUnlock, err error) {
	unlockType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse UnlockType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if UnlockType(unlockType) != SignatureUnlockType {
		err = xerrors.Errorf("invalid UnlockType (%X): %w", unlockType, cerrors.ErrParseBytesFailed)
		return
	}

	unlock = &SignatureUnlock{}
	if unlock.signature, err = SignatureFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Signature from MarshalUtil: %w", err)
		return
	}

	return
}

// Signature returns the Signature this Unlock carries.
func (s *SignatureUnlock) Signature() Signature {
	return s.signature
}

// AddressSignatureValid returns true if this Unlock correctly signs the given Address.
func (s *SignatureUnlock) AddressSignatureValid(address Address, signedData []byte) bool {
	return s.signature.AddressSignatureValid(address, signedData)
}

// Type returns the UnlockType of this Unlock.
func (s *SignatureUnlock) Type() UnlockType {
	return SignatureUnlockType
}

// Bytes returns a marshaled version of this Unlock.
func (s *SignatureUnlock) Bytes() []byte {
	return byteutils.ConcatBytes([]byte{byte(SignatureUnlockType)}, s.signature.Bytes())
}

// String returns a human readable version of this Unlock.
func (s *SignatureUnlock) String() string {
	return stringify.Struct("SignatureUnlock",
		stringify.StructField("signature", s.signature),
	)
}

// code contract (make sure the type implements all required methods)
var _ Unlock = &SignatureUnlock{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region referential unlocks //////////////////////////////////////////////////////////////////////////////////////////

// referentialUnlock is the shared implementation of the Unlocks pointing at an earlier Unlock.
type referentialUnlock struct {
	unlockType      UnlockType
	referencedIndex uint16
}

// NewReferenceUnlock is the constructor for ReferenceUnlocks: the repeated unlock of a plain address that already
// signed at an earlier index.
func NewReferenceUnlock(referencedIndex uint16) ReferentialUnlock {
	return &referentialUnlock{unlockType: ReferenceUnlockType, referencedIndex: referencedIndex}
}

// NewAliasUnlock is the constructor for AliasUnlocks: the unlock of an output owned by an alias Address, pointing at
// the index where the owning Alias Output was unlocked.
func NewAliasUnlock(referencedIndex uint16) ReferentialUnlock {
	return &referentialUnlock{unlockType: AliasUnlockType, referencedIndex: referencedIndex}
}

// NewNFTUnlock is the constructor for NFTUnlocks: the unlock of an output owned by an NFT Address, pointing at the
// index where the owning NFT Output was unlocked.
func NewNFTUnlock(referencedIndex uint16) ReferentialUnlock {
	return &referentialUnlock{unlockType: NFTUnlockType, referencedIndex: referencedIndex}
}

// referentialUnlockFromMarshalUtil unmarshals a referential Unlock using a MarshalUtil (for easier unmarshaling).
func referentialUnlockFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (unlock *referentialUnlock, err error) {
	unlockType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse UnlockType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	unlock = &referentialUnlock{unlockType: UnlockType(unlockType)}
	if unlock.referencedIndex, err = marshalUtil.ReadUint16(); err != nil {
		err = xerrors.Errorf("failed to parse referenced index (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// ReferencedIndex returns the index of the Unlock this Unlock points at.
func (r *referentialUnlock) ReferencedIndex() uint16 {
	return r.referencedIndex
}

// Type returns the UnlockType of this Unlock.
func (r *referentialUnlock) Type() UnlockType {
	return r.unlockType
}

// Bytes returns a marshaled version of this Unlock.
func (r *referentialUnlock) Bytes() []byte {
	return marshalutil.New(1 + marshalutil.Uint16Size).
		WriteByte(byte(r.unlockType)).
		WriteUint16(r.referencedIndex).
		Bytes()
}

// String returns a human readable version of this Unlock.
func (r *referentialUnlock) String() string {
	return stringify.Struct(r.unlockType.String(),
		stringify.StructField("referencedIndex", r.referencedIndex),
	)
}

// code contract (make sure the type implements all required methods)
var _ ReferentialUnlock = &referentialUnlock{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
