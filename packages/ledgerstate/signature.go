package ledgerstate

import (
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"

	"github.com/iotaledger/hive.go/cerrors"
)

// region SignatureType ////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// ED25519SignatureType represents an ED25519 Signature.
	ED25519SignatureType SignatureType = iota
)

// SignatureType represents the type of the signature scheme.
type SignatureType uint8

// String returns a human readable representation of the SignatureType.
func (s SignatureType) String() string {
	return [...]string{
		"ED25519SignatureType",
	}[s]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Signature ////////////////////////////////////////////////////////////////////////////////////////////////////

// Signature is an interface for the different kinds of Signatures that are supported by the ledger state.
type Signature interface {
	// Type returns the SignatureType of this Signature.
	Type() SignatureType

	// SignatureValid returns true if the Signature signs the given data.
	SignatureValid(data []byte) bool

	// AddressSignatureValid returns true if the Signature signs the given Address.
	AddressSignatureValid(address Address, data []byte) bool

	// Bytes returns a marshaled version of the Signature.
	Bytes() []byte

	// Base58 returns a base58 encoded version of the Signature.
	Base58() string

	// String returns a human readable version of the Signature.
	String() string
}

// SignatureFromMarshalUtil unmarshals a Signature using a MarshalUtil (for easier unmarshaling).
func SignatureFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (signature Signature, err error) {
	signatureType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse SignatureType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	marshalUtil.ReadSeek(-1)

	switch SignatureType(signatureType) {
	case ED25519SignatureType:
		if signature, err = ED25519SignatureFromMarshalUtil(marshalUtil); err != nil {
			err = xerrors.Errorf("failed to parse ED25519Signature from MarshalUtil: %w", err)
			return
		}
	default:
		err = xerrors.Errorf("unsupported SignatureType (%X): %w", signatureType, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ED25519Signature /////////////////////////////////////////////////////////////////////////////////////////////

// ED25519Signature represents a Signature created with the ED25519 signature scheme.
type ED25519Signature struct {
	publicKey ed25519.PublicKey
	signature ed25519.Signature
}

// NewED25519Signature is the constructor of an ED25519Signature.
func NewED25519Signature(publicKey ed25519.PublicKey, signature ed25519.Signature) *ED25519Signature {
	return &ED25519Signature{
		publicKey: publicKey,
		signature: signature,
	}
}

// ED25519SignatureFromMarshalUtil unmarshals an ED25519Signature using a MarshalUtil (for easier unmarshaling).
func ED25519SignatureFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (signature *ED25519Signature, err error) {
	signatureType, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse SignatureType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if SignatureType(signatureType) != ED25519SignatureType {
		err = xerrors.Errorf("invalid SignatureType (%X): %w", signatureType, cerrors.ErrParseBytesFailed)
		return
	}

	signature = &ED25519Signature{}
	publicKeyBytes, err := marshalUtil.ReadBytes(ed25519.PublicKeySize)
	if err != nil {
		err = xerrors.Errorf("failed to parse public key (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if signature.publicKey, _, err = ed25519.PublicKeyFromBytes(publicKeyBytes); err != nil {
		err = xerrors.Errorf("failed to parse public key from bytes: %w", err)
		return
	}
	signatureBytes, err := marshalUtil.ReadBytes(ed25519.SignatureSize)
	if err != nil {
		err = xerrors.Errorf("failed to parse signature (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	copy(signature.signature[:], signatureBytes)

	return
}

// PublicKey returns the public key this Signature was created with.
func (e *ED25519Signature) PublicKey() ed25519.PublicKey {
	return e.publicKey
}

// Type returns the SignatureType of this Signature.
func (e *ED25519Signature) Type() SignatureType {
	return ED25519SignatureType
}

// SignatureValid returns true if the Signature signs the given data.
func (e *ED25519Signature) SignatureValid(data []byte) bool {
	return e.publicKey.VerifySignature(data, e.signature)
}

// AddressSignatureValid returns true if the Signature signs the given Address.
func (e *ED25519Signature) AddressSignatureValid(address Address, data []byte) bool {
	if address.Type() != ED25519AddressType {
		return false
	}

	if !NewED25519Address(e.publicKey).Equals(address) {
		return false
	}

	return e.SignatureValid(data)
}

// Bytes returns a marshaled version of the Signature.
func (e *ED25519Signature) Bytes() []byte {
	return byteutils.ConcatBytes([]byte{byte(ED25519SignatureType)}, e.publicKey.Bytes(), e.signature.Bytes())
}

// Base58 returns a base58 encoded version of the Signature.
func (e *ED25519Signature) Base58() string {
	return base58.Encode(e.Bytes())
}

// String returns a human readable version of the Signature.
func (e *ED25519Signature) String() string {
	return stringify.Struct("ED25519Signature",
		stringify.StructField("publicKey", e.publicKey),
		stringify.StructField("signature", e.signature),
	)
}

// code contract (make sure the type implements all required methods)
var _ Signature = &ED25519Signature{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
