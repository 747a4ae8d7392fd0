package ledgerstate

import (
	"bytes"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// region AddressType //////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// ED25519AddressType represents an Address secured by the ED25519 signature scheme.
	ED25519AddressType AddressType = iota

	// AliasAddressType represents the Address of an Alias Output, derived from its AliasID.
	AliasAddressType

	// NFTAddressType represents the Address of an NFT Output, derived from its NFTID.
	NFTAddressType
)

// AddressLength contains the length of an address (type length = 1, digest length = 32).
const AddressLength = 33

// AddressType represents the type of the Address (different types encode different unlock mechanisms).
type AddressType byte

// String returns a human readable representation of the AddressType.
func (a AddressType) String() string {
	return [...]string{
		"ED25519Address",
		"AliasAddress",
		"NFTAddress",
	}[a]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Address //////////////////////////////////////////////////////////////////////////////////////////////////////

// Address is an interface for the different kind of Addresses that are supported by the ledger state.
type Address interface {
	// Type returns the AddressType of the Address.
	Type() AddressType

	// Digest returns the hashed version of the Addresses public key (or the identifier it wraps).
	Digest() []byte

	// Clone creates a copy of the Address.
	Clone() Address

	// Equals returns true if the two Addresses are equal.
	Equals(other Address) bool

	// Bytes returns a marshaled version of the Address.
	Bytes() []byte

	// Array returns an array of bytes that contains the marshaled version of the Address.
	Array() [AddressLength]byte

	// Base58 returns a base58 encoded version of the Address.
	Base58() string

	// String returns a human readable version of the Address for debug purposes.
	String() string
}

// AddressFromBytes unmarshals an Address from a sequence of bytes.
func AddressFromBytes(bytes []byte) (address Address, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if address, err = AddressFromMarshalUtil(marshalUtil); err != nil {
		err = errors.Errorf("failed to parse Address from MarshalUtil: %w", err)
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// AddressFromBase58EncodedString creates an Address from a base58 encoded string.
func AddressFromBase58EncodedString(base58String string) (address Address, err error) {
	bytes, err := base58.Decode(base58String)
	if err != nil {
		err = errors.Errorf("error while decoding base58 encoded Address (%v): %w", err, cerrors.ErrBase58DecodeFailed)
		return
	}

	if address, _, err = AddressFromBytes(bytes); err != nil {
		err = errors.Errorf("failed to parse Address from bytes: %w", err)
		return
	}

	return
}

// AddressFromMarshalUtil reads an Address from the bytes in the given MarshalUtil.
func AddressFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (address Address, err error) {
	addressType, err := marshalUtil.ReadByte()
	if err != nil {
		err = errors.Errorf("failed to parse AddressType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	marshalUtil.ReadSeek(-1)

	switch AddressType(addressType) {
	case ED25519AddressType:
		return ED25519AddressFromMarshalUtil(marshalUtil)
	case AliasAddressType:
		return AliasAddressFromMarshalUtil(marshalUtil)
	case NFTAddressType:
		return NFTAddressFromMarshalUtil(marshalUtil)
	default:
		err = errors.Errorf("unsupported address type (%X): %w", addressType, cerrors.ErrParseBytesFailed)
		return
	}
}

// CompareAddresses is a byte-wise comparator over the binary encoding of two Addresses. Unlock construction relies on
// this ordering; it must never be replaced by a comparison of the string forms.
func CompareAddresses(a, b Address) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// AddressKey returns a string key that identifies an Address inside maps (the raw binary encoding, which includes the
// address type).
func AddressKey(a Address) string {
	return string(a.Bytes())
}

// SortAddresses sorts the given Addresses in ascending byte-wise order.
func SortAddresses(addresses []Address) {
	sort.Slice(addresses, func(i, j int) bool {
		return CompareAddresses(addresses[i], addresses[j]) < 0
	})
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ED25519Address ///////////////////////////////////////////////////////////////////////////////////////////////

// ED25519Address represents an Address that is secured by the ED25519 signature scheme.
type ED25519Address struct {
	digest []byte
}

// NewED25519Address creates a new ED25519Address from the given public key.
func NewED25519Address(publicKey ed25519.PublicKey) *ED25519Address {
	digest := blake2b.Sum256(publicKey[:])

	return &ED25519Address{
		digest: digest[:],
	}
}

// ED25519AddressFromBytes unmarshals an ED25519Address from a sequence of bytes.
func ED25519AddressFromBytes(bytes []byte) (address *ED25519Address, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if address, err = ED25519AddressFromMarshalUtil(marshalUtil); err != nil {
		err = errors.Errorf("failed to parse ED25519Address from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// ED25519AddressFromMarshalUtil parses an ED25519Address from the given MarshalUtil.
func ED25519AddressFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (address *ED25519Address, err error) {
	addressType, err := marshalUtil.ReadByte()
	if err != nil {
		err = errors.Errorf("failed to parse AddressType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if AddressType(addressType) != ED25519AddressType {
		err = errors.Errorf("invalid AddressType (%X): %w", addressType, cerrors.ErrParseBytesFailed)
		return
	}

	address = &ED25519Address{}
	if address.digest, err = marshalUtil.ReadBytes(32); err != nil {
		err = errors.Errorf("error parsing digest (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}

	return
}

// Type returns the AddressType of the Address.
func (e *ED25519Address) Type() AddressType {
	return ED25519AddressType
}

// Digest returns the hashed version of the Addresses public key.
func (e *ED25519Address) Digest() []byte {
	return e.digest
}

// Clone creates a copy of the Address.
func (e *ED25519Address) Clone() Address {
	clonedDigest := make([]byte, len(e.digest))
	copy(clonedDigest, e.digest)

	return &ED25519Address{
		digest: clonedDigest,
	}
}

// Equals returns true if the two Addresses are equal.
func (e *ED25519Address) Equals(other Address) bool {
	return e.Type() == other.Type() && bytes.Equal(e.digest, other.Digest())
}

// Bytes returns a marshaled version of the Address.
func (e *ED25519Address) Bytes() []byte {
	return append([]byte{byte(ED25519AddressType)}, e.digest...)
}

// Array returns an array of bytes that contains the marshaled version of the Address.
func (e *ED25519Address) Array() (array [AddressLength]byte) {
	copy(array[:], e.Bytes())

	return
}

// Base58 returns a base58 encoded version of the Address.
func (e *ED25519Address) Base58() string {
	return base58.Encode(e.Bytes())
}

// String returns a human readable version of the Address.
func (e *ED25519Address) String() string {
	return stringify.Struct("ED25519Address",
		stringify.StructField("Digest", e.Digest()),
		stringify.StructField("Base58", e.Base58()),
	)
}

// code contract (make sure the type implements all required methods)
var _ Address = &ED25519Address{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AliasAddress /////////////////////////////////////////////////////////////////////////////////////////////////

// AliasAddress represents the Address of an Alias Output. It wraps the AliasID of the output, which is derived from
// the OutputID that created the alias and never changes afterwards.
type AliasAddress struct {
	digest [32]byte
}

// NewAliasAddress creates a new AliasAddress from the given AliasID.
func NewAliasAddress(aliasID AliasID) *AliasAddress {
	return &AliasAddress{
		digest: aliasID,
	}
}

// AliasAddressFromMarshalUtil parses an AliasAddress from the given MarshalUtil.
func AliasAddressFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (address *AliasAddress, err error) {
	addressType, err := marshalUtil.ReadByte()
	if err != nil {
		err = errors.Errorf("failed to parse AddressType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if AddressType(addressType) != AliasAddressType {
		err = errors.Errorf("invalid AddressType (%X): %w", addressType, cerrors.ErrParseBytesFailed)
		return
	}

	digest, err := marshalUtil.ReadBytes(32)
	if err != nil {
		err = errors.Errorf("error parsing digest (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	address = &AliasAddress{}
	copy(address.digest[:], digest)

	return
}

// AliasID returns the AliasID this Address wraps.
func (a *AliasAddress) AliasID() AliasID {
	return a.digest
}

// Type returns the AddressType of the Address.
func (a *AliasAddress) Type() AddressType {
	return AliasAddressType
}

// Digest returns the identifier this Address wraps.
func (a *AliasAddress) Digest() []byte {
	return a.digest[:]
}

// Clone creates a copy of the Address.
func (a *AliasAddress) Clone() Address {
	return &AliasAddress{digest: a.digest}
}

// Equals returns true if the two Addresses are equal.
func (a *AliasAddress) Equals(other Address) bool {
	return a.Type() == other.Type() && bytes.Equal(a.Digest(), other.Digest())
}

// Bytes returns a marshaled version of the Address.
func (a *AliasAddress) Bytes() []byte {
	return append([]byte{byte(AliasAddressType)}, a.digest[:]...)
}

// Array returns an array of bytes that contains the marshaled version of the Address.
func (a *AliasAddress) Array() (array [AddressLength]byte) {
	copy(array[:], a.Bytes())

	return
}

// Base58 returns a base58 encoded version of the Address.
func (a *AliasAddress) Base58() string {
	return base58.Encode(a.Bytes())
}

// String returns a human readable version of the Address.
func (a *AliasAddress) String() string {
	return stringify.Struct("AliasAddress",
		stringify.StructField("Digest", a.Digest()),
		stringify.StructField("Base58", a.Base58()),
	)
}

// code contract (make sure the type implements all required methods)
var _ Address = &AliasAddress{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region NFTAddress ///////////////////////////////////////////////////////////////////////////////////////////////////

// NFTAddress represents the Address of an NFT Output. It wraps the NFTID of the output.
type NFTAddress struct {
	digest [32]byte
}

// NewNFTAddress creates a new NFTAddress from the given NFTID.
func NewNFTAddress(nftID NFTID) *NFTAddress {
	return &NFTAddress{
		digest: nftID,
	}
}

// NFTAddressFromMarshalUtil parses an NFTAddress from the given MarshalUtil.
func NFTAddressFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (address *NFTAddress, err error) {
	addressType, err := marshalUtil.ReadByte()
	if err != nil {
		err = errors.Errorf("failed to parse AddressType (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	if AddressType(addressType) != NFTAddressType {
		err = errors.Errorf("invalid AddressType (%X): %w", addressType, cerrors.ErrParseBytesFailed)
		return
	}

	digest, err := marshalUtil.ReadBytes(32)
	if err != nil {
		err = errors.Errorf("error parsing digest (%v): %w", err, cerrors.ErrParseBytesFailed)
		return
	}
	address = &NFTAddress{}
	copy(address.digest[:], digest)

	return
}

// NFTID returns the NFTID this Address wraps.
func (n *NFTAddress) NFTID() (nftID NFTID) {
	return n.digest
}

// Type returns the AddressType of the Address.
func (n *NFTAddress) Type() AddressType {
	return NFTAddressType
}

// Digest returns the identifier this Address wraps.
func (n *NFTAddress) Digest() []byte {
	return n.digest[:]
}

// Clone creates a copy of the Address.
func (n *NFTAddress) Clone() Address {
	return &NFTAddress{digest: n.digest}
}

// Equals returns true if the two Addresses are equal.
func (n *NFTAddress) Equals(other Address) bool {
	return n.Type() == other.Type() && bytes.Equal(n.Digest(), other.Digest())
}

// Bytes returns a marshaled version of the Address.
func (n *NFTAddress) Bytes() []byte {
	return append([]byte{byte(NFTAddressType)}, n.digest[:]...)
}

// Array returns an array of bytes that contains the marshaled version of the Address.
func (n *NFTAddress) Array() (array [AddressLength]byte) {
	copy(array[:], n.Bytes())

	return
}

// Base58 returns a base58 encoded version of the Address.
func (n *NFTAddress) Base58() string {
	return base58.Encode(n.Bytes())
}

// String returns a human readable version of the Address.
func (n *NFTAddress) String() string {
	return stringify.Struct("NFTAddress",
		stringify.StructField("Digest", n.Digest()),
		stringify.StructField("Base58", n.Base58()),
	)
}

// code contract (make sure the type implements all required methods)
var _ Address = &NFTAddress{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
