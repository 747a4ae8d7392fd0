package anchor

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// region KeyStore /////////////////////////////////////////////////////////////////////////////////////////////////////

// ErrKeyNotFound is returned when the KeyStore holds no key pair for the requested address.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore provides the signing capability of the anchoring components. Implementations hold the private keys of the
// wallet addresses; the core never sees raw key material beyond this interface.
type KeyStore interface {
	// HasKey reports whether the KeyStore can sign for the given address.
	HasKey(address ledgerstate.Address) bool

	// Sign signs the given data with the key pair of the given address and returns the Signature that proves
	// ownership. It fails with ErrKeyNotFound if no key pair is held for the address.
	Sign(address ledgerstate.Address, data []byte) (ledgerstate.Signature, error)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region InMemoryKeyStore /////////////////////////////////////////////////////////////////////////////////////////////

// InMemoryKeyStore is a KeyStore that keeps ed25519 key pairs in memory, keyed by the address digest of their public
// key. It is meant for tests and short-lived tooling rather than durable key custody.
type InMemoryKeyStore struct {
	keyPairs      map[[ledgerstate.AddressLength]byte]ed25519.KeyPair
	keyPairsMutex sync.RWMutex
}

// NewInMemoryKeyStore creates an empty InMemoryKeyStore.
func NewInMemoryKeyStore() *InMemoryKeyStore {
	return &InMemoryKeyStore{
		keyPairs: make(map[[ledgerstate.AddressLength]byte]ed25519.KeyPair),
	}
}

// NewAddress generates a fresh ed25519 key pair, stores it and returns the address it controls.
func (i *InMemoryKeyStore) NewAddress() (ledgerstate.Address, error) {
	publicKey, privateKey, err := ed25519.GenerateKey()
	if err != nil {
		return nil, errors.Errorf("failed to generate key pair: %w", err)
	}

	return i.AddKeyPair(ed25519.KeyPair{PrivateKey: privateKey, PublicKey: publicKey}), nil
}

// AddKeyPair stores the given key pair and returns the address it controls.
func (i *InMemoryKeyStore) AddKeyPair(keyPair ed25519.KeyPair) ledgerstate.Address {
	address := ledgerstate.NewED25519Address(keyPair.PublicKey)

	i.keyPairsMutex.Lock()
	defer i.keyPairsMutex.Unlock()
	i.keyPairs[address.Array()] = keyPair

	return address
}

// HasKey reports whether the KeyStore can sign for the given address.
func (i *InMemoryKeyStore) HasKey(address ledgerstate.Address) bool {
	i.keyPairsMutex.RLock()
	defer i.keyPairsMutex.RUnlock()

	_, exists := i.keyPairs[address.Array()]

	return exists
}

// Sign signs the given data with the key pair of the given address.
func (i *InMemoryKeyStore) Sign(address ledgerstate.Address, data []byte) (ledgerstate.Signature, error) {
	i.keyPairsMutex.RLock()
	keyPair, exists := i.keyPairs[address.Array()]
	i.keyPairsMutex.RUnlock()

	if !exists {
		return nil, errors.Errorf("no key pair for address %s: %w", address.Base58(), ErrKeyNotFound)
	}

	return ledgerstate.NewED25519Signature(keyPair.PublicKey, keyPair.PrivateKey.Sign(data)), nil
}

// code contract (make sure the type implements all required methods).
var _ KeyStore = &InMemoryKeyStore{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
