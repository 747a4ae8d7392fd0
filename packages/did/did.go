// Package did implements the textual identifier layer on top of anchored Alias Outputs: formatting a DID from an
// AliasID and the ledger's network name, and resolving the placeholder self-references a document carries before its
// alias identifier is known.
package did

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

// Method is the DID method name of ledger-anchored identities.
const Method = "iota"

// ErrInvalidDID is returned when a string does not parse as a DID of this method.
var ErrInvalidDID = errors.New("invalid DID")

// FromAliasID formats the DID of the given AliasID on the network identified by networkHRP. The network segment is
// omitted on the main network, where the HRP equals the method name.
func FromAliasID(aliasID ledgerstate.AliasID, networkHRP string) string {
	if networkHRP == Method || networkHRP == "" {
		return "did:" + Method + ":" + aliasID.Base58()
	}

	return "did:" + Method + ":" + networkHRP + ":" + aliasID.Base58()
}

// Placeholder returns the DID carrying the all-zero placeholder AliasID on the given network. Inside the state
// metadata of a minting Alias Output it means "self" and is substituted once the real identifier is derived.
func Placeholder(networkHRP string) string {
	return FromAliasID(ledgerstate.EmptyAliasID, networkHRP)
}

// Parse splits a DID into its network HRP and AliasID. The network segment defaults to the method name when absent.
func Parse(did string) (aliasID ledgerstate.AliasID, networkHRP string, err error) {
	segments := strings.Split(did, ":")
	switch {
	case len(segments) == 3 && segments[0] == "did" && segments[1] == Method:
		networkHRP = Method
	case len(segments) == 4 && segments[0] == "did" && segments[1] == Method:
		networkHRP = segments[2]
	default:
		err = errors.Errorf("%q does not match did:%s:[network:]tag: %w", did, Method, ErrInvalidDID)
		return
	}

	if aliasID, err = ledgerstate.AliasIDFromBase58(segments[len(segments)-1]); err != nil {
		err = errors.Errorf("failed to parse tag of %q: %w", did, ErrInvalidDID)
		return
	}

	return
}

// ReplacePlaceholder substitutes every occurrence of the placeholder DID inside the document bytes with the DID of
// the given AliasID. A document must never be published or surfaced with an unresolved placeholder.
func ReplacePlaceholder(document []byte, aliasID ledgerstate.AliasID, networkHRP string) []byte {
	return bytes.ReplaceAll(document, []byte(Placeholder(networkHRP)), []byte(FromAliasID(aliasID, networkHRP)))
}

// Document is a DID document reconstructed from a published Alias Output.
type Document struct {
	// DID is the formatted identifier of the document.
	DID string

	// AliasID is the ledger identifier of the anchoring Alias Output.
	AliasID ledgerstate.AliasID

	// OutputID references the Alias Output the document was extracted from.
	OutputID ledgerstate.OutputID

	// StateIndex is the state index the document was published at.
	StateIndex uint32

	// Data holds the decoded document bytes with all placeholder self-references resolved.
	Data []byte
}
