package did

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/didanchor/packages/ledgerstate"
)

func TestFromAliasID(t *testing.T) {
	aliasID := ledgerstate.AliasIDFromOutputID(ledgerstate.NewOutputID(ledgerstate.TransactionID{1}, 0))

	assert.Equal(t, "did:iota:"+aliasID.Base58(), FromAliasID(aliasID, "iota"))
	assert.Equal(t, "did:iota:"+aliasID.Base58(), FromAliasID(aliasID, ""))
	assert.Equal(t, "did:iota:testnet:"+aliasID.Base58(), FromAliasID(aliasID, "testnet"))
}

func TestParse(t *testing.T) {
	aliasID := ledgerstate.AliasIDFromOutputID(ledgerstate.NewOutputID(ledgerstate.TransactionID{2}, 1))

	parsedID, networkHRP, err := Parse(FromAliasID(aliasID, "iota"))
	require.NoError(t, err)
	assert.Equal(t, aliasID, parsedID)
	assert.Equal(t, "iota", networkHRP)

	parsedID, networkHRP, err = Parse(FromAliasID(aliasID, "testnet"))
	require.NoError(t, err)
	assert.Equal(t, aliasID, parsedID)
	assert.Equal(t, "testnet", networkHRP)

	for _, invalid := range []string{"", "did:web:example", "did:iota:!!!", "did:iota:testnet:extra:" + aliasID.Base58()} {
		_, _, parseErr := Parse(invalid)
		assert.True(t, errors.Is(parseErr, ErrInvalidDID), "expected ErrInvalidDID for %q", invalid)
	}
}

func TestReplacePlaceholder(t *testing.T) {
	aliasID := ledgerstate.AliasIDFromOutputID(ledgerstate.NewOutputID(ledgerstate.TransactionID{3}, 2))
	document := []byte(`{"id":"` + Placeholder("testnet") + `","controller":"` + Placeholder("testnet") + `"}`)

	resolved := ReplacePlaceholder(document, aliasID, "testnet")
	assert.NotContains(t, string(resolved), Placeholder("testnet"))
	assert.Contains(t, string(resolved), FromAliasID(aliasID, "testnet"))

	// documents without placeholders pass through unchanged
	plain := []byte(`{"id":"did:iota:testnet:something"}`)
	assert.Equal(t, plain, ReplacePlaceholder(plain, aliasID, "testnet"))
}
