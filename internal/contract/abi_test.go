package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manyFunctions(n int) []Entry {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{
			Type: "function", Name: "fn", StateMutability: "view",
		})
	}
	return entries
}

func TestParseABI(t *testing.T) {
	raw := `[
		{"type":"function","name":"mint","stateMutability":"payable",
		 "inputs":[{"name":"to","type":"address"},{"name":"tokenURI","type":"string"}]},
		{"type":"event","name":"Transfer","anonymous":false,
		 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}]}
	]`

	entries, err := ParseABI(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "mint", entries[0].Name)
	assert.True(t, entries[0].IsPayable())
	assert.True(t, entries[0].IsCallable())
	assert.Equal(t, "event", entries[1].Type)
	assert.False(t, entries[1].IsCallable())
}

func TestParseABIRejectsInvalidJSON(t *testing.T) {
	_, err := ParseABI("Contract source code not verified")
	assert.Error(t, err)
}

func TestIsProxyUpgradeMarkers(t *testing.T) {
	base := manyFunctions(minProxyEntries)

	upgradeTo := append(manyFunctions(minProxyEntries),
		Entry{Type: "function", Name: "upgradeTo", StateMutability: "nonpayable"})
	assert.True(t, IsProxy(upgradeTo))

	beacon := append(manyFunctions(minProxyEntries),
		Entry{Type: "event", Name: "BeaconUpgraded"})
	assert.True(t, IsProxy(beacon))

	fallbackProxy := append(manyFunctions(minProxyEntries),
		Entry{Type: "fallback", StateMutability: "payable"})
	assert.True(t, IsProxy(fallbackProxy))

	assert.False(t, IsProxy(base))
}

func TestIsProxySmallInterface(t *testing.T) {
	assert.True(t, IsProxy(manyFunctions(minProxyEntries-1)))
	assert.False(t, IsProxy(manyFunctions(minProxyEntries)))
	// an empty interface is unresolved, not a proxy
	assert.False(t, IsProxy(nil))
}
