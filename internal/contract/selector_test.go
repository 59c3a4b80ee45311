package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMintFunctionPrefersPayable(t *testing.T) {
	entries := []Entry{
		{
			Type: "function", Name: "safeMint", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "to", Type: "address"}},
		},
		{
			Type: "function", Name: "mint", StateMutability: "payable",
			Inputs: []Param{{Name: "recipient", Type: "address"}},
		},
	}

	fn := FindMintFunction(entries)
	require.NotNil(t, fn)
	assert.Equal(t, "mint", fn.Name)
}

func TestFindMintFunctionDeclarationOrderBreaksTies(t *testing.T) {
	entries := []Entry{
		{
			Type: "function", Name: "mintNFT", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "recipient", Type: "address"}},
		},
		{
			Type: "function", Name: "createToken", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "tokenURI", Type: "string"}},
		},
	}

	fn := FindMintFunction(entries)
	require.NotNil(t, fn)
	assert.Equal(t, "mintNFT", fn.Name)
}

func TestFindMintFunctionNameIsCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{
			Type: "function", Name: "SafeMint", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "to", Type: "address"}},
		},
	}

	fn := FindMintFunction(entries)
	require.NotNil(t, fn)
	assert.Equal(t, "SafeMint", fn.Name)
}

func TestFindMintFunctionRejectsNonCandidates(t *testing.T) {
	entries := []Entry{
		// not on the allowlist
		{
			Type: "function", Name: "burn", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "to", Type: "address"}},
		},
		// view functions never mint
		{
			Type: "function", Name: "mint", StateMutability: "view",
			Inputs: []Param{{Name: "to", Type: "address"}},
		},
		// allowlisted but no recipient, no uri, not payable
		{
			Type: "function", Name: "mintToken", StateMutability: "nonpayable",
			Inputs: []Param{{Name: "flag", Type: "bool"}},
		},
		// events are not callable
		{
			Type: "event", Name: "mint",
			Inputs: []Param{{Name: "to", Type: "address"}},
		},
	}

	assert.Nil(t, FindMintFunction(entries))
}

func TestMapArgumentsPrecedence(t *testing.T) {
	fn := &Entry{
		Type: "function", Name: "mint", StateMutability: "payable",
		Inputs: []Param{
			{Name: "recipient", Type: "address"},
			{Name: "tokenURI", Type: "string"},
			{Name: "tokenId", Type: "uint256"},
			{Name: "price", Type: "uint256"},
			{Name: "quantity", Type: "uint256"},
		},
	}
	opts := MintOptions{
		Recipient: "0x1111111111111111111111111111111111111111",
		Uri:       "ipfs://meta",
		TokenId:   "42",
		Price:     big.NewInt(1000),
	}

	args := MapArguments(fn, opts)
	require.Len(t, args, 5)
	assert.Equal(t, common.HexToAddress(opts.Recipient), args[0])
	assert.Equal(t, "ipfs://meta", args[1])
	assert.Equal(t, big.NewInt(42), args[2])
	assert.Equal(t, big.NewInt(1000), args[3])
	assert.Equal(t, big.NewInt(1), args[4])
}

func TestMapArgumentsTypeDefaults(t *testing.T) {
	fn := &Entry{
		Type: "function", Name: "mint", StateMutability: "payable",
		Inputs: []Param{
			{Name: "operator", Type: "address"}, // unnamed role falls back to recipient
			{Name: "data", Type: "string"},
			{Name: "flag", Type: "bool"},
			{Name: "nonce", Type: "uint64"},
			{Name: "blob", Type: "bytes"},
		},
	}
	opts := MintOptions{Recipient: "0x2222222222222222222222222222222222222222"}

	args := MapArguments(fn, opts)
	require.Len(t, args, 5)
	assert.Equal(t, common.HexToAddress(opts.Recipient), args[0])
	assert.Equal(t, "", args[1])
	assert.Equal(t, false, args[2])
	assert.Equal(t, big.NewInt(0), args[3])
	assert.Nil(t, args[4])
}

func TestMapArgumentsIsDeterministic(t *testing.T) {
	fn := &Entry{
		Type: "function", Name: "purchase", StateMutability: "payable",
		Inputs: []Param{
			{Name: "to", Type: "address"},
			{Name: "amount", Type: "uint256"}, // price wins over quantity for "amount"
		},
	}
	opts := MintOptions{
		Recipient: "0x3333333333333333333333333333333333333333",
		Price:     big.NewInt(7),
	}

	first := MapArguments(fn, opts)
	second := MapArguments(fn, opts)
	assert.Equal(t, first, second)
	assert.Equal(t, big.NewInt(7), first[1])
}

func TestMapArgumentsMissingOptionalValues(t *testing.T) {
	fn := &Entry{
		Type: "function", Name: "mint", StateMutability: "nonpayable",
		Inputs: []Param{
			{Name: "tokenId", Type: "uint256"},
			{Name: "price", Type: "uint256"},
		},
	}

	args := MapArguments(fn, MintOptions{})
	require.Len(t, args, 2)
	assert.Equal(t, big.NewInt(0), args[0])
	assert.Equal(t, big.NewInt(0), args[1])
}
