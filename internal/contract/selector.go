package contract

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// mintFunctionNames is the fixed allowlist of entry-point names that perform
// minting, matched case-insensitively against the whole name.
var mintFunctionNames = []string{
	"mint",
	"safeMint",
	"mintNFT",
	"createToken",
	"createCollectible",
	"mintToken",
	"purchase",
}

// Parameter-name heuristics. Order of application below is the design
// contract: two implementations that disagree on tie-breaks would mint with
// different arguments.
var (
	recipientNameRe = regexp.MustCompile(`(?i)address|recipient|to`)
	uriNameRe       = regexp.MustCompile(`(?i)uri|url|tokenURI|metadata`)
	tokenIdNameRe   = regexp.MustCompile(`(?i)tokenId|token[_-]?id`)
	priceNameRe     = regexp.MustCompile(`(?i)price|value|amount`)
	quantityNameRe  = regexp.MustCompile(`(?i)qty|quantity|amount`)
)

func isMintName(name string) bool {
	for _, candidate := range mintFunctionNames {
		if strings.EqualFold(name, candidate) {
			return true
		}
	}
	return false
}

// FindMintFunction selects the mint entry point of an interface, or nil when
// none qualifies. Candidates are callable functions from the allowlist that
// additionally take a recipient address, take a metadata URI string, or are
// payable. Payable candidates win; otherwise declaration order decides.
func FindMintFunction(entries []Entry) *Entry {
	var candidates []*Entry

	for i := range entries {
		e := &entries[i]
		if !e.IsCallable() || !isMintName(e.Name) {
			continue
		}

		hasRecipient := false
		hasUri := false
		for _, in := range e.Inputs {
			if recipientNameRe.MatchString(in.Name) && isAddressType(in.Type) {
				hasRecipient = true
			}
			if uriNameRe.MatchString(in.Name) && isStringType(in.Type) {
				hasUri = true
			}
		}

		if hasRecipient || hasUri || e.IsPayable() {
			candidates = append(candidates, e)
		}
	}

	for _, c := range candidates {
		if c.IsPayable() {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

// MintOptions carries the logical mint parameters mapped onto the selected
// function's positional arguments.
type MintOptions struct {
	// Recipient is the hex address receiving the token.
	Recipient string
	// Uri is the token metadata URI.
	Uri string
	// TokenId is the pre-assigned token id, or empty.
	TokenId string
	// Price in wei, or nil.
	Price *big.Int
}

// MapArguments walks the selected function's parameters in order and assigns
// a value per parameter. The precedence is fixed: recipient, URI, token id,
// price, quantity, then type defaults (address -> recipient, string -> "",
// bool -> false, uint -> 0, anything else -> nil).
func MapArguments(fn *Entry, opts MintOptions) []any {
	args := make([]any, 0, len(fn.Inputs))
	recipient := common.HexToAddress(opts.Recipient)

	for _, in := range fn.Inputs {
		switch {
		case recipientNameRe.MatchString(in.Name) && isAddressType(in.Type):
			args = append(args, recipient)
		case uriNameRe.MatchString(in.Name) && isStringType(in.Type):
			args = append(args, opts.Uri)
		case tokenIdNameRe.MatchString(in.Name) && isUintType(in.Type):
			args = append(args, uintArg(opts.TokenId))
		case priceNameRe.MatchString(in.Name) && isUintType(in.Type):
			if opts.Price != nil {
				args = append(args, new(big.Int).Set(opts.Price))
			} else {
				args = append(args, big.NewInt(0))
			}
		case quantityNameRe.MatchString(in.Name) && isUintType(in.Type):
			args = append(args, big.NewInt(1))
		default:
			switch {
			case isAddressType(in.Type):
				args = append(args, recipient)
			case in.Type == "string":
				args = append(args, "")
			case in.Type == "bool":
				args = append(args, false)
			case isUintType(in.Type):
				args = append(args, big.NewInt(0))
			default:
				args = append(args, nil)
			}
		}
	}

	return args
}

func uintArg(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}
