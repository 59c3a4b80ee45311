package contract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Param is one declared parameter of an ABI entry, in declaration order.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entry is one entry of a contract interface description (function, event,
// fallback, ...). The selector and the proxy heuristic operate on this
// explicit structure instead of runtime reflection.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	StateMutability string  `json:"stateMutability"`
	Inputs          []Param `json:"inputs"`
	Anonymous       bool    `json:"anonymous"`
}

// IsPayable reports whether calling the entry may carry value.
func (e *Entry) IsPayable() bool {
	return e.StateMutability == "payable"
}

// IsCallable reports whether the entry is a state-changing function.
func (e *Entry) IsCallable() bool {
	return e.Type == "function" &&
		e.StateMutability != "view" &&
		e.StateMutability != "pure"
}

// Info is a resolved contract interface: the implementation ABI (proxies
// already followed) plus descriptive metadata.
type Info struct {
	// Address is the originally requested contract address. Proxied
	// contracts keep their storage here, so every call targets it even
	// when the ABI came from the implementation.
	Address string
	// Implementation is the resolved implementation address behind a
	// proxy, empty for direct contracts.
	Implementation  string
	Name            string
	Entries         []Entry
	RawABI          string
	SourceCode      string
	CompilerVersion string
}

// ParseABI decodes a raw interface description into entries.
func ParseABI(raw string) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("invalid abi json: %w", err)
	}
	return entries, nil
}

// minProxyEntries: interfaces smaller than this are treated as proxies. An
// unusually small ABI is typical for delegating contracts. Heuristic, not a
// guarantee.
const minProxyEntries = 10

// IsProxy classifies an interface as a proxy when it exhibits any of the
// usual upgradeability markers or is suspiciously small.
func IsProxy(entries []Entry) bool {
	if len(entries) == 0 {
		return false
	}

	for _, e := range entries {
		// EIP-1967 style upgrade functions
		if e.Name == "upgradeTo" || e.Name == "upgradeToAndCall" {
			return true
		}
		// Beacon proxy upgrade notification
		if e.Type == "event" && e.Name == "BeaconUpgraded" {
			return true
		}
		// Generic delegating fallback
		if e.Type == "fallback" && e.StateMutability == "payable" {
			return true
		}
	}

	return len(entries) < minProxyEntries
}

// isAddressType reports whether the declared type is an address.
func isAddressType(t string) bool {
	return t == "address"
}

// isStringType loosely matches any string-bearing declared type.
func isStringType(t string) bool {
	return strings.Contains(strings.ToLower(t), "string")
}

// isUintType matches any declared unsigned integer width.
func isUintType(t string) bool {
	return strings.HasPrefix(strings.ToLower(t), "uint")
}
