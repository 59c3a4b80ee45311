package constant

type Chain string

const (
	ChainETH Chain = "ETH"
	ChainBSC Chain = "BSC"
	// ChainSOL Chain = "SOL" // Example for future support
)

// SupportedChains lists all chains that are currently supported for custodial wallets.
var SupportedChains = []Chain{
	ChainETH,
	ChainBSC,
}

// IsChainSupported checks if a given chain is in the list of supported chains.
func IsChainSupported(chain string) bool {
	for _, supportedChain := range SupportedChains {
		if string(supportedChain) == chain {
			return true
		}
	}
	return false
}

// NftStatus is the lifecycle state of an NFT row.
type NftStatus string

const (
	NftStatusAvailable NftStatus = "available"
	NftStatusMinted    NftStatus = "minted"
	NftStatusOwned     NftStatus = "owned"
	NftStatusSold      NftStatus = "sold"
)

// TransactionType classifies ledger rows.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeMint       TransactionType = "mint"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// TransactionStatus transitions pending -> completed | failed, once.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// ScheduledMintStatus: pending is the only non-terminal state.
type ScheduledMintStatus string

const (
	ScheduledMintStatusPending   ScheduledMintStatus = "pending"
	ScheduledMintStatusCompleted ScheduledMintStatus = "completed"
	ScheduledMintStatusFailed    ScheduledMintStatus = "failed"
	ScheduledMintStatusCancelled ScheduledMintStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave the state.
func (s ScheduledMintStatus) IsTerminal() bool {
	return s != ScheduledMintStatusPending
}
