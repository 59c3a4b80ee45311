package types

// WalletInitReq defines the request body for creating a custodial wallet.
type WalletInitReq struct {
	UserId string `json:"user_id" validate:"required"`
	Chain  string `json:"chain,omitempty"`
}

// WalletInitResp returns the public view of the new wallet. No secret
// material ever leaves the service.
type WalletInitResp struct {
	Id      string `json:"id"`
	Address string `json:"address"`
	Balance string `json:"balance"`
	Chain   string `json:"chain"`
}

// WalletViewReq fetches the caller's wallet.
type WalletViewReq struct {
	UserId string `form:"user_id" validate:"required"`
}

type WalletViewResp struct {
	Id      string `json:"id"`
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// TransactionListReq fetches the caller's ledger rows.
type TransactionListReq struct {
	UserId string `form:"user_id" validate:"required"`
}

type TransactionView struct {
	Id          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	TxHash      string `json:"tx_hash,omitempty"`
	FromAddress string `json:"from_address,omitempty"`
	ToAddress   string `json:"to_address,omitempty"`
	NftId       string `json:"nft_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type TransactionListResp struct {
	Transactions []TransactionView `json:"transactions"`
}
