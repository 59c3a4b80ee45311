package config

import "github.com/zeromicro/go-zero/rest"

type ChainConf struct {
	Name    string `json:"Name"`
	RpcUrl  string `json:"RpcUrl"`
	ChainId int64  `json:"ChainId"`
}

// EtherscanConf points at the contract metadata service and its browsable
// site (the scrape fallback).
type EtherscanConf struct {
	ApiUrl     string
	ApiKey     string `json:",optional"`
	BrowserUrl string `json:",default=https://etherscan.io"`
}

type VaultConf struct {
	// EncryptionKey is the process-wide secret protecting custodial private
	// keys. Never stored next to the data it encrypts.
	EncryptionKey string
}

type MintConf struct {
	// Chain selects the entry in Chains used for minting.
	Chain string `json:",default=ETH"`
	// ReceiptTimeoutSec bounds the confirmation wait.
	ReceiptTimeoutSec int `json:",default=120"`
	// PayableValueWei is attached as msg.value when the mint function is payable.
	PayableValueWei string `json:",default=10000000000000000"`
}

type QueueConf struct {
	Workers int `json:",default=4"`
	// SweepSpec is the cron spec of the recovery/reconciliation sweep.
	SweepSpec string `json:",default=@every 1m"`
	// StaleMintSec: pending mint transactions older than this that already
	// carry a tx hash are re-finalized by the sweep.
	StaleMintSec int `json:",default=300"`
}

type Config struct {
	rest.RestConf
	Postgres struct {
		DSN string
	}
	// Chains maps a chain name (e.g., "ETH") to its configuration.
	Chains    map[string]ChainConf
	Etherscan EtherscanConf
	Vault     VaultConf
	Mint      MintConf
	Queue     QueueConf
}
