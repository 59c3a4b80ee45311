package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Wallets corresponds to the wallets table in the database. One custodial
// wallet per user; EncryptedPrivateKey is vault ciphertext, never plaintext.
type Wallets struct {
	Id                  string            `gorm:"primaryKey"`
	UserId              string            `gorm:"uniqueIndex;not null"`
	Address             string            `gorm:"not null"`
	EncryptedPrivateKey string            `gorm:"not null"`
	Balance             decimal.Decimal   `gorm:"type:decimal(18,8);not null;default:0"`
	ExternalWallets     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt           time.Time         ``
	UpdatedAt           time.Time         ``
}
