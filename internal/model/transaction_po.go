package model

import (
	"database/sql"
	"time"

	"mintvault/internal/constant"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transactions corresponds to the transactions ledger table. Rows are created
// pending and transition once to completed or failed; the tx hash may be
// back-filled while still pending so that a crashed finalize can be replayed.
type Transactions struct {
	Id          string                     `gorm:"primaryKey"`
	UserId      string                     `gorm:"index;not null"`
	Type        constant.TransactionType   `gorm:"not null"`
	Status      constant.TransactionStatus `gorm:"not null;default:pending"`
	Amount      decimal.Decimal            `gorm:"type:decimal(18,8);not null"`
	TxHash      sql.NullString             ``
	FromAddress sql.NullString             ``
	ToAddress   sql.NullString             ``
	NftId       sql.NullString             `gorm:"index"`
	Metadata    datatypes.JSONMap          `gorm:"type:jsonb"`
	CreatedAt   time.Time                  ``
	UpdatedAt   time.Time                  ``
}
