package model

import (
	"database/sql"
	"time"

	"mintvault/internal/constant"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ScheduledMints corresponds to the scheduled_mints table. A row is the
// durable side of a queued mint job; its id doubles as the job id.
type ScheduledMints struct {
	Id     string                       `gorm:"primaryKey"`
	UserId string                       `gorm:"index;not null"`
	NftId  string                       `gorm:"index;not null"`
	Status constant.ScheduledMintStatus `gorm:"not null;default:pending"`
	// ScheduledFor is null for "as soon as possible" requests.
	ScheduledFor sql.NullTime ``
	CompletedAt  sql.NullTime ``
	// Price snapshots the NFT price at scheduling time.
	Price         decimal.Decimal   `gorm:"type:decimal(18,8);not null;default:0"`
	FailureReason sql.NullString    ``
	TxHash        sql.NullString    ``
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         ``
	UpdatedAt     time.Time         ``
}
