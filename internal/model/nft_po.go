package model

import (
	"database/sql"
	"time"

	"mintvault/internal/constant"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Nfts corresponds to the nfts table in the database.
type Nfts struct {
	Id              string              `gorm:"primaryKey"`
	Name            string              `gorm:"not null"`
	Description     sql.NullString      ``
	ImageUrl        sql.NullString      ``
	Price           decimal.Decimal     `gorm:"type:decimal(18,8);not null"`
	TokenId         string              ``
	ContractAddress string              ``
	Status          constant.NftStatus  `gorm:"not null;default:available"`
	Marketplace     sql.NullString      ``
	MintDate        sql.NullTime        ``
	Blockchain      sql.NullString      ``
	CollectionName  sql.NullString      ``
	Metadata        datatypes.JSONMap   `gorm:"type:jsonb"`
	OwnerId         sql.NullString      `gorm:"index"`
	CollectionId    sql.NullString      ``
	// Version backs the optimistic claim taken right before a mint is
	// submitted on-chain.
	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time ``
	UpdatedAt time.Time ``
}
