package model

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletsDao defines the interface for database operations on the wallets table.
type WalletsDao interface {
	Insert(ctx context.Context, data *Wallets) error
	FindOneByUserId(ctx context.Context, userId string) (*Wallets, error)
	// Debit subtracts amount from the wallet balance. Guarded so the balance
	// can never go negative; returns false if funds were insufficient at
	// debit time.
	Debit(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
}

type walletsDao struct {
	db *gorm.DB
}

// NewWalletsDao creates a new instance of WalletsDao.
func NewWalletsDao(db *gorm.DB) WalletsDao {
	return &walletsDao{db: db}
}

func (d *walletsDao) Insert(ctx context.Context, data *Wallets) error {
	if data.Id == "" {
		data.Id = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(data).Error
}

func (d *walletsDao) FindOneByUserId(ctx context.Context, userId string) (*Wallets, error) {
	var resp Wallets
	err := d.db.WithContext(ctx).Where("user_id = ?", userId).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (d *walletsDao) Debit(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	res := d.db.WithContext(ctx).Model(&Wallets{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
