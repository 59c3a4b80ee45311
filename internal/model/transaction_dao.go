package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mintvault/internal/constant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionsDao defines the interface for database operations on the
// transactions table.
type TransactionsDao interface {
	Insert(ctx context.Context, data *Transactions) error
	FindOneById(ctx context.Context, id string) (*Transactions, error)
	FindByUserId(ctx context.Context, userId string) ([]*Transactions, error)
	// UpdateStatusIf transitions status from -> to atomically; returns false
	// if the row was not in the expected state.
	UpdateStatusIf(ctx context.Context, id string, from, to constant.TransactionStatus) (bool, error)
	// SetTxHash back-fills the on-chain hash without touching the status.
	SetTxHash(ctx context.Context, id, txHash string) error
	// FindStalePendingMints returns mint rows stuck pending with a tx hash
	// recorded before the cutoff; they are candidates for re-finalization.
	FindStalePendingMints(ctx context.Context, cutoff time.Time) ([]*Transactions, error)
}

type transactionsDao struct {
	db *gorm.DB
}

// NewTransactionsDao creates a new instance of TransactionsDao.
func NewTransactionsDao(db *gorm.DB) TransactionsDao {
	return &transactionsDao{db: db}
}

func (d *transactionsDao) Insert(ctx context.Context, data *Transactions) error {
	if data.Id == "" {
		data.Id = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(data).Error
}

func (d *transactionsDao) FindOneById(ctx context.Context, id string) (*Transactions, error) {
	var resp Transactions
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (d *transactionsDao) FindByUserId(ctx context.Context, userId string) ([]*Transactions, error) {
	var rows []*Transactions
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *transactionsDao) UpdateStatusIf(ctx context.Context, id string, from, to constant.TransactionStatus) (bool, error) {
	res := d.db.WithContext(ctx).Model(&Transactions{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (d *transactionsDao) SetTxHash(ctx context.Context, id, txHash string) error {
	return d.db.WithContext(ctx).Model(&Transactions{}).
		Where("id = ?", id).
		Update("tx_hash", sql.NullString{String: txHash, Valid: true}).Error
}

func (d *transactionsDao) FindStalePendingMints(ctx context.Context, cutoff time.Time) ([]*Transactions, error) {
	var rows []*Transactions
	err := d.db.WithContext(ctx).
		Where("type = ? AND status = ? AND tx_hash IS NOT NULL AND updated_at < ?",
			constant.TransactionTypeMint, constant.TransactionStatusPending, cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
