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

// ScheduledMintsDao defines the interface for database operations on the
// scheduled_mints table. All transitions out of PENDING are conditional
// updates so that terminal states can never be overwritten.
type ScheduledMintsDao interface {
	Insert(ctx context.Context, data *ScheduledMints) error
	FindOneById(ctx context.Context, id string) (*ScheduledMints, error)
	FindByUserId(ctx context.Context, userId string) ([]*ScheduledMints, error)
	FindPending(ctx context.Context) ([]*ScheduledMints, error)
	FindPendingByNftId(ctx context.Context, nftId string) (*ScheduledMints, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time, txHash string) (bool, error)
	MarkFailed(ctx context.Context, id, reason string) (bool, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)
}

type scheduledMintsDao struct {
	db *gorm.DB
}

// NewScheduledMintsDao creates a new instance of ScheduledMintsDao.
func NewScheduledMintsDao(db *gorm.DB) ScheduledMintsDao {
	return &scheduledMintsDao{db: db}
}

func (d *scheduledMintsDao) Insert(ctx context.Context, data *ScheduledMints) error {
	if data.Id == "" {
		data.Id = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(data).Error
}

func (d *scheduledMintsDao) FindOneById(ctx context.Context, id string) (*ScheduledMints, error) {
	var resp ScheduledMints
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (d *scheduledMintsDao) FindByUserId(ctx context.Context, userId string) ([]*ScheduledMints, error) {
	var rows []*ScheduledMints
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *scheduledMintsDao) FindPending(ctx context.Context) ([]*ScheduledMints, error) {
	var rows []*ScheduledMints
	err := d.db.WithContext(ctx).
		Where("status = ?", constant.ScheduledMintStatusPending).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *scheduledMintsDao) FindPendingByNftId(ctx context.Context, nftId string) (*ScheduledMints, error) {
	var resp ScheduledMints
	err := d.db.WithContext(ctx).
		Where("nft_id = ? AND status = ?", nftId, constant.ScheduledMintStatusPending).
		First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (d *scheduledMintsDao) MarkCompleted(ctx context.Context, id string, completedAt time.Time, txHash string) (bool, error) {
	return d.transitionFromPending(ctx, id, map[string]any{
		"status":       constant.ScheduledMintStatusCompleted,
		"completed_at": sql.NullTime{Time: completedAt, Valid: true},
		"tx_hash":      sql.NullString{String: txHash, Valid: txHash != ""},
	})
}

func (d *scheduledMintsDao) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	return d.transitionFromPending(ctx, id, map[string]any{
		"status":         constant.ScheduledMintStatusFailed,
		"failure_reason": sql.NullString{String: reason, Valid: true},
	})
}

func (d *scheduledMintsDao) MarkCancelled(ctx context.Context, id string) (bool, error) {
	return d.transitionFromPending(ctx, id, map[string]any{
		"status": constant.ScheduledMintStatusCancelled,
	})
}

func (d *scheduledMintsDao) transitionFromPending(ctx context.Context, id string, updates map[string]any) (bool, error) {
	res := d.db.WithContext(ctx).Model(&ScheduledMints{}).
		Where("id = ? AND status = ?", id, constant.ScheduledMintStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
