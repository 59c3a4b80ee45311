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

var ErrNotFound = gorm.ErrRecordNotFound

// NftsDao defines the interface for database operations on the nfts table.
type NftsDao interface {
	Insert(ctx context.Context, data *Nfts) error
	FindOneById(ctx context.Context, id string) (*Nfts, error)
	FindAvailable(ctx context.Context) ([]*Nfts, error)
	FindByUserId(ctx context.Context, userId string) ([]*Nfts, error)
	// ClaimForMint bumps the row version iff the NFT is still AVAILABLE at
	// the expected version. Returns false when a concurrent mint won the claim.
	ClaimForMint(ctx context.Context, id string, version int64) (bool, error)
	// MarkMinted records the on-chain outcome. Guarded on AVAILABLE so a
	// replayed finalize is a no-op.
	MarkMinted(ctx context.Context, id, ownerId, tokenId, contractAddress string, mintDate time.Time) (bool, error)
}

type nftsDao struct {
	db *gorm.DB
}

// NewNftsDao creates a new instance of NftsDao.
func NewNftsDao(db *gorm.DB) NftsDao {
	return &nftsDao{db: db}
}

func (d *nftsDao) Insert(ctx context.Context, data *Nfts) error {
	if data.Id == "" {
		data.Id = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(data).Error
}

func (d *nftsDao) FindOneById(ctx context.Context, id string) (*Nfts, error) {
	var resp Nfts
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

func (d *nftsDao) FindAvailable(ctx context.Context) ([]*Nfts, error) {
	var nfts []*Nfts
	err := d.db.WithContext(ctx).
		Where("status = ?", constant.NftStatusAvailable).
		Order("created_at DESC").
		Find(&nfts).Error
	if err != nil {
		return nil, err
	}
	return nfts, nil
}

func (d *nftsDao) FindByUserId(ctx context.Context, userId string) ([]*Nfts, error) {
	var nfts []*Nfts
	err := d.db.WithContext(ctx).
		Where("owner_id = ?", userId).
		Order("created_at DESC").
		Find(&nfts).Error
	if err != nil {
		return nil, err
	}
	return nfts, nil
}

func (d *nftsDao) ClaimForMint(ctx context.Context, id string, version int64) (bool, error) {
	res := d.db.WithContext(ctx).Model(&Nfts{}).
		Where("id = ? AND status = ? AND version = ?", id, constant.NftStatusAvailable, version).
		Update("version", version+1)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (d *nftsDao) MarkMinted(ctx context.Context, id, ownerId, tokenId, contractAddress string, mintDate time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&Nfts{}).
		Where("id = ? AND status = ?", id, constant.NftStatusAvailable).
		Updates(map[string]any{
			"status":           constant.NftStatusMinted,
			"owner_id":         sql.NullString{String: ownerId, Valid: true},
			"token_id":         tokenId,
			"contract_address": contractAddress,
			"mint_date":        sql.NullTime{Time: mintDate, Valid: true},
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
