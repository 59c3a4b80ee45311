package schedule

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"mintvault/internal/constant"
	"mintvault/internal/errs"
	"mintvault/internal/model"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNftsDao struct{ mock.Mock }

func (m *mockNftsDao) Insert(ctx context.Context, data *model.Nfts) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockNftsDao) FindOneById(ctx context.Context, id string) (*model.Nfts, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Nfts), args.Error(1)
}

func (m *mockNftsDao) FindAvailable(ctx context.Context) ([]*model.Nfts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Nfts), args.Error(1)
}

func (m *mockNftsDao) FindByUserId(ctx context.Context, userId string) ([]*model.Nfts, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Nfts), args.Error(1)
}

func (m *mockNftsDao) ClaimForMint(ctx context.Context, id string, version int64) (bool, error) {
	args := m.Called(ctx, id, version)
	return args.Bool(0), args.Error(1)
}

func (m *mockNftsDao) MarkMinted(ctx context.Context, id, ownerId, tokenId, contractAddress string, mintDate time.Time) (bool, error) {
	args := m.Called(ctx, id, ownerId, tokenId, contractAddress, mintDate)
	return args.Bool(0), args.Error(1)
}

type mockWalletsDao struct{ mock.Mock }

func (m *mockWalletsDao) Insert(ctx context.Context, data *model.Wallets) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockWalletsDao) FindOneByUserId(ctx context.Context, userId string) (*model.Wallets, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallets), args.Error(1)
}

func (m *mockWalletsDao) Debit(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

type mockScheduledMintsDao struct{ mock.Mock }

func (m *mockScheduledMintsDao) Insert(ctx context.Context, data *model.ScheduledMints) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockScheduledMintsDao) FindOneById(ctx context.Context, id string) (*model.ScheduledMints, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledMints), args.Error(1)
}

func (m *mockScheduledMintsDao) FindByUserId(ctx context.Context, userId string) ([]*model.ScheduledMints, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledMints), args.Error(1)
}

func (m *mockScheduledMintsDao) FindPending(ctx context.Context) ([]*model.ScheduledMints, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledMints), args.Error(1)
}

func (m *mockScheduledMintsDao) FindPendingByNftId(ctx context.Context, nftId string) (*model.ScheduledMints, error) {
	args := m.Called(ctx, nftId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledMints), args.Error(1)
}

func (m *mockScheduledMintsDao) MarkCompleted(ctx context.Context, id string, completedAt time.Time, txHash string) (bool, error) {
	args := m.Called(ctx, id, completedAt, txHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduledMintsDao) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduledMintsDao) MarkCancelled(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockQueue struct{ mock.Mock }

func (m *mockQueue) Push(id string, delay time.Duration) {
	m.Called(id, delay)
}

func (m *mockQueue) Remove(id string) {
	m.Called(id)
}

type scheduleFixture struct {
	nfts      *mockNftsDao
	wallets   *mockWalletsDao
	schedules *mockScheduledMintsDao
	jobs      *mockQueue
	svcCtx    *svc.ServiceContext
	nft       *model.Nfts
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		nfts:      new(mockNftsDao),
		wallets:   new(mockWalletsDao),
		schedules: new(mockScheduledMintsDao),
		jobs:      new(mockQueue),
	}
	f.svcCtx = &svc.ServiceContext{
		NftsDao:           f.nfts,
		WalletsDao:        f.wallets,
		ScheduledMintsDao: f.schedules,
		Jobs:              f.jobs,
	}
	f.nft = &model.Nfts{
		Id:              "nft-1",
		Name:            "Genesis",
		Price:           decimal.NewFromInt(2),
		Status:          constant.NftStatusAvailable,
		ContractAddress: "0xCccCCccCCCcCCCcCcCcCCCCcccCcCCcCcCCCCc03",
	}
	return f
}

func TestScheduleFutureMint(t *testing.T) {
	f := newScheduleFixture()
	at := time.Now().Add(time.Hour)

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)
	f.wallets.On("FindOneByUserId", mock.Anything, "user-1").Return(&model.Wallets{Id: "wallet-1"}, nil)
	f.schedules.On("FindPendingByNftId", mock.Anything, "nft-1").Return(nil, model.ErrNotFound)
	f.schedules.On("Insert", mock.Anything, mock.AnythingOfType("*model.ScheduledMints")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.ScheduledMints).Id = "sched-1"
		}).Return(nil)

	var pushedDelay time.Duration
	f.jobs.On("Push", "sched-1", mock.AnythingOfType("time.Duration")).
		Run(func(args mock.Arguments) {
			pushedDelay = args.Get(1).(time.Duration)
		}).Return()

	view, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId:       "user-1",
		NftId:        "nft-1",
		ScheduledFor: at.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, "sched-1", view.Id)
	assert.Equal(t, string(constant.ScheduledMintStatusPending), view.Status)
	assert.Equal(t, "2", view.Price)
	// 一小时的排期，延迟应当接近一小时
	assert.InDelta(t, time.Hour.Seconds(), pushedDelay.Seconds(), 5)

	f.schedules.AssertExpectations(t)
	f.jobs.AssertExpectations(t)
}

func TestScheduleAsSoonAsPossible(t *testing.T) {
	f := newScheduleFixture()

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)
	f.wallets.On("FindOneByUserId", mock.Anything, "user-1").Return(&model.Wallets{Id: "wallet-1"}, nil)
	f.schedules.On("FindPendingByNftId", mock.Anything, "nft-1").Return(nil, model.ErrNotFound)
	f.schedules.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		row := args.Get(1).(*model.ScheduledMints)
		row.Id = "sched-1"
		assert.False(t, row.ScheduledFor.Valid)
	}).Return(nil)
	f.jobs.On("Push", "sched-1", time.Duration(0)).Return()

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId: "user-1",
		NftId:  "nft-1",
	})
	require.NoError(t, err)
	f.jobs.AssertExpectations(t)
}

func TestScheduleRejectsPastDateBeforePersisting(t *testing.T) {
	f := newScheduleFixture()

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)
	f.wallets.On("FindOneByUserId", mock.Anything, "user-1").Return(&model.Wallets{Id: "wallet-1"}, nil)
	f.schedules.On("FindPendingByNftId", mock.Anything, "nft-1").Return(nil, model.ErrNotFound)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId:       "user-1",
		NftId:        "nft-1",
		ScheduledFor: time.Now().Add(-time.Minute).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	// 过去的时间点在落库前就被拒绝
	f.schedules.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.jobs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestScheduleRejectsMalformedTimestamp(t *testing.T) {
	f := newScheduleFixture()

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)
	f.wallets.On("FindOneByUserId", mock.Anything, "user-1").Return(&model.Wallets{Id: "wallet-1"}, nil)
	f.schedules.On("FindPendingByNftId", mock.Anything, "nft-1").Return(nil, model.ErrNotFound)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId:       "user-1",
		NftId:        "nft-1",
		ScheduledFor: "next tuesday",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	f.schedules.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestScheduleRejectsDuplicatePendingSchedule(t *testing.T) {
	f := newScheduleFixture()

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)
	f.wallets.On("FindOneByUserId", mock.Anything, "user-1").Return(&model.Wallets{Id: "wallet-1"}, nil)
	f.schedules.On("FindPendingByNftId", mock.Anything, "nft-1").
		Return(&model.ScheduledMints{Id: "existing"}, nil)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId: "user-1",
		NftId:  "nft-1",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	f.schedules.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestScheduleRejectsUnavailableNft(t *testing.T) {
	f := newScheduleFixture()
	f.nft.Status = constant.NftStatusMinted

	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(f.nft, nil)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Schedule(&types.ScheduleMintReq{
		UserId: "user-1",
		NftId:  "nft-1",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestCancelPendingSchedule(t *testing.T) {
	f := newScheduleFixture()
	row := &model.ScheduledMints{
		Id:     "sched-1",
		UserId: "user-1",
		NftId:  "nft-1",
		Status: constant.ScheduledMintStatusPending,
	}
	cancelled := *row
	cancelled.Status = constant.ScheduledMintStatusCancelled

	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(row, nil).Once()
	f.jobs.On("Remove", "sched-1").Return()
	f.schedules.On("MarkCancelled", mock.Anything, "sched-1").Return(true, nil)
	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(&cancelled, nil).Once()

	view, err := NewScheduleLogic(context.Background(), f.svcCtx).Cancel(&types.ScheduleCancelReq{
		Id: "sched-1", UserId: "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(constant.ScheduledMintStatusCancelled), view.Status)
	f.jobs.AssertExpectations(t)
	f.schedules.AssertExpectations(t)
}

func TestCancelRequiresOwnership(t *testing.T) {
	f := newScheduleFixture()
	row := &model.ScheduledMints{
		Id: "sched-1", UserId: "user-1", Status: constant.ScheduledMintStatusPending,
	}

	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(row, nil)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Cancel(&types.ScheduleCancelReq{
		Id: "sched-1", UserId: "someone-else",
	})
	assert.ErrorIs(t, err, errs.ErrAuthorizationFailure)
	f.schedules.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
}

func TestCancelRejectsTerminalSchedule(t *testing.T) {
	f := newScheduleFixture()
	row := &model.ScheduledMints{
		Id: "sched-1", UserId: "user-1", Status: constant.ScheduledMintStatusCompleted,
	}

	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(row, nil)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Cancel(&types.ScheduleCancelReq{
		Id: "sched-1", UserId: "user-1",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	f.schedules.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
}

func TestCancelMissingSchedule(t *testing.T) {
	f := newScheduleFixture()

	f.schedules.On("FindOneById", mock.Anything, "missing").Return(nil, model.ErrNotFound)

	_, err := NewScheduleLogic(context.Background(), f.svcCtx).Cancel(&types.ScheduleCancelReq{
		Id: "missing", UserId: "user-1",
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestExecuteIgnoresTerminalSchedule(t *testing.T) {
	f := newScheduleFixture()
	row := &model.ScheduledMints{
		Id: "sched-1", UserId: "user-1", NftId: "nft-1",
		Status: constant.ScheduledMintStatusCancelled,
	}

	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(row, nil)

	// 重复投递到已终结的排期必须是无害的空操作
	err := NewScheduleLogic(context.Background(), f.svcCtx).Execute("sched-1")
	assert.NoError(t, err)
	f.nfts.AssertNotCalled(t, "FindOneById", mock.Anything, mock.Anything)
	f.schedules.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteIgnoresMissingSchedule(t *testing.T) {
	f := newScheduleFixture()

	f.schedules.On("FindOneById", mock.Anything, "gone").Return(nil, model.ErrNotFound)

	assert.NoError(t, NewScheduleLogic(context.Background(), f.svcCtx).Execute("gone"))
}

func TestExecuteFailureIsRecorded(t *testing.T) {
	f := newScheduleFixture()
	row := &model.ScheduledMints{
		Id: "sched-1", UserId: "user-1", NftId: "nft-1",
		Status: constant.ScheduledMintStatusPending,
	}

	f.schedules.On("FindOneById", mock.Anything, "sched-1").Return(row, nil)
	// 铸造入口直接失败: NFT 已不存在
	f.nfts.On("FindOneById", mock.Anything, "nft-1").Return(nil, model.ErrNotFound)
	f.schedules.On("MarkFailed", mock.Anything, "sched-1", mock.AnythingOfType("string")).
		Return(true, nil)

	err := NewScheduleLogic(context.Background(), f.svcCtx).Execute("sched-1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	f.schedules.AssertExpectations(t)
}

func TestViewFormatsTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &model.ScheduledMints{
		Id:           "sched-1",
		UserId:       "user-1",
		NftId:        "nft-1",
		Status:       constant.ScheduledMintStatusCompleted,
		ScheduledFor: sql.NullTime{Time: at, Valid: true},
		CompletedAt:  sql.NullTime{Time: at.Add(time.Second), Valid: true},
		Price:        decimal.RequireFromString("1.5"),
		TxHash:       sql.NullString{String: "0xdone", Valid: true},
	}

	view := View(row)
	assert.Equal(t, "2026-03-01T12:00:00Z", view.ScheduledFor)
	assert.Equal(t, "2026-03-01T12:00:01Z", view.CompletedAt)
	assert.Equal(t, "1.5", view.Price)
	assert.Equal(t, "0xdone", view.TxHash)
}
