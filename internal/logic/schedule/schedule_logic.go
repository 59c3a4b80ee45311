package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mintvault/internal/constant"
	"mintvault/internal/errs"
	"mintvault/internal/logic/nft"
	"mintvault/internal/model"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/datatypes"
)

type ScheduleLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewScheduleLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ScheduleLogic {
	return &ScheduleLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// Schedule 创建一条延迟铸造任务：先落 PENDING 行（持久化是任务存在的
// 唯一凭据），再把延迟挂到进程内时间轮。过去的时间点在落库前就拒绝。
func (l *ScheduleLogic) Schedule(req *types.ScheduleMintReq) (*types.ScheduledMintView, error) {
	l.Infof("--- 开始处理 /nft/schedule 请求, user: %s, nft: %s ---", req.UserId, req.NftId)

	// 1. 校验 NFT 存在且可铸造
	nftRow, err := l.svcCtx.NftsDao.FindOneById(l.ctx, req.NftId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("nft %s not found", req.NftId)
		}
		return nil, err
	}
	if nftRow.Status != constant.NftStatusAvailable {
		return nil, errs.InvalidState("nft %s is not available (status: %s)", nftRow.Id, nftRow.Status)
	}

	// 2. 校验钱包存在。余额在执行时才检查——排期和执行之间余额可能变化
	if _, err := l.svcCtx.WalletsDao.FindOneByUserId(l.ctx, req.UserId); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("wallet not found for user %s", req.UserId)
		}
		return nil, err
	}

	// 3. 同一 NFT 只允许一条在途排期
	if _, err := l.svcCtx.ScheduledMintsDao.FindPendingByNftId(l.ctx, req.NftId); err == nil {
		return nil, errs.InvalidState("nft %s already has a pending scheduled mint", req.NftId)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// 4. 解析执行时间。空表示尽快执行；过去的时间点直接拒绝
	var scheduledFor sql.NullTime
	var delay time.Duration
	if req.ScheduledFor != "" {
		at, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return nil, errs.InvalidState("scheduled_for must be RFC3339: %v", err)
		}
		now := time.Now()
		if !at.After(now) {
			return nil, errs.InvalidState("scheduled_for %s is not in the future", req.ScheduledFor)
		}
		scheduledFor = sql.NullTime{Time: at, Valid: true}
		delay = at.Sub(now)
	}

	// 5. 落库，价格按当前值快照
	row := &model.ScheduledMints{
		UserId:       req.UserId,
		NftId:        req.NftId,
		Status:       constant.ScheduledMintStatusPending,
		ScheduledFor: scheduledFor,
		Price:        nftRow.Price,
		Metadata:     datatypes.JSONMap(req.Metadata),
	}
	if err := l.svcCtx.ScheduledMintsDao.Insert(l.ctx, row); err != nil {
		return nil, err
	}

	// 6. 挂入延迟队列
	l.svcCtx.Jobs.Push(row.Id, delay)

	l.Infof("--- /nft/schedule 请求处理完成, id: %s, 延迟 %s ---", row.Id, delay)
	view := View(row)
	return &view, nil
}

// Execute 在延迟到期后执行一条排期。重复投递是常态（重启恢复、扫描
// 补投都可能造成），非 PENDING 行直接忽略。失败会落档并把错误上抛。
func (l *ScheduleLogic) Execute(id string) error {
	row, err := l.svcCtx.ScheduledMintsDao.FindOneById(l.ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			l.Infof("排期 %s 不存在，忽略", id)
			return nil
		}
		return err
	}
	if row.Status.IsTerminal() {
		l.Infof("排期 %s 已终结 (%s)，忽略重复投递", id, row.Status)
		return nil
	}

	l.Infof("执行排期铸造 %s, nft: %s", id, row.NftId)
	resp, err := nft.NewMintLogic(l.ctx, l.svcCtx).Mint(&types.MintReq{
		UserId: row.UserId,
		NftId:  row.NftId,
	})
	if err != nil {
		l.Errorf("排期 %s 执行失败: %v", id, err)
		if _, markErr := l.svcCtx.ScheduledMintsDao.MarkFailed(l.ctx, id, err.Error()); markErr != nil {
			l.Errorf("排期 %s 落档失败状态出错: %v", id, markErr)
		}
		return err
	}

	if _, err := l.svcCtx.ScheduledMintsDao.MarkCompleted(l.ctx, id,
		time.Now(), resp.Transaction.TxHash); err != nil {
		return err
	}
	l.Infof("排期 %s 执行成功, tx: %s", id, resp.Transaction.TxHash)
	return nil
}

// Cancel 取消一条尚未执行的排期。只有属主可以取消；已终结的排期拒绝。
func (l *ScheduleLogic) Cancel(req *types.ScheduleCancelReq) (*types.ScheduledMintView, error) {
	row, err := l.svcCtx.ScheduledMintsDao.FindOneById(l.ctx, req.Id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("scheduled mint %s not found", req.Id)
		}
		return nil, err
	}
	if row.UserId != req.UserId {
		return nil, errs.AuthorizationFailure("scheduled mint %s does not belong to user %s", req.Id, req.UserId)
	}
	if row.Status.IsTerminal() {
		return nil, errs.InvalidState("scheduled mint %s is already %s", req.Id, row.Status)
	}

	// 定时器先摘除；就算摘晚了，状态闸门也会拦下执行
	l.svcCtx.Jobs.Remove(req.Id)

	ok, err := l.svcCtx.ScheduledMintsDao.MarkCancelled(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.InvalidState("scheduled mint %s left pending state concurrently", req.Id)
	}

	row, err = l.svcCtx.ScheduledMintsDao.FindOneById(l.ctx, req.Id)
	if err != nil {
		return nil, err
	}
	l.Infof("排期 %s 已取消", req.Id)
	view := View(row)
	return &view, nil
}

// ListForUser lists the caller's scheduled mints, newest first.
func (l *ScheduleLogic) ListForUser(req *types.ScheduleListReq) (*types.ScheduleListResp, error) {
	rows, err := l.svcCtx.ScheduledMintsDao.FindByUserId(l.ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	views := make([]types.ScheduledMintView, 0, len(rows))
	for _, row := range rows {
		views = append(views, View(row))
	}
	return &types.ScheduleListResp{ScheduledMints: views}, nil
}

// GetById fetches one scheduled mint.
func (l *ScheduleLogic) GetById(req *types.ScheduleGetReq) (*types.ScheduledMintView, error) {
	row, err := l.svcCtx.ScheduledMintsDao.FindOneById(l.ctx, req.Id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("scheduled mint %s not found", req.Id)
		}
		return nil, err
	}
	view := View(row)
	return &view, nil
}

// View builds the read projection of one scheduled mint row.
func View(row *model.ScheduledMints) types.ScheduledMintView {
	view := types.ScheduledMintView{
		Id:            row.Id,
		UserId:        row.UserId,
		NftId:         row.NftId,
		Status:        string(row.Status),
		Price:         row.Price.String(),
		FailureReason: row.FailureReason.String,
		TxHash:        row.TxHash.String,
		Metadata:      map[string]any(row.Metadata),
		CreatedAt:     row.CreatedAt.Format(time.RFC3339),
	}
	if row.ScheduledFor.Valid {
		view.ScheduledFor = row.ScheduledFor.Time.Format(time.RFC3339)
	}
	if row.CompletedAt.Valid {
		view.CompletedAt = row.CompletedAt.Time.Format(time.RFC3339)
	}
	return view
}
