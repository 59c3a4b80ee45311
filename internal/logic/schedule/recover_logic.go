package schedule

import (
	"context"
	"errors"
	"time"

	"mintvault/internal/chain"
	"mintvault/internal/constant"
	"mintvault/internal/logic/nft"
	"mintvault/internal/model"
	"mintvault/internal/svc"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"
)

// RecoverLogic 负责把进程内延迟队列和数据库对齐：启动时把 PENDING 排期
// 重新挂回时间轮，运行期定时扫描漏投的排期和卡在 PENDING 的铸造流水。
type RecoverLogic struct {
	svcCtx *svc.ServiceContext
	cron   *cron.Cron
	logx.Logger
}

func NewRecoverLogic(svcCtx *svc.ServiceContext) *RecoverLogic {
	return &RecoverLogic{
		svcCtx: svcCtx,
		cron:   cron.New(),
		Logger: logx.WithContext(context.Background()),
	}
}

// Start 先做一次启动恢复，再按配置的周期启动扫描。
func (l *RecoverLogic) Start() error {
	l.requeuePending(context.Background())

	if _, err := l.cron.AddFunc(l.svcCtx.Config.Queue.SweepSpec, l.sweep); err != nil {
		return err
	}
	l.cron.Start()
	l.Infof("恢复扫描已启动, 周期: %s", l.svcCtx.Config.Queue.SweepSpec)
	return nil
}

func (l *RecoverLogic) Stop() {
	ctx := l.cron.Stop()
	<-ctx.Done()
}

func (l *RecoverLogic) sweep() {
	ctx := context.Background()
	l.sweepSchedules(ctx)
	l.reconcileMints(ctx)
}

// requeuePending 把所有 PENDING 排期挂回时间轮。到期的立即投递。
func (l *RecoverLogic) requeuePending(ctx context.Context) {
	rows, err := l.svcCtx.ScheduledMintsDao.FindPending(ctx)
	if err != nil {
		l.Errorf("启动恢复: 查询 PENDING 排期失败: %v", err)
		return
	}

	for _, row := range rows {
		delay := remainingDelay(row, time.Now())
		l.Infof("启动恢复: 排期 %s 重新入队, 延迟 %s", row.Id, delay)
		l.svcCtx.Jobs.Push(row.Id, delay)
	}
	l.Infof("启动恢复完成, 共恢复 %d 条排期", len(rows))
}

// sweepSchedules 补投漏掉的排期。时间轮正常持有未到期的定时器，这里只
// 追已经超期太久的行——宽限期挡住"刚到期、正在执行中"的行被二次投递。
func (l *RecoverLogic) sweepSchedules(ctx context.Context) {
	rows, err := l.svcCtx.ScheduledMintsDao.FindPending(ctx)
	if err != nil {
		l.Errorf("扫描: 查询 PENDING 排期失败: %v", err)
		return
	}

	grace := time.Duration(l.svcCtx.Config.Queue.StaleMintSec) * time.Second
	now := time.Now()
	for _, row := range rows {
		due := row.CreatedAt
		if row.ScheduledFor.Valid {
			due = row.ScheduledFor.Time
		}
		if now.Sub(due) <= grace {
			continue
		}
		l.Infof("扫描: 排期 %s 超期 %s, 补投", row.Id, now.Sub(due))
		l.svcCtx.Jobs.Push(row.Id, 0)
	}
}

// reconcileMints 对账卡在 PENDING 且已有链上哈希的铸造流水：已确认的
// 续完终结，已回滚或无法定位 token 的落为失败，仍未确认的留待下轮。
func (l *RecoverLogic) reconcileMints(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(l.svcCtx.Config.Queue.StaleMintSec) * time.Second)
	rows, err := l.svcCtx.TransactionsDao.FindStalePendingMints(ctx, cutoff)
	if err != nil {
		l.Errorf("对账: 查询滞留流水失败: %v", err)
		return
	}

	for _, txn := range rows {
		l.reconcileOne(ctx, txn)
	}
}

func (l *RecoverLogic) reconcileOne(ctx context.Context, txn *model.Transactions) {
	fallbackTokenId := ""
	if txn.NftId.Valid {
		if nftRow, err := l.svcCtx.NftsDao.FindOneById(ctx, txn.NftId.String); err == nil {
			fallbackTokenId = nftRow.TokenId
		}
	}

	result, err := l.svcCtx.Executor.ConfirmMint(ctx, txn.TxHash.String, fallbackTokenId)
	if err != nil {
		if errors.Is(err, chain.ErrReverted) || errors.Is(err, chain.ErrNoTokenId) {
			l.Errorf("对账: 流水 %s 不可恢复 (%v), 落为失败", txn.Id, err)
			if _, markErr := l.svcCtx.TransactionsDao.UpdateStatusIf(ctx, txn.Id,
				constant.TransactionStatusPending, constant.TransactionStatusFailed); markErr != nil {
				l.Errorf("对账: 流水 %s 落档失败状态出错: %v", txn.Id, markErr)
			}
			return
		}
		l.Errorf("对账: 流水 %s 查询回执失败, 下轮重试: %v", txn.Id, err)
		return
	}
	if result == nil {
		// 交易还在池里，继续等
		return
	}

	l.Infof("对账: 流水 %s 已确认, tx: %s, token: %s, 续完终结", txn.Id, result.TxHash, result.TokenId)
	mintLogic := nft.NewMintLogic(ctx, l.svcCtx)
	if err := mintLogic.FinalizeMint(txn, result); err != nil {
		l.Errorf("对账: 流水 %s 终结失败: %v", txn.Id, err)
	}
}

// remainingDelay 计算排期距执行时刻的剩余延迟，已到期返回 0。
func remainingDelay(row *model.ScheduledMints, now time.Time) time.Duration {
	if !row.ScheduledFor.Valid {
		return 0
	}
	if d := row.ScheduledFor.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}
