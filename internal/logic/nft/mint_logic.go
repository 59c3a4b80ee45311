package nft

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"mintvault/internal/constant"
	"mintvault/internal/contract"
	"mintvault/internal/errs"
	"mintvault/internal/logic/wallet"
	"mintvault/internal/model"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
)

// weiPerToken converts the ledger price (whole tokens) to wei.
var weiPerToken = decimal.New(1, 18)

type MintLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewMintLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MintLogic {
	return &MintLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// Mint 执行一次完整的铸造：校验 -> 预写 PENDING 流水 -> 解析合约接口 ->
// 选择铸造函数并映射参数 -> 乐观锁占位 -> 链上执行 -> 终结对账。
// 链上提交后的任何失败都把 tx hash 留在 PENDING 流水上，等待定时对账。
func (l *MintLogic) Mint(req *types.MintReq) (*types.MintResp, error) {
	l.Infof("--- 开始处理 /nft/mint 请求, user: %s, nft: %s ---", req.UserId, req.NftId)

	// 1. 校验 NFT 存在且可铸造
	nft, err := l.svcCtx.NftsDao.FindOneById(l.ctx, req.NftId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("nft %s not found", req.NftId)
		}
		return nil, err
	}
	if nft.Status != constant.NftStatusAvailable {
		return nil, errs.InvalidState("nft %s is not available (status: %s)", nft.Id, nft.Status)
	}
	if nft.ContractAddress == "" {
		return nil, errs.InvalidState("nft %s has no contract address", nft.Id)
	}

	// 2. 校验钱包与余额。余额不足时不产生任何流水
	wlt, err := l.svcCtx.WalletsDao.FindOneByUserId(l.ctx, req.UserId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("wallet not found for user %s", req.UserId)
		}
		return nil, err
	}
	if wlt.Balance.LessThan(nft.Price) {
		return nil, errs.InsufficientBalance("balance %s is less than price %s",
			wlt.Balance.String(), nft.Price.String())
	}

	// 3. 预写 PENDING 流水，作为后续对账的锚点
	l.Infof("步骤 1: 创建 PENDING 流水...")
	txn := &model.Transactions{
		UserId:      req.UserId,
		Type:        constant.TransactionTypeMint,
		Status:      constant.TransactionStatusPending,
		Amount:      nft.Price,
		FromAddress: sql.NullString{String: wlt.Address, Valid: true},
		ToAddress:   sql.NullString{String: nft.ContractAddress, Valid: true},
		NftId:       sql.NullString{String: nft.Id, Valid: true},
	}
	if err := l.svcCtx.TransactionsDao.Insert(l.ctx, txn); err != nil {
		return nil, err
	}

	// 4. 解析合约接口（代理合约追到实现）
	l.Infof("步骤 2: 解析合约接口 %s...", nft.ContractAddress)
	info, err := l.svcCtx.Resolver.Resolve(l.ctx, nft.ContractAddress)
	if err != nil {
		l.markMintFailed(txn.Id)
		return nil, err
	}

	// 5. 选择铸造函数并映射参数
	fn := contract.FindMintFunction(info.Entries)
	if fn == nil {
		l.markMintFailed(txn.Id)
		return nil, errs.ResolutionFailure(nil, "no callable mint function on contract %s", info.Address)
	}
	l.Infof("步骤 3: 选中铸造函数 %s(%d 参数)", fn.Name, len(fn.Inputs))

	opts := contract.MintOptions{
		Recipient: wlt.Address,
		Uri:       l.tokenUri(nft),
		TokenId:   nft.TokenId,
		Price:     nft.Price.Mul(weiPerToken).BigInt(),
	}
	args := contract.MapArguments(fn, opts)

	// 6. 解密签名私钥
	privateKeyHex, err := l.svcCtx.Vault.Decrypt(wlt.EncryptedPrivateKey)
	if err != nil {
		l.markMintFailed(txn.Id)
		return nil, errs.AuthorizationFailure("failed to unlock signing key: %v", err)
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		l.markMintFailed(txn.Id)
		return nil, errs.AuthorizationFailure("invalid signing key material")
	}

	// 7. 乐观锁占位，输掉并发竞争的一方不会触链
	claimed, err := l.svcCtx.NftsDao.ClaimForMint(l.ctx, nft.Id, nft.Version)
	if err != nil {
		l.markMintFailed(txn.Id)
		return nil, err
	}
	if !claimed {
		l.markMintFailed(txn.Id)
		return nil, errs.InvalidState("nft %s was claimed by a concurrent mint", nft.Id)
	}

	// 8. 链上执行
	l.Infof("步骤 4: 提交链上交易...")
	result, execErr := l.svcCtx.Executor.ExecuteMint(l.ctx, &contract.MintCall{
		Info:            info,
		Function:        fn,
		Args:            args,
		PrivateKey:      privateKey,
		FallbackTokenId: nft.TokenId,
	})
	if result != nil && result.TxHash != "" {
		// tx hash 一旦产生立即落库，进程崩溃后对账扫描据此续作
		if err := l.svcCtx.TransactionsDao.SetTxHash(l.ctx, txn.Id, result.TxHash); err != nil {
			l.Errorf("记录 tx hash 失败 for %s: %v", txn.Id, err)
		}
	}
	if execErr != nil {
		if result != nil && result.TxHash != "" {
			// 已提交但未确认：保持 PENDING，交给定时对账
			l.Errorf("链上执行未确认, tx: %s, err: %v", result.TxHash, execErr)
			return nil, execErr
		}
		l.markMintFailed(txn.Id)
		return nil, execErr
	}

	// 9. 终结：NFT 归属、流水状态、钱包扣款在同一事务内落定
	l.Infof("步骤 5: 终结对账, tx: %s, token: %s", result.TxHash, result.TokenId)
	if err := l.FinalizeMint(txn, result); err != nil {
		return nil, err
	}

	minted, err := l.svcCtx.NftsDao.FindOneById(l.ctx, nft.Id)
	if err != nil {
		return nil, err
	}
	finalTxn, err := l.svcCtx.TransactionsDao.FindOneById(l.ctx, txn.Id)
	if err != nil {
		return nil, err
	}

	l.Infof("--- /nft/mint 请求处理完成, tx: %s ---", result.TxHash)
	return &types.MintResp{
		Nft:         NftView(minted),
		Transaction: wallet.TransactionView(finalTxn),
	}, nil
}

// FinalizeMint 原子落定一次已确认的铸造：NFT 标记 minted、流水翻转
// completed、钱包扣款。流水的 pending->completed 翻转是幂等闸门——重放的
// 终结不会二次扣款。
func (l *MintLogic) FinalizeMint(txn *model.Transactions, result *contract.MintResult) error {
	return l.svcCtx.Transact(l.ctx, func(s *svc.ServiceContext) error {
		nft, err := s.NftsDao.FindOneById(l.ctx, txn.NftId.String)
		if err != nil {
			return err
		}

		if _, err := s.NftsDao.MarkMinted(l.ctx, nft.Id, txn.UserId,
			result.TokenId, nft.ContractAddress, time.Now()); err != nil {
			return err
		}

		flipped, err := s.TransactionsDao.UpdateStatusIf(l.ctx, txn.Id,
			constant.TransactionStatusPending, constant.TransactionStatusCompleted)
		if err != nil {
			return err
		}
		if !flipped {
			// 已被另一次终结落定
			return nil
		}

		wlt, err := s.WalletsDao.FindOneByUserId(l.ctx, txn.UserId)
		if err != nil {
			return err
		}
		debited, err := s.WalletsDao.Debit(l.ctx, wlt.Id, txn.Amount)
		if err != nil {
			return err
		}
		if !debited {
			return errs.InsufficientBalance("balance dropped below %s before debit", txn.Amount.String())
		}
		return nil
	})
}

func (l *MintLogic) markMintFailed(txnId string) {
	if _, err := l.svcCtx.TransactionsDao.UpdateStatusIf(l.ctx, txnId,
		constant.TransactionStatusPending, constant.TransactionStatusFailed); err != nil {
		l.Errorf("标记流水失败状态出错 for %s: %v", txnId, err)
	}
}

// tokenUri 取元数据里的 uri，缺省回落到以 NFT id 构造的占位 URI
func (l *MintLogic) tokenUri(nft *model.Nfts) string {
	if nft.Metadata != nil {
		if uri, ok := nft.Metadata["uri"].(string); ok && uri != "" {
			return uri
		}
	}
	return "ipfs://" + nft.Id
}
