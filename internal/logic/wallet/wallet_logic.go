package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"mintvault/internal/constant"
	"mintvault/internal/errs"
	"mintvault/internal/model"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/zeromicro/go-zero/core/logx"
)

type WalletLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewWalletLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WalletLogic {
	return &WalletLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// WalletInit 为用户创建托管钱包：生成密钥对，私钥经 vault 加密后落库，
// 明文私钥绝不离开本函数。每个用户只允许一个钱包。
func (l *WalletLogic) WalletInit(req *types.WalletInitReq) (*types.WalletInitResp, error) {
	l.Infof("--- 开始处理 /wallet_init 请求, user: %s ---", req.UserId)

	chain := req.Chain
	if chain == "" {
		chain = l.svcCtx.Config.Mint.Chain
	}

	// 1. 校验请求的链是否受支持
	if !constant.IsChainSupported(chain) {
		return nil, errs.InvalidState("unsupported chain: %s", chain)
	}

	// 2. 拒绝重复创建
	if _, err := l.svcCtx.WalletsDao.FindOneByUserId(l.ctx, req.UserId); err == nil {
		return nil, errs.InvalidState("wallet already exists for user %s", req.UserId)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// 3. 生成 EVM 密钥对
	l.Infof("步骤 1: 为链 %s 生成密钥对...", chain)
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
	privateKeyHex := hex.EncodeToString(crypto.FromECDSA(privateKey))

	// 4. 私钥加密后入库
	l.Infof("步骤 2: 加密私钥并入库...")
	encrypted, err := l.svcCtx.Vault.Encrypt(privateKeyHex)
	if err != nil {
		return nil, err
	}

	newWallet := &model.Wallets{
		UserId:              req.UserId,
		Address:             address,
		EncryptedPrivateKey: encrypted,
	}
	if err := l.svcCtx.WalletsDao.Insert(l.ctx, newWallet); err != nil {
		return nil, err
	}

	l.Infof("--- /wallet_init 请求处理完成, address: %s ---", address)
	return &types.WalletInitResp{
		Id:      newWallet.Id,
		Address: newWallet.Address,
		Balance: newWallet.Balance.String(),
		Chain:   chain,
	}, nil
}

// GetWallet returns the caller's wallet view.
func (l *WalletLogic) GetWallet(req *types.WalletViewReq) (*types.WalletViewResp, error) {
	wallet, err := l.svcCtx.WalletsDao.FindOneByUserId(l.ctx, req.UserId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errs.NotFound("wallet not found for user %s", req.UserId)
		}
		return nil, err
	}
	return &types.WalletViewResp{
		Id:      wallet.Id,
		Address: wallet.Address,
		Balance: wallet.Balance.String(),
	}, nil
}

// GetTransactions returns the caller's ledger rows, newest first.
func (l *WalletLogic) GetTransactions(req *types.TransactionListReq) (*types.TransactionListResp, error) {
	rows, err := l.svcCtx.TransactionsDao.FindByUserId(l.ctx, req.UserId)
	if err != nil {
		return nil, err
	}

	views := make([]types.TransactionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, TransactionView(row))
	}
	return &types.TransactionListResp{Transactions: views}, nil
}

// TransactionView builds the read projection of one ledger row.
func TransactionView(row *model.Transactions) types.TransactionView {
	return types.TransactionView{
		Id:          row.Id,
		Type:        string(row.Type),
		Status:      string(row.Status),
		Amount:      row.Amount.String(),
		TxHash:      row.TxHash.String,
		FromAddress: row.FromAddress.String,
		ToAddress:   row.ToAddress.String,
		NftId:       row.NftId.String,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}
