package nft

import (
	"context"
	"time"

	"mintvault/internal/model"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type NftLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *NftLogic {
	return &NftLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// Available lists NFTs still open for minting.
func (l *NftLogic) Available() (*types.NftListResp, error) {
	nfts, err := l.svcCtx.NftsDao.FindAvailable(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.NftListResp{Nfts: nftViews(nfts)}, nil
}

// OwnedBy lists NFTs owned by the given user.
func (l *NftLogic) OwnedBy(req *types.NftListReq) (*types.NftListResp, error) {
	nfts, err := l.svcCtx.NftsDao.FindByUserId(l.ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	return &types.NftListResp{Nfts: nftViews(nfts)}, nil
}

func nftViews(nfts []*model.Nfts) []types.NftView {
	views := make([]types.NftView, 0, len(nfts))
	for _, n := range nfts {
		views = append(views, NftView(n))
	}
	return views
}

// NftView builds the read projection of one NFT row.
func NftView(n *model.Nfts) types.NftView {
	view := types.NftView{
		Id:              n.Id,
		Name:            n.Name,
		Description:     n.Description.String,
		ImageUrl:        n.ImageUrl.String,
		Price:           n.Price.String(),
		TokenId:         n.TokenId,
		ContractAddress: n.ContractAddress,
		Status:          string(n.Status),
		Marketplace:     n.Marketplace.String,
		Blockchain:      n.Blockchain.String,
		CollectionName:  n.CollectionName.String,
		Metadata:        map[string]any(n.Metadata),
	}
	if n.MintDate.Valid {
		view.MintDate = n.MintDate.Time.Format(time.RFC3339)
	}
	return view
}
