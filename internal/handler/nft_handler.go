package handler

import (
	"net/http"

	"mintvault/internal/logic/nft"
	"mintvault/internal/svc"
	"mintvault/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// NftAvailableHandler 列出可铸造的 NFT
func NftAvailableHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := nft.NewNftLogic(r.Context(), svcCtx)
		resp, err := l.Available()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// NftOwnedHandler 列出用户持有的 NFT
func NftOwnedHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.NftListReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := nft.NewNftLogic(r.Context(), svcCtx)
		resp, err := l.OwnedBy(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

// MintHandler 立即铸造
func MintHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.MintReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := nft.NewMintLogic(r.Context(), svcCtx)
		resp, err := l.Mint(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
