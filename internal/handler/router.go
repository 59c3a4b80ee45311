package handler

import (
	"context"
	"net/http"
	"time"

	"mintvault/internal/errs"
	"mintvault/internal/svc"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			// --- Wallet Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/wallet_init",
				Handler: WalletInitHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/wallet",
				Handler: WalletViewHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/wallet/transactions",
				Handler: TransactionListHandler(serverCtx),
			},
			// --- NFT Routes ---
			{
				Method:  http.MethodGet,
				Path:    "/nft/available",
				Handler: NftAvailableHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/nft/owned",
				Handler: NftOwnedHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/nft/mint",
				Handler: MintHandler(serverCtx),
			},
			// --- Scheduled Mint Routes ---
			{
				Method:  http.MethodPost,
				Path:    "/nft/schedule",
				Handler: ScheduleMintHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/nft/schedules",
				Handler: ScheduleListHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/nft/schedules/:id",
				Handler: ScheduleGetHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/nft/schedules/:id/cancel",
				Handler: ScheduleCancelHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api/"),
		rest.WithTimeout(180000*time.Millisecond),
	)

	// 业务错误按分类映射状态码，错误体即 errs.Error 的 JSON 形态
	httpx.SetErrorHandlerCtx(func(ctx context.Context, err error) (int, any) {
		return errs.HTTPStatus(err), err
	})
}
