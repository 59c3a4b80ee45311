package types

// ScheduleMintReq requests a deferred mint. ScheduledFor is RFC3339; empty
// means "as soon as possible".
type ScheduleMintReq struct {
	UserId       string         `json:"user_id" validate:"required"`
	NftId        string         `json:"nft_id" validate:"required"`
	ScheduledFor string         `json:"scheduled_for,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ScheduledMintView is the read projection of a ScheduledMint row.
type ScheduledMintView struct {
	Id            string         `json:"id"`
	UserId        string         `json:"user_id"`
	NftId         string         `json:"nft_id"`
	Status        string         `json:"status"`
	ScheduledFor  string         `json:"scheduled_for,omitempty"`
	CompletedAt   string         `json:"completed_at,omitempty"`
	Price         string         `json:"price"`
	FailureReason string         `json:"failure_reason,omitempty"`
	TxHash        string         `json:"tx_hash,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// ScheduleListReq lists the caller's scheduled mints.
type ScheduleListReq struct {
	UserId string `form:"user_id" validate:"required"`
}

type ScheduleListResp struct {
	ScheduledMints []ScheduledMintView `json:"scheduled_mints"`
}

// ScheduleGetReq fetches one scheduled mint by id (path parameter).
type ScheduleGetReq struct {
	Id string `path:"id"`
}

// ScheduleCancelReq cancels a pending scheduled mint owned by the caller.
type ScheduleCancelReq struct {
	Id     string `path:"id"`
	UserId string `json:"user_id" validate:"required"`
}
