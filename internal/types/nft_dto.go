package types

// MintReq is the immediate-mint request.
type MintReq struct {
	UserId string `json:"user_id" validate:"required"`
	NftId  string `json:"nft_id" validate:"required"`
}

// NftView is the read projection of an NFT row.
type NftView struct {
	Id              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	ImageUrl        string            `json:"image_url,omitempty"`
	Price           string            `json:"price"`
	TokenId         string            `json:"token_id,omitempty"`
	ContractAddress string            `json:"contract_address,omitempty"`
	Status          string            `json:"status"`
	Marketplace     string            `json:"marketplace,omitempty"`
	MintDate        string            `json:"mint_date,omitempty"`
	Blockchain      string            `json:"blockchain,omitempty"`
	CollectionName  string            `json:"collection_name,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
}

// MintResp is returned by the immediate-mint path.
type MintResp struct {
	Nft         NftView         `json:"nft"`
	Transaction TransactionView `json:"transaction"`
}

// NftListReq fetches NFTs owned by a user.
type NftListReq struct {
	UserId string `form:"user_id" validate:"required"`
}

type NftListResp struct {
	Nfts []NftView `json:"nfts"`
}
