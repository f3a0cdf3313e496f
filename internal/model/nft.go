package model

import "time"

// Attribute is one trait of a catalog item.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// NFT is a pre-generated catalog item waiting to be lazily minted.
// PriceWei is the voucher price as a base-10 wei string.
type NFT struct {
	TokenID         uint64      `json:"tokenId"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	ImageHash       string      `json:"imageHash"`
	Metadata        string      `json:"metadata"` // token URI
	MetadataHash    string      `json:"metadataHash"`
	MetadataGateway string      `json:"metadataGateway,omitempty"`
	Attributes      []Attribute `json:"attributes"`
	PriceWei        string      `json:"priceWei"`
	CreatedAt       time.Time   `json:"-"` // Not exposed in API
}

// Rarity returns the "Rarity" trait, defaulting to Common.
func (n NFT) Rarity() string {
	for _, a := range n.Attributes {
		if a.TraitType == "Rarity" {
			if s, ok := a.Value.(string); ok && s != "" {
				return s
			}
		}
	}
	return "Common"
}

// CatalogItem is one entry of the asset pipeline's nfts.json export.
// Price is either a wei integer or an ETH decimal; empty means the collection default.
type CatalogItem struct {
	TokenID         uint64      `json:"tokenId"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	ImageHash       string      `json:"imageHash"`
	Metadata        string      `json:"metadata"`
	MetadataHash    string      `json:"metadataHash"`
	MetadataGateway string      `json:"metadataGateway,omitempty"`
	Attributes      []Attribute `json:"attributes"`
	Price           string      `json:"price"`
}

// MintRecord is the advisory off-chain note that a token was minted.
type MintRecord struct {
	TokenID         uint64    `json:"tokenId"`
	Owner           string    `json:"owner"`
	TransactionHash string    `json:"transactionHash"`
	MintedAt        time.Time `json:"mintedAt"`
}

// NFTResponse is the API view of a catalog item with its mint status.
type NFTResponse struct {
	TokenID         uint64      `json:"tokenId"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	ImageHash       string      `json:"imageHash"`
	Metadata        string      `json:"metadata"`
	MetadataHash    string      `json:"metadataHash"`
	MetadataGateway string      `json:"metadataGateway,omitempty"`
	Attributes      []Attribute `json:"attributes"`
	Price           string      `json:"price"` // ETH, decimal
	PriceWei        string      `json:"priceWei"`
	Rarity          string      `json:"rarity"`
	Minted          bool        `json:"minted"`
	Owner           *string     `json:"owner"`
	TransactionHash *string     `json:"transactionHash,omitempty"`
	MintedAt        *time.Time  `json:"mintedAt,omitempty"`
}

// NFTList is a page of catalog items.
type NFTList struct {
	Data       []NFTResponse `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// Pagination describes a page window.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListNFTsQuery filters the catalog listing.
type ListNFTsQuery struct {
	Minted *bool `query:"minted"`
	Limit  int   `query:"limit" validate:"gte=0,lte=500"`
	Offset int   `query:"offset" validate:"gte=0"`
}

// CollectionStats summarizes the catalog.
type CollectionStats struct {
	Total       int    `json:"total"`
	Minted      int    `json:"minted"`
	Available   int    `json:"available"`
	FloorPrice  string `json:"floorPrice"`  // ETH
	TotalVolume string `json:"totalVolume"` // ETH, advisory
}

// VoucherRequest is the DTO for POST /api/nft/voucher/:tokenId
type VoucherRequest struct {
	Buyer string `json:"buyer" validate:"required,ethaddr"`
}

// MintedRequest is the DTO for POST /api/nft/minted/:tokenId
type MintedRequest struct {
	Owner           string `json:"owner" validate:"required,ethaddr"`
	TransactionHash string `json:"transactionHash" validate:"required,txhash"`
}

// VerifyResponse is the result of voucher pre-validation.
type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Signer  string `json:"signer"`
	Minted  bool   `json:"minted"`
	Message string `json:"message,omitempty"`
}
