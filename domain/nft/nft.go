package nft

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/keys"
)

const (
	UnnamedNft        = "Unnamed NFT"
	UnknownCollection = "Unknown Collection"
	PlaceholderImage  = "https://via.placeholder.com/300x300/1a1a1a/666666?text=No+Image"
)

// RawAsset is one entry of ownedNfts as returned by the indexing api.
// Every field is optional, absent ones decode to zero values.
type RawAsset struct {
	Name        string      `json:"name,omitempty"`
	TokenId     string      `json:"tokenId,omitempty"`
	Description string      `json:"description,omitempty"`
	Rarity      Rarity      `json:"rarity,omitempty"`
	Image       RawImage    `json:"image"`
	Contract    RawContract `json:"contract"`
}

type RawImage struct {
	CachedUrl    string `json:"cachedUrl,omitempty"`
	ThumbnailUrl string `json:"thumbnailUrl,omitempty"`
	OriginalUrl  string `json:"originalUrl,omitempty"`
}

type RawContract struct {
	Address         string             `json:"address,omitempty"`
	Name            string             `json:"name,omitempty"`
	OpenSeaMetadata RawOpenSeaMetadata `json:"openSeaMetadata"`
}

type RawOpenSeaMetadata struct {
	ImageUrl    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// Rarity accepts any json value. Strings are kept as is, other non-null values
// keep their compact json text.
type Rarity struct {
	Value *string
}

func (r *Rarity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Value = &s
		return nil
	}
	buf := bytes.Buffer{}
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	v := buf.String()
	r.Value = &v
	return nil
}

func (r Rarity) MarshalJSON() ([]byte, error) {
	if r.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.Value)
}

// Nft is the normalized shape served to the gallery
type Nft struct {
	Name            string  `json:"name"`
	Collection      string  `json:"collection"`
	Image           string  `json:"image"`
	TokenId         string  `json:"tokenId"`
	ContractAddress string  `json:"contractAddress"`
	Description     string  `json:"description"`
	Rarity          *string `json:"rarity"`
}

// Key is contractAddress-tokenId
func (n Nft) Key() string {
	return keys.FavoriteKey(n.ContractAddress, n.TokenId)
}

// Is reports whether n is the token contract/tokenId, contract compared case-insensitively
func (n Nft) Is(contract domain.Address, tokenId domain.TokenId) bool {
	return domain.Address(n.ContractAddress).Equals(contract) && n.TokenId == tokenId.String()
}

// ToRaw maps n back to the upstream shape so that Normalize(n.ToRaw()) == n
func (n Nft) ToRaw() RawAsset {
	raw := RawAsset{
		Name:        n.Name,
		TokenId:     n.TokenId,
		Description: n.Description,
		Image:       RawImage{CachedUrl: n.Image},
		Contract: RawContract{
			Address: n.ContractAddress,
			Name:    n.Collection,
		},
	}
	if n.Rarity != nil {
		v := *n.Rarity
		raw.Rarity.Value = &v
	}
	return raw
}

// Page is a single upstream round trip
type Page struct {
	Nfts       []Nft  `json:"nfts"`
	NextCursor string `json:"pageKey,omitempty"`
	TotalCount int    `json:"totalCount"`
}

// EmptyPage is what a failed page fetch yields
func EmptyPage() Page {
	return Page{Nfts: []Nft{}}
}

// Fetcher retrieves and normalizes the nfts owned by an address or name.
// Neither call reports errors, failures degrade to empty or partial results.
type Fetcher interface {
	FetchAll(c ctx.Ctx, owner string) []Nft
	FetchPage(c ctx.Ctx, owner string, cursor string) Page
}

func firstNonBlank(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
