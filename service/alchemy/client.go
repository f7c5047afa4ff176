package alchemy

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	bCtx "github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/domain/nft"
)

const (
	DefaultEndpoint = "https://eth-mainnet.g.alchemy.com/nft/v3"
	DefaultPageSize = 100
)

var (
	ErrStatusCodeNotOk = errors.New("http.status != 200")
	// ErrMalformedPage means the body decoded but carried no ownedNfts
	ErrMalformedPage = errors.New("response without ownedNfts")
)

// StatusCodeError keeps the upstream status, errors.Is matches ErrStatusCodeNotOk
type StatusCodeError struct {
	StatusCode int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrStatusCodeNotOk.Error(), e.StatusCode)
}

func (e *StatusCodeError) Is(target error) bool {
	return target == ErrStatusCodeNotOk
}

// Temporary reports whether another try may succeed
func (e *StatusCodeError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type Client interface {
	// GetNftsForOwner requests one page, pageKey is empty for the first one
	GetNftsForOwner(ctx bCtx.Ctx, owner string, pageKey string) (*OwnedNftsResp, error)
	HasApiKey() bool
	PageSize() int
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
	Apikey     string
	Endpoint   string
	PageSize   int
}

type OwnedNftsResp struct {
	// nil when the field is missing from the body
	OwnedNfts  []nft.RawAsset `json:"ownedNfts"`
	PageKey    string         `json:"pageKey,omitempty"`
	TotalCount int            `json:"totalCount,omitempty"`
}
