package gallery

import (
	"sort"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/nft"
)

type SortKey string

const (
	SortKeyDefault    SortKey = "default"
	SortKeyName       SortKey = "name"
	SortKeyTokenId    SortKey = "tokenId"
	SortKeyCollection SortKey = "collection"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortKeyDefault, SortKeyName, SortKeyTokenId, SortKeyCollection:
		return true
	}
	return false
}

// ToSortKey maps user input to a SortKey, empty input is the default ordering
func ToSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortKeyDefault, nil
	}
	k := SortKey(s)
	if !k.IsValid() {
		return "", domain.ErrBadParamInput
	}
	return k, nil
}

// CollectionAll disables the collection filter
const CollectionAll = "all"

const (
	DefaultPageSize       = 12
	DefaultRecentSearches = 5
)

type Selection struct {
	SearchTerm       string  `json:"searchTerm"`
	SortKey          SortKey `json:"sortKey"`
	CollectionFilter string  `json:"collectionFilter"`
	PageSize         int     `json:"pageSize"`
	PageIndex        int     `json:"pageIndex"`
}

// DefaultSelection keeps pageSize, everything else is cleared
func DefaultSelection(pageSize int) Selection {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Selection{
		SortKey:          SortKeyDefault,
		CollectionFilter: CollectionAll,
		PageSize:         pageSize,
		PageIndex:        1,
	}
}

type ViewItem struct {
	nft.Nft
	Favorite bool `json:"favorite"`
}

// View is the visible slice plus what a pager needs to render
type View struct {
	Items         []ViewItem `json:"items"`
	Selection     Selection  `json:"selection"`
	TotalPages    int        `json:"totalPages"`
	FilteredCount int        `json:"filteredCount"`
	TotalCount    int        `json:"totalCount"`
	// From and To are the 1-based bounds of the visible slice, both 0 when nothing is visible
	From        int      `json:"from"`
	To          int      `json:"to"`
	Collections []string `json:"collections"`
}

// FavoriteSet holds contractAddress-tokenId keys
type FavoriteSet map[string]struct{}

// Toggle flips membership and returns the new state
func (s FavoriteSet) Toggle(key string) bool {
	if _, ok := s[key]; ok {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

func (s FavoriteSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys are sorted
func (s FavoriteSet) Keys() []string {
	res := make([]string, 0, len(s))
	for k := range s {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

type Status struct {
	Id             string         `json:"id"`
	Owner          domain.Address `json:"owner"`
	Input          string         `json:"input"`
	Loading        bool           `json:"loading"`
	Empty          bool           `json:"empty"`
	Generation     uint64         `json:"generation"`
	Count          int            `json:"count"`
	RecentSearches []string       `json:"recentSearches"`
}

// SelectionChange carries the optional mutations of one view request, applied in field order
type SelectionChange struct {
	SearchTerm       *string
	SortKey          *SortKey
	CollectionFilter *string
	PageSize         *int
	PageIndex        *int
}

// Session is one connected gallery, every method is safe for concurrent use
type Session interface {
	Id() string
	Status() Status

	// Connect loads the nfts of a wallet supplied address
	Connect(c ctx.Ctx, address domain.Address) error
	// Search loads the nfts of a typed address or ens name
	Search(c ctx.Ctx, input string) error
	// ConnectAsync and SearchAsync validate synchronously and load in background
	ConnectAsync(c ctx.Ctx, address domain.Address) error
	SearchAsync(c ctx.Ctx, input string) error
	Disconnect(c ctx.Ctx)

	View(c ctx.Ctx, change SelectionChange) (View, error)
	Detail(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (ViewItem, error)
	ToggleFavorite(c ctx.Ctx, contract domain.Address, tokenId domain.TokenId) (bool, error)
	Favorites(c ctx.Ctx) []string
}

type Usecase interface {
	Create(c ctx.Ctx) Session
	Get(c ctx.Ctx, id string) (Session, error)
	Delete(c ctx.Ctx, id string) error
	// Close cancels every in-flight load and stops the worker pool
	Close()
}

// Resolver turns a human readable name into an address
type Resolver interface {
	Resolve(c ctx.Ctx, name string) (domain.Address, error)
}
