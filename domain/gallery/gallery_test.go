package gallery

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x-xyz/nftgallery/domain"
)

func TestToSortKey(t *testing.T) {
	req := require.New(t)

	k, err := ToSortKey("")
	req.NoError(err)
	req.Equal(SortKeyDefault, k)

	for _, s := range []string{"default", "name", "tokenId", "collection"} {
		k, err := ToSortKey(s)
		req.NoError(err)
		req.Equal(SortKey(s), k)
	}

	_, err = ToSortKey("price")
	req.Equal(domain.ErrBadParamInput, err)
}

func TestFavoriteSetToggleTwice(t *testing.T) {
	req := require.New(t)

	s := FavoriteSet{"0xA-1": {}}
	req.True(s.Toggle("0xB-2"))
	req.True(s.Has("0xB-2"))
	req.False(s.Toggle("0xB-2"))
	req.Equal(FavoriteSet{"0xA-1": {}}, s)

	req.False(s.Toggle("0xA-1"))
	req.True(s.Toggle("0xA-1"))
	req.Equal([]string{"0xA-1"}, s.Keys())
}

func TestDefaultSelection(t *testing.T) {
	req := require.New(t)
	req.Equal(Selection{SortKey: SortKeyDefault, CollectionFilter: CollectionAll, PageSize: 24, PageIndex: 1}, DefaultSelection(24))
	req.Equal(DefaultPageSize, DefaultSelection(0).PageSize)
}
