package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/nftgallery/base/ctx"

	nft "github.com/x-xyz/nftgallery/domain/nft"
)

// Fetcher is an autogenerated mock type for the Fetcher type
type Fetcher struct {
	mock.Mock
}

// FetchAll provides a mock function with given fields: c, owner
func (_m *Fetcher) FetchAll(c ctx.Ctx, owner string) []nft.Nft {
	ret := _m.Called(c, owner)

	var r0 []nft.Nft
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string) []nft.Nft); ok {
		r0 = rf(c, owner)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]nft.Nft)
		}
	}

	return r0
}

// FetchPage provides a mock function with given fields: c, owner, cursor
func (_m *Fetcher) FetchPage(c ctx.Ctx, owner string, cursor string) nft.Page {
	ret := _m.Called(c, owner, cursor)

	var r0 nft.Page
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string, string) nft.Page); ok {
		r0 = rf(c, owner, cursor)
	} else {
		r0 = ret.Get(0).(nft.Page)
	}

	return r0
}
