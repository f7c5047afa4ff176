package mocks

import (
	mock "github.com/stretchr/testify/mock"
	alchemy "github.com/x-xyz/nftgallery/service/alchemy"

	ctx "github.com/x-xyz/nftgallery/base/ctx"
)

// Client is an autogenerated mock type for the Client type
type Client struct {
	mock.Mock
}

// GetNftsForOwner provides a mock function with given fields: _a0, owner, pageKey
func (_m *Client) GetNftsForOwner(_a0 ctx.Ctx, owner string, pageKey string) (*alchemy.OwnedNftsResp, error) {
	ret := _m.Called(_a0, owner, pageKey)

	var r0 *alchemy.OwnedNftsResp
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string, string) *alchemy.OwnedNftsResp); ok {
		r0 = rf(_a0, owner, pageKey)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*alchemy.OwnedNftsResp)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(ctx.Ctx, string, string) error); ok {
		r1 = rf(_a0, owner, pageKey)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// HasApiKey provides a mock function with given fields:
func (_m *Client) HasApiKey() bool {
	ret := _m.Called()

	var r0 bool
	if rf, ok := ret.Get(0).(func() bool); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(bool)
	}

	return r0
}

// PageSize provides a mock function with given fields:
func (_m *Client) PageSize() int {
	ret := _m.Called()

	var r0 int
	if rf, ok := ret.Get(0).(func() int); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(int)
	}

	return r0
}

type mockConstructorTestingTNewClient interface {
	mock.TestingT
	Cleanup(func())
}

// NewClient creates a new instance of Client. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewClient(t mockConstructorTestingTNewClient) *Client {
	mock := &Client{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
