package mocks

import (
	mock "github.com/stretchr/testify/mock"
	ctx "github.com/x-xyz/nftgallery/base/ctx"

	domain "github.com/x-xyz/nftgallery/domain"
)

// ENS is an autogenerated mock type for the ENS type
type ENS struct {
	mock.Mock
}

// Resolve provides a mock function with given fields: _a0, name
func (_m *ENS) Resolve(_a0 ctx.Ctx, name string) (domain.Address, error) {
	ret := _m.Called(_a0, name)

	var r0 domain.Address
	if rf, ok := ret.Get(0).(func(ctx.Ctx, string) domain.Address); ok {
		r0 = rf(_a0, name)
	} else {
		r0 = ret.Get(0).(domain.Address)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(ctx.Ctx, string) error); ok {
		r1 = rf(_a0, name)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
