package ens

import (
	"errors"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/domain"
)

var (
	ErrNotEnsName = errors.New("not an ens name")
)

type ENS interface {
	Resolve(ctx ctx.Ctx, name string) (domain.Address, error)
}
