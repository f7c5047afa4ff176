package ens

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gomodule/redigo/redis"
	goens "github.com/wealdtech/go-ens/v3"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/ethereum"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/base/validator"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/keys"
	"github.com/x-xyz/nftgallery/service/cache"
	compoundcache "github.com/x-xyz/nftgallery/service/cache/compoundCache"
	"github.com/x-xyz/nftgallery/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/nftgallery/service/cache/provider/redis"
)

type lookupFunc func(name string) (common.Address, error)

type impl struct {
	lookup lookupFunc
	cache  cache.Service
}

// New dials the rpc endpoint, at most maxCalls contract reads run at once. pool is
// optional and adds a shared cache layer.
func New(rpc string, maxCalls int, pool *redis.Pool) (ENS, error) {
	client, err := ethclient.Dial(rpc)
	if err != nil {
		return nil, err
	}
	backend := ethereum.NewThrottledClient(client, maxCalls)
	lookup := func(name string) (common.Address, error) {
		return goens.Resolve(backend, name)
	}
	return newImpl(lookup, pool), nil
}

func newImpl(lookup lookupFunc, pool *redis.Pool) *impl {
	layers := []cache.Service{
		cache.New(cache.ServiceConfig{
			Ttl:   30 * time.Second,
			Pfx:   keys.PfxEns,
			Cache: primitive.NewPrimitive("ens", 32),
		}),
	}
	if pool != nil {
		layers = append(layers, cache.New(cache.ServiceConfig{
			Ttl:   7 * 24 * time.Hour, // cache for 1 week
			Pfx:   keys.PfxEns,
			Cache: redisCache.NewRedis(pool),
		}))
	}
	return &impl{
		lookup: lookup,
		cache:  compoundcache.NewCompoundCache(layers),
	}
}

func (im *impl) Resolve(ctx ctx.Ctx, name string) (domain.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !validator.IsEnsName(name) {
		return "", ErrNotEnsName
	}

	res := domain.Address("")
	key := keys.RedisKey("resolve", name)
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		addr, err := im.lookup(name)
		if fmt.Sprint(err) == "unregistered name" {
			val := domain.EmptyAddress
			return &val, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":  err,
				"name": name,
			}).Error("failed to goens.Resolve")
			return nil, err
		}
		val := domain.Address(addr.String())
		return &val, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}

	return res, nil
}
