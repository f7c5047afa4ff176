package compoundcache

import (
	"errors"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/service/cache"
)

type impl struct {
	layers []cache.Service
	loader cache.Loader
}

// NewCompoundCache reads layers in order, fastest first, and back fills the
// layers in front of the one that hit
func NewCompoundCache(layers []cache.Service) cache.Service {
	return &impl{
		layers: layers,
	}
}

func (im *impl) GetByFunc(c ctx.Ctx, key string, container interface{}, getter cache.OneTimeGetter) error {
	err := im.Get(c, key, container)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		c.WithField("err", err).WithField("key", key).Warn("Get failed, fallback to getter")
	}

	val, err := im.loader.Load(c, key, func() (interface{}, error) {
		val, err := getter()
		if err != nil {
			return nil, err
		}
		if err := im.Set(c, key, val); err != nil {
			c.WithField("err", err).WithField("key", key).Error("Set failed")
		}
		return val, nil
	})
	if err != nil {
		return err
	}

	cache.Fill(container, val)
	return nil
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	hit := -1
	for idx, lyr := range im.layers {
		err := lyr.Get(c, key, container)
		if errors.Is(err, cache.ErrNotFound) {
			continue
		} else if err != nil {
			return err
		}
		hit = idx
		break
	}

	if hit == -1 {
		return cache.ErrNotFound
	}

	for idx := 0; idx < hit; idx++ {
		if err := im.layers[idx].Set(c, key, container); err != nil {
			c.WithField("err", err).WithField("key", key).Warn("back fill failed")
		}
	}
	return nil
}

// Set writes every layer, the first failure stops it
func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Del clears every layer even if one of them fails
func (im *impl) Del(c ctx.Ctx, key string) error {
	var firstErr error
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
