package repository

import (
	"bytes"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/x-xyz/nftgallery/base/ctx"
	hcdomain "github.com/x-xyz/nftgallery/domain/healthcheck"
	"github.com/x-xyz/nftgallery/domain/keys"
	"github.com/x-xyz/nftgallery/service/cache/provider"
)

var errMismatch = errors.New("read back value differs")

type impl struct {
	redisCache provider.Provider
	timeout    time.Duration
}

// New creates the repo, redisCache is nil when no shared cache is configured
func New(redisCache provider.Provider) hcdomain.HealthCheckRepo {
	return &impl{
		redisCache: redisCache,
		timeout:    2 * time.Second,
	}
}

func (im *impl) Enabled() bool {
	return im.redisCache != nil
}

// Ping writes a random value and reads it back
func (im *impl) Ping(c ctx.Ctx) error {
	if im.redisCache == nil {
		return nil
	}
	tc, cancel := ctx.WithTimeout(c, im.timeout)
	defer cancel()

	key := keys.RedisKey(keys.PfxHealthCheck, "probe")
	val := []byte(uuid.New().String())
	if err := im.redisCache.Set(tc, key, val, 30*time.Second); err != nil {
		c.WithField("err", err).Error("health probe set failed")
		return err
	}
	got, err := im.redisCache.Get(tc, key)
	if err != nil {
		c.WithField("err", err).Error("health probe get failed")
		return err
	}
	if !bytes.Equal(got, val) {
		return errMismatch
	}
	return nil
}
