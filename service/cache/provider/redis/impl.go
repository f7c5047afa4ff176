package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/service/cache/provider"
)

type impl struct {
	pool *redis.Pool
}

// NewRedis uses a redigo pool as the cache backend
func NewRedis(pool *redis.Pool) provider.Provider {
	return &impl{pool}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, error) {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return nil, err
	}
	defer conn.Close()

	val, err := redis.Bytes(conn.Do("GET", key))
	if err == redis.ErrNil {
		return nil, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis GET failed")
		return nil, err
	}
	return val, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	args := redis.Args{}.Add(key, value)
	if ms := ttl.Milliseconds(); ms > 0 {
		args = args.Add("PX", ms)
	}
	if _, err := conn.Do("SET", args...); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis SET failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", key); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis DEL failed")
		return err
	}
	return nil
}
