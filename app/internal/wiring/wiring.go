// Package wiring builds the services shared by the api and the cli from viper
package wiring

import (
	"net/http"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/spf13/viper"

	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/database/redisclient"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/domain/gallery"
	"github.com/x-xyz/nftgallery/domain/keys"
	"github.com/x-xyz/nftgallery/domain/nft"
	"github.com/x-xyz/nftgallery/service/alchemy"
	"github.com/x-xyz/nftgallery/service/cache"
	compoundcache "github.com/x-xyz/nftgallery/service/cache/compoundCache"
	"github.com/x-xyz/nftgallery/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/nftgallery/service/cache/provider/redis"
	"github.com/x-xyz/nftgallery/service/ens"
	nft_usecase "github.com/x-xyz/nftgallery/stores/nft/usecase"
)

func init() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("alchemy.endpoint", alchemy.DefaultEndpoint)
	viper.SetDefault("alchemy.pageSize", alchemy.DefaultPageSize)
	viper.SetDefault("alchemy.timeout", 30*time.Second)
	viper.SetDefault("alchemy.retry.attempts", 1)
	viper.SetDefault("alchemy.retry.start", 500*time.Millisecond)
	viper.SetDefault("alchemy.retry.limit", 5*time.Second)
	viper.SetDefault("alchemy.pageCacheTtl", 0)
	viper.SetDefault("gallery.pageSize", gallery.DefaultPageSize)
	viper.SetDefault("gallery.recentSearches", gallery.DefaultRecentSearches)
	viper.SetDefault("gallery.sessionTtl", 24*time.Hour)
	viper.SetDefault("gallery.workers", 16)
	viper.SetDefault("http_cache.ttl", 30*time.Second)
	viper.SetDefault("redis_cache.poolMultiplier", 20)
	viper.SetDefault("ens.maxCalls", 8)
}

// LoadConfig reads the yaml file, env vars override it with . replaced by _
func LoadConfig(file string) error {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(file)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	log.Init(viper.GetBool(`debug`))
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
	return nil
}

// RedisPool is nil when redis_cache.uri is not configured
func RedisPool(c ctx.Ctx) *redis.Pool {
	uri := viper.GetString("redis_cache.uri")
	if uri == "" {
		c.Info("redis_cache.uri not set, run without shared cache")
		return nil
	}
	c.Info("init redis")
	return redisclient.MustConnectRedis(uri, viper.GetString("redis_cache.password"), redisclient.RedisParam{
		PoolMultiplier: viper.GetFloat64("redis_cache.poolMultiplier"),
		Retry:          true,
	})
}

func Alchemy() alchemy.Client {
	return alchemy.NewClient(&alchemy.ClientCfg{
		HttpClient: http.Client{},
		Timeout:    viper.GetDuration("alchemy.timeout"),
		Apikey:     viper.GetString("alchemy.apikey"),
		Endpoint:   viper.GetString("alchemy.endpoint"),
		PageSize:   viper.GetInt("alchemy.pageSize"),
	})
}

// Fetcher caches pages when alchemy.pageCacheTtl is set
func Fetcher(client alchemy.Client, pool *redis.Pool) nft.Fetcher {
	var pageCache cache.Service
	if ttl := viper.GetDuration("alchemy.pageCacheTtl"); ttl > 0 {
		layers := []cache.Service{
			cache.New(cache.ServiceConfig{
				Ttl:   ttl,
				Pfx:   keys.PfxOwnerPage,
				Cache: primitive.NewPrimitive(keys.PfxOwnerPage, 256),
			}),
		}
		if pool != nil {
			layers = append(layers, cache.New(cache.ServiceConfig{
				Ttl:   ttl,
				Pfx:   keys.PfxOwnerPage,
				Cache: redisCache.NewRedis(pool),
			}))
		}
		pageCache = compoundcache.NewCompoundCache(layers)
	}
	return nft_usecase.NewFetcherUseCase(&nft_usecase.FetcherCfg{
		Client:        client,
		PageCache:     pageCache,
		RetryAttempts: viper.GetInt("alchemy.retry.attempts"),
		RetryStart:    viper.GetDuration("alchemy.retry.start"),
		RetryLimit:    viper.GetDuration("alchemy.retry.limit"),
	})
}

// Ens is nil when ens.rpcUrl is not configured or can not be dialed
func Ens(c ctx.Ctx, pool *redis.Pool) ens.ENS {
	rpc := viper.GetString("ens.rpcUrl")
	if rpc == "" {
		c.Info("ens.rpcUrl not set, ens names are passed through")
		return nil
	}
	svc, err := ens.New(rpc, viper.GetInt("ens.maxCalls"), pool)
	if err != nil {
		c.WithField("err", err).Error("failed to ens.New, ens names are passed through")
		return nil
	}
	return svc
}
