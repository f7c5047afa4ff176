package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/x-xyz/nftgallery/app/internal/wiring"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/env"
	"github.com/x-xyz/nftgallery/base/goroutine"
	"github.com/x-xyz/nftgallery/base/log"
	bValidator "github.com/x-xyz/nftgallery/base/validator"
	mmiddleware "github.com/x-xyz/nftgallery/middleware"
	"github.com/x-xyz/nftgallery/service/cache/provider"
	redisCache "github.com/x-xyz/nftgallery/service/cache/provider/redis"
	ens_delivery "github.com/x-xyz/nftgallery/stores/ens/delivery/http"
	gallery_delivery "github.com/x-xyz/nftgallery/stores/gallery/delivery/http"
	gallery_usecase "github.com/x-xyz/nftgallery/stores/gallery/usecase"
	hc_delivery "github.com/x-xyz/nftgallery/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/nftgallery/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/nftgallery/stores/healthcheck/usecase"
)

func init() {
	if err := wiring.LoadConfig(env.ConfigFile()); err != nil {
		panic(err)
	}
}

func main() {
	defer log.Sync()

	// init echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(viper.GetString("server.allowOrigin"))
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	pool := wiring.RedisPool(context)
	var hcCache provider.Provider
	if pool != nil {
		hcCache = redisCache.NewRedis(pool)
		defer pool.Close()
	}

	alchemyClient := wiring.Alchemy()
	if !alchemyClient.HasApiKey() {
		context.Error("alchemy.apikey not set, every owner will look empty")
	}
	fetcher := wiring.Fetcher(alchemyClient, pool)

	galleryCfg := &gallery_usecase.ManagerCfg{
		Fetcher:        fetcher,
		PageSize:       viper.GetInt("gallery.pageSize"),
		RecentSearches: viper.GetInt("gallery.recentSearches"),
		SessionTtl:     viper.GetDuration("gallery.sessionTtl"),
		Workers:        viper.GetInt("gallery.workers"),
	}
	if ensService := wiring.Ens(context, pool); ensService != nil {
		galleryCfg.Resolver = ensService
		ens_delivery.New(e, ensService)
	}
	galleries := gallery_usecase.NewManager(galleryCfg)
	defer galleries.Close()

	hc := hc_usecase.New(&hc_usecase.HealthCheckCfg{
		Repo:       hc_repo.New(hcCache),
		Upstream:   alchemyClient,
		EnsEnabled: galleryCfg.Resolver != nil,
	})

	hc_delivery.New(e, hc)
	gallery_delivery.New(e, galleries, fetcher,
		mmiddleware.IsValidOwner("owner"),
		mmiddleware.CacheHttp(mmiddleware.NewHttpCache(viper.GetDuration("http_cache.ttl"), pool)),
	)

	goroutine.RecoverableGo(context, func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
