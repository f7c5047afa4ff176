package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/x-xyz/nftgallery/base/backoff"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/base/metrics"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/keys"
	"github.com/x-xyz/nftgallery/domain/nft"
	"github.com/x-xyz/nftgallery/service/alchemy"
	"github.com/x-xyz/nftgallery/service/cache"
)

type FetcherCfg struct {
	Client alchemy.Client
	// PageCache is optional, pages are requested every time without it
	PageCache cache.Service

	RetryAttempts int
	RetryStart    time.Duration
	RetryLimit    time.Duration
}

type fetcherUseCase struct {
	client    alchemy.Client
	pageCache cache.Service
	metrics   metrics.Service

	retryAttempts int
	retryStart    time.Duration
	retryLimit    time.Duration
}

func NewFetcherUseCase(cfg *FetcherCfg) nft.Fetcher {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	start := cfg.RetryStart
	if start <= 0 {
		start = 500 * time.Millisecond
	}
	return &fetcherUseCase{
		client:        cfg.Client,
		pageCache:     cfg.PageCache,
		metrics:       metrics.New("nft"),
		retryAttempts: attempts,
		retryStart:    start,
		retryLimit:    cfg.RetryLimit,
	}
}

func (u *fetcherUseCase) FetchAll(c ctx.Ctx, owner string) []nft.Nft {
	res := []nft.Nft{}
	if owner == "" {
		c.Warn("empty owner")
		return res
	}
	if !u.client.HasApiKey() {
		c.WithField("owner", owner).Error("alchemy api key missing, configure alchemy.apikey")
		return res
	}

	cursor := ""
	pages := 0
	for c.Err() == nil {
		page, err := u.fetchPage(c, owner, cursor)
		if err != nil {
			c.WithFields(log.Fields{
				"err":    err,
				"owner":  owner,
				"pages":  pages,
				"loaded": len(res),
			}).Error("fetchPage failed")
			break
		}
		pages++
		res = append(res, page.Nfts...)
		c.WithFields(log.Fields{
			"owner": owner,
			"pages": pages,
			"count": len(res),
		}).Info("loaded nfts so far")

		if page.NextCursor == "" || len(page.Nfts) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	c.WithFields(log.Fields{
		"owner": owner,
		"pages": pages,
		"count": len(res),
	}).Info("fetched all nfts")
	u.metrics.BumpHistogram("fetch.all.count", float64(len(res)))
	return res
}

func (u *fetcherUseCase) FetchPage(c ctx.Ctx, owner string, cursor string) nft.Page {
	if owner == "" {
		c.Warn("empty owner")
		return nft.EmptyPage()
	}
	if !u.client.HasApiKey() {
		c.WithField("owner", owner).Error("alchemy api key missing, configure alchemy.apikey")
		return nft.EmptyPage()
	}

	page, err := u.fetchPage(c, owner, cursor)
	if err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"owner":  owner,
			"cursor": cursor,
		}).Error("fetchPage failed")
		return nft.EmptyPage()
	}
	return page
}

func (u *fetcherUseCase) fetchPage(c ctx.Ctx, owner string, cursor string) (nft.Page, error) {
	if u.pageCache == nil {
		return u.requestPage(c, owner, cursor)
	}

	page := nft.Page{}
	key := keys.RedisKey(strings.ToLower(owner), cursor, strconv.Itoa(u.client.PageSize()))
	err := u.pageCache.GetByFunc(c, key, &page, func() (interface{}, error) {
		p, err := u.requestPage(c, owner, cursor)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nft.Page{}, err
	}
	if page.Nfts == nil {
		page.Nfts = []nft.Nft{}
	}
	return page, nil
}

func (u *fetcherUseCase) requestPage(c ctx.Ctx, owner string, cursor string) (nft.Page, error) {
	defer u.metrics.BumpTime("fetch.page.latency").End()

	var resp *alchemy.OwnedNftsResp
	b := backoff.NewExponential(u.retryStart, u.retryLimit)
	err := backoff.Retry(c, b, u.retryAttempts, func() (bool, error) {
		r, err := u.client.GetNftsForOwner(c, owner, cursor)
		if err != nil {
			return isTemporary(c, err), err
		}
		resp = r
		return false, nil
	})
	if err != nil {
		u.metrics.BumpSum("fetch.page.err", 1)
		return nft.Page{}, err
	}

	total := resp.TotalCount
	if total == 0 {
		total = len(resp.OwnedNfts)
	}
	return nft.Page{
		Nfts:       nft.NormalizeAll(resp.OwnedNfts),
		NextCursor: resp.PageKey,
		TotalCount: total,
	}, nil
}

func isTemporary(c ctx.Ctx, err error) bool {
	if c.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *alchemy.StatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	switch {
	case errors.Is(err, domain.ErrMissingApiKey),
		errors.Is(err, domain.ErrInvalidJsonFormat),
		errors.Is(err, alchemy.ErrMalformedPage):
		return false
	}
	// transport failure
	return true
}
