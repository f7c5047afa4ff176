package alchemy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	bCtx "github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/domain"
	"golang.org/x/xerrors"
)

func NewClient(cfg *ClientCfg) Client {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		client:   cfg.HttpClient,
		timeout:  timeout,
		apikey:   cfg.Apikey,
		endpoint: endpoint,
		pageSize: pageSize,
	}
}

type client struct {
	client   http.Client
	timeout  time.Duration
	apikey   string
	endpoint string
	pageSize int
}

func (c *client) HasApiKey() bool {
	return c.apikey != ""
}

func (c *client) PageSize() int {
	return c.pageSize
}

func (c *client) GetNftsForOwner(ctx bCtx.Ctx, owner string, pageKey string) (*OwnedNftsResp, error) {
	if !c.HasApiKey() {
		return nil, domain.ErrMissingApiKey
	}

	base, err := url.Parse(fmt.Sprintf("%s/%s/getNFTsForOwner", c.endpoint, c.apikey))
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("owner", owner)
	params.Add("withMetadata", "true")
	params.Add("pageSize", strconv.Itoa(c.pageSize))
	if pageKey != "" {
		params.Add("pageKey", pageKey)
	}
	base.RawQuery = params.Encode()

	data, err := c.get(ctx, base.String())
	if err != nil {
		return nil, err
	}

	resp := OwnedNftsResp{}
	if err := json.Unmarshal(data, &resp); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrInvalidJsonFormat)
	}
	if resp.OwnedNfts == nil {
		ctx.WithField("owner", owner).Warn("ownedNfts missing from response")
		return nil, ErrMalformedPage
	}

	return &resp, nil
}

func (c *client) get(ctx bCtx.Ctx, url string) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()
	// the api key is part of the path, keep it out of the logs
	logUrl := strings.Replace(url, c.apikey, "***", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": logUrl,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": logUrl,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		ctx.WithFields(log.Fields{
			"url":        logUrl,
			"statusCode": resp.StatusCode,
		}).Error("resp.StatusCode != 200")
		return nil, &StatusCodeError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": logUrl,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}
	return body, nil
}
