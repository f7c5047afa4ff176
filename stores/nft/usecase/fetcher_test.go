package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/domain/keys"
	"github.com/x-xyz/nftgallery/domain/nft"
	"github.com/x-xyz/nftgallery/service/alchemy"
	"github.com/x-xyz/nftgallery/service/alchemy/mocks"
	"github.com/x-xyz/nftgallery/service/cache"
	"github.com/x-xyz/nftgallery/service/cache/provider/primitive"
)

const owner = "0xabc0000000000000000000000000000000000001"

func rawAssets(n int, pfx string) []nft.RawAsset {
	res := make([]nft.RawAsset, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, nft.RawAsset{
			Name:    fmt.Sprintf("%s #%d", pfx, i),
			TokenId: fmt.Sprintf("%d", i),
			Contract: nft.RawContract{
				Address: "0x" + pfx,
				Name:    pfx,
			},
		})
	}
	return res
}

type fetcherSuite struct {
	suite.Suite

	client *mocks.Client
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(fetcherSuite))
}

func (s *fetcherSuite) SetupTest() {
	s.client = &mocks.Client{}
	s.client.On("PageSize").Return(100).Maybe()
}

func (s *fetcherSuite) newFetcher(attempts int) nft.Fetcher {
	return NewFetcherUseCase(&FetcherCfg{
		Client:        s.client,
		RetryAttempts: attempts,
		RetryStart:    time.Millisecond,
		RetryLimit:    5 * time.Millisecond,
	})
}

func (s *fetcherSuite) TestFetchAllStopsOnEmptyPage() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(100, "a"), PageKey: "p2",
	}, nil).Once()
	s.client.On("GetNftsForOwner", mock.Anything, owner, "p2").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(100, "b"), PageKey: "p3",
	}, nil).Once()
	s.client.On("GetNftsForOwner", mock.Anything, owner, "p3").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: []nft.RawAsset{}, PageKey: "p4",
	}, nil).Once()

	res := s.newFetcher(1).FetchAll(ctx.Background(), owner)
	s.Len(res, 200)
	s.Equal("a #0", res[0].Name)
	s.Equal("b #99", res[199].Name)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 3)
	s.client.AssertExpectations(s.T())
}

func (s *fetcherSuite) TestFetchAllNoCursor() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(3, "a"),
	}, nil).Once()

	res := s.newFetcher(1).FetchAll(ctx.Background(), owner)
	s.Len(res, 3)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 1)
}

func (s *fetcherSuite) TestFetchAllPartialFailure() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(50, "a"), PageKey: "p2",
	}, nil).Once()
	s.client.On("GetNftsForOwner", mock.Anything, owner, "p2").Return(nil, &alchemy.StatusCodeError{StatusCode: 500})

	res := s.newFetcher(1).FetchAll(ctx.Background(), owner)
	s.Len(res, 50)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 2)
}

func (s *fetcherSuite) TestFetchAllMalformedPage() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(nil, alchemy.ErrMalformedPage)

	res := s.newFetcher(3).FetchAll(ctx.Background(), owner)
	s.NotNil(res)
	s.Len(res, 0)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 1)
}

func (s *fetcherSuite) TestNoApiKey() {
	s.client.On("HasApiKey").Return(false)

	f := s.newFetcher(1)
	s.Len(f.FetchAll(ctx.Background(), owner), 0)
	s.Equal(nft.EmptyPage(), f.FetchPage(ctx.Background(), owner, ""))
	s.client.AssertNotCalled(s.T(), "GetNftsForOwner", mock.Anything, mock.Anything, mock.Anything)
}

func (s *fetcherSuite) TestEmptyOwner() {
	f := s.newFetcher(1)
	s.Len(f.FetchAll(ctx.Background(), ""), 0)
	s.Equal(nft.EmptyPage(), f.FetchPage(ctx.Background(), "", "p2"))
	s.client.AssertNotCalled(s.T(), "HasApiKey")
	s.client.AssertNotCalled(s.T(), "GetNftsForOwner", mock.Anything, mock.Anything, mock.Anything)
}

func (s *fetcherSuite) TestOwnerPassedAsGiven() {
	padded := " vitalik.eth "
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, padded, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(2, "a"),
	}, nil).Twice()

	f := s.newFetcher(1)
	s.Len(f.FetchAll(ctx.Background(), padded), 2)
	s.Len(f.FetchPage(ctx.Background(), padded, "").Nfts, 2)
	s.client.AssertExpectations(s.T())
}

func (s *fetcherSuite) TestRetryTemporary() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(nil, &alchemy.StatusCodeError{StatusCode: 503}).Once()
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(nil, errors.New("connection reset")).Once()
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(2, "a"),
	}, nil).Once()

	res := s.newFetcher(3).FetchAll(ctx.Background(), owner)
	s.Len(res, 2)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 3)
}

func (s *fetcherSuite) TestNoRetryOnClientError() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(nil, &alchemy.StatusCodeError{StatusCode: 400})

	s.Equal(nft.EmptyPage(), s.newFetcher(3).FetchPage(ctx.Background(), owner, ""))
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 1)
}

func (s *fetcherSuite) TestCanceled() {
	s.client.On("HasApiKey").Return(true)

	c, cancel := ctx.WithCancel(ctx.Background())
	cancel()
	s.Len(s.newFetcher(3).FetchAll(c, owner), 0)
	s.client.AssertNotCalled(s.T(), "GetNftsForOwner", mock.Anything, mock.Anything, mock.Anything)
}

func (s *fetcherSuite) TestCanceledDuringRetry() {
	s.client.On("HasApiKey").Return(true)
	c, cancel := ctx.WithCancel(ctx.Background())
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(func(ctx.Ctx, string, string) *alchemy.OwnedNftsResp {
		cancel()
		return nil
	}, context.Canceled)

	s.Len(s.newFetcher(5).FetchAll(c, owner), 0)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 1)
}

func (s *fetcherSuite) TestFetchPage() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "p2").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(4, "a"), PageKey: "p3",
	}, nil).Once()

	page := s.newFetcher(1).FetchPage(ctx.Background(), owner, "p2")
	s.Len(page.Nfts, 4)
	s.Equal("p3", page.NextCursor)
	// upstream omitted totalCount
	s.Equal(4, page.TotalCount)
}

func (s *fetcherSuite) TestFetchPageCached() {
	s.client.On("HasApiKey").Return(true)
	s.client.On("GetNftsForOwner", mock.Anything, owner, "").Return(&alchemy.OwnedNftsResp{
		OwnedNfts: rawAssets(4, "a"), PageKey: "p2", TotalCount: 9,
	}, nil).Once()

	f := NewFetcherUseCase(&FetcherCfg{
		Client: s.client,
		PageCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxOwnerPage,
			Cache: primitive.NewPrimitive("test", 1),
		}),
	})
	first := f.FetchPage(ctx.Background(), owner, "")
	second := f.FetchPage(ctx.Background(), owner, "")
	s.Equal(first, second)
	s.Equal(9, second.TotalCount)
	s.Equal("p2", second.NextCursor)
	s.client.AssertNumberOfCalls(s.T(), "GetNftsForOwner", 1)
}

func TestFetchAllEndToEnd(t *testing.T) {
	req := require.New(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ownedNfts":[{"name":"X","contract":{"name":"Coll","address":"0xC"},"tokenId":"1","image":{"cachedUrl":"http://img/1"}}]}`))
	}))
	defer server.Close()

	f := NewFetcherUseCase(&FetcherCfg{
		Client: alchemy.NewClient(&alchemy.ClientCfg{
			Apikey:   "key",
			Endpoint: server.URL,
		}),
	})
	res := f.FetchAll(ctx.Background(), "0xABC")
	req.Equal([]nft.Nft{{
		Name:            "X",
		Collection:      "Coll",
		Image:           "http://img/1",
		TokenId:         "1",
		ContractAddress: "0xC",
		Description:     "",
		Rarity:          nil,
	}}, res)
	req.Equal(int32(1), atomic.LoadInt32(&calls))
}

func TestFetchAllConcurrentOwners(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o := r.URL.Query().Get("owner")
		switch r.URL.Query().Get("pageKey") {
		case "":
			fmt.Fprintf(w, `{"ownedNfts":[{"name":"%s-1","tokenId":"1"}],"pageKey":"%s-next"}`, o, o)
		case o + "-next":
			fmt.Fprintf(w, `{"ownedNfts":[{"name":"%s-2","tokenId":"2"}]}`, o)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	f := NewFetcherUseCase(&FetcherCfg{
		Client: alchemy.NewClient(&alchemy.ClientCfg{
			Apikey:   "key",
			Endpoint: server.URL,
		}),
	})

	owners := []string{"0x1", "0x2", "0x3", "0x4"}
	results := make([][]nft.Nft, len(owners))
	wg := sync.WaitGroup{}
	for i, o := range owners {
		wg.Add(1)
		go func(i int, o string) {
			defer wg.Done()
			results[i] = f.FetchAll(ctx.Background(), o)
		}(i, o)
	}
	wg.Wait()

	for i, o := range owners {
		req.Len(results[i], 2)
		req.Equal(o+"-1", results[i][0].Name)
		req.Equal(o+"-2", results[i][1].Name)
	}
}
