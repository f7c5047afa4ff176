package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/x-xyz/nftgallery/base/ctx"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	e     *echo.Echo
	calls   int
	code    int
	noStore bool
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) SetupTest() {
	s.calls = 0
	s.code = http.StatusOK
	s.noStore = false
	s.e = echo.New()
	mw := CacheHttp(NewHttpCache(30*time.Second, nil))
	s.e.GET("/owners/:owner/nfts", func(c echo.Context) error {
		s.calls++
		if s.noStore {
			c.Response().Header().Set(echo.HeaderCacheControl, "private, no-store")
		}
		return c.String(s.code, "Hello, "+c.Param("owner"))
	}, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("ctx", ctx.Background())
			return next(c)
		}
	}, mw)
}

func (s *cacheMiddlewareSuite) get(url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheHit() {
	first := s.get("/owners/0x1/nfts?b=2&a=1")
	s.Equal(http.StatusOK, first.Code)
	s.Equal("Hello, 0x1", first.Body.String())

	// same query in another order
	second := s.get("/owners/0x1/nfts?a=1&b=2")
	s.Equal(http.StatusOK, second.Code)
	s.Equal("Hello, 0x1", second.Body.String())
	s.Equal(first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	s.Equal(1, s.calls)

	s.Equal("Hello, 0x2", s.get("/owners/0x2/nfts").Body.String())
	s.Equal(2, s.calls)
}

func (s *cacheMiddlewareSuite) TestErrorsNotCached() {
	s.code = http.StatusBadGateway
	s.Equal(http.StatusBadGateway, s.get("/owners/0x1/nfts").Code)

	s.code = http.StatusOK
	s.Equal(http.StatusOK, s.get("/owners/0x1/nfts").Code)
	s.Equal(2, s.calls)
}

func (s *cacheMiddlewareSuite) TestNoStoreNotCached() {
	s.noStore = true
	s.Equal(http.StatusOK, s.get("/owners/0x1/nfts").Code)

	s.noStore = false
	s.Equal("Hello, 0x1", s.get("/owners/0x1/nfts").Body.String())
	s.Equal(2, s.calls)

	s.get("/owners/0x1/nfts")
	s.Equal(2, s.calls)
}
