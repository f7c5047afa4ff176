package middleware

import (
	"bufio"
	"bytes"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/labstack/echo/v4"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/log"
	"github.com/x-xyz/nftgallery/service/cache"
	compoundcache "github.com/x-xyz/nftgallery/service/cache/compoundCache"
	"github.com/x-xyz/nftgallery/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/nftgallery/service/cache/provider/redis"
)

const (
	cacheMiddlewarePfx = "httpCacheMiddleware"
	// freecache rejects entries above 1/1024 of its size
	localCacheSizeMB = 128
	maxBodySize      = localCacheSizeMB * 1024
)

// Response is the cached response data structure.
type Response struct {
	// Value is the cached response value.
	Value []byte

	// Header is the cached response header.
	Header http.Header
}

type bodyDumpResponseWriter struct {
	statusCode int
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpResponseWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

func sortURLParams(URL *url.URL) {
	params := URL.Query()
	for _, param := range params {
		sort.Strings(param)
	}
	URL.RawQuery = params.Encode()
}

func generateKey(URL string) string {
	hash := fnv.New64a()
	hash.Write([]byte(URL))

	return strconv.FormatUint(hash.Sum64(), 36)
}

func noStore(h http.Header) bool {
	for _, v := range strings.Split(h.Get(echo.HeaderCacheControl), ",") {
		if strings.TrimSpace(v) == "no-store" {
			return true
		}
	}
	return false
}

// NewHttpCache builds the response cache, a local layer of at most 10 seconds in
// front of redis when pool is given
func NewHttpCache(ttl time.Duration, pool *redis.Pool) cache.Service {
	primitiveTTL := 10 * time.Second
	if ttl < primitiveTTL {
		primitiveTTL = ttl
	}
	layers := []cache.Service{
		cache.New(cache.ServiceConfig{
			Ttl:   primitiveTTL,
			Pfx:   cacheMiddlewarePfx,
			Cache: primitive.NewPrimitive(cacheMiddlewarePfx, localCacheSizeMB),
		}),
	}
	if pool != nil {
		layers = append(layers, cache.New(cache.ServiceConfig{
			Ttl:   ttl,
			Pfx:   cacheMiddlewarePfx,
			Cache: redisCache.NewRedis(pool),
		}))
	}
	return compoundcache.NewCompoundCache(layers)
}

// CacheHttp serves successful GET responses from cacheService keyed by the url.
// Responses marked Cache-Control: no-store are passed through uncached.
func CacheHttp(cacheService cache.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Get("ctx").(ctx.Ctx)

			sortURLParams(c.Request().URL)
			key := generateKey(c.Request().URL.String())

			response := Response{}
			err := cacheService.Get(ctx, key, &response)
			if err == nil {
				// cache hit
				for k, v := range response.Header {
					c.Response().Header().Set(k, strings.Join(v, ","))
				}
				c.Response().WriteHeader(http.StatusOK)
				c.Response().Write(response.Value)
				return nil
			} else if err != cache.ErrNotFound {
				ctx.WithFields(log.Fields{
					"err": err,
				}).Error("failed to cacheService.Get")
			}

			// cache miss
			resBody := new(bytes.Buffer)
			mw := io.MultiWriter(c.Response().Writer, resBody)
			writer := &bodyDumpResponseWriter{statusCode: http.StatusOK, Writer: mw, ResponseWriter: c.Response().Writer}
			c.Response().Writer = writer
			if err := next(c); err != nil {
				c.Error(err)
			}

			if writer.statusCode >= 300 || resBody.Len() > maxBodySize || noStore(writer.Header()) {
				return nil
			}
			response = Response{
				Value:  resBody.Bytes(),
				Header: writer.Header(),
			}
			if err := cacheService.Set(ctx, key, response); err != nil {
				ctx.WithFields(log.Fields{
					"err": err,
				}).Error("failed to cacheService.Set")
			}

			return nil
		}
	}
}
