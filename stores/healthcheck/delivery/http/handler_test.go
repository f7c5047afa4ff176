package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/x-xyz/nftgallery/base/ctx"
	hcdomain "github.com/x-xyz/nftgallery/domain/healthcheck"
)

type staticCheck hcdomain.Report

func (s staticCheck) Check(c ctx.Ctx) hcdomain.Report {
	return hcdomain.Report(s)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		report hcdomain.Report
		code   int
		body   string
	}{
		{
			name:   "healthy",
			report: hcdomain.Report{Healthy: true, Components: map[string]string{"cache": "disabled"}},
			code:   http.StatusOK,
			body:   `{"data":{"healthy":true,"components":{"cache":"disabled"}},"status":"success"}`,
		},
		{
			name:   "cache down",
			report: hcdomain.Report{Healthy: false, Components: map[string]string{"cache": "down"}},
			code:   http.StatusServiceUnavailable,
			body:   `{"data":{"healthy":false,"components":{"cache":"down"}},"status":"fail"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					c.Set("ctx", ctx.Background())
					return next(c)
				}
			})
			New(e, staticCheck(tt.report))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.code, rec.Code)
			require.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
