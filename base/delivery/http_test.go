package delivery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/x-xyz/nftgallery/domain"
	"golang.org/x/xerrors"
)

func TestMakeJsonResp(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		data       interface{}
		wantStatus int
		wantBody   string
	}{
		{"success", http.StatusOK, "ok", http.StatusOK, `{"data":"ok","status":"success"}`},
		{"not found", http.StatusInternalServerError, domain.ErrSessionNotFound, http.StatusNotFound, `{"data":"session not found","status":"fail"}`},
		{"wrapped bad input", http.StatusInternalServerError, xerrors.Errorf("sort: %w", domain.ErrBadParamInput), http.StatusBadRequest, `{"data":"sort: Given Param is not valid","status":"fail"}`},
		{"busy", http.StatusInternalServerError, xerrors.Errorf("queue full: %w", domain.ErrBusy), http.StatusServiceUnavailable, `{"data":"queue full: too many loads in flight","status":"fail"}`},
		{"other error", http.StatusInternalServerError, errors.New("boom"), http.StatusInternalServerError, `{"data":"boom","status":"fail"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			ectx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, MakeJsonResp(ectx, c.status, c.data))
			require.Equal(t, c.wantStatus, rec.Code)
			require.JSONEq(t, c.wantBody, rec.Body.String())
		})
	}
}
