package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/delivery"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/service/ens"
)

type handler struct {
	ens ens.ENS
}

// resolution echoes the normalized name next to its address
type resolution struct {
	Name    string         `json:"name"`
	Address domain.Address `json:"address"`
}

func New(e *echo.Echo, ens ens.ENS) {
	h := &handler{
		ens: ens,
	}

	g := e.Group("/ens")
	g.GET("/resolve/:name", h.resolve)
}

func (h *handler) resolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	address, err := h.ens.Resolve(ctx, name)
	if errors.Is(err, ens.ErrNotEnsName) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	} else if err != nil {
		ctx.WithField("err", err).WithField("name", name).Error("failed to ens.Resolve")
		return delivery.MakeJsonResp(c, http.StatusBadGateway, err)
	}
	if address.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusNotFound, domain.ErrNotFound)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, resolution{Name: name, Address: address})
}
