package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/x-xyz/nftgallery/base/ctx"
	"github.com/x-xyz/nftgallery/base/delivery"
	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/gallery"
	"github.com/x-xyz/nftgallery/domain/nft"
)

type handler struct {
	gallery gallery.Usecase
	fetcher nft.Fetcher
}

// New registers the session routes, ownerMws wrap the one page passthrough
func New(e *echo.Echo, gallery gallery.Usecase, fetcher nft.Fetcher, ownerMws ...echo.MiddlewareFunc) {
	h := &handler{
		gallery: gallery,
		fetcher: fetcher,
	}

	g := e.Group("/sessions")
	g.POST("", h.create)
	g.GET("/:id", h.status, h.withSession)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/connect", h.connect, h.withSession)
	g.POST("/:id/search", h.search, h.withSession)
	g.GET("/:id/view", h.view, h.withSession)
	g.GET("/:id/nfts/:contract/:tokenId", h.detail, h.withSession)
	g.POST("/:id/favorites/:contract/:tokenId", h.toggleFavorite, h.withSession)
	g.GET("/:id/favorites", h.favorites, h.withSession)

	e.GET("/owners/:owner/nfts", h.ownerPage, ownerMws...)
}

// withSession puts the session of :id under "session"
func (h *handler) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Get("ctx").(ctx.Ctx)
		s, err := h.gallery.Get(ctx, c.Param("id"))
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusNotFound, err)
		}
		c.Set("session", s)
		return next(c)
	}
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := h.gallery.Create(ctx)
	return delivery.MakeJsonResp(c, http.StatusCreated, s.Status())
}

func (h *handler) status(c echo.Context) error {
	s := c.Get("session").(gallery.Session)
	return delivery.MakeJsonResp(c, http.StatusOK, s.Status())
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	if err := h.gallery.Delete(ctx, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) connect(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)

	type payload struct {
		Address domain.Address `json:"address" validate:"required,ethaddr"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}

	if err := s.ConnectAsync(ctx, p.Address); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, s.Status())
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)

	type payload struct {
		Input string `json:"input"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := s.SearchAsync(ctx, p.Input); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, s.Status())
}

func (h *handler) view(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)

	type params struct {
		Search     *string `query:"search"`
		Sort       *string `query:"sort"`
		Collection *string `query:"collection"`
		PageSize   *int    `query:"pageSize"`
		Page       *int    `query:"page"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	change := gallery.SelectionChange{
		SearchTerm:       p.Search,
		CollectionFilter: p.Collection,
		PageSize:         p.PageSize,
		PageIndex:        p.Page,
	}
	if p.Sort != nil {
		key, err := gallery.ToSortKey(*p.Sort)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
		}
		change.SortKey = &key
	}

	view, err := s.View(ctx, change)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, view)
}

type tokenParams struct {
	Contract domain.Address `param:"contract"`
	TokenId  domain.TokenId `param:"tokenId"`
}

func (h *handler) detail(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)

	p := tokenParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	item, err := s.Detail(ctx, p.Contract, p.TokenId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, item)
}

func (h *handler) toggleFavorite(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)

	p := tokenParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	favorite, err := s.ToggleFavorite(ctx, p.Contract, p.TokenId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]bool{"favorite": favorite})
}

func (h *handler) favorites(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	s := c.Get("session").(gallery.Session)
	return delivery.MakeJsonResp(c, http.StatusOK, s.Favorites(ctx))
}

func (h *handler) ownerPage(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Owner   string `param:"owner"`
		PageKey string `query:"pageKey"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	page := h.fetcher.FetchPage(ctx, p.Owner, p.PageKey)
	if len(page.Nfts) == 0 {
		// a failed fetch looks the same as an empty wallet
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	}
	return delivery.MakeJsonResp(c, http.StatusOK, page)
}
