package pricehandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/price"
)

type Handler struct {
	svc       price.IPriceService
	presenter media.Presenter
	render    httpapi.Renderer
}

func New(svc price.IPriceService, presenter media.Presenter) *Handler {
	return &Handler{
		svc:       svc,
		presenter: presenter,
		render:    httpapi.Renderer{Presenter: presenter, Collection: models.Prices},
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/prices", h.list)
	r.POST("/prices", h.create)
	r.GET("/prices/:id", h.info)
	r.PUT("/prices/:id", h.update)
	r.DELETE("/prices/:id", h.delete)
	r.GET("/auctions/:id/prices", h.listByAuction)
	r.POST("/auctions/:id/prices", h.createInAuction)
}

// @Summary		List prices
// @Description	Numeric fields support range filters, e.g. soldPrice[gte]=100000.
// @Tags			Prices
// @Param			page	query		int		false	"Page number"	default(1)
// @Param			limit	query		int		false	"Page size"		default(50)
// @Param			sort	query		string	false	"Sort fields"	default(-createdAt)
// @Param			keyword	query		string	false	"Search over paddleNum"
// @Success		200		{object}	httpapi.ListResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/prices [get]
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		List an auction's prices
// @Tags			Prices
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	httpapi.ListResponse
// @Failure		400	{object}	httpapi.ErrorResponse
// @Router			/auctions/{id}/prices [get]
func (h *Handler) listByAuction(c *gin.Context) {
	page, err := h.svc.ListByAuction(c.Request.Context(), c.Param("id"), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		Get a price
// @Description	The parent auction is embedded under auction.
// @Tags			Prices
// @Param			id	path		string	true	"Price ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/prices/{id} [get]
func (h *Handler) info(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	if auction, ok := doc["auction"].(docstore.Document); ok {
		doc["auction"] = h.presenter.Present(models.Auctions, auction)
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Record a price
// @Tags			Prices
// @Param			body	body		PriceBody	true	"Price"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/prices [post]
func (h *Handler) create(c *gin.Context) {
	h.save(c, "")
}

// @Summary		Record a price for an auction
// @Tags			Prices
// @Param			id		path		string		true	"Auction ID"
// @Param			body	body		PriceBody	true	"Price"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/auctions/{id}/prices [post]
func (h *Handler) createInAuction(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *Handler) save(c *gin.Context, auctionID string) {
	var body PriceBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	doc := body.toDocument()
	if auctionID != "" {
		doc["auction"] = auctionID
	}
	created, err := h.svc.Create(c.Request.Context(), doc)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusCreated, created)
}

// @Summary		Update a price
// @Tags			Prices
// @Param			id		path		string		true	"Price ID"
// @Param			body	body		PriceBody	true	"Fields to change"
// @Success		200		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		404		{object}	httpapi.ErrorResponse
// @Router			/prices/{id} [put]
func (h *Handler) update(c *gin.Context) {
	var body PriceBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), body.toDocument())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, updated)
}

// @Summary		Delete a price
// @Tags			Prices
// @Param			id	path	string	true	"Price ID"
// @Success		204
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/prices/{id} [delete]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
