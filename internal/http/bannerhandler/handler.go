package bannerhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/banner"
)

var slots = []media.Slot{media.Image("imageCover")}

type Handler struct {
	svc      banner.IBannerService
	uploader httpapi.Uploader
	render   httpapi.Renderer
}

func New(svc banner.IBannerService, uploader httpapi.Uploader, presenter media.Presenter) *Handler {
	return &Handler{
		svc:      svc,
		uploader: uploader,
		render:   httpapi.Renderer{Presenter: presenter, Collection: models.Banners},
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/banners", h.list)
	r.POST("/banners", h.create)
	r.GET("/banners/:id", h.info)
	r.PUT("/banners/:id", h.update)
	r.DELETE("/banners/:id", h.delete)
}

// @Summary		List banners
// @Tags			Banners
// @Param			page	query		int		false	"Page number"	default(1)
// @Param			limit	query		int		false	"Page size"		default(50)
// @Success		200		{object}	httpapi.ListResponse
// @Router			/banners [get]
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		Get a banner
// @Tags			Banners
// @Param			id	path		string	true	"Banner ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/banners/{id} [get]
func (h *Handler) info(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Upload a banner
// @Tags			Banners
// @Accept			mpfd
// @Param			imageCover	formData	file	false	"Banner image"
// @Success		201			{object}	httpapi.ItemResponse
// @Failure		400			{object}	httpapi.ErrorResponse
// @Failure		413			{object}	httpapi.ErrorResponse
// @Router			/banners [post]
func (h *Handler) create(c *gin.Context) {
	doc := docstore.Document{}
	stored, err := httpapi.Upload(c, h.uploader, models.Banners, slots, doc)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), doc)
	if err != nil {
		h.uploader.Discard(models.Banners.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusCreated, created)
}

// @Summary		Replace a banner image
// @Tags			Banners
// @Accept			mpfd
// @Param			id			path		string	true	"Banner ID"
// @Param			imageCover	formData	file	false	"Banner image"
// @Success		200			{object}	httpapi.ItemResponse
// @Failure		400			{object}	httpapi.ErrorResponse
// @Failure		404			{object}	httpapi.ErrorResponse
// @Router			/banners/{id} [put]
func (h *Handler) update(c *gin.Context) {
	patch := docstore.Document{}
	stored, err := httpapi.Upload(c, h.uploader, models.Banners, slots, patch)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.uploader.Discard(models.Banners.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, updated)
}

// @Summary		Delete a banner
// @Tags			Banners
// @Param			id	path	string	true	"Banner ID"
// @Success		204
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/banners/{id} [delete]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
