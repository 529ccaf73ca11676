package auctionhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/auction"
)

var slots = []media.Slot{
	media.Image("itemImg"),
	media.Image("logoOne"),
	media.Image("logoSecond"),
	media.Image("logoThird"),
	media.Image("imageCover"),
	media.Image("bgImage"),
	media.Images("images", 5),
}

type Handler struct {
	svc      auction.IAuctionService
	uploader httpapi.Uploader
	render   httpapi.Renderer
}

func New(svc auction.IAuctionService, uploader httpapi.Uploader, presenter media.Presenter) *Handler {
	return &Handler{
		svc:      svc,
		uploader: uploader,
		render:   httpapi.Renderer{Presenter: presenter, Collection: models.Auctions},
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/auctions", h.list)
	r.POST("/auctions", h.create)
	r.GET("/auctions/running", h.running)
	r.GET("/auctions/:id", h.info)
	r.PUT("/auctions/:id", h.update)
	r.DELETE("/auctions/:id", h.delete)
	r.PATCH("/auctions/:id/toggle-running", h.toggleRunning)
	r.PATCH("/auctions/:id/toggle-display/:fieldName", h.toggleDisplay)
	r.GET("/projects/:id/auctions", h.listByProject)
	r.POST("/projects/:id/auctions", h.createInProject)
}

// @Summary		List auctions
// @Description	Filter with field=value or field[gte|gt|lte|lt]=value, search with keyword, order with sort, project with fields.
// @Tags			Auctions
// @Param			page	query		int		false	"Page number"	default(1)
// @Param			limit	query		int		false	"Page size"		default(50)
// @Param			sort	query		string	false	"Sort fields"	default(-createdAt)
// @Param			fields	query		string	false	"Projected fields"
// @Param			keyword	query		string	false	"Search over auctionName, itemName and notes"
// @Success		200		{object}	httpapi.ListResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/auctions [get]
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		List a project's auctions
// @Tags			Auctions
// @Param			id	path		string	true	"Project ID"
// @Success		200	{object}	httpapi.ListResponse
// @Failure		400	{object}	httpapi.ErrorResponse
// @Router			/projects/{id}/auctions [get]
func (h *Handler) listByProject(c *gin.Context) {
	page, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		Get the running auction
// @Tags			Auctions
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/auctions/running [get]
func (h *Handler) running(c *gin.Context) {
	doc, err := h.svc.Running(c.Request.Context())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Get an auction
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/auctions/{id} [get]
func (h *Handler) info(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Create an auction
// @Description	Accepts JSON or multipart/form-data with the image fields itemImg, logoOne, logoSecond, logoThird, imageCover, bgImage and up to 5 images.
// @Tags			Auctions
// @Accept			json,mpfd
// @Param			body	body		AuctionBody	true	"Auction"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/auctions [post]
func (h *Handler) create(c *gin.Context) {
	h.save(c, "")
}

// @Summary		Create an auction in a project
// @Tags			Auctions
// @Accept			json,mpfd
// @Param			id		path		string		true	"Project ID"
// @Param			body	body		AuctionBody	true	"Auction"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/projects/{id}/auctions [post]
func (h *Handler) createInProject(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *Handler) save(c *gin.Context, projectID string) {
	var body AuctionBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	doc := body.toDocument()
	if projectID != "" {
		doc["project"] = projectID
	}
	stored, err := httpapi.Upload(c, h.uploader, models.Auctions, slots, doc)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), doc)
	if err != nil {
		h.uploader.Discard(models.Auctions.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusCreated, created)
}

// @Summary		Update an auction
// @Tags			Auctions
// @Accept			json,mpfd
// @Param			id		path		string		true	"Auction ID"
// @Param			body	body		AuctionBody	true	"Fields to change"
// @Success		200		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		404		{object}	httpapi.ErrorResponse
// @Router			/auctions/{id} [put]
func (h *Handler) update(c *gin.Context) {
	var body AuctionBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	patch := body.toDocument()
	stored, err := httpapi.Upload(c, h.uploader, models.Auctions, slots, patch)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.uploader.Discard(models.Auctions.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, updated)
}

// @Summary		Delete an auction
// @Tags			Auctions
// @Param			id	path	string	true	"Auction ID"
// @Success		204
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/auctions/{id} [delete]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary		Start or stop an auction
// @Description	Starting an auction stops whichever auction was running.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Failure		500	{object}	httpapi.ErrorResponse
// @Router			/auctions/{id}/toggle-running [patch]
func (h *Handler) toggleRunning(c *gin.Context) {
	doc, err := h.svc.ToggleRunning(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	msg := "Auction stopped successfully"
	if doc.Bool(models.RunningFlag) {
		msg = "Auction started successfully"
	}
	h.render.Message(c, http.StatusOK, msg, doc)
}

// @Summary		Toggle a display flag
// @Tags			Auctions
// @Param			id			path		string	true	"Auction ID"
// @Param			fieldName	path		string	true	"Flag name"	example(displayLogoOne)
// @Success		200			{object}	httpapi.ItemResponse
// @Failure		400			{object}	httpapi.ErrorResponse
// @Failure		404			{object}	httpapi.ErrorResponse
// @Router			/auctions/{id}/toggle-display/{fieldName} [patch]
func (h *Handler) toggleDisplay(c *gin.Context) {
	doc, err := h.svc.ToggleDisplay(c.Request.Context(), c.Param("id"), c.Param("fieldName"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}
