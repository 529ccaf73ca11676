package projecthandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/project"
)

var slots = []media.Slot{
	media.Image("imageCover"),
	media.Images("images", 5),
	media.Document("file"),
}

type Handler struct {
	svc      project.IProjectService
	uploader httpapi.Uploader
	render   httpapi.Renderer
}

func New(svc project.IProjectService, uploader httpapi.Uploader, presenter media.Presenter) *Handler {
	return &Handler{
		svc:      svc,
		uploader: uploader,
		render:   httpapi.Renderer{Presenter: presenter, Collection: models.Projects},
	}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/projects", h.list)
	r.POST("/projects", h.create)
	r.GET("/projects/:id", h.info)
	r.PUT("/projects/:id", h.update)
	r.DELETE("/projects/:id", h.delete)
	r.PATCH("/projects/:id/status", h.setStatus)
	r.PATCH("/projects/:id/toggle-publish", h.togglePublish)
}

// @Summary		List projects
// @Description	Filter with field=value or field[gte|gt|lte|lt]=value, search with keyword, order with sort=-createdAt,title, project with fields=title,status.
// @Tags			Projects
// @Param			page	query		int		false	"Page number"	default(1)
// @Param			limit	query		int		false	"Page size"		default(50)
// @Param			sort	query		string	false	"Sort fields"	default(-createdAt)
// @Param			fields	query		string	false	"Projected fields"
// @Param			keyword	query		string	false	"Search over title, description, city and location"
// @Success		200		{object}	httpapi.ListResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/projects [get]
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		Get a project
// @Tags			Projects
// @Param			id	path		string	true	"Project ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/projects/{id} [get]
func (h *Handler) info(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Create a project
// @Description	Accepts JSON or multipart/form-data with imageCover, up to 5 images and a PDF file.
// @Tags			Projects
// @Accept			json,mpfd
// @Param			body	body		ProjectBody	true	"Project"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		413		{object}	httpapi.ErrorResponse
// @Router			/projects [post]
func (h *Handler) create(c *gin.Context) {
	var body ProjectBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	doc, err := body.toDocument()
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	stored, err := httpapi.Upload(c, h.uploader, models.Projects, slots, doc)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), doc)
	if err != nil {
		h.uploader.Discard(models.Projects.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusCreated, created)
}

// @Summary		Update a project
// @Description	Changing dateStart or auctionStartTime recomputes the start instant and status.
// @Tags			Projects
// @Accept			json,mpfd
// @Param			id		path		string		true	"Project ID"
// @Param			body	body		ProjectBody	true	"Fields to change"
// @Success		200		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		404		{object}	httpapi.ErrorResponse
// @Router			/projects/{id} [put]
func (h *Handler) update(c *gin.Context) {
	var body ProjectBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	patch, err := body.toDocument()
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	stored, err := httpapi.Upload(c, h.uploader, models.Projects, slots, patch)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.uploader.Discard(models.Projects.AssetFolder, stored)
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, updated)
}

// @Summary		Delete a project
// @Description	Deletes the project with its auctions and their prices.
// @Tags			Projects
// @Param			id	path	string	true	"Project ID"
// @Success		204
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/projects/{id} [delete]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary		Set a project's status
// @Description	Setting ongoing restarts the schedule at the current time.
// @Tags			Projects
// @Param			id		path		string		true	"Project ID"
// @Param			body	body		StatusBody	true	"New status"
// @Success		200		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		404		{object}	httpapi.ErrorResponse
// @Router			/projects/{id}/status [patch]
func (h *Handler) setStatus(c *gin.Context) {
	var body StatusBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	doc, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Publish or unpublish a project
// @Tags			Projects
// @Param			id	path		string	true	"Project ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/projects/{id}/toggle-publish [patch]
func (h *Handler) togglePublish(c *gin.Context) {
	doc, err := h.svc.TogglePublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}
