package contacthandler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auctionshowcase/internal/http/httpapi"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/services/contact"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    contact.IContactService
	render httpapi.Renderer
}

func New(svc contact.IContactService, presenter media.Presenter) *Handler {
	return &Handler{
		svc:    svc,
		render: httpapi.Renderer{Presenter: presenter, Collection: models.Contacts},
	}
}

// Register mounts the contact routes. createLimit guards the public form.
func (h *Handler) Register(r gin.IRoutes, createLimit gin.HandlerFunc) {
	r.GET("/contacts", h.list)
	r.POST("/contacts", createLimit, h.create)
	r.GET("/contacts/export", h.export)
	r.GET("/contacts/:id", h.info)
	r.PUT("/contacts/:id", h.update)
	r.DELETE("/contacts/:id", h.delete)
}

// @Summary		List contact messages
// @Tags			Contacts
// @Param			page	query		int		false	"Page number"	default(1)
// @Param			limit	query		int		false	"Page size"		default(50)
// @Param			sort	query		string	false	"Sort fields"	default(-createdAt)
// @Param			keyword	query		string	false	"Search over name, email, phone and message"
// @Success		200		{object}	httpapi.ListResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/contacts [get]
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.List(c, page)
}

// @Summary		Export contact messages
// @Description	Same filters as the list, without paging. Returns an xlsx workbook.
// @Tags			Contacts
// @Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param			keyword	query	string	false	"Search over name, email, phone and message"
// @Success		200		{file}	file
// @Failure		400		{object}	httpapi.ErrorResponse
// @Router			/contacts/export [get]
func (h *Handler) export(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.svc.Export(c.Request.Context(), c.Request.URL.Query(), &buf); err != nil {
		httpapi.Fail(c, err)
		return
	}
	name := fmt.Sprintf("contacts-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// @Summary		Get a contact message
// @Tags			Contacts
// @Param			id	path		string	true	"Contact ID"
// @Success		200	{object}	httpapi.ItemResponse
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/contacts/{id} [get]
func (h *Handler) info(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusOK, doc)
}

// @Summary		Send a contact message
// @Tags			Contacts
// @Param			body	body		ContactBody	true	"Message"
// @Success		201		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		429		{object}	httpapi.ErrorResponse
// @Router			/contacts [post]
func (h *Handler) create(c *gin.Context) {
	var body ContactBody
	if err := httpapi.Bind(c, &body); err != nil {
		httpapi.Fail(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), body.toDocument())
	if err != nil {
		httpapi.Fail(c, err)
		return
	}
	h.render.Item(c, http.StatusCreated, created)
}

// @Summary		Update a contact message
// @Tags			Contacts
// @Param			id		path		string		true	"Contact ID"
// @Param			body	body		ContactBody	true	"Fields to change"
// @Success		200		{object}	httpapi.ItemResponse
// @Failure		400		{object}	httpapi.ErrorResponse
// @Failure		404		{object}	httpapi.ErrorResponse
// @Router			/contacts/{id} [put]
func (h *Handler) update(c *gin.Context) {
	var body ContactBody
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

// @Summary		Delete a contact message
// @Tags			Contacts
// @Param			id	path	string	true	"Contact ID"
// @Success		204
// @Failure		404	{object}	httpapi.ErrorResponse
// @Router			/contacts/{id} [delete]
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
