// Package httpapi holds the response envelopes and request helpers shared by
// the resource handlers.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/media"
	"auctionshowcase/internal/queryfeatures"
	"auctionshowcase/internal/services/crud"
)

type ErrorResponse struct {
	Error string `json:"error" example:"No auction with id: 4f6c..."`
	Kind  string `json:"kind,omitempty" example:"not_found"`
} // @name ErrorResponse

type ListResponse struct {
	Success          bool                     `json:"success"`
	Results          int                      `json:"results"`
	PaginationResult queryfeatures.Pagination `json:"paginationResult"`
	Data             []docstore.Document      `json:"data"`
} // @name ListResponse

type ItemResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    docstore.Document `json:"data"`
} // @name ItemResponse

// Fail renders err. Server-side failures are logged with their cause; the
// client only sees the public message.
func Fail(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request_failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: apperr.PublicMessage(err),
		Kind:  string(apperr.KindOf(err)),
	})
}

// Renderer writes documents of one collection with asset names turned into
// URLs.
type Renderer struct {
	Presenter  media.Presenter
	Collection *docstore.Collection
}

func (r Renderer) List(c *gin.Context, page *crud.Page) {
	docs := r.Presenter.PresentAll(r.Collection, page.Docs)
	c.JSON(http.StatusOK, ListResponse{
		Success:          true,
		Results:          len(docs),
		PaginationResult: page.Pagination,
		Data:             docs,
	})
}

func (r Renderer) Item(c *gin.Context, status int, doc docstore.Document) {
	r.Message(c, status, "", doc)
}

func (r Renderer) Message(c *gin.Context, status int, message string, doc docstore.Document) {
	c.JSON(status, ItemResponse{Success: true, Message: message, Data: r.Presenter.Present(r.Collection, doc)})
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	Fail(c, apperr.RouteNotFound(c.Request.URL.Path))
}
