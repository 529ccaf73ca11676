package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/media"
)

// Bind decodes a JSON or multipart body into obj. An empty body binds
// nothing.
func Bind(c *gin.Context, obj any) error {
	err := c.ShouldBind(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return apperr.Validation("%s", strings.Join(msgs, ", "))
	}
	return bodyError(err)
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.TooLarge("Request body exceeds %d bytes", tooLarge.Limit)
	}
	return apperr.Validation("Invalid request body: %v", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	}
	return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
}

// Files returns the uploaded files of a multipart request, nil otherwise.
func Files(c *gin.Context) (map[string][]*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bodyError(err)
	}
	return form.File, nil
}

// Put sets doc[name] when v is non-nil. Strings are trimmed.
func Put[T any](doc docstore.Document, name string, v *T) {
	if v == nil {
		return
	}
	if s, ok := any(*v).(string); ok {
		doc[name] = strings.TrimSpace(s)
		return
	}
	doc[name] = *v
}

// Uploader stores request files; *media.Uploader implements it.
type Uploader interface {
	Save(ctx context.Context, prefix, folder string, slots []media.Slot, files map[string][]*multipart.FileHeader) (docstore.Document, error)
	Discard(folder string, patch docstore.Document)
}

// Upload stores the request's files for slots and merges their names into
// doc. The returned patch is what to Discard if the write fails.
func Upload(c *gin.Context, u Uploader, coll *docstore.Collection, slots []media.Slot, doc docstore.Document) (docstore.Document, error) {
	files, err := Files(c)
	if err != nil {
		return nil, err
	}
	patch, err := u.Save(c.Request.Context(), coll.Name, coll.AssetFolder, slots, files)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		doc[k] = v
	}
	return patch, nil
}
