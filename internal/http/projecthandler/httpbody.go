package projecthandler

import (
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
)

// ProjectBody is accepted as JSON or as multipart form fields next to the
// uploaded files.
type ProjectBody struct {
	Title            *string `json:"title"            form:"title"            binding:"omitempty,max=100" example:"Al Nakheel plots"`
	Description      *string `json:"description"      form:"description"      example:"Residential plots north of the city"`
	City             *string `json:"city"             form:"city"             example:"Riyadh"`
	Location         *string `json:"location"         form:"location"         example:"https://maps.example/abc"`
	DateStart        *string `json:"dateStart"        form:"dateStart"        example:"2025-03-12"`
	AuctionStartTime *string `json:"auctionStartTime" form:"auctionStartTime" example:"16:30"`
	Status           *string `json:"status"           form:"status"           binding:"omitempty,oneof=upcoming ongoing completed"`
	IsPublished      *bool   `json:"isPublished"      form:"isPublished"`
	PlayButton       *bool   `json:"playButton"       form:"playButton"`
} // @name ProjectRequest

func (b ProjectBody) toDocument() (docstore.Document, error) {
	doc := docstore.Document{}
	httpapi.Put(doc, "title", b.Title)
	httpapi.Put(doc, "description", b.Description)
	httpapi.Put(doc, "city", b.City)
	httpapi.Put(doc, "location", b.Location)
	httpapi.Put(doc, "auctionStartTime", b.AuctionStartTime)
	httpapi.Put(doc, "status", b.Status)
	httpapi.Put(doc, "isPublished", b.IsPublished)
	httpapi.Put(doc, "playButton", b.PlayButton)
	if b.DateStart != nil {
		t, err := docstore.ParseTime("dateStart", *b.DateStart)
		if err != nil {
			return nil, err
		}
		doc["dateStart"] = t
	}
	return doc, nil
}

type StatusBody struct {
	Status string `json:"status" form:"status" binding:"required" example:"ongoing"`
} // @name ProjectStatusRequest
