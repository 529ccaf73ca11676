package auctionhandler

import (
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
)

// AuctionBody is accepted as JSON or as multipart form fields next to the
// uploaded images. Prices and percentages are display strings.
type AuctionBody struct {
	AuctionName    *string `json:"auctionName"    form:"auctionName"    binding:"omitempty,max=200" example:"Plot 7 evening auction"`
	Project        *string `json:"project"        form:"project"        example:"0b5c3e8a-6f0e-4d4b-9d43-6a0f3c1b2a10"`
	VideoURL       *string `json:"videoUrl"       form:"videoUrl"`
	BgColor        *string `json:"bgColor"        form:"bgColor"        example:"#0b1f3a"`
	TextColor      *string `json:"textColor"      form:"textColor"`
	NotesColor     *string `json:"notesColor"     form:"notesColor"`
	TextBgColor1   *string `json:"textBgColor1"   form:"textBgColor1"`
	TextBgColor2   *string `json:"textBgColor2"   form:"textBgColor2"`
	TextBgColor3   *string `json:"textBgColor3"   form:"textBgColor3"`
	OpenPrice      *string `json:"openPrice"      form:"openPrice"      example:"1,200 SAR/m²"`
	SeekingPercent *string `json:"seekingPercent" form:"seekingPercent"`
	TaxPercent     *string `json:"taxPercent"     form:"taxPercent"`
	AreaPrice      *string `json:"areaPrice"      form:"areaPrice"`
	Area           *string `json:"area"           form:"area"`
	Notes1         *string `json:"notes1"         form:"notes1"`
	Notes2         *string `json:"notes2"         form:"notes2"`
	MinIncrease    *string `json:"minIncrease"    form:"minIncrease"`
	ItemName       *string `json:"itemName"       form:"itemName"`
} // @name AuctionRequest

func (b AuctionBody) toDocument() docstore.Document {
	doc := docstore.Document{}
	httpapi.Put(doc, "auctionName", b.AuctionName)
	httpapi.Put(doc, "project", b.Project)
	httpapi.Put(doc, "videoUrl", b.VideoURL)
	httpapi.Put(doc, "bgColor", b.BgColor)
	httpapi.Put(doc, "textColor", b.TextColor)
	httpapi.Put(doc, "notesColor", b.NotesColor)
	httpapi.Put(doc, "textBgColor1", b.TextBgColor1)
	httpapi.Put(doc, "textBgColor2", b.TextBgColor2)
	httpapi.Put(doc, "textBgColor3", b.TextBgColor3)
	httpapi.Put(doc, "openPrice", b.OpenPrice)
	httpapi.Put(doc, "seekingPercent", b.SeekingPercent)
	httpapi.Put(doc, "taxPercent", b.TaxPercent)
	httpapi.Put(doc, "areaPrice", b.AreaPrice)
	httpapi.Put(doc, "area", b.Area)
	httpapi.Put(doc, "notes1", b.Notes1)
	httpapi.Put(doc, "notes2", b.Notes2)
	httpapi.Put(doc, "minIncrease", b.MinIncrease)
	httpapi.Put(doc, "itemName", b.ItemName)
	return doc
}
