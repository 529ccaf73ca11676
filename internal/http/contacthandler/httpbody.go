package contacthandler

import (
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
)

type ContactBody struct {
	Name    *string `json:"name"    form:"name"    binding:"omitempty,max=100"  example:"Sara Al-Harbi"`
	Email   *string `json:"email"   form:"email"   binding:"omitempty,email"    example:"sara@example.com"`
	Message *string `json:"message" form:"message" binding:"omitempty,max=2000" example:"I would like details on plot 7"`
	Phone   *string `json:"phone"   form:"phone"   binding:"omitempty,max=30"   example:"+966500000000"`
} // @name ContactRequest

func (b ContactBody) toDocument() docstore.Document {
	doc := docstore.Document{}
	httpapi.Put(doc, "name", b.Name)
	httpapi.Put(doc, "email", b.Email)
	httpapi.Put(doc, "message", b.Message)
	httpapi.Put(doc, "phone", b.Phone)
	return doc
}
