package pricehandler

import (
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/http/httpapi"
)

type PriceBody struct {
	Increase  *float64 `json:"increase"  form:"increase"  binding:"omitempty,gte=0" example:"5000"`
	SoldPrice *float64 `json:"soldPrice" form:"soldPrice" binding:"omitempty,gte=0" example:"1250000"`
	PaddleNum *string  `json:"paddleNum" form:"paddleNum" example:"17"`
	Total     *float64 `json:"total"     form:"total"     binding:"omitempty,gte=0"`
	AreaPrice *float64 `json:"areaPrice" form:"areaPrice" binding:"omitempty,gte=0"`
	Auction   *string  `json:"auction"   form:"auction"   example:"0b5c3e8a-6f0e-4d4b-9d43-6a0f3c1b2a10"`
} // @name PriceRequest

func (b PriceBody) toDocument() docstore.Document {
	doc := docstore.Document{}
	httpapi.Put(doc, "increase", b.Increase)
	httpapi.Put(doc, "soldPrice", b.SoldPrice)
	httpapi.Put(doc, "paddleNum", b.PaddleNum)
	httpapi.Put(doc, "total", b.Total)
	httpapi.Put(doc, "areaPrice", b.AreaPrice)
	httpapi.Put(doc, "auction", b.Auction)
	return doc
}
