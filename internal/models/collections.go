// Package models declares the collections the API exposes.
package models

import "auctionshowcase/internal/database/docstore"

// Upload folders, also the path segment of asset URLs.
const (
	FolderProjects = "projects"
	FolderAuctions = "auctions"
	FolderBanners  = "banners"
)

// DisplayPrefix is the required prefix of auction fields toggled by name.
const DisplayPrefix = "display"

// RunningFlag is the auction field at most one auction holds.
const RunningFlag = "isRunning"

var Projects = docstore.NewCollection("project", "projects",
	docstore.Text("title", "title"),
	docstore.Text("description", "description"),
	docstore.Text("imageCover", "image_cover").AsAsset(),
	docstore.StringList("images", "images").AsAsset(),
	docstore.Text("file", "file").AsAsset(),
	docstore.Text("city", "city"),
	docstore.Text("location", "location"),
	docstore.Time("dateStart", "date_start"),
	docstore.Text("auctionStartTime", "auction_start_time"),
	docstore.Time("startsAt", "starts_at"),
	docstore.Text("status", "status").WithDefault(StatusUpcoming),
	docstore.Bool("isPublished", "is_published").WithDefault(true),
	docstore.Bool("playButton", "play_button").WithDefault(false),
).Searchable("title", "description", "city", "location").StoredIn(FolderProjects)

// DisplayFlags are the auction presentation switches toggled by name.
var DisplayFlags = []string{
	"displayLogoOne",
	"displayLogoSecond",
	"displayLogoThird",
	"displayAreaPrice",
	"displayArea",
	"displayOpenPrice",
	"displaySeekingPercent",
	"displayIncrease",
	"displayTaxPercent",
	"displayNotes1",
	"displayNotes2",
	"displayVideoUrl",
	"displayBgImage",
}

var Auctions = docstore.NewCollection("auction", "auctions", auctionFields()...).
	Searchable("auctionName", "itemName", "notes1", "notes2").
	StoredIn(FolderAuctions)

func auctionFields() []docstore.Field {
	fields := []docstore.Field{
		docstore.Text("auctionName", "auction_name"),
		docstore.Ref("project", "project_id"),
		docstore.Text("itemImg", "item_img").AsAsset(),
		docstore.Text("logoOne", "logo_one").AsAsset(),
		docstore.Text("logoSecond", "logo_second").AsAsset(),
		docstore.Text("logoThird", "logo_third").AsAsset(),
		docstore.Text("imageCover", "image_cover").AsAsset(),
		docstore.StringList("images", "images").AsAsset(),
		docstore.Text("bgImage", "bg_image").AsAsset(),
		docstore.Text("videoUrl", "video_url"),
		docstore.Text("bgColor", "bg_color"),
		docstore.Text("textColor", "text_color"),
		docstore.Text("notesColor", "notes_color"),
		docstore.Text("textBgColor1", "text_bg_color1"),
		docstore.Text("textBgColor2", "text_bg_color2"),
		docstore.Text("textBgColor3", "text_bg_color3"),
		docstore.Text("openPrice", "open_price"),
		docstore.Text("seekingPercent", "seeking_percent"),
		docstore.Text("taxPercent", "tax_percent"),
		docstore.Text("areaPrice", "area_price"),
		docstore.Text("area", "area"),
		docstore.Text("notes1", "notes1"),
		docstore.Text("notes2", "notes2"),
		docstore.Text("minIncrease", "min_increase"),
		docstore.Text("itemName", "item_name"),
		docstore.Bool(RunningFlag, "is_running").AsReadOnly().WithDefault(false),
	}
	for _, name := range DisplayFlags {
		fields = append(fields, docstore.Bool(name, displayColumn(name)).AsToggle().WithDefault(true))
	}
	return fields
}

// displayColumn maps displayLogoOne to display_logo_one.
func displayColumn(name string) string {
	out := make([]byte, 0, len(name)+4)
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch >= 'A' && ch <= 'Z' {
			out = append(out, '_', ch+('a'-'A'))
			continue
		}
		if ch >= '0' && ch <= '9' && i > 0 && !(name[i-1] >= '0' && name[i-1] <= '9') {
			out = append(out, '_')
		}
		out = append(out, ch)
	}
	return string(out)
}

var Prices = docstore.NewCollection("price", "prices",
	docstore.Number("increase", "increase"),
	docstore.Number("soldPrice", "sold_price"),
	docstore.Text("paddleNum", "paddle_num"),
	docstore.Number("total", "total"),
	docstore.Number("areaPrice", "area_price"),
	docstore.Ref("auction", "auction_id"),
).Searchable("paddleNum")

var Banners = docstore.NewCollection("banner", "banners",
	docstore.Text("imageCover", "image_cover").AsAsset(),
).StoredIn(FolderBanners)

var Contacts = docstore.NewCollection("contact", "contacts",
	docstore.Text("name", "name"),
	docstore.Text("email", "email"),
	docstore.Text("message", "message"),
	docstore.Text("phone", "phone"),
).Searchable("name", "email", "phone", "message")
