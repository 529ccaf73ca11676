package media

import (
	"strings"

	"auctionshowcase/internal/database/docstore"
)

// Presenter rewrites stored asset names into absolute URLs. It runs at the
// response boundary and on live events; stored documents keep bare names.
type Presenter struct {
	baseURL string
}

func NewPresenter(baseURL string) Presenter {
	return Presenter{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p Presenter) URL(folder, name string) string {
	if name == "" || isAbsolute(name) {
		return name
	}
	return p.baseURL + "/" + folder + "/" + name
}

func (p Presenter) Present(c *docstore.Collection, doc docstore.Document) docstore.Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	for _, f := range c.AssetFields() {
		switch v := out[f.Name].(type) {
		case string:
			out[f.Name] = p.URL(c.AssetFolder, v)
		case []string:
			for i, name := range v {
				v[i] = p.URL(c.AssetFolder, name)
			}
		}
	}
	return out
}

func (p Presenter) PresentAll(c *docstore.Collection, docs []docstore.Document) []docstore.Document {
	out := make([]docstore.Document, len(docs))
	for i, d := range docs {
		out[i] = p.Present(c, d)
	}
	return out
}

func isAbsolute(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
