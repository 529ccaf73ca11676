package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

type part struct {
	field string
	data  []byte
}

func formFiles(t *testing.T, parts ...part) map[string][]*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i, p := range parts {
		fw, err := w.CreateFormFile(p.field, "upload-"+string(rune('a'+i)))
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File
}

func newTestUploader(t *testing.T) (*Uploader, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)
	u, err := NewUploader(store, 2)
	require.NoError(t, err)
	t.Cleanup(u.Release)
	return u, root
}

func TestUploaderStoresNormalizedImages(t *testing.T) {
	u, root := newTestUploader(t)
	slots := []Slot{Image("imageCover"), Images("images", 5), Image("bgImage"), Document("file")}

	files := formFiles(t,
		part{"imageCover", pngBytes(t)},
		part{"images", pngBytes(t)},
		part{"images", pngBytes(t)},
		part{"bgImage", gifBytes(t)},
		part{"file", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")},
	)

	patch, err := u.Save(context.Background(), "project", "projects", slots, files)
	require.NoError(t, err)

	cover := patch.String("imageCover")
	assert.True(t, strings.HasPrefix(cover, "project-"))
	assert.True(t, strings.HasSuffix(cover, "-imageCover.png"))
	assert.FileExists(t, filepath.Join(root, "projects", cover))

	images, ok := patch["images"].([]string)
	require.True(t, ok)
	require.Len(t, images, 2)
	assert.True(t, strings.HasSuffix(images[0], "-image-1.png"))
	assert.True(t, strings.HasSuffix(images[1], "-image-2.png"))

	bg := patch.String("bgImage")
	assert.True(t, strings.HasSuffix(bg, "-bgImage.gif"))
	stored, err := os.ReadFile(filepath.Join(root, "projects", bg))
	require.NoError(t, err)
	assert.Equal(t, gifBytes(t), stored, "gif is kept byte for byte")

	assert.True(t, strings.HasSuffix(patch.String("file"), "-file.pdf"))
}

func TestUploaderRejects(t *testing.T) {
	slots := []Slot{Image("imageCover"), Images("images", 2), Document("file")}

	tests := []struct {
		name  string
		parts []part
	}{
		{name: "text as image", parts: []part{{"imageCover", []byte("just some text")}}},
		{name: "image as document", parts: []part{{"file", pngBytes(t)}}},
		{name: "too many files", parts: []part{{"images", pngBytes(t)}, {"images", pngBytes(t)}, {"images", pngBytes(t)}}},
		{name: "unknown field", parts: []part{{"avatar", pngBytes(t)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, root := newTestUploader(t)
			_, err := u.Save(context.Background(), "auction", "auctions", slots, formFiles(t, tt.parts...))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))

			entries, _ := os.ReadDir(filepath.Join(root, "auctions"))
			assert.Empty(t, entries)
		})
	}
}

func TestUploaderDiscardsOnPartialFailure(t *testing.T) {
	u, root := newTestUploader(t)
	slots := []Slot{Image("logoOne"), Image("logoSecond")}

	_, err := u.Save(context.Background(), "auction", "auctions", slots,
		formFiles(t, part{"logoOne", pngBytes(t)}, part{"logoSecond", []byte("nope")}))
	require.Error(t, err)

	entries, _ := os.ReadDir(filepath.Join(root, "auctions"))
	assert.Empty(t, entries)
}

func TestUploaderDiscardRemovesSavedPatch(t *testing.T) {
	u, root := newTestUploader(t)
	slots := []Slot{Image("imageCover"), Images("images", 3)}

	patch, err := u.Save(context.Background(), "banner", "banners", slots,
		formFiles(t, part{"imageCover", pngBytes(t)}, part{"images", pngBytes(t)}, part{"images", pngBytes(t)}))
	require.NoError(t, err)
	entries, _ := os.ReadDir(filepath.Join(root, "banners"))
	require.Len(t, entries, 3)

	u.Discard("banners", patch)
	entries, _ = os.ReadDir(filepath.Join(root, "banners"))
	assert.Empty(t, entries)
}

func TestPresenter(t *testing.T) {
	c := docstore.NewCollection("banner", "banners",
		docstore.Text("imageCover", "image_cover").AsAsset(),
		docstore.StringList("images", "images").AsAsset(),
		docstore.Text("title", "title"),
	).StoredIn("banners")
	p := NewPresenter("http://localhost:8085/uploads/")

	stored := docstore.Document{
		"imageCover": "banner-1.png",
		"images":     []string{"a.png", "https://cdn.example/b.png"},
		"title":      "x.png",
	}
	out := p.Present(c, stored)

	assert.Equal(t, "http://localhost:8085/uploads/banners/banner-1.png", out["imageCover"])
	assert.Equal(t, []string{"http://localhost:8085/uploads/banners/a.png", "https://cdn.example/b.png"}, out["images"])
	assert.Equal(t, "x.png", out["title"])
	assert.Equal(t, "banner-1.png", stored["imageCover"], "stored document is untouched")
	assert.Equal(t, "a.png", stored["images"].([]string)[0])
	assert.Nil(t, p.Present(c, nil))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "banners", "../x.png", []byte("x"), "image/png"))
	assert.NoError(t, s.Delete(context.Background(), "banners", "missing.png"))
}
