package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/metrics"
)

type Kind int

const (
	KindImage Kind = iota
	KindDocument
)

// Slot is one multipart field an endpoint accepts.
type Slot struct {
	Field string
	Kind  Kind
	// Max > 1 makes the field a list.
	Max int
}

func Image(field string) Slot           { return Slot{Field: field, Kind: KindImage, Max: 1} }
func Images(field string, max int) Slot { return Slot{Field: field, Kind: KindImage, Max: max} }
func Document(field string) Slot        { return Slot{Field: field, Kind: KindDocument, Max: 1} }

// Uploader validates, normalizes and stores multipart files. Encoding runs
// on a bounded worker pool.
type Uploader struct {
	storage Storage
	pool    *ants.Pool
	now     func() time.Time
}

func NewUploader(storage Storage, workers int) (*Uploader, error) {
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		zap.L().Error("upload_worker_panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("upload pool: %w", err)
	}
	return &Uploader{storage: storage, pool: pool, now: time.Now}, nil
}

func (u *Uploader) Release() { u.pool.Release() }

type job struct {
	slot  Slot
	index int
	fh    *multipart.FileHeader
	name  string
	err   error
}

// Save stores the files of every slot present in files and returns the
// document patch naming them. Nothing is stored when any file is rejected.
func (u *Uploader) Save(ctx context.Context, prefix, folder string, slots []Slot, files map[string][]*multipart.FileHeader) (docstore.Document, error) {
	var jobs []*job
	for _, s := range slots {
		fhs := files[s.Field]
		if len(fhs) > s.Max {
			return nil, apperr.Validation("%s accepts at most %d file(s)", s.Field, s.Max)
		}
		for i, fh := range fhs {
			jobs = append(jobs, &job{slot: s, index: i, fh: fh})
		}
	}
	for field := range files {
		if !hasSlot(slots, field) {
			return nil, apperr.Validation("Unexpected file field %q", field)
		}
	}
	if len(jobs) == 0 {
		return docstore.Document{}, nil
	}

	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		err := u.pool.Submit(func() {
			defer wg.Done()
			j.name, j.err = u.store(ctx, prefix, folder, j)
		})
		if err != nil {
			wg.Done()
			j.err = apperr.OperationFailed("Error processing upload", err)
		}
	}
	wg.Wait()

	patch := docstore.Document{}
	var firstErr error
	for _, j := range jobs {
		if j.err != nil {
			if firstErr == nil {
				firstErr = j.err
			}
			continue
		}
		if j.slot.Max > 1 {
			list, _ := patch[j.slot.Field].([]string)
			if list == nil {
				list = make([]string, len(files[j.slot.Field]))
			}
			list[j.index] = j.name
			patch[j.slot.Field] = list
		} else {
			patch[j.slot.Field] = j.name
		}
	}
	if firstErr != nil {
		u.discard(folder, jobs)
		return nil, firstErr
	}
	return patch, nil
}

func (u *Uploader) store(ctx context.Context, prefix, folder string, j *job) (string, error) {
	data, err := readAll(j.fh)
	if err != nil {
		return "", apperr.OperationFailed("Error reading upload", err)
	}

	var (
		out         []byte
		ext         string
		contentType string
	)
	mt := mimetype.Detect(data)
	switch j.slot.Kind {
	case KindDocument:
		if !mt.Is("application/pdf") {
			metrics.UploadsTotal.WithLabelValues(j.slot.Field, "rejected").Inc()
			return "", apperr.Validation("%s must be a PDF file", j.slot.Field)
		}
		out, ext, contentType = data, "pdf", "application/pdf"
	default:
		if !strings.HasPrefix(mt.String(), "image/") {
			metrics.UploadsTotal.WithLabelValues(j.slot.Field, "rejected").Inc()
			return "", apperr.Validation("Not an image! Please upload only images.")
		}
		out, ext, err = normalizeImage(data, mt)
		if err != nil {
			metrics.UploadsTotal.WithLabelValues(j.slot.Field, "rejected").Inc()
			return "", err
		}
		contentType = "image/" + ext
	}

	label := j.slot.Field
	if j.slot.Max > 1 {
		label = fmt.Sprintf("image-%d", j.index+1)
	}
	name := fmt.Sprintf("%s-%s-%d-%s.%s", prefix, uuid.NewString(), u.now().UnixMilli(), label, ext)

	if err := ctx.Err(); err != nil {
		return "", apperr.OperationFailed("Error processing upload", err)
	}
	if err := u.storage.Put(ctx, folder, name, out, contentType); err != nil {
		zap.L().Error("upload_store_failed", zap.String("folder", folder), zap.String("name", name), zap.Error(err))
		return "", apperr.OperationFailed("Error storing upload", err)
	}
	metrics.UploadsTotal.WithLabelValues(j.slot.Field, "stored").Inc()
	return name, nil
}

// Discard removes the files named by a patch returned from Save. Handlers
// call it when the document write that should have referenced them fails.
func (u *Uploader) Discard(folder string, patch docstore.Document) {
	var jobs []*job
	for _, v := range patch {
		switch v := v.(type) {
		case string:
			jobs = append(jobs, &job{name: v})
		case []string:
			for _, name := range v {
				jobs = append(jobs, &job{name: name})
			}
		}
	}
	u.discard(folder, jobs)
}

func (u *Uploader) discard(folder string, jobs []*job) {
	for _, j := range jobs {
		if j.err != nil || j.name == "" {
			continue
		}
		if err := u.storage.Delete(context.Background(), folder, j.name); err != nil {
			zap.L().Warn("upload_discard_failed", zap.String("name", j.name), zap.Error(err))
		}
	}
}

// normalizeImage re-encodes data in its own format. GIFs are kept as they
// are; formats without an encoder become PNG.
func normalizeImage(data []byte, mt *mimetype.MIME) ([]byte, string, error) {
	if mt.Is("image/gif") {
		return data, "gif", nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", apperr.Validation("Not a valid image! Please upload only images.")
	}
	format, err := imaging.FormatFromExtension(mt.Extension())
	if err != nil {
		format = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, "", apperr.OperationFailed("Error processing image", err)
	}
	return buf.Bytes(), strings.ToLower(format.String()), nil
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func hasSlot(slots []Slot, field string) bool {
	for _, s := range slots {
		if s.Field == field {
			return true
		}
	}
	return false
}
