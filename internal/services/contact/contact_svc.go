package contact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"auctionshowcase/internal/apperr"
	"auctionshowcase/internal/database/docstore"
	"auctionshowcase/internal/models"
	"auctionshowcase/internal/queryfeatures"
	"auctionshowcase/internal/services/crud"
)

const (
	exportSheet     = "Contacts"
	exportBatchSize = 500
)

var exportColumns = []struct{ field, title string }{
	{"name", "Name"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"message", "Message"},
	{docstore.FieldCreatedAt, "Received"},
}

type IContactService interface {
	List(ctx context.Context, params url.Values) (*crud.Page, error)
	Get(ctx context.Context, id string) (docstore.Document, error)
	Create(ctx context.Context, doc docstore.Document) (docstore.Document, error)
	Update(ctx context.Context, id string, patch docstore.Document) (docstore.Document, error)
	Delete(ctx context.Context, id string) error
	// Export writes every contact matching params' filter, search and sort
	// as an xlsx workbook. Paging keys are ignored.
	Export(ctx context.Context, params url.Values, w io.Writer) (int, error)
}

type contactService struct {
	*crud.Resource
	repo docstore.Repository
	loc  *time.Location
}

var _ IContactService = (*contactService)(nil)

func NewContactService(repo docstore.Repository, limits crud.Limits, loc *time.Location) IContactService {
	if loc == nil {
		loc = time.UTC
	}
	return &contactService{
		Resource: crud.New(repo, models.Contacts, limits),
		repo:     repo,
		loc:      loc,
	}
}

func (svc *contactService) Export(ctx context.Context, params url.Values, w io.Writer) (int, error) {
	q := url.Values{}
	for k, v := range params {
		if k == queryfeatures.KeyPage || k == queryfeatures.KeyLimit || k == queryfeatures.KeyFields {
			continue
		}
		q[k] = v
	}
	plan, err := svc.Plan(q)
	if err != nil {
		return 0, err
	}
	plan.Limit = exportBatchSize

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return 0, exportFailed(err)
	}

	header := make([]any, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col.title
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return 0, exportFailed(err)
	}

	rows := 0
	for plan.Page = 1; ; plan.Page++ {
		docs, err := svc.repo.Find(ctx, models.Contacts, plan)
		if err != nil {
			return 0, err
		}
		for _, doc := range docs {
			rows++
			cell, err := excelize.CoordinatesToCellName(1, rows+1)
			if err != nil {
				return 0, exportFailed(err)
			}
			row := svc.exportRow(doc)
			if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
				return 0, exportFailed(err)
			}
		}
		if len(docs) < plan.Limit {
			break
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "C", 24); err != nil {
		return 0, exportFailed(err)
	}
	if err := f.SetColWidth(exportSheet, "D", "D", 60); err != nil {
		return 0, exportFailed(err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, exportFailed(err)
	}
	zap.L().Info("contacts_exported", zap.Int("rows", rows))
	return rows, nil
}

func (svc *contactService) exportRow(doc docstore.Document) []any {
	row := make([]any, len(exportColumns))
	for i, col := range exportColumns {
		switch v := doc[col.field].(type) {
		case time.Time:
			row[i] = v.In(svc.loc).Format("2006-01-02 15:04")
		case nil:
			row[i] = ""
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

func exportFailed(err error) error {
	zap.L().Error("contacts_export_failed", zap.Error(err))
	return apperr.OperationFailed("Error exporting contacts", err)
}
