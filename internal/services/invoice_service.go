package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ocr"
	"fintrack/internal/ports"

	"github.com/google/uuid"
)

// UploadInput is one invoice upload: a file, a manually typed barcode, or both.
type UploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
	Barcode     string
}

type InvoiceService struct {
	store     ports.InvoiceStore
	extractor ocr.Extractor
	now       Clock
}

func NewInvoiceService(store ports.InvoiceStore, extractor ocr.Extractor) *InvoiceService {
	if extractor == nil {
		extractor = ocr.NoopExtractor{}
	}
	return &InvoiceService{store: store, extractor: extractor, now: time.Now}
}

// Upload stores an invoice. Images go through OCR and the extracted text is
// scanned for a boleto barcode unless one was typed in. PDFs are stored as is.
func (s *InvoiceService) Upload(ctx context.Context, userID int64, in UploadInput) (core.Invoice, error) {
	barcode := strings.TrimSpace(in.Barcode)
	inv := core.Invoice{UserID: userID, Barcode: barcode}

	switch {
	case len(in.Content) > 0:
		ct := strings.ToLower(in.ContentType)
		if ct != "application/pdf" && !strings.HasPrefix(ct, "image/") {
			return core.Invoice{}, ErrUnsupportedFile
		}
		inv.ContentType = ct
		inv.Content = in.Content
		inv.Filename = uuid.NewString() + strings.ToLower(filepath.Ext(in.Filename))

		if ocr.Skip(ct) {
			inv.ProcessedText = "PDF file, text not extracted"
			break
		}
		text, err := s.extractor.Extract(ctx, ct, in.Content)
		if err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "OCR failed", applog.FieldError, err)
			text = ""
		}
		inv.ProcessedText = text
		if barcode == "" {
			inv.Barcode = ocr.DetectBarcode(text)
		}
	case barcode != "":
		inv.ContentType = "text/plain"
		inv.Filename = fmt.Sprintf("barcode-%d.txt", s.now().UnixMilli())
		inv.ProcessedText = "Barcode entered manually: " + barcode
		inv.Content = []byte(inv.ProcessedText)
	default:
		return core.Invoice{}, ErrNoInvoiceContent
	}

	saved, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Invoice uploaded",
		applog.FieldUserID, userID,
		applog.FieldInvoiceID, saved.ID,
		"has_barcode", saved.Barcode != "")
	return saved, nil
}

func (s *InvoiceService) List(ctx context.Context, userID int64) ([]core.Invoice, error) {
	return s.store.ListInvoices(ctx, userID)
}

func (s *InvoiceService) Get(ctx context.Context, userID, id int64) (core.Invoice, error) {
	return s.store.GetInvoice(ctx, userID, id)
}

// Delete removes the invoice and detaches it from any transaction.
func (s *InvoiceService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.DeleteInvoice(ctx, userID, id)
}
