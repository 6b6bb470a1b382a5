package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// multipartOverhead is the room left for form fields and part headers.
const multipartOverhead = 64 << 10

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request, u core.User) {
	invs, err := s.svc.Invoices.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]invoiceView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, newInvoiceView(inv, false))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := s.svc.Invoices.Get(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newInvoiceView(inv, true)).Write(w)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Invoices.Delete(r.Context(), u.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(messageView{Message: "invoice deleted"}).Write(w)
}

// handleUploadInvoice accepts a multipart form with an optional "file" part
// and an optional "barcode" field. At least one of them is required.
func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request, u core.User) {
	in, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := s.svc.Invoices.Upload(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Invoice uploaded",
		applog.FieldInvoiceID, inv.ID,
		"content_type", inv.ContentType,
		"barcode_found", inv.Barcode != "")
	NewJSONResponse().Status(http.StatusCreated).Body(newInvoiceView(inv, false)).Write(w)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (services.UploadInput, error) {
	limit := s.opts.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	var in services.UploadInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return in, FieldErrors{"body": "unreadable form"}
		}
		in.Barcode = sanitizeInput(r.PostForm.Get("barcode"))
		return in, nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, FieldErrors{"file": fmt.Sprintf("must be at most %d bytes", limit)}
		}
		return in, FieldErrors{"body": "malformed multipart form"}
	}
	in.Barcode = sanitizeInput(r.FormValue("barcode"))

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, FieldErrors{"file": "unreadable file part"}
	}
	defer file.Close()

	if header.Size > limit {
		return in, FieldErrors{"file": fmt.Sprintf("must be at most %d bytes", limit)}
	}
	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return in, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > limit {
		return in, FieldErrors{"file": fmt.Sprintf("must be at most %d bytes", limit)}
	}

	in.Filename = filepath.Base(header.Filename)
	in.Content = content
	in.ContentType = header.Header.Get("Content-Type")
	if in.ContentType == "" || in.ContentType == "application/octet-stream" {
		in.ContentType = http.DetectContentType(content)
	}
	return in, nil
}
