package services

import "errors"

// Validation errors raised by services; the HTTP layer reports them as 400.
var (
	ErrMissingIdentity  = errors.New("username and email are required")
	ErrNoInvoiceContent = errors.New("no file or barcode provided")
	ErrUnsupportedFile  = errors.New("only images and PDF files are accepted")
)
