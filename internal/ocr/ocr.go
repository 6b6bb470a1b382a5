// Package ocr extracts text from uploaded invoice images and finds boleto barcodes in it.
package ocr

import (
	"context"
	"regexp"
	"strings"
)

// Extractor turns an image into text.
type Extractor interface {
	Extract(ctx context.Context, contentType string, content []byte) (string, error)
}

// NoopExtractor extracts nothing. Barcodes then come only from manual input.
type NoopExtractor struct{}

func (NoopExtractor) Extract(context.Context, string, []byte) (string, error) {
	return "", nil
}

// boletoPattern matches a linha digitável either dotted and spaced or as 47 bare digits.
var boletoPattern = regexp.MustCompile(`(\d{5}[.]\d{5}\s\d{5}[.]\d{6}\s\d{5}[.]\d{6}\s\d{1}\s\d{14})|(\d{47})`)

// DetectBarcode returns the first boleto barcode in text, or "".
func DetectBarcode(text string) string {
	return boletoPattern.FindString(text)
}

// Skip reports whether content of this type should bypass OCR.
func Skip(contentType string) bool {
	return !strings.HasPrefix(strings.ToLower(contentType), "image/")
}
