package services

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageReader splits a document into the plain text of each of its pages.
type PageReader interface {
	ReadPages(data []byte) ([]string, error)
}

// PDFPageReader validates documents with pdfcpu and decodes page text with ledongthuc/pdf.
type PDFPageReader struct{}

// ReadPages returns one entry per page, in page order. A page whose text cannot
// be decoded yields an empty string; a document that cannot be read is an error.
func (PDFPageReader) ReadPages(data []byte) ([]string, error) {
	pageCount, err := validatePDF(data)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	numPages := reader.NumPage()
	if numPages != pageCount {
		slog.Warn("Page count mismatch between PDF readers.", "pdfcpu", pageCount, "textReader", numPages)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, pageText(reader, i))
	}
	return pages, nil
}

func validatePDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to validate PDF: %w", err)
	}
	return ctx.PageCount, nil
}

// pageText never fails: the text decoder can panic on malformed font data,
// and such pages count as having no text.
func pageText(reader *pdf.Reader, pageNumber int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Recovered from panic while decoding page text.", "page", pageNumber, "panic", r)
			text = ""
		}
	}()

	page := reader.Page(pageNumber)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		slog.Warn("Could not extract text from page.", "page", pageNumber, "error", err)
		return ""
	}
	return text
}
