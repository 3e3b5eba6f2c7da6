package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// TextExtractor извлекает текст из загруженного файла.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

var (
	reSpaces   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n+`)

	disableConfigDir sync.Once
)

// PDFExtractor extracts plain text with ledongthuc/pdf. pdfcpu is only used
// to report the page count.
type PDFExtractor struct {
	log logrus.FieldLogger
}

func NewPDFExtractor(log logrus.FieldLogger) *PDFExtractor {
	// pdfcpu writes a config dir under $HOME unless told otherwise.
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFExtractor{log: log}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty file")
	}
	if pages, err := pageCount(data); err != nil {
		e.log.WithError(err).Warn("pdfcpu could not read the document, trying text extraction anyway")
	} else {
		e.log.WithField("pages", pages).Debug("pdf page count")
	}
	return extractTextFromPDF(data)
}

func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

func extractTextFromPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return normalizeWhitespace(buf.String()), nil
}

func normalizeWhitespace(s string) string {
	// Collapse excessive whitespace and trim
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	// Preserve newlines but collapse runs
	s = reNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
