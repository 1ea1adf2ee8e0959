package document

import (
	"fmt"
	"io"
	"strings"
)

// Format names an output format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

type renderer struct {
	render      func(*Document, io.Writer) error
	contentType string
}

var renderers = map[Format]renderer{
	FormatDOCX: {RenderDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	FormatPDF:  {RenderPDF, "application/pdf"},
	FormatHTML: {RenderHTML, "text/html; charset=utf-8"},
}

// ParseFormat validates a format name; empty means DOCX.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatDOCX, nil
	}
	if _, ok := renderers[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (docx, pdf, html)", s)
	}
	return f, nil
}

// Ext is the file extension of f, with the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType is the MIME type served for f.
func (f Format) ContentType() string { return renderers[f].contentType }

// Render writes d to w in format f.
func Render(f Format, d *Document, w io.Writer) error {
	r, ok := renderers[f]
	if !ok {
		return fmt.Errorf("unsupported format %q", f)
	}
	if err := r.render(d, w); err != nil {
		return fmt.Errorf("rendering %s: %w", f, err)
	}
	return nil
}
