package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin   = 20.0
	mmPerInch   = 25.4
	pdfFontFace = "Helvetica"
)

// pdfStyle is the font setup of one node kind.
type pdfStyle struct {
	Style string
	Size  float64
	Line  float64
}

var pdfStyles = map[Kind]pdfStyle{
	KindTitle:     {Style: "B", Size: 22, Line: 10},
	KindHeading:   {Style: "B", Size: 15, Line: 8},
	KindBullet:    {Style: "", Size: 11, Line: 6},
	KindParagraph: {Style: "", Size: 11, Line: 6},
}

// RenderPDF lays d out on Letter pages.
func RenderPDF(d *Document, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	for i, n := range d.Nodes {
		if n.Kind == KindImage {
			if err := pdfPicture(pdf, i, n, contentW); err != nil {
				return err
			}
			continue
		}
		st := pdfStyles[n.Kind]
		fontStyle := st.Style
		if n.Bold && !strings.Contains(fontStyle, "B") {
			fontStyle += "B"
		}
		pdf.SetFont(pdfFontFace, fontStyle, st.Size)
		r, g, b := parseHex(colorOrBlack(n.Color))
		pdf.SetTextColor(r, g, b)

		switch n.Kind {
		case KindTitle:
			pdf.MultiCell(contentW, st.Line, tr(n.Text), "", "C", false)
			pdf.Ln(4)
		case KindHeading:
			pdf.Ln(2)
			pdf.MultiCell(contentW, st.Line, tr(n.Text), "", "L", false)
		case KindBullet:
			pdf.SetX(pdfMargin + 6)
			pdf.MultiCell(contentW-6, st.Line, tr("• "+n.Text), "", "L", false)
		case KindParagraph:
			pdf.MultiCell(contentW, st.Line, tr(n.Text), "", pdfAlign(n.Align), false)
			pdf.Ln(2)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("laying out pdf: %w", err)
	}
	return pdf.Output(w)
}

func pdfAlign(a Alignment) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignJustify:
		return "J"
	}
	return "L"
}

func pdfPicture(pdf *gofpdf.Fpdf, idx int, n Node, contentW float64) error {
	data, err := os.ReadFile(n.ImagePath)
	if err != nil {
		return fmt.Errorf("reading picture %s: %w", n.ImagePath, err)
	}
	imgType := strings.TrimPrefix(strings.ToLower(filepath.Ext(n.ImagePath)), ".")
	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	name := fmt.Sprintf("img%d", idx)
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

	w := n.WidthIn * mmPerInch
	h := n.HeightIn * mmPerInch
	if w > contentW {
		h = h * contentW / w
		w = contentW
	}
	pdf.ImageOptions(name, pdfMargin, 0, w, h, true, opts, 0, "")
	pdf.Ln(4)
	return nil
}
