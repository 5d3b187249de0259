package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure PDFRenderer implements ProposalRenderer
var _ driven.ProposalRenderer = (*PDFRenderer)(nil)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 6.0
)

// PDFRenderer renders proposals as single-column A4 documents with the core
// Helvetica font. Text is converted to cp1252, so characters outside it are lost.
type PDFRenderer struct {
	// Author is written into the document metadata
	Author string
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(author string) *PDFRenderer {
	if author == "" {
		author = "Concierge"
	}
	return &PDFRenderer{Author: author}
}

// Format returns pdf
func (r *PDFRenderer) Format() domain.ProposalFormat {
	return domain.ProposalFormatPDF
}

// Render lays out the proposal and returns the PDF bytes
func (r *PDFRenderer) Render(ctx context.Context, p *domain.Proposal) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil proposal", domain.ErrInvalidInput)
	}
	l := labelsFor(p.Language)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(l.Title+" "+p.Number, true)
	pdf.SetAuthor(r.Author, true)
	pdf.SetCreationDate(p.Date)
	pdf.SetModificationDate(p.Date)
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	contentWidth := width - 2*pdfMargin

	pdf.SetFont("Helvetica", "", 22)
	pdf.SetTextColor(40, 40, 40)
	pdf.CellFormat(contentWidth, 12, tr(l.Title), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(184, 151, 90)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY() + 1
	pdf.Line(pdfMargin, y, width-pdfMargin, y)
	pdf.Ln(6)

	meta := [][2]string{
		{l.PreparedFor, p.ClientName},
		{l.Date, l.formatDate(p.Date)},
		{l.Number, p.Number},
	}
	for _, row := range meta {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(40, pdfLineHeight, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(contentWidth-40, pdfLineHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	section := func(title string, body []string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(contentWidth, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, para := range body {
			pdf.MultiCell(contentWidth, pdfLineHeight, tr(para), "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}
	section(l.Request, paragraphs(p.ClientRequest))
	section(l.Recommendation, paragraphs(p.Recommendation))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentWidth, 8, tr(l.Price+": "+l.formatPrice(p.Price, p.Currency)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(contentWidth, pdfLineHeight, tr(l.Closing), "", "L", false)
	pdf.CellFormat(contentWidth, pdfLineHeight, tr(l.Signature), "", 1, "L", false, 0, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render proposal pdf: %w", err)
	}
	return buf.Bytes(), nil
}
