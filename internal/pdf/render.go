package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/Simplici0/quotedesk/internal/export"
)

const (
	pageBottom = 287.0
	leftMargin = 20.0
	rightEdge  = 190.0
	rowHeight  = 8.0
	columnW    = 85.0
	footerH    = 110.0
)

// Image is an image asset embedded in the document.
type Image struct {
	Data []byte
	Type string // JPG, PNG or GIF
}

// Renderer lays quote documents out on A4 pages.
type Renderer struct {
	Logo      *Image
	PaymentQR *Image
}

// LoadImage reads an image asset. An empty path yields no image.
func LoadImage(path string) (*Image, error) {
	if path == "" {
		return nil, nil
	}

	imageType, err := imageTypeOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return &Image{Data: data, Type: imageType}, nil
}

func imageTypeOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG", nil
	case ".png":
		return "PNG", nil
	case ".gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", filepath.Ext(path))
	}
}

// Render produces the PDF bytes of a quote document.
func (r *Renderer) Render(doc export.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Letterhead.
	greenRule(pdf, 5)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(leftMargin, 25, tr(doc.Branding.Company))
	r.image(pdf, "logo", r.Logo, 150, 10, 30, 30)

	pdf.SetFont("Helvetica", "", 12)
	y := 35.0
	for _, line := range doc.Branding.Address {
		pdf.Text(leftMargin, y, tr(line))
		y += 8
	}
	if doc.Branding.Website != "" {
		pdf.SetXY(leftMargin, y-5)
		pdf.CellFormat(60, 6, tr(doc.Branding.Website), "", 0, "L", false, 0, doc.Branding.WebsiteURL)
		y += 8
	}

	pdf.SetDrawColor(0, 0, 139)
	pdf.SetLineWidth(1)
	pdf.Line(leftMargin, y-3, 100, y-3)

	// Quote and customer block.
	pdf.SetFont("Helvetica", "B", 12)
	y += 9
	pdf.Text(leftMargin, y, tr("Quote ID: "+doc.QuoteID))
	pdf.Text(leftMargin, y+8, tr("Customer: "+doc.Customer.Name))
	pdf.Text(leftMargin, y+16, tr("Address: "+doc.Customer.Address))

	// Cost breakdown.
	pdf.SetXY(leftMargin, y+21)
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(0, 128, 0)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(columnW, rowHeight, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(columnW, rowHeight, "Cost", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	for _, row := range doc.Rows {
		pdf.SetX(leftMargin)
		pdf.CellFormat(columnW, rowHeight, tr(row.Category), "1", 0, "C", false, 0, "")
		pdf.CellFormat(columnW, rowHeight, money(row.Cost.StringFixed(2)), "1", 1, "C", false, 0, "")
	}

	y = pdf.GetY() + 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, y, "Additional Cost:")
	pdf.Text(80, y, money(doc.AdditionalCost.StringFixed(2)))
	pdf.Text(120, y, "Total Cost:")
	pdf.Text(170, y, money(doc.Total.StringFixed(2)))

	if y+footerH > pageBottom {
		pdf.AddPage()
		y = 10
	}

	// Payment block.
	bottomY := y + 10
	r.image(pdf, "payment-qr", r.PaymentQR, leftMargin, bottomY, 40, 40)
	pdf.SetFont("Helvetica", "", 10)
	for i, line := range doc.Branding.BankDetails {
		pdf.Text(125, bottomY+5+float64(i)*6, tr(line))
	}

	// Notes.
	ruleY := bottomY + 45
	greenRule(pdf, ruleY)
	notesY := ruleY + 10
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(leftMargin, notesY, "Special Notes:")
	for i, line := range doc.Branding.Notes {
		pdf.Text(leftMargin, notesY+float64(i+1)*6, tr(line))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quote %s: %w", doc.QuoteID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) image(pdf *fpdf.Fpdf, name string, img *Image, x, y, w, h float64) {
	if img == nil || len(img.Data) == 0 {
		return
	}
	opts := fpdf.ImageOptions{ImageType: img.Type}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func greenRule(pdf *fpdf.Fpdf, y float64) {
	pdf.SetDrawColor(0, 128, 0)
	pdf.SetLineWidth(3)
	pdf.Line(leftMargin, y, rightEdge, y)
}

func money(amount string) string {
	return "$" + amount
}
