package invoice

import (
	"bytes" // Document output buffer
	"fmt"   // Formatting
	"os"    // Font asset detection
	"time"  // Deterministic document timestamps

	"mobile_sale/internal/domain" // Record types

	"github.com/go-pdf/fpdf" // PDF document generation
)

// localizedFamily is the font family name registered for the localized
// glyph font when the asset is present on disk.
const localizedFamily = "localized"

// Renderer turns a persisted order into a printable PDF. FontPath points at
// an optional localized-glyph font; its presence on disk is the sole switch
// between full rendering and the Latin-only fallback.
type Renderer struct {
	FontPath string
}

// New returns a renderer using the given font asset path
func New(fontPath string) *Renderer {
	return &Renderer{FontPath: fontPath}
}

// encodeFunc maps a named field's text into something the selected font can
// draw. The identity encoder is used when the localized font is loaded; the
// fallback substitutes a placeholder for fields the base font cannot encode.
type encodeFunc func(field, value string) string

// Render produces the invoice document for one order. The output is
// deterministic given the same order, customer and font availability.
// Rendering never mutates the order; a failure here leaves the already
// persisted record untouched.
func (r *Renderer) Render(order domain.Order, customer domain.Customer) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	// Pin the document timestamps to the order date so identical inputs
	// produce identical bytes
	if stamp, err := time.Parse("2006-01-02", order.Date); err == nil {
		pdf.SetCreationDate(stamp)
		pdf.SetModificationDate(stamp)
	}

	// Resolve the text encoder once per render and use it uniformly, rather
	// than re-checking font availability at each drawing step.
	family := "Helvetica"
	enc := latinFallback(pdf)
	if fontPresent(r.FontPath) {
		pdf.AddUTF8Font(localizedFamily, "", r.FontPath)
		pdf.AddUTF8Font(localizedFamily, "B", r.FontPath)
		family = localizedFamily
		enc = func(_, value string) string { return value }
	}

	pdf.AddPage()

	// Header: order identifier and date, centered
	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, "Order "+order.OrderID, "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 11)
	pdf.CellFormat(0, 7, "Date: "+order.Date, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Customer block
	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(0, 7, enc("customer", customer.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 11)
	if customer.Address != "" {
		pdf.CellFormat(0, 6, enc("address", customer.Address), "", 1, "L", false, 0, "")
	}
	if customer.Phone != "" {
		pdf.CellFormat(0, 6, "Tel: "+enc("phone", customer.Phone), "", 1, "L", false, 0, "")
	}
	if customer.TaxID != "" {
		pdf.CellFormat(0, 6, "Tax ID: "+enc("tax_id", customer.TaxID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Line-item table: description, quantity, unit price, line total
	pdf.SetFont(family, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 1, "R", true, 0, "")
	pdf.SetFont(family, "", 11)
	for _, l := range order.Lines {
		pdf.CellFormat(90, 8, enc("item", l.Product), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 8, FormatMoney(l.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, FormatMoney(float64(l.Quantity)*l.UnitPrice), "1", 1, "R", false, 0, "")
	}

	// Grand total row
	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(150, 8, "Grand Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, FormatMoney(order.Total), "1", 1, "R", false, 0, "")

	if order.Note != "" {
		pdf.Ln(4)
		pdf.SetFont(family, "", 10)
		pdf.CellFormat(0, 6, "Note: "+enc("note", order.Note), "", 1, "L", false, 0, "")
	}

	// Signature footer
	pdf.Ln(20)
	pdf.SetFont(family, "", 11)
	pdf.CellFormat(0, 6, "____________________________", "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Authorized Signature", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render order %s: %w", order.OrderID, err)
	}
	return buf.Bytes(), nil
}

// fontPresent reports whether the localized font asset exists on this host
func fontPresent(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// latinFallback returns the encoder used when the localized font is absent.
// Fields the base font cannot encode are replaced with a placeholder
// instead of failing the whole document; pure-Latin fields pass through the
// codepage translator unchanged in meaning.
func latinFallback(pdf *fpdf.Fpdf) encodeFunc {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(field, value string) string {
		if !latinEncodable(value) {
			return field + " (font missing)"
		}
		return tr(value)
	}
}

// latinEncodable reports whether every rune fits the base Latin font
func latinEncodable(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}
