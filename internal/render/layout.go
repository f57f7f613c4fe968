// Package render composes the printable PDF output of the application:
// tuition receipts, additional-fees receipts and batched student ID cards.
// All geometry is millimetres on A4 portrait; pages are drawn top-down in
// document coordinates.
package render

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page and card geometry, millimetres.
const (
	A4Width  = 210.0
	A4Height = 297.0

	// ISO ID-1.
	CardWidth  = 85.60
	CardHeight = 53.98

	// MinCardSpacing is the floor the grid optimiser never goes below.
	MinCardSpacing = 3.0
)

// RGB is a colour triple for yaml templates and draw calls.
type RGB struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

// Row colours of the additional-fees table and its summary.
var (
	colorPaidRow   = RGB{R: 198, G: 239, B: 206} // light green
	colorUnpaidRow = RGB{R: 255, G: 235, B: 156} // light yellow
	colorCutMark   = RGB{R: 150, G: 150, B: 150}
	colorSeparator = RGB{R: 120, G: 120, B: 120}
)

// GridLayout is the card arrangement on one A4 page.
type GridLayout struct {
	Cols     int
	Rows     int
	MarginX  float64
	MarginY  float64
	SpacingX float64
	SpacingY float64
	CutMarks bool
}

// Fits verifies both axes: margins, cards and inter-card spacing must not
// exceed the page.
func (g GridLayout) Fits() (widthOK, heightOK bool) {
	w := 2*g.MarginX + float64(g.Cols)*CardWidth + float64(g.Cols-1)*g.SpacingX
	h := 2*g.MarginY + float64(g.Rows)*CardHeight + float64(g.Rows-1)*g.SpacingY
	return w <= A4Width, h <= A4Height
}

// Optimize recomputes an overflowing layout so the grid fits, keeping
// spacings at or above MinCardSpacing and centring the grid. When the cards
// alone exceed the page the count on that axis is reduced first; the result
// always fits. A layout that already fits is returned unchanged.
func (g GridLayout) Optimize() GridLayout {
	widthOK, heightOK := g.Fits()
	if widthOK && heightOK {
		return g
	}
	out := g
	if !widthOK {
		out.Cols = capAxis(A4Width, CardWidth, out.Cols)
		out.SpacingX, out.MarginX = fitAxis(A4Width, CardWidth, out.Cols, out.SpacingX)
	}
	if !heightOK {
		out.Rows = capAxis(A4Height, CardHeight, out.Rows)
		out.SpacingY, out.MarginY = fitAxis(A4Height, CardHeight, out.Rows, out.SpacingY)
	}
	return out
}

// capAxis shrinks the card count to the most that fit the page with
// MinCardSpacing between them and no margin, never below one.
func capAxis(page, card float64, count int) int {
	most := int((page + MinCardSpacing) / (card + MinCardSpacing))
	if most < 1 {
		most = 1
	}
	if count > most {
		return most
	}
	return count
}

// fitAxis picks the largest spacing ≥ MinCardSpacing that leaves a
// non-negative margin, then centres the run of cards.
func fitAxis(page, card float64, count int, spacing float64) (newSpacing, newMargin float64) {
	cards := float64(count) * card
	gaps := float64(count - 1)

	newSpacing = spacing
	if gaps > 0 {
		maxSpacing := (page - cards) / gaps
		if newSpacing > maxSpacing {
			newSpacing = maxSpacing
		}
		if newSpacing < MinCardSpacing {
			newSpacing = MinCardSpacing
		}
	} else {
		newSpacing = 0
	}

	newMargin = (page - cards - gaps*newSpacing) / 2
	if newMargin < 0 {
		newMargin = 0
	}
	return newSpacing, newMargin
}

// CardOrigin returns the top-left corner of the card at (col, row) in
// document coordinates.
func (g GridLayout) CardOrigin(col, row int) (x, y float64) {
	x = g.MarginX + float64(col)*(CardWidth+g.SpacingX)
	y = g.MarginY + float64(row)*(CardHeight+g.SpacingY)
	return x, y
}

// FitText truncates a display string so its rendered width in the active
// font does not exceed maxWidth, appending "..." when anything was cut.
// A font-metric failure falls through to the identity string.
func FitText(pdf *fpdf.Fpdf, s string, maxWidth float64) string {
	if maxWidth <= 0 {
		return s
	}
	if measure(pdf, s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if measure(pdf, candidate) <= maxWidth {
			return candidate
		}
	}
	return "..."
}

// measure is GetStringWidth with the identity fallback: when the active
// font has no metrics for the string, approximate by rune count.
func measure(pdf *fpdf.Fpdf, s string) float64 {
	w := pdf.GetStringWidth(s)
	if w <= 0 && s != "" {
		// Rough mm per glyph at common sizes; only reached in
		// degraded font mode.
		_, fontSize := pdf.GetFontSize()
		return float64(len([]rune(s))) * fontSize * 0.5
	}
	return w
}

// setDrawRGB, setFillRGB and setTextRGB spare the call sites the triple
// spreading.
func setDrawRGB(pdf *fpdf.Fpdf, c RGB) { pdf.SetDrawColor(c.R, c.G, c.B) }
func setFillRGB(pdf *fpdf.Fpdf, c RGB) { pdf.SetFillColor(c.R, c.G, c.B) }
func setTextRGB(pdf *fpdf.Fpdf, c RGB) { pdf.SetTextColor(c.R, c.G, c.B) }

// drawPlaceholderCircle stands in for a missing image: an empty circle
// centred in the given box.
func drawPlaceholderCircle(pdf *fpdf.Fpdf, x, y, w, h float64) {
	r := w
	if h < w {
		r = h
	}
	r = r / 2
	setDrawRGB(pdf, RGB{R: 180, G: 180, B: 180})
	pdf.SetLineWidth(0.3)
	pdf.Circle(x+w/2, y+h/2, r, "D")
}

// newDocument creates an A4 portrait document with the shared metadata.
func newDocument(title, subject string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("madaris", true)
	pdf.SetTitle(title, true)
	pdf.SetSubject(subject, true)
	pdf.SetKeywords(strings.Join([]string{"madaris", "مدارس", subject}, " "), true)
	return pdf
}
