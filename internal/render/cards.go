package render

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"madaris/internal/arabic"
	"madaris/internal/assets"
	"madaris/internal/config"
	apperrors "madaris/internal/errors"
	"madaris/pkg/contracts/domain"
)

// ElementKind selects the drawing path of a template element. The kind is
// declared on the element itself, never inferred from its name.
type ElementKind string

const (
	ElementText       ElementKind = "text"
	ElementLabeledBox ElementKind = "labeled_box"
	ElementLine       ElementKind = "line"
	ElementImage      ElementKind = "image"
)

// Element is one entry of a card template. All coordinates and sizes are
// fractions of the card rectangle (0..1); the engine converts them to
// millimetres at draw time. Which fields apply depends on Kind.
type Element struct {
	Kind ElementKind `yaml:"kind" validate:"required,oneof=text labeled_box line image"`
	X    float64     `yaml:"x" validate:"gte=0,lte=1"`
	Y    float64     `yaml:"y" validate:"gte=0,lte=1"`

	// Text elements carry either a literal or a student field name.
	Text     string  `yaml:"text,omitempty"`
	Source   string  `yaml:"source,omitempty"`
	Font     string  `yaml:"font,omitempty"`
	Size     float64 `yaml:"size,omitempty"`
	Color    RGB     `yaml:"color,omitempty"`
	Align    string  `yaml:"align,omitempty" validate:"omitempty,oneof=L C R"`
	MaxWidth float64 `yaml:"max_width,omitempty" validate:"gte=0,lte=1"`

	// Boxes and lines.
	Width       float64 `yaml:"width,omitempty" validate:"gte=0,lte=1"`
	Height      float64 `yaml:"height,omitempty" validate:"gte=0,lte=1"`
	BorderColor RGB     `yaml:"border_color,omitempty"`
	FillColor   *RGB    `yaml:"fill_color,omitempty"`
	BorderWidth float64 `yaml:"border_width,omitempty"`
	Label       string  `yaml:"label,omitempty"`

	// Image anchors name a well-known image slot.
	Image string `yaml:"image,omitempty" validate:"omitempty,oneof=logo photo"`
}

// Template maps element names to their configs. Elements are drawn in
// sorted name order so output is deterministic.
type Template struct {
	Elements map[string]Element `yaml:"elements" validate:"required,dive"`
}

// LoadTemplate reads and validates a yaml card template.
func LoadTemplate(path string) (Template, error) {
	var tmpl Template
	data, err := os.ReadFile(path)
	if err != nil {
		return tmpl, fmt.Errorf("read card template: %w", err)
	}
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return tmpl, fmt.Errorf("parse card template: %w", err)
	}
	if err := validator.New().Struct(tmpl); err != nil {
		return tmpl, fmt.Errorf("invalid card template: %w", err)
	}
	return tmpl, nil
}

// DefaultTemplate is the built-in student ID card layout: school band on
// top, photo box on the right, identity fields on the left, QR box bottom
// left.
func DefaultTemplate() Template {
	return Template{Elements: map[string]Element{
		"01_school_name": {
			Kind: ElementText, X: 0.50, Y: 0.08,
			Source: "school", Font: assets.FontArabicBold, Size: 9,
			Align: "C", MaxWidth: 0.92,
		},
		"02_title": {
			Kind: ElementText, X: 0.50, Y: 0.20,
			Text: "هوية طالب", Font: assets.FontArabicBold, Size: 8,
			Color: RGB{R: 30, G: 60, B: 120}, Align: "C", MaxWidth: 0.50,
		},
		"03_divider": {
			Kind: ElementLine, X: 0.04, Y: 0.26,
			Width: 0.92, Color: RGB{R: 30, G: 60, B: 120},
		},
		"10_photo_box": {
			Kind: ElementLabeledBox, X: 0.70, Y: 0.32,
			Width: 0.26, Height: 0.50,
			BorderColor: RGB{R: 120, G: 120, B: 120}, BorderWidth: 0.3,
			Label: "الصورة",
		},
		"20_name": {
			Kind: ElementText, X: 0.66, Y: 0.38,
			Source: "name", Font: assets.FontArabicBold, Size: 8,
			Align: "R", MaxWidth: 0.60,
		},
		"21_class": {
			Kind: ElementText, X: 0.66, Y: 0.52,
			Source: "class", Font: assets.FontArabicRegular, Size: 7,
			Align: "R", MaxWidth: 0.60,
		},
		"22_birth_date": {
			Kind: ElementText, X: 0.66, Y: 0.64,
			Source: "birth_date", Font: assets.FontArabicRegular, Size: 7,
			Align: "R", MaxWidth: 0.60,
		},
		"23_student_id": {
			Kind: ElementText, X: 0.66, Y: 0.76,
			Source: "student_id", Font: assets.FontArabicRegular, Size: 7,
			Align: "R", MaxWidth: 0.60,
		},
		"30_qr_box": {
			Kind: ElementLabeledBox, X: 0.05, Y: 0.60,
			Width: 0.20, Height: 0.32,
			BorderColor: RGB{R: 120, G: 120, B: 120}, BorderWidth: 0.3,
		},
		"40_year": {
			Kind: ElementText, X: 0.50, Y: 0.93,
			Source: "academic_year", Font: assets.FontArabicRegular, Size: 6,
			Color: RGB{R: 90, G: 90, B: 90}, Align: "C", MaxWidth: 0.80,
		},
	}}
}

// Engine lays ID cards out on A4 pages according to a template and grid.
type Engine struct {
	reg          *assets.Registry
	tmpl         Template
	layout       GridLayout
	academicYear string
	log          *slog.Logger
}

// NewEngine builds an engine from the card configuration. An explicit
// template file wins over the built-in layout. An overflowing grid is
// optimised rather than rejected.
func NewEngine(reg *assets.Registry, cfg config.CardsConfig, academicYear string) (*Engine, error) {
	tmpl := DefaultTemplate()
	if cfg.TemplateFile != "" {
		loaded, err := LoadTemplate(cfg.TemplateFile)
		if err != nil {
			return nil, err
		}
		tmpl = loaded
	}

	layout := GridLayout{
		Cols:     cfg.GridCols,
		Rows:     cfg.GridRows,
		MarginX:  cfg.MarginX,
		MarginY:  cfg.MarginY,
		SpacingX: cfg.SpacingX,
		SpacingY: cfg.SpacingY,
		CutMarks: cfg.CutMarks,
	}
	if wOK, hOK := layout.Fits(); !wOK || !hOK {
		slog.Warn("card grid overflows page, optimising layout",
			"cols", layout.Cols, "rows", layout.Rows,
			"width_ok", wOK, "height_ok", hOK)
		layout = layout.Optimize()
	}

	return &Engine{
		reg:          reg,
		tmpl:         tmpl,
		layout:       layout,
		academicYear: academicYear,
		log:          slog.Default().With("component", "card_engine"),
	}, nil
}

// Layout exposes the effective grid after optimisation.
func (e *Engine) Layout() GridLayout { return e.layout }

// Render composes one ID card per student. Pages carry cols×rows cards;
// the last page leaves unused slots blank and no trailing blank page is
// emitted.
func (e *Engine) Render(students []domain.Student) (*fpdf.Fpdf, error) {
	// NewEngine optimises the grid; a hand-built layout can still
	// overflow and must not produce a clipped sheet.
	if wOK, hOK := e.layout.Fits(); !wOK || !hOK {
		return nil, fmt.Errorf("%w: %dx%d grid", apperrors.ErrLayoutOverflow, e.layout.Cols, e.layout.Rows)
	}

	pdf := newDocument("هويات الطلاب", "student ID cards")
	e.reg.Install(pdf)

	perPage := e.layout.Cols * e.layout.Rows
	names := e.elementOrder()

	for i := 0; i < len(students); i += perPage {
		batch := students[i : min(i+perPage, len(students))]
		e.renderPage(pdf, batch, names, i/perPage+1)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("compose id cards: %w", pdf.Error())
	}
	e.log.Info("id card batch rendered",
		"students", len(students),
		"pages", (len(students)+perPage-1)/perPage,
		"degraded_fonts", len(e.reg.Degraded()))
	return pdf, nil
}

// RenderToFile renders the batch and writes the document to path.
func (e *Engine) RenderToFile(students []domain.Student, path string) error {
	pdf, err := e.Render(students)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write id cards pdf: %w", err)
	}
	return nil
}

// renderPage runs the per-page sequence: cut marks, then border and
// elements per filled slot, then the footer.
func (e *Engine) renderPage(pdf *fpdf.Fpdf, batch []domain.Student, names []string, pageNum int) {
	pdf.AddPage()

	if e.layout.CutMarks {
		e.drawCutMarks(pdf)
	}

	for slot := range batch {
		col := slot % e.layout.Cols
		row := slot / e.layout.Cols
		x, y := e.layout.CardOrigin(col, row)
		e.drawCardBorder(pdf, x, y)
		for _, name := range names {
			e.drawElement(pdf, e.tmpl.Elements[name], &batch[slot], x, y)
		}
	}

	e.drawFooter(pdf, pageNum)
}

// elementOrder returns template element names sorted for deterministic
// drawing.
func (e *Engine) elementOrder() []string {
	names := make([]string, 0, len(e.tmpl.Elements))
	for name := range e.tmpl.Elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) drawCardBorder(pdf *fpdf.Fpdf, x, y float64) {
	setDrawRGB(pdf, RGB{R: 60, G: 60, B: 60})
	pdf.SetLineWidth(0.25)
	pdf.Rect(x, y, CardWidth, CardHeight, "D")
}

// drawCutMarks draws a crosshair at each corner intersection of every
// card rectangle. Arms are 3 mm, stroke 0.5 pt, grey.
func (e *Engine) drawCutMarks(pdf *fpdf.Fpdf) {
	const arm = 3.0
	setDrawRGB(pdf, colorCutMark)
	pdf.SetLineWidth(0.5 * 25.4 / 72) // 0.5 pt in mm

	for row := 0; row < e.layout.Rows; row++ {
		for col := 0; col < e.layout.Cols; col++ {
			x, y := e.layout.CardOrigin(col, row)
			for _, cx := range []float64{x, x + CardWidth} {
				for _, cy := range []float64{y, y + CardHeight} {
					pdf.Line(cx-arm, cy, cx+arm, cy)
					pdf.Line(cx, cy-arm, cx, cy+arm)
				}
			}
		}
	}
}

func (e *Engine) drawElement(pdf *fpdf.Fpdf, el Element, student *domain.Student, cardX, cardY float64) {
	x := cardX + el.X*CardWidth
	y := cardY + el.Y*CardHeight

	switch el.Kind {
	case ElementText:
		e.drawText(pdf, el, student, x, y)
	case ElementLabeledBox:
		e.drawLabeledBox(pdf, el, x, y)
	case ElementLine:
		setDrawRGB(pdf, el.Color)
		pdf.SetLineWidth(0.25)
		pdf.Line(x, y, x+el.Width*CardWidth, y)
	case ElementImage:
		e.drawImage(pdf, el, x, y)
	}
}

func (e *Engine) drawText(pdf *fpdf.Fpdf, el Element, student *domain.Student, x, y float64) {
	value := el.Text
	if el.Source != "" {
		value = e.resolveSource(el.Source, student)
	}
	if value == "" {
		return
	}

	size := el.Size
	if size <= 0 {
		size = 8
	}
	font := el.Font
	if font == "" {
		font = assets.FontArabicRegular
	}
	e.reg.SetFont(pdf, font, size)
	setTextRGB(pdf, el.Color)

	display := arabic.Shape(value)
	maxW := el.MaxWidth * CardWidth
	if maxW > 0 {
		display = FitText(pdf, display, maxW)
	}

	w := pdf.GetStringWidth(display)
	switch el.Align {
	case "C":
		x -= w / 2
	case "R":
		x -= w
	}
	pdf.Text(x, y, display)
	setTextRGB(pdf, RGB{})
}

func (e *Engine) drawLabeledBox(pdf *fpdf.Fpdf, el Element, x, y float64) {
	w := el.Width * CardWidth
	h := el.Height * CardHeight

	bw := el.BorderWidth
	if bw <= 0 {
		bw = 0.25
	}
	setDrawRGB(pdf, el.BorderColor)
	pdf.SetLineWidth(bw)

	style := "D"
	if el.FillColor != nil {
		setFillRGB(pdf, *el.FillColor)
		style = "FD"
	}
	pdf.Rect(x, y, w, h, style)

	if el.Label != "" {
		e.reg.SetFont(pdf, assets.FontArabicRegular, 6)
		setTextRGB(pdf, RGB{R: 120, G: 120, B: 120})
		display := arabic.Shape(el.Label)
		lx := x + (w-pdf.GetStringWidth(display))/2
		pdf.Text(lx, y+h/2, display)
		setTextRGB(pdf, RGB{})
	}
}

// drawImage places a known image slot; missing files get the placeholder
// circle rather than failing the batch.
func (e *Engine) drawImage(pdf *fpdf.Fpdf, el Element, x, y float64) {
	w := el.Width * CardWidth
	h := el.Height * CardHeight

	var path string
	switch el.Image {
	case "logo":
		path = e.reg.CompanyLogo()
	}
	if path == "" {
		drawPlaceholderCircle(pdf, x, y, w, h)
		return
	}
	pdf.ImageOptions(path, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
	if pdf.Err() {
		e.log.Warn("card image failed, using placeholder",
			"image", el.Image, "error", apperrors.ErrAssetMissing)
		pdf.ClearError()
		drawPlaceholderCircle(pdf, x, y, w, h)
	}
}

// resolveSource maps a template source name to a student field. Unknown
// sources and empty fields render as blank cells.
func (e *Engine) resolveSource(source string, s *domain.Student) string {
	switch source {
	case "name":
		return s.Name
	case "school":
		return s.SchoolNameAr
	case "school_en":
		return s.SchoolNameEn
	case "class":
		return s.ClassLabel()
	case "grade":
		return s.Grade
	case "section":
		return s.Section
	case "phone":
		return s.Phone
	case "birth_date":
		if s.Birthdate == nil {
			return ""
		}
		return s.Birthdate.Format("2006-01-02")
	case "student_id":
		return fmt.Sprintf("%d", s.ID)
	case "status":
		return string(s.Status)
	case "academic_year":
		return e.academicYear
	default:
		return ""
	}
}

func (e *Engine) drawFooter(pdf *fpdf.Fpdf, pageNum int) {
	e.reg.SetFont(pdf, assets.FontArabicRegular, 6)
	setTextRGB(pdf, RGB{R: 150, G: 150, B: 150})

	left := fmt.Sprintf("%s %d", arabic.Shape("صفحة"), pageNum)
	pdf.Text(A4Width-12-pdf.GetStringWidth(left), A4Height-6, left)
	pdf.Text(12, A4Height-6, time.Now().Format("2006-01-02 15:04"))
	setTextRGB(pdf, RGB{})
}
