package render

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"madaris/internal/arabic"
	"madaris/internal/assets"
	"madaris/internal/config"
	"madaris/internal/finance"
	"madaris/pkg/contracts/domain"
)

// Receipt titles.
const (
	titleTuition = "إيصال قسط"
	titleFees    = "إيصال الرسوم الإضافية"
)

const (
	halfHeight    = A4Height / 2
	receiptMargin = 8.0
)

// TuitionReceipt is everything one tuition installment receipt prints.
// Number is generated when empty.
type TuitionReceipt struct {
	Student      *domain.Student
	School       *domain.School
	Summary      finance.TuitionSummary
	Current      domain.Installment
	Number       string
	AcademicYear string
	PrintedAt    time.Time
}

// FeesReceipt is everything one additional-fees receipt prints.
type FeesReceipt struct {
	Student      *domain.Student
	School       *domain.School
	Fees         []domain.AdditionalFee
	Summary      finance.FeeSummary
	Number       string
	AcademicYear string
	PrintedAt    time.Time
}

// Composer renders the two receipt shapes. Each receipt is printed twice
// on one A4 page, top and bottom halves with no gap, so the school keeps
// one copy and hands the other to the payer.
type Composer struct {
	reg    *assets.Registry
	vendor config.VendorConfig
	log    *slog.Logger
}

func NewComposer(reg *assets.Registry, vendor config.VendorConfig) *Composer {
	return &Composer{
		reg:    reg,
		vendor: vendor,
		log:    slog.Default().With("component", "receipt_composer"),
	}
}

// RenderTuition composes a tuition installment receipt.
func (c *Composer) RenderTuition(r TuitionReceipt) (*fpdf.Fpdf, error) {
	fillReceiptDefaults(&r.Number, &r.PrintedAt)
	pdf := newDocument(titleTuition, "tuition receipt")
	c.reg.Install(pdf)
	pdf.AddPage()

	for _, y0 := range []float64{0, halfHeight} {
		c.drawHalfFrame(pdf, y0)
		y := c.drawHeader(pdf, y0, titleTuition, r.School, r.AcademicYear)
		y = c.drawMetaLine(pdf, y, r.Number, r.PrintedAt)
		y = c.drawStudentTable(pdf, y, r.Student, &r.Current)
		c.drawTuitionSummary(pdf, y, r.Summary, r.Current)
		c.drawFooter(pdf, y0)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("compose tuition receipt: %w", pdf.Error())
	}
	c.log.Info("tuition receipt rendered",
		"student_id", r.Student.ID, "receipt", r.Number,
		"amount", r.Current.Amount)
	return pdf, nil
}

// RenderFees composes an additional-fees receipt.
func (c *Composer) RenderFees(r FeesReceipt) (*fpdf.Fpdf, error) {
	fillReceiptDefaults(&r.Number, &r.PrintedAt)
	pdf := newDocument(titleFees, "additional fees receipt")
	c.reg.Install(pdf)
	pdf.AddPage()

	for _, y0 := range []float64{0, halfHeight} {
		c.drawHalfFrame(pdf, y0)
		y := c.drawHeader(pdf, y0, titleFees, r.School, r.AcademicYear)
		y = c.drawMetaLine(pdf, y, r.Number, r.PrintedAt)
		y = c.drawStudentTable(pdf, y, r.Student, nil)
		c.drawFeesTable(pdf, y, r.Fees, r.Summary)
		c.drawFooter(pdf, y0)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("compose fees receipt: %w", pdf.Error())
	}
	c.log.Info("fees receipt rendered",
		"student_id", r.Student.ID, "receipt", r.Number,
		"fees", len(r.Fees))
	return pdf, nil
}

// RenderTuitionToFile renders and writes the receipt to path.
func (c *Composer) RenderTuitionToFile(r TuitionReceipt, path string) error {
	pdf, err := c.RenderTuition(r)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write tuition receipt: %w", err)
	}
	return nil
}

// RenderFeesToFile renders and writes the receipt to path.
func (c *Composer) RenderFeesToFile(r FeesReceipt, path string) error {
	pdf, err := c.RenderFees(r)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write fees receipt: %w", err)
	}
	return nil
}

func fillReceiptDefaults(number *string, printedAt *time.Time) {
	if *number == "" {
		*number = strings.ToUpper(uuid.NewString()[:8])
	}
	if printedAt.IsZero() {
		*printedAt = time.Now()
	}
}

// drawHalfFrame draws the outer border of one half-page.
func (c *Composer) drawHalfFrame(pdf *fpdf.Fpdf, y0 float64) {
	setDrawRGB(pdf, RGB{R: 40, G: 40, B: 40})
	pdf.SetLineWidth(0.4)
	pdf.Rect(receiptMargin, y0+5, A4Width-2*receiptMargin, halfHeight-10, "D")
}

// drawHeader draws the band of school identity, logo and document title.
// Returns the y where following content starts.
func (c *Composer) drawHeader(pdf *fpdf.Fpdf, y0 float64, title string, school *domain.School, academicYear string) float64 {
	top := y0 + 11
	right := A4Width - receiptMargin - 4
	left := receiptMargin + 4

	// School name, right side, Latin underneath when present.
	c.reg.SetFont(pdf, assets.FontArabicBold, 13)
	c.textRight(pdf, right, top+5, school.NameAr)
	if school.NameEn != "" {
		c.reg.SetFont(pdf, assets.FontArabicRegular, 9)
		pdf.Text(right-pdf.GetStringWidth(school.NameEn), top+11, school.NameEn)
	}

	// Logo, centred. Missing files get the placeholder circle.
	const logoSize = 17.0
	logoX := A4Width/2 - logoSize/2
	if path := c.reg.SchoolLogo(school.LogoPath); path != "" {
		pdf.ImageOptions(path, logoX, top, logoSize, logoSize, false, fpdf.ImageOptions{}, 0, "")
		if pdf.Err() {
			pdf.ClearError()
			drawPlaceholderCircle(pdf, logoX, top, logoSize, logoSize)
		}
	} else {
		drawPlaceholderCircle(pdf, logoX, top, logoSize, logoSize)
	}

	// Title and academic year, left side.
	c.reg.SetFont(pdf, assets.FontArabicBold, 12)
	pdf.Text(left, top+5, arabic.Shape(title))
	if academicYear != "" {
		c.reg.SetFont(pdf, assets.FontArabicRegular, 9)
		pdf.Text(left, top+11, arabic.Shape(academicYear))
	}

	return top + logoSize + 3
}

// drawMetaLine draws receipt number right, print timestamp left, then a
// separator. Returns the y below the separator.
func (c *Composer) drawMetaLine(pdf *fpdf.Fpdf, y float64, number string, printedAt time.Time) float64 {
	right := A4Width - receiptMargin - 4
	left := receiptMargin + 4

	c.reg.SetFont(pdf, assets.FontArabicRegular, 9)
	c.textRight(pdf, right, y+4, "رقم الإيصال: "+number)
	pdf.Text(left, y+4, printedAt.Format("2006-01-02 15:04"))

	setDrawRGB(pdf, colorSeparator)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, y+7, right, y+7)
	return y + 11
}

// drawStudentTable draws the two-column label/value table. The payment
// date row only appears on tuition receipts, where the installment is
// known.
func (c *Composer) drawStudentTable(pdf *fpdf.Fpdf, y float64, student *domain.Student, installment *domain.Installment) float64 {
	rows := [][2]string{
		{"اسم الطالب", student.Name},
		{"الصف والشعبة", student.ClassLabel()},
	}
	if installment != nil {
		when := installment.PaymentDate.Format("2006-01-02")
		if installment.PaymentTime != "" {
			when += " " + installment.PaymentTime
		}
		rows = append(rows, [2]string{"تاريخ الدفع", when})
	}

	right := A4Width - receiptMargin - 4
	const rowH = 6.5
	for i, row := range rows {
		ry := y + float64(i)*rowH + 4
		c.reg.SetFont(pdf, assets.FontArabicBold, 10)
		c.textRight(pdf, right, ry, row[0]+":")
		c.reg.SetFont(pdf, assets.FontArabicRegular, 10)
		c.textRight(pdf, right-42, ry, row[1])
	}
	return y + float64(len(rows))*rowH + 3
}

// drawTuitionSummary draws the four-cell amounts grid: paid, total fee,
// remaining and the current installment. Remaining is clipped at zero on
// print.
func (c *Composer) drawTuitionSummary(pdf *fpdf.Fpdf, y float64, summary finance.TuitionSummary, current domain.Installment) {
	remaining := summary.Remaining
	if remaining < 0 {
		remaining = 0
	}
	cells := [][2]string{
		{"القسط الحالي", finance.FormatAmount(current.Amount)},
		{"المبلغ المدفوع", finance.FormatAmount(summary.Paid)},
		{"القسط الكلي", finance.FormatAmount(summary.TotalFee)},
		{"المبلغ المتبقي", finance.FormatAmount(remaining)},
	}

	const (
		cellW = 45.0
		cellH = 15.0
	)
	total := float64(len(cells)) * cellW
	x := A4Width - (A4Width-total)/2 // rightmost edge of the grid

	setDrawRGB(pdf, RGB{R: 60, G: 60, B: 60})
	pdf.SetLineWidth(0.3)
	for i, cell := range cells {
		cx := x - float64(i+1)*cellW
		pdf.Rect(cx, y, cellW, cellH, "D")

		c.reg.SetFont(pdf, assets.FontArabicBold, 9)
		c.textCenter(pdf, cx+cellW/2, y+5.5, cell[0])
		c.reg.SetFont(pdf, assets.FontArabicRegular, 10)
		c.textCenter(pdf, cx+cellW/2, y+11.5, cell[1])
	}
}

// feesColumns is the fees table layout, rightmost column first.
var feesColumns = []struct {
	Title string
	Width float64
}{
	{"نوع الرسم", 38},
	{"المبلغ", 28},
	{"الحالة", 22},
	{"تاريخ الدفع", 26},
	{"تاريخ الإضافة", 26},
	{"ملاحظات", 40},
}

// drawFeesTable draws the per-fee rows coloured by paid state, then the
// four-row summary with the unpaid row highlighted.
func (c *Composer) drawFeesTable(pdf *fpdf.Fpdf, y float64, fees []domain.AdditionalFee, summary finance.FeeSummary) {
	right := A4Width - receiptMargin - 4
	const rowH = 6.0

	// Header row.
	setFillRGB(pdf, RGB{R: 220, G: 220, B: 220})
	setDrawRGB(pdf, RGB{R: 60, G: 60, B: 60})
	pdf.SetLineWidth(0.2)
	c.reg.SetFont(pdf, assets.FontArabicBold, 8)
	x := right
	for _, col := range feesColumns {
		x -= col.Width
		pdf.Rect(x, y, col.Width, rowH, "FD")
		c.textCenter(pdf, x+col.Width/2, y+4.2, col.Title)
	}
	y += rowH

	c.reg.SetFont(pdf, assets.FontArabicRegular, 8)
	for _, fee := range fees {
		if fee.Paid {
			setFillRGB(pdf, colorPaidRow)
		} else {
			setFillRGB(pdf, colorUnpaidRow)
		}
		cells := feeRowCells(&fee)
		x = right
		for i, col := range feesColumns {
			x -= col.Width
			pdf.Rect(x, y, col.Width, rowH, "FD")
			c.textCenter(pdf, x+col.Width/2, y+4.2, cells[i])
		}
		y += rowH
	}

	c.drawFeesSummary(pdf, right, y+2, summary)
}

// feeRowCells resolves one fee row in column order. Dates follow the
// effective-payment-date rule; blanks stand in for unset values.
func feeRowCells(fee *domain.AdditionalFee) []string {
	status := "غير مدفوع"
	if fee.Paid {
		status = "مدفوع"
	}
	payDate := ""
	if d := finance.EffectivePaymentDate(fee); d != nil {
		payDate = d.Format("2006-01-02")
	}
	created := ""
	if !fee.CreatedAt.IsZero() {
		created = fee.CreatedAt.Format("2006-01-02")
	}
	return []string{
		fee.FeeType,
		finance.FormatAmount(fee.Amount),
		status,
		payDate,
		created,
		fee.Notes,
	}
}

// drawFeesSummary draws the count/total/paid/unpaid block; the unpaid row
// is the one the cashier acts on, so it is bold on a highlight fill.
func (c *Composer) drawFeesSummary(pdf *fpdf.Fpdf, right, y float64, summary finance.FeeSummary) {
	rows := [][2]string{
		{"عدد الرسوم", finance.FormatNumber(float64(summary.Count))},
		{"المجموع الكلي", finance.FormatAmount(summary.Total)},
		{"المدفوع", finance.FormatAmount(summary.Paid)},
		{"غير المدفوع", finance.FormatAmount(summary.Unpaid)},
	}

	const (
		labelW = 36.0
		valueW = 34.0
		rowH   = 5.8
	)
	setDrawRGB(pdf, RGB{R: 60, G: 60, B: 60})
	pdf.SetLineWidth(0.2)
	for i, row := range rows {
		ry := y + float64(i)*rowH
		last := i == len(rows)-1

		style := "D"
		if last {
			setFillRGB(pdf, colorUnpaidRow)
			style = "FD"
		}
		pdf.Rect(right-labelW, ry, labelW, rowH, style)
		pdf.Rect(right-labelW-valueW, ry, valueW, rowH, style)

		if last {
			c.reg.SetFont(pdf, assets.FontArabicBold, 9)
		} else {
			c.reg.SetFont(pdf, assets.FontArabicRegular, 9)
		}
		c.textCenter(pdf, right-labelW/2, ry+4, row[0])
		c.textCenter(pdf, right-labelW-valueW/2, ry+4, row[1])
	}
}

// drawFooter draws the footer band at the bottom of a half-page: divider,
// keep-this-receipt lines, vendor identity and the vendor logo.
func (c *Composer) drawFooter(pdf *fpdf.Fpdf, y0 float64) {
	bottom := y0 + halfHeight - 7
	left := receiptMargin + 4
	right := A4Width - receiptMargin - 4

	setDrawRGB(pdf, colorSeparator)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, bottom-14, right, bottom-14)

	center := A4Width / 2
	c.reg.SetFont(pdf, assets.FontArabicBold, 8)
	c.textCenter(pdf, center, bottom-10, "يرجى الاحتفاظ بهذا الإيصال")
	c.reg.SetFont(pdf, assets.FontArabicRegular, 7)
	c.textCenter(pdf, center, bottom-6, c.vendor.Name+" - "+c.vendor.Phones)
	c.textCenter(pdf, center, bottom-2, c.vendor.Description)

	const logoSize = 11.0
	if path := c.reg.VendorLogo(); path != "" {
		pdf.ImageOptions(path, right-logoSize, bottom-12, logoSize, logoSize, false, fpdf.ImageOptions{}, 0, "")
		if pdf.Err() {
			pdf.ClearError()
		}
	}
}

// textRight draws shaped text with its right edge at x.
func (c *Composer) textRight(pdf *fpdf.Fpdf, x, y float64, s string) {
	display := arabic.Shape(s)
	pdf.Text(x-pdf.GetStringWidth(display), y, display)
}

// textCenter draws shaped text centred on x.
func (c *Composer) textCenter(pdf *fpdf.Fpdf, x, y float64, s string) {
	display := arabic.Shape(s)
	pdf.Text(x-pdf.GetStringWidth(display)/2, y, display)
}
