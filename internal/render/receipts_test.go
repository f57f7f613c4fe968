package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madaris/internal/config"
	"madaris/internal/finance"
	"madaris/pkg/contracts/domain"
)

func testComposer(t *testing.T) *Composer {
	t.Helper()
	return NewComposer(testRegistry(t), config.VendorConfig{
		Name:        "شركة التقنية الحديثة",
		Phones:      "07700000000 - 07800000000",
		Description: "نظام حسابات المدارس الأهلية",
	})
}

func testSchool() *domain.School {
	return &domain.School{
		ID:     1,
		NameAr: "مدرسة النور الأهلية",
		NameEn: "Al-Noor Private School",
	}
}

func testTuitionReceipt() TuitionReceipt {
	student := &domain.Student{
		ID:       7,
		Name:     "أحمد",
		Grade:    "الأول",
		Section:  "أ",
		TotalFee: 1_800_000,
	}
	installments := []domain.Installment{
		{Amount: 200_000}, {Amount: 200_000}, {Amount: 200_000},
	}
	current := domain.Installment{
		Amount:      200_000,
		PaymentDate: time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC),
		PaymentTime: "14:00",
	}
	installments = append(installments, current)

	return TuitionReceipt{
		Student:      student,
		School:       testSchool(),
		Summary:      finance.Tuition(student, installments),
		Current:      current,
		Number:       "R-1001",
		AcademicYear: "2025-2026",
		PrintedAt:    time.Date(2025, 8, 21, 14, 0, 0, 0, time.UTC),
	}
}

// TestRenderTuitionReceipt tests the installment receipt: one page
// carrying both duplicated halves, with the expected derived amounts
func TestRenderTuitionReceipt(t *testing.T) {
	composer := testComposer(t)
	receipt := testTuitionReceipt()

	// Amounts the receipt body prints.
	assert.Equal(t, 800_000.0, receipt.Summary.Paid)
	assert.Equal(t, 1_800_000.0, receipt.Summary.TotalFee)
	assert.Equal(t, 1_000_000.0, receipt.Summary.Remaining)

	pdf, err := composer.RenderTuition(receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount(), "both copies share one page")
}

// TestRenderTuitionReceiptClipsOverpayment tests that a negative balance
// prints as zero
func TestRenderTuitionReceiptClipsOverpayment(t *testing.T) {
	receipt := testTuitionReceipt()
	receipt.Summary = finance.TuitionSummary{TotalFee: 500_000, Paid: 600_000, Remaining: -100_000}

	pdf, err := testComposer(t).RenderTuition(receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount())
}

// TestRenderFeesReceipt tests the additional-fees receipt with paid rows
// and the aggregate block
func TestRenderFeesReceipt(t *testing.T) {
	paidAt := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)
	fees := []domain.AdditionalFee{
		{FeeType: "رسوم الكتب", Amount: 50_000, Paid: true, PaymentDate: &paidAt, CreatedAt: paidAt},
		{FeeType: "رسوم الرحلة", Amount: 30_000, Paid: true, PaymentDate: &paidAt, CreatedAt: paidAt},
	}
	summary := finance.Fees(fees)
	require.Equal(t, 2, summary.Count)
	require.Equal(t, 80_000.0, summary.Total)
	require.Equal(t, 80_000.0, summary.Paid)
	require.Zero(t, summary.Unpaid)

	receipt := FeesReceipt{
		Student:      &domain.Student{ID: 7, Name: "أحمد", Grade: "الأول", Section: "أ"},
		School:       testSchool(),
		Fees:         fees,
		Summary:      summary,
		Number:       "F-2001",
		AcademicYear: "2025-2026",
		PrintedAt:    time.Date(2025, 8, 21, 14, 0, 0, 0, time.UTC),
	}

	pdf, err := testComposer(t).RenderFees(receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount())
}

// TestRenderFeesReceiptMixedRows tests unpaid rows alongside paid ones
func TestRenderFeesReceiptMixedRows(t *testing.T) {
	created := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	fees := []domain.AdditionalFee{
		{FeeType: "رسوم الكتب", Amount: 50_000, Paid: true, CreatedAt: created},
		{FeeType: "رسوم الزي", Amount: 45_000, Paid: false, CreatedAt: created},
	}

	receipt := FeesReceipt{
		Student: &domain.Student{ID: 7, Name: "أحمد"},
		School:  testSchool(),
		Fees:    fees,
		Summary: finance.Fees(fees),
	}

	pdf, err := testComposer(t).RenderFees(receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount())
}

// TestFeeRowCells tests per-row cell resolution and the date fallbacks
func TestFeeRowCells(t *testing.T) {
	created := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		fee     domain.AdditionalFee
		status  string
		payDate string
	}{
		{
			name:    "paid with date",
			fee:     domain.AdditionalFee{FeeType: "رسوم الكتب", Amount: 50_000, Paid: true, PaymentDate: &paidAt, CreatedAt: created},
			status:  "مدفوع",
			payDate: "2025-08-21",
		},
		{
			name:    "paid without date falls back to created",
			fee:     domain.AdditionalFee{FeeType: "رسوم الكتب", Amount: 50_000, Paid: true, CreatedAt: created},
			status:  "مدفوع",
			payDate: "2025-08-01",
		},
		{
			name:    "unpaid has no date",
			fee:     domain.AdditionalFee{FeeType: "رسوم الزي", Amount: 45_000, Paid: false, CreatedAt: created},
			status:  "غير مدفوع",
			payDate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := feeRowCells(&tt.fee)
			require.Len(t, cells, len(feesColumns))
			assert.Equal(t, tt.fee.FeeType, cells[0])
			assert.Equal(t, finance.FormatAmount(tt.fee.Amount), cells[1])
			assert.Equal(t, tt.status, cells[2])
			assert.Equal(t, tt.payDate, cells[3])
			assert.Equal(t, "2025-08-01", cells[4])
		})
	}
}

// TestReceiptNumberGenerated tests the default receipt number and stamp
func TestReceiptNumberGenerated(t *testing.T) {
	receipt := testTuitionReceipt()
	receipt.Number = ""
	receipt.PrintedAt = time.Time{}

	pdf, err := testComposer(t).RenderTuition(receipt)
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount())
}

// TestRenderTuitionToFile tests the saved-print output path
func TestRenderTuitionToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, testComposer(t).RenderTuitionToFile(testTuitionReceipt(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
