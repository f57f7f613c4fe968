// Package finance derives the balances shown on screen and printed on
// receipts from a student's declared total fee, recorded installments and
// additional fees.
package finance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"madaris/pkg/contracts/domain"
)

// TuitionSummary is the derived tuition state of one student.
type TuitionSummary struct {
	TotalFee  float64
	Paid      float64
	Remaining float64 // total − paid; negative means overpayment
}

// FeeSummary aggregates a student's additional fees.
type FeeSummary struct {
	Count  int
	Total  float64
	Paid   float64
	Unpaid float64
}

// Tuition sums the installments against the declared total fee. Remaining
// is left unclipped so overpayment stays visible on screen; print callers
// clip at zero themselves.
func Tuition(student *domain.Student, installments []domain.Installment) TuitionSummary {
	paid := 0.0
	for _, inst := range installments {
		paid += inst.Amount
	}
	return TuitionSummary{
		TotalFee:  student.TotalFee,
		Paid:      paid,
		Remaining: student.TotalFee - paid,
	}
}

// Fees aggregates the additional fees: total, paid share and unpaid rest.
func Fees(fees []domain.AdditionalFee) FeeSummary {
	s := FeeSummary{Count: len(fees)}
	for _, fee := range fees {
		s.Total += fee.Amount
		if fee.Paid {
			s.Paid += fee.Amount
		}
	}
	s.Unpaid = s.Total - s.Paid
	return s
}

// EffectivePaymentDate returns the date a paid fee displays: the recorded
// payment date, or the creation date when the payment date was never set.
// Unpaid fees have no effective date.
func EffectivePaymentDate(fee *domain.AdditionalFee) *time.Time {
	if !fee.Paid {
		return nil
	}
	if fee.PaymentDate != nil {
		return fee.PaymentDate
	}
	created := fee.CreatedAt
	return &created
}

// ParseAmount reads an amount cell defensively: a malformed value counts as
// zero rather than aborting a receipt. Grouping separators are tolerated.
func ParseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders an amount in Iraqi dinars: thousands grouped, no
// decimals. Callers clip negatives before printing.
func FormatAmount(v float64) string {
	return groupThousands(v) + " د.ع"
}

// FormatNumber renders a grouped number without the currency suffix.
func FormatNumber(v float64) string {
	return groupThousands(v)
}

func groupThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// StatusColor maps a student status to the RGB colour its list row shows.
// This is the only rendering that depends on status.
func StatusColor(status domain.StudentStatus) (r, g, b int, highlighted bool) {
	switch status {
	case domain.StudentTransferred:
		return 220, 53, 69, true // red
	case domain.StudentWithdrawn:
		return 139, 0, 0, true // dark red
	case domain.StudentGraduated:
		return 255, 193, 7, true // yellow
	default:
		return 0, 0, 0, false
	}
}

// SumSalaries totals the paid amounts of a filtered salary list; the
// printable salary reports need nothing more.
func SumSalaries(salaries []domain.StaffSalary) float64 {
	total := 0.0
	for _, s := range salaries {
		total += s.PaidAmount
	}
	return total
}
