package domain

import (
	"time"
)

// StudentStatus enumerates the enrolment states shown in the students list.
// The values are the literal Arabic strings stored in the database.
type StudentStatus string

const (
	StudentActive      StudentStatus = "نشط"
	StudentWithdrawn   StudentStatus = "منقطع"
	StudentGraduated   StudentStatus = "متخرج"
	StudentTransferred StudentStatus = "منتقل"
)

// SchoolType tags the stage(s) a school teaches; they drive the grade list
// offered when registering students.
type SchoolType string

const (
	SchoolPrimary      SchoolType = "ابتدائية"
	SchoolMiddle       SchoolType = "متوسطة"
	SchoolPreparatory  SchoolType = "إعدادية"
	SchoolSecondary    SchoolType = "ثانوية"
)

// School represents one school managed by the application.
type School struct {
	ID          int64        `json:"id" db:"id"`
	NameAr      string       `json:"name_ar" db:"name_ar" validate:"required,min=2,max=200"`
	NameEn      string       `json:"name_en,omitempty" db:"name_en"`
	Address     string       `json:"address,omitempty" db:"address"`
	Phone       string       `json:"phone,omitempty" db:"phone"`
	LogoPath    string       `json:"logo_path,omitempty" db:"logo_path"`
	SchoolTypes []SchoolType `json:"school_types" db:"-"`
}

// Student represents a student row joined with its school for display.
type Student struct {
	ID        int64         `json:"id" db:"id"`
	Name      string        `json:"name" db:"name" validate:"required,min=2,max=200"`
	SchoolID  int64         `json:"school_id" db:"school_id" validate:"required"`
	Grade     string        `json:"grade" db:"grade"`
	Section   string        `json:"section" db:"section"`
	Gender    string        `json:"gender" db:"gender"`
	Phone     string        `json:"phone,omitempty" db:"phone"`
	Birthdate *time.Time    `json:"birthdate,omitempty" db:"birthdate"`
	TotalFee  float64       `json:"total_fee" db:"total_fee" validate:"gte=0"`
	StartDate time.Time     `json:"start_date" db:"start_date"`
	Status    StudentStatus `json:"status" db:"status"`
	Notes     string        `json:"notes,omitempty" db:"notes"`

	// Joined for display; empty when the query did not join schools.
	SchoolNameAr string `json:"school_name_ar,omitempty" db:"school_name_ar"`
	SchoolNameEn string `json:"school_name_en,omitempty" db:"school_name_en"`
}

// ClassLabel returns the grade and section the way receipts print them.
func (s *Student) ClassLabel() string {
	if s.Section == "" {
		return s.Grade
	}
	return s.Grade + " - " + s.Section
}

// Installment is a partial tuition payment. The sum of a student's
// installments is the paid-tuition amount.
type Installment struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"student_id" db:"student_id" validate:"required"`
	Amount      float64   `json:"amount" db:"amount" validate:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	PaymentTime string    `json:"payment_time,omitempty" db:"payment_time"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
}

// AdditionalFee is a charge distinct from tuition (books, trips, uniforms),
// tracked with its own paid/unpaid state.
type AdditionalFee struct {
	ID          int64      `json:"id" db:"id"`
	StudentID   int64      `json:"student_id" db:"student_id" validate:"required"`
	FeeType     string     `json:"fee_type" db:"fee_type" validate:"required"`
	Amount      float64    `json:"amount" db:"amount" validate:"gte=0"`
	Paid        bool       `json:"paid" db:"paid"`
	PaymentDate *time.Time `json:"payment_date,omitempty" db:"payment_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
}

// StaffType discriminates salary rows between teachers and employees.
type StaffType string

const (
	StaffTeacher  StaffType = "teacher"
	StaffEmployee StaffType = "employee"
)

// StaffSalary is a paid salary period for a teacher or employee. The core
// only sums and filters these for printable reports.
type StaffSalary struct {
	ID          int64     `json:"id" db:"id"`
	StaffType   StaffType `json:"staff_type" db:"staff_type" validate:"required,oneof=teacher employee"`
	StaffID     int64     `json:"staff_id" db:"staff_id" validate:"required"`
	BaseSalary  float64   `json:"base_salary" db:"base_salary" validate:"gte=0"`
	PaidAmount  float64   `json:"paid_amount" db:"paid_amount" validate:"gte=0"`
	FromDate    time.Time `json:"from_date" db:"from_date"`
	ToDate      time.Time `json:"to_date" db:"to_date"`
	DaysCount   int       `json:"days_count" db:"days_count"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
}
