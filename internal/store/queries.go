package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"madaris/pkg/contracts/domain"
)

// GetStudent fetches one student joined with its school names for display.
// Returns nil when the id does not exist.
func (d *DB) GetStudent(ctx context.Context, id int64) (*domain.Student, error) {
	query := `
		SELECT s.id, s.name, s.school_id, s.grade, s.section, s.gender,
		       s.phone, s.birthdate, s.total_fee, s.start_date, s.status, s.notes,
		       sc.name_ar AS school_name_ar, sc.name_en AS school_name_en
		FROM students s
		JOIN schools sc ON sc.id = s.school_id
		WHERE s.id = $1
	`
	var student domain.Student
	err := d.conn.GetContext(ctx, &student, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return &student, nil
}

// ListStudents fetches the students of one school, joined for display,
// ordered the way the students screen lists them. schoolID 0 means all
// schools.
func (d *DB) ListStudents(ctx context.Context, schoolID int64) ([]domain.Student, error) {
	query := `
		SELECT s.id, s.name, s.school_id, s.grade, s.section, s.gender,
		       s.phone, s.birthdate, s.total_fee, s.start_date, s.status, s.notes,
		       sc.name_ar AS school_name_ar, sc.name_en AS school_name_en
		FROM students s
		JOIN schools sc ON sc.id = s.school_id
		WHERE ($1 = 0 OR s.school_id = $1)
		ORDER BY s.name
	`
	var students []domain.Student
	if err := d.conn.SelectContext(ctx, &students, query, schoolID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListSchools fetches all schools ordered by Arabic name.
func (d *DB) ListSchools(ctx context.Context) ([]domain.School, error) {
	query := `
		SELECT id, name_ar, name_en, address, phone, logo_path
		FROM schools
		ORDER BY name_ar
	`
	var schools []domain.School
	if err := d.conn.SelectContext(ctx, &schools, query); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// GetSchool fetches one school. Returns nil when the id does not exist.
func (d *DB) GetSchool(ctx context.Context, id int64) (*domain.School, error) {
	query := `
		SELECT id, name_ar, name_en, address, phone, logo_path
		FROM schools
		WHERE id = $1
	`
	var school domain.School
	err := d.conn.GetContext(ctx, &school, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get school %d: %w", id, err)
	}
	return &school, nil
}

// InstallmentsByStudent fetches a student's tuition installments in
// payment order; their sum is the paid-tuition amount.
func (d *DB) InstallmentsByStudent(ctx context.Context, studentID int64) ([]domain.Installment, error) {
	query := `
		SELECT id, student_id, amount, payment_date, payment_time, notes
		FROM installments
		WHERE student_id = $1
		ORDER BY payment_date, id
	`
	var installments []domain.Installment
	if err := d.conn.SelectContext(ctx, &installments, query, studentID); err != nil {
		return nil, fmt.Errorf("installments for student %d: %w", studentID, err)
	}
	return installments, nil
}

// FeesByStudent fetches a student's additional fees, unpaid first so the
// fees screen surfaces what is still owed.
func (d *DB) FeesByStudent(ctx context.Context, studentID int64) ([]domain.AdditionalFee, error) {
	query := `
		SELECT id, student_id, fee_type, amount, paid, payment_date, created_at, notes
		FROM additional_fees
		WHERE student_id = $1
		ORDER BY paid, created_at
	`
	var fees []domain.AdditionalFee
	if err := d.conn.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("fees for student %d: %w", studentID, err)
	}
	return fees, nil
}

// SalariesByPeriod fetches the salary rows paid inside [from, to] for one
// staff type, or for both when staffType is empty.
func (d *DB) SalariesByPeriod(ctx context.Context, staffType domain.StaffType, from, to time.Time) ([]domain.StaffSalary, error) {
	query := `
		SELECT id, staff_type, staff_id, base_salary, paid_amount,
		       from_date, to_date, days_count, payment_date, notes
		FROM salaries
		WHERE payment_date >= $1 AND payment_date <= $2
		  AND ($3 = '' OR staff_type = $3)
		ORDER BY payment_date
	`
	var salaries []domain.StaffSalary
	if err := d.conn.SelectContext(ctx, &salaries, query, from, to, string(staffType)); err != nil {
		return nil, fmt.Errorf("salaries by period: %w", err)
	}
	return salaries, nil
}

// SumSalaries returns the total paid amount over [from, to] for one staff
// type, or for both when staffType is empty.
func (d *DB) SumSalaries(ctx context.Context, staffType domain.StaffType, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(paid_amount), 0)
		FROM salaries
		WHERE payment_date >= $1 AND payment_date <= $2
		  AND ($3 = '' OR staff_type = $3)
	`
	var total float64
	if err := d.conn.GetContext(ctx, &total, query, from, to, string(staffType)); err != nil {
		return 0, fmt.Errorf("sum salaries: %w", err)
	}
	return total, nil
}

// DeleteStaff removes a teacher or employee and their salary rows in one
// transaction, so a failure midway leaves both tables untouched.
func (d *DB) DeleteStaff(ctx context.Context, staffType domain.StaffType, staffID int64) error {
	table, err := staffTable(staffType)
	if err != nil {
		return err
	}
	return d.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM salaries WHERE staff_type = $1 AND staff_id = $2`,
			string(staffType), staffID)
		if err != nil {
			return fmt.Errorf("delete salaries: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), staffID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%s %d not found", table, staffID)
		}
		return nil
	})
}

func staffTable(staffType domain.StaffType) (string, error) {
	switch staffType {
	case domain.StaffTeacher:
		return "teachers", nil
	case domain.StaffEmployee:
		return "employees", nil
	default:
		return "", fmt.Errorf("unknown staff type %q", staffType)
	}
}
