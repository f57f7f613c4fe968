package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madaris/pkg/contracts/domain"
)

func mockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := NewFromConn(sqlx.NewDb(conn, "sqlmock"))
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// TestGetStudent tests the student+school join fetch
func TestGetStudent(t *testing.T) {
	db, mock := mockDB(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "school_id", "grade", "section", "gender",
		"phone", "birthdate", "total_fee", "start_date", "status", "notes",
		"school_name_ar", "school_name_en",
	}).AddRow(
		7, "أحمد", 1, "الأول", "أ", "ذكر",
		"0770", nil, 1800000.0, time.Now(), "نشط", "",
		"مدرسة النور الأهلية", "Al-Noor Private School",
	)
	mock.ExpectQuery("SELECT (.+) FROM students s").WithArgs(int64(7)).WillReturnRows(rows)

	student, err := db.GetStudent(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "أحمد", student.Name)
	assert.Equal(t, "مدرسة النور الأهلية", student.SchoolNameAr)
	assert.Equal(t, domain.StudentActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGetStudentNotFound tests the nil result for an unknown id
func TestGetStudentNotFound(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM students s").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	student, err := db.GetStudent(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, student)
}

// TestQueryFacade tests the generic map-based query surface
func TestQueryFacade(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT name FROM schools").WillReturnRows(
		sqlmock.NewRows([]string{"name"}).AddRow("مدرسة النور").AddRow("مدرسة الرافدين"),
	)

	rows, err := db.Query(context.Background(), "SELECT name FROM schools")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "مدرسة النور", rows[0]["name"])
}

// TestUpdateFacade tests the affected-rows result
func TestUpdateFacade(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("UPDATE students SET status").
		WithArgs("متخرج", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := db.Update(context.Background(),
		"UPDATE students SET status = $1 WHERE id = $2", "متخرج", int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

// TestInsertFacade tests the RETURNING id contract
func TestInsertFacade(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("INSERT INTO installments").
		WithArgs(int64(7), 200000.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := db.Insert(context.Background(),
		"INSERT INTO installments (student_id, amount) VALUES ($1, $2) RETURNING id",
		int64(7), 200000.0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

// TestDeleteStaff tests the salaries-then-staff transaction
func TestDeleteStaff(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM salaries").
		WithArgs("teacher", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM teachers").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.DeleteStaff(context.Background(), domain.StaffTeacher, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDeleteStaffMissingRollsBack tests that a vanished staff row rolls
// the salary delete back
func TestDeleteStaffMissingRollsBack(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM salaries").
		WithArgs("employee", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM employees").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := db.DeleteStaff(context.Background(), domain.StaffEmployee, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDeleteStaffUnknownType tests the staff-type guard
func TestDeleteStaffUnknownType(t *testing.T) {
	db, _ := mockDB(t)

	err := db.DeleteStaff(context.Background(), domain.StaffType("janitor"), 1)
	assert.Error(t, err)
}

// TestSumSalaries tests the aggregate query and the both-types filter
func TestSumSalaries(t *testing.T) {
	db, mock := mockDB(t)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(from, to, "").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1250000.0))

	total, err := db.SumSalaries(context.Background(), "", from, to)
	require.NoError(t, err)
	assert.Equal(t, 1250000.0, total)
}
