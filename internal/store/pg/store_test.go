package pg

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db), mock
}

var (
	attendanceCols = []string{"id", "employee_id", "date", "day", "status", "created_at"}
	employeeCols   = []string{"id", "name", "email", "phone", "position", "department_id", "salary", "date_of_joining", "status", "created_at", "updated_at"}
)

func TestAttendanceCreateUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2025, 3, 14, 5, 0, 0, 0, time.UTC)

	mock.ExpectQuery("insert into attendance").
		WithArgs("A1", "E1", now, "2025-03-14", hr.StatusPresent, now).
		WillReturnError(&pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: "Key (employee_id, day)=(E1, 2025-03-14) already exists.",
		})

	_, err := s.Attendance().Create(context.Background(), hr.Attendance{
		ID: "A1", EmployeeID: "E1", Date: now, Day: "2025-03-14", Status: hr.StatusPresent, CreatedAt: now,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, hr.ErrAttendanceMarked)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestAttendanceFindInRange(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()
	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery(`from attendance\s+where employee_id = \$1 and date >= \$2 and date <= \$3`).
		WithArgs("E1", from, to).
		WillReturnError(sql.ErrNoRows)
	_, found, err := s.Attendance().FindInRange(ctx, "E1", from, to)
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectQuery("from attendance").
		WithArgs("E1", from, to).
		WillReturnRows(sqlmock.NewRows(attendanceCols).AddRow("A1", "E1", from.Add(time.Hour), "2025-03-14", "ABSENT", from))
	rec, found, err := s.Attendance().FindInRange(ctx, "E1", from, to)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "A1", rec.ID)
	assert.Equal(t, "ABSENT", rec.Status)
}

func TestEmployeeGetNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("from employees where id = ").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := s.Employees().Get(context.Background(), "missing")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "Employee not found", errs.Message(err))
}

func TestEmployeeListFilters(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`from employees where department_id = \$1 and status = \$2 order by created_at desc`).
		WithArgs("D1", "ACTIVE").
		WillReturnRows(sqlmock.NewRows(employeeCols).
			AddRow("E1", "Ann", "ann@x.io", "", "Dev", "D1", int64(1000), now, "ACTIVE", now, now).
			AddRow("E2", "Ben", "ben@x.io", "", "QA", "D1", int64(900), now, "ACTIVE", now, now))

	list, err := s.Employees().List(context.Background(), hr.EmployeeFilter{DepartmentID: "D1", Status: "ACTIVE"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ben", list[1].Name)
	assert.EqualValues(t, 900, list[1].Salary)
}

func TestEmployeeListEmptyIsNotNil(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`select .* from employees order by created_at desc`).
		WillReturnRows(sqlmock.NewRows(employeeCols))

	list, err := s.Employees().List(context.Background(), hr.EmployeeFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEmployeeCreateDuplicateEmail(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("insert into employees").
		WillReturnError(&pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: "Key (email)=(ann@x.io) already exists.",
		})

	_, err := s.Employees().Create(context.Background(), hr.Employee{ID: "E1", Name: "Ann", Email: "ann@x.io"})
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindConflict, e.Kind)
	assert.Equal(t, "email", e.Field)
	assert.Equal(t, "email already exists", e.Message)
}

func TestDeleteMissingRow(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("delete from leaves where id = ").WithArgs("L1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Leaves().Delete(context.Background(), "L1")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "Leave not found", errs.Message(err))
}

func TestProjectMembersRoundTrip(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()
	cols := []string{"id", "name", "description", "status", "start_date", "end_date", "member_ids", "created_at", "updated_at"}

	mock.ExpectQuery("insert into projects").
		WithArgs("P1", "Alpha", "", "ACTIVE", now, sqlmock.AnyArg(), []byte(`["E1","E2"]`), now, now).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("P1", "Alpha", "", "ACTIVE", now, nil, []byte(`["E1","E2"]`), now, now))

	p, err := s.Projects().Create(context.Background(), hr.Project{
		ID: "P1", Name: "Alpha", Status: "ACTIVE", StartDate: now, MemberIDs: []string{"E1", "E2"}, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"E1", "E2"}, p.MemberIDs)
	assert.Nil(t, p.EndDate)
}

func TestPayrollDuplicateMonth(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("insert into payroll").
		WillReturnError(&pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: "Key (employee_id, month)=(E1, 2025-03) already exists.",
		})

	_, err := s.Payroll().Create(context.Background(), hr.Payroll{ID: "P1", EmployeeID: "E1", Month: "2025-03"})
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	assert.Equal(t, "Payroll already exists for this month", errs.Message(err))
}

func TestForeignKeyViolationIsValidation(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("insert into tasks").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	_, err := s.Tasks().Create(context.Background(), hr.Task{ID: "T1", ProjectID: "gone", Title: "x"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestServiceRecordAttendanceOverPostgres(t *testing.T) {
	s, mock := newMockStore(t)
	loc := time.UTC
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, loc)
	svc := hr.NewService(s, hr.WithLocation(loc), hr.WithClock(func() time.Time { return now }))
	start, end := hr.DayBounds(now, loc)

	mock.ExpectQuery("from employees where id = ").WithArgs("E1").
		WillReturnRows(sqlmock.NewRows(employeeCols).AddRow("E1", "Ann", "ann@x.io", "", "Dev", "", int64(0), now, "ACTIVE", now, now))
	mock.ExpectQuery("from attendance").WithArgs("E1", start, end).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("insert into attendance").
		WithArgs(sqlmock.AnyArg(), "E1", now, "2025-03-14", hr.StatusPresent, now).
		WillReturnRows(sqlmock.NewRows(attendanceCols).AddRow("A1", "E1", now, "2025-03-14", hr.StatusPresent, now))

	status := "HOLIDAY"
	employee := "E1"
	rec, err := svc.RecordAttendance(context.Background(), hr.AttendanceInput{EmployeeID: &employee, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, hr.StatusPresent, rec.Status)
	assert.Equal(t, "2025-03-14", rec.Day)
}
