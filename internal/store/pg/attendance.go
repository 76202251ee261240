package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
)

const attendanceColumns = `id, employee_id, date, day, status, created_at`

func scanAttendance(row scanner) (hr.Attendance, error) {
	var a hr.Attendance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Day, &a.Status, &a.CreatedAt)
	return a, err
}

type attendanceRepo struct{ db *sql.DB }

// Create relies on the unique (employee_id, day) index; a duplicate
// surfaces as hr.ErrAttendanceMarked.
func (r attendanceRepo) Create(ctx context.Context, a hr.Attendance) (hr.Attendance, error) {
	out, err := scanAttendance(r.db.QueryRowContext(ctx, `
		insert into attendance (id, employee_id, date, day, status, created_at)
		values ($1, $2, $3, $4, $5, $6)
		returning `+attendanceColumns,
		a.ID, a.EmployeeID, a.Date, a.Day, a.Status, a.CreatedAt))
	if err != nil {
		err = classify(err, "Attendance")
		if errs.Is(err, errs.KindConflict) {
			return hr.Attendance{}, hr.ErrAttendanceMarked
		}
		return hr.Attendance{}, err
	}
	return out, nil
}

func (r attendanceRepo) FindInRange(ctx context.Context, employeeID string, from, to time.Time) (hr.Attendance, bool, error) {
	out, err := scanAttendance(r.db.QueryRowContext(ctx, `
		select `+attendanceColumns+` from attendance
		where employee_id = $1 and date >= $2 and date <= $3
		order by date desc
		limit 1
	`, employeeID, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return hr.Attendance{}, false, nil
	}
	if err != nil {
		return hr.Attendance{}, false, classify(err, "Attendance")
	}
	return out, true, nil
}

func (r attendanceRepo) Get(ctx context.Context, id string) (hr.Attendance, error) {
	out, err := scanAttendance(r.db.QueryRowContext(ctx, `select `+attendanceColumns+` from attendance where id = $1`, id))
	if err != nil {
		return hr.Attendance{}, classify(err, "Attendance")
	}
	return out, nil
}

func (r attendanceRepo) List(ctx context.Context, f hr.AttendanceFilter) ([]hr.Attendance, error) {
	var w filter
	w.eq("employee_id", f.EmployeeID)
	w.eq("day", f.Day)
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Attendance", `select `+attendanceColumns+` from attendance`+w.where()+` order by date desc`, w.args, scanAttendance)
}

func (r attendanceRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "attendance", "Attendance", id)
}
