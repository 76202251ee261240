package hr

import (
	"context"
	"math"
	"time"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/obs"
)

// ErrAttendanceMarked rejects a second record for the same employee and day.
var ErrAttendanceMarked = errs.Conflict("Attendance already marked for today")

// AttendanceInput is the payload for marking attendance. Date defaults to now.
type AttendanceInput struct {
	EmployeeID *string `json:"employeeId"`
	Date       *string `json:"date"`
	Status     *string `json:"status"`
}

// DayBounds returns the first and last millisecond of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// DayOf formats t's calendar day in loc as YYYY-MM-DD.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// RecordAttendance marks an employee for a day. At most one record exists
// per employee per calendar day; a duplicate yields ErrAttendanceMarked and
// writes nothing. Unknown statuses are stored as PRESENT.
func (s *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (Attendance, error) {
	empID, err := required("employeeId", in.EmployeeID)
	if err != nil {
		return Attendance{}, err
	}
	if err := s.ensureEmployee(ctx, empID); err != nil {
		return Attendance{}, err
	}
	date := s.now()
	if v := str(in.Date); v != "" {
		if date, err = s.parseDate("date", v); err != nil {
			return Attendance{}, err
		}
	}
	from, to := DayBounds(date, s.loc)
	if _, exists, err := s.store.Attendance().FindInRange(ctx, empID, from, to); err != nil {
		return Attendance{}, err
	} else if exists {
		obs.AttendanceConflict()
		return Attendance{}, ErrAttendanceMarked
	}

	id, now := s.stamp()
	rec := Attendance{
		ID:         id,
		EmployeeID: empID,
		Date:       date.UTC(),
		Day:        DayOf(date, s.loc),
		Status:     ParseAttendanceStatus(str(in.Status)),
		CreatedAt:  now,
	}
	out, err := s.store.Attendance().Create(ctx, rec)
	if err != nil {
		// A concurrent insert won the race; the store's uniqueness rule caught it.
		if errs.Is(err, errs.KindConflict) {
			obs.AttendanceConflict()
			return Attendance{}, ErrAttendanceMarked
		}
		return Attendance{}, err
	}
	obs.AttendanceRecorded(out.Status)
	s.invalidate(ctx, statsAttendanceKey(out.Day), statsDashboard)
	s.publish("attendance.recorded", out)
	return out, nil
}

func (s *Service) GetAttendance(ctx context.Context, id string) (Attendance, error) {
	return s.store.Attendance().Get(ctx, id)
}

// ListAttendance lists records. A date filter (YYYY-MM-DD) selects one calendar day.
func (s *Service) ListAttendance(ctx context.Context, employeeID, date, status string) ([]Attendance, error) {
	f := AttendanceFilter{EmployeeID: employeeID, Status: status}
	if date != "" {
		t, err := s.parseDate("date", date)
		if err != nil {
			return nil, err
		}
		f.Day = DayOf(t, s.loc)
	}
	return s.store.Attendance().List(ctx, f)
}

// TodayAttendance lists records for the current calendar day.
func (s *Service) TodayAttendance(ctx context.Context) ([]Attendance, error) {
	return s.store.Attendance().List(ctx, AttendanceFilter{Day: DayOf(s.now(), s.loc)})
}

func (s *Service) DeleteAttendance(ctx context.Context, id string) error {
	a, err := s.store.Attendance().Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Attendance().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsAttendanceKey(a.Day), statsDashboard)
	return nil
}

// AttendanceStats summarizes one calendar day.
type AttendanceStats struct {
	Date              string  `json:"date"`
	TotalEmployees    int     `json:"totalEmployees"`
	Present           int     `json:"present"`
	Absent            int     `json:"absent"`
	OnLeave           int     `json:"onLeave"`
	Unmarked          int     `json:"unmarked"`
	PresentPercentage float64 `json:"presentPercentage"`
}

// AttendanceStats reports counts for date (YYYY-MM-DD), or today when empty.
func (s *Service) AttendanceStats(ctx context.Context, date string) (AttendanceStats, error) {
	day := DayOf(s.now(), s.loc)
	if date != "" {
		t, err := s.parseDate("date", date)
		if err != nil {
			return AttendanceStats{}, err
		}
		day = DayOf(t, s.loc)
	}
	return cached(ctx, s, statsAttendanceKey(day), func() (AttendanceStats, error) {
		emps, err := s.store.Employees().List(ctx, EmployeeFilter{})
		if err != nil {
			return AttendanceStats{}, err
		}
		recs, err := s.store.Attendance().List(ctx, AttendanceFilter{Day: day})
		if err != nil {
			return AttendanceStats{}, err
		}
		by := countBy(recs, func(a Attendance) string { return a.Status })
		st := AttendanceStats{
			Date:           day,
			TotalEmployees: len(emps),
			Present:        by[StatusPresent],
			Absent:         by[StatusAbsent],
			OnLeave:        by[StatusOnLeave],
		}
		st.Unmarked = max(st.TotalEmployees-len(recs), 0)
		if st.TotalEmployees > 0 {
			pct := float64(st.Present) / float64(st.TotalEmployees) * 100
			st.PresentPercentage = math.Round(pct*100) / 100
		}
		return st, nil
	})
}
