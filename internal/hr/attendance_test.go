package hr

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/stream"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc   *Service
	store *InMemory
	now   time.Time
	loc   *time.Location
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	loc := time.FixedZone("UTC+5", 5*3600)
	f := &fixture{
		store: NewInMemory(),
		now:   time.Date(2025, 3, 14, 10, 30, 0, 0, loc),
		loc:   loc,
	}
	base := []Option{WithLocation(loc), WithClock(func() time.Time { return f.now })}
	f.svc = NewService(f.store, append(base, opts...)...)
	return f
}

func (f *fixture) employee(t *testing.T, name string) Employee {
	t.Helper()
	e, err := f.svc.CreateEmployee(context.Background(), EmployeeInput{
		Name:  ptr(name),
		Email: ptr(name + "@company.com"),
	})
	require.NoError(t, err)
	return e
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 22:00 UTC on the 1st is 03:00 on the 2nd at UTC+5.
	start, end := DayBounds(time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 1, 2, 23, 59, 59, 999_000_000, loc), end)
	assert.Equal(t, "2025-01-02", DayOf(time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC), loc))
}

func TestParseAttendanceStatus(t *testing.T) {
	cases := map[string]string{
		"PRESENT":  StatusPresent,
		"ABSENT":   StatusAbsent,
		"ON_LEAVE": StatusOnLeave,
		"present":  StatusPresent,
		"LATE":     StatusPresent,
		"":         StatusPresent,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAttendanceStatus(in), "input %q", in)
	}
}

func TestRecordAttendanceRejectsSecondMarkSameDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "alice")

	first, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Status: ptr("PRESENT")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", first.Day)
	assert.Equal(t, StatusPresent, first.Status)

	for _, status := range []string{"PRESENT", "ABSENT", "ON_LEAVE", "bogus"} {
		f.now = f.now.Add(time.Hour)
		_, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Status: ptr(status)})
		require.Error(t, err, "status %s", status)
		assert.ErrorIs(t, err, ErrAttendanceMarked)
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
		assert.Equal(t, "Attendance already marked for today", errs.Message(err))
	}

	recs, err := f.svc.ListAttendance(ctx, e.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, recs, 1, "rejected marks must not persist")
}

func TestRecordAttendanceNextDayAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "bob")

	_, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
	require.NoError(t, err)

	f.now = time.Date(2025, 3, 15, 0, 0, 0, 0, f.loc)
	next, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", next.Day)

	_, err = f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Date: ptr("2025-03-14")})
	assert.ErrorIs(t, err, ErrAttendanceMarked)
}

func TestRecordAttendanceCoercesUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "carol")

	rec, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Status: ptr("WORKING_FROM_HOME")})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, rec.Status)

	stored, err := f.svc.GetAttendance(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, stored.Status)
}

func TestRecordAttendanceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RecordAttendance(ctx, AttendanceInput{})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr("missing")})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	e := f.employee(t, "dave")
	_, err = f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Date: ptr("14/03/2025")})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestRecordAttendanceConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "erin")

	var (
		wg        sync.WaitGroup
		ok, dupes atomic.Int32
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
			switch {
			case err == nil:
				ok.Add(1)
			case errs.Is(err, errs.KindConflict):
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 31, dupes.Load())
}

// racingRepo hides existing records from the pre-insert check so the
// store's own uniqueness rule has to reject the duplicate.
type racingRepo struct {
	AttendanceRepo
}

func (racingRepo) FindInRange(context.Context, string, time.Time, time.Time) (Attendance, bool, error) {
	return Attendance{}, false, nil
}

type racingStore struct {
	*InMemory
}

func (s racingStore) Attendance() AttendanceRepo { return racingRepo{s.InMemory.Attendance()} }

func TestRecordAttendanceStoreConflictMapsToMarked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "frank")
	svc := NewService(racingStore{f.store}, WithLocation(f.loc), WithClock(func() time.Time { return f.now }))

	_, err := svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
	require.NoError(t, err)
	_, err = svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
	assert.ErrorIs(t, err, ErrAttendanceMarked)
}

func TestRecordAttendancePublishesEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed := stream.New()
	sub := feed.Subscribe(ctx)
	f := newFixture(t, WithPublisher(feed))
	e := f.employee(t, "gina")

	rec, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID)})
	require.NoError(t, err)

	select {
	case evt := <-sub:
		assert.Equal(t, "attendance.recorded", evt.Type)
		assert.Equal(t, rec, evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func TestAttendanceStatsAndToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.employee(t, "hana")
	b := f.employee(t, "ivan")
	_ = f.employee(t, "jules")

	_, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(a.ID)})
	require.NoError(t, err)
	_, err = f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(b.ID), Status: ptr("ABSENT")})
	require.NoError(t, err)

	st, err := f.svc.AttendanceStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, AttendanceStats{
		Date: "2025-03-14", TotalEmployees: 3, Present: 1, Absent: 1, Unmarked: 1,
		PresentPercentage: 33.33,
	}, st)

	today, err := f.svc.TodayAttendance(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	other, err := f.svc.AttendanceStats(ctx, "2025-03-13")
	require.NoError(t, err)
	assert.Equal(t, 3, other.Unmarked)
}

func TestAttendanceStatusFixedOnceRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.employee(t, "kai")
	rec, err := f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Status: ptr("ABSENT")})
	require.NoError(t, err)

	_, err = f.svc.RecordAttendance(ctx, AttendanceInput{EmployeeID: ptr(e.ID), Status: ptr("PRESENT")})
	assert.ErrorIs(t, err, ErrAttendanceMarked)

	got, err := f.svc.GetAttendance(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, got.Status)

	require.NoError(t, f.svc.DeleteAttendance(ctx, rec.ID))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(f.svc.DeleteAttendance(ctx, rec.ID)))
}
