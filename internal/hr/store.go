package hr

import (
	"context"
	"time"

	"staffdesk.io/internal/stream"
)

// Repo is the persistence contract shared by every resource. Create and
// Update persist the record as given; ids and timestamps are assigned by
// the Service. Missing records surface as errs.KindNotFound, uniqueness
// violations as errs.KindConflict.
type Repo[T any, F any] interface {
	Create(ctx context.Context, v T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context, f F) ([]T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

type UserFilter struct {
	Role string
}

type EmployeeFilter struct {
	DepartmentID string
	Status       string
}

type DepartmentFilter struct{}

type AttendanceFilter struct {
	EmployeeID string
	Day        string
	Status     string
}

type LeaveFilter struct {
	EmployeeID string
	Status     string
}

type PayrollFilter struct {
	EmployeeID string
	Month      string
	Status     string
}

type ProjectFilter struct {
	Status string
}

type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     string
}

type ReviewFilter struct {
	EmployeeID string
}

type UserRepo interface {
	Repo[User, UserFilter]
	GetByEmail(ctx context.Context, email string) (User, error)
}

type EmployeeRepo interface {
	Repo[Employee, EmployeeFilter]
}

type DepartmentRepo interface {
	Repo[Department, DepartmentFilter]
}

// AttendanceRepo has no Update: a record's status is fixed once created.
// Create must refuse a second record for the same employee and day.
type AttendanceRepo interface {
	Create(ctx context.Context, a Attendance) (Attendance, error)
	Get(ctx context.Context, id string) (Attendance, error)
	List(ctx context.Context, f AttendanceFilter) ([]Attendance, error)
	Delete(ctx context.Context, id string) error
	FindInRange(ctx context.Context, employeeID string, from, to time.Time) (Attendance, bool, error)
}

type LeaveRepo interface {
	Repo[Leave, LeaveFilter]
}

type PayrollRepo interface {
	Repo[Payroll, PayrollFilter]
}

type ProjectRepo interface {
	Repo[Project, ProjectFilter]
}

type TaskRepo interface {
	Repo[Task, TaskFilter]
}

type ReviewRepo interface {
	Repo[Review, ReviewFilter]
}

// Store groups the repositories backing the Service.
type Store interface {
	Users() UserRepo
	Employees() EmployeeRepo
	Departments() DepartmentRepo
	Attendance() AttendanceRepo
	Leaves() LeaveRepo
	Payroll() PayrollRepo
	Projects() ProjectRepo
	Tasks() TaskRepo
	Reviews() ReviewRepo
	Ping(ctx context.Context) error
}

//go:generate mockgen -destination=statscache_mock_test.go -package=hr . StatsCache

// StatsCache memoizes aggregate responses. Implementations must treat every
// failure as a miss; the Store stays the source of truth.
type StatsCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher receives domain events for live subscribers.
type Publisher interface {
	Publish(evt stream.Event)
}
