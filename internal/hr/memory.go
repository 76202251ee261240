package hr

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"staffdesk.io/internal/errs"
)

// memRepo is a map-backed Repo. All checks and writes for one resource
// happen under a single lock, so uniqueness holds under concurrency.
type memRepo[T any, F any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
	name  string
	id    func(T) string
	match func(T, F) bool
	// clash returns a classified error when v may not coexist with existing.
	clash func(existing, v T) error
	clone func(T) T
}

func newMemRepo[T any, F any](name string, id func(T) string, match func(T, F) bool) *memRepo[T, F] {
	return &memRepo[T, F]{
		rows:  make(map[string]T),
		name:  name,
		id:    id,
		match: match,
	}
}

func (m *memRepo[T, F]) copyOf(v T) T {
	if m.clone != nil {
		return m.clone(v)
	}
	return v
}

func (m *memRepo[T, F]) notFound() error {
	return errs.NotFound(m.name + " not found")
}

func (m *memRepo[T, F]) checkUnique(v T, self string) error {
	if m.clash == nil {
		return nil
	}
	for id, existing := range m.rows {
		if id == self {
			continue
		}
		if err := m.clash(existing, v); err != nil {
			return err
		}
	}
	return nil
}

func (m *memRepo[T, F]) Create(ctx context.Context, v T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, errs.Wrap(err, errs.KindUnexpected, "request cancelled")
	}
	id := m.id(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; ok {
		return zero, errs.Conflict(m.name + " already exists")
	}
	if err := m.checkUnique(v, ""); err != nil {
		return zero, err
	}
	m.rows[id] = m.copyOf(v)
	m.order = append(m.order, id)
	return v, nil
}

func (m *memRepo[T, F]) Get(ctx context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, m.notFound()
	}
	return m.copyOf(v), nil
}

// List returns matching rows, newest first.
func (m *memRepo[T, F]) List(ctx context.Context, f F) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]T, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		v := m.rows[m.order[i]]
		if m.match == nil || m.match(v, f) {
			res = append(res, m.copyOf(v))
		}
	}
	return res, nil
}

func (m *memRepo[T, F]) Update(ctx context.Context, v T) (T, error) {
	var zero T
	id := m.id(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return zero, m.notFound()
	}
	if err := m.checkUnique(v, id); err != nil {
		return zero, err
	}
	m.rows[id] = m.copyOf(v)
	return v, nil
}

func (m *memRepo[T, F]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return m.notFound()
	}
	delete(m.rows, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

// deleteWhere removes every row satisfying pred.
func (m *memRepo[T, F]) deleteWhere(pred func(T) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = slices.DeleteFunc(m.order, func(id string) bool {
		if pred(m.rows[id]) {
			delete(m.rows, id)
			return true
		}
		return false
	})
}

// modifyWhere applies fn to every row and keeps the rows it reports as changed.
func (m *memRepo[T, F]) modifyWhere(fn func(*T) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.rows {
		if fn(&v) {
			m.rows[id] = v
		}
	}
}

// find returns the newest row satisfying pred.
func (m *memRepo[T, F]) find(pred func(T) bool) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		if v := m.rows[m.order[i]]; pred(v) {
			return m.copyOf(v), true
		}
	}
	var zero T
	return zero, false
}

// eq reports whether a filter value is unset or equal to v.
func eq(filter, v string) bool {
	return filter == "" || filter == v
}

type memUsers struct {
	*memRepo[User, UserFilter]
}

func (m memUsers) GetByEmail(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	u, ok := m.find(func(u User) bool { return u.Email == email })
	if !ok {
		return User{}, m.notFound()
	}
	return u, nil
}

type memAttendance struct {
	*memRepo[Attendance, AttendanceFilter]
}

func (m memAttendance) FindInRange(ctx context.Context, employeeID string, from, to time.Time) (Attendance, bool, error) {
	a, ok := m.find(func(a Attendance) bool {
		return a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to)
	})
	return a, ok, nil
}

// The wrappers below apply the foreign keys of the SQL schema on delete so
// both stores leave the same rows behind.

type memEmployees struct {
	*memRepo[Employee, EmployeeFilter]
	s *InMemory
}

// Delete cascades to attendance, leaves, payroll and reviews and clears
// user links, department managers and task assignees.
func (m memEmployees) Delete(ctx context.Context, id string) error {
	if err := m.memRepo.Delete(ctx, id); err != nil {
		return err
	}
	m.s.attendance.deleteWhere(func(a Attendance) bool { return a.EmployeeID == id })
	m.s.leaves.deleteWhere(func(l Leave) bool { return l.EmployeeID == id })
	m.s.payroll.deleteWhere(func(p Payroll) bool { return p.EmployeeID == id })
	m.s.reviews.deleteWhere(func(r Review) bool { return r.EmployeeID == id })
	m.s.users.modifyWhere(func(u *User) bool {
		if u.EmployeeID != id {
			return false
		}
		u.EmployeeID = ""
		return true
	})
	m.s.departments.modifyWhere(func(d *Department) bool {
		if d.ManagerID != id {
			return false
		}
		d.ManagerID = ""
		return true
	})
	m.s.tasks.modifyWhere(func(t *Task) bool {
		if t.AssigneeID != id {
			return false
		}
		t.AssigneeID = ""
		return true
	})
	return nil
}

type memDepartments struct {
	*memRepo[Department, DepartmentFilter]
	s *InMemory
}

// Delete detaches the department's employees.
func (m memDepartments) Delete(ctx context.Context, id string) error {
	if err := m.memRepo.Delete(ctx, id); err != nil {
		return err
	}
	m.s.employees.modifyWhere(func(e *Employee) bool {
		if e.DepartmentID != id {
			return false
		}
		e.DepartmentID = ""
		return true
	})
	return nil
}

type memProjects struct {
	*memRepo[Project, ProjectFilter]
	s *InMemory
}

// Delete cascades to the project's tasks.
func (m memProjects) Delete(ctx context.Context, id string) error {
	if err := m.memRepo.Delete(ctx, id); err != nil {
		return err
	}
	m.s.tasks.deleteWhere(func(t Task) bool { return t.ProjectID == id })
	return nil
}

// InMemory is a Store kept in process memory, used in tests and when no
// database is configured.
type InMemory struct {
	users       memUsers
	employees   *memRepo[Employee, EmployeeFilter]
	departments *memRepo[Department, DepartmentFilter]
	attendance  memAttendance
	leaves      *memRepo[Leave, LeaveFilter]
	payroll     *memRepo[Payroll, PayrollFilter]
	projects    *memRepo[Project, ProjectFilter]
	tasks       *memRepo[Task, TaskFilter]
	reviews     *memRepo[Review, ReviewFilter]
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	users := newMemRepo("User", func(u User) string { return u.ID },
		func(u User, f UserFilter) bool { return eq(f.Role, u.Role) })
	users.clash = func(existing, v User) error {
		if existing.Email == v.Email {
			return errs.Conflict("User already exists")
		}
		return nil
	}

	employees := newMemRepo("Employee", func(e Employee) string { return e.ID },
		func(e Employee, f EmployeeFilter) bool {
			return eq(f.DepartmentID, e.DepartmentID) && eq(f.Status, e.Status)
		})
	employees.clash = func(existing, v Employee) error {
		if strings.EqualFold(existing.Email, v.Email) {
			return errs.Conflict("email already exists")
		}
		return nil
	}

	departments := newMemRepo[Department, DepartmentFilter]("Department", func(d Department) string { return d.ID }, nil)
	departments.clash = func(existing, v Department) error {
		if existing.Name == v.Name {
			return errs.Conflict("name already exists")
		}
		return nil
	}

	attendance := newMemRepo("Attendance", func(a Attendance) string { return a.ID },
		func(a Attendance, f AttendanceFilter) bool {
			return eq(f.EmployeeID, a.EmployeeID) && eq(f.Day, a.Day) && eq(f.Status, a.Status)
		})
	attendance.clash = func(existing, v Attendance) error {
		if existing.EmployeeID == v.EmployeeID && existing.Day == v.Day {
			return ErrAttendanceMarked
		}
		return nil
	}

	leaves := newMemRepo("Leave", func(l Leave) string { return l.ID },
		func(l Leave, f LeaveFilter) bool { return eq(f.EmployeeID, l.EmployeeID) && eq(f.Status, l.Status) })

	payroll := newMemRepo("Payroll", func(p Payroll) string { return p.ID },
		func(p Payroll, f PayrollFilter) bool {
			return eq(f.EmployeeID, p.EmployeeID) && eq(f.Month, p.Month) && eq(f.Status, p.Status)
		})
	payroll.clash = func(existing, v Payroll) error {
		if existing.EmployeeID == v.EmployeeID && existing.Month == v.Month {
			return errs.Conflict("Payroll already exists for this month")
		}
		return nil
	}

	projects := newMemRepo("Project", func(p Project) string { return p.ID },
		func(p Project, f ProjectFilter) bool { return eq(f.Status, p.Status) })
	projects.clone = func(p Project) Project {
		p.MemberIDs = slices.Clone(p.MemberIDs)
		return p
	}

	tasks := newMemRepo("Task", func(t Task) string { return t.ID },
		func(t Task, f TaskFilter) bool {
			return eq(f.ProjectID, t.ProjectID) && eq(f.AssigneeID, t.AssigneeID) && eq(f.Status, t.Status)
		})

	reviews := newMemRepo("Review", func(r Review) string { return r.ID },
		func(r Review, f ReviewFilter) bool { return eq(f.EmployeeID, r.EmployeeID) })

	return &InMemory{
		users:       memUsers{users},
		employees:   employees,
		departments: departments,
		attendance:  memAttendance{attendance},
		leaves:      leaves,
		payroll:     payroll,
		projects:    projects,
		tasks:       tasks,
		reviews:     reviews,
	}
}

func (s *InMemory) Users() UserRepo             { return s.users }
func (s *InMemory) Employees() EmployeeRepo     { return memEmployees{s.employees, s} }
func (s *InMemory) Departments() DepartmentRepo { return memDepartments{s.departments, s} }
func (s *InMemory) Attendance() AttendanceRepo  { return s.attendance }
func (s *InMemory) Leaves() LeaveRepo           { return s.leaves }
func (s *InMemory) Payroll() PayrollRepo        { return s.payroll }
func (s *InMemory) Projects() ProjectRepo       { return memProjects{s.projects, s} }
func (s *InMemory) Tasks() TaskRepo             { return s.tasks }
func (s *InMemory) Reviews() ReviewRepo         { return s.reviews }

func (s *InMemory) Ping(ctx context.Context) error { return ctx.Err() }
