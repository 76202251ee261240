package hr

import (
	"context"

	"staffdesk.io/internal/errs"
)

// EmployeeInput carries create and update fields. Nil fields are left
// unchanged on update.
type EmployeeInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Position      *string `json:"position"`
	DepartmentID  *string `json:"departmentId"`
	Salary        *int64  `json:"salary"`
	DateOfJoining *string `json:"dateOfJoining"`
	Status        *string `json:"status"`
}

func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (Employee, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return Employee{}, err
	}
	email, err := required("email", in.Email)
	if err != nil {
		return Employee{}, err
	}
	id, now := s.stamp()
	e := Employee{
		ID:            id,
		Name:          name,
		Email:         NormalizeEmail(email),
		Phone:         str(in.Phone),
		Position:      str(in.Position),
		Status:        coerce(str(in.Status), EmployeeStatuses),
		DateOfJoining: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.applyEmployee(ctx, &e, in); err != nil {
		return Employee{}, err
	}
	out, err := s.store.Employees().Create(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	s.invalidate(ctx, statsEmployees, statsDepartments, statsDashboard)
	return out, nil
}

func (s *Service) applyEmployee(ctx context.Context, e *Employee, in EmployeeInput) error {
	if in.Salary != nil {
		if *in.Salary < 0 {
			return errs.Validation("salary", "salary must not be negative")
		}
		e.Salary = *in.Salary
	}
	if in.DateOfJoining != nil && str(in.DateOfJoining) != "" {
		t, err := s.parseDate("dateOfJoining", *in.DateOfJoining)
		if err != nil {
			return err
		}
		e.DateOfJoining = t.UTC()
	}
	if in.DepartmentID != nil {
		dep := str(in.DepartmentID)
		if dep != "" {
			if _, err := s.store.Departments().Get(ctx, dep); err != nil {
				if errs.Is(err, errs.KindNotFound) {
					return errs.Validation("departmentId", "department does not exist")
				}
				return err
			}
		}
		e.DepartmentID = dep
	}
	return nil
}

func (s *Service) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return s.store.Employees().Get(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, f EmployeeFilter) ([]Employee, error) {
	return s.store.Employees().List(ctx, f)
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	e, err := s.store.Employees().Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	setStr(&e.Name, in.Name)
	if in.Email != nil {
		e.Email = NormalizeEmail(*in.Email)
	}
	setStr(&e.Phone, in.Phone)
	setStr(&e.Position, in.Position)
	if in.Status != nil {
		e.Status = coerce(*in.Status, EmployeeStatuses)
	}
	if err := s.applyEmployee(ctx, &e, in); err != nil {
		return Employee{}, err
	}
	if e.Name == "" || e.Email == "" {
		return Employee{}, errs.Validation("name", "name and email must not be empty")
	}
	e.UpdatedAt = s.now().UTC()
	out, err := s.store.Employees().Update(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	s.invalidate(ctx, statsEmployees, statsDepartments, statsDashboard)
	return out, nil
}

// DeleteEmployee removes the employee together with their attendance,
// leaves, payroll and reviews.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.store.Employees().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsEmployees, statsDepartments, statsLeaves, statsTasks,
		statsAttendanceKey(DayOf(s.now(), s.loc)), statsDashboard)
	return nil
}

// EmployeeStats summarizes headcount.
type EmployeeStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	ByDepartment map[string]int `json:"byDepartment"`
}

func (s *Service) EmployeeStats(ctx context.Context) (EmployeeStats, error) {
	return cached(ctx, s, statsEmployees, func() (EmployeeStats, error) {
		list, err := s.store.Employees().List(ctx, EmployeeFilter{})
		if err != nil {
			return EmployeeStats{}, err
		}
		sc := statusCount(list, EmployeeStatuses, func(e Employee) string { return e.Status })
		return EmployeeStats{
			Total:        sc.Total,
			ByStatus:     sc.ByStatus,
			ByDepartment: countBy(list, func(e Employee) string {
				if e.DepartmentID == "" {
					return "unassigned"
				}
				return e.DepartmentID
			}),
		}, nil
	})
}
