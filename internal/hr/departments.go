package hr

import (
	"context"
	"sort"

	"staffdesk.io/internal/errs"
)

type DepartmentInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"managerId"`
}

func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (Department, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return Department{}, err
	}
	id, now := s.stamp()
	d := Department{
		ID:          id,
		Name:        name,
		Description: str(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applyManager(ctx, &d, in.ManagerID); err != nil {
		return Department{}, err
	}
	out, err := s.store.Departments().Create(ctx, d)
	if err != nil {
		return Department{}, err
	}
	s.invalidate(ctx, statsDepartments, statsDashboard)
	return out, nil
}

func (s *Service) applyManager(ctx context.Context, d *Department, manager *string) error {
	if manager == nil {
		return nil
	}
	m := str(manager)
	if m != "" {
		if err := s.ensureEmployee(ctx, m); err != nil {
			if errs.Is(err, errs.KindNotFound) {
				return errs.Validation("managerId", "manager does not exist")
			}
			return err
		}
	}
	d.ManagerID = m
	return nil
}

func (s *Service) GetDepartment(ctx context.Context, id string) (Department, error) {
	return s.store.Departments().Get(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.Departments().List(ctx, DepartmentFilter{})
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, in DepartmentInput) (Department, error) {
	d, err := s.store.Departments().Get(ctx, id)
	if err != nil {
		return Department{}, err
	}
	setStr(&d.Name, in.Name)
	if d.Name == "" {
		return Department{}, errs.Validation("name", "name is required")
	}
	setStr(&d.Description, in.Description)
	if err := s.applyManager(ctx, &d, in.ManagerID); err != nil {
		return Department{}, err
	}
	d.UpdatedAt = s.now().UTC()
	out, err := s.store.Departments().Update(ctx, d)
	if err != nil {
		return Department{}, err
	}
	s.invalidate(ctx, statsDepartments)
	return out, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.store.Departments().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsDepartments, statsEmployees, statsDashboard)
	return nil
}

// RefreshDepartmentCounts recounts employees per department and stores the
// result in each department's EmployeeCount.
func (s *Service) RefreshDepartmentCounts(ctx context.Context) ([]Department, error) {
	emps, err := s.store.Employees().List(ctx, EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	counts := countBy(emps, func(e Employee) string { return e.DepartmentID })
	deps, err := s.store.Departments().List(ctx, DepartmentFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := make([]Department, 0, len(deps))
	for _, d := range deps {
		if d.EmployeeCount != counts[d.ID] {
			d.EmployeeCount = counts[d.ID]
			d.UpdatedAt = now
			if d, err = s.store.Departments().Update(ctx, d); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
	}
	s.invalidate(ctx, statsDepartments)
	return out, nil
}

// DepartmentStat is one department's headcount.
type DepartmentStat struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int    `json:"employeeCount"`
}

// DepartmentStats reports live headcount per department, ordered by name.
func (s *Service) DepartmentStats(ctx context.Context) ([]DepartmentStat, error) {
	return cached(ctx, s, statsDepartments, func() ([]DepartmentStat, error) {
		emps, err := s.store.Employees().List(ctx, EmployeeFilter{})
		if err != nil {
			return nil, err
		}
		counts := countBy(emps, func(e Employee) string { return e.DepartmentID })
		deps, err := s.store.Departments().List(ctx, DepartmentFilter{})
		if err != nil {
			return nil, err
		}
		out := make([]DepartmentStat, 0, len(deps))
		for _, d := range deps {
			out = append(out, DepartmentStat{ID: d.ID, Name: d.Name, EmployeeCount: counts[d.ID]})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, nil
	})
}
