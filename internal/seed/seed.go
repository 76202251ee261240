// Package seed creates the default accounts and sample records used for
// local development and demos.
package seed

import (
	"context"
	"fmt"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/obs"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "123456"

// Account is one seeded login.
type Account struct {
	Name  string
	Email string
	Role  string
}

// Accounts are the logins Run guarantees.
var Accounts = []Account{
	{Name: "HR Manager", Email: "hr@company.com", Role: auth.RoleHR},
	{Name: "Administrator", Email: "admin@company.com", Role: auth.RoleAdmin},
	{Name: "Sample Employee", Email: "employee@company.com", Role: auth.RoleEmployee},
}

const (
	sampleDepartment = "Engineering"
	sampleEmployee   = "employee@company.com"
)

// Result reports what Run created. Existing records are left untouched.
type Result struct {
	Users      []string
	Department string
	Employee   string
}

// Run seeds svc's store. It is safe to call repeatedly.
func Run(ctx context.Context, svc *hr.Service) (Result, error) {
	var res Result
	dep, created, err := ensureDepartment(ctx, svc)
	if err != nil {
		return res, err
	}
	if created {
		res.Department = dep.ID
	}
	emp, created, err := ensureEmployee(ctx, svc, dep.ID)
	if err != nil {
		return res, err
	}
	if created {
		res.Employee = emp.ID
	}
	for _, a := range Accounts {
		link := ""
		if a.Email == sampleEmployee {
			link = emp.ID
		}
		ok, err := ensureUser(ctx, svc, a, link)
		if err != nil {
			return res, fmt.Errorf("seed %s: %w", a.Email, err)
		}
		if ok {
			res.Users = append(res.Users, a.Email)
		}
	}
	if res.Employee != "" {
		if _, err := svc.RefreshDepartmentCounts(ctx); err != nil {
			return res, err
		}
	}
	obs.Info("seed_complete", map[string]any{
		"users":      res.Users,
		"department": res.Department,
		"employee":   res.Employee,
	})
	return res, nil
}

func ensureDepartment(ctx context.Context, svc *hr.Service) (hr.Department, bool, error) {
	deps, err := svc.ListDepartments(ctx)
	if err != nil {
		return hr.Department{}, false, err
	}
	for _, d := range deps {
		if d.Name == sampleDepartment {
			return d, false, nil
		}
	}
	name, desc := sampleDepartment, "Product engineering"
	d, err := svc.CreateDepartment(ctx, hr.DepartmentInput{Name: &name, Description: &desc})
	return d, err == nil, err
}

func ensureEmployee(ctx context.Context, svc *hr.Service, departmentID string) (hr.Employee, bool, error) {
	emps, err := svc.ListEmployees(ctx, hr.EmployeeFilter{})
	if err != nil {
		return hr.Employee{}, false, err
	}
	for _, e := range emps {
		if e.Email == sampleEmployee {
			return e, false, nil
		}
	}
	var (
		name     = "Sample Employee"
		email    = sampleEmployee
		position = "Software Engineer"
		salary   = int64(5_000_000)
	)
	e, err := svc.CreateEmployee(ctx, hr.EmployeeInput{
		Name:         &name,
		Email:        &email,
		Position:     &position,
		DepartmentID: &departmentID,
		Salary:       &salary,
	})
	return e, err == nil, err
}

func ensureUser(ctx context.Context, svc *hr.Service, a Account, employeeID string) (bool, error) {
	if _, err := svc.Store().Users().GetByEmail(ctx, a.Email); err == nil {
		return false, nil
	} else if !errs.Is(err, errs.KindNotFound) {
		return false, err
	}
	name, email, role, pass := a.Name, a.Email, a.Role, DefaultPassword
	in := hr.RegisterInput{Name: &name, Email: &email, Password: &pass, Role: &role}
	if employeeID != "" {
		in.EmployeeID = &employeeID
	}
	if _, err := svc.Register(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}
