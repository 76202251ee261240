package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const employeeColumns = `id, name, email, phone, position, coalesce(department_id, ''), salary, date_of_joining, status, created_at, updated_at`

func scanEmployee(row scanner) (hr.Employee, error) {
	var e hr.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Position, &e.DepartmentID,
		&e.Salary, &e.DateOfJoining, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

type employeeRepo struct{ db *sql.DB }

func (r employeeRepo) Create(ctx context.Context, e hr.Employee) (hr.Employee, error) {
	out, err := scanEmployee(r.db.QueryRowContext(ctx, `
		insert into employees (id, name, email, phone, position, department_id, salary, date_of_joining, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, nullif($6, ''), $7, $8, $9, $10, $11)
		returning `+employeeColumns,
		e.ID, e.Name, e.Email, e.Phone, e.Position, e.DepartmentID, e.Salary, e.DateOfJoining, e.Status, e.CreatedAt, e.UpdatedAt))
	if err != nil {
		return hr.Employee{}, classify(err, "Employee")
	}
	return out, nil
}

func (r employeeRepo) Get(ctx context.Context, id string) (hr.Employee, error) {
	out, err := scanEmployee(r.db.QueryRowContext(ctx, `select `+employeeColumns+` from employees where id = $1`, id))
	if err != nil {
		return hr.Employee{}, classify(err, "Employee")
	}
	return out, nil
}

func (r employeeRepo) List(ctx context.Context, f hr.EmployeeFilter) ([]hr.Employee, error) {
	var w filter
	w.eq("department_id", f.DepartmentID)
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Employee", `select `+employeeColumns+` from employees`+w.where()+` order by created_at desc`, w.args, scanEmployee)
}

func (r employeeRepo) Update(ctx context.Context, e hr.Employee) (hr.Employee, error) {
	out, err := scanEmployee(r.db.QueryRowContext(ctx, `
		update employees set name = $2, email = $3, phone = $4, position = $5, department_id = nullif($6, ''),
			salary = $7, date_of_joining = $8, status = $9, updated_at = $10
		where id = $1
		returning `+employeeColumns,
		e.ID, e.Name, e.Email, e.Phone, e.Position, e.DepartmentID, e.Salary, e.DateOfJoining, e.Status, e.UpdatedAt))
	if err != nil {
		return hr.Employee{}, classify(err, "Employee")
	}
	return out, nil
}

func (r employeeRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "employees", "Employee", id)
}
