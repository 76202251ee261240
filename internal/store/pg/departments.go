package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const departmentColumns = `id, name, description, coalesce(manager_id, ''), employee_count, created_at, updated_at`

func scanDepartment(row scanner) (hr.Department, error) {
	var d hr.Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.ManagerID, &d.EmployeeCount, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

type departmentRepo struct{ db *sql.DB }

func (r departmentRepo) Create(ctx context.Context, d hr.Department) (hr.Department, error) {
	out, err := scanDepartment(r.db.QueryRowContext(ctx, `
		insert into departments (id, name, description, manager_id, employee_count, created_at, updated_at)
		values ($1, $2, $3, nullif($4, ''), $5, $6, $7)
		returning `+departmentColumns,
		d.ID, d.Name, d.Description, d.ManagerID, d.EmployeeCount, d.CreatedAt, d.UpdatedAt))
	if err != nil {
		return hr.Department{}, classify(err, "Department")
	}
	return out, nil
}

func (r departmentRepo) Get(ctx context.Context, id string) (hr.Department, error) {
	out, err := scanDepartment(r.db.QueryRowContext(ctx, `select `+departmentColumns+` from departments where id = $1`, id))
	if err != nil {
		return hr.Department{}, classify(err, "Department")
	}
	return out, nil
}

func (r departmentRepo) List(ctx context.Context, _ hr.DepartmentFilter) ([]hr.Department, error) {
	return queryList(ctx, r.db, "Department", `select `+departmentColumns+` from departments order by created_at desc`, nil, scanDepartment)
}

func (r departmentRepo) Update(ctx context.Context, d hr.Department) (hr.Department, error) {
	out, err := scanDepartment(r.db.QueryRowContext(ctx, `
		update departments set name = $2, description = $3, manager_id = nullif($4, ''), employee_count = $5, updated_at = $6
		where id = $1
		returning `+departmentColumns,
		d.ID, d.Name, d.Description, d.ManagerID, d.EmployeeCount, d.UpdatedAt))
	if err != nil {
		return hr.Department{}, classify(err, "Department")
	}
	return out, nil
}

func (r departmentRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "departments", "Department", id)
}
