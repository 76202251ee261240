package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
)

const payrollColumns = `id, employee_id, month, basic_salary, allowances, deductions, net_salary, status, paid_at, created_at, updated_at`

func scanPayroll(row scanner) (hr.Payroll, error) {
	var (
		p      hr.Payroll
		paidAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.EmployeeID, &p.Month, &p.BasicSalary, &p.Allowances, &p.Deductions,
		&p.NetSalary, &p.Status, &paidAt, &p.CreatedAt, &p.UpdatedAt)
	p.PaidAt = timePtr(paidAt)
	return p, err
}

type payrollRepo struct{ db *sql.DB }

func (r payrollRepo) Create(ctx context.Context, p hr.Payroll) (hr.Payroll, error) {
	out, err := scanPayroll(r.db.QueryRowContext(ctx, `
		insert into payroll (id, employee_id, month, basic_salary, allowances, deductions, net_salary, status, paid_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning `+payrollColumns,
		p.ID, p.EmployeeID, p.Month, p.BasicSalary, p.Allowances, p.Deductions, p.NetSalary, p.Status,
		nullTime(p.PaidAt), p.CreatedAt, p.UpdatedAt))
	if err != nil {
		err = classify(err, "Payroll")
		if errs.Is(err, errs.KindConflict) {
			return hr.Payroll{}, errs.Conflict("Payroll already exists for this month")
		}
		return hr.Payroll{}, err
	}
	return out, nil
}

func (r payrollRepo) Get(ctx context.Context, id string) (hr.Payroll, error) {
	out, err := scanPayroll(r.db.QueryRowContext(ctx, `select `+payrollColumns+` from payroll where id = $1`, id))
	if err != nil {
		return hr.Payroll{}, classify(err, "Payroll")
	}
	return out, nil
}

func (r payrollRepo) List(ctx context.Context, f hr.PayrollFilter) ([]hr.Payroll, error) {
	var w filter
	w.eq("employee_id", f.EmployeeID)
	w.eq("month", f.Month)
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Payroll", `select `+payrollColumns+` from payroll`+w.where()+` order by month desc, created_at desc`, w.args, scanPayroll)
}

func (r payrollRepo) Update(ctx context.Context, p hr.Payroll) (hr.Payroll, error) {
	out, err := scanPayroll(r.db.QueryRowContext(ctx, `
		update payroll set basic_salary = $2, allowances = $3, deductions = $4, net_salary = $5,
			status = $6, paid_at = $7, updated_at = $8
		where id = $1
		returning `+payrollColumns,
		p.ID, p.BasicSalary, p.Allowances, p.Deductions, p.NetSalary, p.Status, nullTime(p.PaidAt), p.UpdatedAt))
	if err != nil {
		return hr.Payroll{}, classify(err, "Payroll")
	}
	return out, nil
}

func (r payrollRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "payroll", "Payroll", id)
}
