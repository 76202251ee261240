package hr

import (
	"context"
	"time"

	"staffdesk.io/internal/errs"
)

type PayrollInput struct {
	EmployeeID  *string `json:"employeeId"`
	Month       *string `json:"month"`
	BasicSalary *int64  `json:"basicSalary"`
	Allowances  *int64  `json:"allowances"`
	Deductions  *int64  `json:"deductions"`
	Status      *string `json:"status"`
}

const monthLayout = "2006-01"

// NetSalary is basic + allowances - deductions, in minor units.
func NetSalary(basic, allowances, deductions int64) int64 {
	return basic + allowances - deductions
}

// CreatePayroll issues a pay slip. One slip per employee per month.
func (s *Service) CreatePayroll(ctx context.Context, in PayrollInput) (Payroll, error) {
	empID, err := required("employeeId", in.EmployeeID)
	if err != nil {
		return Payroll{}, err
	}
	month, err := required("month", in.Month)
	if err != nil {
		return Payroll{}, err
	}
	if _, err := time.Parse(monthLayout, month); err != nil {
		return Payroll{}, errs.Validation("month", "month must be YYYY-MM")
	}
	if in.BasicSalary == nil {
		return Payroll{}, errs.Validation("basicSalary", "basicSalary is required")
	}
	if err := s.ensureEmployee(ctx, empID); err != nil {
		return Payroll{}, err
	}
	id, now := s.stamp()
	p := Payroll{
		ID:         id,
		EmployeeID: empID,
		Month:      month,
		Status:     coerce(str(in.Status), PayrollStatuses),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := applyAmounts(&p, in); err != nil {
		return Payroll{}, err
	}
	if p.Status == PayrollPaid {
		p.PaidAt = &now
	}
	return s.store.Payroll().Create(ctx, p)
}

func applyAmounts(p *Payroll, in PayrollInput) error {
	for _, f := range []struct {
		name string
		src  *int64
		dst  *int64
	}{
		{"basicSalary", in.BasicSalary, &p.BasicSalary},
		{"allowances", in.Allowances, &p.Allowances},
		{"deductions", in.Deductions, &p.Deductions},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return errs.Validation(f.name, f.name+" must not be negative")
		}
		*f.dst = *f.src
	}
	p.NetSalary = NetSalary(p.BasicSalary, p.Allowances, p.Deductions)
	return nil
}

func (s *Service) GetPayroll(ctx context.Context, id string) (Payroll, error) {
	return s.store.Payroll().Get(ctx, id)
}

func (s *Service) ListPayroll(ctx context.Context, f PayrollFilter) ([]Payroll, error) {
	return s.store.Payroll().List(ctx, f)
}

func (s *Service) UpdatePayroll(ctx context.Context, id string, in PayrollInput) (Payroll, error) {
	p, err := s.store.Payroll().Get(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	if err := applyAmounts(&p, in); err != nil {
		return Payroll{}, err
	}
	if in.Status != nil {
		p.Status = coerce(*in.Status, PayrollStatuses)
		if p.Status == PayrollPending {
			p.PaidAt = nil
		}
	}
	now := s.now().UTC()
	if p.Status == PayrollPaid && p.PaidAt == nil {
		p.PaidAt = &now
	}
	p.UpdatedAt = now
	return s.store.Payroll().Update(ctx, p)
}

// PayPayroll marks a slip PAID at the current time.
func (s *Service) PayPayroll(ctx context.Context, id string) (Payroll, error) {
	p, err := s.store.Payroll().Get(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	if p.Status == PayrollPaid {
		return Payroll{}, errs.Conflict("Payroll already paid")
	}
	now := s.now().UTC()
	p.Status = PayrollPaid
	p.PaidAt = &now
	p.UpdatedAt = now
	out, err := s.store.Payroll().Update(ctx, p)
	if err != nil {
		return Payroll{}, err
	}
	s.publish("payroll.paid", out)
	return out, nil
}

func (s *Service) DeletePayroll(ctx context.Context, id string) error {
	return s.store.Payroll().Delete(ctx, id)
}
