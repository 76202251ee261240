package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const leaveColumns = `id, employee_id, type, start_date, end_date, reason, status, created_at, updated_at`

func scanLeave(row scanner) (hr.Leave, error) {
	var l hr.Leave
	err := row.Scan(&l.ID, &l.EmployeeID, &l.Type, &l.StartDate, &l.EndDate, &l.Reason, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

type leaveRepo struct{ db *sql.DB }

func (r leaveRepo) Create(ctx context.Context, l hr.Leave) (hr.Leave, error) {
	out, err := scanLeave(r.db.QueryRowContext(ctx, `
		insert into leaves (id, employee_id, type, start_date, end_date, reason, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning `+leaveColumns,
		l.ID, l.EmployeeID, l.Type, l.StartDate, l.EndDate, l.Reason, l.Status, l.CreatedAt, l.UpdatedAt))
	if err != nil {
		return hr.Leave{}, classify(err, "Leave")
	}
	return out, nil
}

func (r leaveRepo) Get(ctx context.Context, id string) (hr.Leave, error) {
	out, err := scanLeave(r.db.QueryRowContext(ctx, `select `+leaveColumns+` from leaves where id = $1`, id))
	if err != nil {
		return hr.Leave{}, classify(err, "Leave")
	}
	return out, nil
}

func (r leaveRepo) List(ctx context.Context, f hr.LeaveFilter) ([]hr.Leave, error) {
	var w filter
	w.eq("employee_id", f.EmployeeID)
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Leave", `select `+leaveColumns+` from leaves`+w.where()+` order by created_at desc`, w.args, scanLeave)
}

func (r leaveRepo) Update(ctx context.Context, l hr.Leave) (hr.Leave, error) {
	out, err := scanLeave(r.db.QueryRowContext(ctx, `
		update leaves set type = $2, start_date = $3, end_date = $4, reason = $5, status = $6, updated_at = $7
		where id = $1
		returning `+leaveColumns,
		l.ID, l.Type, l.StartDate, l.EndDate, l.Reason, l.Status, l.UpdatedAt))
	if err != nil {
		return hr.Leave{}, classify(err, "Leave")
	}
	return out, nil
}

func (r leaveRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "leaves", "Leave", id)
}
