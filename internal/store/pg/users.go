package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const userColumns = `id, name, email, password_hash, role, coalesce(employee_id, ''), created_at`

func scanUser(row scanner) (hr.User, error) {
	var u hr.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.EmployeeID, &u.CreatedAt)
	return u, err
}

type userRepo struct{ db *sql.DB }

func (r userRepo) Create(ctx context.Context, u hr.User) (hr.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, `
		insert into users (id, name, email, password_hash, role, employee_id, created_at)
		values ($1, $2, $3, $4, $5, nullif($6, ''), $7)
		returning `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.EmployeeID, u.CreatedAt))
	if err != nil {
		return hr.User{}, classify(err, "User")
	}
	return out, nil
}

func (r userRepo) Get(ctx context.Context, id string) (hr.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id))
	if err != nil {
		return hr.User{}, classify(err, "User")
	}
	return out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (hr.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, hr.NormalizeEmail(email)))
	if err != nil {
		return hr.User{}, classify(err, "User")
	}
	return out, nil
}

func (r userRepo) List(ctx context.Context, f hr.UserFilter) ([]hr.User, error) {
	var w filter
	w.eq("role", f.Role)
	return queryList(ctx, r.db, "User", `select `+userColumns+` from users`+w.where()+` order by created_at desc`, w.args, scanUser)
}

func (r userRepo) Update(ctx context.Context, u hr.User) (hr.User, error) {
	out, err := scanUser(r.db.QueryRowContext(ctx, `
		update users set name = $2, email = $3, password_hash = $4, role = $5, employee_id = nullif($6, '')
		where id = $1
		returning `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.EmployeeID))
	if err != nil {
		return hr.User{}, classify(err, "User")
	}
	return out, nil
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "users", "User", id)
}
