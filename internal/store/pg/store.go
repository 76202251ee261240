package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"staffdesk.io/internal/errs"
	"staffdesk.io/internal/hr"
)

// Store implements hr.Store on PostgreSQL through database/sql.
type Store struct {
	db *sql.DB
}

var _ hr.Store = (*Store)(nil)

// Open connects using the pgx stdlib driver.
func Open(dsn string, maxOpen int) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(maxOpen/2, 1))
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() hr.UserRepo             { return userRepo{s.db} }
func (s *Store) Employees() hr.EmployeeRepo     { return employeeRepo{s.db} }
func (s *Store) Departments() hr.DepartmentRepo { return departmentRepo{s.db} }
func (s *Store) Attendance() hr.AttendanceRepo  { return attendanceRepo{s.db} }
func (s *Store) Leaves() hr.LeaveRepo           { return leaveRepo{s.db} }
func (s *Store) Payroll() hr.PayrollRepo        { return payrollRepo{s.db} }
func (s *Store) Projects() hr.ProjectRepo       { return projectRepo{s.db} }
func (s *Store) Tasks() hr.TaskRepo             { return taskRepo{s.db} }
func (s *Store) Reviews() hr.ReviewRepo         { return reviewRepo{s.db} }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// classify maps a database error, naming entity on a missing row.
func classify(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(err, errs.KindNotFound, entity+" not found")
	}
	return errs.FromDB(err)
}

// filter accumulates equality predicates for list queries.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) eq(col, v string) {
	if v == "" {
		return
	}
	f.args = append(f.args, v)
	f.clauses = append(f.clauses, fmt.Sprintf("%s = $%d", col, len(f.args)))
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " where " + strings.Join(f.clauses, " and ")
}

func queryList[T any](ctx context.Context, db *sql.DB, entity, query string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, entity)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classify(err, entity)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, entity)
	}
	return out, nil
}

func deleteByID(ctx context.Context, db *sql.DB, table, entity, id string) error {
	res, err := db.ExecContext(ctx, `delete from `+table+` where id = $1`, id)
	if err != nil {
		return classify(err, entity)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return classify(err, entity)
	}
	if aff == 0 {
		return errs.NotFound(entity + " not found")
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
