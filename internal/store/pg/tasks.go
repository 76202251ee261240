package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const taskColumns = `id, project_id, title, description, coalesce(assignee_id, ''), status, priority, due_date, created_at, updated_at`

func scanTask(row scanner) (hr.Task, error) {
	var (
		t   hr.Task
		due sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssigneeID, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	t.DueDate = timePtr(due)
	return t, err
}

type taskRepo struct{ db *sql.DB }

func (r taskRepo) Create(ctx context.Context, t hr.Task) (hr.Task, error) {
	out, err := scanTask(r.db.QueryRowContext(ctx, `
		insert into tasks (id, project_id, title, description, assignee_id, status, priority, due_date, created_at, updated_at)
		values ($1, $2, $3, $4, nullif($5, ''), $6, $7, $8, $9, $10)
		returning `+taskColumns,
		t.ID, t.ProjectID, t.Title, t.Description, t.AssigneeID, t.Status, t.Priority, nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt))
	if err != nil {
		return hr.Task{}, classify(err, "Task")
	}
	return out, nil
}

func (r taskRepo) Get(ctx context.Context, id string) (hr.Task, error) {
	out, err := scanTask(r.db.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id = $1`, id))
	if err != nil {
		return hr.Task{}, classify(err, "Task")
	}
	return out, nil
}

func (r taskRepo) List(ctx context.Context, f hr.TaskFilter) ([]hr.Task, error) {
	var w filter
	w.eq("project_id", f.ProjectID)
	w.eq("assignee_id", f.AssigneeID)
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Task", `select `+taskColumns+` from tasks`+w.where()+` order by created_at desc`, w.args, scanTask)
}

func (r taskRepo) Update(ctx context.Context, t hr.Task) (hr.Task, error) {
	out, err := scanTask(r.db.QueryRowContext(ctx, `
		update tasks set title = $2, description = $3, assignee_id = nullif($4, ''), status = $5, priority = $6,
			due_date = $7, updated_at = $8
		where id = $1
		returning `+taskColumns,
		t.ID, t.Title, t.Description, t.AssigneeID, t.Status, t.Priority, nullTime(t.DueDate), t.UpdatedAt))
	if err != nil {
		return hr.Task{}, classify(err, "Task")
	}
	return out, nil
}

func (r taskRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "tasks", "Task", id)
}
