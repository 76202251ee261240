package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"staffdesk.io/internal/hr"
)

const projectColumns = `id, name, description, status, start_date, end_date, member_ids, created_at, updated_at`

func scanProject(row scanner) (hr.Project, error) {
	var (
		p       hr.Project
		endDate sql.NullTime
		members []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &endDate, &members, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return hr.Project{}, err
	}
	p.EndDate = timePtr(endDate)
	p.MemberIDs = []string{}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &p.MemberIDs); err != nil {
			return hr.Project{}, fmt.Errorf("decode member_ids: %w", err)
		}
	}
	return p, nil
}

func encodeMembers(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal member_ids: %w", err)
	}
	return b, nil
}

type projectRepo struct{ db *sql.DB }

func (r projectRepo) Create(ctx context.Context, p hr.Project) (hr.Project, error) {
	members, err := encodeMembers(p.MemberIDs)
	if err != nil {
		return hr.Project{}, err
	}
	out, err := scanProject(r.db.QueryRowContext(ctx, `
		insert into projects (id, name, description, status, start_date, end_date, member_ids, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning `+projectColumns,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, nullTime(p.EndDate), members, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return hr.Project{}, classify(err, "Project")
	}
	return out, nil
}

func (r projectRepo) Get(ctx context.Context, id string) (hr.Project, error) {
	out, err := scanProject(r.db.QueryRowContext(ctx, `select `+projectColumns+` from projects where id = $1`, id))
	if err != nil {
		return hr.Project{}, classify(err, "Project")
	}
	return out, nil
}

func (r projectRepo) List(ctx context.Context, f hr.ProjectFilter) ([]hr.Project, error) {
	var w filter
	w.eq("status", f.Status)
	return queryList(ctx, r.db, "Project", `select `+projectColumns+` from projects`+w.where()+` order by created_at desc`, w.args, scanProject)
}

func (r projectRepo) Update(ctx context.Context, p hr.Project) (hr.Project, error) {
	members, err := encodeMembers(p.MemberIDs)
	if err != nil {
		return hr.Project{}, err
	}
	out, err := scanProject(r.db.QueryRowContext(ctx, `
		update projects set name = $2, description = $3, status = $4, start_date = $5, end_date = $6,
			member_ids = $7, updated_at = $8
		where id = $1
		returning `+projectColumns,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, nullTime(p.EndDate), members, p.UpdatedAt))
	if err != nil {
		return hr.Project{}, classify(err, "Project")
	}
	return out, nil
}

func (r projectRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "projects", "Project", id)
}
