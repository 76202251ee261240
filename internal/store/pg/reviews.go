package pg

import (
	"context"
	"database/sql"

	"staffdesk.io/internal/hr"
)

const reviewColumns = `id, employee_id, reviewer_id, period, rating, comments, created_at, updated_at`

func scanReview(row scanner) (hr.Review, error) {
	var r hr.Review
	err := row.Scan(&r.ID, &r.EmployeeID, &r.ReviewerID, &r.Period, &r.Rating, &r.Comments, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

type reviewRepo struct{ db *sql.DB }

func (r reviewRepo) Create(ctx context.Context, v hr.Review) (hr.Review, error) {
	out, err := scanReview(r.db.QueryRowContext(ctx, `
		insert into reviews (id, employee_id, reviewer_id, period, rating, comments, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning `+reviewColumns,
		v.ID, v.EmployeeID, v.ReviewerID, v.Period, v.Rating, v.Comments, v.CreatedAt, v.UpdatedAt))
	if err != nil {
		return hr.Review{}, classify(err, "Review")
	}
	return out, nil
}

func (r reviewRepo) Get(ctx context.Context, id string) (hr.Review, error) {
	out, err := scanReview(r.db.QueryRowContext(ctx, `select `+reviewColumns+` from reviews where id = $1`, id))
	if err != nil {
		return hr.Review{}, classify(err, "Review")
	}
	return out, nil
}

func (r reviewRepo) List(ctx context.Context, f hr.ReviewFilter) ([]hr.Review, error) {
	var w filter
	w.eq("employee_id", f.EmployeeID)
	return queryList(ctx, r.db, "Review", `select `+reviewColumns+` from reviews`+w.where()+` order by created_at desc`, w.args, scanReview)
}

func (r reviewRepo) Update(ctx context.Context, v hr.Review) (hr.Review, error) {
	out, err := scanReview(r.db.QueryRowContext(ctx, `
		update reviews set period = $2, rating = $3, comments = $4, updated_at = $5
		where id = $1
		returning `+reviewColumns,
		v.ID, v.Period, v.Rating, v.Comments, v.UpdatedAt))
	if err != nil {
		return hr.Review{}, classify(err, "Review")
	}
	return out, nil
}

func (r reviewRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "reviews", "Review", id)
}
