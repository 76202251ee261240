package hr

import (
	"context"

	"staffdesk.io/internal/errs"
)

type ReviewInput struct {
	EmployeeID *string `json:"employeeId"`
	ReviewerID *string `json:"reviewerId"`
	Period     *string `json:"period"`
	Rating     *int    `json:"rating"`
	Comments   *string `json:"comments"`
}

// CreateReview records a review. reviewer defaults to the caller's user id.
func (s *Service) CreateReview(ctx context.Context, in ReviewInput, reviewer string) (Review, error) {
	empID, err := required("employeeId", in.EmployeeID)
	if err != nil {
		return Review{}, err
	}
	period, err := required("period", in.Period)
	if err != nil {
		return Review{}, err
	}
	if in.Rating == nil {
		return Review{}, errs.Validation("rating", "rating is required")
	}
	if err := s.ensureEmployee(ctx, empID); err != nil {
		return Review{}, err
	}
	if v := str(in.ReviewerID); v != "" {
		reviewer = v
	}
	id, now := s.stamp()
	r := Review{
		ID:         id,
		EmployeeID: empID,
		ReviewerID: reviewer,
		Period:     period,
		Comments:   str(in.Comments),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := applyRating(&r, in.Rating); err != nil {
		return Review{}, err
	}
	return s.store.Reviews().Create(ctx, r)
}

func applyRating(r *Review, rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 5 {
		return errs.Validation("rating", "rating must be between 1 and 5")
	}
	r.Rating = *rating
	return nil
}

func (s *Service) GetReview(ctx context.Context, id string) (Review, error) {
	return s.store.Reviews().Get(ctx, id)
}

func (s *Service) ListReviews(ctx context.Context, f ReviewFilter) ([]Review, error) {
	return s.store.Reviews().List(ctx, f)
}

func (s *Service) UpdateReview(ctx context.Context, id string, in ReviewInput) (Review, error) {
	r, err := s.store.Reviews().Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	setStr(&r.Period, in.Period)
	setStr(&r.Comments, in.Comments)
	if err := applyRating(&r, in.Rating); err != nil {
		return Review{}, err
	}
	r.UpdatedAt = s.now().UTC()
	return s.store.Reviews().Update(ctx, r)
}

func (s *Service) DeleteReview(ctx context.Context, id string) error {
	return s.store.Reviews().Delete(ctx, id)
}
