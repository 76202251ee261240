package hr

import (
	"context"
	"slices"
	"strings"

	"staffdesk.io/internal/errs"
)

type ProjectInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	MemberIDs   *[]string `json:"memberIds"`
}

func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (Project, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return Project{}, err
	}
	id, now := s.stamp()
	p := Project{
		ID:          id,
		Name:        name,
		Description: str(in.Description),
		Status:      coerce(str(in.Status), ProjectStatuses),
		StartDate:   now,
		MemberIDs:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applyProject(ctx, &p, in); err != nil {
		return Project{}, err
	}
	out, err := s.store.Projects().Create(ctx, p)
	if err != nil {
		return Project{}, err
	}
	s.invalidate(ctx, statsProjects, statsDashboard)
	return out, nil
}

func (s *Service) applyProject(ctx context.Context, p *Project, in ProjectInput) error {
	if v := str(in.StartDate); v != "" {
		t, err := s.parseDate("startDate", v)
		if err != nil {
			return err
		}
		p.StartDate = t.UTC()
	}
	if in.EndDate != nil {
		end, err := s.optDate("endDate", in.EndDate)
		if err != nil {
			return err
		}
		p.EndDate = end
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return errs.Validation("endDate", "endDate must not be before startDate")
	}
	if in.MemberIDs != nil {
		members := make([]string, 0, len(*in.MemberIDs))
		for _, m := range *in.MemberIDs {
			if m = strings.TrimSpace(m); m == "" || slices.Contains(members, m) {
				continue
			}
			if err := s.ensureEmployee(ctx, m); err != nil {
				if errs.Is(err, errs.KindNotFound) {
					return errs.Validation("memberIds", "member "+m+" does not exist")
				}
				return err
			}
			members = append(members, m)
		}
		p.MemberIDs = members
	}
	return nil
}

func (s *Service) GetProject(ctx context.Context, id string) (Project, error) {
	return s.store.Projects().Get(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, f ProjectFilter) ([]Project, error) {
	return s.store.Projects().List(ctx, f)
}

func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectInput) (Project, error) {
	p, err := s.store.Projects().Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	setStr(&p.Name, in.Name)
	if p.Name == "" {
		return Project{}, errs.Validation("name", "name is required")
	}
	setStr(&p.Description, in.Description)
	if in.Status != nil {
		p.Status = coerce(*in.Status, ProjectStatuses)
	}
	if err := s.applyProject(ctx, &p, in); err != nil {
		return Project{}, err
	}
	p.UpdatedAt = s.now().UTC()
	out, err := s.store.Projects().Update(ctx, p)
	if err != nil {
		return Project{}, err
	}
	s.invalidate(ctx, statsProjects, statsDashboard)
	return out, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.Projects().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsProjects, statsTasks, statsDashboard)
	return nil
}

func (s *Service) ProjectStats(ctx context.Context) (StatusCount, error) {
	return cached(ctx, s, statsProjects, func() (StatusCount, error) {
		list, err := s.store.Projects().List(ctx, ProjectFilter{})
		if err != nil {
			return StatusCount{}, err
		}
		return statusCount(list, ProjectStatuses, func(p Project) string { return p.Status }), nil
	})
}
