package hr

import (
	"context"

	"staffdesk.io/internal/errs"
)

type TaskInput struct {
	ProjectID   *string `json:"projectId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assigneeId"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	projectID, err := required("projectId", in.ProjectID)
	if err != nil {
		return Task{}, err
	}
	title, err := required("title", in.Title)
	if err != nil {
		return Task{}, err
	}
	if _, err := s.store.Projects().Get(ctx, projectID); err != nil {
		return Task{}, err
	}
	id, now := s.stamp()
	t := Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: str(in.Description),
		Status:      coerce(str(in.Status), TaskStatuses),
		Priority:    coerce(str(in.Priority), TaskPriorities),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applyTask(ctx, &t, in); err != nil {
		return Task{}, err
	}
	out, err := s.store.Tasks().Create(ctx, t)
	if err != nil {
		return Task{}, err
	}
	s.invalidate(ctx, statsTasks)
	return out, nil
}

func (s *Service) applyTask(ctx context.Context, t *Task, in TaskInput) error {
	if in.AssigneeID != nil {
		a := str(in.AssigneeID)
		if a != "" {
			if err := s.ensureEmployee(ctx, a); err != nil {
				if errs.Is(err, errs.KindNotFound) {
					return errs.Validation("assigneeId", "assignee does not exist")
				}
				return err
			}
		}
		t.AssigneeID = a
	}
	if in.DueDate != nil {
		due, err := s.optDate("dueDate", in.DueDate)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	return nil
}

func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	return s.store.Tasks().Get(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	return s.store.Tasks().List(ctx, f)
}

func (s *Service) UpdateTask(ctx context.Context, id string, in TaskInput) (Task, error) {
	t, err := s.store.Tasks().Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	setStr(&t.Title, in.Title)
	if t.Title == "" {
		return Task{}, errs.Validation("title", "title is required")
	}
	setStr(&t.Description, in.Description)
	if in.Status != nil {
		t.Status = coerce(*in.Status, TaskStatuses)
	}
	if in.Priority != nil {
		t.Priority = coerce(*in.Priority, TaskPriorities)
	}
	if err := s.applyTask(ctx, &t, in); err != nil {
		return Task{}, err
	}
	t.UpdatedAt = s.now().UTC()
	out, err := s.store.Tasks().Update(ctx, t)
	if err != nil {
		return Task{}, err
	}
	s.invalidate(ctx, statsTasks)
	return out, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.Tasks().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsTasks)
	return nil
}

func (s *Service) TaskStats(ctx context.Context) (StatusCount, error) {
	return cached(ctx, s, statsTasks, func() (StatusCount, error) {
		list, err := s.store.Tasks().List(ctx, TaskFilter{})
		if err != nil {
			return StatusCount{}, err
		}
		return statusCount(list, TaskStatuses, func(t Task) string { return t.Status }), nil
	})
}
