package hr

import (
	"context"

	"staffdesk.io/internal/errs"
)

type LeaveInput struct {
	EmployeeID *string `json:"employeeId"`
	Type       *string `json:"type"`
	StartDate  *string `json:"startDate"`
	EndDate    *string `json:"endDate"`
	Reason     *string `json:"reason"`
	Status     *string `json:"status"`
}

// CreateLeave files a leave request. New requests are always PENDING.
func (s *Service) CreateLeave(ctx context.Context, in LeaveInput) (Leave, error) {
	empID, err := required("employeeId", in.EmployeeID)
	if err != nil {
		return Leave{}, err
	}
	if err := s.ensureEmployee(ctx, empID); err != nil {
		return Leave{}, err
	}
	startRaw, err := required("startDate", in.StartDate)
	if err != nil {
		return Leave{}, err
	}
	endRaw, err := required("endDate", in.EndDate)
	if err != nil {
		return Leave{}, err
	}
	id, now := s.stamp()
	l := Leave{
		ID:         id,
		EmployeeID: empID,
		Type:       coerce(str(in.Type), LeaveTypes),
		Reason:     str(in.Reason),
		Status:     LeavePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.applyLeaveDates(&l, startRaw, endRaw); err != nil {
		return Leave{}, err
	}
	out, err := s.store.Leaves().Create(ctx, l)
	if err != nil {
		return Leave{}, err
	}
	s.invalidate(ctx, statsLeaves, statsDashboard)
	return out, nil
}

func (s *Service) applyLeaveDates(l *Leave, start, end string) error {
	if start != "" {
		t, err := s.parseDate("startDate", start)
		if err != nil {
			return err
		}
		l.StartDate = t.UTC()
	}
	if end != "" {
		t, err := s.parseDate("endDate", end)
		if err != nil {
			return err
		}
		l.EndDate = t.UTC()
	}
	if l.EndDate.Before(l.StartDate) {
		return errs.Validation("endDate", "endDate must not be before startDate")
	}
	return nil
}

func (s *Service) GetLeave(ctx context.Context, id string) (Leave, error) {
	return s.store.Leaves().Get(ctx, id)
}

func (s *Service) ListLeaves(ctx context.Context, f LeaveFilter) ([]Leave, error) {
	return s.store.Leaves().List(ctx, f)
}

func (s *Service) UpdateLeave(ctx context.Context, id string, in LeaveInput) (Leave, error) {
	l, err := s.store.Leaves().Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	if in.Type != nil {
		l.Type = coerce(*in.Type, LeaveTypes)
	}
	setStr(&l.Reason, in.Reason)
	if in.Status != nil {
		l.Status = coerce(*in.Status, LeaveStatuses)
	}
	if err := s.applyLeaveDates(&l, str(in.StartDate), str(in.EndDate)); err != nil {
		return Leave{}, err
	}
	return s.saveLeave(ctx, l)
}

func (s *Service) saveLeave(ctx context.Context, l Leave) (Leave, error) {
	l.UpdatedAt = s.now().UTC()
	out, err := s.store.Leaves().Update(ctx, l)
	if err != nil {
		return Leave{}, err
	}
	s.invalidate(ctx, statsLeaves, statsDashboard)
	return out, nil
}

// ApproveLeave marks the request APPROVED.
func (s *Service) ApproveLeave(ctx context.Context, id string) (Leave, error) {
	return s.decideLeave(ctx, id, LeaveApproved, "leave.approved")
}

// RejectLeave marks the request REJECTED.
func (s *Service) RejectLeave(ctx context.Context, id string) (Leave, error) {
	return s.decideLeave(ctx, id, LeaveRejected, "leave.rejected")
}

func (s *Service) decideLeave(ctx context.Context, id, status, event string) (Leave, error) {
	l, err := s.store.Leaves().Get(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	l.Status = status
	out, err := s.saveLeave(ctx, l)
	if err != nil {
		return Leave{}, err
	}
	s.publish(event, out)
	return out, nil
}

func (s *Service) DeleteLeave(ctx context.Context, id string) error {
	if err := s.store.Leaves().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, statsLeaves, statsDashboard)
	return nil
}

func (s *Service) LeaveStats(ctx context.Context) (StatusCount, error) {
	return cached(ctx, s, statsLeaves, func() (StatusCount, error) {
		list, err := s.store.Leaves().List(ctx, LeaveFilter{})
		if err != nil {
			return StatusCount{}, err
		}
		return statusCount(list, LeaveStatuses, func(l Leave) string { return l.Status }), nil
	})
}
