package hr

import "context"

// Dashboard combines the headline counts shown on the HR landing page.
type Dashboard struct {
	Employees     EmployeeStats   `json:"employees"`
	Attendance    AttendanceStats `json:"attendance"`
	Leaves        StatusCount     `json:"leaves"`
	Projects      StatusCount     `json:"projects"`
	PendingLeaves int             `json:"pendingLeaves"`
	Departments   int             `json:"departments"`
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	return cached(ctx, s, statsDashboard, func() (Dashboard, error) {
		var (
			d   Dashboard
			err error
		)
		if d.Employees, err = s.EmployeeStats(ctx); err != nil {
			return Dashboard{}, err
		}
		if d.Attendance, err = s.AttendanceStats(ctx, ""); err != nil {
			return Dashboard{}, err
		}
		if d.Leaves, err = s.LeaveStats(ctx); err != nil {
			return Dashboard{}, err
		}
		if d.Projects, err = s.ProjectStats(ctx); err != nil {
			return Dashboard{}, err
		}
		deps, err := s.store.Departments().List(ctx, DepartmentFilter{})
		if err != nil {
			return Dashboard{}, err
		}
		d.Departments = len(deps)
		d.PendingLeaves = d.Leaves.ByStatus[LeavePending]
		return d, nil
	})
}
