package httpapi

import (
	"context"
	"net/http"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/hr"
)

func (a *API) employeeRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/employees", a.authed(listHandler(func(r *http.Request) hr.EmployeeFilter {
		q := r.URL.Query()
		return hr.EmployeeFilter{DepartmentID: q.Get("departmentId"), Status: q.Get("status")}
	}, s.ListEmployees)))
	a.mux.Handle("GET /api/employees/stats", a.authed(readHandler(s.EmployeeStats)))
	a.mux.Handle("GET /api/employees/{id}", a.authed(getHandler(s.GetEmployee)))
	a.mux.Handle("POST /api/employees", a.gated(auth.RoleHR, createHandler(a, "employee.created", s.CreateEmployee)))
	a.mux.Handle("PUT /api/employees/{id}", a.gated(auth.RoleHR, updateHandler(s.UpdateEmployee)))
	a.mux.Handle("DELETE /api/employees/{id}", a.gated(auth.RoleHR, deleteHandler(a, "Employee", "employee.deleted", s.DeleteEmployee)))
}

func (a *API) departmentRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/departments", a.authed(readHandler(s.ListDepartments)))
	a.mux.Handle("GET /api/departments/stats", a.authed(readHandler(s.DepartmentStats)))
	a.mux.Handle("GET /api/departments/{id}", a.authed(getHandler(s.GetDepartment)))
	a.mux.Handle("POST /api/departments", a.gated(auth.RoleHR, createHandler(a, "department.created", s.CreateDepartment)))
	a.mux.Handle("POST /api/departments/refresh-counts", a.gated(auth.RoleHR, readHandler(s.RefreshDepartmentCounts)))
	a.mux.Handle("PUT /api/departments/{id}", a.gated(auth.RoleHR, updateHandler(s.UpdateDepartment)))
	a.mux.Handle("DELETE /api/departments/{id}", a.gated(auth.RoleHR, deleteHandler(a, "Department", "department.deleted", s.DeleteDepartment)))
}

func (a *API) leaveRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/leaves", a.authed(listHandler(func(r *http.Request) hr.LeaveFilter {
		q := r.URL.Query()
		return hr.LeaveFilter{EmployeeID: q.Get("employeeId"), Status: q.Get("status")}
	}, s.ListLeaves)))
	a.mux.Handle("GET /api/leaves/stats", a.authed(readHandler(s.LeaveStats)))
	a.mux.Handle("GET /api/leaves/{id}", a.authed(getHandler(s.GetLeave)))
	a.mux.Handle("POST /api/leaves", a.authed(createHandler(a, "leave.requested", s.CreateLeave)))
	a.mux.Handle("PUT /api/leaves/{id}", a.authed(updateHandler(s.UpdateLeave)))
	a.mux.Handle("PUT /api/leaves/{id}/approve", a.gated(auth.RoleHR, actionHandler(a, "leave.approved", s.ApproveLeave)))
	a.mux.Handle("PUT /api/leaves/{id}/reject", a.gated(auth.RoleHR, actionHandler(a, "leave.rejected", s.RejectLeave)))
	a.mux.Handle("DELETE /api/leaves/{id}", a.authed(deleteHandler(a, "Leave", "", s.DeleteLeave)))
}

func (a *API) payrollRoutes() {
	s := a.svc
	hrOnly := func(h http.HandlerFunc) http.Handler { return a.gated(auth.RoleHR, h) }
	a.mux.Handle("GET /api/payroll", hrOnly(listHandler(func(r *http.Request) hr.PayrollFilter {
		q := r.URL.Query()
		return hr.PayrollFilter{EmployeeID: q.Get("employeeId"), Month: q.Get("month"), Status: q.Get("status")}
	}, s.ListPayroll)))
	a.mux.Handle("GET /api/payroll/{id}", hrOnly(getHandler(s.GetPayroll)))
	a.mux.Handle("POST /api/payroll", hrOnly(createHandler(a, "payroll.created", s.CreatePayroll)))
	a.mux.Handle("PUT /api/payroll/{id}", hrOnly(updateHandler(s.UpdatePayroll)))
	a.mux.Handle("PUT /api/payroll/{id}/pay", hrOnly(actionHandler(a, "payroll.paid", s.PayPayroll)))
	a.mux.Handle("DELETE /api/payroll/{id}", hrOnly(deleteHandler(a, "Payroll", "payroll.deleted", s.DeletePayroll)))
}

func (a *API) projectRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/projects", a.authed(listHandler(func(r *http.Request) hr.ProjectFilter {
		return hr.ProjectFilter{Status: r.URL.Query().Get("status")}
	}, s.ListProjects)))
	a.mux.Handle("GET /api/projects/stats", a.authed(readHandler(s.ProjectStats)))
	a.mux.Handle("GET /api/projects/{id}", a.authed(getHandler(s.GetProject)))
	a.mux.Handle("POST /api/projects", a.gated(auth.RoleHR, createHandler(a, "project.created", s.CreateProject)))
	a.mux.Handle("PUT /api/projects/{id}", a.authed(updateHandler(s.UpdateProject)))
	a.mux.Handle("DELETE /api/projects/{id}", a.gated(auth.RoleHR, deleteHandler(a, "Project", "project.deleted", s.DeleteProject)))
}

func (a *API) taskRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/tasks", a.authed(listHandler(func(r *http.Request) hr.TaskFilter {
		q := r.URL.Query()
		return hr.TaskFilter{ProjectID: q.Get("projectId"), AssigneeID: q.Get("assigneeId"), Status: q.Get("status")}
	}, s.ListTasks)))
	a.mux.Handle("GET /api/tasks/stats", a.authed(readHandler(s.TaskStats)))
	a.mux.Handle("GET /api/tasks/{id}", a.authed(getHandler(s.GetTask)))
	a.mux.Handle("POST /api/tasks", a.authed(createHandler(a, "", s.CreateTask)))
	a.mux.Handle("PUT /api/tasks/{id}", a.authed(updateHandler(s.UpdateTask)))
	a.mux.Handle("DELETE /api/tasks/{id}", a.authed(deleteHandler(a, "Task", "", s.DeleteTask)))
}

func (a *API) reviewRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/reviews", a.authed(listHandler(func(r *http.Request) hr.ReviewFilter {
		return hr.ReviewFilter{EmployeeID: r.URL.Query().Get("employeeId")}
	}, s.ListReviews)))
	a.mux.Handle("GET /api/reviews/{id}", a.authed(getHandler(s.GetReview)))
	a.mux.Handle("POST /api/reviews", a.gated(auth.RoleHR, createHandler(a, "review.created",
		func(ctx context.Context, in hr.ReviewInput) (hr.Review, error) {
			id, _ := auth.IdentityFromContext(ctx)
			return s.CreateReview(ctx, in, id.ID)
		})))
	a.mux.Handle("PUT /api/reviews/{id}", a.gated(auth.RoleHR, updateHandler(s.UpdateReview)))
	a.mux.Handle("DELETE /api/reviews/{id}", a.gated(auth.RoleHR, deleteHandler(a, "Review", "review.deleted", s.DeleteReview)))
}

func (a *API) adminRoutes() {
	s := a.svc
	a.mux.Handle("GET /api/dashboard", a.authed(readHandler(s.Dashboard)))
	a.mux.Handle("GET /api/admin/users", a.gated(auth.RoleAdmin, listHandler(func(r *http.Request) hr.UserFilter {
		return hr.UserFilter{Role: r.URL.Query().Get("role")}
	}, s.ListUsers)))
	a.mux.Handle("DELETE /api/admin/users/{id}", a.gated(auth.RoleAdmin, deleteHandler(a, "User", "user.deleted", s.DeleteUser)))
}
