package httpapi

import (
	"net/http"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/hr"
)

func (a *API) attendanceRoutes() {
	s := a.svc
	// Both paths run the same guard.
	a.mux.Handle("POST /api/attendance", a.authed(a.markAttendance))
	a.mux.Handle("POST /api/attendance/mark", a.authed(a.markAttendance))

	a.mux.Handle("GET /api/attendance", a.authed(a.listAttendance))
	a.mux.Handle("GET /api/attendance/today", a.authed(readHandler(s.TodayAttendance)))
	a.mux.Handle("GET /api/attendance/stats", a.authed(a.attendanceStats))
	a.mux.Handle("GET /api/attendance/stream", a.gated(auth.RoleHR, a.Stream))
	a.mux.Handle("GET /api/attendance/{id}", a.authed(getHandler(s.GetAttendance)))
	a.mux.Handle("DELETE /api/attendance/{id}", a.gated(auth.RoleHR, deleteHandler(a, "Attendance", "attendance.deleted", s.DeleteAttendance)))
}

func (a *API) markAttendance(w http.ResponseWriter, r *http.Request) {
	var in hr.AttendanceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := a.svc.RecordAttendance(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), "attendance.recorded", map[string]any{
		"id":          rec.ID,
		"employee_id": rec.EmployeeID,
		"day":         rec.Day,
		"status":      rec.Status,
	})
	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) listAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := a.svc.ListAttendance(r.Context(), q.Get("employeeId"), q.Get("date"), q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (a *API) attendanceStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.svc.AttendanceStats(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
