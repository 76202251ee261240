package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/hr"
	"staffdesk.io/internal/seed"
	"staffdesk.io/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
	svc     *hr.Service
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	feed := stream.New()
	svc := hr.NewService(hr.NewInMemory(), hr.WithPublisher(feed))
	if _, err := seed.Run(context.Background(), svc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tokens, err := auth.NewTokens("test-secret")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	api := New(svc, tokens, feed, Options{Version: "test", RateBurst: 100, RatePerSec: 100})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
		svc:     svc,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) put(path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	return c.do(http.MethodPut, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, headers)
}

func (c *apiClient) login(email string) tokenResponse {
	c.t.Helper()
	resp := c.post("/api/auth/login", map[string]any{
		"email":    email,
		"password": seed.DefaultPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	payload := decode[tokenResponse](c.t, resp)
	if payload.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body := decode[map[string]any](t, resp)
		t.Fatalf("expected %d, got %d: %v", want, resp.StatusCode, body)
	}
}

func TestSeededHRLoginAndRoleGates(t *testing.T) {
	api := newTestAPI(t)
	login := api.login("hr@company.com")
	if login.User.Role != auth.RoleHR {
		t.Fatalf("expected HR role, got %q", login.User.Role)
	}
	if login.User.Email != "hr@company.com" {
		t.Fatalf("unexpected user: %+v", login.User)
	}

	resp := api.post("/api/departments", map[string]any{"name": "Finance"}, bearer(login.Token))
	expectStatus(t, resp, http.StatusCreated)
	dep := decode[hr.Department](t, resp)
	if dep.ID == "" || dep.Name != "Finance" {
		t.Fatalf("unexpected department: %+v", dep)
	}

	resp = api.get("/api/admin/users", nil, bearer(login.Token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for HR on admin route, got %d", resp.StatusCode)
	}

	admin := api.login("admin@company.com")
	resp = api.get("/api/admin/users", url.Values{"role": {auth.RoleHR}}, bearer(admin.Token))
	expectStatus(t, resp, http.StatusOK)
	users := decode[[]map[string]any](t, resp)
	if len(users) != 1 || users[0]["email"] != "hr@company.com" {
		t.Fatalf("unexpected users: %v", users)
	}
	if _, leaked := users[0]["passwordHash"]; leaked {
		t.Fatal("password hash exposed")
	}
}

func TestAttendanceMarkTwiceSameDay(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("employee@company.com").Token

	emps, err := api.svc.ListEmployees(context.Background(), hr.EmployeeFilter{})
	if err != nil || len(emps) == 0 {
		t.Fatalf("no seeded employee: %v", err)
	}
	empID := emps[0].ID

	resp := api.post("/api/attendance", map[string]any{"employeeId": empID, "status": "PRESENT"}, bearer(token))
	expectStatus(t, resp, http.StatusCreated)
	rec := decode[hr.Attendance](t, resp)
	if rec.EmployeeID != empID || rec.Status != hr.StatusPresent {
		t.Fatalf("unexpected record: %+v", rec)
	}

	for _, path := range []string{"/api/attendance", "/api/attendance/mark"} {
		resp = api.post(path, map[string]any{"employeeId": empID, "status": "ABSENT"}, bearer(token))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
		body := decode[map[string]any](t, resp)
		if body["message"] != "Attendance already marked for today" {
			t.Fatalf("%s: unexpected message: %v", path, body["message"])
		}
	}

	resp = api.get("/api/attendance", url.Values{"employeeId": {empID}}, bearer(token))
	expectStatus(t, resp, http.StatusOK)
	if recs := decode[[]hr.Attendance](t, resp); len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
}

func TestAttendanceRecordsCannotBeEdited(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("employee@company.com").Token
	emps, _ := api.svc.ListEmployees(context.Background(), hr.EmployeeFilter{})

	resp := api.post("/api/attendance", map[string]any{"employeeId": emps[0].ID, "status": "ABSENT"}, bearer(token))
	expectStatus(t, resp, http.StatusCreated)
	rec := decode[hr.Attendance](t, resp)

	resp = api.put("/api/attendance/"+rec.ID, map[string]any{"status": "PRESENT"}, bearer(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for attendance update, got %d", resp.StatusCode)
	}

	resp = api.get("/api/attendance/"+rec.ID, nil, bearer(token))
	expectStatus(t, resp, http.StatusOK)
	if got := decode[hr.Attendance](t, resp); got.Status != hr.StatusAbsent {
		t.Fatalf("status changed to %q", got.Status)
	}
}

func TestAttendanceUnknownStatusStoredAsPresent(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("hr@company.com").Token
	emps, _ := api.svc.ListEmployees(context.Background(), hr.EmployeeFilter{})

	resp := api.post("/api/attendance/mark", map[string]any{"employeeId": emps[0].ID, "status": "REMOTE"}, bearer(token))
	expectStatus(t, resp, http.StatusCreated)
	if rec := decode[hr.Attendance](t, resp); rec.Status != hr.StatusPresent {
		t.Fatalf("expected PRESENT, got %q", rec.Status)
	}

	resp = api.post("/api/attendance", map[string]any{}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing employeeId: expected 400, got %d", resp.StatusCode)
	}

	resp = api.post("/api/attendance", map[string]any{"employeeId": "01HZZZZZZZZZZZZZZZZZZZZZZZ"}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown employee: expected 404, got %d", resp.StatusCode)
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	api := newTestAPI(t)

	cases := []map[string]string{
		nil,
		bearer("garbage"),
		{"Authorization": "Basic dXNlcjpwYXNz"},
	}
	for _, headers := range cases {
		resp := api.get("/api/employees", nil, headers)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("headers %v: expected 401, got %d", headers, resp.StatusCode)
		}
		body := decode[map[string]any](t, resp)
		if body["message"] != notAuthorized {
			t.Fatalf("unexpected message: %v", body["message"])
		}
	}
}

func TestCookieCredentialAndHeaderPrecedence(t *testing.T) {
	api := newTestAPI(t)
	resp := api.post("/api/auth/login", map[string]any{"email": "hr@company.com", "password": seed.DefaultPassword}, nil)
	expectStatus(t, resp, http.StatusOK)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	resp.Body.Close()
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly token cookie, got %+v", cookie)
	}

	req, _ := http.NewRequest(http.MethodGet, api.baseURL+"/api/auth/me", nil)
	req.AddCookie(cookie)
	resp, err := api.client.Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	expectStatus(t, resp, http.StatusOK)
	me := decode[map[string]any](t, resp)
	if me["role"] != auth.RoleHR {
		t.Fatalf("unexpected identity: %v", me)
	}

	// A bad header is not rescued by a good cookie.
	req, _ = http.NewRequest(http.MethodGet, api.baseURL+"/api/auth/me", nil)
	req.AddCookie(cookie)
	req.Header.Set("Authorization", "Bearer tampered")
	resp, err = api.client.Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected header to win, got %d", resp.StatusCode)
	}

	resp = api.post("/api/auth/logout", nil, nil)
	defer resp.Body.Close()
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the cookie")
	}
}

func TestRegisterFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.post("/api/auth/register", map[string]any{
		"name": "Zed", "email": "Zed@Company.com", "password": "pw", "role": "SUPERUSER",
	}, nil)
	expectStatus(t, resp, http.StatusCreated)
	reg := decode[tokenResponse](t, resp)
	if reg.User.Role != auth.RoleEmployee || reg.User.Email != "zed@company.com" {
		t.Fatalf("unexpected user: %+v", reg.User)
	}

	resp = api.post("/api/auth/register", map[string]any{
		"name": "Zed", "email": "zed@company.com", "password": "pw",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["message"] != "User already exists" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	resp = api.post("/api/auth/login", map[string]any{"email": "zed@company.com", "password": "wrong"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad password: expected 400, got %d", resp.StatusCode)
	}
	if body := decode[map[string]any](t, resp); body["message"] != "Invalid credentials" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	resp = api.post("/api/auth/register", map[string]any{"email": "x@y.z"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", resp.StatusCode)
	}

	resp = api.post("/api/auth/register", map[string]any{
		"name": "Long", "email": "long@company.com", "password": strings.Repeat("p", 80),
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("long password: expected 400, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["field"] != "password" {
		t.Fatalf("unexpected field: %v", body)
	}
	if _, echoed := body["error"]; echoed {
		t.Fatalf("validation failure echoed an internal error: %v", body)
	}
}

func TestEmployeeCRUDAndStats(t *testing.T) {
	api := newTestAPI(t)
	hrToken := api.login("hr@company.com").Token
	empToken := api.login("employee@company.com").Token

	resp := api.post("/api/employees", map[string]any{"name": "Ann", "email": "ann@company.com"}, bearer(empToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("employee create: expected 403, got %d", resp.StatusCode)
	}

	resp = api.post("/api/employees", map[string]any{"name": "Ann", "email": "ann@company.com", "salary": 1000}, bearer(hrToken))
	expectStatus(t, resp, http.StatusCreated)
	emp := decode[hr.Employee](t, resp)

	resp = api.put("/api/employees/"+emp.ID, map[string]any{"position": "Lead"}, bearer(hrToken))
	expectStatus(t, resp, http.StatusOK)
	if upd := decode[hr.Employee](t, resp); upd.Position != "Lead" || upd.Name != "Ann" {
		t.Fatalf("unexpected update: %+v", upd)
	}

	resp = api.get("/api/employees/stats", nil, bearer(empToken))
	expectStatus(t, resp, http.StatusOK)
	if st := decode[hr.EmployeeStats](t, resp); st.Total != 2 {
		t.Fatalf("expected 2 employees, got %d", st.Total)
	}

	resp = api.do(http.MethodDelete, "/api/employees/"+emp.ID, nil, bearer(hrToken))
	expectStatus(t, resp, http.StatusOK)
	if body := decode[map[string]any](t, resp); body["message"] != "Employee deleted" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	resp = api.get("/api/employees/"+emp.ID, nil, bearer(hrToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestLeaveApprovalAndPayroll(t *testing.T) {
	api := newTestAPI(t)
	hrToken := api.login("hr@company.com").Token
	empToken := api.login("employee@company.com").Token
	emps, _ := api.svc.ListEmployees(context.Background(), hr.EmployeeFilter{})
	empID := emps[0].ID

	resp := api.post("/api/leaves", map[string]any{
		"employeeId": empID, "type": "SICK", "startDate": "2025-03-10", "endDate": "2025-03-11",
	}, bearer(empToken))
	expectStatus(t, resp, http.StatusCreated)
	leave := decode[hr.Leave](t, resp)
	if leave.Status != hr.LeavePending {
		t.Fatalf("expected PENDING, got %q", leave.Status)
	}

	resp = api.put("/api/leaves/"+leave.ID+"/approve", nil, bearer(empToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("employee approve: expected 403, got %d", resp.StatusCode)
	}
	resp = api.put("/api/leaves/"+leave.ID+"/approve", nil, bearer(hrToken))
	expectStatus(t, resp, http.StatusOK)
	if got := decode[hr.Leave](t, resp); got.Status != hr.LeaveApproved {
		t.Fatalf("expected APPROVED, got %q", got.Status)
	}

	resp = api.post("/api/payroll", map[string]any{
		"employeeId": empID, "month": "2025-03", "basicSalary": 5000, "allowances": 500, "deductions": 200,
	}, bearer(hrToken))
	expectStatus(t, resp, http.StatusCreated)
	pay := decode[hr.Payroll](t, resp)
	if pay.NetSalary != 5300 {
		t.Fatalf("unexpected net salary: %d", pay.NetSalary)
	}

	resp = api.put("/api/payroll/"+pay.ID+"/pay", nil, bearer(hrToken))
	expectStatus(t, resp, http.StatusOK)
	if paid := decode[hr.Payroll](t, resp); paid.Status != hr.PayrollPaid || paid.PaidAt == nil {
		t.Fatalf("unexpected payroll: %+v", paid)
	}

	resp = api.get("/api/payroll", nil, bearer(empToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("employee payroll list: expected 403, got %d", resp.StatusCode)
	}
}

func TestDashboardAndHealth(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("employee@company.com").Token

	resp := api.get("/api/dashboard", nil, bearer(token))
	expectStatus(t, resp, http.StatusOK)
	dash := decode[map[string]any](t, resp)
	if _, ok := dash["employees"]; !ok {
		t.Fatalf("dashboard missing employees: %v", dash)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		resp = api.get(path, nil, nil)
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}
	resp = api.get("/healthz", nil, nil)
	defer resp.Body.Close()
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestAttendanceStreamDeliversRecordedEvents(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("hr@company.com").Token
	emps, _ := api.svc.ListEmployees(context.Background(), hr.EmployeeFilter{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+"/api/attendance/stream", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := api.client.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	if line, _ := reader.ReadString('\n'); !strings.HasPrefix(line, ": stream started") {
		t.Fatalf("unexpected preamble %q", line)
	}

	mark := api.post("/api/attendance", map[string]any{"employeeId": emps[0].ID}, bearer(token))
	expectStatus(t, mark, http.StatusCreated)
	mark.Body.Close()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "event: ") {
			if got := strings.TrimSpace(strings.TrimPrefix(line, "event: ")); got != "attendance.recorded" {
				t.Fatalf("unexpected event %q", got)
			}
			data, _ := reader.ReadString('\n')
			if !strings.Contains(data, emps[0].ID) {
				t.Fatalf("event payload missing employee: %s", data)
			}
			return
		}
	}
}
