// Command smoke exercises a running API end to end: seeded logins, role
// gates and the once-per-day attendance rule.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type client struct {
	base string
	http *http.Client
}

func (c *client) call(method, path, token string, body any, out any) (int, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return resp.StatusCode, fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) login(email, password string) (string, string) {
	var out struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	code, err := c.call(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password}, &out)
	if err != nil || code != http.StatusOK {
		log.Fatalf("login %s: status=%d err=%v", email, code, err)
	}
	return out.Token, out.User.Role
}

func expect(what string, got, want int) {
	if got != want {
		log.Fatalf("%s: expected %d, got %d", what, want, got)
	}
}

func main() {
	log.SetFlags(0)
	base := flag.String("base", envOr("STAFFDESK_URL", "http://localhost:8080"), "API base URL")
	password := flag.String("password", "123456", "Seeded account password")
	flag.Parse()

	c := &client{base: *base, http: &http.Client{Timeout: 10 * time.Second}}

	hrToken, role := c.login("hr@company.com", *password)
	if role != "HR" {
		log.Fatalf("hr login: unexpected role %q", role)
	}

	code, err := c.call(http.MethodGet, "/api/admin/users", hrToken, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	expect("HR on admin route", code, http.StatusForbidden)

	code, _ = c.call(http.MethodGet, "/api/employees", "", nil, nil)
	expect("anonymous employees list", code, http.StatusUnauthorized)

	var emp struct {
		ID string `json:"id"`
	}
	email := fmt.Sprintf("smoke-%d@company.com", time.Now().UnixNano())
	code, err = c.call(http.MethodPost, "/api/employees", hrToken, map[string]any{"name": "Smoke Test", "email": email}, &emp)
	if err != nil {
		log.Fatal(err)
	}
	expect("create employee", code, http.StatusCreated)

	mark := map[string]any{"employeeId": emp.ID, "status": "PRESENT"}
	code, err = c.call(http.MethodPost, "/api/attendance", hrToken, mark, nil)
	if err != nil {
		log.Fatal(err)
	}
	expect("first attendance mark", code, http.StatusCreated)

	var conflict struct {
		Message string `json:"message"`
	}
	code, err = c.call(http.MethodPost, "/api/attendance/mark", hrToken, mark, &conflict)
	if err != nil {
		log.Fatal(err)
	}
	expect("second attendance mark", code, http.StatusBadRequest)

	code, _ = c.call(http.MethodDelete, "/api/employees/"+emp.ID, hrToken, nil, nil)
	expect("delete employee", code, http.StatusOK)

	fmt.Printf("smoke test passed: employee=%s conflict=%q\n", emp.ID, conflict.Message)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
