package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/obs"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	logger := obs.Logger()
	original, flags := logger.Writer(), logger.Flags()
	var buf bytes.Buffer
	logger.SetFlags(0)
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(original)
		logger.SetFlags(flags)
	})
	return &buf
}

func TestLogEvent(t *testing.T) {
	buf := captureLog(t)
	now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = auth.ContextWithIdentity(ctx, auth.Identity{ID: "user-42", Role: auth.RoleHR})

	err := LogEvent(ctx, "attendance.recorded", map[string]any{
		"id":          "att-1",
		"employee_id": "emp-7",
		"status":      "PRESENT",
	})
	if err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	want := Entry{
		TS:         "2025-03-14T09:00:00Z",
		Type:       "audit",
		Event:      "attendance.recorded",
		Resource:   "attendance",
		Action:     "recorded",
		RecordID:   "att-1",
		EmployeeID: "emp-7",
		RequestID:  "req-123",
		ActorID:    "user-42",
		ActorRole:  auth.RoleHR,
	}
	if entry.Fields["status"] != "PRESENT" || len(entry.Fields) != 1 {
		t.Fatalf("unexpected fields: %v", entry.Fields)
	}
	entry.Fields = nil
	if !reflect.DeepEqual(entry, want) {
		t.Fatalf("entry = %+v\nwant   %+v", entry, want)
	}
}

func TestBuildLeavesCallerFieldsUntouched(t *testing.T) {
	fields := map[string]any{"id": "emp-1"}
	e, err := Build(context.Background(), "employee.deleted", fields)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if e.RecordID != "emp-1" || e.ActorID != "" || e.RequestID != "" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if fields["id"] != "emp-1" {
		t.Fatal("caller map was modified")
	}
}

func TestLogEventRejectsMalformedNames(t *testing.T) {
	for _, name := range []string{"", "  ", "login", ".created", "employee."} {
		if err := LogEvent(context.Background(), name, nil); err == nil {
			t.Fatalf("expected error for event %q", name)
		}
	}
}
