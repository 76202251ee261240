// Package audit records state-changing HR actions as JSON lines on the obs
// logger. Event names are "<resource>.<action>", e.g. attendance.recorded.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/obs"
)

// Entry is one audit line.
type Entry struct {
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	Event      string         `json:"event"`
	Resource   string         `json:"resource"`
	Action     string         `json:"action"`
	RecordID   string         `json:"record_id,omitempty"`
	EmployeeID string         `json:"employee_id,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	ActorID    string         `json:"user_id,omitempty"`
	ActorRole  string         `json:"role,omitempty"`
	Fields     map[string]any `json:"fields"`
}

var now = time.Now

type requestIDKey struct{}

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// Build assembles the entry for event without writing it. The "id" and
// "employee_id" fields, when strings, are lifted to RecordID and EmployeeID.
func Build(ctx context.Context, event string, fields map[string]any) (Entry, error) {
	event = strings.TrimSpace(event)
	resource, action, ok := strings.Cut(event, ".")
	if !ok || resource == "" || action == "" {
		return Entry{}, fmt.Errorf("audit event %q must be <resource>.<action>", event)
	}
	e := Entry{
		TS:        now().UTC().Format(time.RFC3339Nano),
		Type:      "audit",
		Event:     event,
		Resource:  resource,
		Action:    action,
		RequestID: requestID(ctx),
		Fields:    map[string]any{},
	}
	if id, ok := auth.IdentityFromContext(ctx); ok {
		e.ActorID, e.ActorRole = id.ID, id.Role
	}
	if len(fields) > 0 {
		e.Fields = maps.Clone(fields)
	}
	if v, ok := e.Fields["id"].(string); ok {
		e.RecordID = v
		delete(e.Fields, "id")
	}
	if v, ok := e.Fields["employee_id"].(string); ok {
		e.EmployeeID = v
		delete(e.Fields, "employee_id")
	}
	return e, nil
}

// LogEvent builds and writes one audit line.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	e, err := Build(ctx, event, fields)
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
