package hr

import (
	"slices"
	"strings"
	"time"
)

// User is a login account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	EmployeeID   string    `json:"employeeId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Employee is a person on the payroll.
type Employee struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Position      string    `json:"position"`
	DepartmentID  string    `json:"departmentId,omitempty"`
	Salary        int64     `json:"salary"` // minor units
	DateOfJoining time.Time `json:"dateOfJoining"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Department groups employees. EmployeeCount is refreshed on demand.
type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ManagerID     string    `json:"managerId,omitempty"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Attendance is one employee's mark for one calendar day.
type Attendance struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	// Day is the calendar day of Date in the server location (YYYY-MM-DD).
	Day       string    `json:"day"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Leave is a leave request.
type Leave struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Payroll is one employee's pay slip for a month. Amounts are minor units.
type Payroll struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	Month       string     `json:"month"` // YYYY-MM
	BasicSalary int64      `json:"basicSalary"`
	Allowances  int64      `json:"allowances"`
	Deductions  int64      `json:"deductions"`
	NetSalary   int64      `json:"netSalary"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Project is a unit of work with assigned members.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	MemberIDs   []string   `json:"memberIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Task belongs to a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Review is a performance review for a period.
type Review struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	ReviewerID string    `json:"reviewerId"`
	Period     string    `json:"period"`
	Rating     int       `json:"rating"`
	Comments   string    `json:"comments"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Closed value sets. The first entry of each set is the default.
var (
	EmployeeStatuses   = []string{"ACTIVE", "INACTIVE", "ON_LEAVE"}
	AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusOnLeave}
	LeaveTypes         = []string{"SICK", "CASUAL", "ANNUAL", "UNPAID"}
	LeaveStatuses      = []string{LeavePending, LeaveApproved, LeaveRejected}
	PayrollStatuses    = []string{PayrollPending, PayrollPaid}
	ProjectStatuses    = []string{"PLANNED", "ACTIVE", "COMPLETED", "ON_HOLD"}
	TaskStatuses       = []string{"TODO", "IN_PROGRESS", "DONE"}
	TaskPriorities     = []string{"LOW", "MEDIUM", "HIGH"}
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusOnLeave = "ON_LEAVE"

	LeavePending  = "PENDING"
	LeaveApproved = "APPROVED"
	LeaveRejected = "REJECTED"

	PayrollPending = "PENDING"
	PayrollPaid    = "PAID"
)

// coerce returns v when it is a member of set, otherwise set[0].
func coerce(v string, set []string) string {
	if v = strings.TrimSpace(v); slices.Contains(set, v) {
		return v
	}
	return set[0]
}

// ParseAttendanceStatus returns s when it is PRESENT, ABSENT or ON_LEAVE
// and PRESENT for anything else. Input is never rejected.
func ParseAttendanceStatus(s string) string {
	return coerce(s, AttendanceStatuses)
}
