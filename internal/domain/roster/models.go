package roster

import "time"

// Period types.
const (
	TypeWeekly      = "weekly"
	TypeFortnightly = "fortnightly"
	TypeMonthly     = "monthly"
)

// Lifecycle statuses. A period starts as draft, is published once scheduling
// is final, and is locked when the period closes. Locked is terminal.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusLocked    = "locked"
)

// Lifecycle actions.
const (
	ActionPublish    = "publish"
	ActionLock       = "lock"
	ActionDelete     = "delete"
	ActionBulkAssign = "bulk_assign"
)

var PeriodTypes = []string{TypeWeekly, TypeFortnightly, TypeMonthly}

type RosterPeriod struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationId"`
	Type           string    `json:"type"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
	RostersCount   int       `json:"rostersCount"`
	CreatedBy      int64     `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RosterAssignmentRequest is the payload a bulk assignment submits. It is
// transient: built per user action, sent once, discarded after the response.
type RosterAssignmentRequest struct {
	RosterPeriodID int64   `json:"rosterPeriodId"`
	EmployeeIDs    []int64 `json:"employeeIds"`
	ShiftID        int64   `json:"shiftId"`
	CreatedBy      int64   `json:"createdBy"`
}

// Plan is the validated request plus the pre-submission estimate shown to the
// user. The authoritative roster count is whatever the store reports after
// the write.
type Plan struct {
	Request              RosterAssignmentRequest `json:"request"`
	EstimatedRosterCount int                     `json:"estimatedRosterCount"`
}

type RosterAssignment struct {
	ID             int64     `json:"id"`
	RosterPeriodID int64     `json:"rosterPeriodId"`
	EmployeeID     int64     `json:"employeeId"`
	ShiftID        int64     `json:"shiftId"`
	WorkDate       time.Time `json:"workDate"`
	CreatedBy      int64     `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type BulkAssignResult struct {
	Created            int     `json:"created"`
	SkippedEmployeeIDs []int64 `json:"skippedEmployeeIds,omitempty"`
	RostersCount       int     `json:"rostersCount"`
}
