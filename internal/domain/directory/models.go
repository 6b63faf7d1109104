package directory

import "time"

const (
	EmployeeStatusActive   = "Active"
	EmployeeStatusInactive = "Inactive"
)

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Employee struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationId"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Shift times are opaque display values in HH:MM form; the service never does
// arithmetic on them.
type Shift struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationId"`
	Name           string    `json:"name"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	CreatedAt      time.Time `json:"createdAt"`
}
