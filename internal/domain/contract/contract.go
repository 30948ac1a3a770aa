// internal/domain/contract/contract.go
package contract

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of an employment contract.
// Values match the enum names stored by the HR application.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusActive     Status = "ACTIVE"
	StatusExpired    Status = "EXPIRED"
	StatusTerminated Status = "TERMINATED"
)

// Contract is a read-only snapshot of a row in the 'contract' table.
type Contract struct {
	ID                int64
	Number            string
	EmployeeID        int64
	Status            Status
	StartDate         time.Time
	EndDate           sql.NullTime // NULL means the contract is indefinite
	JobTitle          string
	DepartmentID      int64
	TerminatedDate    sql.NullTime
	TerminationReason sql.NullString
}

// Employee is the subset of employee data the notifier needs.
type Employee struct {
	ID             int64
	Code           string
	FullName       string
	DepartmentID   sql.NullInt64
	DepartmentName sql.NullString // Joined from 'department'
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDay re-anchors the calendar date of t in loc. DATE columns come back
// from the driver as UTC midnight and must not shift across the date line.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ExpiresWithin reports whether the contract is active and its end date falls
// in (today, today+thresholdDays]. A contract ending today is not included.
func (c *Contract) ExpiresWithin(today time.Time, thresholdDays int) bool {
	if c.Status != StatusActive || !c.EndDate.Valid {
		return false
	}
	if thresholdDays < 0 {
		thresholdDays = 0
	}
	day := DateOnly(today)
	end := calendarDay(c.EndDate.Time, day.Location())
	return end.After(day) && !end.After(day.AddDate(0, 0, thresholdDays))
}

// DaysRemaining returns the whole number of calendar days between today and the end date.
// It returns 0 for indefinite contracts.
func (c *Contract) DaysRemaining(today time.Time) int {
	if !c.EndDate.Valid {
		return 0
	}
	day := DateOnly(today)
	end := calendarDay(c.EndDate.Time, day.Location())
	// Round to absorb DST shifts between the two midnights.
	return int(end.Sub(day).Round(24*time.Hour) / (24 * time.Hour))
}
