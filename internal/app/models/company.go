package models

import (
	"time"

	"github.com/yigit/placementportal/internal/app/eligibility"
)

// Round is one interview round of a drive
type Round struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// Company is a hiring drive. A student uid appears in at most one of
// Applicants and OptedOut.
type Company struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Description         string               `json:"description,omitempty"`
	Roles               []string             `json:"roles"`
	Type                string               `json:"type,omitempty"`
	Year                int                  `json:"year,omitempty"`
	Salary              string               `json:"salary,omitempty"`
	Location            string               `json:"location,omitempty"`
	EligibilityCriteria eligibility.Criteria `json:"eligibilityCriteria"`
	Deadline            *time.Time           `json:"deadline,omitempty"`
	DriveDate           *time.Time           `json:"driveDate,omitempty"`
	Rounds              []Round              `json:"rounds"`
	Requirements        string               `json:"requirements,omitempty"`
	Applicants          []string             `json:"applicants"`
	OptedOut            []string             `json:"optedOut"`
	CreatedBy           string               `json:"createdBy,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// RegistrationOf returns where uid sits in the drive's membership sets.
func (c *Company) RegistrationOf(uid string) eligibility.RegistrationStatus {
	return eligibility.StatusOf(uid, c.Applicants, c.OptedOut)
}

// RegistrationOpen reports whether membership may still change at now.
func (c *Company) RegistrationOpen(now time.Time) bool {
	return c.Deadline == nil || !now.After(*c.Deadline)
}

// Training is a training programme with its own membership set
type Training struct {
	ID           string                       `json:"id"`
	Title        string                       `json:"title"`
	Trainer      string                       `json:"trainer,omitempty"`
	Description  string                       `json:"description,omitempty"`
	Venue        string                       `json:"venue,omitempty"`
	StartDate    *time.Time                   `json:"startDate,omitempty"`
	EndDate      *time.Time                   `json:"endDate,omitempty"`
	Eligibility  eligibility.TrainingCriteria `json:"eligibility"`
	Participants []string                     `json:"participants"`
	CreatedBy    string                       `json:"createdBy,omitempty"`
	CreatedAt    time.Time                    `json:"createdAt"`
	UpdatedAt    time.Time                    `json:"updatedAt"`
}

// Enrolled reports whether uid is a participant
func (t *Training) Enrolled(uid string) bool {
	return eligibility.Contains(t.Participants, uid)
}
