package dto

import (
	"time"

	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
)

// CriteriaRequest is the eligibility criteria of a drive
type CriteriaRequest struct {
	MinCGPA         float64  `json:"minCGPA" binding:"min=0,max=10"`
	SSLC            float64  `json:"sslc" binding:"min=0,max=100"`
	HSC             float64  `json:"hsc" binding:"min=0,max=100"`
	BacklogsAllowed int      `json:"backlogsAllowed" binding:"min=0"`
	Branches        []string `json:"branches"`
}

// ToCriteria converts the request into the engine's criteria
func (r CriteriaRequest) ToCriteria() eligibility.Criteria {
	return eligibility.Criteria{
		MinCGPA:         r.MinCGPA,
		SSLC:            r.SSLC,
		HSC:             r.HSC,
		BacklogsAllowed: r.BacklogsAllowed,
		Branches:        r.Branches,
	}
}

// RoundRequest is one interview round
type RoundRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

// CompanyRequest creates or replaces a drive. Membership sets are not part of it.
type CompanyRequest struct {
	Name                string          `json:"name" binding:"required,max=200"`
	Description         string          `json:"description"`
	Roles               []string        `json:"roles"`
	Type                string          `json:"type" binding:"omitempty,max=50"`
	Year                int             `json:"year" binding:"omitempty,min=1,max=4"`
	Salary              string          `json:"salary" binding:"omitempty,max=100"`
	Location            string          `json:"location"`
	EligibilityCriteria CriteriaRequest `json:"eligibilityCriteria"`
	Deadline            *time.Time      `json:"deadline"`
	DriveDate           *time.Time      `json:"driveDate"`
	Rounds              []RoundRequest  `json:"rounds" binding:"dive"`
	Requirements        string          `json:"requirements"`
}

// CompanyListQuery filters the drive listing
type CompanyListQuery struct {
	Search    string `form:"search"`
	Type      string `form:"type"`
	Year      int    `form:"year"`
	MinSalary string `form:"minSalary"`
	Upcoming  bool   `form:"upcoming"`
}

// CompanyResponse is a drive as seen by the caller. Students get their own
// eligibility and registration instead of the membership sets.
type CompanyResponse struct {
	*models.Company
	ApplicantCount int                            `json:"applicantCount"`
	OptedOutCount  int                            `json:"optedOutCount"`
	Eligibility    *eligibility.Result            `json:"eligibility,omitempty"`
	Registration   eligibility.RegistrationStatus `json:"registration,omitempty"`
}

// RosterQuery filters a drive or training roster
type RosterQuery struct {
	Eligibility string `form:"eligibility"`
	Status      string `form:"status"`
	Enrolled    string `form:"enrolled"`
	Department  string `form:"department"`
}

// RosterEntry is one student on a roster
type RosterEntry struct {
	UID             string                         `json:"uid"`
	DisplayName     string                         `json:"displayName"`
	Email           string                         `json:"email"`
	RollNumber      string                         `json:"rollNumber,omitempty"`
	Department      string                         `json:"department,omitempty"`
	Section         string                         `json:"section,omitempty"`
	Year            int                            `json:"year,omitempty"`
	CGPA            *float64                       `json:"cgpa,omitempty"`
	Eligible        bool                           `json:"eligible"`
	Reason          string                         `json:"reason,omitempty"`
	Registration    eligibility.RegistrationStatus `json:"registration,omitempty"`
	Enrolled        *bool                          `json:"enrolled,omitempty"`
	PlacementStatus string                         `json:"placementStatus,omitempty"`
}
