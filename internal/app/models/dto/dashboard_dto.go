package dto

import "time"

// Counter pairs a total with the upcoming subset
type Counter struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
}

// StudentDashboard is the student's own view
type StudentDashboard struct {
	ProfileStatus      string `json:"profileStatus"`
	EligibleOpenDrives int    `json:"eligibleOpenDrives"`
	AppliedDrives      int    `json:"appliedDrives"`
	EnrolledTrainings  int    `json:"enrolledTrainings"`
}

// DashboardResponse is shaped by the caller's role
type DashboardResponse struct {
	Role             string            `json:"role"`
	StudentsByStatus map[string]int    `json:"studentsByStatus,omitempty"`
	PendingApprovals int               `json:"pendingApprovals"`
	Placed           int               `json:"placed"`
	Drives           Counter           `json:"drives"`
	Trainings        Counter           `json:"trainings"`
	Student          *StudentDashboard `json:"student,omitempty"`
}

// Calendar event kinds
const (
	EventDriveDeadline = "DRIVE_DEADLINE"
	EventDriveDate     = "DRIVE_DATE"
	EventTraining      = "TRAINING"
)

// CalendarEvent is a dated item on the calendar
type CalendarEvent struct {
	Kind  string     `json:"kind"`
	RefID string     `json:"refId"`
	Title string     `json:"title"`
	At    time.Time  `json:"at"`
	EndAt *time.Time `json:"endAt,omitempty"`
}
