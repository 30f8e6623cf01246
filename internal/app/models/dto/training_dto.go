package dto

import (
	"time"

	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
)

// TrainingEligibilityRequest restricts a training to branches and a year of study
type TrainingEligibilityRequest struct {
	Branches []string `json:"branches"`
	Year     int      `json:"year" binding:"omitempty,min=1,max=4"`
}

// TrainingRequest creates or replaces a training
type TrainingRequest struct {
	Title       string                     `json:"title" binding:"required,max=200"`
	Trainer     string                     `json:"trainer"`
	Description string                     `json:"description"`
	Venue       string                     `json:"venue"`
	StartDate   *time.Time                 `json:"startDate"`
	EndDate     *time.Time                 `json:"endDate"`
	Eligibility TrainingEligibilityRequest `json:"eligibility"`
}

// TrainingResponse is a training as seen by the caller
type TrainingResponse struct {
	*models.Training
	ParticipantCount int                 `json:"participantCount"`
	Eligibility      *eligibility.Result `json:"eligibilityResult,omitempty"`
	Enrolled         *bool               `json:"enrolled,omitempty"`
}
