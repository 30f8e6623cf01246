package dto

// CreateUserRequest provisions an account and its profile
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=100"`
	Role        string `json:"role" binding:"required"`
	Department  string `json:"department" binding:"omitempty,max=50"`
	Section     string `json:"section" binding:"omitempty,max=10"`
	RollNumber  string `json:"rollNumber" binding:"omitempty,max=20"`
	Year        int    `json:"year" binding:"omitempty,min=1,max=4"`
	// Password is generated and emailed when empty
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

// CompleteProfileRequest carries the academic attributes a student submits for approval
type CompleteProfileRequest struct {
	DisplayName      string   `json:"displayName" binding:"omitempty,min=2,max=100"`
	RollNumber       string   `json:"rollNumber" binding:"required"`
	Department       string   `json:"department" binding:"omitempty,max=50"`
	Section          string   `json:"section" binding:"omitempty,max=10"`
	Year             int      `json:"year" binding:"required,min=1,max=4"`
	CGPA             *float64 `json:"cgpa" binding:"required,min=0,max=10"`
	Tenth            *float64 `json:"tenth" binding:"required,min=0,max=100"`
	Twelfth          *float64 `json:"twelfth" binding:"required,min=0,max=100"`
	StandingArrears  *int     `json:"standingArrears" binding:"required,min=0"`
	HistoryOfArrears *int     `json:"historyOfArrears" binding:"omitempty,min=0"`
	Phone            string   `json:"phone" binding:"omitempty,max=20"`
}

// DeclineProfileRequest sends a profile back with a reason
type DeclineProfileRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// PlacementStatusRequest sets or clears a student's placement status
type PlacementStatusRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=PLACED NOT_PLACED OPTED_OUT_OF_PLACEMENT"`
}

// UserListQuery filters the profile listing
type UserListQuery struct {
	Role            string `form:"role"`
	Department      string `form:"department"`
	Section         string `form:"section"`
	Status          string `form:"status"`
	PlacementStatus string `form:"placementStatus"`
	Search          string `form:"search"`
}
