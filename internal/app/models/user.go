package models

import (
	"strings"
	"time"

	"github.com/yigit/placementportal/internal/app/eligibility"
)

// Account is the credential record of the identity provider. It is keyed by
// the normalised email.
type Account struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Role         Role       `json:"role"`
	Disabled     bool       `json:"disabled"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// RefreshToken is an opaque token that can be exchanged for a new access token
type RefreshToken struct {
	Token     string    `json:"token"`
	UID       string    `json:"uid"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile holds identity, academic attributes and lifecycle flags of a user.
// Profiles are never hard-deleted.
type UserProfile struct {
	UID              string          `json:"uid"`
	Email            string          `json:"email"`
	Role             Role            `json:"role"`
	DisplayName      string          `json:"displayName"`
	Department       string          `json:"department,omitempty"`
	Section          string          `json:"section,omitempty"`
	RollNumber       string          `json:"rollNumber,omitempty"`
	Year             int             `json:"year,omitempty"` // year of study, 1-4
	CGPA             *float64        `json:"cgpa,omitempty"`
	Tenth            *float64        `json:"tenth,omitempty"`
	Twelfth          *float64        `json:"twelfth,omitempty"`
	StandingArrears  *int            `json:"standingArrears,omitempty"`
	HistoryOfArrears *int            `json:"historyOfArrears,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	ProfileCompleted bool            `json:"profileCompleted"`
	ProfileStatus    ProfileStatus   `json:"profileStatus"`
	DeclineReason    string          `json:"declineReason,omitempty"`
	PlacementStatus  PlacementStatus `json:"placementStatus,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Student projects the academic attributes the eligibility engine reads.
func (p *UserProfile) Student() eligibility.Student {
	return eligibility.Student{
		UID:             p.UID,
		CGPA:            p.CGPA,
		Tenth:           p.Tenth,
		Twelfth:         p.Twelfth,
		StandingArrears: p.StandingArrears,
		Department:      p.Department,
		Year:            p.Year,
	}
}

// IsStudent reports whether the profile belongs to a student
func (p *UserProfile) IsStudent() bool {
	return p.Role == RoleStudent
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
