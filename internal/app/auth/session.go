// Package auth describes who is calling and what their role lets them do.
// Services receive the Session explicitly; nothing here reads ambient state.
package auth

import (
	"github.com/yigit/placementportal/internal/app/models"
)

// Session is the verified identity of the caller
type Session struct {
	UID        string
	Email      string
	Role       models.Role
	Department string
	Section    string
}

// Capability returns the capability descriptor of the session's role
func (s Session) Capability() Capability {
	return CapabilityFor(s.Role)
}

// IsSelf reports whether uid is the caller
func (s Session) IsSelf(uid string) bool {
	return s.UID != "" && s.UID == uid
}

// IsStudent reports whether the caller is a student
func (s Session) IsStudent() bool {
	return s.Role == models.RoleStudent
}
