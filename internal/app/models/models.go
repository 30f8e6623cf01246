package models

import "strings"

// Role is one of the six portal roles
type Role string

const (
	RoleAdmin                 Role = "ADMIN"
	RolePlacementHead         Role = "PLACEMENT_HEAD"
	RoleTrainingHead          Role = "TRAINING_HEAD"
	RoleDepartmentCoordinator Role = "DEPARTMENT_COORDINATOR"
	RoleClassCoordinator      Role = "CLASS_COORDINATOR"
	RoleStudent               Role = "STUDENT"
)

// Roles lists every known role
var Roles = []Role{
	RoleAdmin,
	RolePlacementHead,
	RoleTrainingHead,
	RoleDepartmentCoordinator,
	RoleClassCoordinator,
	RoleStudent,
}

// ParseRole accepts any casing and dashes or spaces in place of underscores.
func ParseRole(s string) (Role, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, r := range Roles {
		if string(r) == norm {
			return r, true
		}
	}
	return "", false
}

// ProfileStatus is the approval lifecycle of a profile
type ProfileStatus string

const (
	ProfileStatusPending         ProfileStatus = "PENDING"
	ProfileStatusApprovalPending ProfileStatus = "APPROVAL_PENDING"
	ProfileStatusVerified        ProfileStatus = "VERIFIED"
)

// PlacementStatus is the optional placement outcome of a student
type PlacementStatus string

const (
	PlacementStatusNone                PlacementStatus = ""
	PlacementStatusPlaced              PlacementStatus = "PLACED"
	PlacementStatusNotPlaced           PlacementStatus = "NOT_PLACED"
	PlacementStatusOptedOutOfPlacement PlacementStatus = "OPTED_OUT_OF_PLACEMENT"
)

// Valid reports whether s is a known placement status, including the empty one.
func (s PlacementStatus) Valid() bool {
	switch s {
	case PlacementStatusNone, PlacementStatusPlaced, PlacementStatusNotPlaced, PlacementStatusOptedOutOfPlacement:
		return true
	}
	return false
}
