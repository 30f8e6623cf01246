package auth

import (
	"strings"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// Scope limits which profiles a role can see
type Scope string

const (
	ScopeAll        Scope = "ALL"
	ScopeDepartment Scope = "DEPARTMENT"
	ScopeSection    Scope = "SECTION"
	ScopeSelf       Scope = "SELF"
)

// Capability is the set of actions a role may perform
type Capability struct {
	CanManageUsers     bool
	CanManageDrives    bool
	CanManageTrainings bool
	CanManageRecords   bool
	CanApprove         bool
	CanImport          bool
	CanRegister        bool
	Scope              Scope
}

var capabilities = map[models.Role]Capability{
	models.RoleAdmin: {
		CanManageUsers:     true,
		CanManageDrives:    true,
		CanManageTrainings: true,
		CanManageRecords:   true,
		CanApprove:         true,
		CanImport:          true,
		Scope:              ScopeAll,
	},
	models.RolePlacementHead: {
		CanManageDrives:  true,
		CanManageRecords: true,
		CanImport:        true,
		Scope:            ScopeAll,
	},
	models.RoleTrainingHead: {
		CanManageTrainings: true,
		Scope:              ScopeAll,
	},
	models.RoleDepartmentCoordinator: {
		CanManageUsers: true,
		CanApprove:     true,
		CanImport:      true,
		Scope:          ScopeDepartment,
	},
	models.RoleClassCoordinator: {
		CanManageUsers: true,
		CanApprove:     true,
		CanImport:      true,
		Scope:          ScopeSection,
	},
	models.RoleStudent: {
		CanRegister: true,
		Scope:       ScopeSelf,
	},
}

// CapabilityFor returns the descriptor of role. Unknown roles may do nothing
// and only see themselves.
func CapabilityFor(role models.Role) Capability {
	if c, ok := capabilities[role]; ok {
		return c
	}
	return Capability{Scope: ScopeSelf}
}

// Visible reports whether the session may see profile.
func (c Capability) Visible(s Session, profile *models.UserProfile) bool {
	if profile == nil {
		return false
	}
	if s.IsSelf(profile.UID) {
		return true
	}
	switch c.Scope {
	case ScopeAll:
		return true
	case ScopeDepartment:
		return sameUnit(s.Department, profile.Department)
	case ScopeSection:
		return sameUnit(s.Department, profile.Department) && sameUnit(s.Section, profile.Section)
	default:
		return false
	}
}

// InDepartment reports whether department-scoped data such as placement records
// is visible to the session.
func (c Capability) InDepartment(s Session, department string) bool {
	switch c.Scope {
	case ScopeAll:
		return true
	case ScopeDepartment, ScopeSection:
		return sameUnit(s.Department, department)
	default:
		return false
	}
}

// CanProvision checks whether the session may create a user with the given
// role in the given department and section.
func CanProvision(s Session, role models.Role, department, section string) error {
	switch s.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleDepartmentCoordinator:
		if role != models.RoleClassCoordinator && role != models.RoleStudent {
			return apperrors.ErrRoleNotAssignable
		}
		if !sameUnit(s.Department, department) {
			return apperrors.NewForbiddenError("users can only be added to your own department")
		}
		return nil
	case models.RoleClassCoordinator:
		if role != models.RoleStudent {
			return apperrors.ErrRoleNotAssignable
		}
		if !sameUnit(s.Department, department) || !sameUnit(s.Section, section) {
			return apperrors.NewForbiddenError("students can only be added to your own section")
		}
		return nil
	default:
		return apperrors.ErrRoleNotAssignable
	}
}

// sameUnit compares department or section names. An empty caller unit never matches.
func sameUnit(mine, theirs string) bool {
	mine = strings.TrimSpace(mine)
	return mine != "" && strings.EqualFold(mine, strings.TrimSpace(theirs))
}
