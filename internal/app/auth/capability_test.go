package auth

import (
	"errors"
	"testing"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func TestCapability_Visible(t *testing.T) {
	student := &models.UserProfile{UID: "s1", Role: models.RoleStudent, Department: "CSE", Section: "A"}

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"admin sees all", Session{UID: "a", Role: models.RoleAdmin}, true},
		{"placement head sees all", Session{UID: "p", Role: models.RolePlacementHead}, true},
		{"department coordinator in department", Session{UID: "d", Role: models.RoleDepartmentCoordinator, Department: "cse"}, true},
		{"department coordinator elsewhere", Session{UID: "d", Role: models.RoleDepartmentCoordinator, Department: "ECE"}, false},
		{"class coordinator same section", Session{UID: "c", Role: models.RoleClassCoordinator, Department: "CSE", Section: "A"}, true},
		{"class coordinator other section", Session{UID: "c", Role: models.RoleClassCoordinator, Department: "CSE", Section: "B"}, false},
		{"coordinator without department", Session{UID: "d", Role: models.RoleDepartmentCoordinator}, false},
		{"student self", Session{UID: "s1", Role: models.RoleStudent}, true},
		{"other student", Session{UID: "s2", Role: models.RoleStudent, Department: "CSE", Section: "A"}, false},
		{"unknown role", Session{UID: "x", Role: "GUEST"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Capability().Visible(tt.session, student); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCapabilityFor_UnknownRoleAllowsNothing(t *testing.T) {
	c := CapabilityFor("GUEST")
	if c != (Capability{Scope: ScopeSelf}) {
		t.Errorf("Expected empty capability with self scope, got %+v", c)
	}
	if !CapabilityFor(models.RoleStudent).CanRegister {
		t.Errorf("Expected students to be able to register")
	}
	if CapabilityFor(models.RoleAdmin).CanRegister {
		t.Errorf("Expected admins not to register for drives")
	}
}

func TestCanProvision(t *testing.T) {
	dept := Session{UID: "d", Role: models.RoleDepartmentCoordinator, Department: "CSE"}
	class := Session{UID: "c", Role: models.RoleClassCoordinator, Department: "CSE", Section: "A"}

	tests := []struct {
		name    string
		session Session
		role    models.Role
		dept    string
		section string
		wantErr error
	}{
		{"admin any role", Session{Role: models.RoleAdmin}, models.RolePlacementHead, "", "", nil},
		{"department coordinator adds class coordinator", dept, models.RoleClassCoordinator, "CSE", "B", nil},
		{"department coordinator adds head", dept, models.RolePlacementHead, "CSE", "", apperrors.ErrRoleNotAssignable},
		{"department coordinator other department", dept, models.RoleStudent, "ECE", "A", apperrors.ErrPermissionDenied},
		{"class coordinator adds student", class, models.RoleStudent, "CSE", "A", nil},
		{"class coordinator other section", class, models.RoleStudent, "CSE", "B", apperrors.ErrPermissionDenied},
		{"class coordinator adds coordinator", class, models.RoleClassCoordinator, "CSE", "A", apperrors.ErrRoleNotAssignable},
		{"student adds anyone", Session{Role: models.RoleStudent}, models.RoleStudent, "", "", apperrors.ErrRoleNotAssignable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanProvision(tt.session, tt.role, tt.dept, tt.section)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
