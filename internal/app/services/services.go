package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// Services defined in this package:
// - AuthService: accounts, sign-in, token refresh and sign-out
// - UserService: provisioning, profile completion and approval
// - CompanyService: drives, opt-in/opt-out and drive rosters
// - TrainingService: trainings, enrolment and rosters
// - PlacementRecordService: the placement ledger and its summary
// - ImportService: bulk student and ledger imports
// - DashboardService: dashboard counters and the calendar

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// requireCapability fails with ErrPermissionDenied when allowed is false.
func requireCapability(allowed bool, action string) error {
	if !allowed {
		return apperrors.NewForbiddenError(fmt.Sprintf("your role cannot %s", action))
	}
	return nil
}

// requireStaff rejects students from staff-only views.
func requireStaff(s appauth.Session) error {
	if s.Capability().Scope == appauth.ScopeSelf {
		return apperrors.NewForbiddenError("this view is only available to staff")
	}
	return nil
}

func validationf(format string, args ...interface{}) error {
	return apperrors.NewValidationError(fmt.Sprintf(format, args...))
}

// containsFold reports whether haystack contains needle ignoring case.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// visibleStudents returns the student profiles within the session's scope
func visibleStudents(ctx context.Context, users *repositories.UserRepository, session appauth.Session) ([]models.UserProfile, error) {
	students, err := users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	capability := session.Capability()
	return eligibility.Apply(students, func(p models.UserProfile) bool {
		return capability.Visible(session, &p)
	}), nil
}

// requireVerifiedStudent loads the caller's own profile and checks it may register
func requireVerifiedStudent(ctx context.Context, users *repositories.UserRepository, session appauth.Session) (*models.UserProfile, error) {
	if err := requireCapability(session.Capability().CanRegister, "register for drives or trainings"); err != nil {
		return nil, err
	}
	profile, err := users.GetByUID(ctx, session.UID)
	if err != nil {
		return nil, err
	}
	if profile.ProfileStatus != models.ProfileStatusVerified {
		return nil, apperrors.NewCustomError(apperrors.ErrProfileNotVerified, "your profile must be verified before you can register")
	}
	return profile, nil
}

func rosterEntry(p models.UserProfile, result eligibility.Result) dto.RosterEntry {
	return dto.RosterEntry{
		UID:             p.UID,
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		RollNumber:      p.RollNumber,
		Department:      p.Department,
		Section:         p.Section,
		Year:            p.Year,
		CGPA:            p.CGPA,
		Eligible:        result.Eligible,
		Reason:          result.Reason,
		PlacementStatus: string(p.PlacementStatus),
	}
}
