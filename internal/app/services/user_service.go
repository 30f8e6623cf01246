package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/auth"
	"github.com/yigit/placementportal/internal/pkg/email"
	"github.com/yigit/placementportal/internal/pkg/helpers"
	"github.com/yigit/placementportal/internal/pkg/validation"
)

const (
	generatedPasswordLength = 12
	rollbackTimeout         = 5 * time.Second
)

// UserService manages profiles: provisioning, completion, approval and placement status
type UserService struct {
	userRepo     *repositories.UserRepository
	authService  *AuthService
	emailService email.EmailService
	rollNumbers  *validation.RollNumberValidator
	logger       zerolog.Logger
	now          Clock
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	authService *AuthService,
	emailService email.EmailService,
	rollNumbers *validation.RollNumberValidator,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		authService:  authService,
		emailService: emailService,
		rollNumbers:  rollNumbers,
		logger:       logger,
		now:          systemClock,
	}
}

// CreateUser provisions an account and its profile
func (s *UserService) CreateUser(ctx context.Context, session appauth.Session, req *dto.CreateUserRequest) (*models.UserProfile, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, validationf("unknown role %q", req.Role)
	}

	profile := &models.UserProfile{
		Email:       req.Email,
		Role:        role,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Department:  strings.TrimSpace(req.Department),
		Section:     strings.TrimSpace(req.Section),
		RollNumber:  req.RollNumber,
		Year:        req.Year,
	}
	if _, err := s.provision(ctx, session, profile, req.Password); err != nil {
		return nil, err
	}
	return profile, nil
}

// provision creates the account and the profile for a new user. An empty
// password is generated and emailed. The generated password is returned.
func (s *UserService) provision(ctx context.Context, session appauth.Session, profile *models.UserProfile, password string) (string, error) {
	if err := appauth.CanProvision(session, profile.Role, profile.Department, profile.Section); err != nil {
		return "", err
	}
	profile.Email = models.NormalizeEmail(profile.Email)
	if !validation.NewStringValidation(profile.DisplayName).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength).
		Validate() {
		return "", validationf("display name must be %d-%d characters", validation.NameMinLength, validation.NameMaxLength)
	}

	if profile.RollNumber != "" {
		if err := s.checkRollNumber(ctx, "", profile.RollNumber); err != nil {
			return "", err
		}
		profile.RollNumber = s.rollNumbers.Normalize(profile.RollNumber)
	}

	generated := ""
	if password == "" {
		p, err := auth.GeneratePassword(generatedPasswordLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password, generated = p, p
	}

	uid, err := s.authService.CreateAccount(ctx, profile.Email, password, profile.Role)
	if err != nil {
		return "", err
	}

	now := s.now()
	profile.UID = uid
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.IsStudent() {
		profile.ProfileStatus = models.ProfileStatusPending
	} else {
		profile.ProfileStatus = models.ProfileStatusVerified
		profile.ProfileCompleted = true
	}

	if err := s.userRepo.Create(ctx, profile); err != nil {
		// The request context may be what failed the write
		rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		delErr := s.authService.DeleteAccount(rollbackCtx, profile.Email)
		cancel()
		if delErr != nil {
			s.logger.Error().Err(delErr).Str("email", profile.Email).Msg("Failed to roll back account after profile creation error")
		}
		return "", fmt.Errorf("profile creation error: %w", err)
	}

	if generated != "" {
		if err := s.emailService.SendAccountCreated(profile.Email, profile.DisplayName, generated); err != nil {
			s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to send account email")
		}
	}

	s.logger.Info().Str("uid", uid).Str("role", string(profile.Role)).Str("by", session.UID).Msg("User provisioned")
	return generated, nil
}

// checkRollNumber validates the format and that no other profile holds it
func (s *UserService) checkRollNumber(ctx context.Context, selfUID, roll string) error {
	if !s.rollNumbers.Valid(roll) {
		return apperrors.NewCustomError(apperrors.ErrInvalidRollNumber, fmt.Sprintf("roll number %q does not match the expected format", roll))
	}
	holders, err := s.userRepo.FindByRollNumber(ctx, s.rollNumbers.Normalize(roll))
	if err != nil {
		return err
	}
	for _, h := range holders {
		if h.UID != selfUID {
			return apperrors.ErrRollNumberExists
		}
	}
	return nil
}

// ListUsers returns the visible profiles matching q, one page at a time
func (s *UserService) ListUsers(ctx context.Context, session appauth.Session, q dto.UserListQuery, page, size int) (*dto.PageResponse[models.UserProfile], error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	all, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	capability := session.Capability()
	matched := eligibility.Apply(all,
		func(p models.UserProfile) bool { return capability.Visible(session, &p) },
		eligibility.ByField(q.Role, func(p models.UserProfile) string { return string(p.Role) }),
		eligibility.ByField(q.Department, func(p models.UserProfile) string { return p.Department }),
		eligibility.ByField(q.Section, func(p models.UserProfile) string { return p.Section }),
		eligibility.ByField(q.Status, func(p models.UserProfile) string { return string(p.ProfileStatus) }),
		eligibility.ByField(q.PlacementStatus, func(p models.UserProfile) string { return string(p.PlacementStatus) }),
		searchProfiles(q.Search),
	)

	items, info := helpers.Paginate(matched, page, size)
	return &dto.PageResponse[models.UserProfile]{Items: items, Pagination: info}, nil
}

func searchProfiles(term string) eligibility.Predicate[models.UserProfile] {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	return func(p models.UserProfile) bool {
		return containsFold(p.DisplayName, term) || containsFold(p.Email, term) || containsFold(p.RollNumber, term)
	}
}

// GetUser returns one profile if the caller may see it
func (s *UserService) GetUser(ctx context.Context, session appauth.Session, uid string) (*models.UserProfile, error) {
	profile, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !session.Capability().Visible(session, profile) {
		// Out-of-scope profiles look the same as missing ones
		return nil, apperrors.ErrUserNotFound
	}
	return profile, nil
}

// CompleteProfile stores a student's academic attributes and submits the
// profile for approval. Editing a verified profile sends it back for approval.
func (s *UserService) CompleteProfile(ctx context.Context, session appauth.Session, uid string, req *dto.CompleteProfileRequest) (*models.UserProfile, error) {
	if !session.IsSelf(uid) {
		return nil, apperrors.NewForbiddenError("you can only complete your own profile")
	}
	profile, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !profile.IsStudent() {
		return nil, validationf("only student profiles carry academic details")
	}

	switch {
	case !validation.FloatRange(req.CGPA, 0, 10):
		return nil, validationf("cgpa must be between 0 and 10")
	case !validation.FloatRange(req.Tenth, 0, 100), !validation.FloatRange(req.Twelfth, 0, 100):
		return nil, validationf("marks must be percentages between 0 and 100")
	case !validation.NonNegative(req.StandingArrears), !validation.NonNegative(req.HistoryOfArrears):
		return nil, validationf("arrear counts cannot be negative")
	case req.Year < 1 || req.Year > 4:
		return nil, validationf("year of study must be between 1 and 4")
	}
	department, err := provisioned("department", profile.Department, req.Department)
	if err != nil {
		return nil, err
	}
	if department == "" {
		return nil, validationf("department is required")
	}
	section, err := provisioned("section", profile.Section, req.Section)
	if err != nil {
		return nil, err
	}
	if err := s.checkRollNumber(ctx, uid, req.RollNumber); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"rollNumber":       s.rollNumbers.Normalize(req.RollNumber),
		"department":       department,
		"section":          section,
		"year":             req.Year,
		"cgpa":             req.CGPA,
		"tenth":            req.Tenth,
		"twelfth":          req.Twelfth,
		"standingArrears":  req.StandingArrears,
		"historyOfArrears": req.HistoryOfArrears,
		"phone":            strings.TrimSpace(req.Phone),
		"profileCompleted": true,
		"profileStatus":    models.ProfileStatusApprovalPending,
		"declineReason":    "",
	}
	if name := strings.TrimSpace(req.DisplayName); name != "" {
		fields["displayName"] = name
	}
	if err := s.userRepo.Update(ctx, uid, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByUID(ctx, uid)
}

// provisioned resolves a placement attribute a staff member may already have
// set on the account. Once stored it can only be repeated, never changed.
func provisioned(name, stored, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	switch {
	case stored == "":
		return requested, nil
	case requested == "", strings.EqualFold(stored, requested):
		return stored, nil
	default:
		return "", apperrors.NewForbiddenError(name + " is set by your coordinator and cannot be changed")
	}
}

// ApproveProfile verifies a profile awaiting approval
func (s *UserService) ApproveProfile(ctx context.Context, session appauth.Session, uid string) (*models.UserProfile, error) {
	profile, err := s.reviewable(ctx, session, uid)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.Update(ctx, uid, map[string]interface{}{
		"profileStatus": models.ProfileStatusVerified,
		"declineReason": "",
	})
	if err != nil {
		return nil, err
	}

	if err := s.emailService.SendProfileApproved(profile.Email, profile.DisplayName); err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to send approval email")
	}
	s.logger.Info().Str("uid", uid).Str("by", session.UID).Msg("Profile approved")
	return s.userRepo.GetByUID(ctx, uid)
}

// DeclineProfile sends a profile back to the student with a reason
func (s *UserService) DeclineProfile(ctx context.Context, session appauth.Session, uid, reason string) (*models.UserProfile, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationf("a reason is required to decline a profile")
	}
	profile, err := s.reviewable(ctx, session, uid)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.Update(ctx, uid, map[string]interface{}{
		"profileStatus": models.ProfileStatusPending,
		"declineReason": reason,
	})
	if err != nil {
		return nil, err
	}

	if err := s.emailService.SendProfileDeclined(profile.Email, profile.DisplayName, reason); err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("Failed to send decline email")
	}
	s.logger.Info().Str("uid", uid).Str("by", session.UID).Msg("Profile declined")
	return s.userRepo.GetByUID(ctx, uid)
}

// reviewable loads a profile the session may approve or decline
func (s *UserService) reviewable(ctx context.Context, session appauth.Session, uid string) (*models.UserProfile, error) {
	capability := session.Capability()
	if err := requireCapability(capability.CanApprove, "approve profiles"); err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !capability.Visible(session, profile) || session.IsSelf(uid) {
		return nil, apperrors.NewForbiddenError("this profile is outside your scope")
	}
	if profile.ProfileStatus != models.ProfileStatusApprovalPending {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatusChange,
			fmt.Sprintf("profile is %s, only profiles awaiting approval can be reviewed", profile.ProfileStatus))
	}
	return profile, nil
}

// SetPlacementStatus records a student's placement outcome
func (s *UserService) SetPlacementStatus(ctx context.Context, session appauth.Session, uid string, status models.PlacementStatus) (*models.UserProfile, error) {
	if err := requireCapability(session.Capability().CanManageRecords, "manage placement records"); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationf("unknown placement status %q", status)
	}
	profile, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !profile.IsStudent() {
		return nil, validationf("placement status only applies to students")
	}
	if err := s.userRepo.Update(ctx, uid, map[string]interface{}{"placementStatus": status}); err != nil {
		return nil, err
	}
	return s.userRepo.GetByUID(ctx, uid)
}

// markPlacedByRollNumber flags the student holding roll as placed. A missing
// match is not an error.
func (s *UserService) markPlacedByRollNumber(ctx context.Context, roll string) (bool, error) {
	holders, err := s.userRepo.FindByRollNumber(ctx, s.rollNumbers.Normalize(roll))
	if err != nil {
		return false, err
	}
	marked := false
	for _, h := range holders {
		if !h.IsStudent() || h.PlacementStatus == models.PlacementStatusPlaced {
			continue
		}
		err := s.userRepo.Update(ctx, h.UID, map[string]interface{}{"placementStatus": models.PlacementStatusPlaced})
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return marked, err
		}
		marked = true
	}
	return marked, nil
}
