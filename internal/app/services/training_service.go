package services

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/spreadsheet"
)

// TrainingService manages trainings, enrolment and training rosters
type TrainingService struct {
	trainingRepo *repositories.TrainingRepository
	userRepo     *repositories.UserRepository
	logger       zerolog.Logger
	now          Clock
}

// NewTrainingService creates a new TrainingService
func NewTrainingService(trainingRepo *repositories.TrainingRepository, userRepo *repositories.UserRepository, logger zerolog.Logger) *TrainingService {
	return &TrainingService{
		trainingRepo: trainingRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          systemClock,
	}
}

func validateTrainingRequest(req *dto.TrainingRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return validationf("training title is required")
	}
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return validationf("training start must not be after its end")
	}
	if y := req.Eligibility.Year; y < 0 || y > 4 {
		return validationf("target year must be between 1 and 4")
	}
	return nil
}

func trainingCriteria(req dto.TrainingEligibilityRequest) eligibility.TrainingCriteria {
	return eligibility.TrainingCriteria{Branches: cleanList(req.Branches), TargetYear: req.Year}
}

// CreateTraining creates a training with no participants
func (s *TrainingService) CreateTraining(ctx context.Context, session appauth.Session, req *dto.TrainingRequest) (*models.Training, error) {
	if err := requireCapability(session.Capability().CanManageTrainings, "manage trainings"); err != nil {
		return nil, err
	}
	if err := validateTrainingRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	training := &models.Training{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Trainer:      strings.TrimSpace(req.Trainer),
		Description:  req.Description,
		Venue:        req.Venue,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Eligibility:  trainingCriteria(req.Eligibility),
		Participants: []string{},
		CreatedBy:    session.UID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, err
	}

	s.logger.Info().Str("trainingId", training.ID).Str("title", training.Title).Str("by", session.UID).Msg("Training created")
	return training, nil
}

// UpdateTraining replaces the editable fields of a training
func (s *TrainingService) UpdateTraining(ctx context.Context, session appauth.Session, id string, req *dto.TrainingRequest) (*models.Training, error) {
	if err := requireCapability(session.Capability().CanManageTrainings, "manage trainings"); err != nil {
		return nil, err
	}
	if err := validateTrainingRequest(req); err != nil {
		return nil, err
	}

	err := s.trainingRepo.Update(ctx, id, map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"trainer":     strings.TrimSpace(req.Trainer),
		"description": req.Description,
		"venue":       req.Venue,
		"startDate":   req.StartDate,
		"endDate":     req.EndDate,
		"eligibility": trainingCriteria(req.Eligibility),
	})
	if err != nil {
		return nil, err
	}
	return s.trainingRepo.GetByID(ctx, id)
}

// DeleteTraining removes a training
func (s *TrainingService) DeleteTraining(ctx context.Context, session appauth.Session, id string) error {
	if err := requireCapability(session.Capability().CanManageTrainings, "manage trainings"); err != nil {
		return err
	}
	return s.trainingRepo.Delete(ctx, id)
}

// GetTraining returns a training as seen by the caller
func (s *TrainingService) GetTraining(ctx context.Context, session appauth.Session, id string) (*dto.TrainingResponse, error) {
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewer(ctx, session)
	if err != nil {
		return nil, err
	}
	resp := presentTraining(training, viewer)
	return &resp, nil
}

// ListTrainings returns every training ordered by start date
func (s *TrainingService) ListTrainings(ctx context.Context, session appauth.Session) ([]dto.TrainingResponse, error) {
	trainings, err := s.trainingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewer(ctx, session)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(trainings, func(i, j int) bool {
		a, b := trainings[i].StartDate, trainings[j].StartDate
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	out := make([]dto.TrainingResponse, len(trainings))
	for i := range trainings {
		out[i] = presentTraining(&trainings[i], viewer)
	}
	return out, nil
}

func (s *TrainingService) viewer(ctx context.Context, session appauth.Session) (*models.UserProfile, error) {
	if !session.IsStudent() {
		return nil, nil
	}
	return s.userRepo.GetByUID(ctx, session.UID)
}

func presentTraining(training *models.Training, viewer *models.UserProfile) dto.TrainingResponse {
	resp := dto.TrainingResponse{Training: training, ParticipantCount: len(training.Participants)}
	if viewer == nil {
		return resp
	}
	result := eligibility.EvaluateTraining(viewer.Student(), training.Eligibility)
	enrolled := training.Enrolled(viewer.UID)
	resp.Eligibility = &result
	resp.Enrolled = &enrolled

	hidden := *training
	hidden.Participants = nil
	resp.Training = &hidden
	return resp
}

// Enroll adds the calling student to a training. Enrolling twice is a no-op.
func (s *TrainingService) Enroll(ctx context.Context, session appauth.Session, id string) (*dto.TrainingResponse, error) {
	profile, err := requireVerifiedStudent(ctx, s.userRepo, session)
	if err != nil {
		return nil, err
	}
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if training.EndDate != nil && training.EndDate.Before(s.now()) {
		return nil, apperrors.NewCustomError(apperrors.ErrRegistrationClosed, "this training has already ended")
	}
	result := eligibility.EvaluateTraining(profile.Student(), training.Eligibility)
	if !result.Eligible {
		return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, result.Reason)
	}

	if err := s.trainingRepo.AddParticipant(ctx, id, session.UID); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trainingId", id).Str("uid", session.UID).Msg("Student enrolled")

	updated, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := presentTraining(updated, profile)
	return &resp, nil
}

func parseEnrolledFilter(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case "true", "yes", "enrolled":
		v := true
		return &v, nil
	case "false", "no", "not-enrolled":
		v := false
		return &v, nil
	}
	return nil, validationf("unknown enrolled filter %q", s)
}

// Roster lists the visible students against a training
func (s *TrainingService) Roster(ctx context.Context, session appauth.Session, id string, q dto.RosterQuery) ([]dto.RosterEntry, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	eligibilityFilter, err := eligibility.ParseEligibilityFilter(q.Eligibility)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	enrolledFilter, err := parseEnrolledFilter(q.Enrolled)
	if err != nil {
		return nil, err
	}

	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	students, err := visibleStudents(ctx, s.userRepo, session)
	if err != nil {
		return nil, err
	}

	evaluate := func(p models.UserProfile) eligibility.Result {
		return eligibility.EvaluateTraining(p.Student(), training.Eligibility)
	}
	var byEnrolment eligibility.Predicate[models.UserProfile]
	if enrolledFilter != nil {
		want := *enrolledFilter
		byEnrolment = func(p models.UserProfile) bool { return training.Enrolled(p.UID) == want }
	}
	matched := eligibility.Apply(students,
		eligibility.ByEligibility(eligibilityFilter, evaluate),
		byEnrolment,
		eligibility.ByField(q.Department, func(p models.UserProfile) string { return p.Department }),
	)

	roster := make([]dto.RosterEntry, len(matched))
	for i, p := range matched {
		enrolled := training.Enrolled(p.UID)
		roster[i] = rosterEntry(p, evaluate(p))
		roster[i].Enrolled = &enrolled
	}
	return roster, nil
}

// ExportRoster writes the filtered training roster as an xlsx workbook
func (s *TrainingService) ExportRoster(ctx context.Context, session appauth.Session, id string, q dto.RosterQuery, w io.Writer) (string, error) {
	roster, err := s.Roster(ctx, session, id, q)
	if err != nil {
		return "", err
	}
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	headers := []string{"Name", "Email", "Roll Number", "Department", "Section", "Year", "Eligible", "Reason", "Enrolled"}
	rows := make([][]interface{}, len(roster))
	for i, e := range roster {
		rows[i] = []interface{}{e.DisplayName, e.Email, e.RollNumber, e.Department, e.Section, e.Year, e.Eligible, e.Reason, *e.Enrolled}
	}
	if err := spreadsheet.Export(w, "Roster", headers, rows); err != nil {
		return "", err
	}
	return exportFilename(training.Title, "participants"), nil
}
