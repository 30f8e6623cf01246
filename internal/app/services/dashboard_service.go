package services

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/helpers"
)

// DashboardService builds the role-shaped dashboard and the event calendar
type DashboardService struct {
	userRepo     *repositories.UserRepository
	companyRepo  *repositories.CompanyRepository
	trainingRepo *repositories.TrainingRepository
	logger       zerolog.Logger
	now          Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo *repositories.UserRepository,
	companyRepo *repositories.CompanyRepository,
	trainingRepo *repositories.TrainingRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		trainingRepo: trainingRepo,
		logger:       logger,
		now:          systemClock,
	}
}

// Dashboard returns the counters relevant to the caller's role
func (s *DashboardService) Dashboard(ctx context.Context, session appauth.Session) (*dto.DashboardResponse, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	trainings, err := s.trainingRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dto.DashboardResponse{Role: string(session.Role)}
	resp.Drives.Total = len(companies)
	for i := range companies {
		if driveUpcoming(&companies[i], now) {
			resp.Drives.Upcoming++
		}
	}
	resp.Trainings.Total = len(trainings)
	for _, t := range trainings {
		if t.StartDate != nil && t.StartDate.After(now) {
			resp.Trainings.Upcoming++
		}
	}

	if session.IsStudent() {
		profile, err := s.userRepo.GetByUID(ctx, session.UID)
		if err != nil {
			return nil, err
		}
		resp.Student = studentDashboard(profile, companies, trainings, now)
		return resp, nil
	}

	students, err := visibleStudents(ctx, s.userRepo, session)
	if err != nil {
		return nil, err
	}
	resp.StudentsByStatus = map[string]int{
		string(models.ProfileStatusPending):         0,
		string(models.ProfileStatusApprovalPending): 0,
		string(models.ProfileStatusVerified):        0,
	}
	for _, p := range students {
		resp.StudentsByStatus[string(p.ProfileStatus)]++
		if p.PlacementStatus == models.PlacementStatusPlaced {
			resp.Placed++
		}
	}
	resp.PendingApprovals = resp.StudentsByStatus[string(models.ProfileStatusApprovalPending)]
	return resp, nil
}

func studentDashboard(profile *models.UserProfile, companies []models.Company, trainings []models.Training, now time.Time) *dto.StudentDashboard {
	d := &dto.StudentDashboard{ProfileStatus: string(profile.ProfileStatus)}
	student := profile.Student()
	for i := range companies {
		c := &companies[i]
		if c.RegistrationOf(profile.UID) == eligibility.StatusOptedIn {
			d.AppliedDrives++
		}
		if c.RegistrationOpen(now) && eligibility.Evaluate(student, c.EligibilityCriteria).Eligible {
			d.EligibleOpenDrives++
		}
	}
	for i := range trainings {
		if trainings[i].Enrolled(profile.UID) {
			d.EnrolledTrainings++
		}
	}
	return d
}

// Calendar lists drive deadlines, drive dates and trainings between from and
// to, either of which may be nil.
func (s *DashboardService) Calendar(ctx context.Context, session appauth.Session, from, to *time.Time) ([]dto.CalendarEvent, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	trainings, err := s.trainingRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	events := []dto.CalendarEvent{}
	add := func(e dto.CalendarEvent) {
		if helpers.InRange(e.At, from, to) {
			events = append(events, e)
		}
	}
	for _, c := range companies {
		if c.Deadline != nil {
			add(dto.CalendarEvent{Kind: dto.EventDriveDeadline, RefID: c.ID, Title: c.Name, At: *c.Deadline})
		}
		if c.DriveDate != nil {
			add(dto.CalendarEvent{Kind: dto.EventDriveDate, RefID: c.ID, Title: c.Name, At: *c.DriveDate})
		}
	}
	for _, t := range trainings {
		if t.StartDate != nil {
			add(dto.CalendarEvent{Kind: dto.EventTraining, RefID: t.ID, Title: t.Title, At: *t.StartDate, EndAt: t.EndDate})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].At.Equal(events[j].At) {
			return events[i].At.Before(events[j].At)
		}
		return events[i].Kind < events[j].Kind
	})
	s.logger.Debug().Str("uid", session.UID).Int("events", len(events)).Msg("Calendar built")
	return events, nil
}
