package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/auth"
	"github.com/yigit/placementportal/internal/pkg/validation"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type sentMail struct {
	kind, to, detail string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	// onSend runs after each mail with the number sent so far
	onSend func(n int)
}

func (m *fakeMailer) record(kind, to, detail string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentMail{kind, to, detail})
	n := len(m.sent)
	m.mu.Unlock()
	if m.onSend != nil {
		m.onSend(n)
	}
	return nil
}

func (m *fakeMailer) SendAccountCreated(to, _, password string) error {
	return m.record("created", to, password)
}

func (m *fakeMailer) SendProfileApproved(to, _ string) error {
	return m.record("approved", to, "")
}

func (m *fakeMailer) SendProfileDeclined(to, _, reason string) error {
	return m.record("declined", to, reason)
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	repos     *repositories.Repositories
	mail      *fakeMailer
	auth      *AuthService
	users     *UserService
	companies *CompanyService
	trainings *TrainingService
	records   *PlacementRecordService
	imports   *ImportService
	dashboard *DashboardService
	admin     appauth.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, docstore.NewMemoryStore())
}

// newFixtureOn wires every service over store
func newFixtureOn(t *testing.T, store docstore.Store) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	repos := repositories.NewRepositories(store)
	rolls, err := validation.NewRollNumberValidator("")
	if err != nil {
		t.Fatalf("roll number validator: %v", err)
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
	clock := func() time.Time { return fixedNow }

	f := &fixture{repos: repos, mail: &fakeMailer{}}
	f.auth = NewAuthService(repos.AccountRepository, repos.TokenRepository, repos.UserRepository, jwtService, logger)
	f.auth.now = clock
	f.users = NewUserService(repos.UserRepository, f.auth, f.mail, rolls, logger)
	f.users.now = clock
	f.companies = NewCompanyService(repos.CompanyRepository, repos.UserRepository, logger)
	f.companies.now = clock
	f.trainings = NewTrainingService(repos.TrainingRepository, repos.UserRepository, logger)
	f.trainings.now = clock
	f.records = NewPlacementRecordService(repos.PlacementRecordRepository, f.users, logger)
	f.records.now = clock
	f.imports = NewImportService(f.users, f.records, repos.UserRepository, repos.PlacementRecordRepository, nil, 100, logger)
	f.dashboard = NewDashboardService(repos.UserRepository, repos.CompanyRepository, repos.TrainingRepository, logger)
	f.dashboard.now = clock

	f.admin = appauth.Session{UID: "admin", Email: "admin@college.edu", Role: models.RoleAdmin}
	return f
}

func sessionOf(p *models.UserProfile) appauth.Session {
	return appauth.Session{UID: p.UID, Email: p.Email, Role: p.Role, Department: p.Department, Section: p.Section}
}

func float(v float64) *float64 { return &v }

func integer(v int) *int { return &v }

type studentSpec struct {
	email, roll, dept, section string
	cgpa, tenth, twelfth       float64
	arrears                    int
	year                       int
}

// addStudent provisions a student and stores a verified academic profile
func (f *fixture) addStudent(t *testing.T, s studentSpec) *models.UserProfile {
	t.Helper()
	ctx := context.Background()
	if s.year == 0 {
		s.year = 3
	}
	profile, err := f.users.CreateUser(ctx, f.admin, &dto.CreateUserRequest{
		Email:       s.email,
		DisplayName: "Student " + s.roll,
		Role:        string(models.RoleStudent),
		Department:  s.dept,
		Section:     s.section,
		RollNumber:  s.roll,
		Year:        s.year,
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", s.email, err)
	}
	err = f.repos.UserRepository.Update(ctx, profile.UID, map[string]interface{}{
		"cgpa":             s.cgpa,
		"tenth":            s.tenth,
		"twelfth":          s.twelfth,
		"standingArrears":  s.arrears,
		"profileCompleted": true,
		"profileStatus":    models.ProfileStatusVerified,
	})
	if err != nil {
		t.Fatalf("verify %s: %v", s.email, err)
	}
	got, err := f.repos.UserRepository.GetByUID(ctx, profile.UID)
	if err != nil {
		t.Fatalf("reload %s: %v", s.email, err)
	}
	return got
}

// addStaff provisions a staff member with a known password
func (f *fixture) addStaff(t *testing.T, email string, role models.Role, dept, section string) *models.UserProfile {
	t.Helper()
	profile, err := f.users.CreateUser(context.Background(), f.admin, &dto.CreateUserRequest{
		Email:       email,
		DisplayName: "Staff " + email,
		Role:        string(role),
		Department:  dept,
		Section:     section,
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return profile
}
