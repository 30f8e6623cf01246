package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

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

// CompanyService manages drives, student registration and drive rosters
type CompanyService struct {
	companyRepo *repositories.CompanyRepository
	userRepo    *repositories.UserRepository
	logger      zerolog.Logger
	now         Clock
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo *repositories.CompanyRepository, userRepo *repositories.UserRepository, logger zerolog.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         systemClock,
	}
}

func validateCompanyRequest(req *dto.CompanyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationf("company name is required")
	}
	c := req.EligibilityCriteria
	switch {
	case c.MinCGPA < 0 || c.MinCGPA > 10:
		return validationf("minCGPA must be between 0 and 10")
	case c.SSLC < 0 || c.SSLC > 100, c.HSC < 0 || c.HSC > 100:
		return validationf("sslc and hsc must be percentages between 0 and 100")
	case c.BacklogsAllowed < 0:
		return validationf("backlogsAllowed cannot be negative")
	}
	if req.Deadline != nil && req.DriveDate != nil && req.Deadline.After(*req.DriveDate) {
		return validationf("registration deadline must not be after the drive date")
	}
	for i, r := range req.Rounds {
		if strings.TrimSpace(r.Name) == "" {
			return validationf("round %d needs a name", i+1)
		}
	}
	return nil
}

func companyRounds(req []dto.RoundRequest) []models.Round {
	rounds := make([]models.Round, len(req))
	for i, r := range req {
		rounds[i] = models.Round{Name: strings.TrimSpace(r.Name), Description: r.Description, Date: r.Date}
	}
	return rounds
}

func companyCriteria(req dto.CriteriaRequest) eligibility.Criteria {
	c := req.ToCriteria()
	c.Branches = cleanList(c.Branches)
	return c
}

// CreateCompany creates a drive with empty membership sets
func (s *CompanyService) CreateCompany(ctx context.Context, session appauth.Session, req *dto.CompanyRequest) (*models.Company, error) {
	if err := requireCapability(session.Capability().CanManageDrives, "manage drives"); err != nil {
		return nil, err
	}
	if err := validateCompanyRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	company := &models.Company{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		Roles:               cleanList(req.Roles),
		Type:                strings.TrimSpace(req.Type),
		Year:                req.Year,
		Salary:              strings.TrimSpace(req.Salary),
		Location:            req.Location,
		EligibilityCriteria: companyCriteria(req.EligibilityCriteria),
		Deadline:            req.Deadline,
		DriveDate:           req.DriveDate,
		Rounds:              companyRounds(req.Rounds),
		Requirements:        req.Requirements,
		Applicants:          []string{},
		OptedOut:            []string{},
		CreatedBy:           session.UID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	s.logger.Info().Str("companyId", company.ID).Str("name", company.Name).Str("by", session.UID).Msg("Drive created")
	return company, nil
}

// UpdateCompany replaces the editable fields of a drive. Membership is untouched.
func (s *CompanyService) UpdateCompany(ctx context.Context, session appauth.Session, id string, req *dto.CompanyRequest) (*models.Company, error) {
	if err := requireCapability(session.Capability().CanManageDrives, "manage drives"); err != nil {
		return nil, err
	}
	if err := validateCompanyRequest(req); err != nil {
		return nil, err
	}

	err := s.companyRepo.Update(ctx, id, map[string]interface{}{
		"name":                strings.TrimSpace(req.Name),
		"description":         req.Description,
		"roles":               cleanList(req.Roles),
		"type":                strings.TrimSpace(req.Type),
		"year":                req.Year,
		"salary":              strings.TrimSpace(req.Salary),
		"location":            req.Location,
		"eligibilityCriteria": companyCriteria(req.EligibilityCriteria),
		"deadline":            req.Deadline,
		"driveDate":           req.DriveDate,
		"rounds":              companyRounds(req.Rounds),
		"requirements":        req.Requirements,
	})
	if err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, id)
}

// DeleteCompany removes a drive
func (s *CompanyService) DeleteCompany(ctx context.Context, session appauth.Session, id string) error {
	if err := requireCapability(session.Capability().CanManageDrives, "manage drives"); err != nil {
		return err
	}
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("companyId", id).Str("by", session.UID).Msg("Drive deleted")
	return nil
}

// GetCompany returns a drive as seen by the caller
func (s *CompanyService) GetCompany(ctx context.Context, session appauth.Session, id string) (*dto.CompanyResponse, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewer(ctx, session)
	if err != nil {
		return nil, err
	}
	resp := s.present(company, viewer)
	return &resp, nil
}

// ListCompanies returns the drives matching q ordered by deadline
func (s *CompanyService) ListCompanies(ctx context.Context, session appauth.Session, q dto.CompanyListQuery) ([]dto.CompanyResponse, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewer(ctx, session)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var byYear, upcoming eligibility.Predicate[models.Company]
	if q.Year != 0 {
		byYear = func(c models.Company) bool { return c.Year == q.Year }
	}
	if q.Upcoming {
		upcoming = func(c models.Company) bool { return driveUpcoming(&c, now) }
	}
	var search eligibility.Predicate[models.Company]
	if strings.TrimSpace(q.Search) != "" {
		search = func(c models.Company) bool {
			return containsFold(c.Name, q.Search) || containsFold(strings.Join(c.Roles, " "), q.Search)
		}
	}

	matched := eligibility.Apply(companies,
		search,
		eligibility.ByField(q.Type, func(c models.Company) string { return c.Type }),
		byYear,
		eligibility.ByMinSalary(q.MinSalary, func(c models.Company) string { return c.Salary }),
		upcoming,
	)
	sortByDeadline(matched)

	out := make([]dto.CompanyResponse, len(matched))
	for i := range matched {
		out[i] = s.present(&matched[i], viewer)
	}
	return out, nil
}

// driveUpcoming reports whether registration or the drive itself lies ahead
func driveUpcoming(c *models.Company, now time.Time) bool {
	if c.Deadline != nil {
		return c.Deadline.After(now)
	}
	return c.DriveDate != nil && c.DriveDate.After(now)
}

// sortByDeadline orders drives by deadline; drives without one go last
func sortByDeadline(companies []models.Company) {
	sort.SliceStable(companies, func(i, j int) bool {
		a, b := companies[i].Deadline, companies[j].Deadline
		switch {
		case a == nil && b == nil:
			return companies[i].Name < companies[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

// viewer returns the caller's profile when the caller is a student
func (s *CompanyService) viewer(ctx context.Context, session appauth.Session) (*models.UserProfile, error) {
	if !session.IsStudent() {
		return nil, nil
	}
	return s.userRepo.GetByUID(ctx, session.UID)
}

func (s *CompanyService) present(company *models.Company, viewer *models.UserProfile) dto.CompanyResponse {
	resp := dto.CompanyResponse{
		Company:        company,
		ApplicantCount: len(company.Applicants),
		OptedOutCount:  len(company.OptedOut),
	}
	if viewer == nil {
		return resp
	}

	result := eligibility.Evaluate(viewer.Student(), company.EligibilityCriteria)
	resp.Eligibility = &result
	resp.Registration = s.registration(company, viewer.UID)

	// Students never see who else registered
	hidden := *company
	hidden.Applicants = nil
	hidden.OptedOut = nil
	resp.Company = &hidden
	return resp
}

// registration derives uid's status and reports memberships found in both sets
func (s *CompanyService) registration(company *models.Company, uid string) eligibility.RegistrationStatus {
	status := company.RegistrationOf(uid)
	if status == eligibility.StatusInconsistent {
		s.logger.Warn().
			Str("companyId", company.ID).
			Str("uid", uid).
			Msg("Student is in both applicants and optedOut of a drive")
	}
	return status
}

// OptIn registers the calling student for a drive
func (s *CompanyService) OptIn(ctx context.Context, session appauth.Session, id string) (*dto.CompanyResponse, error) {
	return s.register(ctx, session, id, true)
}

// OptOut records that the calling student declines a drive
func (s *CompanyService) OptOut(ctx context.Context, session appauth.Session, id string) (*dto.CompanyResponse, error) {
	return s.register(ctx, session, id, false)
}

func (s *CompanyService) register(ctx context.Context, session appauth.Session, id string, optIn bool) (*dto.CompanyResponse, error) {
	profile, err := requireVerifiedStudent(ctx, s.userRepo, session)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.RegistrationOpen(s.now()) {
		return nil, apperrors.ErrRegistrationClosed
	}

	if optIn {
		// Repeating an opt-in stays a no-op even if the criteria tightened since
		result := eligibility.Evaluate(profile.Student(), company.EligibilityCriteria)
		if !result.Eligible && company.RegistrationOf(session.UID) != eligibility.StatusOptedIn {
			return nil, apperrors.NewCustomError(apperrors.ErrNotEligible, result.Reason)
		}
		err = s.companyRepo.AddApplicant(ctx, id, session.UID)
	} else {
		err = s.companyRepo.AddOptedOut(ctx, id, session.UID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrMembershipConflict) {
			return nil, apperrors.NewCustomError(apperrors.ErrMembershipConflict,
				fmt.Sprintf("you already %s this drive", decisionOf(!optIn)))
		}
		return nil, err
	}

	s.logger.Info().Str("companyId", id).Str("uid", session.UID).Bool("optIn", optIn).Msg("Drive registration recorded")

	updated, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.present(updated, profile)
	return &resp, nil
}

func decisionOf(optIn bool) string {
	if optIn {
		return "opted in to"
	}
	return "opted out of"
}

// Roster lists the visible students against a drive with their eligibility
// and registration status
func (s *CompanyService) Roster(ctx context.Context, session appauth.Session, id string, q dto.RosterQuery) ([]dto.RosterEntry, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	eligibilityFilter, err := eligibility.ParseEligibilityFilter(q.Eligibility)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	statusFilter, err := eligibility.ParseRegistrationFilter(q.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	students, err := visibleStudents(ctx, s.userRepo, session)
	if err != nil {
		return nil, err
	}

	evaluate := func(p models.UserProfile) eligibility.Result {
		return eligibility.Evaluate(p.Student(), company.EligibilityCriteria)
	}
	matched := eligibility.Apply(students,
		eligibility.ByEligibility(eligibilityFilter, evaluate),
		eligibility.ByRegistration(statusFilter, func(p models.UserProfile) eligibility.RegistrationStatus {
			return company.RegistrationOf(p.UID)
		}),
		eligibility.ByField(q.Department, func(p models.UserProfile) string { return p.Department }),
	)

	roster := make([]dto.RosterEntry, len(matched))
	for i, p := range matched {
		roster[i] = rosterEntry(p, evaluate(p))
		roster[i].Registration = s.registration(company, p.UID)
	}
	return roster, nil
}

// ExportRoster writes the filtered roster as an xlsx workbook and returns a file name
func (s *CompanyService) ExportRoster(ctx context.Context, session appauth.Session, id string, q dto.RosterQuery, w io.Writer) (string, error) {
	roster, err := s.Roster(ctx, session, id, q)
	if err != nil {
		return "", err
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	headers := []string{"Name", "Email", "Roll Number", "Department", "Section", "Year", "CGPA", "Eligible", "Reason", "Registration"}
	rows := make([][]interface{}, len(roster))
	for i, e := range roster {
		var cgpa interface{}
		if e.CGPA != nil {
			cgpa = *e.CGPA
		}
		rows[i] = []interface{}{e.DisplayName, e.Email, e.RollNumber, e.Department, e.Section, e.Year, cgpa, e.Eligible, e.Reason, string(e.Registration)}
	}
	if err := spreadsheet.Export(w, "Roster", headers, rows); err != nil {
		return "", err
	}
	return exportFilename(company.Name, "roster"), nil
}

// exportFilename builds a safe download name such as acme-roster.xlsx
func exportFilename(name, suffix string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, strings.TrimSpace(name))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return suffix + ".xlsx"
	}
	return slug + "-" + suffix + ".xlsx"
}
