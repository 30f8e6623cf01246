package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/spreadsheet"
	"github.com/yigit/placementportal/internal/pkg/validation"
)

// Import kinds
const (
	ImportKindStudents = "students"
	ImportKindRecords  = "placement-records"
)

var (
	studentColumns = []string{"name", "email", "rollnumber", "department"}
	recordColumns  = []string{"studentname", "rollnumber", "department", "companyname", "package", "academicyear"}
)

// SheetReader reads a Google Sheet range into a table
type SheetReader interface {
	Rows(ctx context.Context, spreadsheetID, readRange string) (*spreadsheet.Table, error)
}

// ImportService runs bulk student and placement record imports. Each row is
// reported on its own and a failing row never stops the batch.
type ImportService struct {
	userService   *UserService
	recordService *PlacementRecordService
	userRepo      *repositories.UserRepository
	recordRepo    *repositories.PlacementRecordRepository
	sheets        SheetReader
	maxRows       int
	logger        zerolog.Logger
}

// NewImportService creates a new ImportService. sheets may be nil when Google
// Sheets is not configured.
func NewImportService(
	userService *UserService,
	recordService *PlacementRecordService,
	userRepo *repositories.UserRepository,
	recordRepo *repositories.PlacementRecordRepository,
	sheets SheetReader,
	maxRows int,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		userService:   userService,
		recordService: recordService,
		userRepo:      userRepo,
		recordRepo:    recordRepo,
		sheets:        sheets,
		maxRows:       maxRows,
		logger:        logger,
	}
}

// ImportFile parses an uploaded .xlsx or .csv file and imports it as kind
func (s *ImportService) ImportFile(ctx context.Context, session appauth.Session, kind string, r io.Reader, filename string) (*dto.ImportReport, error) {
	if err := s.authorize(session, kind); err != nil {
		return nil, err
	}
	table, err := spreadsheet.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, session, kind, table)
}

// ImportSheet reads a Google Sheet and imports it as kind
func (s *ImportService) ImportSheet(ctx context.Context, session appauth.Session, kind string, req *dto.SheetImportRequest) (*dto.ImportReport, error) {
	if err := s.authorize(session, kind); err != nil {
		return nil, err
	}
	if s.sheets == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, "Google Sheets import is not configured")
	}
	table, err := s.sheets.Rows(ctx, req.SpreadsheetID, req.Range)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return s.run(ctx, session, kind, table)
}

func (s *ImportService) authorize(session appauth.Session, kind string) error {
	if kind != ImportKindStudents && kind != ImportKindRecords {
		return validationf("unknown import kind %q", kind)
	}
	return requireCapability(session.Capability().CanImport, "import spreadsheets")
}

func (s *ImportService) run(ctx context.Context, session appauth.Session, kind string, table *spreadsheet.Table) (*dto.ImportReport, error) {
	columns := studentColumns
	if kind == ImportKindRecords {
		columns = recordColumns
	}
	if err := spreadsheet.RequireColumns(table.Header, columns...); err != nil {
		return nil, err
	}
	if s.maxRows > 0 && len(table.Rows) > s.maxRows {
		return nil, apperrors.NewCustomError(apperrors.ErrBatchTooLarge,
			fmt.Sprintf("the file has %d rows, at most %d can be imported at once", len(table.Rows), s.maxRows))
	}

	var (
		report *dto.ImportReport
		err    error
	)
	if kind == ImportKindStudents {
		report, err = s.importStudents(ctx, session, table.Rows)
	} else {
		report, err = s.importRecords(ctx, session, table.Rows)
	}
	if err != nil {
		return nil, err
	}

	event := s.logger.Info()
	if report.Failed > 0 || report.Interrupted {
		event = s.logger.Warn()
	}
	event.Str("kind", kind).
		Str("by", session.UID).
		Int("total", report.Total).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Bool("interrupted", report.Interrupted).
		Msg("Import finished")
	return report, nil
}

// keySet is the pre-check of an import: keys already stored plus keys seen
// earlier in the batch.
type keySet map[string]struct{}

func (k keySet) has(key string) bool {
	_, ok := k[key]
	return ok
}

func (k keySet) add(key string) { k[key] = struct{}{} }

func failed(row int, key, reason string) dto.ImportRowResult {
	return dto.ImportRowResult{Row: row, Key: key, Status: dto.ImportFailed, Reason: reason}
}

func skipped(row int, key, reason string) dto.ImportRowResult {
	return dto.ImportRowResult{Row: row, Key: key, Status: dto.ImportSkippedDuplicate, Reason: reason}
}

func reasonOf(err error) string {
	if msg := apperrors.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}

func (s *ImportService) importStudents(ctx context.Context, session appauth.Session, rows []spreadsheet.Row) (*dto.ImportReport, error) {
	existing, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	emails := keySet{}
	rolls := keySet{}
	for _, p := range existing {
		emails.add(p.Email)
		if p.RollNumber != "" {
			rolls.add(p.RollNumber)
		}
	}

	report := &dto.ImportReport{Kind: ImportKindStudents, Rows: []dto.ImportRowResult{}}
	s.each(ctx, report, rows, studentKey, func(row spreadsheet.Row) dto.ImportRowResult {
		return s.importStudent(ctx, session, row, emails, rolls)
	})
	return report, nil
}

func studentKey(row spreadsheet.Row) string { return models.NormalizeEmail(row.Get("email")) }

func recordKey(row spreadsheet.Row) string {
	return strings.Join([]string{row.Get("rollnumber"), row.Get("companyname"), row.Get("academicyear")}, "/")
}

// each imports rows in order. Once ctx is done the remaining rows are reported
// as failed and the report is marked interrupted; rows already written stay
// in the report.
func (s *ImportService) each(ctx context.Context, report *dto.ImportReport, rows []spreadsheet.Row, key func(spreadsheet.Row) string, importRow func(spreadsheet.Row) dto.ImportRowResult) {
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			reason := "request cancelled"
			if errors.Is(err, context.DeadlineExceeded) {
				reason = "request timed out"
			}
			for _, rest := range rows[i:] {
				report.Add(failed(rest.Number, key(rest), reason))
			}
			report.Interrupted = true
			s.logger.Warn().Err(err).Str("kind", report.Kind).Int("remaining", len(rows)-i).Msg("Import interrupted")
			return
		}
		report.Add(importRow(row))
	}
}

func (s *ImportService) importStudent(ctx context.Context, session appauth.Session, row spreadsheet.Row, emails, rolls keySet) dto.ImportRowResult {
	email := studentKey(row)
	if !validation.IsEmail(email) {
		return failed(row.Number, email, "invalid email address")
	}
	if emails.has(email) {
		return skipped(row.Number, email, "a user with this email already exists")
	}

	roll := s.userService.rollNumbers.Normalize(row.Get("rollnumber"))
	if !s.userService.rollNumbers.Valid(roll) {
		return failed(row.Number, email, fmt.Sprintf("roll number %q does not match the expected format", roll))
	}
	if rolls.has(roll) {
		return skipped(row.Number, email, fmt.Sprintf("roll number %s is already registered", roll))
	}

	profile, err := studentFromRow(row)
	if err != nil {
		return failed(row.Number, email, err.Error())
	}
	profile.Email = email
	profile.RollNumber = roll

	// Claim the keys before the write so a repeated row is skipped even when
	// this one fails halfway.
	emails.add(email)
	rolls.add(roll)

	if _, err := s.userService.provision(ctx, session, profile, ""); err != nil {
		if apperrors.Is(err, apperrors.ErrEmailAlreadyExists, apperrors.ErrRollNumberExists) {
			return skipped(row.Number, email, reasonOf(err))
		}
		return failed(row.Number, email, reasonOf(err))
	}
	return dto.ImportRowResult{Row: row.Number, Key: email, Status: dto.ImportCreated}
}

// studentFromRow reads the profile columns of a student row. Optional numeric
// columns may be blank.
func studentFromRow(row spreadsheet.Row) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		Role:        models.RoleStudent,
		DisplayName: row.Get("name"),
		Department:  row.Get("department"),
		Section:     row.Get("section"),
	}
	if profile.Department == "" {
		return nil, errors.New("department is required")
	}

	var err error
	if v := row.Get("year"); v != "" {
		if profile.Year, err = strconv.Atoi(v); err != nil || profile.Year < 1 || profile.Year > 4 {
			return nil, fmt.Errorf("year %q must be a number between 1 and 4", v)
		}
	}
	floats := []struct {
		column   string
		max      float64
		assignTo **float64
	}{
		{"cgpa", 10, &profile.CGPA},
		{"tenth", 100, &profile.Tenth},
		{"twelfth", 100, &profile.Twelfth},
	}
	for _, f := range floats {
		if *f.assignTo, err = optionalFloat(row.Get(f.column), f.max); err != nil {
			return nil, fmt.Errorf("%s: %w", f.column, err)
		}
	}
	if profile.StandingArrears, err = optionalCount(row.Get("standingarrears")); err != nil {
		return nil, fmt.Errorf("standing arrears: %w", err)
	}
	if profile.HistoryOfArrears, err = optionalCount(row.Get("historyofarrears")); err != nil {
		return nil, fmt.Errorf("history of arrears: %w", err)
	}
	return profile, nil
}

func optionalFloat(v string, max float64) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil || f < 0 || f > max {
		return nil, fmt.Errorf("%q must be a number between 0 and %g", v, max)
	}
	return &f, nil
}

func optionalCount(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%q must be a whole number of at least 0", v)
	}
	return &n, nil
}

func (s *ImportService) importRecords(ctx context.Context, session appauth.Session, rows []spreadsheet.Row) (*dto.ImportReport, error) {
	existing, err := s.recordRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := keySet{}
	for _, r := range existing {
		ids.add(r.ID)
	}

	report := &dto.ImportReport{Kind: ImportKindRecords, Rows: []dto.ImportRowResult{}}
	s.each(ctx, report, rows, recordKey, func(row spreadsheet.Row) dto.ImportRowResult {
		return s.importRecord(ctx, session, row, ids)
	})
	return report, nil
}

func (s *ImportService) importRecord(ctx context.Context, session appauth.Session, row spreadsheet.Row, ids keySet) dto.ImportRowResult {
	key := recordKey(row)
	record, err := s.recordService.normalizeRecord(&dto.PlacementRecordRequest{
		StudentName:  row.Get("studentname"),
		RollNumber:   row.Get("rollnumber"),
		Department:   row.Get("department"),
		CompanyName:  row.Get("companyname"),
		Package:      row.Get("package"),
		AcademicYear: row.Get("academicyear"),
	})
	if err != nil {
		return failed(row.Number, key, reasonOf(err))
	}
	if !session.Capability().InDepartment(session, record.Department) {
		return failed(row.Number, key, "department is outside your scope")
	}

	id := models.RecordID(record.RollNumber, record.CompanyName, record.AcademicYear)
	if ids.has(id) {
		return skipped(row.Number, key, "this placement is already recorded")
	}
	ids.add(id)

	if err := s.recordService.insert(ctx, session, record); err != nil {
		if errors.Is(err, apperrors.ErrRecordAlreadyExists) {
			return skipped(row.Number, key, "this placement is already recorded")
		}
		return failed(row.Number, key, reasonOf(err))
	}
	return dto.ImportRowResult{Row: row.Number, Key: key, Status: dto.ImportCreated}
}
