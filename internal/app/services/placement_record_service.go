package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/eligibility"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/helpers"
	"github.com/yigit/placementportal/internal/pkg/spreadsheet"
)

// PlacementRecordService manages the placement ledger
type PlacementRecordService struct {
	recordRepo  *repositories.PlacementRecordRepository
	userService *UserService
	logger      zerolog.Logger
	now         Clock
}

// NewPlacementRecordService creates a new PlacementRecordService
func NewPlacementRecordService(recordRepo *repositories.PlacementRecordRepository, userService *UserService, logger zerolog.Logger) *PlacementRecordService {
	return &PlacementRecordService{
		recordRepo:  recordRepo,
		userService: userService,
		logger:      logger,
		now:         systemClock,
	}
}

func canReadRecords(c appauth.Capability) bool {
	return c.CanManageRecords || c.CanApprove
}

// normalizeRecord trims the request and checks the roll number format
func (s *PlacementRecordService) normalizeRecord(req *dto.PlacementRecordRequest) (*models.PlacementRecord, error) {
	rolls := s.userService.rollNumbers
	if !rolls.Valid(req.RollNumber) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidRollNumber,
			fmt.Sprintf("roll number %q does not match the expected format", req.RollNumber))
	}
	record := &models.PlacementRecord{
		StudentName:  strings.TrimSpace(req.StudentName),
		RollNumber:   rolls.Normalize(req.RollNumber),
		Department:   strings.TrimSpace(req.Department),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Package:      strings.TrimSpace(req.Package),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
	}
	if record.StudentName == "" || record.CompanyName == "" || record.AcademicYear == "" {
		return nil, validationf("student name, company name and academic year are required")
	}
	return record, nil
}

// CreateRecord adds a ledger entry and marks the matching student as placed
func (s *PlacementRecordService) CreateRecord(ctx context.Context, session appauth.Session, req *dto.PlacementRecordRequest) (*models.PlacementRecord, error) {
	if err := requireCapability(session.Capability().CanManageRecords, "manage placement records"); err != nil {
		return nil, err
	}
	record, err := s.normalizeRecord(req)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, session, record); err != nil {
		return nil, err
	}
	return record, nil
}

// insert stores a normalised record. The store rejects a second record for the
// same roll number, company and academic year.
func (s *PlacementRecordService) insert(ctx context.Context, session appauth.Session, record *models.PlacementRecord) error {
	now := s.now()
	record.CreatedBy = session.UID
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return err
	}

	marked, err := s.userService.markPlacedByRollNumber(ctx, record.RollNumber)
	if err != nil {
		s.logger.Warn().Err(err).Str("rollNumber", record.RollNumber).Msg("Failed to mark student as placed")
	} else if marked {
		s.logger.Info().Str("rollNumber", record.RollNumber).Msg("Student marked as placed")
	}
	return nil
}

// GetRecord returns one ledger entry within the caller's department scope
func (s *PlacementRecordService) GetRecord(ctx context.Context, session appauth.Session, id string) (*models.PlacementRecord, error) {
	capability := session.Capability()
	if err := requireCapability(canReadRecords(capability), "view placement records"); err != nil {
		return nil, err
	}
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !capability.InDepartment(session, record.Department) {
		return nil, apperrors.ErrRecordNotFound
	}
	return record, nil
}

// filtered returns the visible records matching q, newest academic year first
func (s *PlacementRecordService) filtered(ctx context.Context, session appauth.Session, q dto.RecordListQuery) ([]models.PlacementRecord, error) {
	capability := session.Capability()
	if err := requireCapability(canReadRecords(capability), "view placement records"); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var search eligibility.Predicate[models.PlacementRecord]
	if strings.TrimSpace(q.Search) != "" {
		search = func(r models.PlacementRecord) bool {
			return containsFold(r.StudentName, q.Search) || containsFold(r.RollNumber, q.Search) || containsFold(r.CompanyName, q.Search)
		}
	}
	matched := eligibility.Apply(records,
		func(r models.PlacementRecord) bool { return capability.InDepartment(session, r.Department) },
		eligibility.ByField(q.Department, func(r models.PlacementRecord) string { return r.Department }),
		eligibility.ByField(q.AcademicYear, func(r models.PlacementRecord) string { return r.AcademicYear }),
		eligibility.ByField(q.CompanyName, func(r models.PlacementRecord) string { return r.CompanyName }),
		search,
	)

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].AcademicYear != matched[j].AcademicYear {
			return matched[i].AcademicYear > matched[j].AcademicYear
		}
		return matched[i].RollNumber < matched[j].RollNumber
	})
	return matched, nil
}

// ListRecords returns one page of the filtered ledger
func (s *PlacementRecordService) ListRecords(ctx context.Context, session appauth.Session, q dto.RecordListQuery, page, size int) (*dto.PageResponse[models.PlacementRecord], error) {
	matched, err := s.filtered(ctx, session, q)
	if err != nil {
		return nil, err
	}
	items, info := helpers.Paginate(matched, page, size)
	return &dto.PageResponse[models.PlacementRecord]{Items: items, Pagination: info}, nil
}

// UpdateRecord replaces a ledger entry. Changing the roll number, company or
// academic year moves the entry to its new id.
func (s *PlacementRecordService) UpdateRecord(ctx context.Context, session appauth.Session, id string, req *dto.PlacementRecordRequest) (*models.PlacementRecord, error) {
	if err := requireCapability(session.Capability().CanManageRecords, "manage placement records"); err != nil {
		return nil, err
	}
	existing, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record, err := s.normalizeRecord(req)
	if err != nil {
		return nil, err
	}

	if models.RecordID(record.RollNumber, record.CompanyName, record.AcademicYear) != existing.ID {
		if err := s.insert(ctx, session, record); err != nil {
			return nil, err
		}
		if err := s.recordRepo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Info().Str("from", existing.ID).Str("to", record.ID).Msg("Placement record re-keyed")
		return record, nil
	}

	err = s.recordRepo.Update(ctx, id, map[string]interface{}{
		"studentName": record.StudentName,
		"department":  record.Department,
		"companyName": record.CompanyName,
		"package":     record.Package,
	})
	if err != nil {
		return nil, err
	}
	return s.recordRepo.GetByID(ctx, id)
}

// DeleteRecord removes a ledger entry. The student's placement status is left as is.
func (s *PlacementRecordService) DeleteRecord(ctx context.Context, session appauth.Session, id string) error {
	if err := requireCapability(session.Capability().CanManageRecords, "manage placement records"); err != nil {
		return err
	}
	return s.recordRepo.Delete(ctx, id)
}

// Summary aggregates the filtered ledger by department and company
func (s *PlacementRecordService) Summary(ctx context.Context, session appauth.Session, q dto.RecordListQuery) (*dto.RecordSummary, error) {
	records, err := s.filtered(ctx, session, q)
	if err != nil {
		return nil, err
	}

	summary := &dto.RecordSummary{Total: len(records)}
	byDepartment := map[string]int{}
	byCompany := map[string]int{}
	for i := range records {
		r := &records[i]
		byDepartment[r.Department]++
		byCompany[r.CompanyName]++
		if pkg := eligibility.ParseSalary(r.Package); summary.HighestRecord == nil || pkg > summary.HighestPackage {
			summary.HighestPackage = pkg
			summary.HighestRecord = r
		}
	}
	summary.ByDepartment = countEntries(byDepartment)
	summary.ByCompany = countEntries(byCompany)
	return summary, nil
}

// countEntries orders buckets by count, then key
func countEntries(counts map[string]int) []dto.CountEntry {
	out := make([]dto.CountEntry, 0, len(counts))
	for k, v := range counts {
		out = append(out, dto.CountEntry{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ExportRecords writes the filtered ledger as an xlsx workbook
func (s *PlacementRecordService) ExportRecords(ctx context.Context, session appauth.Session, q dto.RecordListQuery, w io.Writer) (string, error) {
	records, err := s.filtered(ctx, session, q)
	if err != nil {
		return "", err
	}

	headers := []string{"Student Name", "Roll Number", "Department", "Company Name", "Package", "Academic Year"}
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{r.StudentName, r.RollNumber, r.Department, r.CompanyName, r.Package, r.AcademicYear}
	}
	if err := spreadsheet.Export(w, "Placements", headers, rows); err != nil {
		return "", err
	}
	name := "placements"
	if q.AcademicYear != "" {
		name += "-" + q.AcademicYear
	}
	return exportFilename(name, "report"), nil
}
