package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func recordRequest(roll, dept, company, pkg string) *dto.PlacementRecordRequest {
	return &dto.PlacementRecordRequest{
		StudentName:  "Student " + roll,
		RollNumber:   roll,
		Department:   dept,
		CompanyName:  company,
		Package:      pkg,
		AcademicYear: "2024-25",
	}
}

func TestPlacementRecordService_CreateMarksStudentPlaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addStudent(t, studentSpec{email: "s@college.edu", roll: "21CSE001", dept: "CSE"})

	record, err := f.records.CreateRecord(ctx, f.admin, recordRequest("21cse001", "CSE", "Acme", "10 LPA"))
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if record.ID != models.RecordID("21CSE001", "acme", "2024-25") {
		t.Errorf("Expected a derived id, got %s", record.ID)
	}

	profile, err := f.repos.UserRepository.GetByUID(ctx, student.UID)
	if err != nil {
		t.Fatalf("GetByUID failed: %v", err)
	}
	if profile.PlacementStatus != models.PlacementStatusPlaced {
		t.Errorf("Expected the student to be marked placed, got %q", profile.PlacementStatus)
	}

	if _, err := f.records.CreateRecord(ctx, f.admin, recordRequest("21CSE001", "CSE", " ACME ", "12 LPA")); !errors.Is(err, apperrors.ErrRecordAlreadyExists) {
		t.Errorf("Expected the duplicate to be rejected by the store, got %v", err)
	}
	if _, err := f.records.CreateRecord(ctx, f.admin, recordRequest("22XYZ999", "CSE", "Globex", "8 LPA")); err != nil {
		t.Errorf("Expected a record without a matching student to succeed, got %v", err)
	}
	if _, err := f.records.CreateRecord(ctx, f.admin, recordRequest("bad", "CSE", "Globex", "8 LPA")); !errors.Is(err, apperrors.ErrInvalidRollNumber) {
		t.Errorf("Expected a bad roll number to fail, got %v", err)
	}
}

func TestPlacementRecordService_ScopeSummaryAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, req := range []*dto.PlacementRecordRequest{
		recordRequest("21CSE001", "CSE", "Acme", "10 LPA"),
		recordRequest("21CSE002", "CSE", "Globex", "18 LPA"),
		recordRequest("21ECE001", "ECE", "Acme", "7.5 LPA"),
	} {
		if _, err := f.records.CreateRecord(ctx, f.admin, req); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}

	summary, err := f.records.Summary(ctx, f.admin, dto.RecordListQuery{})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 3 || summary.HighestPackage != 18 || summary.HighestRecord.CompanyName != "Globex" {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.ByCompany[0] != (dto.CountEntry{Key: "Acme", Count: 2}) {
		t.Errorf("Expected Acme to lead the company counts, got %+v", summary.ByCompany)
	}

	coordinator := sessionOf(f.addStaff(t, "hod.ece@college.edu", models.RoleDepartmentCoordinator, "ECE", ""))
	page, err := f.records.ListRecords(ctx, coordinator, dto.RecordListQuery{}, 1, 10)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Department != "ECE" {
		t.Errorf("Expected only ECE records for the ECE coordinator, got %+v", page.Items)
	}
	if _, err := f.records.CreateRecord(ctx, coordinator, recordRequest("21ECE002", "ECE", "Acme", "7 LPA")); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected coordinators to be refused writes, got %v", err)
	}

	oldID := models.RecordID("21CSE001", "Acme", "2024-25")
	moved, err := f.records.UpdateRecord(ctx, f.admin, oldID, recordRequest("21CSE001", "CSE", "Initech", "9 LPA"))
	if err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}
	if moved.ID == oldID {
		t.Errorf("Expected a new id after changing the company")
	}
	if _, err := f.records.GetRecord(ctx, f.admin, oldID); !errors.Is(err, apperrors.ErrRecordNotFound) {
		t.Errorf("Expected the old record to be gone, got %v", err)
	}

	same, err := f.records.UpdateRecord(ctx, f.admin, moved.ID, recordRequest("21CSE001", "CSE", "Initech", "9.5 LPA"))
	if err != nil || same.ID != moved.ID || same.Package != "9.5 LPA" {
		t.Errorf("Expected an in-place update, got %+v %v", same, err)
	}
}
