package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"not found", docstore.ErrNotFound, apperrors.ErrCompanyNotFound},
		{"exists", docstore.ErrAlreadyExists, apperrors.ErrResourceAlreadyExists},
		{"set conflict", docstore.ErrSetConflict, apperrors.ErrMembershipConflict},
		{"unavailable", docstore.ErrUnavailable, apperrors.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, apperrors.ErrRequestTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapStoreError(tt.in, apperrors.ErrCompanyNotFound, apperrors.ErrResourceAlreadyExists)
			if !errors.Is(got, tt.want) || !errors.Is(got, tt.in) {
				t.Errorf("Expected %v wrapping %v, got %v", tt.want, tt.in, got)
			}
		})
	}
	if mapStoreError(nil, nil, nil) != nil {
		t.Errorf("Expected nil for nil error")
	}
}

func TestCompanyRepository_Membership(t *testing.T) {
	ctx := context.Background()
	repo := NewCompanyRepository(docstore.NewMemoryStore())
	if err := repo.Create(ctx, &models.Company{ID: "d1", Name: "Acme"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.AddApplicant(ctx, "d1", "s1"); err != nil {
		t.Fatalf("AddApplicant failed: %v", err)
	}
	if err := repo.AddApplicant(ctx, "d1", "s1"); err != nil {
		t.Fatalf("repeat AddApplicant failed: %v", err)
	}
	if err := repo.AddOptedOut(ctx, "d1", "s1"); !errors.Is(err, apperrors.ErrMembershipConflict) {
		t.Fatalf("Expected ErrMembershipConflict, got %v", err)
	}
	if err := repo.AddOptedOut(ctx, "d1", "s2"); err != nil {
		t.Fatalf("AddOptedOut failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reflect.DeepEqual(got.Applicants, []string{"s1"}) || !reflect.DeepEqual(got.OptedOut, []string{"s2"}) {
		t.Errorf("Unexpected membership: %v / %v", got.Applicants, got.OptedOut)
	}

	// Update never touches membership
	err = repo.Update(ctx, "d1", map[string]interface{}{"name": "Acme Corp", "applicants": []string{}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ = repo.GetByID(ctx, "d1")
	if got.Name != "Acme Corp" || len(got.Applicants) != 1 {
		t.Errorf("Unexpected drive after update: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, apperrors.ErrCompanyNotFound) {
		t.Errorf("Expected ErrCompanyNotFound, got %v", err)
	}
}

func TestAccountRepository_EmailIsTheKey(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(docstore.NewMemoryStore())

	if err := repo.Create(ctx, &models.Account{UID: "u1", Email: "Asha@College.edu"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, &models.Account{UID: "u2", Email: " asha@college.EDU "})
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("Expected ErrEmailAlreadyExists, got %v", err)
	}

	acc, err := repo.GetByEmail(ctx, "ASHA@college.edu")
	if err != nil || acc.UID != "u1" {
		t.Errorf("Expected u1, got %+v (%v)", acc, err)
	}
}

func TestPlacementRecordRepository_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewPlacementRecordRepository(docstore.NewMemoryStore())

	rec := models.PlacementRecord{RollNumber: "21CSE001", CompanyName: "Acme", AcademicYear: "2024-25"}
	first := rec
	if err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	dup := rec
	dup.CompanyName = " ACME "
	if err := repo.Create(ctx, &dup); !errors.Is(err, apperrors.ErrRecordAlreadyExists) {
		t.Errorf("Expected ErrRecordAlreadyExists, got %v", err)
	}
}
