package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func TestUserService_CreateUserProvisioningRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coordinator := sessionOf(f.addStaff(t, "hod.cse@college.edu", models.RoleDepartmentCoordinator, "CSE", ""))

	tests := []struct {
		name    string
		req     dto.CreateUserRequest
		wantErr error
	}{
		{"student in own department", dto.CreateUserRequest{Email: "a@college.edu", DisplayName: "Asha", Role: "student", Department: "cse", RollNumber: "21cse001"}, nil},
		{"student in another department", dto.CreateUserRequest{Email: "b@college.edu", DisplayName: "Bala", Role: "STUDENT", Department: "ECE"}, apperrors.ErrPermissionDenied},
		{"placement head", dto.CreateUserRequest{Email: "c@college.edu", DisplayName: "Chitra", Role: "PLACEMENT_HEAD", Department: "CSE"}, apperrors.ErrRoleNotAssignable},
		{"bad roll number", dto.CreateUserRequest{Email: "d@college.edu", DisplayName: "Deepa", Role: "STUDENT", Department: "CSE", RollNumber: "CSE-1"}, apperrors.ErrInvalidRollNumber},
		{"unknown role", dto.CreateUserRequest{Email: "e@college.edu", DisplayName: "Ezhil", Role: "DEAN"}, apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.users.CreateUser(ctx, coordinator, &req)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Expected success, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	profile, err := f.repos.UserRepository.FindByRollNumber(ctx, "21CSE001")
	if err != nil || len(profile) != 1 {
		t.Fatalf("Expected the provisioned student by roll number, got %v %v", profile, err)
	}
	if profile[0].ProfileStatus != models.ProfileStatusPending || profile[0].ProfileCompleted {
		t.Errorf("Expected a pending incomplete student, got %+v", profile[0])
	}
	if mail := f.mail.last(); mail.kind != "created" || mail.to != "a@college.edu" || len(mail.detail) < 8 {
		t.Errorf("Expected the generated password to be mailed, got %+v", mail)
	}
	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "A@college.edu", Password: f.mail.last().detail}); err != nil {
		t.Errorf("Expected login with the mailed password, got %v", err)
	}
}

func TestUserService_DuplicateEmailKeepsOriginalAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addStaff(t, "tpo@college.edu", models.RolePlacementHead, "", "")

	_, err := f.users.CreateUser(ctx, f.admin, &dto.CreateUserRequest{
		Email: "TPO@college.edu", DisplayName: "Other", Role: "PLACEMENT_HEAD", Password: "password123",
	})
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("Expected ErrEmailAlreadyExists, got %v", err)
	}
	if first.ProfileStatus != models.ProfileStatusVerified || !first.ProfileCompleted {
		t.Errorf("Expected staff to start verified, got %+v", first)
	}
	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "tpo@college.edu", Password: "password123"}); err != nil {
		t.Errorf("Expected the original account to survive, got %v", err)
	}
}

func TestUserService_ProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	classCoord := sessionOf(f.addStaff(t, "cc@college.edu", models.RoleClassCoordinator, "CSE", "A"))
	otherCoord := sessionOf(f.addStaff(t, "cc.b@college.edu", models.RoleClassCoordinator, "CSE", "B"))

	student, err := f.users.CreateUser(ctx, classCoord, &dto.CreateUserRequest{
		Email: "s@college.edu", DisplayName: "Selvi", Role: "STUDENT", Department: "CSE", Section: "A", Password: "password123",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	self := sessionOf(student)

	if _, err := f.users.ApproveProfile(ctx, classCoord, student.UID); !errors.Is(err, apperrors.ErrInvalidStatusChange) {
		t.Fatalf("Expected approval of a pending profile to fail, got %v", err)
	}

	complete := &dto.CompleteProfileRequest{
		RollNumber: "21cse010", Department: "CSE", Section: "A", Year: 3,
		CGPA: float(8.1), Tenth: float(90), Twelfth: float(88), StandingArrears: integer(0),
	}
	if _, err := f.users.CompleteProfile(ctx, classCoord, student.UID, complete); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("Expected only the student to complete the profile, got %v", err)
	}
	got, err := f.users.CompleteProfile(ctx, self, student.UID, complete)
	if err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}
	if got.ProfileStatus != models.ProfileStatusApprovalPending || got.RollNumber != "21CSE010" {
		t.Fatalf("Expected APPROVAL_PENDING with normalised roll number, got %+v", got)
	}

	if _, err := f.users.ApproveProfile(ctx, otherCoord, student.UID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected a coordinator of another section to be refused, got %v", err)
	}
	if _, err := f.users.DeclineProfile(ctx, classCoord, student.UID, "  "); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("Expected a reason to be required, got %v", err)
	}

	declined, err := f.users.DeclineProfile(ctx, classCoord, student.UID, "10th mark does not match the certificate")
	if err != nil {
		t.Fatalf("DeclineProfile failed: %v", err)
	}
	if declined.ProfileStatus != models.ProfileStatusPending || declined.DeclineReason == "" {
		t.Errorf("Expected PENDING with a reason, got %+v", declined)
	}
	if mail := f.mail.last(); mail.kind != "declined" {
		t.Errorf("Expected a decline email, got %+v", mail)
	}

	if _, err := f.users.CompleteProfile(ctx, self, student.UID, complete); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	approved, err := f.users.ApproveProfile(ctx, classCoord, student.UID)
	if err != nil {
		t.Fatalf("ApproveProfile failed: %v", err)
	}
	if approved.ProfileStatus != models.ProfileStatusVerified || approved.DeclineReason != "" {
		t.Errorf("Expected VERIFIED with the reason cleared, got %+v", approved)
	}
}

func TestUserService_CompleteProfileRejectsTakenRollNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addStudent(t, studentSpec{email: "one@college.edu", roll: "21CSE001", dept: "CSE"})
	two := f.addStudent(t, studentSpec{email: "two@college.edu", roll: "21CSE002", dept: "CSE"})

	_, err := f.users.CompleteProfile(ctx, sessionOf(two), two.UID, &dto.CompleteProfileRequest{
		RollNumber: "21cse001", Department: "CSE", Year: 3,
		CGPA: float(7), Tenth: float(70), Twelfth: float(70), StandingArrears: integer(0),
	})
	if !errors.Is(err, apperrors.ErrRollNumberExists) {
		t.Fatalf("Expected ErrRollNumberExists, got %v", err)
	}
}

func TestUserService_CompleteProfileKeepsPlacement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addStudent(t, studentSpec{email: "kavin@college.edu", roll: "21CSE003", dept: "CSE", section: "A"})
	self := sessionOf(student)

	req := func(dept, section string) *dto.CompleteProfileRequest {
		return &dto.CompleteProfileRequest{
			RollNumber: "21CSE003", Department: dept, Section: section, Year: 3,
			CGPA: float(7.5), Tenth: float(80), Twelfth: float(80), StandingArrears: integer(0),
		}
	}

	for _, tc := range []struct{ dept, section string }{{"ECE", "A"}, {"CSE", "B"}} {
		if _, err := f.users.CompleteProfile(ctx, self, student.UID, req(tc.dept, tc.section)); !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Errorf("Expected moving to %s/%s to be refused, got %v", tc.dept, tc.section, err)
		}
	}

	got, err := f.users.CompleteProfile(ctx, self, student.UID, req(" cse ", ""))
	if err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}
	if got.Department != "CSE" || got.Section != "A" {
		t.Errorf("Expected CSE/A to be kept, got %s/%s", got.Department, got.Section)
	}

	if err := f.repos.UserRepository.Update(ctx, student.UID, map[string]interface{}{"department": ""}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := f.users.CompleteProfile(ctx, self, student.UID, req("", "")); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("Expected a department to be required when none is stored, got %v", err)
	}
	got, err = f.users.CompleteProfile(ctx, self, student.UID, req("IT", ""))
	if err != nil {
		t.Fatalf("CompleteProfile failed: %v", err)
	}
	if got.Department != "IT" {
		t.Errorf("Expected the first department to be stored, got %q", got.Department)
	}
}

func TestUserService_ListUsersIsScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addStudent(t, studentSpec{email: "c1@college.edu", roll: "21CSE001", dept: "CSE", section: "A"})
	f.addStudent(t, studentSpec{email: "c2@college.edu", roll: "21CSE002", dept: "CSE", section: "B"})
	e1 := f.addStudent(t, studentSpec{email: "e1@college.edu", roll: "21ECE001", dept: "ECE", section: "A"})
	deptCoord := sessionOf(f.addStaff(t, "hod@college.edu", models.RoleDepartmentCoordinator, "CSE", ""))

	page, err := f.users.ListUsers(ctx, deptCoord, dto.UserListQuery{Role: "STUDENT"}, 1, 10)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(page.Items) != 2 || page.Pagination.TotalItems != 2 {
		t.Fatalf("Expected the two CSE students, got %+v", page.Items)
	}
	for _, p := range page.Items {
		if p.Department != "CSE" {
			t.Errorf("Coordinator saw a %s student", p.Department)
		}
	}

	if _, err := f.users.GetUser(ctx, deptCoord, e1.UID); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected an out-of-scope profile to look missing, got %v", err)
	}
	if _, err := f.users.ListUsers(ctx, sessionOf(e1), dto.UserListQuery{}, 1, 10); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected students to be refused the listing, got %v", err)
	}

	searched, err := f.users.ListUsers(ctx, f.admin, dto.UserListQuery{Search: "21ece"}, 1, 10)
	if err != nil || len(searched.Items) != 1 || searched.Items[0].UID != e1.UID {
		t.Errorf("Expected roll number search to find the ECE student, got %+v %v", searched, err)
	}
}

func TestUserService_SetPlacementStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addStudent(t, studentSpec{email: "p@college.edu", roll: "21CSE005", dept: "CSE"})
	head := sessionOf(f.addStaff(t, "tpo@college.edu", models.RolePlacementHead, "", ""))

	got, err := f.users.SetPlacementStatus(ctx, head, s.UID, models.PlacementStatusOptedOutOfPlacement)
	if err != nil || got.PlacementStatus != models.PlacementStatusOptedOutOfPlacement {
		t.Fatalf("Expected status to be set, got %+v %v", got, err)
	}
	if _, err := f.users.SetPlacementStatus(ctx, head, s.UID, "HIRED"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("Expected an unknown status to fail validation, got %v", err)
	}
	if _, err := f.users.SetPlacementStatus(ctx, sessionOf(s), s.UID, models.PlacementStatusPlaced); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected students to be refused, got %v", err)
	}
}

// expiringStore behaves like a remote backend: calls on a done context fail.
// Writing a profile ends the caller's context first, as a request deadline
// hitting mid-write would.
type expiringStore struct {
	*docstore.MemoryStore
	expire context.CancelFunc
}

func (s *expiringStore) Create(ctx context.Context, collection, id string, doc interface{}) (string, error) {
	if collection == repositories.CollectionUsers {
		s.expire()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.MemoryStore.Create(ctx, collection, id, doc)
}

func (s *expiringStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, collection, id)
}

func TestUserService_RollsBackAccountWhenProfileWriteFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixtureOn(t, &expiringStore{MemoryStore: docstore.NewMemoryStore(), expire: cancel})

	_, err := f.users.CreateUser(ctx, f.admin, &dto.CreateUserRequest{
		Email:       "asha@college.edu",
		DisplayName: "Asha",
		Role:        string(models.RoleStudent),
		Department:  "CSE",
		Password:    "password123",
	})
	if err == nil {
		t.Fatal("Expected the profile write to fail")
	}

	if _, err := f.repos.AccountRepository.GetByEmail(context.Background(), "asha@college.edu"); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected the account to be rolled back, got %v", err)
	}
}
