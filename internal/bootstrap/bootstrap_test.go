package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/config"
)

const (
	adminEmail    = "admin@college.edu"
	adminPassword = "admin-password"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Server.RequestTimeout = "5s"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Storage.Driver = config.DriverMemory
	cfg.JWT.Secret = "integration-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "placement-portal-test"
	cfg.Import.RollNumberPattern = `^[0-9]{2}[A-Z]{2,5}[0-9]{3}$`
	cfg.Import.MaxRows = 100
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword
	cfg.Admin.Name = "Portal Admin"

	ctx := context.Background()
	lgr := zerolog.Nop()

	store, err := SetupStore(ctx, cfg, lgr)
	if err != nil {
		t.Fatalf("SetupStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	deps, err := BuildDependencies(ctx, cfg, store, lgr)
	if err != nil {
		t.Fatalf("BuildDependencies failed: %v", err)
	}
	return &testApp{t: t, router: SetupRouter(cfg, deps, lgr)}
}

// do sends a JSON request and decodes the envelope into out when out is non-nil
func (a *testApp) do(method, path, token string, body interface{}, out interface{}) int {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if out != nil {
		var env envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("%s %s: failed to decode %q: %v", method, path, w.Body.String(), err)
		}
		if env.Success {
			if err := json.Unmarshal(env.Data, out); err != nil {
				a.t.Fatalf("%s %s: failed to decode data: %v", method, path, err)
			}
		}
	}
	return w.Code
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password}, &resp)
	if code != http.StatusOK || resp.Token.AccessToken == "" {
		a.t.Fatalf("Login as %s failed with status %d", email, code)
	}
	return resp.Token.AccessToken
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	var health map[string]string
	if code := app.do(http.MethodGet, "/health", "", nil, &health); code != http.StatusOK {
		t.Fatalf("Expected health to be 200, got %d", code)
	}
	if health["status"] != "ok" || health["storage"] != config.DriverMemory {
		t.Errorf("Unexpected health body: %v", health)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	app := newTestApp(t)

	if code := app.do(http.MethodGet, "/api/v1/companies", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", code)
	}
	if code := app.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong-password"}, nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong password, got %d", code)
	}
	if code := app.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"}, nil); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed login, got %d", code)
	}
}

func TestDriveRegistrationFlow(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.login(adminEmail, adminPassword)

	var student struct {
		UID string `json:"uid"`
	}
	code := app.do(http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"email":       "asha@college.edu",
		"displayName": "Asha",
		"role":        "STUDENT",
		"department":  "CSE",
		"section":     "A",
		"password":    "student-password",
	}, &student)
	if code != http.StatusCreated || student.UID == "" {
		t.Fatalf("Expected the student to be created, got %d", code)
	}

	studentToken := app.login("asha@college.edu", "student-password")

	var company struct {
		ID string `json:"id"`
	}
	deadline := time.Now().Add(48 * time.Hour)
	code = app.do(http.MethodPost, "/api/v1/companies", adminToken, map[string]interface{}{
		"name":     "Acme Systems",
		"roles":    []string{"SDE"},
		"deadline": deadline,
		"eligibilityCriteria": map[string]interface{}{
			"minCGPA":         7.0,
			"backlogsAllowed": 0,
			"branches":        []string{"CSE", "IT"},
		},
	}, &company)
	if code != http.StatusCreated || company.ID == "" {
		t.Fatalf("Expected the drive to be created, got %d", code)
	}
	// Unverified students cannot register
	if code := app.do(http.MethodPost, "/api/v1/companies/"+company.ID+"/opt-in", studentToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("Expected 403 for an unverified student, got %d", code)
	}

	var profile struct {
		ProfileStatus string `json:"profileStatus"`
	}
	code = app.do(http.MethodPut, "/api/v1/users/"+student.UID+"/profile", studentToken, map[string]interface{}{
		"rollNumber":      "21cse001",
		"department":      "CSE",
		"section":         "A",
		"year":            4,
		"cgpa":            8.2,
		"tenth":           91.0,
		"twelfth":         88.5,
		"standingArrears": 0,
	}, &profile)
	if code != http.StatusOK || profile.ProfileStatus != "APPROVAL_PENDING" {
		t.Fatalf("Expected the profile to await approval, got %d %q", code, profile.ProfileStatus)
	}

	code = app.do(http.MethodPost, "/api/v1/users/"+student.UID+"/approve", adminToken, nil, &profile)
	if code != http.StatusOK || profile.ProfileStatus != "VERIFIED" {
		t.Fatalf("Expected the profile to be verified, got %d %q", code, profile.ProfileStatus)
	}

	var registered struct {
		Registration string `json:"registration"`
	}
	code = app.do(http.MethodPost, "/api/v1/companies/"+company.ID+"/opt-in", studentToken, nil, &registered)
	if code != http.StatusOK || registered.Registration != "OPTED_IN" {
		t.Fatalf("Expected the opt-in to be recorded, got %d %q", code, registered.Registration)
	}
	if code := app.do(http.MethodPost, "/api/v1/companies/"+company.ID+"/opt-out", studentToken, nil, nil); code != http.StatusConflict {
		t.Errorf("Expected 409 when opting out after opting in, got %d", code)
	}

	// Students never reach staff-only routes
	for _, path := range []string{
		"/api/v1/companies/" + company.ID + "/roster",
		"/api/v1/placement-records",
		"/api/v1/users",
	} {
		if code := app.do(http.MethodGet, path, studentToken, nil, nil); code != http.StatusForbidden {
			t.Errorf("Expected 403 for a student on %s, got %d", path, code)
		}
	}
	if code := app.do(http.MethodPost, "/api/v1/companies", studentToken, map[string]interface{}{"name": "Nope"}, nil); code != http.StatusForbidden {
		t.Errorf("Expected 403 for a student creating a drive, got %d", code)
	}

	var roster []struct {
		UID          string `json:"uid"`
		RollNumber   string `json:"rollNumber"`
		Registration string `json:"registration"`
	}
	if code := app.do(http.MethodGet, "/api/v1/companies/"+company.ID+"/roster", adminToken, nil, &roster); code != http.StatusOK {
		t.Fatalf("Expected the roster, got %d", code)
	}
	found := false
	for _, entry := range roster {
		if entry.UID == student.UID {
			found = true
			if entry.RollNumber != "21CSE001" || entry.Registration != "OPTED_IN" {
				t.Errorf("Unexpected roster entry: %+v", entry)
			}
		}
	}
	if !found {
		t.Errorf("Expected the student in the roster, got %+v", roster)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/"+company.ID+"/roster/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("Expected a workbook download, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected content type %q", ct)
	}
}
