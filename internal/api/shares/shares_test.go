package shares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/recruitbase/recruitbase/internal/audit"
	"github.com/recruitbase/recruitbase/internal/auth"
	"github.com/recruitbase/recruitbase/internal/db/models"
	"github.com/recruitbase/recruitbase/internal/db/repositories"
	"github.com/recruitbase/recruitbase/internal/middleware"
	"github.com/recruitbase/recruitbase/internal/share"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

const (
	testJobID     = "5f0c2f9a-8d3b-4e6a-9c1d-2b7e4a6f8d01"
	testMissingID = "9e4a1b3c-6f7d-4a2e-8b5c-0d1f2e3a4b05"
)

var shareCols = []string{
	"id", "token", "organization_id", "resource_type", "resource_id",
	"password_hash", "expires_at", "revoked", "created_by", "created_at",
}

// nullAuditStore discards audit entries; the audit pipeline has its own tests.
type nullAuditStore struct{}

func (nullAuditStore) CreateAuditLog(context.Context, *models.AuditLog) error { return nil }

func newSharesRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	links := repositories.NewShareRepository(sqlx.NewDb(db, "sqlmock"))

	registry := share.NewRegistry()
	registry.Register(share.ResourceJob, func(_ context.Context, id string) (*share.Resource, error) {
		if id != testJobID {
			return nil, nil
		}
		return &share.Resource{
			Type:           share.ResourceJob,
			ID:             id,
			OrganizationID: "org-1",
			Payload:        map[string]string{"title": "Backend Engineer"},
		}, nil
	})

	recorder := audit.NewRecorder(nullAuditStore{}, nil)
	issuer := share.NewIssuer(links, registry, recorder, "https://app.recruitbase.test", "/shared", 4)
	resolver := share.NewResolver(links, registry, recorder)
	h := NewHandlers(issuer, resolver, links)

	r := gin.New()
	authed := r.Group("/api/v1")
	authed.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		c.Set(middleware.UserNameKey, "Dana Recruiter")
		c.Set(middleware.OrganizationIDKey, "org-1")
	})
	authed.POST("/shares", h.Issue)
	authed.GET("/shares", h.List)
	r.GET("/v1/shared/:token", h.Resolve)
	return mock, r
}

func getJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueEndpoint_Success(t *testing.T) {
	mock, r := newSharesRouter(t)

	mock.ExpectExec("INSERT INTO shareable_links").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := postJSON(r, "/api/v1/shares", `{"resource_type":"job","resource_id":"`+testJobID+`"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(t, w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("response missing token")
	}
	wantURL := "https://app.recruitbase.test/shared/" + token
	if resp["shareable_url"] != wantURL {
		t.Errorf("shareable_url = %v, want %s", resp["shareable_url"], wantURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIssueEndpoint_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing resource_id", `{"resource_type":"job"}`},
		{"unknown resource type", `{"resource_type":"candidate","resource_id":"c-1"}`},
		{"malformed expiration", `{"resource_type":"job","resource_id":"` + testJobID + `","options":{"expiration_date":"soon"}}`},
		{"malformed resource id", `{"resource_type":"job","resource_id":"not-a-uuid"}`},
		{"not json", `resource_type=job`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r := newSharesRouter(t)
			w := postJSON(r, "/api/v1/shares", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestIssueEndpoint_ResourceOutsideTenant(t *testing.T) {
	_, r := newSharesRouter(t)

	w := postJSON(r, "/api/v1/shares", `{"resource_type":"job","resource_id":"`+testMissingID+`"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403: body=%s", w.Code, w.Body.String())
	}
}

func TestListEndpoint(t *testing.T) {
	mock, r := newSharesRouter(t)

	hash, _ := auth.HashLinkPassword("hunter2", 4)
	mock.ExpectQuery("SELECT id, token").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows(shareCols).
			AddRow("link-1", "tok_abc", "org-1", "job", testJobID, &hash, nil, false, "user-1", time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/shares", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(t, w)
	if resp["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", resp["count"])
	}
	entry := resp["shares"].([]interface{})[0].(map[string]interface{})
	if entry["password_protected"] != true {
		t.Error("expected password_protected: true")
	}
	if _, leaked := entry["password_hash"]; leaked {
		t.Error("password hash must never appear in responses")
	}
}

func resolveRow(passwordHash *string, expiresAt *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(shareCols).
		AddRow("link-1", "tok_abc", "org-1", "job", testJobID,
			passwordHash, expiresAt, false, "user-1", time.Now())
}

func TestResolveEndpoint_Success(t *testing.T) {
	mock, r := newSharesRouter(t)

	mock.ExpectQuery("SELECT id, token").
		WithArgs("tok_abc").
		WillReturnRows(resolveRow(nil, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/shared/tok_abc", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(t, w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	meta := resp["link_metadata"].(map[string]interface{})
	if meta["resource_type"] != "job" {
		t.Errorf("resource_type = %v, want job", meta["resource_type"])
	}
	resource := resp["resource"].(map[string]interface{})
	if resource["title"] != "Backend Engineer" {
		t.Errorf("resource payload = %v", resource)
	}
}

func TestResolveEndpoint_PasswordFlow(t *testing.T) {
	hash, err := auth.HashLinkPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"no password", "", "", http.StatusUnauthorized},
		{"wrong password", "letmein", "", http.StatusForbidden},
		{"correct via header", "hunter2", "", http.StatusOK},
		{"correct via query", "", "?password=hunter2", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, r := newSharesRouter(t)
			mock.ExpectQuery("SELECT id, token").
				WithArgs("tok_abc").
				WillReturnRows(resolveRow(&hash, nil))

			req := httptest.NewRequest("GET", "/v1/shared/tok_abc"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set(PasswordHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestResolveEndpoint_Expired(t *testing.T) {
	mock, r := newSharesRouter(t)

	yesterday := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery("SELECT id, token").
		WithArgs("tok_abc").
		WillReturnRows(resolveRow(nil, &yesterday))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/shared/tok_abc", nil))

	if w.Code != http.StatusGone {
		t.Errorf("status = %d, want 410: body=%s", w.Code, w.Body.String())
	}
}

func TestResolveEndpoint_UnknownToken(t *testing.T) {
	mock, r := newSharesRouter(t)

	mock.ExpectQuery("SELECT id, token").
		WithArgs("never-issued").
		WillReturnRows(sqlmock.NewRows(shareCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/shared/never-issued", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: body=%s", w.Code, w.Body.String())
	}
	if resp := getJSON(t, w); resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
}
