package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/recruitbase/recruitbase/internal/db/models"
)

var shareCols = []string{
	"id", "token", "organization_id", "resource_type", "resource_id",
	"password_hash", "expires_at", "revoked", "created_by", "created_at",
}

func newShareRepo(t *testing.T) (*ShareRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewShareRepository(sqlx.NewDb(db, "postgres")), mock
}

func sampleShareRow() *sqlmock.Rows {
	return sqlmock.NewRows(shareCols).
		AddRow("link-1", "tok_abc", "org-1", "job", "job-1",
			nil, nil, false, "user-1", time.Now())
}

func TestShareCreate_Success(t *testing.T) {
	repo, mock := newShareRepo(t)
	mock.ExpectExec("INSERT INTO shareable_links").
		WillReturnResult(sqlmock.NewResult(1, 1))

	link := &models.ShareableLink{
		Token:          "tok_abc",
		OrganizationID: "org-1",
		ResourceType:   "job",
		ResourceID:     "job-1",
		CreatedBy:      "user-1",
	}
	if err := repo.Create(context.Background(), link); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.ID == "" {
		t.Error("expected repository to assign an ID")
	}
}

func TestShareCreate_DBError(t *testing.T) {
	repo, mock := newShareRepo(t)
	mock.ExpectExec("INSERT INTO shareable_links").
		WillReturnError(errDB)

	link := &models.ShareableLink{Token: "tok_abc", OrganizationID: "org-1", ResourceType: "job", ResourceID: "job-1"}
	if err := repo.Create(context.Background(), link); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestShareGetByToken_Found(t *testing.T) {
	repo, mock := newShareRepo(t)
	mock.ExpectQuery("SELECT id.*FROM shareable_links.*WHERE token").
		WillReturnRows(sampleShareRow())

	link, err := repo.GetByToken(context.Background(), "tok_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == nil {
		t.Fatal("expected link, got nil")
	}
	if link.ResourceType != "job" || link.ResourceID != "job-1" {
		t.Errorf("resource = %s/%s, want job/job-1", link.ResourceType, link.ResourceID)
	}
}

func TestShareGetByToken_NotFound(t *testing.T) {
	repo, mock := newShareRepo(t)
	mock.ExpectQuery("SELECT id.*FROM shareable_links.*WHERE token").
		WillReturnRows(sqlmock.NewRows(shareCols))

	link, err := repo.GetByToken(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != nil {
		t.Errorf("expected nil, got %v", link)
	}
}

func TestShareGetByToken_Error(t *testing.T) {
	repo, mock := newShareRepo(t)
	mock.ExpectQuery("SELECT id.*FROM shareable_links.*WHERE token").
		WillReturnError(errDB)

	_, err := repo.GetByToken(context.Background(), "tok_abc")
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestShareListByOrganization(t *testing.T) {
	repo, mock := newShareRepo(t)
	hash := "$2a$12$hash"
	expires := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows(shareCols).
		AddRow("link-1", "tok_abc", "org-1", "job", "job-1", nil, nil, false, "user-1", time.Now()).
		AddRow("link-2", "tok_def", "org-1", "report", "rep-1", &hash, &expires, false, "user-2", time.Now())
	mock.ExpectQuery("SELECT id.*FROM shareable_links.*WHERE organization_id").
		WillReturnRows(rows)

	links, err := repo.ListByOrganization(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if !links[1].RequiresPassword() {
		t.Error("second link should require a password")
	}
}
