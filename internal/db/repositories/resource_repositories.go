// resource_repositories.go implements read-only repositories for the shareable
// domain resources (jobs, reports, dashboards). The sharing subsystem only needs
// GetByID on each; the platform's CRUD surface for these tables lives elsewhere.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/recruitbase/recruitbase/internal/db/models"
)

// JobRepository handles read access to job postings
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID retrieves a job posting by ID. Returns nil, nil when not found.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `
		SELECT id, organization_id, title, department, location, description, status, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	var job models.Job
	err := r.db.GetContext(ctx, &job, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// ReportRepository handles read access to saved reports
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetByID retrieves a report definition by ID. Returns nil, nil when not found.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `
		SELECT id, organization_id, name, report_type, parameters, created_at
		FROM reports
		WHERE id = $1
	`

	var report models.Report
	var paramsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.OrganizationID,
		&report.Name,
		&report.ReportType,
		&paramsJSON,
		&report.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if paramsJSON != nil {
		if err := json.Unmarshal(paramsJSON, &report.Parameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report parameters: %w", err)
		}
	}

	return &report, nil
}

// DashboardRepository handles read access to saved dashboards
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// GetByID retrieves a dashboard by ID. Returns nil, nil when not found.
func (r *DashboardRepository) GetByID(ctx context.Context, id string) (*models.Dashboard, error) {
	query := `
		SELECT id, organization_id, name, layout, created_at
		FROM dashboards
		WHERE id = $1
	`

	var dash models.Dashboard
	var layoutJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dash.ID,
		&dash.OrganizationID,
		&dash.Name,
		&layoutJSON,
		&dash.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}

	if layoutJSON != nil {
		if err := json.Unmarshal(layoutJSON, &dash.Layout); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dashboard layout: %w", err)
		}
	}

	return &dash, nil
}
