// Package models - resources.go defines the shareable domain resources: job
// postings, recruitment reports, and dashboards. These models are read-only from
// the sharing subsystem's perspective; their CRUD surface lives elsewhere in the
// platform.
package models

import "time"

// Job represents a job posting
type Job struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Title          string    `db:"title" json:"title"`
	Department     *string   `db:"department" json:"department,omitempty"`
	Location       *string   `db:"location" json:"location,omitempty"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Report represents a saved recruitment report definition
type Report struct {
	ID             string                 `db:"id" json:"id"`
	OrganizationID string                 `db:"organization_id" json:"organization_id"`
	Name           string                 `db:"name" json:"name"`
	ReportType     string                 `db:"report_type" json:"report_type"`
	Parameters     map[string]interface{} `db:"-" json:"parameters,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}

// Dashboard represents a saved dashboard layout
type Dashboard struct {
	ID             string                 `db:"id" json:"id"`
	OrganizationID string                 `db:"organization_id" json:"organization_id"`
	Name           string                 `db:"name" json:"name"`
	Layout         map[string]interface{} `db:"-" json:"layout,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}
