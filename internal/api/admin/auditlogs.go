// Package admin implements the authenticated administrative endpoints, currently
// the audit trail query surface under /api/v1/audit-logs.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recruitbase/recruitbase/internal/db/repositories"
	"github.com/recruitbase/recruitbase/internal/middleware"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// AuditLogHandlers serves read access to the audit trail. Entries are append-only;
// there is deliberately no update or delete surface.
type AuditLogHandlers struct {
	repo *repositories.AuditRepository
}

// NewAuditLogHandlers creates the audit trail handlers.
func NewAuditLogHandlers(repo *repositories.AuditRepository) *AuditLogHandlers {
	return &AuditLogHandlers{repo: repo}
}

// @Summary      List audit log entries
// @Description  Returns audit entries for the caller's organization, newest first, filterable by actor, action, resource type, outcome, and time range.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        actor_id       query  string  false  "Filter by actor id"
// @Param        action         query  string  false  "Filter by action type, e.g. share.create"
// @Param        resource_type  query  string  false  "Filter by resource type"
// @Param        succeeded      query  bool    false  "Filter by outcome"
// @Param        start_date     query  string  false  "RFC3339 lower bound"
// @Param        end_date       query  string  false  "RFC3339 upper bound"
// @Param        limit          query  int     false  "Page size (max 200)"
// @Param        offset         query  int     false  "Page offset"
// @Success      200  {object}  map[string]interface{}  "logs: [], total: n, limit, offset"
// @Failure      400  {object}  map[string]interface{}  "Invalid filter"
// @Router       /api/v1/audit-logs [get]
func (h *AuditLogHandlers) List(c *gin.Context) {
	// Every query is scoped to the caller's organization; cross-tenant reads
	// are not expressible through this surface.
	orgID := c.GetString(middleware.OrganizationIDKey)
	filters := repositories.AuditFilters{OrganizationID: &orgID}

	if v := c.Query("actor_id"); v != "" {
		filters.ActorID = &v
	}
	if v := c.Query("action"); v != "" {
		filters.Action = &v
	}
	if v := c.Query("resource_type"); v != "" {
		filters.ResourceType = &v
	}
	if v := c.Query("succeeded"); v != "" {
		succeeded, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "succeeded must be true or false"})
			return
		}
		filters.Succeeded = &succeeded
	}
	if v := c.Query("start_date"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be an RFC3339 timestamp"})
			return
		}
		filters.StartDate = &start
	}
	if v := c.Query("end_date"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be an RFC3339 timestamp"})
			return
		}
		filters.EndDate = &end
	}

	limit := defaultAuditPageSize
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxAuditPageSize)
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = parsed
	}

	logs, total, err := h.repo.ListAuditLogs(c.Request.Context(), filters, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// @Summary      Get one audit log entry
// @Description  Returns a single audit entry by id, scoped to the caller's organization.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.AuditLog
// @Failure      404  {object}  map[string]interface{}  "Not found"
// @Router       /api/v1/audit-logs/{id} [get]
func (h *AuditLogHandlers) Get(c *gin.Context) {
	entry, err := h.repo.GetAuditLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
		return
	}

	// An entry from another tenant is indistinguishable from a missing one.
	orgID := c.GetString(middleware.OrganizationIDKey)
	if entry == nil || entry.OrganizationID == nil || *entry.OrganizationID != orgID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audit log entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}
