// Package shares implements the HTTP surface of the shareable link subsystem:
// the authenticated issuance and listing endpoints under /api/v1/shares, and
// the anonymous resolution endpoint under /v1/shared/:token.
package shares

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recruitbase/recruitbase/internal/audit"
	"github.com/recruitbase/recruitbase/internal/db/repositories"
	"github.com/recruitbase/recruitbase/internal/middleware"
	"github.com/recruitbase/recruitbase/internal/share"
)

// PasswordHeader carries the link password on resolution requests. A header is
// preferred over a query parameter so the password does not land in access logs
// or browser history, but ?password= is accepted for plain-link clients.
const PasswordHeader = "X-Share-Password"

// Handlers serves the shareable link endpoints.
type Handlers struct {
	issuer   *share.Issuer
	resolver *share.Resolver
	links    *repositories.ShareRepository
}

// NewHandlers creates the shareable link handlers.
func NewHandlers(issuer *share.Issuer, resolver *share.Resolver, links *repositories.ShareRepository) *Handlers {
	return &Handlers{issuer: issuer, resolver: resolver, links: links}
}

// issueRequest is the POST /api/v1/shares body.
type issueRequest struct {
	ResourceType string       `json:"resource_type" binding:"required"`
	ResourceID   string       `json:"resource_id" binding:"required"`
	Options      issueOptions `json:"options"`
}

// issueOptions carries the optional link policy.
type issueOptions struct {
	Password       string `json:"password"`
	ExpirationDate string `json:"expiration_date"`
}

// issueResponse is the successful issuance payload.
type issueResponse struct {
	Success      bool       `json:"success"`
	Token        string     `json:"token"`
	ShareableURL string     `json:"shareable_url"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// actorFromContext rebuilds the audit actor from the identity keys populated by
// the auth middleware.
func actorFromContext(c *gin.Context) audit.Actor {
	return audit.Actor{
		ID:             c.GetString(middleware.UserIDKey),
		Name:           c.GetString(middleware.UserNameKey),
		OrganizationID: c.GetString(middleware.OrganizationIDKey),
		IPAddress:      c.ClientIP(),
	}
}

// @Summary      Create a shareable link
// @Description  Mints an unguessable public link for a job, report, or dashboard in the caller's organization. Optionally password-protected and expiring.
// @Tags         Shares
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  issueResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid input"
// @Failure      403  {object}  map[string]interface{}  "Resource not accessible"
// @Router       /api/v1/shares [post]
func (h *Handlers) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.issuer.Issue(c.Request.Context(), actorFromContext(c), share.IssueRequest{
		ResourceType:   req.ResourceType,
		ResourceID:     req.ResourceID,
		Password:       req.Options.Password,
		ExpirationDate: req.Options.ExpirationDate,
	})
	if err != nil {
		writeShareError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issueResponse{
		Success:      true,
		Token:        result.Token,
		ShareableURL: result.ShareableURL,
		ExpiresAt:    result.ExpiresAt,
	})
}

// listedShare is one element of the GET /api/v1/shares response. The password
// hash is never serialized; only the fact that a password is set.
type listedShare struct {
	Token             string     `json:"token"`
	ResourceType      string     `json:"resource_type"`
	ResourceID        string     `json:"resource_id"`
	PasswordProtected bool       `json:"password_protected"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	Revoked           bool       `json:"revoked"`
	CreatedBy         string     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

// @Summary      List shareable links
// @Description  Returns every link issued within the caller's organization, newest first.
// @Tags         Shares
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "shares: [], count: n"
// @Router       /api/v1/shares [get]
func (h *Handlers) List(c *gin.Context) {
	orgID := c.GetString(middleware.OrganizationIDKey)

	links, err := h.links.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list shareable links"})
		return
	}

	out := make([]listedShare, 0, len(links))
	for _, l := range links {
		out = append(out, listedShare{
			Token:             l.Token,
			ResourceType:      l.ResourceType,
			ResourceID:        l.ResourceID,
			PasswordProtected: l.RequiresPassword(),
			ExpiresAt:         l.ExpiresAt,
			Revoked:           l.Revoked,
			CreatedBy:         l.CreatedBy,
			CreatedAt:         l.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"shares":  out,
		"count":   len(out),
	})
}

// resolveResponse is the successful resolution payload: the resource itself
// plus the link metadata a public viewer may see.
type resolveResponse struct {
	Success  bool         `json:"success"`
	Resource interface{}  `json:"resource"`
	Link     linkMetadata `json:"link_metadata"`
}

type linkMetadata struct {
	ResourceType string     `json:"resource_type"`
	SharedAt     time.Time  `json:"shared_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// @Summary      Resolve a shared link
// @Description  Anonymous endpoint resolving a public link token to its resource. Password-protected links require the X-Share-Password header (or ?password=).
// @Tags         Shares
// @Produce      json
// @Success      200  {object}  resolveResponse
// @Failure      401  {object}  map[string]interface{}  "Password required"
// @Failure      403  {object}  map[string]interface{}  "Incorrect password"
// @Failure      404  {object}  map[string]interface{}  "Unknown link"
// @Failure      410  {object}  map[string]interface{}  "Link expired"
// @Router       /v1/shared/{token} [get]
func (h *Handlers) Resolve(c *gin.Context) {
	token := c.Param("token")

	password := c.GetHeader(PasswordHeader)
	if password == "" {
		password = c.Query("password")
	}

	res, err := h.resolver.Resolve(c.Request.Context(), c.ClientIP(), token, password)
	if err != nil {
		writeShareError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolveResponse{
		Success:  true,
		Resource: res.Resource.Payload,
		Link: linkMetadata{
			ResourceType: string(res.ResourceType),
			SharedAt:     res.CreatedAt,
			ExpiresAt:    res.ExpiresAt,
		},
	})
}

// writeShareError maps the share package's error taxonomy to HTTP responses.
// Invalid links and vanished resources both map to 404: an anonymous caller
// learns nothing about why a token is dead.
func writeShareError(c *gin.Context, err error) {
	var ve *share.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Error(), "field": ve.Field})
	case share.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Resource not found or not accessible"})
	case errors.Is(err, share.ErrPasswordRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "This link is password protected", "password_required": true})
	case errors.Is(err, share.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Incorrect password"})
	case errors.Is(err, share.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"success": false, "error": "This link has expired"})
	case errors.Is(err, share.ErrInvalidLink), errors.Is(err, share.ErrResourceGone):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Link not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
