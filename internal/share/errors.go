// errors.go defines the error taxonomy for link issuance and resolution.
//
// Resolution failures deliberately disclose as little as possible: a missing,
// revoked, or data-corrupt link all surface as ErrInvalidLink, and expiry is
// only reported for tokens that do exist. ErrPasswordRequired and
// ErrWrongPassword are distinguishable from ErrInvalidLink so a UI can prompt
// for a password instead of showing a dead end, but neither reveals anything
// about the token beyond "needs a password" vs "wrong password".
package share

import (
	"errors"
	"fmt"
)

// Resolution failure kinds, matched by callers with errors.Is.
var (
	// ErrInvalidLink covers unknown tokens, revoked links, and stored records
	// referencing an unrecognized resource type.
	ErrInvalidLink = errors.New("invalid or unknown link")
	// ErrLinkExpired is reported only after the token has been confirmed to exist.
	ErrLinkExpired = errors.New("link has expired")
	// ErrPasswordRequired is returned when a protected link is resolved without
	// a password.
	ErrPasswordRequired = errors.New("password required")
	// ErrWrongPassword is returned when the supplied password does not match.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrResourceGone is returned when the link is valid but the referenced
	// resource has since been deleted from its owning store.
	ErrResourceGone = errors.New("referenced resource no longer exists")
)

// ValidationError reports malformed issuance input (unrecognized resource type,
// missing id, unparseable expiration date).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports that the caller may not issue a link for the
// target resource.
type AuthorizationError struct {
	ResourceType string
	ResourceID   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to share %s %s", e.ResourceType, e.ResourceID)
}

// IsValidation reports whether err is an issuance validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization reports whether err is an issuance authorization error.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
