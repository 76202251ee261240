package auth

import "staffdesk.io/internal/errs"

// Credential failures. ErrUnauthenticated and ErrInvalidToken share the
// Unauthenticated kind and must not be told apart in responses.
var (
	ErrUnauthenticated    = errs.New(errs.KindUnauthenticated, "Not authorized, no token")
	ErrInvalidToken       = errs.New(errs.KindUnauthenticated, "Not authorized, token failed")
	ErrForbidden          = errs.New(errs.KindForbidden, "Access denied")
	ErrInvalidCredentials = errs.New(errs.KindValidation, "Invalid credentials")
	ErrPasswordTooLong    = errs.Validation("password", "Password must be at most 72 bytes")
)
