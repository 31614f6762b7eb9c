package service

import "errors"

// Service error taxonomy.  Handlers map these onto HTTP statuses: conflict for
// duplicate registration, unauthorized for every credential/session failure,
// not-found only on the admin delete path.
var (
	// ErrEmailExists: registration collided with a live account's email.
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Login returns this single value for either case so responses carry no
	// email-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRefresh covers an expired, malformed, forged, rotated-away or
	// revoked refresh token.  The precise reason is logged, never returned.
	ErrInvalidRefresh = errors.New("invalid refresh token")

	// ErrAccountNotFound: the principal or target account no longer exists.
	ErrAccountNotFound = errors.New("account not found")
)
