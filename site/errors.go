package site

import "codeberg.org/kvo/std/errors"

// Predefined errors. Callers branch on these by identity, so portal code
// returns them bare instead of wrapping them.
var (
	ErrAuthFailed     = errors.New("authentication failed", nil)
	ErrInvalidAuth    = errors.New("invalid session token", nil)
	ErrInvalidResp    = errors.New("invalid HTML response", nil)
	ErrNoLoginToken   = errors.New("cannot find login token", nil)
	ErrNoParams       = errors.New("item has no action parameters", nil)
	ErrNotFound       = errors.New("cannot find resource", nil)
	ErrSessionExpired = errors.New("portal session expired", nil)
	ErrTimeout        = errors.New("request timed out", nil)
)
