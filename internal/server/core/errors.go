package core

import "errors"

// Sentinel errors for the core access subsystem. The api layer maps these
// onto HTTP status codes in one place.
var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenExhausted = errors.New("token call quota exhausted")
	ErrFileNotFound   = errors.New("file not found")
	ErrRateLimited    = errors.New("download traffic quota exceeded")
	ErrShareNotFound  = errors.New("share link not found")
)
