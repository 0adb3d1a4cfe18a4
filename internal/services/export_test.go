package services

import "time"

// SetAuthClock replaces the clock used for session and token expiry.
func SetAuthClock(s *AuthService, now func() time.Time) {
	s.now = now
}
