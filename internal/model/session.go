package model

import "time"

// Session represents one timed work interval against a project.
// Duration is the authoritative elapsed time in milliseconds; when it is
// absent it is derived from the start/end pair, but only when both carry
// real dates (the backend uses year-zero timestamps as "unset").
type Session struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitzero"`
	Duration  int64     `json:"duration"`
	Records   []Record  `json:"records,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
}

// ValidDate reports whether t is a real timestamp rather than an
// unset/zero-date sentinel.
func ValidDate(t time.Time) bool {
	return t.Year() >= 2000
}

// EffectiveDuration returns the session duration in milliseconds,
// deriving it from the start/end pair when no explicit duration is set.
func (s *Session) EffectiveDuration() int64 {
	if s.Duration > 0 {
		return s.Duration
	}
	if ValidDate(s.StartTime) && ValidDate(s.EndTime) {
		return s.EndTime.Sub(s.StartTime).Milliseconds()
	}
	return 0
}
