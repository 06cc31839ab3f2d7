package model

import "time"

// SentinelID is the all-zero UUID the backend uses for "no resource
// attached". Anything carrying it is filtered out before reaching callers.
const SentinelID = "00000000-0000-0000-0000-000000000000"

// IsSentinel reports whether id denotes an absent resource.
func IsSentinel(id string) bool {
	return id == "" || id == SentinelID
}

// Record is a note attached to a session while the timer runs.
type Record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	GitLink   string    `json:"git_link,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Files     []FileRef `json:"files,omitempty"`
}

// FileRef points at an uploaded file attachment.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}
