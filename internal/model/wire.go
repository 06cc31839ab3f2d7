package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The backend (and older clients) are inconsistent about field naming:
// some payloads use snake_case, some camelCase, and timestamps arrive
// either as RFC 3339 strings or as epoch milliseconds. The wire types
// below accept every observed shape and map it onto the one canonical
// schema; nothing past this file sees the variability.

type projectWire struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   json.RawMessage `json:"created_at"`
	CreatedAtC  json.RawMessage `json:"createdAt"`
	DeviceID    string          `json:"device_id"`
	DeviceIDC   string          `json:"deviceId"`
}

type sessionWire struct {
	ID         string            `json:"id"`
	ProjectID  string            `json:"project_id"`
	ProjectIDC string            `json:"projectId"`
	StartTime  json.RawMessage   `json:"start_time"`
	StartTimeC json.RawMessage   `json:"startTime"`
	EndTime    json.RawMessage   `json:"end_time"`
	EndTimeC   json.RawMessage   `json:"endTime"`
	Duration   int64             `json:"duration"`
	Records    []json.RawMessage `json:"records"`
	DeviceID   string            `json:"device_id"`
	DeviceIDC  string            `json:"deviceId"`
}

type recordWire struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	GitLink    string          `json:"git_link"`
	GitLinkC   string          `json:"gitLink"`
	AudioURL   string          `json:"audio_url"`
	AudioURLC  string          `json:"audioUrl"`
	Timestamp  json.RawMessage `json:"timestamp"`
	CreatedAt  json.RawMessage `json:"created_at"`
	Files      []FileRef       `json:"files"`
}

type fileWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// UnmarshalJSON normalizes either external representation of a project.
func (p *Project) UnmarshalJSON(data []byte) error {
	var w projectWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.ID = w.ID
	p.Name = w.Name
	p.Description = w.Description
	p.CreatedAt = parseWireTime(firstRaw(w.CreatedAt, w.CreatedAtC))
	p.DeviceID = firstNonEmpty(w.DeviceID, w.DeviceIDC)
	return nil
}

// UnmarshalJSON normalizes either external representation of a session,
// derives a missing duration, and drops sentinel records.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w sessionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.ProjectID = firstNonEmpty(w.ProjectID, w.ProjectIDC)
	s.StartTime = parseWireTime(firstRaw(w.StartTime, w.StartTimeC))
	s.EndTime = parseWireTime(firstRaw(w.EndTime, w.EndTimeC))
	s.Duration = w.Duration
	s.DeviceID = firstNonEmpty(w.DeviceID, w.DeviceIDC)

	s.Records = nil
	for _, raw := range w.Records {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			continue // malformed record entries are dropped, not fatal
		}
		if IsSentinel(r.ID) {
			continue
		}
		s.Records = append(s.Records, r)
	}

	if s.Duration == 0 {
		s.Duration = s.EffectiveDuration()
	}
	return nil
}

// UnmarshalJSON normalizes a record, filling a missing timestamp from the
// created_at fallback and filtering sentinel file references.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID = w.ID
	r.Text = w.Text
	r.GitLink = firstNonEmpty(w.GitLink, w.GitLinkC)
	r.AudioURL = firstNonEmpty(w.AudioURL, w.AudioURLC)
	r.Timestamp = parseWireTime(firstRaw(w.Timestamp, w.CreatedAt))

	r.Files = nil
	for _, f := range w.Files {
		if IsSentinel(f.ID) {
			continue
		}
		r.Files = append(r.Files, f)
	}
	return nil
}

// UnmarshalJSON accepts both "type" and "mime_type" for the MIME field.
func (f *FileRef) UnmarshalJSON(data []byte) error {
	var w fileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.ID = w.ID
	f.Name = w.Name
	f.URL = w.URL
	f.Type = firstNonEmpty(w.Type, w.MimeType)
	f.Size = w.Size
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstRaw(a, b json.RawMessage) json.RawMessage {
	if len(a) > 0 && string(a) != "null" {
		return a
	}
	return b
}

// parseWireTime accepts RFC 3339 strings and epoch-millisecond numbers.
// Anything unparseable comes back as the zero time, which downstream code
// treats as an unset date.
func parseWireTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return time.Time{}
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
