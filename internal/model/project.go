package model

import "time"

// Project represents a collection of tracked sessions
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DeviceID    string    `json:"device_id,omitempty"`
}

// NewProject creates a project with defaults
func NewProject(id, name, description string) Project {
	return Project{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
