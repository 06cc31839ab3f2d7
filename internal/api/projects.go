package api

import (
	"context"
	"net/http"

	"github.com/existflow/zebra/internal/model"
)

// ProjectDetail is a project together with its session history
type ProjectDetail struct {
	Project  model.Project
	Sessions []model.Session
}

// GetProjects fetches the project list
func (c *Client) GetProjects(ctx context.Context) ([]model.Project, error) {
	data, err := c.do(ctx, http.MethodGet, "api/projects", nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var projects []model.Project
	if err := decodeInto(data, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project on the server. The client-generated id
// is preserved by the server, so offline-created projects keep their
// identity across a later sync.
func (c *Client) CreateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	data, err := c.do(ctx, http.MethodPost, "api/projects", p)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &p, nil
	}
	var saved model.Project
	if err := decodeInto(data, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetProject fetches one project with its sessions. Session payloads are
// normalized at this boundary: field-name variants, derived durations and
// sentinel filtering are all resolved before the detail is returned.
func (c *Client) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	data, err := c.do(ctx, http.MethodGet, "api/projects/"+id, nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var project model.Project
	if err := decodeInto(data, &project); err != nil {
		return nil, err
	}
	var wrapper struct {
		Sessions []model.Session `json:"sessions"`
	}
	if err := decodeInto(data, &wrapper); err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: project, Sessions: wrapper.Sessions}, nil
}

// UpdateProject updates a project by id
func (c *Client) UpdateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	data, err := c.do(ctx, http.MethodPut, "api/projects/"+p.ID, p)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &p, nil
	}
	var saved model.Project
	if err := decodeInto(data, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteProject deletes a project by id
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "api/projects/"+id, nil)
	return err
}

// SaveSession persists a finished session with its records
func (c *Client) SaveSession(ctx context.Context, s model.Session) (*model.Session, error) {
	data, err := c.do(ctx, http.MethodPost, "api/sessions", s)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &s, nil
	}
	var saved model.Session
	if err := decodeInto(data, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSession deletes a session by id
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "api/sessions/"+id, nil)
	return err
}
