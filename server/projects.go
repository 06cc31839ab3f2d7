package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/existflow/zebra/internal/model"
	"github.com/labstack/echo/v4"
)

type projectDetailResponse struct {
	model.Project
	Sessions []model.Session `json:"sessions"`
}

// handleListProjects returns all live projects for the user
func (s *Server) handleListProjects(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.Query(`
		SELECT data FROM projects
		WHERE user_id = $1 AND deleted = FALSE
		ORDER BY updated_at ASC`,
		userID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			continue
		}
		var p model.Project
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		projects = append(projects, p)
	}

	return c.JSON(http.StatusOK, projects)
}

// handleCreateProject stores a project, preserving the client id
func (s *Server) handleCreateProject(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var p model.Project
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if p.ID == "" || p.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id and name required"})
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	if err := s.upsertProject(userID, p); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, p)
}

// handleGetProject returns one project with its session history
func (s *Server) handleGetProject(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM projects
		WHERE user_id = $1 AND id = $2 AND deleted = FALSE`,
		userID, id,
	).Scan(&data)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		c.Logger().Error("corrupt project row:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	rows, err := s.db.Query(`
		SELECT data FROM sessions
		WHERE user_id = $1 AND project_id = $2 AND deleted = FALSE
		ORDER BY updated_at ASC`,
		userID, id,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		var sess model.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}

	return c.JSON(http.StatusOK, projectDetailResponse{Project: p, Sessions: sessions})
}

// handleUpdateProject replaces a project document
func (s *Server) handleUpdateProject(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var p model.Project
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	p.ID = id

	if err := s.upsertProject(userID, p); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, p)
}

// handleDeleteProject tombstones a project and its sessions
func (s *Server) handleDeleteProject(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	if _, err := s.db.Exec(`
		UPDATE projects SET deleted = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND id = $2`,
		userID, id,
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if _, err := s.db.Exec(`
		UPDATE sessions SET deleted = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND project_id = $2`,
		userID, id,
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.NoContent(http.StatusNoContent)
}

// handleSaveSession upserts a finished session
func (s *Server) handleSaveSession(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var sess model.Session
	if err := c.Bind(&sess); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if sess.ID == "" || sess.ProjectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id and project_id required"})
	}

	if err := s.upsertSession(userID, sess); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, sess)
}

// handleDeleteSession tombstones a session
func (s *Server) handleDeleteSession(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	if _, err := s.db.Exec(`
		UPDATE sessions SET deleted = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND id = $2`,
		userID, id,
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) upsertProject(userID string, p model.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO projects (user_id, id, data, deleted, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		ON CONFLICT (user_id, id) DO UPDATE SET
			data = $3,
			deleted = FALSE,
			updated_at = NOW()`,
		userID, p.ID, data,
	)
	return err
}

func (s *Server) upsertSession(userID string, sess model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO sessions (user_id, id, project_id, data, deleted, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		ON CONFLICT (user_id, id) DO UPDATE SET
			project_id = $3,
			data = $4,
			deleted = FALSE,
			updated_at = NOW()`,
		userID, sess.ID, sess.ProjectID, data,
	)
	return err
}
