package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/existflow/zebra/internal/model"
	"github.com/labstack/echo/v4"
)

type syncRequest struct {
	DeviceID        string          `json:"device_id"`
	LastSyncTime    string          `json:"last_sync_time"`
	LocalSessions   []model.Session `json:"local_sessions"`
	LocalProjects   []model.Project `json:"local_projects"`
	DeletedSessions []string        `json:"deleted_sessions"`
	DeletedProjects []string        `json:"deleted_projects"`
}

type syncResponse struct {
	LastSyncTime   string          `json:"last_sync_time"`
	ServerSessions []model.Session `json:"server_sessions"`
	ServerProjects []model.Project `json:"server_projects"`
}

// handleSync applies the client's pending changes and returns everything
// that changed on the server since the client's checkpoint. Upserts are
// idempotent on (user_id, id), so a client replaying the same batch after
// a lost response converges to the same state.
func (s *Server) handleSync(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	since := time.Time{}
	if req.LastSyncTime != "" {
		if t, err := time.Parse(time.RFC3339, req.LastSyncTime); err == nil {
			since = t
		}
	}

	// The checkpoint is taken before the writes so a concurrent push from
	// another device lands after it and is picked up on the next round.
	checkpoint := time.Now().UTC()

	for _, p := range req.LocalProjects {
		if p.ID == "" {
			continue
		}
		if err := s.upsertProject(userID, p); err != nil {
			c.Logger().Error("sync project upsert:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	for _, sess := range req.LocalSessions {
		if sess.ID == "" || sess.ProjectID == "" {
			continue
		}
		if err := s.upsertSession(userID, sess); err != nil {
			c.Logger().Error("sync session upsert:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	for _, id := range req.DeletedProjects {
		if _, err := s.db.Exec(`
			UPDATE projects SET deleted = TRUE, updated_at = NOW()
			WHERE user_id = $1 AND id = $2`,
			userID, id,
		); err != nil {
			c.Logger().Error("sync project delete:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	for _, id := range req.DeletedSessions {
		if _, err := s.db.Exec(`
			UPDATE sessions SET deleted = TRUE, updated_at = NOW()
			WHERE user_id = $1 AND id = $2`,
			userID, id,
		); err != nil {
			c.Logger().Error("sync session delete:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	serverProjects, err := s.changedProjects(userID, since)
	if err != nil {
		c.Logger().Error("sync project pull:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	serverSessions, err := s.changedSessions(userID, since)
	if err != nil {
		c.Logger().Error("sync session pull:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	c.Logger().Infof("Sync for user %s device %s: pushed %d/%d, pulled %d/%d",
		userID, req.DeviceID,
		len(req.LocalProjects), len(req.LocalSessions),
		len(serverProjects), len(serverSessions))

	return c.JSON(http.StatusOK, syncResponse{
		LastSyncTime:   checkpoint.Format(time.RFC3339),
		ServerSessions: serverSessions,
		ServerProjects: serverProjects,
	})
}

func (s *Server) changedProjects(userID string, since time.Time) ([]model.Project, error) {
	rows, err := s.db.Query(`
		SELECT data FROM projects
		WHERE user_id = $1 AND deleted = FALSE AND updated_at > $2
		ORDER BY updated_at ASC`,
		userID, since,
	)
	if err != nil {
		return nil, err
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
	return projects, rows.Err()
}

func (s *Server) changedSessions(userID string, since time.Time) ([]model.Session, error) {
	rows, err := s.db.Query(`
		SELECT data FROM sessions
		WHERE user_id = $1 AND deleted = FALSE AND updated_at > $2
		ORDER BY updated_at ASC`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			continue
		}
		var sess model.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
