package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleGetFile serves a stored file attachment
func (s *Server) handleGetFile(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var mime string
	var data []byte
	err := s.db.QueryRow(`
		SELECT mime_type, data FROM files WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&mime, &data)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
	}

	return c.Blob(http.StatusOK, mime, data)
}

// handleGetAudio serves a stored audio clip
func (s *Server) handleGetAudio(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var mime string
	var data []byte
	err := s.db.QueryRow(`
		SELECT mime_type, data FROM files WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&mime, &data)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "audio not found"})
	}

	if mime == "" || mime == "application/octet-stream" {
		mime = "audio/webm"
	}
	return c.Blob(http.StatusOK, mime, data)
}
