package localstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
)

// PutProject stores or replaces a project by id
func (s *Store) PutProject(p model.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return s.put("projects", p.ID, string(data))
}

// Projects returns all stored projects, oldest first
func (s *Store) Projects() []model.Project {
	rows := s.getAll("projects")
	out := make([]model.Project, 0, len(rows))
	for _, data := range rows {
		var p model.Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			logger.Warn("skipping corrupt project entry", logger.F("error", err))
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// DeleteProject removes a project by id
func (s *Store) DeleteProject(id string) error {
	return s.remove("projects", id)
}

// PutSession stores or replaces a session by id
func (s *Store) PutSession(sess model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.put("sessions", sess.ID, string(data))
}

// Sessions returns all stored sessions
func (s *Store) Sessions() []model.Session {
	rows := s.getAll("sessions")
	out := make([]model.Session, 0, len(rows))
	for _, data := range rows {
		var sess model.Session
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			logger.Warn("skipping corrupt session entry", logger.F("error", err))
			continue
		}
		out = append(out, sess)
	}
	return out
}

// DeleteSession removes a session by id
func (s *Store) DeleteSession(id string) error {
	return s.remove("sessions", id)
}

func (s *Store) put(table, id, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		s.memTable(table)[id] = data
		return nil
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`, table)
	if _, err := s.db.Exec(query, id, data); err != nil {
		return fmt.Errorf("write %s %q: %w", table, id, err)
	}
	return nil
}

func (s *Store) getAll(table string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		out := make([]string, 0, len(s.memTable(table)))
		for _, data := range s.memTable(table) {
			out = append(out, data)
		}
		return out
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, table))
	if err != nil {
		logger.Error("scan failed", logger.F("table", table), logger.F("error", err))
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}
		out = append(out, data)
	}
	return out
}

func (s *Store) remove(table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem != nil {
		delete(s.memTable(table), id)
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)
	if _, err := s.db.Exec(query, id); err != nil {
		return fmt.Errorf("delete %s %q: %w", table, id, err)
	}
	return nil
}

func (s *Store) memTable(table string) map[string]string {
	if table == "projects" {
		return s.mem.projects
	}
	return s.mem.sessions
}
