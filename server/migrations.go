package server

// migrate runs database migrations
func (s *Server) migrate() error {
	migrations := []string{
		migrationUsers,
		migrationAuthTokens,
		migrationProjects,
		migrationSessions,
		migrationFiles,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) UNIQUE NOT NULL,
    name VARCHAR(255) DEFAULT '',
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

const migrationAuthTokens = `
CREATE TABLE IF NOT EXISTS auth_tokens (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id),
    token VARCHAR(64) UNIQUE NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_auth_tokens_token ON auth_tokens(token);
`

// Project and session ids are client generated, so the primary key is
// (user_id, id) rather than a server uuid. Rows are tombstoned instead
// of removed so deletes propagate to other devices.
const migrationProjects = `
CREATE TABLE IF NOT EXISTS projects (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    data JSONB NOT NULL,
    deleted BOOLEAN DEFAULT FALSE,
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(user_id, updated_at);
`

const migrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    data JSONB NOT NULL,
    deleted BOOLEAN DEFAULT FALSE,
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(user_id, updated_at);
`

const migrationFiles = `
CREATE TABLE IF NOT EXISTS files (
    user_id UUID NOT NULL REFERENCES users(id),
    id TEXT NOT NULL,
    name TEXT DEFAULT '',
    mime_type TEXT DEFAULT 'application/octet-stream',
    data BYTEA,
    created_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (user_id, id)
);
`
