package tagstore

import (
	"database/sql"

	"github.com/google/uuid"
)

// ClientID returns this installation's stable sync client id, generating a
// new one on first use.
func (s *Store) ClientID() (string, error) {
	var id string
	err := s.conn.QueryRow("SELECT value FROM meta WHERE key = 'client_id'").Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	if _, err := s.conn.Exec("INSERT INTO meta (key, value) VALUES ('client_id', ?)", id); err != nil {
		return "", err
	}
	return id, nil
}
