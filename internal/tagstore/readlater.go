package tagstore

// AddReadLater adds an identity to the read-later set. Adding an identity
// that is already present is a no-op.
func (s *Store) AddReadLater(identity string) error {
	_, err := s.conn.Exec(
		"INSERT OR IGNORE INTO read_later (identity) VALUES (?)", identity,
	)
	return err
}

// RemoveReadLater removes an identity from the read-later set.
func (s *Store) RemoveReadLater(identity string) error {
	_, err := s.conn.Exec("DELETE FROM read_later WHERE identity = ?", identity)
	return err
}

// ToggleReadLater flips an identity's read-later membership and returns the
// new state.
func (s *Store) ToggleReadLater(identity string) (bool, error) {
	in, err := s.InReadLater(identity)
	if err != nil {
		return false, err
	}
	if in {
		return false, s.RemoveReadLater(identity)
	}
	return true, s.AddReadLater(identity)
}

// InReadLater reports whether an identity is in the read-later set.
func (s *Store) InReadLater(identity string) (bool, error) {
	var count int
	err := s.conn.QueryRow(
		"SELECT COUNT(*) FROM read_later WHERE identity = ?", identity,
	).Scan(&count)
	return count > 0, err
}

// ReadLater returns the read-later identities in insertion order.
func (s *Store) ReadLater() ([]string, error) {
	rows, err := s.conn.Query("SELECT identity FROM read_later ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		identities = append(identities, id)
	}
	return identities, rows.Err()
}
