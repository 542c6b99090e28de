package tagstore

import (
	"database/sql"
	"fmt"
)

// Topics returns the topic names in their stored order.
func (s *Store) Topics() ([]string, error) {
	rows, err := s.conn.Query("SELECT name FROM topics ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasTopic reports whether a topic exists.
func (s *Store) HasTopic(name string) (bool, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM topics WHERE name = ?", name).Scan(&count)
	return count > 0, err
}

// AddTopic appends a new topic to the end of the list.
// Adding an existing name is an error.
func (s *Store) AddTopic(name string) error {
	if name == "" {
		return fmt.Errorf("topic name must not be empty")
	}
	exists, err := s.HasTopic(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("topic %q already exists", name)
	}
	_, err = s.conn.Exec(
		"INSERT INTO topics (name, position) VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM topics))",
		name,
	)
	return err
}

// ensureTopic appends a topic if it does not exist yet. Used by import and
// sync merges, which are additive.
func (s *Store) ensureTopic(name string) error {
	exists, err := s.HasTopic(name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.AddTopic(name)
}

// RenameTopic renames a topic, carrying all its stars to the new name and
// keeping its position in the list. The old name must exist and the new name
// must not.
func (s *Store) RenameTopic(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("topic name must not be empty")
	}
	if oldName == newName {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRow("SELECT position FROM topics WHERE name = ?", oldName).Scan(&position); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("topic %q not found", oldName)
		}
		return err
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM topics WHERE name = ?", newName).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("topic %q already exists", newName)
	}

	// Insert the new row first so the star rows always reference an
	// existing topic while foreign keys are enforced.
	if _, err := tx.Exec("INSERT INTO topics (name, position) VALUES (?, ?)", newName, position); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE stars SET topic = ? WHERE topic = ?", newName, oldName); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM topics WHERE name = ?", oldName); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteTopic removes a topic and its star associations. The underlying
// papers are untouched.
func (s *Store) DeleteTopic(name string) error {
	exists, err := s.HasTopic(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("topic %q not found", name)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM stars WHERE topic = ?", name); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM topics WHERE name = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}
