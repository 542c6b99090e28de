package tagstore

import "fmt"

// Star adds an identity to a topic's star set. The topic must exist.
func (s *Store) Star(topic, identity string) error {
	exists, err := s.HasTopic(topic)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("topic %q not found", topic)
	}
	_, err = s.conn.Exec(
		"INSERT OR IGNORE INTO stars (topic, identity) VALUES (?, ?)", topic, identity,
	)
	return err
}

// Unstar removes an identity from a topic's star set.
func (s *Store) Unstar(topic, identity string) error {
	_, err := s.conn.Exec("DELETE FROM stars WHERE topic = ? AND identity = ?", topic, identity)
	return err
}

// ToggleStar flips an identity's membership in a topic's star set and
// returns the new state.
func (s *Store) ToggleStar(topic, identity string) (bool, error) {
	starred, err := s.IsStarred(topic, identity)
	if err != nil {
		return false, err
	}
	if starred {
		return false, s.Unstar(topic, identity)
	}
	return true, s.Star(topic, identity)
}

// IsStarred reports whether an identity is starred under a topic.
func (s *Store) IsStarred(topic, identity string) (bool, error) {
	var count int
	err := s.conn.QueryRow(
		"SELECT COUNT(*) FROM stars WHERE topic = ? AND identity = ?", topic, identity,
	).Scan(&count)
	return count > 0, err
}

// StarsFor returns a topic's starred identities in insertion order.
func (s *Store) StarsFor(topic string) ([]string, error) {
	rows, err := s.conn.Query("SELECT identity FROM stars WHERE topic = ? ORDER BY rowid", topic)
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

// StarsByTopic returns every topic's star set, including empty ones, so the
// map keys always equal the topic list.
func (s *Store) StarsByTopic() (map[string][]string, error) {
	topics, err := s.Topics()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(topics))
	for _, t := range topics {
		stars, err := s.StarsFor(t)
		if err != nil {
			return nil, err
		}
		if stars == nil {
			stars = []string{}
		}
		out[t] = stars
	}
	return out, nil
}
