package tagstore

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Dest names where a bare-array import lands: the read-later set when Topic
// is empty, otherwise the named topic's star set.
type Dest struct {
	Topic string
}

// Import reads an exported JSON document and merges it into the store.
// A bare array of identities is unioned into dest; a full payload object is
// merged wholesale and dest is ignored. Imports are additive: identities are
// unioned and existing tags are never removed. Malformed JSON or an
// unrecognized shape is an error and leaves the store unchanged.
func (s *Store) Import(data []byte, dest Dest) error {
	var identities []string
	if err := json.Unmarshal(data, &identities); err == nil {
		return s.importIdentities(identities, dest)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing import file: %w", err)
	}
	if _, ok := raw["readLater"]; !ok {
		if _, ok := raw["topics"]; !ok {
			if _, ok := raw["starsByTopic"]; !ok {
				return fmt.Errorf("unrecognized import shape: expected an identity array or a payload with readLater/topics/starsByTopic")
			}
		}
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing import payload: %w", err)
	}
	return s.Merge(payload)
}

func (s *Store) importIdentities(identities []string, dest Dest) error {
	if dest.Topic == "" {
		for _, id := range identities {
			if id == "" {
				continue
			}
			if err := s.AddReadLater(id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := s.ensureTopic(dest.Topic); err != nil {
		return err
	}
	for _, id := range identities {
		if id == "" {
			continue
		}
		if err := s.Star(dest.Topic, id); err != nil {
			return err
		}
	}
	return nil
}

// Merge unions a full payload into the store. Unknown topics are appended
// after the existing ones, preserving the current order; star sets and the
// read-later set are unioned per identity.
func (s *Store) Merge(payload Payload) error {
	for _, id := range payload.ReadLater {
		if id == "" {
			continue
		}
		if err := s.AddReadLater(id); err != nil {
			return err
		}
	}

	for _, topic := range payload.Topics {
		if topic == "" {
			continue
		}
		if err := s.ensureTopic(topic); err != nil {
			return err
		}
	}

	// Star-set keys outside the topic list still get a topic so the
	// topics-superset invariant holds after the merge.
	for _, topic := range sortedKeys(payload.StarsByTopic) {
		if topic == "" {
			continue
		}
		if err := s.ensureTopic(topic); err != nil {
			return err
		}
		for _, id := range payload.StarsByTopic[topic] {
			if id == "" {
				continue
			}
			if err := s.Star(topic, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Replace overwrites the entire tag state with the payload. Used by the tag
// sync endpoint, which exchanges complete snapshots.
func (s *Store) Replace(payload Payload) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM stars", "DELETE FROM topics", "DELETE FROM read_later",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, id := range payload.ReadLater {
		if id == "" {
			continue
		}
		if _, err := tx.Exec("INSERT OR IGNORE INTO read_later (identity) VALUES (?)", id); err != nil {
			return err
		}
	}
	for i, topic := range payload.Topics {
		if topic == "" {
			continue
		}
		if _, err := tx.Exec("INSERT OR IGNORE INTO topics (name, position) VALUES (?, ?)", topic, i+1); err != nil {
			return err
		}
		for _, id := range payload.StarsByTopic[topic] {
			if id == "" {
				continue
			}
			if _, err := tx.Exec("INSERT OR IGNORE INTO stars (topic, identity) VALUES (?, ?)", topic, id); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic merge order; topic list order itself comes from
	// payload.Topics, which is handled first.
	sort.Strings(keys)
	return keys
}
