package tagstore

import (
	"encoding/json"
	"fmt"
)

// Payload is the combined export/sync document.
type Payload struct {
	ReadLater    []string            `json:"readLater"`
	Topics       []string            `json:"topics"`
	StarsByTopic map[string][]string `json:"starsByTopic"`
}

// ExportReadLater serializes the read-later set as a bare JSON array.
func (s *Store) ExportReadLater() ([]byte, error) {
	identities, err := s.ReadLater()
	if err != nil {
		return nil, err
	}
	if identities == nil {
		identities = []string{}
	}
	return json.MarshalIndent(identities, "", "  ")
}

// ExportTopic serializes one topic's star set as a bare JSON array.
func (s *Store) ExportTopic(name string) ([]byte, error) {
	exists, err := s.HasTopic(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("topic %q not found", name)
	}
	identities, err := s.StarsFor(name)
	if err != nil {
		return nil, err
	}
	if identities == nil {
		identities = []string{}
	}
	return json.MarshalIndent(identities, "", "  ")
}

// ExportAll builds the full combined payload.
func (s *Store) ExportAll() (Payload, error) {
	readLater, err := s.ReadLater()
	if err != nil {
		return Payload{}, err
	}
	if readLater == nil {
		readLater = []string{}
	}
	topics, err := s.Topics()
	if err != nil {
		return Payload{}, err
	}
	if topics == nil {
		topics = []string{}
	}
	stars, err := s.StarsByTopic()
	if err != nil {
		return Payload{}, err
	}
	return Payload{ReadLater: readLater, Topics: topics, StarsByTopic: stars}, nil
}

// ExportAllJSON serializes the full combined payload.
func (s *Store) ExportAllJSON() ([]byte, error) {
	payload, err := s.ExportAll()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(payload, "", "  ")
}
