package tagstore

// Tags is an in-memory snapshot of the tag state, used by filtering and
// rendering. Sets are maps keyed by paper identity.
type Tags struct {
	ReadLater map[string]bool
	Topics    []string
	Stars     map[string]map[string]bool
}

// StarredAnywhere reports whether an identity is starred under any topic.
func (t Tags) StarredAnywhere(identity string) bool {
	for _, set := range t.Stars {
		if set[identity] {
			return true
		}
	}
	return false
}

// StarredTopics returns the topics an identity is starred under, in topic
// list order.
func (t Tags) StarredTopics(identity string) []string {
	var out []string
	for _, topic := range t.Topics {
		if t.Stars[topic][identity] {
			out = append(out, topic)
		}
	}
	return out
}

// Snapshot reads the full tag state into memory.
func (s *Store) Snapshot() (Tags, error) {
	tags := Tags{
		ReadLater: make(map[string]bool),
		Stars:     make(map[string]map[string]bool),
	}

	readLater, err := s.ReadLater()
	if err != nil {
		return Tags{}, err
	}
	for _, id := range readLater {
		tags.ReadLater[id] = true
	}

	tags.Topics, err = s.Topics()
	if err != nil {
		return Tags{}, err
	}

	for _, topic := range tags.Topics {
		stars, err := s.StarsFor(topic)
		if err != nil {
			return Tags{}, err
		}
		set := make(map[string]bool, len(stars))
		for _, id := range stars {
			set[id] = true
		}
		tags.Stars[topic] = set
	}

	return tags, nil
}
