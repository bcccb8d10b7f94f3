package shoutcast

import "strings"

// Metadata holds the fields of an ICY metadata block.
type Metadata struct {
	// Title of the playing track, usually "Artist - Title".
	StreamTitle string

	StreamURL string
}

// NewMetadata parses a block of the form StreamTitle='...';StreamUrl='...';
// Unknown keys are ignored.
func NewMetadata(b []byte) *Metadata {
	m := &Metadata{}

	s := strings.TrimRight(string(b), "\x00")
	for _, field := range strings.Split(s, "';") {
		key, value, ok := strings.Cut(field, "='")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "StreamTitle":
			m.StreamTitle = value
		case "StreamUrl":
			m.StreamURL = value
		}
	}

	return m
}

// Equals reports whether both blocks carry the same values.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return *m == *other
}
