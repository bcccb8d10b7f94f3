package station

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// ErrNotFound is returned when a station key is not present in the Registry.
var ErrNotFound = errors.New("station not found")

// Stream holds the backend stream settings of a station.
type Stream struct {
	Port int `yaml:"port"`
}

// Entry is the backend configuration of a single station.
type Entry struct {
	Key    string `yaml:"-"`
	Stream Stream `yaml:"stream"`
}

// Registry maps station keys to their backend configuration. It is built once
// and never modified, so it is safe for concurrent use.
type Registry struct {
	host    string
	port    int
	entries map[string]Entry
}

// NewRegistry validates the given entries and returns a Registry serving them
// from the backend at host:port.
func NewRegistry(host string, port int, entries map[string]Entry) (*Registry, error) {
	if host == "" {
		return nil, errors.New("stations host must not be empty")
	}
	if !validPort(port) {
		return nil, fmt.Errorf("invalid stations port %d", port)
	}
	if len(entries) == 0 {
		return nil, errors.New("no stations configured")
	}

	r := &Registry{
		host:    host,
		port:    port,
		entries: make(map[string]Entry, len(entries)),
	}

	for key, e := range entries {
		if key == "" {
			return nil, errors.New("station key must not be empty")
		}
		if !validPort(e.Stream.Port) {
			return nil, fmt.Errorf("station %q: invalid stream port %d", key, e.Stream.Port)
		}
		e.Key = key
		r.entries[key] = e
	}

	return r, nil
}

// LoadFile reads a stations file, a YAML mapping of station key to
// {stream: {port: N}}, and returns the resulting Registry.
func LoadFile(file, host string, port int) (*Registry, error) {
	filename, _ := filepath.Abs(file)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stations file")
	}

	entries := map[string]Entry{}
	if err := yaml.UnmarshalStrict(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "failed to parse stations file %s", filename)
	}

	return NewRegistry(host, port, entries)
}

// Resolve returns the configuration of the station with the given key.
func (r *Registry) Resolve(key string) (Entry, error) {
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, errors.Wrapf(ErrNotFound, "%q", key)
	}
	return e, nil
}

// Keys returns the sorted keys of all registered stations.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
