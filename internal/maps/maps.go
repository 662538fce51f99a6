// Package maps holds the boot-time map-name table. Map ids are 1-based
// positions in an append-only YAML list; the mapping is bijective for the
// lifetime of the process.
package maps

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// GatSuffix is the client-side map file extension. The table stores bare
// names; the wire codec appends the suffix when serializing.
const GatSuffix = ".gat"

// Table resolves map names to numeric ids and back. Immutable after load,
// safe for concurrent readers.
type Table struct {
	names  []string
	byName map[string]uint32
}

// Load reads a YAML list of map names from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map names: %w", err)
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse map names: %w", err)
	}
	return New(names)
}

// New builds a table from an ordered name list. Names must be unique and
// non-empty; the suffix is stripped if the file carries it.
func New(names []string) (*Table, error) {
	t := &Table{
		names:  make([]string, 0, len(names)),
		byName: make(map[string]uint32, len(names)),
	}
	for i, name := range names {
		name = strings.TrimSuffix(name, GatSuffix)
		if name == "" {
			return nil, fmt.Errorf("empty map name at index %d", i)
		}
		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("duplicate map name %q", name)
		}
		t.names = append(t.names, name)
		t.byName[name] = uint32(i + 1)
	}
	return t, nil
}

// Name returns the bare map name for id, or false for an unknown id.
func (t *Table) Name(id uint32) (string, bool) {
	if id < 1 || int(id) > len(t.names) {
		return "", false
	}
	return t.names[id-1], true
}

// ID returns the id for a map name. A trailing ".gat" is accepted.
func (t *Table) ID(name string) (uint32, bool) {
	id, ok := t.byName[strings.TrimSuffix(name, GatSuffix)]
	return id, ok
}

// Len returns the number of known maps.
func (t *Table) Len() int {
	return len(t.names)
}

// IDs returns all map ids in order. Used by the map-server handoff.
func (t *Table) IDs() []uint32 {
	ids := make([]uint32, len(t.names))
	for i := range t.names {
		ids[i] = uint32(i + 1)
	}
	return ids
}
