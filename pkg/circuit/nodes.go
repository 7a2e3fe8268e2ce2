package circuit

import "strings"

// NodeTable assigns integer ids to node names on first sight. Lookups are
// case-insensitive; "0", "gnd" and "ground" all resolve to 0.
type NodeTable struct {
	ids   map[string]int
	names []string
}

func NewNodeTable() *NodeTable {
	return &NodeTable{
		ids:   map[string]int{"0": 0, "gnd": 0, "ground": 0},
		names: []string{"0"},
	}
}

// Resolve returns the id of name, assigning the next free id if it is new.
func (t *NodeTable) Resolve(name string) int {
	key := strings.ToLower(name)
	if id, ok := t.ids[key]; ok {
		return id
	}

	id := len(t.names)
	t.ids[key] = id
	t.names = append(t.names, name)
	return id
}

func (t *NodeTable) Lookup(name string) (int, bool) {
	id, ok := t.ids[strings.ToLower(name)]
	return id, ok
}

// Count is the number of distinct nodes, ground included.
func (t *NodeTable) Count() int { return len(t.names) }

// Name returns the spelling a node was first seen with.
func (t *NodeTable) Name(id int) string {
	if id < 0 || id >= len(t.names) {
		return ""
	}
	return t.names[id]
}
