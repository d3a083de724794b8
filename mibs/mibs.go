// Package mibs holds compiled-in MIB module object tables.
//
// The engine never parses MIB text files; instead each supported module
// ships as a static object-name-to-OID table. The package answers three
// questions for the rest of the system:
//
//   - Have(module): is this module compiled in at all?
//   - Lookup(module, object): the OID for a named object, used to verify a
//     class's MIB requirements at initialization time
//   - Name(oid): reverse translation for debug tracing, resolving a full
//     instance OID to "object.instance" via longest-prefix match
//
// Reverse lookup uses a numeric trie mirroring the hierarchical structure of
// OIDs, so an instanced OID like .1.3.6.1.2.1.2.2.1.2.4 resolves to
// "ifDescr.4" without any per-instance entries.
package mibs

import (
	"strconv"
	"strings"
	"sync"
)

// Module is one compiled-in MIB module table.
type Module struct {
	Name    string
	Objects map[string]string // object name -> OID
}

// trieNode is a node in the reverse-lookup trie. Children are keyed by the
// numeric OID arc; name is set on nodes that terminate a registered object.
type trieNode struct {
	children map[int]*trieNode
	name     string
}

type table struct {
	mu      sync.RWMutex
	modules map[string]Module
	objects map[string]string // flattened object name -> OID
	root    *trieNode
}

var registry = &table{
	modules: make(map[string]Module),
	objects: make(map[string]string),
	root:    &trieNode{children: make(map[int]*trieNode)},
}

func init() {
	for _, m := range builtins {
		RegisterModule(m)
	}
}

// RegisterModule adds a module table to the registry. Registering a module
// twice replaces its previous table; object names collide last-in-wins
// across modules, matching the flat symbol space of SNMP object names.
func RegisterModule(m Module) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.modules[m.Name] = m
	for name, oid := range m.Objects {
		registry.objects[name] = oid
		registry.insert(oid, name)
	}
}

// Have reports whether a module table is compiled in.
func Have(module string) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	_, ok := registry.modules[module]
	return ok
}

// Lookup returns the OID of an object within a specific module.
func Lookup(module, object string) (string, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	m, ok := registry.modules[module]
	if !ok {
		return "", false
	}
	oid, ok := m.Objects[object]
	return oid, ok
}

// OID resolves an object name across all registered modules.
func OID(object string) (string, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	oid, ok := registry.objects[object]
	return oid, ok
}

// Name translates an OID to its symbolic form using longest-prefix match.
// A trailing instance is appended after a dot: "ifDescr.4". OIDs with no
// registered prefix are returned unchanged.
func Name(oid string) string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	arcs, ok := parseOID(oid)
	if !ok {
		return oid
	}

	node := registry.root
	best := ""
	bestDepth := 0
	for i, arc := range arcs {
		next, ok := node.children[arc]
		if !ok {
			break
		}
		node = next
		if node.name != "" {
			best = node.name
			bestDepth = i + 1
		}
	}
	if best == "" {
		return oid
	}
	if bestDepth == len(arcs) {
		return best
	}
	rest := make([]string, 0, len(arcs)-bestDepth)
	for _, arc := range arcs[bestDepth:] {
		rest = append(rest, strconv.Itoa(arc))
	}
	return best + "." + strings.Join(rest, ".")
}

// insert adds an OID/name pair to the trie. Caller holds the write lock.
func (t *table) insert(oid, name string) {
	arcs, ok := parseOID(oid)
	if !ok {
		return
	}
	node := t.root
	for _, arc := range arcs {
		child, ok := node.children[arc]
		if !ok {
			child = &trieNode{children: make(map[int]*trieNode)}
			node.children[arc] = child
		}
		node = child
	}
	node.name = name
}

// parseOID splits a dotted OID string into numeric arcs. A single leading
// dot is tolerated.
func parseOID(oid string) ([]int, bool) {
	s := strings.TrimPrefix(oid, ".")
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	arcs := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		arcs[i] = n
	}
	return arcs, true
}
