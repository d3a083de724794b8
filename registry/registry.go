// Package registry holds per-class attribute metadata and performs layered
// class composition.
//
// A device class is defined by three symbolic tables (scalar attributes,
// table-column attributes and value transforms) plus the MIB modules the
// class requires. A class lists its parent classes; resolving a class walks
// the ancestry most-general-first and unions each tier's tables into the
// result, with the more specific tier winning on name collision.
//
// Resolution is memoized: the merged metadata for a class identity is
// computed at most once per process, as is a fatal initialization failure,
// so a class whose MIB requirements cannot be satisfied fails fast on every
// subsequent use without re-probing.
package registry

import (
	"fmt"
	"sync"

	"github.com/geekxflood/snmpinfo/mibs"
	"github.com/geekxflood/snmpinfo/munge"
)

// Kind distinguishes singleton scalar attributes from table columns.
type Kind int

const (
	// KindScalar is a singleton value addressed with a fixed instance
	// suffix.
	KindScalar Kind = iota

	// KindTable is a column repeated once per row, addressed by a shared
	// leaf OID plus a varying instance-id.
	KindTable
)

// Attr is one resolved attribute descriptor. Immutable after composition.
type Attr struct {
	Name string
	OID  string
	Kind Kind
}

// Def declares a device class before composition.
type Def struct {
	// Class is the identifier other definitions and the classifier refer
	// to.
	Class string

	// Parents lists parent classes, most general first. Ancestors are
	// merged before this definition's own tables so the child wins every
	// name collision.
	Parents []string

	// Scalars maps symbolic attribute names to OID strings.
	Scalars map[string]string

	// Tables maps symbolic attribute names to table-column leaf OIDs.
	Tables map[string]string

	// Munges maps attribute names to their display transforms. Absence
	// means the identity transform.
	Munges map[string]munge.Func

	// MIBs maps required module names to the probe object verified at
	// class initialization.
	MIBs map[string]string
}

// Resolved is the merged, immutable metadata set for one class.
type Resolved struct {
	Class   string
	Scalars map[string]Attr
	Tables  map[string]Attr
	Munges  map[string]munge.Func
}

// Munge returns the transform for an attribute, falling back to the
// identity transform.
func (r *Resolved) Munge(attr string) munge.Func {
	if fn, ok := r.Munges[attr]; ok {
		return fn
	}
	return munge.Identity
}

// ClassInitError is a fatal class-initialization failure: a required MIB
// module is not compiled in, or its probe object is missing. It gates the
// class, not the instance, and is raised on every resolution attempt after
// the first.
type ClassInitError struct {
	Class  string
	Module string
	Probe  string
	Reason string
}

func (e *ClassInitError) Error() string {
	return fmt.Sprintf("registry: class %q initialization failed: module %q: %s",
		e.Class, e.Module, e.Reason)
}

// Registry is a set of class definitions with memoized resolution.
type Registry struct {
	mu       sync.Mutex
	defs     map[string]*Def
	resolved map[string]*Resolved
	failed   map[string]*ClassInitError
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		defs:     make(map[string]*Def),
		resolved: make(map[string]*Resolved),
		failed:   make(map[string]*ClassInitError),
	}
}

// Default is the process-wide registry the shipped device profiles register
// into and the device layer resolves against unless told otherwise.
var Default = New()

// Define adds a class definition. Redefining a class that has already been
// resolved is rejected; the merged registry for a class identity is
// immutable once computed.
func (r *Registry) Define(def Def) error {
	if def.Class == "" {
		return fmt.Errorf("registry: class name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, done := r.resolved[def.Class]; done {
		return fmt.Errorf("registry: class %q already resolved, cannot redefine", def.Class)
	}
	d := def
	r.defs[def.Class] = &d
	return nil
}

// Classes returns the names of all defined classes.
func (r *Registry) Classes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Resolve composes and returns the merged metadata for a class. The result
// is computed once and shared; a *ClassInitError is equally sticky.
func (r *Registry) Resolve(class string) (*Resolved, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.resolved[class]; ok {
		return res, nil
	}
	if fail, ok := r.failed[class]; ok {
		return nil, fail
	}

	order, err := r.ancestry(class, nil)
	if err != nil {
		return nil, err
	}

	res := &Resolved{
		Class:   class,
		Scalars: make(map[string]Attr),
		Tables:  make(map[string]Attr),
		Munges:  make(map[string]munge.Func),
	}
	requirements := make(map[string]string)

	for _, tier := range order {
		def := r.defs[tier]
		for name, oid := range def.Scalars {
			delete(res.Tables, name)
			res.Scalars[name] = Attr{Name: name, OID: oid, Kind: KindScalar}
		}
		for name, oid := range def.Tables {
			delete(res.Scalars, name)
			res.Tables[name] = Attr{Name: name, OID: oid, Kind: KindTable}
		}
		for name, fn := range def.Munges {
			res.Munges[name] = fn
		}
		for module, probe := range def.MIBs {
			requirements[module] = probe
		}
	}

	for module, probe := range requirements {
		if fail := verifyMIB(class, module, probe); fail != nil {
			r.failed[class] = fail
			return nil, fail
		}
	}

	r.resolved[class] = res
	return res, nil
}

// ancestry returns the composition order for a class: every ancestor before
// its descendants, duplicates removed, the class itself last.
func (r *Registry) ancestry(class string, trail []string) ([]string, error) {
	def, ok := r.defs[class]
	if !ok {
		return nil, fmt.Errorf("registry: unknown class %q", class)
	}
	for _, seen := range trail {
		if seen == class {
			return nil, fmt.Errorf("registry: class %q has a cyclic ancestry", class)
		}
	}

	var order []string
	added := make(map[string]bool)
	for _, parent := range def.Parents {
		chain, err := r.ancestry(parent, append(trail, class))
		if err != nil {
			return nil, err
		}
		for _, tier := range chain {
			if !added[tier] {
				added[tier] = true
				order = append(order, tier)
			}
		}
	}
	if !added[class] {
		order = append(order, class)
	}
	return order, nil
}

// verifyMIB checks one MIB requirement: the module table must be compiled
// in and its probe object present.
func verifyMIB(class, module, probe string) *ClassInitError {
	if !mibs.Have(module) {
		return &ClassInitError{
			Class:  class,
			Module: module,
			Probe:  probe,
			Reason: "module not compiled in",
		}
	}
	if _, ok := mibs.Lookup(module, probe); !ok {
		return &ClassInitError{
			Class:  class,
			Module: module,
			Probe:  probe,
			Reason: fmt.Sprintf("probe object %q not found after load", probe),
		}
	}
	return nil
}

// Define adds a class definition to the default registry.
func Define(def Def) error { return Default.Define(def) }

// Resolve resolves a class against the default registry.
func Resolve(class string) (*Resolved, error) { return Default.Resolve(class) }
