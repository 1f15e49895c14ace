package codedom

import "sync"

// TypeState tracks whether a non-external TypeRef has been bound to a
// declaration.
type TypeState int

const (
	// TypePending is a forward reference waiting for the resolver.
	TypePending TypeState = iota
	// TypeResolved carries a definition.
	TypeResolved
	// TypeUnresolved is a reference the resolver could not bind.
	TypeUnresolved
)

func (s TypeState) String() string {
	switch s {
	case TypePending:
		return "Pending"
	case TypeResolved:
		return "Resolved"
	case TypeUnresolved:
		return "Unresolved"
	default:
		return "Unknown"
	}
}

// TypeRef is a use of a type. External references name primitives and
// runtime abstractions and never carry a definition; every other reference
// is bound to a declaration, either at creation or by the resolver.
type TypeRef struct {
	Name           string
	CollectionKind CollectionKind
	IsExternal     bool
	IsNullable     bool

	mu         sync.RWMutex
	definition Declaration
	state      TypeState
	owner      Element
}

// External returns a reference to a primitive or runtime type.
func External(name string) *TypeRef {
	return &TypeRef{Name: name, IsExternal: true, state: TypeResolved}
}

// Ref returns a reference bound to d.
func Ref(d Declaration) *TypeRef {
	return &TypeRef{Name: d.SymbolName(), definition: d, state: TypeResolved}
}

// Forward returns a reference to a declaration that may not exist yet.
func Forward(name string) *TypeRef {
	return &TypeRef{Name: name, state: TypePending}
}

// Definition returns the bound declaration, nil when external or not bound.
func (t *TypeRef) Definition() Declaration {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.definition
}

// State returns the resolution state.
func (t *TypeRef) State() TypeState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// NeedsResolution reports whether the resolver still has to bind t.
func (t *TypeRef) NeedsResolution() bool {
	if t == nil || t.IsExternal {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.definition == nil
}

// Resolve binds t to d.
func (t *TypeRef) Resolve(d Declaration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.definition = d
	t.state = TypeResolved
}

// MarkUnresolved records that no declaration could be found for t.
func (t *TypeRef) MarkUnresolved() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.definition = nil
	t.state = TypeUnresolved
}

// Owner returns the element holding the reference.
func (t *TypeRef) Owner() Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner
}

func (t *TypeRef) setOwner(e Element) {
	t.mu.Lock()
	t.owner = e
	t.mu.Unlock()
}

// Clone returns a copy of t bound to the same definition, without owner.
func (t *TypeRef) Clone() *TypeRef {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &TypeRef{
		Name:           t.Name,
		CollectionKind: t.CollectionKind,
		IsExternal:     t.IsExternal,
		IsNullable:     t.IsNullable,
		definition:     t.definition,
		state:          t.state,
	}
}
