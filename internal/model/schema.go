package model

import (
	"sort"
	"strconv"
)

// Kind is the variant of a Schema node.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindBinary    Kind = "binary"
	KindArray     Kind = "array"
	KindMap       Kind = "map"
	KindObject    Kind = "object"
	KindRef       Kind = "ref"
	KindEnum      Kind = "enum"
)

// Schema is a node of the type graph. Composite types never embed each other:
// they are registered once in the Registry and referenced by name.
type Schema struct {
	Kind        Kind
	Type        string // primitive type: integer, number, boolean, string
	Format      string
	Items       *Schema     // KindArray
	Values      *Schema     // KindMap
	Ref         string      // KindRef: registered schema name
	Properties  []*Property // KindObject
	Enum        []string    // KindEnum, declaration order
	Opaque      bool        // KindObject standing for a type that could not be resolved
	Description string
}

// Primitive returns a primitive schema.
func Primitive(typ, format string) *Schema {
	return &Schema{Kind: KindPrimitive, Type: typ, Format: format}
}

// Binary returns a binary content schema.
func Binary() *Schema {
	return &Schema{Kind: KindBinary, Type: "string", Format: "binary"}
}

// ArrayOf returns an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Kind: KindArray, Items: items}
}

// MapOf returns a string-keyed map schema.
func MapOf(values *Schema) *Schema {
	return &Schema{Kind: KindMap, Values: values}
}

// RefTo returns a reference to a registered schema.
func RefTo(name string) *Schema {
	return &Schema{Kind: KindRef, Ref: name}
}

// OpaqueObject returns the placeholder used for unresolvable types.
func OpaqueObject() *Schema {
	return &Schema{Kind: KindObject, Opaque: true}
}

// Property is one field of an object schema.
type Property struct {
	Name          string // serialized name
	FieldName     string // declared field name, used for documentation lookup
	DeclaringType string // qualified name of the type declaring the field
	Required      bool
	Schema        *Schema
	MinLength     *int
	MaxLength     *int
	UniqueItems   bool
	Description   string
}

// Entry is one named schema of the registry.
type Entry struct {
	Identity string // canonical type identity
	Name     string // component name
	TypeName string // qualified name of the declared type, without type arguments
	Schema   *Schema
}

// Registry maps canonical type identities to named schemas. An identity is
// registered at most once.
type Registry struct {
	byIdentity map[string]*Entry
	byName     map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]*Entry),
		byName:     make(map[string]*Entry),
	}
}

// Reserve returns the entry for identity, creating a placeholder named after
// baseName when absent. created reports whether the entry is new. A baseName
// already used by another identity gets the first free numeric suffix.
func (r *Registry) Reserve(identity, baseName, typeName string) (entry *Entry, created bool) {
	if e, ok := r.byIdentity[identity]; ok {
		return e, false
	}
	name := baseName
	for i := 1; ; i++ {
		if _, taken := r.byName[name]; !taken {
			break
		}
		name = baseName + "_" + strconv.Itoa(i)
	}
	e := &Entry{Identity: identity, Name: name, TypeName: typeName}
	r.byIdentity[identity] = e
	r.byName[name] = e
	return e, true
}

// Lookup returns the entry registered for identity.
func (r *Registry) Lookup(identity string) (*Entry, bool) {
	e, ok := r.byIdentity[identity]
	return e, ok
}

// ByName returns the entry registered under a component name.
func (r *Registry) ByName(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	return len(r.byIdentity)
}

// Entries returns every entry sorted by name.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
