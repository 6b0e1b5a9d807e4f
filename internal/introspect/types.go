// Package introspect describes declared types, their members and their markers
// (annotations) independently of how they were discovered.
package introspect

import "strings"

// TypeKind is the kind of a declared type.
type TypeKind string

const (
	KindClass      TypeKind = "class"
	KindInterface  TypeKind = "interface"
	KindEnum       TypeKind = "enum"
	KindRecord     TypeKind = "record"
	KindAnnotation TypeKind = "annotation"
)

// Marker is a declarative metadata tag attached to a type, method, field or
// parameter. The unnamed attribute is stored under "value".
type Marker struct {
	Name  string              `json:"name"`
	Attrs map[string][]string `json:"attrs,omitempty"`
}

// Values returns every value of an attribute.
func (m Marker) Values(key string) []string {
	return m.Attrs[key]
}

// Value returns the first value of an attribute.
func (m Marker) Value(key string) (string, bool) {
	v := m.Attrs[key]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// FirstOf returns the values of the first present attribute among keys.
func (m Marker) FirstOf(keys ...string) []string {
	for _, k := range keys {
		if v, ok := m.Attrs[k]; ok && len(v) > 0 {
			return v
		}
	}
	return nil
}

// Markers is an ordered list of markers.
type Markers []Marker

// Find returns the first marker with the given name.
func (ms Markers) Find(name string) (Marker, bool) {
	for _, m := range ms {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}

// Has reports whether a marker with the given name is present.
func (ms Markers) Has(name string) bool {
	_, ok := ms.Find(name)
	return ok
}

// HasAny reports whether any of names is present.
func (ms Markers) HasAny(names ...string) bool {
	for _, n := range names {
		if ms.Has(n) {
			return true
		}
	}
	return false
}

// TypeRef is a use of a type: a field type, a parameter type, a return type or
// a supertype.
type TypeRef struct {
	Text      string    `json:"text"`                // normalized source text, e.g. List<Item>
	Name      string    `json:"name"`                // base name as written, e.g. List or java.util.List
	Qualified string    `json:"qualified,omitempty"` // resolved qualified base name, when known
	Args      []TypeRef `json:"args,omitempty"`
	Dims      int       `json:"dims,omitempty"`
	Wildcard  bool      `json:"wildcard,omitempty"`
	Bound     *TypeRef  `json:"bound,omitempty"` // ? extends Bound
	Primitive bool      `json:"primitive,omitempty"`
	TypeVar   bool      `json:"typeVar,omitempty"`
}

// SimpleName returns the last segment of the base name.
func (r TypeRef) SimpleName() string {
	if i := strings.LastIndex(r.Name, "."); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// Identity returns the qualified base name when resolved, else the name as written.
func (r TypeRef) Identity() string {
	if r.Qualified != "" {
		return r.Qualified
	}
	return r.Name
}

// IsVoid reports whether the reference is void or java.lang.Void.
func (r TypeRef) IsVoid() bool {
	return r.Dims == 0 && (r.Name == "void" || r.SimpleName() == "Void")
}

// Elem returns the element type of an array reference.
func (r TypeRef) Elem() TypeRef {
	if r.Dims == 0 {
		return r
	}
	e := r
	e.Dims--
	e.Text = strings.TrimSuffix(r.Text, "[]")
	return e
}

// FieldDecl is a declared field.
type FieldDecl struct {
	Name    string  `json:"name"`
	Type    TypeRef `json:"type"`
	Markers Markers `json:"markers,omitempty"`
	Static  bool    `json:"static,omitempty"`
}

// ParamDecl is a declared method parameter.
type ParamDecl struct {
	Name    string  `json:"name"`
	Type    TypeRef `json:"type"`
	Markers Markers `json:"markers,omitempty"`
}

// MethodDecl is a declared method.
type MethodDecl struct {
	Name       string      `json:"name"`
	Return     TypeRef     `json:"return"`
	Params     []ParamDecl `json:"params,omitempty"`
	Markers    Markers     `json:"markers,omitempty"`
	TypeParams []string    `json:"typeParams,omitempty"`
	Static     bool        `json:"static,omitempty"`
}

// ParamTypes returns the normalized type text of each parameter, in order.
func (m *MethodDecl) ParamTypes() []string {
	out := make([]string, len(m.Params))
	for i, p := range m.Params {
		out[i] = p.Type.Text
	}
	return out
}

// ParamTypesIn returns the parameter type texts with the class bindings b
// applied. The method's own type parameters shadow bound class variables.
func (m *MethodDecl) ParamTypesIn(b Bindings) []string {
	b = b.Without(m.TypeParams)
	out := make([]string, len(m.Params))
	for i, p := range m.Params {
		out[i] = b.Substitute(p.Type).Text
	}
	return out
}

// SameSignature reports whether m, declared in a type seen with bindings mb,
// and o, declared in a type seen with bindings ob, have the same name and
// parameter types. In Items extends Crud<Item>, Item create(Item) overrides
// Crud's T create(T) once T is bound to Item.
func (m *MethodDecl) SameSignature(o *MethodDecl, mb, ob Bindings) bool {
	if m.Name != o.Name || len(m.Params) != len(o.Params) {
		return false
	}
	mt, ot := m.ParamTypesIn(mb), o.ParamTypesIn(ob)
	for i := range mt {
		if mt[i] != ot[i] {
			return false
		}
	}
	return true
}

// TypeDecl is a declared type.
type TypeDecl struct {
	Package       string        `json:"package"`
	Name          string        `json:"name"`          // simple name
	QualifiedName string        `json:"qualifiedName"` // package.Outer.Inner
	Kind          TypeKind      `json:"kind"`
	Markers       Markers       `json:"markers,omitempty"`
	TypeParams    []string      `json:"typeParams,omitempty"`
	Superclass    *TypeRef      `json:"superclass,omitempty"`
	Interfaces    []TypeRef     `json:"interfaces,omitempty"`
	Fields        []*FieldDecl  `json:"fields,omitempty"`
	Methods       []*MethodDecl `json:"methods,omitempty"`
	EnumConstants []string      `json:"enumConstants,omitempty"`
	File          string        `json:"file,omitempty"`
}

// Supertypes returns the superclass followed by the interfaces.
func (t *TypeDecl) Supertypes() []TypeRef {
	var out []TypeRef
	if t.Superclass != nil {
		out = append(out, *t.Superclass)
	}
	return append(out, t.Interfaces...)
}

// Bindings maps type variable names to the type arguments bound to them.
type Bindings map[string]TypeRef

// Bind pairs type parameters with type arguments. Parameters without an
// argument stay unbound.
func Bind(params []string, args []TypeRef) Bindings {
	if len(params) == 0 || len(args) == 0 {
		return nil
	}
	b := make(Bindings, len(params))
	for i, p := range params {
		if i < len(args) {
			b[p] = args[i]
		}
	}
	return b
}

// Without returns b minus the given names, used when a method declares type
// parameters shadowing the class ones.
func (b Bindings) Without(names []string) Bindings {
	if len(b) == 0 || len(names) == 0 {
		return b
	}
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

// Substitute replaces the bound type variables in r, rebuilding the text of
// every reference it changes. Unbound variables are kept.
func (b Bindings) Substitute(r TypeRef) TypeRef {
	if len(b) == 0 {
		return r
	}
	switch {
	case r.TypeVar:
		v, ok := b[r.Name]
		if !ok {
			return r
		}
		v.Dims += r.Dims
		v.Text += dimsSuffix(r)
		return v
	case r.Wildcard:
		if r.Bound == nil {
			return r
		}
		bound := b.Substitute(*r.Bound)
		if bound.Text == r.Bound.Text {
			return r
		}
		r.Bound = &bound
		r.Text = "? extends " + bound.Text
		return r
	}
	if len(r.Args) == 0 {
		return r
	}
	args := make([]TypeRef, len(r.Args))
	texts := make([]string, len(r.Args))
	changed := false
	for i, a := range r.Args {
		args[i] = b.Substitute(a)
		texts[i] = args[i].Text
		changed = changed || args[i].Text != a.Text
	}
	if !changed {
		return r
	}
	r.Args = args
	r.Text = r.Name + "<" + strings.Join(texts, ",") + ">" + dimsSuffix(r)
	return r
}

// SubstituteAll applies Substitute to each reference.
func (b Bindings) SubstituteAll(refs []TypeRef) []TypeRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]TypeRef, len(refs))
	for i, r := range refs {
		out[i] = b.Substitute(r)
	}
	return out
}

// dimsSuffix is the array suffix of r's text; varargs keep their "...".
func dimsSuffix(r TypeRef) string {
	if r.Dims > 0 && strings.HasSuffix(r.Text, "...") {
		return strings.Repeat("[]", r.Dims-1) + "..."
	}
	return strings.Repeat("[]", r.Dims)
}
