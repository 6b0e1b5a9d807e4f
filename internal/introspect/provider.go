package introspect

import (
	"sort"
	"strings"
)

// Provider enumerates declared types and exposes their structure.
type Provider interface {
	// TypesUnder returns every type whose package is root or below root,
	// sorted by qualified name.
	TypesUnder(root string) []*TypeDecl
	// Lookup finds a declared type by qualified name.
	Lookup(qualifiedName string) (*TypeDecl, bool)
	MarkersOf(t *TypeDecl) Markers
	FieldsOf(t *TypeDecl) []*FieldDecl
	MethodsOf(t *TypeDecl) []*MethodDecl
	// SupertypesOf returns the declared superclass then interfaces that are
	// themselves known to the provider.
	SupertypesOf(t *TypeDecl) []*TypeDecl
}

// Universe is an in-memory Provider.
type Universe struct {
	types map[string]*TypeDecl
}

// NewUniverse creates a universe holding the given types.
func NewUniverse(types ...*TypeDecl) *Universe {
	u := &Universe{types: make(map[string]*TypeDecl)}
	for _, t := range types {
		u.Add(t)
	}
	return u
}

// Add registers a type, replacing any type with the same qualified name.
func (u *Universe) Add(t *TypeDecl) {
	if t.QualifiedName == "" {
		if t.Package != "" {
			t.QualifiedName = t.Package + "." + t.Name
		} else {
			t.QualifiedName = t.Name
		}
	}
	u.types[t.QualifiedName] = t
}

// Len returns the number of types.
func (u *Universe) Len() int {
	return len(u.types)
}

// All returns every type sorted by qualified name.
func (u *Universe) All() []*TypeDecl {
	out := make([]*TypeDecl, 0, len(u.types))
	for _, t := range u.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

func (u *Universe) TypesUnder(root string) []*TypeDecl {
	var out []*TypeDecl
	for _, t := range u.All() {
		if root == "" || t.Package == root || strings.HasPrefix(t.Package, root+".") {
			out = append(out, t)
		}
	}
	return out
}

func (u *Universe) Lookup(qualifiedName string) (*TypeDecl, bool) {
	t, ok := u.types[qualifiedName]
	return t, ok
}

func (u *Universe) MarkersOf(t *TypeDecl) Markers { return t.Markers }

func (u *Universe) FieldsOf(t *TypeDecl) []*FieldDecl { return t.Fields }

func (u *Universe) MethodsOf(t *TypeDecl) []*MethodDecl { return t.Methods }

func (u *Universe) SupertypesOf(t *TypeDecl) []*TypeDecl {
	var out []*TypeDecl
	for _, ref := range t.Supertypes() {
		if st, ok := u.types[ref.Identity()]; ok {
			out = append(out, st)
		}
	}
	return out
}

// Ancestors returns t followed by its known supertypes, breadth first, each
// type once.
func Ancestors(p Provider, t *TypeDecl) []*TypeDecl {
	seen := map[string]bool{t.QualifiedName: true}
	out := []*TypeDecl{t}
	for i := 0; i < len(out); i++ {
		for _, st := range p.SupertypesOf(out[i]) {
			if seen[st.QualifiedName] {
				continue
			}
			seen[st.QualifiedName] = true
			out = append(out, st)
		}
	}
	return out
}

// AncestorBindings returns, for t and each known ancestor, the bindings of the
// ancestor's type parameters as seen from t. Arguments are composed along the
// chain: in Items extends Crud<Item>, Crud<T> extends Base<List<T>>, Base's
// parameter is bound to List<Item>.
func AncestorBindings(p Provider, t *TypeDecl) map[string]Bindings {
	out := map[string]Bindings{t.QualifiedName: nil}
	queue := []*TypeDecl{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		env := out[cur.QualifiedName]
		for _, ref := range cur.Supertypes() {
			st, ok := p.Lookup(ref.Identity())
			if !ok {
				continue
			}
			if _, done := out[st.QualifiedName]; done {
				continue
			}
			out[st.QualifiedName] = Bind(st.TypeParams, env.SubstituteAll(ref.Args))
			queue = append(queue, st)
		}
	}
	return out
}

// HasMarker reports whether t or one of its ancestors carries one of names.
func HasMarker(p Provider, t *TypeDecl, names []string) bool {
	for _, a := range Ancestors(p, t) {
		if p.MarkersOf(a).HasAny(names...) {
			return true
		}
	}
	return false
}

// Ref builds a reference to a named type with optional type arguments. The
// text uses the simple names, as a source file with imports would.
func Ref(qualified string, args ...TypeRef) TypeRef {
	r := TypeRef{Name: simple(qualified), Qualified: qualified, Args: args}
	r.Text = r.Name
	if len(args) > 0 {
		texts := make([]string, len(args))
		for i, a := range args {
			texts[i] = a.Text
		}
		r.Text += "<" + strings.Join(texts, ",") + ">"
	}
	return r
}

// PrimitiveRef builds a reference to a primitive type such as int or void.
func PrimitiveRef(name string) TypeRef {
	return TypeRef{Text: name, Name: name, Primitive: true}
}

// ArrayRef builds an array of elem.
func ArrayRef(elem TypeRef) TypeRef {
	r := elem
	r.Dims++
	r.Text = elem.Text + "[]"
	return r
}

// TypeVarRef builds a reference to a type variable.
func TypeVarRef(name string) TypeRef {
	return TypeRef{Text: name, Name: name, TypeVar: true}
}

func simple(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// NormalizeType collapses whitespace in a type's source text so that the same
// written type always yields the same string.
func NormalizeType(text string) string {
	fields := strings.Fields(text)
	joined := strings.Join(fields, " ")
	var b strings.Builder
	b.Grow(len(joined))
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if c == ' ' {
			prev := joined[i-1]
			next := joined[i+1]
			if isTight(prev) || isTight(next) {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isTight(c byte) bool {
	switch c {
	case '<', '>', ',', '[', ']', '.', '&':
		return true
	}
	return false
}
