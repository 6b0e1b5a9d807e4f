package javasrc

import (
	"strings"

	"restdoc/internal/introspect"
)

// maxEvalDepth bounds constant reference chains.
const maxEvalDepth = 16

// mediaTypes holds the media type constants of the Spring and JAX-RS
// MediaType classes, keyed by constant name without the _VALUE suffix.
var mediaTypes = map[string]string{
	"ALL":                          "*/*",
	"WILDCARD":                     "*/*",
	"APPLICATION_JSON":             "application/json",
	"APPLICATION_JSON_UTF8":        "application/json;charset=UTF-8",
	"APPLICATION_XML":              "application/xml",
	"APPLICATION_ATOM_XML":         "application/atom+xml",
	"APPLICATION_SVG_XML":          "application/svg+xml",
	"APPLICATION_XHTML_XML":        "application/xhtml+xml",
	"APPLICATION_OCTET_STREAM":     "application/octet-stream",
	"APPLICATION_FORM_URLENCODED":  "application/x-www-form-urlencoded",
	"APPLICATION_PDF":              "application/pdf",
	"APPLICATION_PROBLEM_JSON":     "application/problem+json",
	"APPLICATION_PROBLEM_XML":      "application/problem+xml",
	"APPLICATION_NDJSON":           "application/x-ndjson",
	"APPLICATION_CBOR":             "application/cbor",
	"APPLICATION_YAML":             "application/yaml",
	"APPLICATION_GRAPHQL_RESPONSE": "application/graphql-response+json",
	"MULTIPART_FORM_DATA":          "multipart/form-data",
	"MULTIPART_MIXED":              "multipart/mixed",
	"MULTIPART_RELATED":            "multipart/related",
	"TEXT_PLAIN":                   "text/plain",
	"TEXT_XML":                     "text/xml",
	"TEXT_HTML":                    "text/html",
	"TEXT_MARKDOWN":                "text/markdown",
	"TEXT_EVENT_STREAM":            "text/event-stream",
	"SERVER_SENT_EVENTS":           "text/event-stream",
	"IMAGE_PNG":                    "image/png",
	"IMAGE_JPEG":                   "image/jpeg",
	"IMAGE_GIF":                    "image/gif",
}

// wellKnownConstant resolves MediaType.X and MediaType.X_VALUE references that
// are declared outside the scanned sources.
func wellKnownConstant(ref string) (string, bool) {
	parts := strings.Split(ref, ".")
	if len(parts) < 2 || parts[len(parts)-2] != "MediaType" {
		return "", false
	}
	v, ok := mediaTypes[strings.TrimSuffix(parts[len(parts)-1], "_VALUE")]
	return v, ok
}

type linker struct {
	types map[string]*Type
}

// Link resolves type references and evaluates marker attributes across files
// and returns the resulting universe.
func Link(files []*File) *introspect.Universe {
	l := &linker{types: map[string]*Type{}}
	var walk func(t *Type)
	walk = func(t *Type) {
		l.types[t.Decl.QualifiedName] = t
		for _, n := range t.Nested {
			walk(n)
		}
	}
	for _, f := range files {
		for _, t := range f.Types {
			walk(t)
		}
	}

	for _, f := range files {
		for _, p := range f.pendingRefs {
			vars := p.scope.typeVars()
			for _, v := range p.extraVar {
				vars[v] = true
			}
			l.resolveRef(p.ref, p.scope, vars)
		}
	}
	for _, f := range files {
		for _, p := range f.pendingMarkers {
			p.marker.Attrs = make(map[string][]string, len(p.raw))
			for key, exprs := range p.raw {
				var values []string
				for _, e := range exprs {
					values = append(values, l.eval(e, p.scope, 0)...)
				}
				p.marker.Attrs[key] = values
			}
		}
		f.pendingRefs = nil
		f.pendingMarkers = nil
	}

	u := introspect.NewUniverse()
	for _, t := range l.types {
		u.Add(t.Decl)
	}
	return u
}

func (l *linker) resolveRef(ref *introspect.TypeRef, scope *Type, vars map[string]bool) {
	if ref.Primitive {
		return
	}
	if ref.Wildcard {
		if ref.Bound != nil {
			l.resolveRef(ref.Bound, scope, vars)
		}
		return
	}
	for i := range ref.Args {
		l.resolveRef(&ref.Args[i], scope, vars)
	}
	if vars[ref.Name] {
		ref.TypeVar = true
		return
	}
	ref.Qualified = l.resolveTypeName(ref.Name, scope)
}

// resolveTypeName returns the qualified name for a type name as written in
// scope. Names that cannot be resolved against the scanned sources come back
// as written for dotted names, and empty for simple names.
func (l *linker) resolveTypeName(name string, scope *Type) string {
	if !strings.Contains(name, ".") {
		return l.resolveSimple(name, scope)
	}
	if _, ok := l.types[name]; ok {
		return name
	}
	head, rest, _ := strings.Cut(name, ".")
	if q := l.resolveSimple(head, scope); q != "" {
		if _, ok := l.types[q+"."+rest]; ok {
			return q + "." + rest
		}
	}
	return name
}

func (l *linker) resolveSimple(name string, scope *Type) string {
	for s := scope; s != nil; s = s.Outer {
		if s.Decl.Name == name {
			return s.Decl.QualifiedName
		}
		for _, n := range s.Nested {
			if n.Decl.Name == name {
				return n.Decl.QualifiedName
			}
		}
	}

	f := scope.File
	for _, imp := range f.Imports {
		if !imp.Static && !imp.Wildcard && lastSegment(imp.Path) == name {
			return imp.Path
		}
	}
	if q := qualify(f.Package, name); l.types[q] != nil {
		return q
	}
	for _, imp := range f.Imports {
		if imp.Static || !imp.Wildcard {
			continue
		}
		if q := imp.Path + "." + name; l.types[q] != nil {
			return q
		}
	}
	return ""
}

func (l *linker) eval(e Expr, scope *Type, depth int) []string {
	if depth > maxEvalDepth {
		return nil
	}
	switch e.Kind {
	case ExprArray:
		var out []string
		for _, p := range e.Parts {
			out = append(out, l.eval(p, scope, depth+1)...)
		}
		return out
	case ExprConcat:
		var b strings.Builder
		for _, p := range e.Parts {
			if v := l.eval(p, scope, depth+1); len(v) > 0 {
				b.WriteString(v[0])
			}
		}
		return []string{b.String()}
	case ExprRef:
		if v, ok := l.constant(e.Text, scope, depth); ok {
			return v
		}
		if v, ok := wellKnownConstant(e.Text); ok {
			return []string{v}
		}
		return []string{lastSegment(e.Text)}
	default:
		return []string{e.Text}
	}
}

func (l *linker) constant(ref string, scope *Type, depth int) ([]string, bool) {
	if !strings.Contains(ref, ".") {
		for s := scope; s != nil; s = s.Outer {
			if v, ok := l.memberConstant(s, ref, depth, map[*Type]bool{}); ok {
				return v, true
			}
		}
		for _, imp := range scope.File.Imports {
			if !imp.Static {
				continue
			}
			owner := imp.Path
			if !imp.Wildcard {
				if lastSegment(imp.Path) != ref {
					continue
				}
				owner = strings.TrimSuffix(imp.Path, "."+ref)
			}
			if t := l.types[owner]; t != nil {
				if v, ok := l.memberConstant(t, ref, depth, map[*Type]bool{}); ok {
					return v, true
				}
			}
		}
		return nil, false
	}

	i := strings.LastIndex(ref, ".")
	owner, name := ref[:i], ref[i+1:]
	if t := l.types[l.resolveTypeName(owner, scope)]; t != nil {
		return l.memberConstant(t, name, depth, map[*Type]bool{})
	}
	return nil, false
}

// memberConstant looks a constant up in t and then in its supertypes.
func (l *linker) memberConstant(t *Type, name string, depth int, seen map[*Type]bool) ([]string, bool) {
	if seen[t] {
		return nil, false
	}
	seen[t] = true
	if e, ok := t.Constants[name]; ok {
		return l.eval(e, t, depth+1), true
	}
	for _, ref := range t.Decl.Supertypes() {
		if st := l.types[ref.Identity()]; st != nil {
			if v, ok := l.memberConstant(st, name, depth, seen); ok {
				return v, true
			}
		}
	}
	return nil, false
}
