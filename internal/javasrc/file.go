// Package javasrc loads Java source trees into an introspect.Universe: it parses
// every file with tree-sitter, converts declarations into introspect types and
// links type names and annotation constants across files.
package javasrc

import (
	"strings"

	"restdoc/internal/introspect"
)

// File is one parsed compilation unit before linking.
type File struct {
	Path    string
	Package string
	Imports []Import
	Types   []*Type // top-level types

	pendingRefs    []pendingRef
	pendingMarkers []pendingMarker
}

// Import is an import declaration.
type Import struct {
	Path     string // a.b.C, or a.b for wildcard imports, or a.b.C.NAME for static imports
	Static   bool
	Wildcard bool
}

// Type is a declared type with the scope information needed for linking.
type Type struct {
	Decl      *introspect.TypeDecl
	Outer     *Type
	Nested    []*Type
	File      *File
	Constants map[string]Expr
}

// typeVars returns the type parameters visible in t's body.
func (t *Type) typeVars() map[string]bool {
	vars := map[string]bool{}
	for s := t; s != nil; s = s.Outer {
		for _, v := range s.Decl.TypeParams {
			vars[v] = true
		}
	}
	return vars
}

// ExprKind is the variant of a constant expression.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprRef
	ExprConcat
	ExprArray
)

// Expr is an annotation attribute value or a constant initializer.
type Expr struct {
	Kind  ExprKind
	Text  string // literal value, or a reference such as Constants.BASE_API
	Parts []Expr
}

type pendingRef struct {
	ref      *introspect.TypeRef
	scope    *Type
	extraVar []string // method type parameters
}

type pendingMarker struct {
	marker *introspect.Marker
	raw    map[string][]Expr
	scope  *Type
}

// qualify joins a package and a name.
func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// lastSegment returns the text after the last dot.
func lastSegment(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
