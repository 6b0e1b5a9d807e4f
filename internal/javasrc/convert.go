//go:build cgo

package javasrc

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/introspect"
)

// ParseFile reads, parses and converts one Java file.
func ParseFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return ParseSource(ctx, path, source)
}

// ParseSource parses and converts Java source bytes.
func ParseSource(ctx context.Context, path string, source []byte) (*File, error) {
	tree, err := NewParser().Parse(ctx, source)
	if err != nil {
		return nil, rderrors.NewSourceParseError(path, err)
	}
	defer tree.Close()
	return convert(path, source, tree.RootNode()), nil
}

// IsTypeDeclaration reports whether a node type declares a type.
func IsTypeDeclaration(nodeType string) bool {
	switch nodeType {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

// TypeText returns the normalized source text of a type node.
func TypeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return introspect.NormalizeType(node.Content(source))
}

// ParamTypeText returns the normalized type text of a formal_parameter or
// spread_parameter node. Varargs end with "...".
func ParamTypeText(param *sitter.Node, source []byte) string {
	switch param.Type() {
	case "spread_parameter":
		return TypeText(spreadType(param), source) + "..."
	default:
		text := TypeText(param.ChildByFieldName("type"), source)
		if dims := param.ChildByFieldName("dimensions"); dims != nil {
			text += strings.Repeat("[]", strings.Count(dims.Content(source), "["))
		}
		return text
	}
}

func spreadType(param *sitter.Node) *sitter.Node {
	for i := 0; i < int(param.NamedChildCount()); i++ {
		child := param.NamedChild(i)
		switch child.Type() {
		case "modifiers", "variable_declarator":
			continue
		}
		return child
	}
	return nil
}

type converter struct {
	src  []byte
	file *File
}

func convert(path string, source []byte, root *sitter.Node) *File {
	c := &converter{src: source, file: &File{Path: path}}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch {
		case n.Type() == "package_declaration":
			c.file.Package = c.packageName(n)
		case n.Type() == "import_declaration":
			c.file.Imports = append(c.file.Imports, parseImport(n.Content(source)))
		case IsTypeDeclaration(n.Type()):
			c.file.Types = append(c.file.Types, c.typeDecl(n, nil))
		}
	}
	return c.file
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func (c *converter) packageName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return introspect.NormalizeType(c.text(child))
		}
	}
	return ""
}

func parseImport(text string) Import {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "import")
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	s = strings.TrimSpace(s)

	imp := Import{}
	if strings.HasPrefix(s, "static ") || strings.HasPrefix(s, "static\t") {
		imp.Static = true
		s = strings.TrimSpace(s[len("static"):])
	}
	s = strings.Join(strings.Fields(s), "")
	if strings.HasSuffix(s, ".*") {
		imp.Wildcard = true
		s = strings.TrimSuffix(s, ".*")
	}
	imp.Path = s
	return imp
}

func kindOf(nodeType string) introspect.TypeKind {
	switch nodeType {
	case "interface_declaration":
		return introspect.KindInterface
	case "enum_declaration":
		return introspect.KindEnum
	case "record_declaration":
		return introspect.KindRecord
	case "annotation_type_declaration":
		return introspect.KindAnnotation
	default:
		return introspect.KindClass
	}
}

func (c *converter) typeDecl(n *sitter.Node, outer *Type) *Type {
	name := c.text(n.ChildByFieldName("name"))
	qualified := qualify(c.file.Package, name)
	if outer != nil {
		qualified = outer.Decl.QualifiedName + "." + name
	}

	decl := &introspect.TypeDecl{
		Package:       c.file.Package,
		Name:          name,
		QualifiedName: qualified,
		Kind:          kindOf(n.Type()),
		File:          c.file.Path,
	}
	t := &Type{Decl: decl, Outer: outer, File: c.file, Constants: map[string]Expr{}}

	decl.Markers = c.markers(modifiersOf(n), t)
	decl.TypeParams = c.typeParams(n.ChildByFieldName("type_parameters"))

	if sc := n.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
		ref := c.typeRef(sc.NamedChild(int(sc.NamedChildCount()) - 1))
		decl.Superclass = &ref
		c.addRef(decl.Superclass, t, nil)
	}
	if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
		decl.Interfaces = append(decl.Interfaces, c.typeList(ifs)...)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "extends_interfaces" {
			decl.Interfaces = append(decl.Interfaces, c.typeList(child)...)
		}
	}
	for i := range decl.Interfaces {
		c.addRef(&decl.Interfaces[i], t, nil)
	}

	if n.Type() == "record_declaration" {
		c.recordComponents(n.ChildByFieldName("parameters"), t)
	}

	body := n.ChildByFieldName("body")
	if body != nil {
		if n.Type() == "enum_declaration" {
			c.enumBody(body, t)
		} else {
			c.classBody(body, t, decl.Kind == introspect.KindInterface || decl.Kind == introspect.KindAnnotation)
		}
	}
	return t
}

func (c *converter) typeList(n *sitter.Node) []introspect.TypeRef {
	var out []introspect.TypeRef
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "type_list" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			out = append(out, c.typeRef(child.NamedChild(j)))
		}
	}
	return out
}

func (c *converter) typeParams(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		tp := n.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		for j := 0; j < int(tp.NamedChildCount()); j++ {
			id := tp.NamedChild(j)
			if id.Type() == "type_identifier" || id.Type() == "identifier" {
				out = append(out, c.text(id))
				break
			}
		}
	}
	return out
}

func (c *converter) classBody(body *sitter.Node, t *Type, constantsOnly bool) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch {
		case child.Type() == "field_declaration":
			c.field(child, t, constantsOnly)
		case child.Type() == "constant_declaration":
			c.field(child, t, true)
		case child.Type() == "method_declaration":
			c.method(child, t)
		case child.Type() == "enum_body_declarations":
			c.classBody(child, t, false)
		case IsTypeDeclaration(child.Type()):
			t.Nested = append(t.Nested, c.typeDecl(child, t))
		}
	}
}

func (c *converter) enumBody(body *sitter.Node, t *Type) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "enum_constant":
			t.Decl.EnumConstants = append(t.Decl.EnumConstants, c.text(child.ChildByFieldName("name")))
		case "enum_body_declarations":
			c.classBody(child, t, false)
		}
	}
}

func (c *converter) recordComponents(params *sitter.Node, t *Type) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "formal_parameter" {
			continue
		}
		f := &introspect.FieldDecl{
			Name:    c.text(p.ChildByFieldName("name")),
			Type:    c.typeRef(p.ChildByFieldName("type")),
			Markers: c.markers(modifiersOf(p), t),
		}
		t.Decl.Fields = append(t.Decl.Fields, f)
		c.addRef(&f.Type, t, nil)
	}
}

func (c *converter) field(n *sitter.Node, t *Type, forceStatic bool) {
	mods := modifiersOf(n)
	static := forceStatic || hasKeyword(mods, "static")
	base := c.typeRef(n.ChildByFieldName("type"))
	markers := c.markers(mods, t)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := c.text(decl.ChildByFieldName("name"))
		typ := base
		if dims := decl.ChildByFieldName("dimensions"); dims != nil {
			for k := 0; k < strings.Count(c.text(dims), "["); k++ {
				typ = introspect.ArrayRef(typ)
			}
		}
		f := &introspect.FieldDecl{Name: name, Type: typ, Markers: markers, Static: static}
		t.Decl.Fields = append(t.Decl.Fields, f)
		c.addRef(&f.Type, t, nil)

		if static {
			if v := decl.ChildByFieldName("value"); v != nil {
				t.Constants[name] = c.expr(v)
			}
		}
	}
}

func (c *converter) method(n *sitter.Node, t *Type) {
	mods := modifiersOf(n)
	m := &introspect.MethodDecl{
		Name:       c.text(n.ChildByFieldName("name")),
		TypeParams: c.typeParams(n.ChildByFieldName("type_parameters")),
		Static:     hasKeyword(mods, "static"),
	}
	m.Markers = c.markers(mods, t)
	m.Return = c.typeRef(n.ChildByFieldName("type"))

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			switch p.Type() {
			case "formal_parameter":
				typ := c.typeRef(p.ChildByFieldName("type"))
				if dims := p.ChildByFieldName("dimensions"); dims != nil {
					for k := 0; k < strings.Count(c.text(dims), "["); k++ {
						typ = introspect.ArrayRef(typ)
					}
				}
				typ.Text = ParamTypeText(p, c.src)
				m.Params = append(m.Params, introspect.ParamDecl{
					Name:    c.text(p.ChildByFieldName("name")),
					Type:    typ,
					Markers: c.markers(modifiersOf(p), t),
				})
			case "spread_parameter":
				typ := introspect.ArrayRef(c.typeRef(spreadType(p)))
				typ.Text = ParamTypeText(p, c.src)
				name := ""
				for j := 0; j < int(p.NamedChildCount()); j++ {
					if d := p.NamedChild(j); d.Type() == "variable_declarator" {
						name = c.text(d.ChildByFieldName("name"))
					}
				}
				m.Params = append(m.Params, introspect.ParamDecl{
					Name:    name,
					Type:    typ,
					Markers: c.markers(modifiersOf(p), t),
				})
			}
		}
	}

	for i := range m.Params {
		c.addRef(&m.Params[i].Type, t, m.TypeParams)
	}
	c.addRef(&m.Return, t, m.TypeParams)
	t.Decl.Methods = append(t.Decl.Methods, m)
}

func (c *converter) addRef(ref *introspect.TypeRef, scope *Type, extraVars []string) {
	c.file.pendingRefs = append(c.file.pendingRefs, pendingRef{ref: ref, scope: scope, extraVar: extraVars})
}

func (c *converter) typeRef(n *sitter.Node) introspect.TypeRef {
	if n == nil {
		return introspect.TypeRef{Text: "Object", Name: "Object"}
	}
	text := introspect.NormalizeType(c.text(n))

	switch n.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		return introspect.PrimitiveRef(text)
	case "generic_type":
		ref := introspect.TypeRef{Text: text}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "type_identifier", "scoped_type_identifier":
				ref.Name = introspect.NormalizeType(c.text(child))
			case "type_arguments":
				for j := 0; j < int(child.NamedChildCount()); j++ {
					ref.Args = append(ref.Args, c.typeRef(child.NamedChild(j)))
				}
			}
		}
		return ref
	case "array_type":
		ref := c.typeRef(n.ChildByFieldName("element"))
		ref.Dims += strings.Count(c.text(n.ChildByFieldName("dimensions")), "[")
		ref.Text = text
		return ref
	case "wildcard":
		ref := introspect.TypeRef{Text: text, Name: "?", Wildcard: true}
		if strings.Contains(text, "extends") && n.NamedChildCount() > 0 {
			bound := c.typeRef(n.NamedChild(int(n.NamedChildCount()) - 1))
			ref.Bound = &bound
		}
		return ref
	case "annotated_type":
		if n.NamedChildCount() > 0 {
			return c.typeRef(n.NamedChild(int(n.NamedChildCount()) - 1))
		}
	}
	return introspect.TypeRef{Text: text, Name: text}
}

func modifiersOf(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "modifiers" {
			return child
		}
	}
	return nil
}

func hasKeyword(mods *sitter.Node, keyword string) bool {
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if child := mods.Child(i); child != nil && child.Type() == keyword {
			return true
		}
	}
	return false
}

func (c *converter) markers(mods *sitter.Node, scope *Type) introspect.Markers {
	if mods == nil {
		return nil
	}
	var out introspect.Markers
	var raws []map[string][]Expr
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		child := mods.NamedChild(i)
		switch child.Type() {
		case "marker_annotation":
			out = append(out, introspect.Marker{Name: lastSegment(c.text(child.ChildByFieldName("name")))})
			raws = append(raws, nil)
		case "annotation":
			out = append(out, introspect.Marker{Name: lastSegment(c.text(child.ChildByFieldName("name")))})
			raws = append(raws, c.annotationArgs(child.ChildByFieldName("arguments")))
		}
	}
	for i := range out {
		if len(raws[i]) == 0 {
			continue
		}
		c.file.pendingMarkers = append(c.file.pendingMarkers, pendingMarker{marker: &out[i], raw: raws[i], scope: scope})
	}
	return out
}

func (c *converter) annotationArgs(args *sitter.Node) map[string][]Expr {
	if args == nil {
		return nil
	}
	raw := map[string][]Expr{}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case "line_comment", "block_comment", "comment":
			continue
		case "element_value_pair":
			key := c.text(child.ChildByFieldName("key"))
			raw[key] = []Expr{c.expr(child.ChildByFieldName("value"))}
		default:
			raw["value"] = []Expr{c.expr(child)}
		}
	}
	return raw
}

func (c *converter) expr(n *sitter.Node) Expr {
	if n == nil {
		return Expr{Kind: ExprLiteral}
	}
	text := c.text(n)

	switch n.Type() {
	case "string_literal", "text_block":
		return Expr{Kind: ExprLiteral, Text: unquoteJava(text)}
	case "character_literal":
		return Expr{Kind: ExprLiteral, Text: strings.Trim(text, "'")}
	case "identifier", "field_access", "scoped_identifier":
		return Expr{Kind: ExprRef, Text: introspect.NormalizeType(text)}
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return c.expr(n.NamedChild(0))
		}
	case "binary_expression":
		if c.text(n.ChildByFieldName("operator")) == "+" {
			e := Expr{Kind: ExprConcat}
			for _, side := range []*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")} {
				part := c.expr(side)
				if part.Kind == ExprConcat {
					e.Parts = append(e.Parts, part.Parts...)
				} else {
					e.Parts = append(e.Parts, part)
				}
			}
			return e
		}
	case "element_value_array_initializer", "array_initializer":
		e := Expr{Kind: ExprArray}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "line_comment", "block_comment", "comment":
				continue
			}
			e.Parts = append(e.Parts, c.expr(child))
		}
		return e
	case "class_literal":
		return Expr{Kind: ExprLiteral, Text: strings.TrimSuffix(introspect.NormalizeType(text), ".class")}
	}
	return Expr{Kind: ExprLiteral, Text: text}
}

// unquoteJava returns the value of a Java string literal or text block.
func unquoteJava(lit string) string {
	if strings.HasPrefix(lit, `"""`) {
		body := strings.TrimSuffix(strings.TrimPrefix(lit, `"""`), `"""`)
		return strings.TrimPrefix(strings.TrimPrefix(body, "\r"), "\n")
	}
	if v, err := strconv.Unquote(lit); err == nil {
		return v
	}
	return strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
}
