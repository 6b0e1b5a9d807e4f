//go:build cgo

package javadoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/introspect"
	"restdoc/internal/javasrc"
	"restdoc/internal/model"
)

// Extract parses every .java file below roots and returns the documentation
// of each documented type by qualified name. A root that is missing or not a
// directory is skipped with a warning; a file that fails to parse aborts the
// extraction with a SOURCE_PARSE_ERROR.
func Extract(ctx context.Context, roots []string, logger *slog.Logger) (map[string]*ClassDocumentation, error) {
	paths, err := javasrc.SourceFiles(roots, logger)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]*ClassDocumentation, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			docs, err := ExtractFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*ClassDocumentation)
	for _, docs := range results {
		for name, d := range docs {
			if existing, ok := out[name]; ok {
				existing.merge(d)
				continue
			}
			out[name] = d
		}
	}
	logger.Info("Extracted documentation", "files", len(paths), "types", len(out))
	return out, nil
}

// ExtractFile extracts the documentation of one file.
func ExtractFile(ctx context.Context, path string) (map[string]*ClassDocumentation, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return ExtractSource(ctx, path, source)
}

// ExtractSource extracts the documentation of Java source bytes.
func ExtractSource(ctx context.Context, path string, source []byte) (map[string]*ClassDocumentation, error) {
	tree, err := javasrc.NewParser().Parse(ctx, source)
	if err != nil {
		return nil, rderrors.NewSourceParseError(path, err)
	}
	defer tree.Close()

	x := &extractor{src: source, docs: make(map[string]*ClassDocumentation)}
	root := tree.RootNode()
	x.pkg = packageOf(root, source)
	x.walk(root)
	return x.docs, nil
}

type extractor struct {
	src  []byte
	pkg  string
	docs map[string]*ClassDocumentation
}

func (x *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(x.src)
}

func (x *extractor) walk(n *sitter.Node) {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if isComment(child.Type()) {
			if text := x.text(child); strings.HasPrefix(text, "/**") && text != "/**/" {
				if target := nextDeclaration(n, i); target != nil {
					x.record(text, target)
				}
			}
			continue
		}
		x.walk(child)
	}
}

func (x *extractor) record(comment string, target *sitter.Node) {
	switch typ := target.Type(); {
	case javasrc.IsTypeDeclaration(typ):
		x.class(target).Javadoc = Parse(comment)
	case typ == "field_declaration" || typ == "constant_declaration":
		owner := ownerOf(target)
		if owner == nil {
			return
		}
		for i := 0; i < int(target.NamedChildCount()); i++ {
			if d := target.NamedChild(i); d.Type() == "variable_declarator" {
				x.class(owner).Fields[x.text(d.ChildByFieldName("name"))] = Parse(comment)
				return
			}
		}
	case typ == "enum_constant":
		if owner := ownerOf(target); owner != nil {
			x.class(owner).Fields[x.text(target.ChildByFieldName("name"))] = Parse(comment)
		}
	case typ == "method_declaration":
		if owner := ownerOf(target); owner != nil {
			x.class(owner).Methods[x.signature(target).Key()] = Parse(comment)
		}
	}
}

// class returns the memoized entry of a type declaration.
func (x *extractor) class(decl *sitter.Node) *ClassDocumentation {
	var names []string
	for d := decl; d != nil; d = ownerOf(d) {
		names = append([]string{x.text(d.ChildByFieldName("name"))}, names...)
	}
	qualified := strings.Join(names, ".")
	if x.pkg != "" {
		qualified = x.pkg + "." + qualified
	}
	if d, ok := x.docs[qualified]; ok {
		return d
	}
	d := newClassDocumentation(qualified, names[len(names)-1])
	x.docs[qualified] = d
	return d
}

// signature builds the method signature from the same normalized type texts
// the source loader uses.
func (x *extractor) signature(method *sitter.Node) model.Signature {
	sig := model.Signature{
		ReturnType: javasrc.TypeText(method.ChildByFieldName("type"), x.src),
		Name:       x.text(method.ChildByFieldName("name")),
	}
	if params := method.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() == "formal_parameter" || p.Type() == "spread_parameter" {
				sig.ParamTypes = append(sig.ParamTypes, javasrc.ParamTypeText(p, x.src))
			}
		}
	}
	return sig
}

// nextDeclaration returns the first named sibling after index i that is not
// a comment.
func nextDeclaration(parent *sitter.Node, i int) *sitter.Node {
	for j := i + 1; j < int(parent.NamedChildCount()); j++ {
		if next := parent.NamedChild(j); !isComment(next.Type()) {
			return next
		}
	}
	return nil
}

// ownerOf returns the type declaration whose body directly holds n, or nil.
func ownerOf(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_body", "interface_body", "enum_body", "enum_body_declarations", "annotation_type_body":
			continue
		}
		if javasrc.IsTypeDeclaration(p.Type()) {
			return p
		}
		return nil
	}
	return nil
}

func isComment(nodeType string) bool {
	switch nodeType {
	case "block_comment", "line_comment", "comment":
		return true
	}
	return false
}

func packageOf(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() != "package_declaration" {
			continue
		}
		for j := 0; j < int(n.NamedChildCount()); j++ {
			if c := n.NamedChild(j); c.Type() == "scoped_identifier" || c.Type() == "identifier" {
				return introspect.NormalizeType(c.Content(source))
			}
		}
	}
	return ""
}
