//go:build cgo

package javasrc

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser wraps a tree-sitter parser configured for Java. A Parser is not safe
// for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Java parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source and returns the syntax tree. A tree containing error or
// missing nodes is rejected: partially parsed files would silently lose
// declarations.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPoint()
			return nil, fmt.Errorf("syntax error at line %d, column %d", pos.Row+1, pos.Column+1)
		}
		return nil, fmt.Errorf("syntax error")
	}
	return tree, nil
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if bad := firstErrorNode(child); bad != nil {
			return bad
		}
	}
	return nil
}

// IsAvailable reports whether Java parsing is available in this build.
func IsAvailable() bool {
	return true
}
