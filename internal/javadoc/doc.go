// Package javadoc extracts documentation comments from Java sources and
// indexes them by declaring type, member name and method signature.
package javadoc

import (
	"regexp"
	"strings"
	"unicode"
)

// Javadoc is a parsed documentation comment.
type Javadoc struct {
	Description string            `json:"description,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Return      string            `json:"return,omitempty"`
	Deprecated  bool              `json:"deprecated,omitempty"`
	// DeprecatedText is the text following @deprecated.
	DeprecatedText string     `json:"deprecatedText,omitempty"`
	Tags           []BlockTag `json:"tags,omitempty"`
}

// BlockTag is a block tag other than @param, @return and @deprecated.
type BlockTag struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// ClassDocumentation holds the documentation of one type and its members.
// Fields also holds enum constants; Methods is keyed by signature key.
type ClassDocumentation struct {
	QualifiedName string              `json:"qualifiedName"`
	SimpleName    string              `json:"simpleName"`
	Javadoc       *Javadoc            `json:"javadoc,omitempty"`
	Fields        map[string]*Javadoc `json:"fields,omitempty"`
	Methods       map[string]*Javadoc `json:"methods,omitempty"`
}

func newClassDocumentation(qualifiedName, simpleName string) *ClassDocumentation {
	return &ClassDocumentation{
		QualifiedName: qualifiedName,
		SimpleName:    simpleName,
		Fields:        make(map[string]*Javadoc),
		Methods:       make(map[string]*Javadoc),
	}
}

// merge copies the entries of o into d. Entries of o win.
func (d *ClassDocumentation) merge(o *ClassDocumentation) {
	if o.Javadoc != nil {
		d.Javadoc = o.Javadoc
	}
	for k, v := range o.Fields {
		d.Fields[k] = v
	}
	for k, v := range o.Methods {
		d.Methods[k] = v
	}
}

// Description returns the class description, or "".
func (d *ClassDocumentation) Description() string {
	if d == nil || d.Javadoc == nil {
		return ""
	}
	return d.Javadoc.Description
}

var (
	inlineTag = regexp.MustCompile(`\{@(?:code|literal|link|linkplain|value)\s+([^{}]*)\}`)
	blockTag  = regexp.MustCompile(`^@([A-Za-z][\w-]*)\s*(.*)$`)
)

// Parse parses the text of a /** ... */ comment.
func Parse(comment string) *Javadoc {
	body := strings.TrimPrefix(strings.TrimSpace(comment), "/**")
	body = strings.TrimSuffix(body, "*/")

	doc := &Javadoc{}
	var description []string
	var current *BlockTag
	var tags []*BlockTag

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		}
		if m := blockTag.FindStringSubmatch(line); m != nil {
			current = &BlockTag{Name: m[1], Text: m[2]}
			tags = append(tags, current)
			continue
		}
		if current != nil {
			if line != "" {
				current.Text = strings.TrimSpace(current.Text + " " + line)
			}
			continue
		}
		description = append(description, line)
	}
	doc.Description = inlineText(strings.TrimSpace(strings.Join(description, "\n")))

	for _, tag := range tags {
		text := inlineText(tag.Text)
		switch tag.Name {
		case "param":
			name, rest := text, ""
			if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
				name, rest = text[:i], text[i:]
			}
			if name == "" {
				continue
			}
			if doc.Params == nil {
				doc.Params = make(map[string]string)
			}
			doc.Params[name] = strings.TrimSpace(rest)
		case "return":
			doc.Return = text
		case "deprecated":
			doc.Deprecated = true
			doc.DeprecatedText = text
		default:
			doc.Tags = append(doc.Tags, BlockTag{Name: tag.Name, Text: text})
		}
	}
	return doc
}

func inlineText(s string) string {
	return inlineTag.ReplaceAllString(s, "$1")
}

// Summary returns the first sentence of the description: the text up to and
// including the first period followed by white space, on one line.
func (j *Javadoc) Summary() string {
	if j == nil {
		return ""
	}
	text := strings.Join(strings.Fields(j.Description), " ")
	for i := 0; i < len(text); i++ {
		if text[i] == '.' && (i+1 == len(text) || unicode.IsSpace(rune(text[i+1]))) {
			return text[:i+1]
		}
	}
	return text
}
