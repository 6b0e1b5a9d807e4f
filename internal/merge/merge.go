// Package merge attaches extracted documentation to a scanned tag library.
// Every lookup is exact: a tag or schema by qualified type name, an endpoint
// by signature key, a parameter by declared name, a property by field name.
// An endpoint whose method has no documentation falls back to its
// unannotated overrides. Tag and operation text set by markers is kept.
package merge

import (
	"strings"

	"restdoc/internal/javadoc"
	"restdoc/internal/model"
)

// Stats counts the elements that received documentation.
type Stats struct {
	Tags       int `json:"tags"`
	Endpoints  int `json:"endpoints"`
	Parameters int `json:"parameters"`
	Schemas    int `json:"schemas"`
	Properties int `json:"properties"`
}

// Apply documents lib in place. Documentation never erases a value: empty
// documentation leaves the current description untouched, and tag
// descriptions, summaries and operation descriptions are only filled when
// empty.
func Apply(lib *model.TagLibrary, docs map[string]*javadoc.ClassDocumentation) Stats {
	var st Stats
	if len(docs) == 0 {
		return st
	}

	for _, tag := range lib.Tags() {
		if desc := docs[tag.DeclaringType].Description(); desc != "" && tag.Description == "" {
			tag.Description = desc
			st.Tags++
		}
		for _, ep := range tag.Endpoints {
			documentEndpoint(ep, docs, &st)
		}
	}

	for _, entry := range lib.Registry.Entries() {
		documentSchema(entry, docs[entry.TypeName], docs, &st)
	}
	return st
}

func documentEndpoint(ep *model.Endpoint, docs map[string]*javadoc.ClassDocumentation, st *Stats) {
	doc, paramNames, ok := endpointDoc(ep, docs)
	if !ok {
		return
	}
	st.Endpoints++

	if s := doc.Summary(); s != "" && ep.Summary == "" {
		ep.Summary = s
	}
	if doc.Description != "" && ep.Description == "" {
		ep.Description = doc.Description
	}
	if doc.Return != "" {
		ep.ResponseDescription = doc.Return
	}
	if doc.Deprecated {
		ep.Deprecated = true
	}
	for _, p := range ep.Parameters {
		name := p.JavaName
		if n, ok := paramNames[name]; ok {
			name = n
		}
		if d := doc.Params[name]; d != "" {
			p.Description = d
			st.Parameters++
		}
	}
}

// endpointDoc finds the documentation of the endpoint's method, or of its
// most derived documented override. paramNames maps parameter names to the
// names the documentation uses.
func endpointDoc(ep *model.Endpoint, docs map[string]*javadoc.ClassDocumentation) (*javadoc.Javadoc, map[string]string, bool) {
	if class, ok := docs[ep.DeclaringType]; ok {
		if doc, ok := class.Methods[ep.Signature.Key()]; ok {
			return doc, nil, true
		}
	}
	for _, o := range ep.Overrides {
		class, ok := docs[o.DeclaringType]
		if !ok {
			continue
		}
		if doc, ok := class.Methods[o.Signature.Key()]; ok {
			return doc, o.ParamNames, true
		}
	}
	return nil, nil, false
}

func documentSchema(entry *model.Entry, class *javadoc.ClassDocumentation, docs map[string]*javadoc.ClassDocumentation, st *Stats) {
	s := entry.Schema
	if s == nil {
		return
	}
	if desc := class.Description(); desc != "" {
		s.Description = desc
		st.Schemas++
	}

	switch s.Kind {
	case model.KindEnum:
		if class == nil {
			return
		}
		var lines []string
		for _, c := range s.Enum {
			if d, ok := class.Fields[c]; ok && d.Description != "" {
				lines = append(lines, "* `"+c+"`: "+d.Summary())
			}
		}
		if len(lines) > 0 {
			s.Description = strings.TrimSpace(s.Description + "\n\n" + strings.Join(lines, "\n"))
		}
	case model.KindObject:
		for _, p := range s.Properties {
			owner, ok := docs[p.DeclaringType]
			if !ok {
				continue
			}
			if d, ok := owner.Fields[p.FieldName]; ok && d.Description != "" {
				p.Description = d.Description
				st.Properties++
			}
		}
	}
}
