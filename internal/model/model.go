// Package model holds the canonical API document model produced by a scan:
// tags, endpoints, parameters and the named schema registry.
package model

import "strings"

// Verb is an HTTP method.
type Verb string

const (
	GET     Verb = "GET"
	POST    Verb = "POST"
	PUT     Verb = "PUT"
	PATCH   Verb = "PATCH"
	DELETE  Verb = "DELETE"
	HEAD    Verb = "HEAD"
	OPTIONS Verb = "OPTIONS"
)

// ParameterSource is where a parameter is bound from.
type ParameterSource string

const (
	SourcePath   ParameterSource = "path"
	SourceQuery  ParameterSource = "query"
	SourceHeader ParameterSource = "header"
	SourceCookie ParameterSource = "cookie"
	SourceBody   ParameterSource = "body"
	SourceForm   ParameterSource = "form"
	SourceFile   ParameterSource = "file"
)

// TagLibrary is the result of one scan invocation. Tags keep insertion order;
// adding a tag whose name already exists extends that tag's endpoints.
type TagLibrary struct {
	tags     []*Tag
	index    map[string]*Tag
	Registry *Registry
}

// NewTagLibrary creates an empty library backed by the given registry.
func NewTagLibrary(registry *Registry) *TagLibrary {
	if registry == nil {
		registry = NewRegistry()
	}
	return &TagLibrary{
		index:    make(map[string]*Tag),
		Registry: registry,
	}
}

// AddTag merges tag into the library by name.
func (l *TagLibrary) AddTag(tag *Tag) {
	if existing, ok := l.index[tag.Name]; ok {
		existing.Endpoints = append(existing.Endpoints, tag.Endpoints...)
		if existing.Description == "" {
			existing.Description = tag.Description
		}
		return
	}
	l.index[tag.Name] = tag
	l.tags = append(l.tags, tag)
}

// Tags returns the tags in insertion order.
func (l *TagLibrary) Tags() []*Tag {
	return l.tags
}

// Tag returns the tag with the given name.
func (l *TagLibrary) Tag(name string) (*Tag, bool) {
	t, ok := l.index[name]
	return t, ok
}

// EndpointCount returns the number of endpoints across all tags.
func (l *TagLibrary) EndpointCount() int {
	n := 0
	for _, t := range l.tags {
		n += len(t.Endpoints)
	}
	return n
}

// Tag groups the endpoints of one resource declaration.
type Tag struct {
	Name          string
	DeclaringType string // qualified name of the resource type
	Description   string
	Endpoints     []*Endpoint
}

// Endpoint is one operation.
type Endpoint struct {
	Verb          Verb
	Path          string
	OperationID   string
	Produces      []string
	Consumes      []string
	Parameters    []*Parameter
	Response      *Schema // nil when the operation returns nothing
	DeclaringType string  // qualified name of the type declaring the method
	Signature     Signature
	Deprecated    bool
	Overrides     []MethodRef // unannotated overrides, most derived first

	Summary             string
	Description         string
	ResponseDescription string
}

// Parameter is one operation parameter.
type Parameter struct {
	Name        string
	JavaName    string // declared parameter name, used for @param lookup
	Source      ParameterSource
	Required    bool
	Schema      *Schema
	Description string
}

// MethodRef names an unannotated override of an operation method. Its
// documentation is used when the declaring method has none.
type MethodRef struct {
	DeclaringType string
	Signature     Signature
	ParamNames    map[string]string // operation parameter name to override parameter name
}

// Signature identifies a declared operation for documentation correlation.
type Signature struct {
	ReturnType string
	Name       string
	ParamTypes []string
}

// SignatureDelimiter joins the parts of a signature key.
const SignatureDelimiter = "_"

// Key returns returnType_name_param1_param2...
func (s Signature) Key() string {
	var b strings.Builder
	b.WriteString(s.ReturnType)
	b.WriteString(SignatureDelimiter)
	b.WriteString(s.Name)
	for _, p := range s.ParamTypes {
		b.WriteString(SignatureDelimiter)
		b.WriteString(p)
	}
	return b.String()
}
