// Package openapi renders a tag library as an OpenAPI 3.0 document.
package openapi

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Document is the root OpenAPI object.
type Document struct {
	OpenAPI    string               `json:"openapi" yaml:"openapi"`
	Info       Info                 `json:"info" yaml:"info"`
	Servers    []Server             `json:"servers,omitempty" yaml:"servers,omitempty"`
	Tags       []Tag                `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths" yaml:"paths"`
	Components *Components          `json:"components,omitempty" yaml:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Tag struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem holds the operations of one path, in OpenAPI field order.
type PathItem struct {
	Get     *Operation `json:"get,omitempty" yaml:"get,omitempty"`
	Put     *Operation `json:"put,omitempty" yaml:"put,omitempty"`
	Post    *Operation `json:"post,omitempty" yaml:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty" yaml:"delete,omitempty"`
	Options *Operation `json:"options,omitempty" yaml:"options,omitempty"`
	Head    *Operation `json:"head,omitempty" yaml:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty" yaml:"patch,omitempty"`
}

type Operation struct {
	Tags        []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string               `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []*Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses" yaml:"responses"`
	Deprecated  bool                 `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type RequestBody struct {
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Content     map[string]*MediaType `json:"content" yaml:"content"`
	Required    bool                  `json:"required,omitempty" yaml:"required,omitempty"`
}

type Response struct {
	Description string                `json:"description" yaml:"description"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type Components struct {
	Schemas map[string]*Schema `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// Schema is the subset of the OpenAPI 3.0 schema object the generator emits.
type Schema struct {
	Ref                  string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type                 string      `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string      `json:"format,omitempty" yaml:"format,omitempty"`
	Description          string      `json:"description,omitempty" yaml:"description,omitempty"`
	AllOf                []*Schema   `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	Enum                 []string    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items                *Schema     `json:"items,omitempty" yaml:"items,omitempty"`
	UniqueItems          bool        `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
	MinLength            *int        `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength            *int        `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Required             []string    `json:"required,omitempty" yaml:"required,omitempty"`
	Properties           *Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	AdditionalProperties *Schema     `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
}

// Properties is an insertion-ordered map of property schemas. Plain maps
// would be written in key order and lose the declaration order of fields.
type Properties struct {
	keys   []string
	values map[string]*Schema
}

// Set adds or replaces a property. A new property goes last.
func (p *Properties) Set(name string, s *Schema) {
	if p.values == nil {
		p.values = make(map[string]*Schema)
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = s
}

// Get returns a property schema.
func (p *Properties) Get(name string) (*Schema, bool) {
	s, ok := p.values[name]
	return s, ok
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	return p.keys
}

func (p *Properties) Len() int {
	return len(p.keys)
}

// MarshalJSON writes the properties as an object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the properties as a mapping node in insertion order.
func (p *Properties) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range p.keys {
		value := &yaml.Node{}
		if err := value.Encode(p.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			value)
	}
	return node, nil
}
