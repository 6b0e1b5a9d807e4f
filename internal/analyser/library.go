package analyser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"restdoc/internal/model"
)

// Library is the marker vocabulary of one web framework. Every marker maps
// to exactly one outcome: a route, a verb, a content type list or a
// parameter source.
type Library struct {
	Name string

	// TagMarkers select resource types when the configuration names none.
	TagMarkers []string
	// ClassPathMarkers carry the base path on a type.
	ClassPathMarkers []string
	// PathMarkers carry the operation path on a method.
	PathMarkers []string
	// PathAttrs are the marker attributes holding a path, in priority order.
	PathAttrs []string
	// ProducesMarkers and ConsumesMarkers map a marker to the attribute
	// holding its content types.
	ProducesMarkers map[string]string
	ConsumesMarkers map[string]string
	// Operations map an operation marker to its verb. An empty verb is read
	// from the marker's method attribute and defaults to GET.
	Operations map[string]model.Verb
	// Parameters map a parameter marker to its binding source.
	Parameters map[string]model.ParameterSource
	// IgnoredParameters are markers of framework-injected parameters.
	IgnoredParameters []string
	// OptionalMarkers make a parameter optional.
	OptionalMarkers []string
	// Unannotated is the source of parameters without a known marker: body,
	// query (simple types only) or empty to skip them.
	Unannotated model.ParameterSource
}

func (l *Library) clone(name string) *Library {
	c := *l
	c.Name = name
	c.TagMarkers = append([]string(nil), l.TagMarkers...)
	c.ClassPathMarkers = append([]string(nil), l.ClassPathMarkers...)
	c.PathMarkers = append([]string(nil), l.PathMarkers...)
	c.PathAttrs = append([]string(nil), l.PathAttrs...)
	c.ProducesMarkers = lo.Assign(l.ProducesMarkers)
	c.ConsumesMarkers = lo.Assign(l.ConsumesMarkers)
	c.Operations = lo.Assign(l.Operations)
	c.Parameters = lo.Assign(l.Parameters)
	c.IgnoredParameters = append([]string(nil), l.IgnoredParameters...)
	c.OptionalMarkers = append([]string(nil), l.OptionalMarkers...)
	return &c
}

var springMappings = map[string]model.Verb{
	"RequestMapping": "",
	"GetMapping":     model.GET,
	"PostMapping":    model.POST,
	"PutMapping":     model.PUT,
	"PatchMapping":   model.PATCH,
	"DeleteMapping":  model.DELETE,
}

func springContent(attr string) map[string]string {
	out := make(map[string]string, len(springMappings))
	for marker := range springMappings {
		out[marker] = attr
	}
	return out
}

// Spring is the Spring MVC / WebFlux vocabulary.
var Spring = &Library{
	Name:             "spring",
	TagMarkers:       []string{"RequestMapping", "RestController"},
	ClassPathMarkers: []string{"RequestMapping"},
	PathMarkers:      sortedKeys(springMappings),
	PathAttrs:        []string{"path", "value"},
	ProducesMarkers:  springContent("produces"),
	ConsumesMarkers:  springContent("consumes"),
	Operations:       springMappings,
	Parameters: map[string]model.ParameterSource{
		"PathVariable":  model.SourcePath,
		"RequestParam":  model.SourceQuery,
		"RequestHeader": model.SourceHeader,
		"CookieValue":   model.SourceCookie,
		"RequestBody":   model.SourceBody,
		"RequestPart":   model.SourceForm,
	},
	IgnoredParameters: []string{"ModelAttribute", "AuthenticationPrincipal", "RequestAttribute", "SessionAttribute"},
	Unannotated:       model.SourceQuery,
}

// JaxRS is the JAX-RS vocabulary, for both javax and jakarta packages.
var JaxRS = &Library{
	Name:             "jaxrs",
	TagMarkers:       []string{"Path"},
	ClassPathMarkers: []string{"Path"},
	PathMarkers:      []string{"Path"},
	PathAttrs:        []string{"value"},
	ProducesMarkers:  map[string]string{"Produces": "value"},
	ConsumesMarkers:  map[string]string{"Consumes": "value"},
	Operations: map[string]model.Verb{
		"GET":     model.GET,
		"POST":    model.POST,
		"PUT":     model.PUT,
		"PATCH":   model.PATCH,
		"DELETE":  model.DELETE,
		"HEAD":    model.HEAD,
		"OPTIONS": model.OPTIONS,
	},
	Parameters: map[string]model.ParameterSource{
		"PathParam":   model.SourcePath,
		"QueryParam":  model.SourceQuery,
		"HeaderParam": model.SourceHeader,
		"CookieParam": model.SourceCookie,
		"FormParam":   model.SourceForm,
	},
	IgnoredParameters: []string{"Context", "Suspended", "BeanParam", "MatrixParam"},
	OptionalMarkers:   []string{"DefaultValue"},
	Unannotated:       model.SourceBody,
}

// Definition describes a library declared in a library file.
type Definition struct {
	Name             string
	Extends          string
	TagMarkers       []string
	ClassPathMarkers []string
	PathMarkers      []string
	ProducesMarkers  map[string]string
	ConsumesMarkers  map[string]string
	Operations       map[string]string
	Parameters       map[string]string
	IgnoredMarkers   []string
	OptionalMarkers  []string
	Unannotated      string
}

// Catalog holds the libraries available to a run, by name.
type Catalog struct {
	libs map[string]*Library
}

// NewCatalog returns a catalog holding the built-in libraries.
func NewCatalog() *Catalog {
	return &Catalog{libs: map[string]*Library{
		Spring.Name: Spring,
		JaxRS.Name:  JaxRS,
	}}
}

// Get returns a library by name.
func (c *Catalog) Get(name string) (*Library, bool) {
	l, ok := c.libs[name]
	return l, ok
}

// Names returns the library names in lexical order.
func (c *Catalog) Names() []string {
	return sortedKeys(c.libs)
}

var validSources = map[string]model.ParameterSource{
	"path":   model.SourcePath,
	"query":  model.SourceQuery,
	"header": model.SourceHeader,
	"cookie": model.SourceCookie,
	"body":   model.SourceBody,
	"form":   model.SourceForm,
	"file":   model.SourceFile,
}

var validVerbs = map[string]model.Verb{
	"GET":     model.GET,
	"POST":    model.POST,
	"PUT":     model.PUT,
	"PATCH":   model.PATCH,
	"DELETE":  model.DELETE,
	"HEAD":    model.HEAD,
	"OPTIONS": model.OPTIONS,
	"":        "",
}

// Define adds a library, starting from its base library when Extends is set.
// Tables of the definition are merged over the base; lists replace the base
// lists when not empty.
func (c *Catalog) Define(d Definition) error {
	if d.Name == "" {
		return fmt.Errorf("library without a name")
	}
	lib := &Library{
		Name:            d.Name,
		PathAttrs:       []string{"path", "value"},
		ProducesMarkers: map[string]string{},
		ConsumesMarkers: map[string]string{},
		Operations:      map[string]model.Verb{},
		Parameters:      map[string]model.ParameterSource{},
	}
	if d.Extends != "" {
		base, ok := c.libs[d.Extends]
		if !ok {
			return fmt.Errorf("library %q extends unknown library %q", d.Name, d.Extends)
		}
		lib = base.clone(d.Name)
	}

	for marker, verb := range d.Operations {
		v, ok := validVerbs[strings.ToUpper(verb)]
		if !ok {
			return fmt.Errorf("library %q: unknown verb %q for %s", d.Name, verb, marker)
		}
		lib.Operations[marker] = v
	}
	for marker, source := range d.Parameters {
		s, ok := validSources[strings.ToLower(source)]
		if !ok {
			return fmt.Errorf("library %q: unknown parameter source %q for %s", d.Name, source, marker)
		}
		lib.Parameters[marker] = s
	}
	if d.Unannotated != "" {
		s, ok := validSources[strings.ToLower(d.Unannotated)]
		if !ok && !strings.EqualFold(d.Unannotated, "none") {
			return fmt.Errorf("library %q: unknown parameter source %q", d.Name, d.Unannotated)
		}
		lib.Unannotated = s
	}
	for marker, attr := range d.ProducesMarkers {
		lib.ProducesMarkers[marker] = attr
	}
	for marker, attr := range d.ConsumesMarkers {
		lib.ConsumesMarkers[marker] = attr
	}

	if len(d.TagMarkers) > 0 {
		lib.TagMarkers = d.TagMarkers
	}
	if len(d.ClassPathMarkers) > 0 {
		lib.ClassPathMarkers = d.ClassPathMarkers
	}
	if len(d.PathMarkers) > 0 {
		lib.PathMarkers = d.PathMarkers
	}
	if len(d.IgnoredMarkers) > 0 {
		lib.IgnoredParameters = d.IgnoredMarkers
	}
	if len(d.OptionalMarkers) > 0 {
		lib.OptionalMarkers = d.OptionalMarkers
	}
	if len(lib.Operations) == 0 {
		return fmt.Errorf("library %q declares no operation markers", d.Name)
	}

	c.libs[d.Name] = lib
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
