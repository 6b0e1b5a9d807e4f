// Package analyser turns one resource type into a Tag: it resolves the base
// route from the type and its ancestors, then builds an Endpoint for each
// method carrying an operation marker.
package analyser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"restdoc/internal/introspect"
	"restdoc/internal/model"
	"restdoc/internal/schema"
)

// responseWrappers are unwrapped to their first type argument before the
// response schema is resolved.
var responseWrappers = map[string]bool{
	"ResponseEntity":    true,
	"HttpEntity":        true,
	"Optional":          true,
	"CompletableFuture": true,
	"CompletionStage":   true,
	"Future":            true,
	"Callable":          true,
	"DeferredResult":    true,
	"WebAsyncTask":      true,
	"Mono":              true,
	"Uni":               true,
	"ListenableFuture":  true,
}

// contextTypes are injected by the framework and never documented.
var contextTypes = map[string]bool{
	"HttpServletRequest":   true,
	"HttpServletResponse":  true,
	"ServletRequest":       true,
	"ServletResponse":      true,
	"HttpSession":          true,
	"Principal":            true,
	"Authentication":       true,
	"Model":                true,
	"ModelMap":             true,
	"BindingResult":        true,
	"Errors":               true,
	"WebRequest":           true,
	"NativeWebRequest":     true,
	"ServerWebExchange":    true,
	"ServerHttpRequest":    true,
	"ServerHttpResponse":   true,
	"UriComponentsBuilder": true,
	"Locale":               true,
	"TimeZone":             true,
	"SessionStatus":        true,
	"RedirectAttributes":   true,
	"UriInfo":              true,
	"HttpHeaders":          true,
	"SecurityContext":      true,
	"AsyncResponse":        true,
}

// Analyser builds tags for one API configuration. Operation ids are unique
// across every tag the analyser builds.
type Analyser struct {
	provider   introspect.Provider
	lib        *Library
	tagMarkers []string
	resolver   *schema.Resolver
	logger     *slog.Logger

	operationIDs map[string]int
}

// New creates an analyser. tagMarkers defaults to the library's tag markers.
func New(provider introspect.Provider, lib *Library, tagMarkers []string, resolver *schema.Resolver, logger *slog.Logger) *Analyser {
	if len(tagMarkers) == 0 {
		tagMarkers = lib.TagMarkers
	}
	return &Analyser{
		provider:     provider,
		lib:          lib,
		tagMarkers:   tagMarkers,
		resolver:     resolver,
		logger:       logger,
		operationIDs: make(map[string]int),
	}
}

// Registry returns the schema registry endpoints refer to.
func (a *Analyser) Registry() *model.Registry {
	return a.resolver.Registry()
}

// TagMarkers returns the markers that select resource types.
func (a *Analyser) TagMarkers() []string {
	return a.tagMarkers
}

type route struct {
	path     string
	produces []string
	consumes []string
}

type operation struct {
	method    *introspect.MethodDecl
	owner     *introspect.TypeDecl
	env       introspect.Bindings // type arguments bound along the path from the resource type
	overrides []model.MethodRef
}

// declared is a method as seen from the resource type.
type declared struct {
	method *introspect.MethodDecl
	owner  *introspect.TypeDecl
	env    introspect.Bindings
}

// Analyse returns the tag of t, or false when neither t nor its ancestors
// carry a routing or tag marker.
func (a *Analyser) Analyse(t *introspect.TypeDecl) (*model.Tag, bool) {
	ancestors := introspect.Ancestors(a.provider, t)
	base, ok := a.route(ancestors)
	if !ok {
		return nil, false
	}

	tag := &model.Tag{Name: t.Name, DeclaringType: t.QualifiedName}
	for _, anc := range ancestors {
		if m, ok := a.provider.MarkersOf(anc).Find("Tag"); ok {
			if name, _ := m.Value("name"); name != "" {
				tag.Name = name
				tag.Description, _ = m.Value("description")
				break
			}
		}
	}
	deprecated := a.provider.MarkersOf(t).Has("Deprecated")

	for _, op := range a.operations(ancestors, introspect.AncestorBindings(a.provider, t)) {
		tag.Endpoints = append(tag.Endpoints, a.endpoints(base, op, deprecated)...)
	}
	a.logger.Debug("Analysed resource", "type", t.QualifiedName, "tag", tag.Name, "endpoints", len(tag.Endpoints))
	return tag, true
}

// route resolves the base path and default content types. The first
// ancestor (most derived first) declaring each part wins.
func (a *Analyser) route(ancestors []*introspect.TypeDecl) (route, bool) {
	var r route
	found, pathFound := false, false
	for _, anc := range ancestors {
		markers := a.provider.MarkersOf(anc)
		if markers.HasAny(a.tagMarkers...) {
			found = true
		}
		if !pathFound {
			if m, ok := firstMarker(markers, a.lib.ClassPathMarkers); ok {
				found = true
				if paths := m.FirstOf(a.lib.PathAttrs...); len(paths) > 0 {
					r.path, pathFound = paths[0], true
				}
			}
		}
		if r.produces == nil {
			r.produces = contentTypes(markers, a.lib.ProducesMarkers)
		}
		if r.consumes == nil {
			r.consumes = contentTypes(markers, a.lib.ConsumesMarkers)
		}
	}
	return r, found
}

// operations collects the marked methods of every ancestor. A method
// overriding an already collected one is skipped. Signatures are compared
// after binding each ancestor's type variables, so Item create(Item) in a
// resource extending Crud<Item> overrides Crud's T create(T). Unmarked
// overrides of a collected method are recorded on it, most derived first.
func (a *Analyser) operations(ancestors []*introspect.TypeDecl, envs map[string]introspect.Bindings) []operation {
	var (
		ops   []operation
		plain []declared
	)
	opMarkers := lo.Keys(a.lib.Operations)
	for _, anc := range ancestors {
		env := envs[anc.QualifiedName]
		for _, m := range a.provider.MethodsOf(anc) {
			if m.Static || m.Markers.Has("Hidden") {
				continue
			}
			d := declared{method: m, owner: anc, env: env.Without(m.TypeParams)}
			if _, ok := firstMarker(m.Markers, opMarkers); !ok {
				plain = append(plain, d)
				continue
			}
			if lo.ContainsBy(ops, func(o operation) bool { return o.method.SameSignature(m, o.env, d.env) }) {
				continue
			}
			op := operation{method: m, owner: anc, env: d.env}
			for _, p := range plain {
				if p.method.SameSignature(m, p.env, d.env) {
					op.overrides = append(op.overrides, methodRef(p.method, p.owner, m))
				}
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// methodRef refers to override, declared by owner, of the operation method m.
func methodRef(override *introspect.MethodDecl, owner *introspect.TypeDecl, m *introspect.MethodDecl) model.MethodRef {
	names := make(map[string]string, len(m.Params))
	for i, p := range m.Params {
		names[p.Name] = override.Params[i].Name
	}
	return model.MethodRef{
		DeclaringType: owner.QualifiedName,
		Signature:     signature(override),
		ParamNames:    names,
	}
}

func signature(m *introspect.MethodDecl) model.Signature {
	return model.Signature{ReturnType: m.Return.Text, Name: m.Name, ParamTypes: m.ParamTypes()}
}

func (a *Analyser) endpoints(base route, op operation, typeDeprecated bool) []*model.Endpoint {
	m := op.method
	opMarker, _ := firstMarker(m.Markers, sortedKeys(a.lib.Operations))
	verbs := a.verbs(opMarker)

	paths := []string{""}
	if pm, ok := firstMarker(m.Markers, a.lib.PathMarkers); ok {
		if v := pm.FirstOf(a.lib.PathAttrs...); len(v) > 0 {
			paths = v
		}
	}

	produces := contentTypes(m.Markers, a.lib.ProducesMarkers)
	if produces == nil {
		produces = base.produces
	}
	consumes := contentTypes(m.Markers, a.lib.ConsumesMarkers)
	if consumes == nil {
		consumes = base.consumes
	}

	params := a.parameters(m, op.env)
	response := a.response(op.env.Substitute(m.Return))
	sig := signature(m)
	deprecated := typeDeprecated || m.Markers.Has("Deprecated")

	var summary, description string
	if doc, ok := m.Markers.Find("Operation"); ok {
		summary, _ = doc.Value("summary")
		description, _ = doc.Value("description")
	}

	var out []*model.Endpoint
	for _, verb := range verbs {
		for _, p := range paths {
			out = append(out, &model.Endpoint{
				Verb:          verb,
				Path:          JoinPath(base.path, p),
				OperationID:   a.operationID(m.Name),
				Produces:      produces,
				Consumes:      consumes,
				Parameters:    params,
				Response:      response,
				DeclaringType: op.owner.QualifiedName,
				Signature:     sig,
				Overrides:     op.overrides,
				Deprecated:    deprecated,
				Summary:       summary,
				Description:   description,
			})
		}
	}
	return out
}

func (a *Analyser) verbs(m introspect.Marker) []model.Verb {
	if v := a.lib.Operations[m.Name]; v != "" {
		return []model.Verb{v}
	}
	var verbs []model.Verb
	for _, raw := range m.Values("method") {
		if v, ok := validVerbs[strings.ToUpper(lastSegment(raw))]; ok && v != "" {
			verbs = append(verbs, v)
		}
	}
	if len(verbs) == 0 {
		return []model.Verb{model.GET}
	}
	return lo.Uniq(verbs)
}

func (a *Analyser) operationID(name string) string {
	n := a.operationIDs[name]
	a.operationIDs[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(n)
}

func (a *Analyser) parameters(m *introspect.MethodDecl, env introspect.Bindings) []*model.Parameter {
	var out []*model.Parameter
	for _, p := range m.Params {
		p.Type = env.Substitute(p.Type)
		if param, ok := a.parameter(p); ok {
			out = append(out, param)
		}
	}
	return out
}

func (a *Analyser) parameter(p introspect.ParamDecl) (*model.Parameter, bool) {
	if p.Markers.HasAny(a.lib.IgnoredParameters...) || contextTypes[p.Type.SimpleName()] {
		return nil, false
	}

	param := &model.Parameter{Name: p.Name, JavaName: p.Name, Required: true}

	var marker introspect.Marker
	source, found := model.ParameterSource(""), false
	for _, mk := range p.Markers {
		if s, ok := a.lib.Parameters[mk.Name]; ok {
			marker, source, found = mk, s, true
			break
		}
	}
	if !found {
		switch a.lib.Unannotated {
		case "":
			return nil, false
		case model.SourceQuery:
			if !schema.IsSimple(p.Type) {
				return nil, false
			}
		}
		source = a.lib.Unannotated
	}

	if name := marker.FirstOf("name", "value"); len(name) > 0 && name[0] != "" && source != model.SourceBody {
		param.Name = name[0]
	}
	if v, _ := marker.Value("required"); v == "false" {
		param.Required = false
	}
	if _, ok := marker.Value("defaultValue"); ok {
		param.Required = false
	}
	if p.Markers.HasAny(a.lib.OptionalMarkers...) || schema.IsOptional(p.Type) {
		param.Required = false
	}

	if (source == model.SourceQuery || source == model.SourceForm) && schema.IsFile(p.Type) {
		source = model.SourceFile
	}
	param.Source = source

	if source == model.SourceFile && schema.IsFile(p.Type) {
		param.Schema = model.Binary()
		if p.Type.Dims > 0 || len(p.Type.Args) > 0 && !schema.IsOptional(p.Type) {
			param.Schema = model.ArrayOf(model.Binary())
		}
	} else {
		param.Schema = a.resolver.Resolve(p.Type)
	}
	return param, true
}

// response resolves the schema of a return type after unwrapping wrapper
// types. It returns nil for void.
func (a *Analyser) response(ret introspect.TypeRef) *model.Schema {
	for ret.Dims == 0 && responseWrappers[ret.SimpleName()] && len(ret.Args) == 1 {
		ret = ret.Args[0]
	}
	if ret.IsVoid() {
		return nil
	}
	return a.resolver.Resolve(ret)
}

// JoinPath joins path segments with single slashes. The result starts with a
// slash and never ends with one, except for the root path. Path variable
// patterns such as {id:\d+} or {id:[0-9]{3}} are reduced to {id}.
func JoinPath(parts ...string) string {
	var segments []string
	for _, p := range parts {
		p = stripPatterns(p)
		for _, s := range strings.Split(p, "/") {
			if s = strings.TrimSpace(s); s != "" {
				segments = append(segments, s)
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}

// stripPatterns drops the ":pattern" part of each path variable. Braces
// inside a pattern nest, so the variable ends at the brace closing depth 1.
func stripPatterns(p string) string {
	if !strings.Contains(p, ":") {
		return p
	}
	var b strings.Builder
	depth, skipping := 0, false
	for _, r := range p {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
			if depth == 0 {
				skipping = false
			}
		case r == ':' && depth == 1:
			skipping = true
		}
		if !skipping {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstMarker(markers introspect.Markers, names []string) (introspect.Marker, bool) {
	for _, m := range markers {
		if lo.Contains(names, m.Name) {
			return m, true
		}
	}
	return introspect.Marker{}, false
}

// contentTypes returns the content types declared by the first marker of
// table present in markers, or nil.
func contentTypes(markers introspect.Markers, table map[string]string) []string {
	for _, m := range markers {
		attr, ok := table[m.Name]
		if !ok {
			continue
		}
		var out []string
		for _, v := range m.Values(attr) {
			for _, ct := range strings.Split(v, ",") {
				if ct = strings.TrimSpace(ct); ct != "" {
					out = append(out, ct)
				}
			}
		}
		if len(out) > 0 {
			return lo.Uniq(out)
		}
	}
	return nil
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
