package schema

import "restdoc/internal/introspect"

type primitive struct {
	typ, format string
}

// primitives maps simple type names to their schema type and format.
var primitives = map[string]primitive{
	"int":            {"integer", "int32"},
	"Integer":        {"integer", "int32"},
	"short":          {"integer", "int32"},
	"Short":          {"integer", "int32"},
	"byte":           {"integer", "int32"},
	"Byte":           {"integer", "int32"},
	"AtomicInteger":  {"integer", "int32"},
	"long":           {"integer", "int64"},
	"Long":           {"integer", "int64"},
	"BigInteger":     {"integer", "int64"},
	"AtomicLong":     {"integer", "int64"},
	"float":          {"number", "float"},
	"Float":          {"number", "float"},
	"double":         {"number", "double"},
	"Double":         {"number", "double"},
	"BigDecimal":     {"number", "double"},
	"boolean":        {"boolean", ""},
	"Boolean":        {"boolean", ""},
	"AtomicBoolean":  {"boolean", ""},
	"String":         {"string", ""},
	"char":           {"string", ""},
	"Character":      {"string", ""},
	"CharSequence":   {"string", ""},
	"UUID":           {"string", "uuid"},
	"LocalDate":      {"string", "date"},
	"LocalDateTime":  {"string", "date-time"},
	"OffsetDateTime": {"string", "date-time"},
	"ZonedDateTime":  {"string", "date-time"},
	"Instant":        {"string", "date-time"},
	"Date":           {"string", "date-time"},
	"Timestamp":      {"string", "date-time"},
	"LocalTime":      {"string", "time"},
	"OffsetTime":     {"string", "time"},
	"Duration":       {"string", "duration"},
	"URI":            {"string", "uri"},
	"URL":            {"string", "uri"},
	"Locale":         {"string", ""},
	"Currency":       {"string", ""},
	"ZoneId":         {"string", ""},
}

var fileTypes = map[string]bool{
	"MultipartFile":         true,
	"Part":                  true,
	"FilePart":              true,
	"InputStream":           true,
	"File":                  true,
	"Resource":              true,
	"InputPart":             true,
	"StreamingResponseBody": true,
}

var arrayLike = map[string]bool{
	"List":       true,
	"ArrayList":  true,
	"LinkedList": true,
	"Collection": true,
	"Iterable":   true,
	"Stream":     true,
	"Flux":       true,
	"Queue":      true,
	"Deque":      true,
	"Vector":     true,
}

var setLike = map[string]bool{
	"Set":           true,
	"HashSet":       true,
	"LinkedHashSet": true,
	"TreeSet":       true,
	"SortedSet":     true,
	"NavigableSet":  true,
	"EnumSet":       true,
}

var mapLike = map[string]bool{
	"Map":               true,
	"HashMap":           true,
	"LinkedHashMap":     true,
	"TreeMap":           true,
	"SortedMap":         true,
	"NavigableMap":      true,
	"ConcurrentMap":     true,
	"ConcurrentHashMap": true,
	"Hashtable":         true,
	"Properties":        true,
}

// wrappers hold a single optional value and resolve to that value.
var wrappers = map[string]bool{
	"Optional":        true,
	"AtomicReference": true,
	"JsonNullable":    true,
}

// IsFile reports whether ref is a file upload type, or an array or collection
// of them.
func IsFile(ref introspect.TypeRef) bool {
	if ref.Dims > 0 {
		return IsFile(ref.Elem())
	}
	name := ref.SimpleName()
	if (arrayLike[name] || setLike[name] || wrappers[name]) && len(ref.Args) == 1 {
		return IsFile(ref.Args[0])
	}
	return fileTypes[name]
}

// IsSetLike reports whether ref is a set type, possibly inside an Optional.
func IsSetLike(ref introspect.TypeRef) bool {
	if ref.Dims > 0 {
		return false
	}
	if wrappers[ref.SimpleName()] && len(ref.Args) == 1 {
		return IsSetLike(ref.Args[0])
	}
	return setLike[ref.SimpleName()]
}

// IsOptional reports whether ref is an Optional wrapper.
func IsOptional(ref introspect.TypeRef) bool {
	return ref.Dims == 0 && ref.SimpleName() == "Optional"
}

// IsSimple reports whether ref maps to a primitive or binary schema, or is an
// array or collection of such types.
func IsSimple(ref introspect.TypeRef) bool {
	if ref.Dims > 0 {
		return IsSimple(ref.Elem())
	}
	name := ref.SimpleName()
	if (arrayLike[name] || setLike[name] || wrappers[name]) && len(ref.Args) == 1 {
		return IsSimple(ref.Args[0])
	}
	_, ok := primitives[name]
	return ok || fileTypes[name]
}
