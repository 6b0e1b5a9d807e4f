// Package filter classifies qualified type names against inclusion and
// exclusion regular expressions.
package filter

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"

	rderrors "restdoc/internal/errors"
)

// Filter accepts or rejects qualified names. Patterns must match the whole name.
type Filter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// New compiles the inclusion and exclusion patterns. Every invalid pattern is
// reported in a single CONFIGURATION_ERROR.
func New(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var errs error

	for _, p := range include {
		re, err := compile(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("whiteList pattern %q: %w", p, err))
			continue
		}
		f.include = append(f.include, re)
	}
	for _, p := range exclude {
		re, err := compile(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("blackList pattern %q: %w", p, err))
			continue
		}
		f.exclude = append(f.exclude, re)
	}

	if errs != nil {
		return nil, rderrors.NewConfigurationError("invalid class name pattern", errs)
	}
	return f, nil
}

// compile anchors the pattern so that it only matches the full input.
func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// Accepts reports whether name passes the inclusion list (when non-empty) and
// is not matched by any exclusion pattern.
func (f *Filter) Accepts(name string) bool {
	return f.included(name) && !f.excluded(name)
}

func (f *Filter) included(name string) bool {
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (f *Filter) excluded(name string) bool {
	for _, re := range f.exclude {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
