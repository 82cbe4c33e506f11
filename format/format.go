// Package format provides the built-in checkers for the "format" keyword.
// Every checker accepts values of types it does not apply to.
package format

import (
	"sort"
	"sync"
)

// Checker validates instances against one named format.
type Checker interface {
	Name() string
	Check(v any) bool
}

// StringFunc is a Checker over string instances.
type StringFunc struct {
	FormatName string
	Fn         func(s string) bool
}

func (f StringFunc) Name() string { return f.FormatName }

func (f StringFunc) Check(v any) bool {
	s, ok := v.(string)
	return !ok || f.Fn(s)
}

type nullChecker string

func (n nullChecker) Name() string   { return string(n) }
func (nullChecker) Check(any) bool { return true }

// Null returns a checker that accepts everything, used for unknown names.
func Null(name string) Checker { return nullChecker(name) }

var (
	mu       sync.RWMutex
	registry = map[string]Checker{}
)

func register(name string, fn func(string) bool) {
	registry[name] = StringFunc{FormatName: name, Fn: fn}
}

// Register adds or replaces a process-wide checker. Compilers created later
// see it as a built-in.
func Register(c Checker) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// Lookup returns the built-in checker for name, or nil.
func Lookup(name string) Checker {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names lists the registered format names in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func init() {
	register("date-time", isDateTime)
	register("date", isDate)
	register("time", isTime)
	register("duration", isDuration)
	register("email", isEmail)
	register("idn-email", isEmail)
	register("hostname", isHostname)
	register("idn-hostname", isIDNHostname)
	register("ipv4", isIPv4)
	register("ipv6", isIPv6)
	register("uri", isURI)
	register("uri-reference", isURIReference)
	register("iri", isURI)
	register("iri-reference", isURIReference)
	register("uri-template", isURITemplate)
	register("uuid", isUUID)
	register("json-pointer", isJSONPointer)
	register("relative-json-pointer", isRelativeJSONPointer)
	register("regex", isRegex)
}
