package host

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Rule is one parsed route rule.
type Rule struct {
	Pattern *regexp.Regexp
	Handler string
	Args    string
}

// String returns the rule in its configuration form.
func (r Rule) String() string {
	return r.Pattern.String() + " " + r.Handler + ":" + r.Args
}

// ParseRule parses "REGEX HANDLER:ARGS". The colon and args are optional.
func ParseRule(s string) (Rule, error) {
	pattern, action, ok := strings.Cut(strings.TrimSpace(s), " ")
	action = strings.TrimSpace(action)
	if !ok || pattern == "" || action == "" {
		return Rule{}, fmt.Errorf("%w: %q: want \"REGEX HANDLER:ARGS\"", ErrInvalidRoute, s)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %q: %v", ErrInvalidRoute, s, err)
	}

	name, args, _ := strings.Cut(action, ":")
	if name == "" {
		return Rule{}, fmt.Errorf("%w: %q: missing handler name", ErrInvalidRoute, s)
	}
	return Rule{Pattern: re, Handler: name, Args: args}, nil
}

type route struct {
	rule    Rule
	handler http.Handler
}

// Router dispatches requests to the first matching rule, falling back to the
// application handler.
type Router struct {
	routes   []route
	fallback http.Handler
}

// NewRouter resolves rules against the registered router functions.
func NewRouter(rules []Rule, routers map[string]RouterFunc, fallback http.Handler) (*Router, error) {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	rt := &Router{fallback: fallback}
	for _, rule := range rules {
		fn, ok := routers[rule.Handler]
		if !ok {
			return nil, fmt.Errorf("%w: %s (rule %q)", ErrUnknownRouter, rule.Handler, rule.String())
		}
		rt.routes = append(rt.routes, route{rule: rule, handler: fn(rule.Args)})
	}
	return rt, nil
}

// Match returns the handler for path and whether a rule matched.
func (rt *Router) Match(path string) (http.Handler, bool) {
	for _, r := range rt.routes {
		if r.rule.Pattern.MatchString(path) {
			return r.handler, true
		}
	}
	return rt.fallback, false
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, _ := rt.Match(r.URL.Path)
	h.ServeHTTP(w, r)
}
