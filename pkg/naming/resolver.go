package naming

import (
	"strconv"
	"strings"
)

// AnonymousName is the fallback hint used when no usable hint is available.
const AnonymousName = "Anonymous"

// DefaultReservedWords are always treated as taken, regardless of scope.
var DefaultReservedWords = []string{"object"}

// Resolver picks a name for a hint that does not collide with a Scope.
// Mappings and reserved words are fixed at construction; a Resolver is safe
// to share between scopes.
type Resolver struct {
	mappings map[string]string
	reserved map[string]struct{}
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMappings registers explicit hint to name overrides. Later calls add to
// earlier ones.
func WithMappings(mappings map[string]string) ResolverOption {
	return func(r *Resolver) {
		for hint, name := range mappings {
			hint = strings.TrimSpace(hint)
			name = strings.TrimSpace(name)
			if hint == "" || name == "" {
				continue
			}
			r.mappings[hint] = name
		}
	}
}

// WithReservedWords adds words that can never be returned unnumbered.
func WithReservedWords(words ...string) ResolverOption {
	return func(r *Resolver) {
		for _, word := range words {
			if word = strings.TrimSpace(word); word != "" {
				r.reserved[word] = struct{}{}
			}
		}
	}
}

// NewResolver constructs a Resolver seeded with DefaultReservedWords.
func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{
		mappings: make(map[string]string),
		reserved: make(map[string]struct{}, len(DefaultReservedWords)),
	}
	for _, word := range DefaultReservedWords {
		r.reserved[word] = struct{}{}
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve maps hint through the mapping table, keeps the segment after the
// last '.', and returns it unchanged when free. Otherwise it appends the
// smallest integer >= 2 that yields a free name. An empty hint resolves as
// AnonymousName. The scope is not modified.
func (r *Resolver) Resolve(hint string, scope *Scope) string {
	if hint == "" {
		return r.Resolve(AnonymousName, scope)
	}
	if r == nil {
		r = defaultResolver
	}

	if mapped, ok := r.mappings[hint]; ok {
		hint = mapped
	}
	if idx := strings.LastIndexByte(hint, '.'); idx >= 0 {
		hint = hint[idx+1:]
	}
	if hint == "" {
		return r.Resolve(AnonymousName, scope)
	}

	if !r.Taken(hint, scope) {
		return hint
	}
	return r.numbered(hint, scope)
}

// Mapped reports the mapping for hint, if any.
func (r *Resolver) Mapped(hint string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.mappings[hint]
	return name, ok
}

// Taken reports whether name is reserved by the scope or is a reserved word.
func (r *Resolver) Taken(name string, scope *Scope) bool {
	if scope.Contains(name) {
		return true
	}
	if r == nil {
		return false
	}
	_, ok := r.reserved[name]
	return ok
}

// numbered returns base followed by the smallest free counter starting at 2.
func (r *Resolver) numbered(base string, scope *Scope) string {
	for count := 2; ; count++ {
		candidate := base + strconv.Itoa(count)
		if !r.Taken(candidate, scope) {
			return candidate
		}
	}
}

var defaultResolver = NewResolver()
