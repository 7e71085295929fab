package naming

// Scope is an ordered set of identifiers already allocated in one generation
// scope. It only grows; there is no way to release a name.
type Scope struct {
	names []string
	index map[string]struct{}
}

// NewScope returns a scope pre-seeded with the provided names.
func NewScope(names ...string) *Scope {
	s := &Scope{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.Reserve(name)
	}
	return s
}

// Reserve records name. Reserving an existing or empty name is a no-op.
func (s *Scope) Reserve(name string) {
	if s == nil || name == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
}

// Contains reports whether name is reserved. A nil scope holds nothing.
func (s *Scope) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Names returns the reserved names in allocation order.
func (s *Scope) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Len returns the number of reserved names.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
