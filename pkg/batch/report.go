package batch

// ScopeReport summarises one generation scope.
type ScopeReport struct {
	Folder    string
	Namespace string
	Generated int
	Skipped   []string
	// Failed is the file that aborted the run, if any.
	Failed  string
	Written []string
}

// Report summarises a run.
type Report struct {
	Scopes []ScopeReport
}

// Generated returns the number of schema files generated across scopes.
func (r Report) Generated() int {
	total := 0
	for _, scope := range r.Scopes {
		total += scope.Generated
	}
	return total
}

// Skipped returns the number of schema files skipped after a failure.
func (r Report) Skipped() int {
	total := 0
	for _, scope := range r.Scopes {
		total += len(scope.Skipped)
	}
	return total
}

// Written returns every written output path in write order.
func (r Report) Written() []string {
	var out []string
	for _, scope := range r.Scopes {
		out = append(out, scope.Written...)
	}
	return out
}
