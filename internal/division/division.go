// Package division holds the set of known organizational divisions and
// resolves free-text division lists against it.
//
// The list itself lives outside the process (a settings file) and is
// refreshed periodically. Readers always see one complete snapshot: a reload
// builds a new immutable Snapshot and swaps it in atomically.
package division

import (
	"regexp"
	"strings"
	"sync/atomic"
)

// ErrorName is the display name of the sentinel division produced for
// tokens that do not match any known division.
const ErrorName = "error"

// Division is an organizational unit tag. Equality is by name.
type Division struct {
	Name string
}

// Error is the sentinel division for unmatched tokens.
var Error = Division{Name: ErrorName}

// IsError reports whether d is the unmatched-token sentinel.
func (d Division) IsError() bool { return d == Error }

func (d Division) String() string { return d.Name }

var listSeparators = regexp.MustCompile(`[,;\s]+`)

// Snapshot is an immutable view of the known division names.
type Snapshot struct {
	names []string
	index map[string]struct{}
}

func newSnapshot(names []string) *Snapshot {
	s := &Snapshot{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := s.index[n]; dup {
			continue
		}
		s.index[n] = struct{}{}
		s.names = append(s.names, n)
	}
	return s
}

// Names returns the division names in configured order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of known divisions.
func (s *Snapshot) Len() int { return len(s.names) }

// Lookup maps a name to its division by exact match, or to Error.
func (s *Snapshot) Lookup(name string) Division {
	if _, ok := s.index[name]; ok {
		return Division{Name: name}
	}
	return Error
}

// Registry holds the current Snapshot. It is safe for concurrent use.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// NewRegistry returns a registry seeded with names.
func NewRegistry(names ...string) *Registry {
	r := &Registry{}
	r.current.Store(newSnapshot(names))
	return r
}

// Snapshot returns the snapshot in effect right now. Callers that resolve
// several lists for one row should hold on to a single snapshot.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Replace swaps in a new list. Concurrent readers see either the old or the
// new list, never a mix.
func (r *Registry) Replace(names []string) {
	r.current.Store(newSnapshot(names))
}

// Current returns the known divisions.
func (r *Registry) Current() []Division {
	names := r.Snapshot().names
	out := make([]Division, len(names))
	for i, n := range names {
		out[i] = Division{Name: n}
	}
	return out
}

// Names returns the known division names.
func (r *Registry) Names() []string {
	return r.Snapshot().Names()
}

// ParseList resolves text against the current snapshot.
func (r *Registry) ParseList(text string) []Division {
	return r.Snapshot().ParseList(text)
}

// ParseList splits text on commas, semicolons and whitespace runs and maps
// every token to a known division. Unmatched tokens become Error and stay in
// the result at their position.
func (s *Snapshot) ParseList(text string) []Division {
	tokens := SplitTokens(text)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]Division, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, s.Lookup(tok))
	}
	return out
}

// SplitTokens splits a division list into trimmed, non-empty tokens.
func SplitTokens(text string) []string {
	parts := listSeparators.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Render joins display names with ", ".
func Render(list []Division) string {
	names := make([]string, len(list))
	for i, d := range list {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}

// ContainsError reports whether any entry is the Error sentinel.
func ContainsError(list []Division) bool {
	for _, d := range list {
		if d.IsError() {
			return true
		}
	}
	return false
}
