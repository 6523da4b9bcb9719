package subject

import "strings"

// Set holds the configured subjects students can book. The scheduler does
// not hardcode the subject list; deployments inject it through configuration
// so that exclusivity rules generalize to any number of subjects.
type Set struct {
	canonical []string          // configured order preserved for listings
	byKey     map[string]string // normalized key -> canonical name
}

// Known spelling variants coming from the PBL side.
var aliases = map[string]string{
	"full stack web development": "Web Development",
	"fullstack web development":  "Web Development",
	"fswd":                       "Web Development",
	"web dev":                    "Web Development",
	"webdevelopment":             "Web Development",
	"compilerdesign":             "Compiler Design",
	"cd":                         "Compiler Design",
}

// NewSet builds a subject set from the configured names. Blank entries are
// dropped; duplicates (after normalization) collapse to the first occurrence.
func NewSet(names []string) *Set {
	s := &Set{byKey: make(map[string]string)}
	for _, name := range names {
		canonical := strings.TrimSpace(name)
		if canonical == "" {
			continue
		}
		key := normKey(canonical)
		if _, ok := s.byKey[key]; ok {
			continue
		}
		s.byKey[key] = canonical
		s.canonical = append(s.canonical, canonical)
	}
	return s
}

// All returns the configured subjects in configuration order.
func (s *Set) All() []string {
	out := make([]string, len(s.canonical))
	copy(out, s.canonical)
	return out
}

// Normalize maps a raw subject string to its canonical form. Unknown
// subjects come back trimmed but otherwise untouched, so callers can still
// report the offending value.
func (s *Set) Normalize(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}

	key := normKey(raw)
	if canonical, ok := s.byKey[key]; ok {
		return canonical
	}

	// Alias match, but only onto subjects this deployment actually carries.
	if mapped, ok := aliases[key]; ok {
		if canonical, found := s.byKey[normKey(mapped)]; found {
			return canonical
		}
	}

	return raw
}

// Contains reports whether value names a configured subject.
func (s *Set) Contains(value string) bool {
	_, ok := s.byKey[normKey(s.Normalize(value))]
	return ok
}

// normKey lowercases and collapses whitespace.
func normKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
