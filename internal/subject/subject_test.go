package subject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSet() *Set {
	return NewSet([]string{"Web Development", "Compiler Design"})
}

func TestNormalize(t *testing.T) {
	s := newTestSet()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact match", "Web Development", "Web Development"},
		{"case insensitive", "web development", "Web Development"},
		{"extra whitespace", "  Compiler   Design ", "Compiler Design"},
		{"alias fswd", "FSWD", "Web Development"},
		{"alias web dev", "web dev", "Web Development"},
		{"alias cd", "CD", "Compiler Design"},
		{"unknown passes through trimmed", " Quantum Basket Weaving ", "Quantum Basket Weaving"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Normalize(tt.input))
		})
	}
}

func TestContains(t *testing.T) {
	s := newTestSet()

	assert.True(t, s.Contains("Web Development"))
	assert.True(t, s.Contains("compiler design"))
	assert.True(t, s.Contains("fswd"))
	assert.False(t, s.Contains("DAA"))
	assert.False(t, s.Contains(""))
}

func TestAliasOnlyMapsConfiguredSubjects(t *testing.T) {
	// A deployment without "Web Development" must not resolve its aliases.
	s := NewSet([]string{"Compiler Design"})

	assert.Equal(t, "fswd", s.Normalize("fswd"))
	assert.False(t, s.Contains("fswd"))
}

func TestAllPreservesOrderAndDedupes(t *testing.T) {
	s := NewSet([]string{"Web Development", " Compiler Design", "web development", ""})

	assert.Equal(t, []string{"Web Development", "Compiler Design"}, s.All())
}
