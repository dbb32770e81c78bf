// Package testutil provides shared test infrastructure for the plantgen
// packages.
package testutil

import "testing"

// ScriptedSource replays a fixed sequence of uniform draws.
// It fails the test when more draws are requested than scripted.
type ScriptedSource struct {
	t      testing.TB
	values []float64
	next   int
}

// NewScriptedSource returns a source yielding values in order.
func NewScriptedSource(t testing.TB, values ...float64) *ScriptedSource {
	return &ScriptedSource{t: t, values: values}
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	if s.next >= len(s.values) {
		s.t.Fatalf("scripted source exhausted after %d draws", len(s.values))
		return 0
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Used returns how many values were drawn.
func (s *ScriptedSource) Used() int {
	return s.next
}
