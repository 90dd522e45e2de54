package loader

import (
	"strings"
	"testing"
)

func TestLoadS1EpsilonIdentity(t *testing.T) {
	text := "0\t1\ta\tA\t0\n1\t2\t@_IDENTITY_SYMBOL_@\t@_IDENTITY_SYMBOL_@\t0\n2\t0\n"
	m, err := Load(strings.NewReader(text), DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.NumStates() != 3 {
		t.Fatalf("expected 3 states, got %d", m.NumStates())
	}
	s0, e0 := m.Block(0)
	if e0-s0 != 1 {
		t.Fatalf("state 0 should have 1 transition")
	}
	tr := m.Transitions[s0]
	if m.Symbols.TextOf(tr.InputSym) != "a" || m.Symbols.TextOf(tr.OutputSym) != "A" {
		t.Fatalf("unexpected symbols on state 0 transition: %+v", tr)
	}
	s1, e1 := m.Block(1)
	if e1-s1 != 1 || m.Transitions[s1].InputSym != m.Identity {
		t.Fatalf("state 1 should have a single identity transition: %+v", m.Transitions[s1:e1])
	}
	s2, e2 := m.Block(2)
	if e2-s2 != 1 || !m.Transitions[s2].IsFinal() {
		t.Fatalf("state 2 should have a single final transition")
	}
}

func TestLoadRejectsBadColumnCount(t *testing.T) {
	text := "0\t1\tx\n" // 3 columns: illegal
	if _, err := Load(strings.NewReader(text), DefaultOptions()); err == nil {
		t.Fatalf("expected error for 3-column row")
	}
}

func TestLoadRejectsNonContiguousState(t *testing.T) {
	text := "0\t1\ta\ta\t0\n1\t2\tb\tb\t0\n0\t2\tc\tc\t0\n"
	if _, err := Load(strings.NewReader(text), DefaultOptions()); err == nil {
		t.Fatalf("expected LoadOrder error for revisited state 0")
	}
}

func TestLoadFlagDiacriticRoundTrip(t *testing.T) {
	text := "0\t1\t@U.Case.Nom@\t@U.Case.Nom@\t0\n1\t0\n"
	m, err := Load(strings.NewReader(text), DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s0, e0 := m.Block(0)
	if e0-s0 != 1 {
		t.Fatalf("expected a single flag transition")
	}
	tr := m.Transitions[s0]
	if tr.InputSym < m.FlagBase {
		t.Fatalf("flag transition input should be >= FlagBase, got %d (base %d)", tr.InputSym, m.FlagBase)
	}
	op := m.Flags.Op(int(tr.InputSym - m.FlagBase))
	if op.Op != 'U' {
		t.Fatalf("expected Unification op, got %c", op.Op)
	}
}

func TestLoadDanglingTarget(t *testing.T) {
	text := "0\t1\ta\ta\t0\n"
	m, err := Load(strings.NewReader(text), DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s0, _ := m.Block(0)
	if m.Transitions[s0].To != m.Dangling() {
		t.Fatalf("expected dangling target for state 1 (never defined)")
	}
}
