package fst

import (
	"testing"

	"github.com/hlt-bme-hu/attol-go/symbol"
)

func TestBuilderBasicBlockOrder(t *testing.T) {
	b := NewBuilder(10, 8, 9)
	if err := b.AddTransition("0", "1", 1, 1, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFinal("1", 0); err != nil {
		t.Fatal(err)
	}
	m, err := b.Finish(Width32, symbol.NewTable(), nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if m.NumStates() != 2 {
		t.Fatalf("expected 2 states, got %d", m.NumStates())
	}
	start, end := m.Block(0)
	if end-start != 1 || m.Transitions[start].To != 1 {
		t.Fatalf("state 0 block wrong: %+v", m.Transitions[start:end])
	}
	start, end = m.Block(1)
	if end-start != 1 || !m.Transitions[start].IsFinal() {
		t.Fatalf("state 1 block wrong: %+v", m.Transitions[start:end])
	}
}

func TestBuilderRejectsRevisit(t *testing.T) {
	b := NewBuilder(10, 8, 9)
	mustOK(t, b.AddTransition("0", "1", 1, 1, 0))
	mustOK(t, b.AddTransition("1", "2", 1, 1, 0))
	if err := b.AddTransition("0", "2", 1, 1, 0); err == nil {
		t.Fatalf("expected LoadOrder error on revisiting a closed state")
	}
}

func TestBuilderDanglingTarget(t *testing.T) {
	b := NewBuilder(10, 8, 9)
	mustOK(t, b.AddTransition("0", "99", 1, 1, 0))
	m, err := b.Finish(Width32, symbol.NewTable(), nil)
	if err != nil {
		t.Fatal(err)
	}
	start, _ := m.Block(0)
	tr := m.Transitions[start]
	if tr.To != m.Dangling() {
		t.Fatalf("expected dangling target, got %d (dangling=%d)", tr.To, m.Dangling())
	}
	s, e := m.Block(m.Dangling())
	if s != e {
		t.Fatalf("dangling block should be empty, got [%d,%d)", s, e)
	}
}

func TestBuilderBlockGroupOrder(t *testing.T) {
	b := NewBuilder(100, 50, 51)
	mustOK(t, b.AddFinal("0", 1.0))            // final: group 0
	mustOK(t, b.AddTransition("0", "1", 5, 5, 0))  // ordinary: group 3
	mustOK(t, b.AddTransition("0", "1", 100, 100, 0)) // flag: group 2
	mustOK(t, b.AddTransition("0", "1", 0, 0, 0))  // epsilon: group 1
	mustOK(t, b.AddTransition("0", "1", 51, 51, 0)) // unknown wildcard: group 4
	m, err := b.Finish(Width32, symbol.NewTable(), nil)
	if err != nil {
		t.Fatal(err)
	}
	start, end := m.Block(0)
	got := m.Transitions[start:end]
	wantGroups := []int{groupFinal, groupEpsilon, groupFlag, groupOrdinary, groupWildcard}
	if len(got) != len(wantGroups) {
		t.Fatalf("expected %d transitions, got %d", len(wantGroups), len(got))
	}
	for i, tr := range got {
		g := b.group(rawRow{final: tr.IsFinal(), input: tr.InputSym})
		if g != wantGroups[i] {
			t.Fatalf("position %d: expected group %d, got %d (%+v)", i, wantGroups[i], g, tr)
		}
	}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
