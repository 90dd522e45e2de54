package flagdiacritic

import "testing"

func compileOne(t *testing.T, op Op, feature, value string) (*Engine, int) {
	t.Helper()
	e := NewEngine(64)
	if err := e.Observe("@tok@", op, feature, value); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if err := e.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return e, 0
}

func TestApplyPositiveSetsField(t *testing.T) {
	e, i := compileOne(t, Positive, "Case", "Nom")
	ok, s := e.Apply(i, 0)
	if !ok {
		t.Fatalf("P should always accept")
	}
	lo, hi := e.Offsets()[0], e.Offsets()[1]
	if s.field(lo, hi) != 1 {
		t.Fatalf("expected field set to value-index 1, got %d", s.field(lo, hi))
	}
}

func TestApplyNegativeSetsNegative(t *testing.T) {
	e, i := compileOne(t, Negative, "Case", "Nom")
	ok, s := e.Apply(i, 0)
	if !ok {
		t.Fatalf("N should always accept")
	}
	lo, hi := e.Offsets()[0], e.Offsets()[1]
	if s.field(lo, hi) != -1 {
		t.Fatalf("expected field set to -1, got %d", s.field(lo, hi))
	}
}

func TestApplyRequireEmptyOperand(t *testing.T) {
	e, i := compileOne(t, Require, "Case", "")
	if ok, _ := e.Apply(i, 0); ok {
		t.Fatalf("R with empty operand should reject on unset field")
	}
	set := State(0).withField(e.Offsets()[0], e.Offsets()[1], 1)
	if ok, _ := e.Apply(i, set); !ok {
		t.Fatalf("R with empty operand should accept on set field")
	}
}

func TestApplyDisallowNonEmpty(t *testing.T) {
	pos, pi := compileOne(t, Positive, "Case", "Nom")
	_, setState := pos.Apply(pi, 0)

	e := NewEngine(64)
	if err := e.Observe("@tok@", Disallow, "Case", "Nom"); err != nil {
		t.Fatal(err)
	}
	if err := e.Compile(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.Apply(0, setState); ok {
		t.Fatalf("D.Case.Nom should reject when Case is already Nom")
	}
	if ok, _ := e.Apply(0, 0); !ok {
		t.Fatalf("D.Case.Nom should accept when Case is unset")
	}
}

func TestApplyUnification(t *testing.T) {
	e := NewEngine(64)
	if err := e.Observe("@u@", Unification, "Case", "Nom"); err != nil {
		t.Fatal(err)
	}
	if err := e.Observe("@n@", Negative, "Case", "Acc"); err != nil {
		t.Fatal(err)
	}
	if err := e.Compile(); err != nil {
		t.Fatal(err)
	}
	// Unset -> accept, sets positive.
	ok, s := e.Apply(0, 0)
	if !ok {
		t.Fatalf("U should accept on unset field")
	}
	// Same positive value again -> accept, idempotent.
	ok, s2 := e.Apply(0, s)
	if !ok || s2 != s {
		t.Fatalf("U should accept and not change an already-matching positive value")
	}
	// Negatively set to a *different* value -> accept.
	_, neg := e.Apply(1, 0) // N.Case.Acc
	ok, _ = e.Apply(0, neg)
	if !ok {
		t.Fatalf("U.Case.Nom should accept when Case is negatively set to something else")
	}
}

func TestApplyUnificationRejectsConflict(t *testing.T) {
	e := NewEngine(64)
	if err := e.Observe("@u@", Unification, "Case", "Nom"); err != nil {
		t.Fatal(err)
	}
	if err := e.Observe("@u2@", Unification, "Case", "Acc"); err != nil {
		t.Fatal(err)
	}
	if err := e.Compile(); err != nil {
		t.Fatal(err)
	}
	_, nomState := e.Apply(0, 0)
	if ok, _ := e.Apply(1, nomState); ok {
		t.Fatalf("U.Case.Acc should reject when Case is already positively Nom")
	}
}

func TestCompileOverflow(t *testing.T) {
	e := NewEngine(32) // narrowest supported width
	for i := 0; i < 300; i++ {
		val := string(rune('a' + i%26))
		feat := "F" + val // 26 features of 11-12 values, 5 bits each
		if err := e.Observe("@t"+val+"@", Positive, feat, val+string(rune(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Compile(); err == nil {
		t.Fatalf("expected overflow error for width-32 engine needing 130 bits")
	}
}

func TestAttemptedResultNegativeStrategy(t *testing.T) {
	// One engine, so Acc (value index 1) and Nom (value index 2) share
	// an index space.
	e := NewEngine(64)
	if err := e.Observe("@t@", Unification, "Case", "Acc"); err != nil {
		t.Fatal(err)
	}
	if err := e.Observe("@n@", Unification, "Case", "Nom"); err != nil {
		t.Fatal(err)
	}
	if err := e.Compile(); err != nil {
		t.Fatal(err)
	}
	_, setNom := e.Apply(1, 0)
	ok, attempted := e.AttemptedResult(0, setNom)
	if ok {
		t.Fatalf("expected rejection")
	}
	lo, hi := e.Offsets()[0], e.Offsets()[1]
	if attempted.field(lo, hi) != 1 {
		t.Fatalf("expected attempted field to hold the forced value, got %d", attempted.field(lo, hi))
	}
}
