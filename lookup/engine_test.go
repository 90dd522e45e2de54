package lookup

import (
	"strings"
	"testing"

	"github.com/hlt-bme-hu/attol-go/fst/loader"
)

func TestLookupS1EpsilonIdentity(t *testing.T) {
	text := "0\t1\ta\tA\t0\n1\t2\t@_IDENTITY_SYMBOL_@\t@_IDENTITY_SYMBOL_@\t0\n2\t0\n"
	m, err := loader.Load(strings.NewReader(text), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)
	var got []Path
	e.Lookup([]byte("ab"), DefaultOptions(), func(p Path) {
		cp := make(Path, len(p))
		copy(cp, p)
		got = append(got, cp)
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 path, got %d", len(got))
	}
	var output []string
	for _, v := range got[0] {
		if s := m.Symbols.TextOf(v.Output); s != "" {
			output = append(output, s)
		}
	}
	text2 := strings.Join(output, "")
	if text2 != "Ab" {
		t.Fatalf("expected output tape %q, got %q", "Ab", text2)
	}
}

func TestLookupS3WeightAccumulation(t *testing.T) {
	text := "0\t1\ta\ta\t0.5\n1\t2\tb\tb\t0.25\n2\t1.0\n"
	m, err := loader.Load(strings.NewReader(text), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)
	var total float64
	count := 0
	e.Lookup([]byte("ab"), DefaultOptions(), func(p Path) {
		total = p.Weight()
		count++
	})
	if count != 1 {
		t.Fatalf("expected 1 result, got %d", count)
	}
	if total != 1.75 {
		t.Fatalf("expected total weight 1.75, got %v", total)
	}
}

func TestLookupS4Bounds(t *testing.T) {
	// 10 distinct paths spelling "aa": five parallel state0 --a--> state1
	// edges times two parallel state1 --a--> state2 edges (duplicate rows
	// with identical columns are legal distinct transitions).
	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("0\t1\ta\ta\t0\n")
	}
	for i := 0; i < 2; i++ {
		b.WriteString("1\t2\ta\ta\t0\n")
	}
	b.WriteString("2\t0\n")
	m, err := loader.Load(strings.NewReader(b.String()), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)
	opts := DefaultOptions()
	opts.MaxResults = 3
	count := 0
	e.Lookup([]byte("aa"), opts, func(p Path) { count++ })
	if count != 3 {
		t.Fatalf("expected exactly 3 results with MaxResults=3, got %d", count)
	}

	opts2 := DefaultOptions()
	opts2.MaxDepth = 2
	count2 := 0
	e.Lookup([]byte("aa"), opts2, func(p Path) { count2++ })
	if count2 != 0 {
		t.Fatalf("expected 0 results with MaxDepth=2 (accept needs depth 3), got %d", count2)
	}
}

func TestLookupS5DanglingEdge(t *testing.T) {
	text := "0\t1\ta\ta\t0\n" // state 1 never defined: dangling
	m, err := loader.Load(strings.NewReader(text), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)
	count := 0
	e.Lookup([]byte("a"), DefaultOptions(), func(p Path) { count++ })
	if count != 0 {
		t.Fatalf("expected 0 results through a dangling edge, got %d", count)
	}
}

func TestLookupIdempotent(t *testing.T) {
	text := "0\t1\ta\tA\t0\n1\t0\n"
	m, err := loader.Load(strings.NewReader(text), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)
	run := func() []float64 {
		var ws []float64
		e.Lookup([]byte("a"), DefaultOptions(), func(p Path) { ws = append(ws, p.Weight()) })
		return ws
	}
	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("result count changed between identical runs")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("result %d changed between identical runs", i)
		}
	}
}

func TestLookupFlagNegativeStrategy(t *testing.T) {
	// Branch sets Case=Nom via U, final path requires Case=Acc via U: OBEY
	// rejects, NEGATIVE accepts via the flag_failed escape hatch.
	text := "0\t1\t@U.Case.Nom@\t@U.Case.Nom@\t0\n" +
		"1\t2\t@U.Case.Acc@\t@U.Case.Acc@\t0\n" +
		"2\t0\n"
	m, err := loader.Load(strings.NewReader(text), loader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(m)

	obeyOpts := DefaultOptions()
	obeyOpts.Strategy = OBEY
	obeyCount := 0
	e.Lookup([]byte(""), obeyOpts, func(p Path) { obeyCount++ })
	if obeyCount != 0 {
		t.Fatalf("OBEY should reject the conflicting Case unification, got %d results", obeyCount)
	}

	negOpts := DefaultOptions()
	negOpts.Strategy = NEGATIVE
	negCount := 0
	e.Lookup([]byte(""), negOpts, func(p Path) { negCount++ })
	if negCount < 1 {
		t.Fatalf("NEGATIVE should yield at least 1 result via the flag_failed branch, got %d", negCount)
	}
}
