// Package matrix implements a matrix-collection training sink: for
// each accepted analysis it emits a sparse transition-ID histogram,
// tracks per-word recognition, and reports a running recognition rate.
package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hlt-bme-hu/attol-go/fst"
	"github.com/hlt-bme-hu/attol-go/internal/sparse"
	"github.com/hlt-bme-hu/attol-go/lookup"
)

// Collector is a lookup.Sink plus the bookkeeping a training run needs
// around it: the per-path sparse histogram, the four output streams,
// and the running recognition counters.
type Collector struct {
	model  *fst.Model
	engine *lookup.Engine
	opts   lookup.Options

	pWriter, mWriter, probWriter, unrecognizedWriter io.Writer

	counter *sparse.Counter

	numPaths    uint64
	numAnalyses int // accepted paths for the word currently being processed

	numInput, numRecognized uint64
	totalWeight             float64
	recognizedWeight        float64
}

// Streams names the four output files a training run writes: suffixes
// ".P", ".M", ".prob", and ".unrecognized".
type Streams struct {
	P, M, Prob, Unrecognized io.Writer
}

// NewCollector creates a Collector that looks up words in model under
// opts and writes to streams.
func NewCollector(model *fst.Model, opts lookup.Options, streams Streams) *Collector {
	return &Collector{
		model:              model,
		engine:             lookup.NewEngine(model),
		opts:               opts,
		pWriter:            streams.P,
		mWriter:            streams.M,
		probWriter:         streams.Prob,
		unrecognizedWriter: streams.Unrecognized,
		counter:            sparse.NewCounter(16),
	}
}

// sink is the lookup.Sink passed to every Lookup call: it compresses
// the accepted path into a sorted transition-ID histogram and writes
// one ".P" row plus one ".M" pair.
func (c *Collector) sink(path lookup.Path) {
	c.counter.Reset()
	for _, v := range path {
		c.counter.Insert(v.TransitionIndex)
	}
	c.counter.Iter(func(id, count uint32) {
		fmt.Fprintf(c.pWriter, "%d %d ", id, count)
	})
	fmt.Fprintln(c.pWriter)
	fmt.Fprintf(c.mWriter, "%d %d ", c.numPaths, 1)
	c.numPaths++
	c.numAnalyses++
}

// splitWeight parses a training-mode input line "word\tweight", with
// weight defaulting to 1.0 when no tab is present.
func splitWeight(line string) (word string, weight float64) {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		w, err := strconv.ParseFloat(line[i+1:], 64)
		if err != nil {
			w = 1
		}
		return line[:i], w
	}
	return line, 1
}

// ProcessWord runs one lookup for line (word, optionally "\tweight"),
// writing .P/.M rows for every accepted analysis and exactly one line
// to .prob or .unrecognized.
func (c *Collector) ProcessWord(line string) {
	word, weight := splitWeight(line)
	c.totalWeight += weight
	c.numInput++
	c.numAnalyses = 0

	c.engine.Lookup([]byte(word), c.opts, c.sink)

	if c.numAnalyses > 0 {
		fmt.Fprintf(c.probWriter, "%g\n", weight)
		fmt.Fprintln(c.mWriter)
		c.numRecognized++
		c.recognizedWeight += weight
	} else {
		fmt.Fprintf(c.unrecognizedWriter, "%g\n", weight)
	}
}

// Run reads one word per line from r until EOF, calling ProcessWord for
// each, and writes periodic progress to progress (nil disables it).
func (c *Collector) Run(r io.Reader, progress io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		c.ProcessWord(scanner.Text())
		if progress != nil && c.numInput&((1<<12)-1) == 0 {
			c.reportProgress(progress)
		}
	}
	if progress != nil {
		c.reportProgress(progress)
	}
	return scanner.Err()
}

func (c *Collector) reportProgress(w io.Writer) {
	var pct, probPct float64
	if c.numInput > 0 {
		pct = 100 * float64(c.numRecognized) / float64(c.numInput)
	}
	if c.totalWeight != 0 {
		probPct = 100 * c.recognizedWeight / c.totalWeight
	}
	fmt.Fprintf(w, "\r%d words processed, %6.2f%% of them were recognized, probability of recognition is %6.2f%%",
		c.numInput, pct, probPct)
}

// Stats returns the running counters, e.g. for a caller that wants to
// report final numbers itself instead of via Run's progress writer.
func (c *Collector) Stats() (numInput, numRecognized uint64, totalWeight, recognizedWeight float64) {
	return c.numInput, c.numRecognized, c.totalWeight, c.recognizedWeight
}
