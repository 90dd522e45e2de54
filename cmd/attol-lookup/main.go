// Command attol-lookup is a thin driver over the transducer library
// packages: it loads a transducer (AT&T text or binary snapshot), then
// either prints every accepted analysis for each input word or, in
// training mode, runs the matrix collector over a weighted word list.
// All decision logic lives in loader, lookup, snapshot and matrix; this
// file only parses flags and wires streams together.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"

	"github.com/hlt-bme-hu/attol-go/encoding"
	"github.com/hlt-bme-hu/attol-go/fst"
	"github.com/hlt-bme-hu/attol-go/fst/loader"
	"github.com/hlt-bme-hu/attol-go/lookup"
	"github.com/hlt-bme-hu/attol-go/matrix"
	"github.com/hlt-bme-hu/attol-go/snapshot"
)

func parseEncoding(s string) (encoding.Kind, error) {
	switch strings.ToUpper(s) {
	case "ASCII":
		return encoding.ASCII, nil
	case "CP", "OCTET":
		return encoding.OCTET, nil
	case "UTF8", "UTF-8":
		return encoding.UTF8, nil
	case "UCS2":
		return encoding.UCS2, nil
	case "UTF16", "UTF-16":
		return encoding.UTF16, nil
	case "UTF32", "UTF-32":
		return encoding.UTF32, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

func parseStrategy(s string) (lookup.Strategy, error) {
	switch strings.ToUpper(s) {
	case "OBEY":
		return lookup.OBEY, nil
	case "IGNORE":
		return lookup.IGNORE, nil
	case "NEGATIVE":
		return lookup.NEGATIVE, nil
	default:
		return 0, fmt.Errorf("unknown flag strategy %q", s)
	}
}

func main() {
	var (
		transducerPath string
		inputPath      string
		outputPath     string
		encName        string
		strategyName   string
		maxResults     int
		maxDepth       int
		timeLimitStr   string
		snapshotIn     bool
		trainPrefix    string
	)

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription("Looks up words against a transducer (AT&T text or binary snapshot), or collects a training matrix over a weighted word list.")

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&transducerPath, "transducer", "m", "", "transducer filename (required)"),
		flagSet.StringVarP(&inputPath, "input", "i", "", "input file to analyze, stdin if empty"),
		flagSet.BoolVar(&snapshotIn, "snapshot", false, "the transducer file is a binary snapshot, not AT&T text"),
	)
	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&outputPath, "output", "o", "", "output file, stdout if empty"),
	)
	flagSet.CreateGroup("lookup", "Lookup",
		flagSet.StringVarP(&encName, "encoding", "e", "UTF8", "encoding of the transducer and input/output (ASCII, CP, UTF8, UCS2, UTF16, UTF32)"),
		flagSet.StringVarP(&strategyName, "flags", "f", "OBEY", "flag diacritic strategy (OBEY, IGNORE, NEGATIVE)"),
		flagSet.IntVarP(&maxResults, "max-results", "n", 0, "max number of results for one word, unlimited if 0"),
		flagSet.IntVarP(&maxDepth, "max-depth", "d", 0, "maximum traversal depth, unlimited if 0"),
		flagSet.StringVarP(&timeLimitStr, "time-limit", "t", "0s", "time limit per word (Go duration syntax), unlimited if 0s"),
	)
	flagSet.CreateGroup("training", "Training",
		flagSet.StringVar(&trainPrefix, "train", "", "run in training mode, writing <prefix>.P/.M/.prob/.unrecognized instead of printing analyses"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not parse flags: %s", err)
	}
	if transducerPath == "" {
		gologger.Fatal().Msg("missing required -m/-transducer flag")
	}

	enc, err := parseEncoding(encName)
	if err != nil {
		gologger.Fatal().Msg(err.Error())
	}
	strat, err := parseStrategy(strategyName)
	if err != nil {
		gologger.Fatal().Msg(err.Error())
	}
	timeLimit, err := time.ParseDuration(timeLimitStr)
	if err != nil {
		gologger.Fatal().Msgf("invalid -t duration %q: %s", timeLimitStr, err)
	}

	model, err := loadModel(transducerPath, enc, snapshotIn)
	if err != nil {
		gologger.Fatal().Msg(err.Error())
	}
	gologger.Info().Msgf("loaded transducer: %d states, %d transitions", model.NumStates(), len(model.Transitions))

	input, output, err := openStreams(inputPath, outputPath)
	if err != nil {
		gologger.Fatal().Msg(err.Error())
	}
	defer input.Close()
	defer output.Close()

	opts := lookup.Options{
		Encoding:   enc,
		Strategy:   strat,
		MaxResults: maxResults,
		MaxDepth:   maxDepth,
		TimeLimit:  timeLimit,
	}

	if trainPrefix != "" {
		if err := runTraining(model, opts, input, trainPrefix); err != nil {
			gologger.Fatal().Msg(err.Error())
		}
		return
	}
	runLookup(model, opts, input, output)
}

func loadModel(path string, enc encoding.Kind, isSnapshot bool) (*fst.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	if isSnapshot {
		return snapshot.Read(f, enc, fst.Width32)
	}
	opts := loader.DefaultOptions()
	return loader.Load(f, opts)
}

func openStreams(inputPath, outputPath string) (io.ReadCloser, io.WriteCloser, error) {
	input := io.ReadCloser(os.Stdin)
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening input %q: %w", inputPath, err)
		}
		input = f
	}
	output := io.WriteCloser(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			input.Close()
			return nil, nil, fmt.Errorf("opening output %q: %w", outputPath, err)
		}
		output = f
	}
	return input, output, nil
}

// runLookup prints one line of output tape per accepted analysis, a
// bare "?" line when a word had none, and a blank line separating words.
func runLookup(model *fst.Model, opts lookup.Options, input io.Reader, output io.Writer) {
	engine := lookup.NewEngine(model)
	w := bufio.NewWriter(output)
	defer w.Flush()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		word := strings.TrimSuffix(scanner.Text(), "\r")
		hasAnalyses := false
		engine.Lookup([]byte(word), opts, func(path lookup.Path) {
			hasAnalyses = true
			for _, v := range path {
				if v.Output != model.Empty {
					w.WriteString(model.Symbols.TextOf(v.Output))
				}
			}
			w.WriteByte('\n')
		})
		if !hasAnalyses {
			w.WriteString("?\n")
		}
		w.WriteByte('\n')
	}
}

func runTraining(model *fst.Model, opts lookup.Options, input io.Reader, prefix string) error {
	pFile, err := os.Create(prefix + ".P")
	if err != nil {
		return err
	}
	defer pFile.Close()
	mFile, err := os.Create(prefix + ".M")
	if err != nil {
		return err
	}
	defer mFile.Close()
	probFile, err := os.Create(prefix + ".prob")
	if err != nil {
		return err
	}
	defer probFile.Close()
	unrecognizedFile, err := os.Create(prefix + ".unrecognized")
	if err != nil {
		return err
	}
	defer unrecognizedFile.Close()

	collector := matrix.NewCollector(model, opts, matrix.Streams{
		P:            pFile,
		M:            mFile,
		Prob:         probFile,
		Unrecognized: unrecognizedFile,
	})
	start := time.Now()
	if err := collector.Run(input, os.Stderr); err != nil {
		return err
	}
	gologger.Info().Msgf("training complete in %s", time.Since(start))
	return nil
}
