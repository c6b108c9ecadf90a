package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/strandline/hicqc/internal/analysis"
	"github.com/strandline/hicqc/internal/config"
	"github.com/strandline/hicqc/internal/contact"
	"github.com/strandline/hicqc/internal/matrixio"
	"github.com/strandline/hicqc/internal/report"
	"github.com/strandline/hicqc/internal/store"
	"github.com/strandline/hicqc/internal/trends"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	log := newLogger(hasFlag(os.Args[2:], "--verbose"))

	switch os.Args[1] {
	case "analyze":
		if len(os.Args) < 3 {
			fatal("usage: hicqc analyze <matrix.tsv[.zst]>")
		}
		if err := runAnalyze(cfg, log, os.Args[2], os.Args[3:]); err != nil {
			fatal("analyze: %v", err)
		}

	case "history":
		if len(os.Args) < 3 {
			fatal("usage: hicqc history <matrix.tsv[.zst]>")
		}
		if err := runHistory(cfg, os.Args[2]); err != nil {
			fatal("history: %v", err)
		}

	case "watch":
		if len(os.Args) < 3 {
			fatal("usage: hicqc watch <matrix.tsv[.zst]>")
		}
		if err := runWatch(cfg, log, os.Args[2], os.Args[3:]); err != nil {
			fatal("watch: %v", err)
		}

	case "check":
		if len(os.Args) < 3 {
			fatal("usage: hicqc check <matrix.tsv[.zst]>")
		}
		if err := runCheck(os.Args[2]); err != nil {
			fatal("check: %v", err)
		}

	case "version":
		fmt.Printf("hicqc v%s\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runAnalyze(cfg config.Config, log zerolog.Logger, matrixPath string, args []string) error {
	m, ranges, lengths, err := loadInputs(log, matrixPath, args)
	if err != nil {
		return err
	}

	sess := analysis.NewSession(cfg.Options())
	start := time.Now()
	sess.Run(m, ranges, lengths)
	log.Debug().Dur("elapsed", time.Since(start)).Int("size", m.Size).Msg("analysis complete")

	h := sess.Health(assemblyFromFlags(args, ranges))

	if !hasFlag(args, "--no-store") {
		st, err := store.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.Record(store.Run{
			MatrixPath:    matrixPath,
			MatrixSize:    m.Size,
			Health:        h.Overall,
			Contiguity:    h.Contiguity,
			DecayQuality:  h.DecayQuality,
			Integrity:     h.Integrity,
			Compartments:  h.Compartments,
			Exponent:      sess.Decay.Exponent,
			Eigenvalue:    sess.Compartment.Eigenvalue,
			Misassemblies: sess.Fusion.Summary.Total,
		}); err != nil {
			return err
		}
	}

	if hasFlag(args, "--json") {
		out := struct {
			MatrixPath  string            `json:"matrix_path"`
			MatrixSize  int               `json:"matrix_size"`
			Health      any               `json:"health"`
			Decay       any               `json:"decay"`
			Compartment any               `json:"compartment"`
			Fusion      any               `json:"fusion"`
			Patterns    any               `json:"patterns"`
		}{matrixPath, m.Size, h,
			map[string]any{"exponent": sess.Decay.Exponent, "r2": sess.Decay.R2},
			map[string]any{"eigenvalue": sess.Compartment.Eigenvalue, "iterations": sess.Compartment.Iterations},
			sess.Fusion, sess.Patterns,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if hasFlag(args, "--flags") {
		fmt.Print(report.FormatFlags(sess.Fusion.Flags))
		return nil
	}

	fmt.Print(report.Format(matrixPath, m.Size, sess, h))
	return nil
}

func runHistory(cfg config.Config, matrixPath string) error {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(matrixPath, 0)
	if err != nil {
		return err
	}
	fmt.Print(trends.Format(trends.Compute(matrixPath, runs)))
	return nil
}

// runWatch re-analyzes the matrix whenever the file changes, debounced
// so editors that write in bursts trigger one run.
func runWatch(cfg config.Config, log zerolog.Logger, matrixPath string, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(matrixPath); err != nil {
		return fmt.Errorf("watch %s: %w", matrixPath, err)
	}
	log.Info().Str("path", matrixPath).Msg("watching")

	if err := runAnalyze(cfg, log, matrixPath, args); err != nil {
		log.Error().Err(err).Msg("initial analysis failed")
	}

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("event", ev.String()).Msg("matrix changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := runAnalyze(cfg, log, matrixPath, args); err != nil {
					log.Error().Err(err).Msg("analysis failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")
		}
	}
}

func runCheck(matrixPath string) error {
	m, err := matrixio.LoadMatrix(matrixPath)
	if err != nil {
		return err
	}

	findings := matrixio.Validate(m, 1e-9)
	fmt.Printf("hicqc check — %s (%dx%d)\n\n", matrixPath, m.Size, m.Size)
	if len(findings) == 0 {
		fmt.Println("  matrix is square, finite, non-negative, and symmetric")
		return nil
	}
	for _, f := range findings {
		fmt.Printf("  ! %s\n", f.Message)
	}
	return nil
}

func loadInputs(log zerolog.Logger, matrixPath string, args []string) (contact.Matrix, []contact.ContigRange, map[int]int, error) {
	m, err := matrixio.LoadMatrix(matrixPath)
	if err != nil {
		return contact.Matrix{}, nil, nil, err
	}
	log.Debug().Int("size", m.Size).Msg("matrix loaded")

	var ranges []contact.ContigRange
	var lengths map[int]int
	if path := flagValue(args, "--contigs"); path != "" {
		ranges, lengths, err = matrixio.LoadRanges(path)
		if err != nil {
			return contact.Matrix{}, nil, nil, err
		}
		log.Debug().Int("contigs", len(ranges)).Msg("ranges loaded")
	} else if m.Size > 0 {
		ranges = []contact.ContigRange{{Start: 0, End: m.Size}}
	}
	return m, ranges, lengths, nil
}

// assemblyFromFlags reads the externally tracked assembly summary from
// command-line flags; absent values default from the overview ranges.
func assemblyFromFlags(args []string, ranges []contact.ContigRange) analysis.Assembly {
	a := analysis.Assembly{
		N50:         intFlag(args, "--n50", 0),
		TotalLength: intFlag(args, "--total-length", 0),
		ContigCount: int(intFlag(args, "--contig-count", int64(len(ranges)))),
	}
	if a.TotalLength == 0 {
		for _, r := range ranges {
			a.TotalLength += int64(r.Span())
		}
	}
	if a.N50 == 0 {
		a.N50 = n50(ranges)
	}
	return a
}

// n50 computes the N50 of the overview spans, a stand-in when the
// caller supplies no base-pair metrics.
func n50(ranges []contact.ContigRange) int64 {
	var total int64
	spans := make([]int64, 0, len(ranges))
	for _, r := range ranges {
		s := int64(r.Span())
		spans = append(spans, s)
		total += s
	}
	// insertion sort, descending; contig counts are small
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j] > spans[j-1]; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	var cum int64
	for _, s := range spans {
		cum += s
		if cum*2 >= total {
			return s
		}
	}
	return 0
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func usage() {
	fmt.Fprintf(os.Stderr, `hicqc v%s — Hi-C contact map assembly QC

Usage:
  hicqc analyze <matrix> [flags]   Analyze a contact map
  hicqc history <matrix>           Show recorded runs and trends
  hicqc watch <matrix> [flags]     Re-analyze on file change
  hicqc check <matrix>             Validate a matrix file
  hicqc version                    Print version
  hicqc help                       Show this help

Analyze flags:
  --contigs <file>        Contig ranges (start, end, optional native length per line)
  --n50 <bp>              Assembly N50
  --total-length <bp>     Assembly total length
  --contig-count <n>      Assembly contig count
  --json                  JSON output
  --flags                 Print only the misassembly flag list
  --no-store              Skip recording the run
  --verbose               Debug logging

Matrix files are dense whitespace-separated rows; .zst is decompressed
transparently. Configuration: ~/.config/hicqc/config.toml
`, version)
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func intFlag(args []string, flag string, def int64) int64 {
	s := flagValue(args, flag)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "hicqc: "+format+"\n", args...)
	os.Exit(1)
}
