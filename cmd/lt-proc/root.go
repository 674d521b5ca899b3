package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lttoolkit/internal/config"
	"github.com/joshuapare/lttoolkit/pkg/ltproc"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Mode flags
	modeAnalysis      bool
	modeDecompose     bool
	modeGeneration    bool
	modeClean         bool
	modeAllMarks      bool
	modeTagged        bool
	modePostgen       bool
	modeTranslit      bool
	modeSAO           bool
	modeBilingual     bool
	modeSurfaceForms  bool
	caseSensitive     bool
	dictionaryCase    bool
	flagMatching      bool
	showControl       bool
	nullFlush         bool
	indexCacheDir     string
	eager             bool
	compoundThreads   int
	compoundElements  int
	preloadDictionary []string
)

// modeFlags maps each mode flag to the mode it selects.
var modeFlags = []struct {
	name string
	mode ltproc.Mode
	set  *bool
}{
	{"analysis", ltproc.ModeAnalysis, &modeAnalysis},
	{"decompose", ltproc.ModeDecomposition, &modeDecompose},
	{"generation", ltproc.ModeGenerationUnknown, &modeGeneration},
	{"non-marked-gen", ltproc.ModeGenerationClean, &modeClean},
	{"debugged-gen", ltproc.ModeGenerationAll, &modeAllMarks},
	{"tagged-gen", ltproc.ModeGenerationTagged, &modeTagged},
	{"post-generation", ltproc.ModePostgeneration, &modePostgen},
	{"transliteration", ltproc.ModeTransliteration, &modeTranslit},
	{"sao", ltproc.ModeSAO, &modeSAO},
	{"bilingual", ltproc.ModeBilingual, &modeBilingual},
	{"surf-bilingual", ltproc.ModeBilingual, &modeSurfaceForms},
}

var rootCmd = &cobra.Command{
	Use:   "lt-proc [flags] <dictionary> [input [output]]",
	Short: "Process text with a compiled letter-transducer dictionary",
	Long: `lt-proc tokenizes and analyses text, generates surface forms, transfers
lexical units through bilingual dictionaries and applies post-generation and
transliteration rules, all driven by a compiled dictionary file.

Input and output default to stdin and stdout.

Example:
  echo "cats" | lt-proc en.automorf.bin
  lt-proc -g en.autogen.bin translated.txt out.txt
  lt-proc -e -v de.automorf.bin < text.txt`,
	Version:       version,
	Args:          cobra.RangeArgs(1, 3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runProc,
}

func init() {
	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Log errors only")

	flags.BoolVarP(&modeAnalysis, "analysis", "a", false, "Morphological analysis (default)")
	flags.BoolVarP(&modeDecompose, "decompose", "e", false, "Analysis with compound decomposition of unknown words")
	flags.BoolVarP(&modeGeneration, "generation", "g", false, "Generation, unknown words marked with '#'")
	flags.BoolVarP(&modeClean, "non-marked-gen", "n", false, "Generation without any marks")
	flags.BoolVarP(&modeAllMarks, "debugged-gen", "d", false, "Generation keeping every mark")
	flags.BoolVarP(&modeTagged, "tagged-gen", "l", false, "Generation printing ^surface/lexical$ units")
	flags.BoolVarP(&modePostgen, "post-generation", "p", false, "Post-generation")
	flags.BoolVarP(&modeTranslit, "transliteration", "t", false, "Transliteration")
	flags.BoolVarP(&modeSAO, "sao", "s", false, "SAO annotation output")
	flags.BoolVarP(&modeBilingual, "bilingual", "b", false, "Lexical transfer")
	flags.BoolVarP(&modeSurfaceForms, "surf-bilingual", "o", false, "Lexical transfer of ^surface/lexical$ units")
	names := make([]string, len(modeFlags))
	for i, mf := range modeFlags {
		names[i] = mf.name
	}
	rootCmd.MarkFlagsMutuallyExclusive(names...)

	flags.BoolVarP(&caseSensitive, "case-sensitive", "c", false, "Match case exactly")
	flags.BoolVarP(&dictionaryCase, "dictionary-case", "w", false, "Print analyses in dictionary case")
	flags.BoolVarP(&flagMatching, "flag-match", "f", false, "Discard paths with conflicting flag diacritics")
	flags.BoolVarP(&showControl, "show-control-symbols", "C", false, "Keep compound and flag symbols in the output")
	flags.BoolVarP(&nullFlush, "null-flush", "z", false, "Flush the output at every NUL character")
	flags.StringVar(&indexCacheDir, "index-cache", "", "Directory for node offset index caches")
	flags.BoolVar(&eager, "eager", false, "Decode every node at load time")
	flags.IntVar(&compoundThreads, "compound-max-threads", ltproc.DefaultCompoundMaxThreads, "Paths followed while decomposing one word")
	flags.IntVar(&compoundElements, "compound-max-elements", ltproc.DefaultCompoundMaxElements, "Maximum parts of a compound")
	flags.StringSliceVar(&preloadDictionary, "preload", nil, "Additional dictionaries to load concurrently")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// selectedMode returns the mode chosen on the command line.
func selectedMode() ltproc.Mode {
	for _, mf := range modeFlags {
		if *mf.set {
			return mf.mode
		}
	}
	return ltproc.ModeAnalysis
}

// settings merges the configuration with the flags that were given.
func settings(cmd *cobra.Command) (*config.Config, slog.Level, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, err
	}
	flags := cmd.Flags()
	if flags.Changed("index-cache") {
		cfg.Dictionary.IndexCacheDir = indexCacheDir
	}
	if flags.Changed("eager") {
		cfg.Dictionary.Eager = eager
	}
	if flags.Changed("compound-max-threads") {
		cfg.Compound.MaxThreads = compoundThreads
	}
	if flags.Changed("compound-max-elements") {
		cfg.Compound.MaxElements = compoundElements
	}
	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, 0, err
	}
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return cfg, level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runProc(cmd *cobra.Command, args []string) error {
	cfg, level, err := settings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), level)

	cache, err := ltproc.NewCache(cfg.Dictionary.CacheSize, ltproc.OpenOptions{
		IndexCacheDir: cfg.Dictionary.IndexCacheDir,
		LazyNodes:     !cfg.Dictionary.Eager,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	defer cache.Close()

	if len(preloadDictionary) > 0 {
		if err := cache.Preload(cmd.Context(), append([]string{args[0]}, preloadDictionary...)...); err != nil {
			return err
		}
	}
	d, err := cache.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	defer d.Close()
	for _, s := range d.Sections() {
		log.Debug("section", "name", s.Name, "kind", s.Kind, "nodes", s.Nodes, "index", s.IndexSource)
	}

	mode := selectedMode()
	p, err := ltproc.NewProcessor(d, ltproc.Options{
		Mode:                mode,
		CaseSensitive:       caseSensitive,
		DictionaryCase:      dictionaryCase,
		FlagMatching:        flagMatching,
		ShowControlSymbols:  showControl,
		NullFlush:           nullFlush,
		SurfaceForms:        modeSurfaceForms,
		CompoundMaxThreads:  cfg.Compound.MaxThreads,
		CompoundMaxElements: cfg.Compound.MaxElements,
		Logger:              log,
	})
	if err != nil {
		return err
	}
	log.Debug("processing", "mode", mode, "dictionary", d.Path())

	in := cmd.InOrStdin()
	if len(args) > 1 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out := cmd.OutOrStdout()
	if len(args) > 2 {
		f, err := os.Create(args[2])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return p.Process(in, out)
}
