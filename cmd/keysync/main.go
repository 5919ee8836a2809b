// Command keysync reports the keys a set of documents is missing compared to a
// template document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	keysync "github.com/reoring/keysync"
	"github.com/reoring/keysync/docset"
	"github.com/reoring/keysync/i18n"
	"github.com/reoring/keysync/internal/config"
	"github.com/reoring/keysync/internal/logging"
	"github.com/reoring/keysync/report"
	"github.com/reoring/keysync/runner"
	_ "github.com/reoring/keysync/source" // go-json as the JSON driver
)

var version = "dev"

// ExitError carries the process exit code. An empty Message means the output
// has already been written.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Message != "" {
			fmt.Fprintln(stderr, ee.Message)
		}
		return ee.Code
	}
	// Flag and argument errors from cobra.
	fmt.Fprintln(stderr, "Error:", err)
	return 2
}

type app struct {
	stdout, stderr io.Writer

	// flags
	configPath    string
	verbose       bool
	logLevel      string
	logFormat     string
	lang          string
	dir           string
	extensions    []string
	exclude       []string
	recursive     bool
	workers       int
	format        string
	detailed      bool
	duplicateKeys string
	maxDepth      int
	maxBytes      int64
	debounce      string

	cfg *config.Config
	log *zap.Logger
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keysync [TEMPLATE]",
		Short: "Report keys that documents are missing compared to a template",
		Long: `keysync compares every document in a directory with a template document
and lists the key paths each one lacks. Extra keys and values are ignored.

Run without a subcommand it behaves like "keysync check".`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runCheck,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultFileName, "configuration file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console, json")
	pf.StringVar(&a.lang, "lang", "", "report language: en, ja")
	pf.StringVarP(&a.dir, "dir", "d", "", "directory holding candidate documents (default: the template's directory)")
	pf.StringSliceVarP(&a.extensions, "ext", "e", nil, "candidate extensions (default: the template's extension)")
	pf.StringSliceVar(&a.exclude, "exclude", nil, "doublestar patterns of candidates to skip")
	pf.BoolVarP(&a.recursive, "recursive", "r", false, "descend into subdirectories")
	pf.IntVarP(&a.workers, "workers", "j", 1, "candidates checked concurrently")
	pf.StringVarP(&a.format, "format", "f", "", "output format: text, json")
	pf.BoolVar(&a.detailed, "detailed", false, "annotate shape mismatches in text output")
	pf.StringVar(&a.duplicateKeys, "duplicate-keys", "", "duplicate keys: ignore, warn, error")
	pf.IntVar(&a.maxDepth, "max-depth", 0, "maximum nesting depth (0: unlimited)")
	pf.Int64Var(&a.maxBytes, "max-bytes", 0, "maximum document size in bytes (0: unlimited)")

	root.AddCommand(a.checkCmd(), a.pathsCmd(), a.watchCmd())
	return root
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [TEMPLATE]",
		Short: "Check all candidate documents once",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runCheck,
	}
}

func (a *app) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths [TEMPLATE]",
		Short: "List every key path a candidate has to provide",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runPaths,
	}
}

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [TEMPLATE]",
		Short: "Check again whenever the template or a candidate changes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runWatch,
	}
	cmd.Flags().StringVar(&a.debounce, "debounce", "", "quiet period before re-checking (e.g. 300ms)")
	return cmd
}

// setup loads the configuration, applies explicitly set flags on top of it and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	fl := cmd.Flags()
	cfg, err := config.Load(a.configPath, fl.Changed("config"))
	if err != nil {
		return usageError("%v", err)
	}
	if len(args) > 0 {
		cfg.Template = args[0]
	}
	if fl.Changed("dir") {
		cfg.Dir = a.dir
	}
	if fl.Changed("ext") {
		cfg.Extensions = a.extensions
	}
	if fl.Changed("exclude") {
		cfg.Exclude = a.exclude
	}
	if fl.Changed("recursive") {
		cfg.Recursive = a.recursive
	}
	if fl.Changed("workers") {
		cfg.Workers = a.workers
	}
	if fl.Changed("format") {
		cfg.Format = a.format
	}
	if fl.Changed("lang") {
		cfg.Lang = a.lang
	}
	if fl.Changed("duplicate-keys") {
		cfg.DuplicateKeys = a.duplicateKeys
	}
	if fl.Changed("max-depth") {
		cfg.MaxDepth = a.maxDepth
	}
	if fl.Changed("max-bytes") {
		cfg.MaxBytes = a.maxBytes
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if fl.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if fl.Changed("debounce") {
		cfg.WatchDebounce = a.debounce
	}
	if err := cfg.Validate(); err != nil {
		return usageError("%v", err)
	}

	log, err := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, a.stderr)
	if err != nil {
		return usageError("failed to initialize logger: %v", err)
	}
	i18n.SetLanguage(cfg.Lang)
	a.cfg = cfg
	a.log = log
	log.Debug("configuration loaded", zap.String("template", cfg.Template), zap.String("dir", cfg.CandidateDir()))
	return nil
}

func (a *app) loadOpt() keysync.LoadOpt {
	opt := a.cfg.LoadOpt()
	opt.OnIssue = func(is keysync.Issue) {
		a.log.Warn(is.Message, zap.String("code", is.Code), zap.String("pointer", is.Pointer), zap.String("path", is.Path))
	}
	return opt
}

func (a *app) requireTemplate() error {
	if a.cfg.Template == "" {
		return usageError("no template given: pass TEMPLATE or set template in %s", config.DefaultFileName)
	}
	return nil
}

func (a *app) documents() *docset.Dir {
	return &docset.Dir{
		Dir:        a.cfg.CandidateDir(),
		Template:   a.cfg.Template,
		Recursive:  a.cfg.Recursive,
		Extensions: a.cfg.Extensions,
		Exclude:    a.cfg.Exclude,
		Skip:       []string{a.configPath},
		LoadOpt:    a.loadOpt(),
	}
}

func (a *app) renderer() report.Renderer {
	r, err := report.ForFormat(a.cfg.Format)
	if err != nil {
		return report.Text{}
	}
	if t, ok := r.(report.Text); ok {
		t.Detailed = a.detailed
		return t
	}
	return r
}

func (a *app) runCheck(cmd *cobra.Command, _ []string) error {
	if err := a.requireTemplate(); err != nil {
		return err
	}
	return a.check(cmd.Context(), a.documents())
}

// check performs one run and renders it. Text reports of failed runs go to
// stderr; everything else goes to stdout.
func (a *app) check(ctx context.Context, docs *docset.Dir) error {
	r := a.renderer()
	_, isText := r.(report.Text)

	tmpl, err := docset.LoadFile(a.cfg.Template, docs.LoadOpt)
	if err != nil {
		return a.fail(r, isText, &keysync.LoadError{Candidate: a.cfg.Template, Cause: err})
	}
	rep, err := runner.Run(ctx, tmpl, docs, runner.Options{
		Workers:  a.cfg.Workers,
		Template: templateName(docs.Dir, a.cfg.Template),
		Logger:   a.log,
	})
	if err != nil {
		return a.fail(r, isText, err)
	}

	out := a.stdout
	if isText && rep.Failed() {
		out = a.stderr
	}
	if err := r.Render(out, rep); err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	if rep.Failed() {
		return &ExitError{Code: 1}
	}
	return nil
}

func (a *app) fail(r report.Renderer, isText bool, cause error) error {
	out := a.stdout
	if isText {
		out = a.stderr
	}
	a.log.Debug("run failed", zap.Error(cause))
	if err := r.RenderError(out, cause); err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return &ExitError{Code: 1}
}

func (a *app) runPaths(cmd *cobra.Command, _ []string) error {
	if err := a.requireTemplate(); err != nil {
		return err
	}
	tmpl, err := docset.LoadFile(a.cfg.Template, a.loadOpt())
	if err != nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("Error loading %s: %v", a.cfg.Template, err)}
	}
	paths := keysync.Paths(tmpl)
	if a.cfg.Format == "json" {
		if paths == nil {
			paths = []string{}
		}
		enc := gojson.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(paths)
	}
	for _, p := range paths {
		fmt.Fprintln(a.stdout, p)
	}
	return nil
}

func (a *app) runWatch(cmd *cobra.Command, _ []string) error {
	if err := a.requireTemplate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := a.documents()
	debounce, _ := a.cfg.Debounce()
	w, err := docset.NewWatcher(docs, docset.WatchOptions{Debounce: debounce, Logger: a.log})
	if err != nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("cannot watch %s: %v", docs.Dir, err)}
	}

	a.checkAndLog(ctx, docs)
	a.log.Info("watching for changes", zap.String("dir", docs.Dir))
	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		a.log.Info("change detected, checking again", zap.Strings("changed", changed))
		a.checkAndLog(ctx, docs)
	})
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return nil
}

// checkAndLog runs check for watch mode, where failures do not end the process.
func (a *app) checkAndLog(ctx context.Context, docs *docset.Dir) {
	err := a.check(ctx, docs)
	var ee *ExitError
	if errors.As(err, &ee) && ee.Message != "" {
		fmt.Fprintln(a.stderr, ee.Message)
	}
}

func templateName(dir, template string) string {
	if rel, err := filepath.Rel(dir, template); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(template)
}
