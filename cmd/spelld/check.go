package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spelld/internal/config"
	"spelld/internal/dictionary"
	"spelld/internal/engine"
	"spelld/internal/judge"
	"spelld/internal/language"
	"spelld/internal/observ"
	"spelld/internal/source"
	"spelld/internal/ui"
)

// errFindings makes the process exit non-zero without printing anything
// beyond the report.
var errFindings = errors.New("misspelled words found")

var checkCmd = &cobra.Command{
	Use:          "check [flags] <file|directory>...",
	Short:        "Spell check source files",
	Long:         "Check identifiers, comments and strings of every known source file under the given paths.\n\n" + dictHint,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("ui", "auto", "show progress UI (auto|on|off)")
	checkCmd.Flags().Bool("suggest", true, "include replacement suggestions")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("all", false, "also check files with unknown extensions as plain text")
}

type checkOptions struct {
	format         string
	jobs           int
	ui             uiMode
	suggest        bool
	fullpath       bool
	all            bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

// fileResult is the outcome of checking one file.
type fileResult struct {
	path     string
	display  string
	text     string
	severity config.Severity
	findings []engine.Finding
	skipped  bool
	err      error
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch opts.format = strings.ToLower(opts.format); opts.format {
	case "pretty", "json", "short":
	default:
		return opts, fmt.Errorf("unknown format %q (expected pretty|json|short)", opts.format)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.suggest, err = flags.GetBool("suggest"); err != nil {
		return opts, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if opts.fullpath, err = flags.GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.all, err = flags.GetBool("all"); err != nil {
		return opts, fmt.Errorf("failed to get all flag: %w", err)
	}
	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorMode, err := root.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return opts, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}
	return opts, nil
}

// runCheck checks every file under args and prints the findings. It returns
// errFindings when anything was flagged.
func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer dumpTraceOnPanic(tracer)
	stopProfiling, err := startProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	timer := observ.NewTimer()
	var store *dictionary.Store
	err = timer.Measure("load dictionaries", func() error {
		var loadErr error
		store, loadErr = loadStore(cmd)
		return loadErr
	})
	if err != nil {
		return err
	}
	defer store.Close()

	var files []string
	err = timer.Measure("collect files", func() error {
		var collectErr error
		files, collectErr = collectFiles(args, opts.all)
		return collectErr
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	checker := newChecker(store, opts)
	idx := timer.Begin("check")
	var results []fileResult
	if opts.format == "pretty" && !opts.quiet && shouldUseTUI(opts.ui) {
		results, err = runCheckWithUI(cmd.Context(), "spelld check", files, checker)
	} else {
		results, err = checker.run(cmd.Context(), files, nil)
	}
	timer.End(idx, humanize.Comma(int64(len(files)))+" files")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, r := range results {
		total += len(r.findings)
	}
	switch opts.format {
	case "json":
		err = renderJSON(out, results)
	case "short":
		renderShort(out, results)
	default:
		renderPretty(out, results)
		if !opts.quiet {
			renderSummary(cmd.ErrOrStderr(), len(results), total)
		}
	}
	if err != nil {
		return err
	}
	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	for _, r := range results {
		if r.err != nil {
			return fmt.Errorf("%s: %w", r.display, r.err)
		}
	}
	if total > 0 {
		return errFindings
	}
	return nil
}

// collectFiles expands directories into the files spelld knows a language
// for. Explicit file arguments are always kept. Hidden directories are
// skipped.
func collectFiles(args []string, all bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if p != arg && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if _, ok := language.FromPath(p); ok || all {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// checker runs the engine over files, resolving one configuration per
// project file.
type checker struct {
	store  *dictionary.Store
	engine *engine.Engine
	opts   checkOptions

	mu       sync.Mutex
	profiles map[string]*checkProfile
	byDir    map[string]*checkProfile
}

type checkProfile struct {
	root     string
	resolved *config.Resolved
	judge    *judge.Judge
	err      error
}

func newChecker(store *dictionary.Store, opts checkOptions) *checker {
	return &checker{
		store:    store,
		engine:   engine.New(nil),
		opts:     opts,
		profiles: make(map[string]*checkProfile),
		byDir:    make(map[string]*checkProfile),
	}
}

// run checks files with a bounded worker pool. Results keep the order of
// files. events, when non-nil, receives progress for each file.
func (c *checker) run(ctx context.Context, files []string, events chan<- ui.Event) ([]fileResult, error) {
	jobs := c.opts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(events, ui.Event{File: file, Status: ui.StatusChecking})
			res := c.checkFile(gctx, file)
			results[i] = res
			notify(events, resultEvent(res, file))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func notify(events chan<- ui.Event, ev ui.Event) {
	if events != nil {
		events <- ev
	}
}

func resultEvent(res fileResult, file string) ui.Event {
	switch {
	case res.err != nil:
		return ui.Event{File: file, Status: ui.StatusError}
	case res.skipped:
		return ui.Event{File: file, Status: ui.StatusSkipped}
	case len(res.findings) > 0:
		return ui.Event{File: file, Status: ui.StatusFindings, Findings: len(res.findings)}
	default:
		return ui.Event{File: file, Status: ui.StatusClean}
	}
}

func (c *checker) checkFile(ctx context.Context, file string) fileResult {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	res := fileResult{path: abs, display: file}
	if c.opts.fullpath {
		res.display = abs
	}
	prof := c.profileFor(filepath.Dir(abs))
	if prof.err != nil {
		res.err = prof.err
		return res
	}
	res.severity = prof.resolved.Severity
	if prof.resolved.IgnoresPath(prof.root, abs) {
		res.skipped = true
		return res
	}
	// #nosec G304 -- paths come from the command line
	data, err := os.ReadFile(abs)
	if err != nil {
		res.err = err
		return res
	}
	res.text = string(data)
	findings, err := c.engine.Check(ctx, engine.Request{
		URI:          abs,
		Text:         res.text,
		Language:     language.Resolve("", abs),
		Judge:        prof.judge,
		Dictionaries: prof.resolved.Dictionaries,
		Encoding:     source.EncodingUTF32,
		Suggest:      c.opts.suggest,
	})
	if err != nil {
		res.err = err
		return res
	}
	if limit := c.opts.maxDiagnostics; limit > 0 && len(findings) > limit {
		findings = findings[:limit]
	}
	res.findings = findings
	return res
}

// profileFor returns the configuration governing files in dir, loading it
// once per project file.
func (c *checker) profileFor(dir string) *checkProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.byDir[dir]; ok {
		return p
	}
	projectPath, found, err := config.FindProjectFile(dir)
	if err != nil {
		p := &checkProfile{err: err}
		c.byDir[dir] = p
		return p
	}
	if !found {
		projectPath = ""
	}
	if p, ok := c.profiles[projectPath]; ok {
		c.byDir[dir] = p
		return p
	}
	p := c.buildProfile(projectPath)
	if p.root == "" {
		p.root, _ = os.Getwd()
	}
	c.profiles[projectPath] = p
	c.byDir[dir] = p
	return p
}

func (c *checker) buildProfile(projectPath string) *checkProfile {
	settings, _, err := config.LoadProject(projectPath)
	if err != nil {
		return &checkProfile{err: err}
	}
	resolved, err := config.Resolve(settings)
	if err != nil {
		return &checkProfile{err: err}
	}
	p := &checkProfile{
		resolved: resolved,
		judge:    judge.New(c.store, resolved.JudgeOptions()),
	}
	if projectPath != "" {
		p.root = filepath.Dir(projectPath)
	}
	return p
}
