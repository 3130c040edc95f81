package lsp

import (
	"context"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"spelld/internal/config"
	"spelld/internal/engine"
	"spelld/internal/judge"
	"spelld/internal/trace"
)

// profile is the resolved configuration for every document under one
// project file. Profiles are rebuilt from scratch on reload.
type profile struct {
	root     string
	files    config.Files
	resolved *config.Resolved
	judge    *judge.Judge
}

type profileCache struct {
	mu    sync.Mutex
	byKey map[string]*profile
}

func (s *Server) schedule(doc document) {
	s.mu.Lock()
	if s.state == stateShutdown {
		s.mu.Unlock()
		return
	}
	if t, ok := s.timers[doc.uri]; ok {
		t.Stop()
		delete(s.timers, doc.uri)
	}
	uri, gen := doc.uri, doc.gen
	if s.debounce < 0 {
		s.mu.Unlock()
		s.startAnalysis(uri, gen)
		return
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		s.startAnalysis(uri, gen)
	})
	s.mu.Unlock()
}

// startAnalysis runs one pass off the read loop.
func (s *Server) startAnalysis(uri string, gen uint64) {
	s.mu.Lock()
	ctx := s.baseCtx
	if ctx == nil || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		s.analyze(ctx, uri, gen)
	}()
}

func (s *Server) analyze(ctx context.Context, uri string, gen uint64) {
	doc, ok := s.docs.get(uri)
	if !ok || doc.gen != gen {
		s.discard(uri, gen, "superseded before start")
		return
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer s.sem.Release(1)
	if !s.docs.current(uri, gen) {
		s.discard(uri, gen, "superseded while queued")
		return
	}

	prof := s.profileFor(doc)
	span := trace.Begin(s.tracer, trace.ScopeServer, "analyze", 0).
		WithExtra("uri", uri).
		WithExtra("gen", strconv.FormatUint(gen, 10))
	s.tracef("analysis start: uri=%s version=%d gen=%d", uri, doc.version, gen)
	var findings []engine.Finding
	if prof.resolved.IgnoresPath(prof.root, doc.path) {
		span.End("ignored path")
		s.tracef("analysis skipped: uri=%s ignored path", uri)
	} else {
		var err error
		findings, err = s.engine.Check(trace.WithSpan(ctx, span), engine.Request{
			URI:          uri,
			Text:         doc.text,
			Language:     doc.lang,
			Judge:        prof.judge,
			Dictionaries: prof.resolved.Dictionaries,
			Encoding:     s.currentEncoding(),
			Suggest:      true,
		})
		if err != nil {
			span.End("canceled")
			s.discard(uri, gen, err.Error())
			return
		}
		span.WithExtra("findings", strconv.Itoa(len(findings))).End("")
	}
	s.tracef("analysis done: uri=%s version=%d gen=%d findings=%d", uri, doc.version, gen, len(findings))
	s.publish(doc, toDiagnostics(findings, prof.resolved.Severity, s.maxDiagnostics))
}

func (s *Server) discard(uri string, gen uint64, reason string) {
	trace.Point(s.tracer, trace.ScopeServer, "discard", reason, 0, map[string]string{
		"uri": uri,
		"gen": strconv.FormatUint(gen, 10),
	})
	s.tracef("analysis discard: uri=%s gen=%d reason=%s", uri, gen, reason)
}

// publish sends diagnostics only while doc is still the live generation.
// The check and the send happen under publishMu so a close or newer pass
// cannot interleave between them.
func (s *Server) publish(doc document, diags []lspDiagnostic) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if !s.docs.current(doc.uri, doc.gen) {
		s.discard(doc.uri, doc.gen, "stale result")
		return
	}
	version := doc.version
	err := s.conn.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         doc.uri,
		Version:     &version,
		Diagnostics: diags,
	})
	if err != nil {
		s.logf("failed to publish diagnostics: %v", err)
		return
	}
	s.tracef("publishDiagnostics: uri=%s version=%d diags=%d", doc.uri, doc.version, len(diags))
	if len(diags) > 0 {
		s.published[doc.uri] = struct{}{}
	} else {
		delete(s.published, doc.uri)
	}
}

func (s *Server) clearPublished(uri string) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if _, ok := s.published[uri]; !ok {
		return
	}
	delete(s.published, uri)
	err := s.conn.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []lspDiagnostic{},
	})
	if err != nil {
		s.logf("failed to clear diagnostics: %v", err)
	}
}

func toDiagnostics(findings []engine.Finding, severity config.Severity, limit int) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(findings))
	for _, f := range findings {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, lspDiagnostic{
			Range:       fromRange(f.Range),
			Severity:    int(severity),
			Code:        diagnosticCode,
			Source:      diagnosticSource,
			Message:     f.Message(),
			Suggestions: f.Suggestions,
			Data:        &diagnosticData{Word: f.Word},
		})
	}
	return out
}

// profileFor returns the configuration governing doc, loading the nearest
// spelld.toml on first use.
func (s *Server) profileFor(doc document) *profile {
	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()

	start := root
	if doc.path != "" {
		start = filepath.Dir(doc.path)
	}
	projectPath := ""
	if start != "" {
		p, ok, err := config.FindProjectFile(start)
		if err != nil {
			s.logf("config lookup: %v", err)
		} else if ok {
			projectPath = p
		}
	}

	s.profiles.mu.Lock()
	if p, ok := s.profiles.byKey[projectPath]; ok {
		s.profiles.mu.Unlock()
		return p
	}
	p := s.buildProfile(projectPath, root)
	s.profiles.byKey[projectPath] = p
	s.profiles.mu.Unlock()

	s.watchFiles(p.files)
	return p
}

func (s *Server) buildProfile(projectPath, workspaceRoot string) *profile {
	settings, files, err := config.LoadProject(projectPath)
	if err != nil {
		s.logf("config: %v", err)
		settings = config.Default()
		files = config.Files{Project: projectPath}
	}
	s.mu.Lock()
	overlays := []*config.Settings{s.baseSettings, s.clientConfig}
	s.mu.Unlock()
	for _, o := range overlays {
		if o != nil {
			settings.Merge(*o)
		}
	}
	resolved, err := config.Resolve(settings)
	if err != nil {
		s.logf("config: %v", err)
	}
	root := workspaceRoot
	if projectPath != "" {
		root = filepath.Dir(projectPath)
	}
	return &profile{
		root:     root,
		files:    files,
		resolved: resolved,
		judge:    judge.New(s.store, resolved.JudgeOptions()),
	}
}

// watchFiles extends the config watcher to cover files. The global file
// is always watched so creating it triggers a reload.
func (s *Server) watchFiles(files config.Files) {
	if s.noWatch {
		return
	}
	want := files.Paths()
	if global, err := config.GlobalFile(); err == nil {
		want = append(want, global)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseCtx == nil || s.baseCtx.Err() != nil {
		return
	}
	merged := slices.Clone(s.watched)
	for _, f := range want {
		if !slices.Contains(merged, f) {
			merged = append(merged, f)
		}
	}
	if len(merged) == len(s.watched) && s.watcher != nil {
		return
	}
	w, err := config.NewWatcher(merged, func() { s.reload("config file changed") }, func(err error) {
		s.logf("config watcher: %v", err)
	})
	if err != nil {
		s.logf("config watcher: %v", err)
		return
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.watcher = w
	s.watched = merged
	w.Start(s.baseCtx)
}

// reload drops every cached profile and re-checks all open documents.
func (s *Server) reload(reason string) {
	s.profiles.mu.Lock()
	s.profiles.byKey = make(map[string]*profile)
	s.profiles.mu.Unlock()
	docs := s.docs.refresh()
	s.tracef("reload: reason=%s documents=%d", reason, len(docs))
	for _, doc := range docs {
		s.schedule(doc)
	}
}
