// Package lsp serves spelling diagnostics over the Language Server
// Protocol on a Content-Length framed byte stream.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"spelld/internal/config"
	"spelld/internal/dictionary"
	"spelld/internal/engine"
	"spelld/internal/source"
	"spelld/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

const (
	commandAddWord       = "spelld.addWord"
	commandAddWordGlobal = "spelld.addWordGlobal"
	methodSuggest        = "spelld/suggest"
	diagnosticSource     = "spelld"
	diagnosticCode       = "misspelled-word"
)

// Options configures LSP server behavior.
type Options struct {
	// Store is the loaded dictionary store shared by every analysis.
	Store *dictionary.Store
	// Engine runs the pipeline; nil uses engine.New(nil).
	Engine *engine.Engine
	// Debounce delays analysis after an edit. Zero selects the default and
	// a negative value analyzes immediately.
	Debounce time.Duration
	// Workers bounds concurrent analyses; zero means two.
	Workers int
	// MaxDiagnostics caps diagnostics per document; zero means 100.
	MaxDiagnostics int
	// Tracer receives server, pass and stage events.
	Tracer trace.Tracer
	// Settings are applied on top of configuration files.
	Settings *config.Settings
	// NoWatch disables the configuration file watcher.
	NoWatch bool
	// Version is reported in serverInfo.
	Version string
	// Log receives operational log lines; nil means stderr.
	Log io.Writer
}

type sessionState uint8

const (
	stateUninitialized sessionState = iota
	stateRunning
	stateShutdown
)

// Server handles stdio JSON-RPC for the spelld language server.
type Server struct {
	in     io.Reader
	conn   *conn
	docs   *documentStore
	store  *dictionary.Store
	engine *engine.Engine
	tracer trace.Tracer
	log    io.Writer
	logMu  sync.Mutex

	debounce time.Duration
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	noWatch  bool
	version  string

	maxDiagnostics int
	profiles       profileCache

	mu            sync.Mutex
	state         sessionState
	encoding      source.Encoding
	workspaceRoot string
	dynamicWatch  bool
	traceLSP      bool
	baseSettings  *config.Settings
	clientConfig  *config.Settings
	timers        map[string]*time.Timer
	watcher       *config.Watcher
	watched       []string
	baseCtx       context.Context
	cancel        context.CancelFunc

	publishMu sync.Mutex
	published map[string]struct{}

	addWordMu sync.Mutex
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts Options) *Server {
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(nil)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	return &Server{
		in:             in,
		conn:           newConn(out),
		docs:           newDocumentStore(),
		store:          opts.Store,
		engine:         eng,
		tracer:         tracer,
		log:            logw,
		debounce:       debounce,
		sem:            semaphore.NewWeighted(int64(workers)),
		noWatch:        opts.NoWatch,
		version:        opts.Version,
		baseSettings:   opts.Settings,
		profiles:       profileCache{byKey: make(map[string]*profile)},
		maxDiagnostics: maxDiagnostics,
		timers:         make(map[string]*time.Timer),
		published:      make(map[string]struct{}),
	}
}

// Run serves LSP requests until exit or a transport error. A clean end of
// input returns nil.
func (s *Server) Run(ctx context.Context) error {
	if s.store == nil {
		return errors.New("lsp: no dictionary store")
	}
	ctx, cancel := context.WithCancel(trace.WithTracer(ctx, s.tracer))
	s.mu.Lock()
	s.baseCtx = ctx
	s.cancel = cancel
	s.mu.Unlock()
	defer s.teardown()

	acc := NewAccumulator(0)
	chunk := make([]byte, 32<<10)
	for {
		n, readErr := s.in.Read(chunk)
		if n > 0 {
			_, _ = acc.Write(chunk[:n])
			for {
				body, ok, err := acc.Next()
				if err != nil {
					s.logf("dropping frame: %v", err)
					continue
				}
				if !ok {
					break
				}
				if err := s.dispatch(body); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("lsp: read: %w", readErr)
		}
	}
}

func (s *Server) teardown() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
	s.conn.close()
	s.wg.Wait()
	_ = s.tracer.Flush()
}

func (s *Server) dispatch(body []byte) error {
	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logf("failed to parse message: %v", err)
		return s.conn.replyError(nil, codeParseError, "parse error")
	}
	switch {
	case msg.isResponse():
		if !s.conn.resolve(&msg) {
			s.logf("response for unknown request id %s", string(msg.ID))
		}
		return nil
	case msg.Method == "":
		s.logf("message without method or id")
		return nil
	}
	return s.handleMessage(&msg)
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if msg.Method == "exit" {
		if state == stateShutdown {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	}
	switch state {
	case stateUninitialized:
		if msg.Method != "initialize" {
			if msg.isRequest() {
				return s.conn.replyError(msg.ID, codeServerNotInitialized, "server not initialized")
			}
			return nil
		}
	case stateRunning:
		if msg.Method == "initialize" {
			return s.conn.replyError(msg.ID, codeInvalidRequest, "server already initialized")
		}
	case stateShutdown:
		if msg.isRequest() {
			return s.conn.replyError(msg.ID, codeInvalidRequest, "server is shutting down")
		}
		return nil
	}

	trace.Point(s.tracer, trace.ScopeServer, msg.Method, "", 0, nil)
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.handleInitialized()
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "$/cancelRequest", "$/setTrace":
		return nil
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/didChangeWatchedFiles":
		s.reload("watched files changed")
		return nil
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case methodSuggest:
		return s.handleSuggest(msg)
	default:
		if msg.isRequest() {
			return s.conn.replyError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.conn.replyError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	enc := negotiateEncoding(params.Capabilities.General.PositionEncodings)

	s.mu.Lock()
	s.workspaceRoot = root
	s.encoding = enc
	s.dynamicWatch = params.Capabilities.Workspace.DidChangeWatchedFiles.DynamicRegistration
	s.state = stateRunning
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)

	result := initializeResult{
		Capabilities: serverCapabilities{
			PositionEncoding: enc.String(),
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    syncFull,
				Save:      saveOptions{IncludeText: true},
			},
			CodeActionProvider: &codeActionOptions{CodeActionKinds: []string{"quickfix"}},
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{commandAddWord, commandAddWordGlobal},
			},
		},
		ServerInfo: serverInfo{Name: "spelld", Version: s.version},
	}
	return s.conn.reply(msg.ID, result)
}

// negotiateEncoding prefers utf-8 when offered; utf-16 is the protocol
// default every client supports.
func negotiateEncoding(offered []string) source.Encoding {
	if slices.Contains(offered, "utf-8") {
		return source.EncodingUTF8
	}
	return source.EncodingUTF16
}

func (s *Server) handleInitialized() {
	s.mu.Lock()
	dynamic := s.dynamicWatch
	ctx := s.baseCtx
	s.mu.Unlock()
	if !dynamic || ctx == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		params := registrationParams{Registrations: []registration{{
			ID:     "spelld-config-watch",
			Method: "workspace/didChangeWatchedFiles",
			RegisterOptions: didChangeWatchedFilesRegistrationOptions{
				Watchers: []fileSystemWatcher{{GlobPattern: "**/" + config.FileName}},
			},
		}}}
		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := s.conn.call(callCtx, "client/registerCapability", params); err != nil {
			s.logf("registerCapability failed: %v", err)
		}
	}()
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.state = stateShutdown
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	s.mu.Unlock()
	return s.conn.reply(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didOpen: %v", err)
		return nil
	}
	if params.TextDocument.URI == "" {
		return nil
	}
	doc := s.docs.open(params.TextDocument)
	s.tracef("didOpen: uri=%s version=%d gen=%d language=%s", doc.uri, doc.version, doc.gen, doc.lang.Name)
	s.schedule(doc)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didChange: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, err := s.docs.change(uri, params.TextDocument.Version, params.ContentChanges, s.currentEncoding())
	if err != nil {
		s.logf("didChange ignored for %s: %v", uri, err)
		return nil
	}
	s.tracef("didChange: uri=%s version=%d gen=%d", doc.uri, doc.version, doc.gen)
	s.schedule(doc)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didSave: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, err := s.docs.save(uri, params.Text)
	if err != nil {
		s.logf("didSave ignored for %s: %v", uri, err)
		return nil
	}
	s.tracef("didSave: uri=%s version=%d gen=%d", doc.uri, doc.version, doc.gen)
	s.schedule(doc)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didClose: %v", err)
		return nil
	}
	uri := canonicalURI(params.TextDocument.URI)
	if !s.docs.close(uri) {
		return nil
	}
	s.mu.Lock()
	if t, ok := s.timers[uri]; ok {
		t.Stop()
		delete(s.timers, uri)
	}
	s.mu.Unlock()
	s.tracef("didClose: uri=%s", uri)
	s.clearPublished(uri)
	return nil
}

func (s *Server) currentEncoding() source.Encoding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoding
}

func (s *Server) logf(format string, args ...any) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	fmt.Fprintf(s.log, "lsp: "+format+"\n", args...)
}

// tracef logs only when the client enabled spelld.lsp.trace.
func (s *Server) tracef(format string, args ...any) {
	s.mu.Lock()
	on := s.traceLSP
	s.mu.Unlock()
	if on {
		s.logf(format, args...)
	}
}
