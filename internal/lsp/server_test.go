package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"spelld/internal/dictionary"
	"spelld/internal/language"
	"spelld/internal/source"
)

const waitTimeout = 5 * time.Second

func testStore(t *testing.T) *dictionary.Store {
	t.Helper()
	common := dictionary.NewBuilder(dictionary.CommonID).Add(
		"hello", "world", "word", "some", "notes", "about", "the", "plan", "package", "main",
	).Build()
	store := dictionary.NewStore(common, nil)
	t.Cleanup(store.Close)
	return store
}

type testClient struct {
	t      *testing.T
	in     *io.PipeWriter
	msgs   chan rpcMessage
	done   chan error
	server *Server

	mu      sync.Mutex
	backlog []rpcMessage
	nextID  int
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(inR, outW, Options{
		Store:    testStore(t),
		Debounce: -1,
		NoWatch:  true,
		Version:  "test",
		Log:      io.Discard,
	})
	c := &testClient{
		t:      t,
		in:     inW,
		msgs:   make(chan rpcMessage, 128),
		done:   make(chan error, 1),
		server: srv,
	}
	go func() {
		acc := NewAccumulator(0)
		buf := make([]byte, 4096)
		for {
			n, err := outR.Read(buf)
			_, _ = acc.Write(buf[:n])
			for {
				body, ok, ferr := acc.Next()
				if ferr != nil {
					continue
				}
				if !ok {
					break
				}
				var msg rpcMessage
				if json.Unmarshal(body, &msg) == nil {
					c.msgs <- msg
				}
			}
			if err != nil {
				close(c.msgs)
				return
			}
		}
	}()
	go func() {
		err := srv.Run(context.Background())
		outW.Close()
		c.done <- err
	}()
	t.Cleanup(func() {
		inW.Close()
		select {
		case <-c.done:
		case <-time.After(waitTimeout):
			t.Errorf("server did not stop")
		}
	})
	return c
}

func (c *testClient) send(msg map[string]any) {
	c.t.Helper()
	msg["jsonrpc"] = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := writeMessage(c.in, payload); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.send(map[string]any{"method": method, "params": params})
}

func (c *testClient) request(method string, params any) rpcMessage {
	c.t.Helper()
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()
	c.send(map[string]any{"id": id, "method": method, "params": params})
	want := mustJSON(c.t, id)
	return c.waitFor(func(m rpcMessage) bool {
		return m.Method == "" && bytes.Equal(m.ID, want)
	})
}

func (c *testClient) waitFor(match func(rpcMessage) bool) rpcMessage {
	c.t.Helper()
	c.mu.Lock()
	for i, m := range c.backlog {
		if match(m) {
			c.backlog = slices.Delete(c.backlog, i, i+1)
			c.mu.Unlock()
			return m
		}
	}
	c.mu.Unlock()
	deadline := time.After(waitTimeout)
	for {
		select {
		case m, ok := <-c.msgs:
			if !ok {
				c.t.Fatalf("connection closed while waiting")
			}
			if match(m) {
				return m
			}
			c.mu.Lock()
			c.backlog = append(c.backlog, m)
			c.mu.Unlock()
		case <-deadline:
			c.t.Fatalf("timed out waiting for message")
		}
	}
}

func (c *testClient) waitPublish(uri string, pred func(publishDiagnosticsParams) bool) publishDiagnosticsParams {
	c.t.Helper()
	var out publishDiagnosticsParams
	c.waitFor(func(m rpcMessage) bool {
		if m.Method != "textDocument/publishDiagnostics" {
			return false
		}
		var p publishDiagnosticsParams
		if json.Unmarshal(m.Params, &p) != nil || p.URI != uri {
			return false
		}
		if pred != nil && !pred(p) {
			return false
		}
		out = p
		return true
	})
	return out
}

func (c *testClient) initialize(params map[string]any) initializeResult {
	c.t.Helper()
	if params == nil {
		params = map[string]any{}
	}
	resp := c.request("initialize", params)
	if resp.Error != nil {
		c.t.Fatalf("initialize failed: %+v", resp.Error)
	}
	var result initializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		c.t.Fatalf("decode initialize result: %v", err)
	}
	c.notify("initialized", map[string]any{})
	return result
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func docURI(t *testing.T, dir, name string) string {
	t.Helper()
	return pathToURI(filepath.Join(dir, name))
}

func openDoc(c *testClient, uri, languageID, text string, version int) {
	c.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": uri, "languageId": languageID, "version": version, "text": text},
	})
}

func TestRequestBeforeInitialize(t *testing.T) {
	c := startServer(t)
	uri := docURI(t, t.TempDir(), "a.txt")
	openDoc(c, uri, "plaintext", "Wolrd", 1)
	resp := c.request("spelld/suggest", map[string]any{"word": "wolrd"})
	if resp.Error == nil || resp.Error.Code != codeServerNotInitialized {
		t.Fatalf("expected server not initialized, got %+v", resp.Error)
	}
	result := c.initialize(nil)
	if result.Capabilities.PositionEncoding != "utf-16" || result.ServerInfo.Name != "spelld" {
		t.Fatalf("initialize result = %+v", result)
	}
	if c.server.docs.len() != 0 {
		t.Fatal("didOpen before initialize must be ignored")
	}
	resp = c.request("initialize", map[string]any{})
	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Fatalf("second initialize: %+v", resp.Error)
	}
}

func TestPositionEncodingNegotiation(t *testing.T) {
	c := startServer(t)
	result := c.initialize(map[string]any{
		"capabilities": map[string]any{
			"general": map[string]any{"positionEncodings": []string{"utf-8", "utf-16"}},
		},
	})
	if result.Capabilities.PositionEncoding != "utf-8" {
		t.Fatalf("positionEncoding = %q", result.Capabilities.PositionEncoding)
	}
	uri := docURI(t, t.TempDir(), "a.txt")
	openDoc(c, uri, "plaintext", "🙂 wolrd", 1)
	p := c.waitPublish(uri, nil)
	if len(p.Diagnostics) != 1 || p.Diagnostics[0].Range.Start.Character != 5 {
		t.Fatalf("utf-8 diagnostics = %+v", p.Diagnostics)
	}
}

func TestOpenPublishesDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := docURI(t, t.TempDir(), "notes.txt")
	openDoc(c, uri, "plaintext", "Hello, Wolrd!", 1)

	p := c.waitPublish(uri, nil)
	if p.Version == nil || *p.Version != 1 {
		t.Fatalf("version = %v", p.Version)
	}
	if len(p.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", p.Diagnostics)
	}
	d := p.Diagnostics[0]
	want := lspRange{Start: position{Line: 0, Character: 7}, End: position{Line: 0, Character: 12}}
	if d.Range != want || d.Source != "spelld" || d.Severity != 3 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Message != "Possible spelling issue 'Wolrd'." || !slices.Contains(d.Suggestions, "World") {
		t.Fatalf("diagnostic = %+v", d)
	}

	c.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "Hello, World!"}},
	})
	p = c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return p.Version != nil && *p.Version == 2 })
	if len(p.Diagnostics) != 0 {
		t.Fatalf("fixed text still reports %+v", p.Diagnostics)
	}
}

func TestCloseClearsDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := docURI(t, t.TempDir(), "notes.txt")
	openDoc(c, uri, "plaintext", "some wrold notes", 1)
	c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 1 })

	c.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	p := c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 0 })
	if p.Version != nil {
		t.Fatalf("clear should not carry a version: %+v", p)
	}
}

func TestCodeActionsAndSuggest(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := docURI(t, t.TempDir(), "notes.txt")
	openDoc(c, uri, "plaintext", "hello wolrd", 1)
	p := c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 1 })

	resp := c.request("textDocument/codeAction", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range":        p.Diagnostics[0].Range,
		"context":      map[string]any{"diagnostics": p.Diagnostics},
	})
	var actions []codeAction
	if err := json.Unmarshal(resp.Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	var titles []string
	for _, a := range actions {
		titles = append(titles, a.Title)
	}
	for _, want := range []string{"Replace with 'world'", "Add 'wolrd' to dictionary", "Add 'wolrd' to global dictionary"} {
		if !slices.Contains(titles, want) {
			t.Fatalf("missing action %q in %v", want, titles)
		}
	}
	if !actions[0].IsPreferred || actions[0].Edit == nil {
		t.Fatalf("first action should be the preferred replacement: %+v", actions[0])
	}

	resp = c.request("spelld/suggest", map[string]any{"word": "Wrold"})
	var sugs []string
	if err := json.Unmarshal(resp.Result, &sugs); err != nil || !slices.Contains(sugs, "World") {
		t.Fatalf("suggest = %v (%v)", sugs, err)
	}
}

func TestAddWordCommandRechecks(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	c.initialize(map[string]any{"rootUri": pathToURI(root)})
	uri := docURI(t, root, "notes.txt")
	openDoc(c, uri, "plaintext", "the spelld plan", 1)
	c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 1 })

	resp := c.request("workspace/executeCommand", map[string]any{
		"command":   commandAddWord,
		"arguments": []any{"spelld", uri},
	})
	if resp.Error != nil {
		t.Fatalf("executeCommand: %+v", resp.Error)
	}
	data, err := os.ReadFile(filepath.Join(root, "spelld.toml"))
	if err != nil || !strings.Contains(string(data), "spelld") {
		t.Fatalf("config not written: %q %v", data, err)
	}
	c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 0 })
}

func TestCodeActionRecomputesSuggestions(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	uri := docURI(t, t.TempDir(), "notes.txt")
	openDoc(c, uri, "plaintext", "hello wolrd", 1)
	p := c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 1 })

	d := p.Diagnostics[0]
	echoed := map[string]any{
		"range":    d.Range,
		"severity": d.Severity,
		"code":     d.Code,
		"source":   d.Source,
		"message":  d.Message,
		"data":     d.Data,
	}
	resp := c.request("textDocument/codeAction", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range":        d.Range,
		"context":      map[string]any{"diagnostics": []any{echoed}},
	})
	var actions []codeAction
	if err := json.Unmarshal(resp.Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	if len(actions) == 0 || actions[0].Title != "Replace with 'world'" || !actions[0].IsPreferred {
		t.Fatalf("actions = %+v", actions)
	}
	edits := actions[0].Edit.Changes[uri]
	if len(edits) != 1 || edits[0].NewText != "world" || edits[0].Range != d.Range {
		t.Fatalf("edit = %+v", actions[0].Edit)
	}
}

func TestAddWordCommandsDoNotLoseWords(t *testing.T) {
	c := startServer(t)
	root := t.TempDir()
	c.initialize(map[string]any{"rootUri": pathToURI(root)})
	uri := docURI(t, root, "notes.txt")

	c.send(map[string]any{"id": 100, "method": "workspace/executeCommand", "params": map[string]any{
		"command": commandAddWord, "arguments": []any{"zzqx", uri},
	}})
	c.send(map[string]any{"id": 101, "method": "workspace/executeCommand", "params": map[string]any{
		"command": commandAddWord, "arguments": []any{"qqvz", uri},
	}})
	// The read loop keeps serving while the writes are pending.
	sugs := c.request("spelld/suggest", map[string]any{"word": "wolrd"})
	if sugs.Error != nil {
		t.Fatalf("suggest: %+v", sugs.Error)
	}
	for _, id := range []int{100, 101} {
		want := mustJSON(t, id)
		resp := c.waitFor(func(m rpcMessage) bool { return m.Method == "" && bytes.Equal(m.ID, want) })
		if resp.Error != nil {
			t.Fatalf("executeCommand %d: %+v", id, resp.Error)
		}
	}
	data, err := os.ReadFile(filepath.Join(root, "spelld.toml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	for _, w := range []string{"zzqx", "qqvz"} {
		if !strings.Contains(string(data), w) {
			t.Fatalf("config lost %q: %s", w, data)
		}
	}

	bad := c.request("workspace/executeCommand", map[string]any{"command": commandAddWord, "arguments": []any{}})
	if bad.Error == nil || bad.Error.Code != codeInvalidParams {
		t.Fatalf("missing word: %+v", bad.Error)
	}
}

func TestProjectConfigApplies(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "spelld.toml"), []byte(`
words = ["wolrd"]
flag_words = ["hello"]
severity = "warning"
ignore_paths = ["gen/**"]
`), 0o644); err != nil {
		t.Fatal(err)
	}
	c := startServer(t)
	c.initialize(map[string]any{"rootUri": pathToURI(root)})

	uri := docURI(t, root, "notes.txt")
	openDoc(c, uri, "plaintext", "hello wolrd", 1)
	p := c.waitPublish(uri, nil)
	if len(p.Diagnostics) != 1 || p.Diagnostics[0].Data.Word != "hello" || p.Diagnostics[0].Severity != 2 {
		t.Fatalf("diagnostics = %+v", p.Diagnostics)
	}

	ignored := docURI(t, root, "gen/out.txt")
	openDoc(c, ignored, "plaintext", "zzqx wrold", 1)
	p = c.waitPublish(ignored, nil)
	if len(p.Diagnostics) != 0 {
		t.Fatalf("ignored path reported %+v", p.Diagnostics)
	}
}

func TestClientSettingsOverlay(t *testing.T) {
	c := startServer(t)
	c.initialize(map[string]any{
		"initializationOptions": map[string]any{"spelld": map[string]any{"words": []string{"Wolrd"}}},
	})
	uri := docURI(t, t.TempDir(), "notes.txt")
	openDoc(c, uri, "plaintext", "hello wolrd", 1)
	p := c.waitPublish(uri, nil)
	if len(p.Diagnostics) != 0 {
		t.Fatalf("accepted word reported: %+v", p.Diagnostics)
	}
	c.notify("workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{"spelld": map[string]any{"words": []string{}}},
	})
	c.waitPublish(uri, func(p publishDiagnosticsParams) bool { return len(p.Diagnostics) == 1 })
}

func TestServerInitiatedRequestCorrelates(t *testing.T) {
	c := startServer(t)
	c.initialize(map[string]any{
		"capabilities": map[string]any{
			"workspace": map[string]any{"didChangeWatchedFiles": map[string]any{"dynamicRegistration": true}},
		},
	})
	req := c.waitFor(func(m rpcMessage) bool { return m.Method == "client/registerCapability" })
	if len(req.ID) == 0 {
		t.Fatalf("registerCapability must be a request: %+v", req)
	}
	c.send(map[string]any{"id": json.RawMessage(req.ID), "result": nil})

	deadline := time.Now().Add(waitTimeout)
	for c.server.conn.pendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("pending request was not resolved")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMalformedBodyDoesNotStallStream(t *testing.T) {
	c := startServer(t)
	if _, err := c.in.Write([]byte("Content-Length: 5\r\n\r\n{bad}")); err != nil {
		t.Fatal(err)
	}
	resp := c.waitFor(func(m rpcMessage) bool { return m.Error != nil && m.Error.Code == codeParseError })
	if string(resp.ID) != "null" {
		t.Fatalf("parse error id = %s", resp.ID)
	}
	c.initialize(nil)
}

func TestShutdownAndExit(t *testing.T) {
	c := startServer(t)
	c.initialize(nil)
	resp := c.request("shutdown", nil)
	if resp.Error != nil {
		t.Fatalf("shutdown: %+v", resp.Error)
	}
	resp = c.request("spelld/suggest", map[string]any{"word": "wolrd"})
	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Fatalf("request after shutdown: %+v", resp.Error)
	}
	c.notify("exit", nil)
	select {
	case err := <-c.done:
		if !errors.Is(err, ErrExit) {
			t.Fatalf("Run returned %v", err)
		}
		c.done <- err
	case <-time.After(waitTimeout):
		t.Fatal("server did not exit")
	}
}

func newUnitServer(t *testing.T, out io.Writer) *Server {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return NewServer(bytes.NewReader(nil), out, Options{
		Store:   testStore(t),
		NoWatch: true,
		Log:     io.Discard,
	})
}

func TestStaleResultIsNotPublished(t *testing.T) {
	var out bytes.Buffer
	s := newUnitServer(t, &out)
	uri := docURI(t, t.TempDir(), "a.txt")
	v1 := s.docs.open(textDocumentItem{URI: uri, LanguageID: "plaintext", Version: 1, Text: "wolrd"})
	v2, err := s.docs.change(v1.uri, 2, []textDocumentContentChangeEvent{{Text: "world"}}, source.EncodingUTF16)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := s.docs.change(v1.uri, 2, nil, source.EncodingUTF16); !errors.Is(err, errStaleVersion) {
		t.Fatalf("repeated version: %v", err)
	}

	s.analyze(context.Background(), v1.uri, v1.gen)
	if out.Len() != 0 {
		t.Fatalf("superseded pass published: %s", out.String())
	}
	s.publish(v1, []lspDiagnostic{{Message: "stale"}})
	if out.Len() != 0 {
		t.Fatalf("stale result published: %s", out.String())
	}
	s.analyze(context.Background(), v2.uri, v2.gen)
	if !strings.Contains(out.String(), `"version":2`) {
		t.Fatalf("current pass not published: %s", out.String())
	}
}

func TestClosedDocumentResultIsDiscarded(t *testing.T) {
	var out bytes.Buffer
	s := newUnitServer(t, &out)
	uri := docURI(t, t.TempDir(), "a.txt")
	doc := s.docs.open(textDocumentItem{URI: uri, LanguageID: "plaintext", Version: 1, Text: "wolrd"})
	s.docs.close(doc.uri)
	s.publish(doc, []lspDiagnostic{{Message: "late"}})
	if out.Len() != 0 {
		t.Fatalf("closed document published: %s", out.String())
	}

	reopened := s.docs.open(textDocumentItem{URI: uri, LanguageID: "plaintext", Version: 1, Text: "wolrd"})
	if reopened.gen == doc.gen {
		t.Fatal("reopen must start a new generation")
	}
	s.publish(doc, []lspDiagnostic{{Message: "late"}})
	if out.Len() != 0 {
		t.Fatalf("result from previous open published: %s", out.String())
	}
}

func TestDocumentLanguageResolution(t *testing.T) {
	s := newUnitServer(t, io.Discard)
	doc := s.docs.open(textDocumentItem{URI: "file:///tmp/x/main.go", Version: 1})
	if doc.lang.Tag != language.Go {
		t.Fatalf("language = %v", doc.lang.Tag)
	}
	doc = s.docs.open(textDocumentItem{URI: "untitled:Untitled-1", LanguageID: "python", Version: 1})
	if doc.lang.Tag != language.Python || doc.path != "" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestApplyIncrementalChanges(t *testing.T) {
	text := "a🙂b\nsecond"
	got := applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{Line: 0, Character: 3}, End: position{Line: 0, Character: 4}}, Text: "B"},
		{Range: &lspRange{Start: position{Line: 1, Character: 0}, End: position{Line: 1, Character: 6}}, Text: "2nd"},
	}, source.EncodingUTF16)
	if got != "a🙂B\n2nd" {
		t.Fatalf("applyChanges = %q", got)
	}
}
