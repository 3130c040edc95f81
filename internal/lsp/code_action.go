package lsp

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"spelld/internal/config"
	"spelld/internal/engine"
	"spelld/internal/language"
	"spelld/internal/source"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.conn.replyError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, ok := s.docs.get(uri)
	actions := []codeAction{}
	for _, d := range params.Context.Diagnostics {
		if d.Source != diagnosticSource {
			continue
		}
		word := ""
		if d.Data != nil {
			word = d.Data.Word
		}
		if word == "" && ok {
			word = textInRange(doc.text, d.Range, s.currentEncoding())
		}
		if word == "" {
			continue
		}
		suggestions := d.Suggestions
		if len(suggestions) == 0 {
			suggestions = s.suggestFor(doc, ok, uri, word)
		}
		for i, sug := range suggestions {
			actions = append(actions, codeAction{
				Title:       fmt.Sprintf("Replace with '%s'", sug),
				Kind:        "quickfix",
				Diagnostics: []lspDiagnostic{d},
				IsPreferred: i == 0,
				Edit: &workspaceEdit{Changes: map[string][]textEdit{
					params.TextDocument.URI: {{Range: d.Range, NewText: sug}},
				}},
			})
		}
		actions = append(actions,
			codeAction{
				Title:       fmt.Sprintf("Add '%s' to dictionary", word),
				Kind:        "quickfix",
				Diagnostics: []lspDiagnostic{d},
				Command: &command{
					Title:     "Add to dictionary",
					Command:   commandAddWord,
					Arguments: []any{word, params.TextDocument.URI},
				},
			},
			codeAction{
				Title:       fmt.Sprintf("Add '%s' to global dictionary", word),
				Kind:        "quickfix",
				Diagnostics: []lspDiagnostic{d},
				Command: &command{
					Title:     "Add to global dictionary",
					Command:   commandAddWordGlobal,
					Arguments: []any{word},
				},
			},
		)
	}
	return s.conn.reply(msg.ID, actions)
}

// suggestFor recomputes replacements for a diagnostic that came back
// without its suggestions, which most clients drop.
func (s *Server) suggestFor(doc document, open bool, uri, word string) []string {
	if !open {
		doc = document{uri: uri, path: uriToPath(uri), lang: language.Resolve("", uri)}
	}
	prof := s.profileFor(doc)
	return prof.judge.Suggest(word, engine.DictionaryIDs(doc.lang, prof.resolved.Dictionaries))
}

func textInRange(text string, r lspRange, enc source.Encoding) string {
	idx := source.NewLineIndex(text)
	start := idx.OffsetAt(toPosition(r.Start), enc)
	end := idx.OffsetAt(toPosition(r.End), enc)
	if end <= start {
		return ""
	}
	return text[start:end]
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.conn.replyError(msg.ID, codeInvalidParams, "invalid params")
	}
	if params.Command != commandAddWord && params.Command != commandAddWordGlobal {
		return s.conn.replyError(msg.ID, codeInvalidParams, "unknown command "+params.Command)
	}
	if len(params.Arguments) == 0 {
		return s.conn.replyError(msg.ID, codeInvalidParams, "missing word argument")
	}
	var word string
	if err := json.Unmarshal(params.Arguments[0], &word); err != nil || word == "" {
		return s.conn.replyError(msg.ID, codeInvalidParams, "word argument must be a string")
	}

	var uri string
	if params.Command == commandAddWord && len(params.Arguments) > 1 {
		_ = json.Unmarshal(params.Arguments[1], &uri)
	}

	// Config rewrites run off the read loop, one at a time.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.addWordMu.Lock()
		err := s.addWord(params.Command, word, canonicalURI(uri))
		s.addWordMu.Unlock()
		if err != nil {
			if rerr := s.conn.replyError(msg.ID, codeRequestFailed, err.Error()); rerr != nil {
				s.logf("executeCommand reply: %v", rerr)
			}
			return
		}
		if rerr := s.conn.reply(msg.ID, nil); rerr != nil {
			s.logf("executeCommand reply: %v", rerr)
		}
	}()
	return nil
}

func (s *Server) addWord(cmd, word, uri string) error {
	var target string
	var err error
	if cmd == commandAddWordGlobal {
		target, err = config.GlobalFile()
	} else {
		target, err = s.projectFileFor(uri)
	}
	if err != nil {
		return err
	}
	added, err := config.AddWord(target, word)
	if err != nil {
		return err
	}
	s.logf("added %q to %s", word, target)
	if added {
		s.reload("word added")
	}
	return nil
}

// projectFileFor picks the spelld.toml that governs uri, falling back to
// a new file at the workspace root.
func (s *Server) projectFileFor(uri string) (string, error) {
	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()
	start := root
	if doc, ok := s.docs.get(uri); ok && doc.path != "" {
		start = filepath.Dir(doc.path)
	} else if p := uriToPath(uri); p != "" {
		start = filepath.Dir(p)
	}
	if start != "" {
		if p, ok, err := config.FindProjectFile(start); err != nil {
			return "", err
		} else if ok {
			return p, nil
		}
	}
	if root == "" {
		if start == "" {
			return "", fmt.Errorf("no workspace root to place %s", config.FileName)
		}
		root = start
	}
	return filepath.Join(root, config.FileName), nil
}

func (s *Server) handleSuggest(msg *rpcMessage) error {
	var params suggestParams
	if err := json.Unmarshal(msg.Params, &params); err != nil || params.Word == "" {
		return s.conn.replyError(msg.ID, codeInvalidParams, "invalid params")
	}
	doc, ok := s.docs.get(canonicalURI(params.URI))
	if !ok {
		doc = document{lang: language.Resolve(params.LanguageID, params.URI)}
	} else if params.LanguageID != "" {
		doc.lang = language.Resolve(params.LanguageID, doc.uri)
	}
	prof := s.profileFor(doc)
	ids := engine.DictionaryIDs(doc.lang, prof.resolved.Dictionaries)
	suggestions := prof.judge.Suggest(params.Word, ids)
	if suggestions == nil {
		suggestions = []string{}
	}
	return s.conn.reply(msg.ID, suggestions)
}
