package lsp

import (
	"encoding/json"

	"spelld/internal/config"
)

type traceSettings struct {
	Spelld struct {
		LSP struct {
			Trace *bool `json:"trace,omitempty"`
		} `json:"lsp"`
	} `json:"spelld"`
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didChangeConfiguration: %v", err)
		return nil
	}
	if s.applySettings(params.Settings) {
		s.reload("client settings changed")
	}
	return nil
}

// applySettings overlays the client's {"spelld": {...}} object and reports
// whether the spelling configuration changed.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var ts traceSettings
	if err := json.Unmarshal(raw, &ts); err == nil && ts.Spelld.LSP.Trace != nil {
		s.mu.Lock()
		s.traceLSP = *ts.Spelld.LSP.Trace
		s.mu.Unlock()
	}
	settings, ok, err := config.DecodeLSP(raw)
	if err != nil {
		s.logf("settings: %v", err)
		return false
	}
	if !ok {
		return false
	}
	s.mu.Lock()
	s.clientConfig = &settings
	s.mu.Unlock()
	return true
}
