package lsp

import (
	"bytes"
	"errors"
	"testing"
)

func frame(body string) []byte {
	var buf bytes.Buffer
	_ = writeMessage(&buf, []byte(body))
	return buf.Bytes()
}

func drain(t *testing.T, acc *Accumulator) []string {
	t.Helper()
	var out []string
	for {
		body, ok, err := acc.Next()
		if err != nil {
			t.Fatalf("unexpected framing error: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, string(body))
	}
}

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	msg1 := `{"jsonrpc":"2.0","method":"one"}`
	msg2 := `{"jsonrpc":"2.0","method":"two"}`
	acc := NewAccumulator(0)
	_, _ = acc.Write(append(frame(msg1), frame(msg2)...))

	got := drain(t, acc)
	if len(got) != 2 || got[0] != msg1 || got[1] != msg2 {
		t.Fatalf("unexpected messages: %q", got)
	}
	if acc.Buffered() != 0 {
		t.Fatalf("buffer not consumed: %d bytes left", acc.Buffered())
	}
}

func TestFramingArbitraryChunks(t *testing.T) {
	bodies := []string{
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"text":"naïve café 🙂 wrold"}}`,
		`{"jsonrpc":"2.0","id":1,"result":null}`,
		`{"jsonrpc":"2.0","method":"x","params":"日本語のテキスト"}`,
	}
	var stream []byte
	for _, b := range bodies {
		stream = append(stream, frame(b)...)
	}
	for size := 1; size <= 13; size++ {
		acc := NewAccumulator(0)
		var got []string
		for off := 0; off < len(stream); off += size {
			end := min(off+size, len(stream))
			_, _ = acc.Write(stream[off:end])
			got = append(got, drain(t, acc)...)
		}
		if len(got) != len(bodies) {
			t.Fatalf("chunk size %d: got %d messages", size, len(got))
		}
		for i := range bodies {
			if got[i] != bodies[i] {
				t.Fatalf("chunk size %d: message %d = %q, want %q", size, i, got[i], bodies[i])
			}
		}
	}
}

func TestFramingWaitsInsideMultibyteCharacter(t *testing.T) {
	body := `{"t":"🙂"}`
	data := frame(body)
	// Cut one byte into the four-byte emoji.
	cut := bytes.Index(data, []byte("🙂")) + 1
	acc := NewAccumulator(0)
	_, _ = acc.Write(data[:cut])
	if _, ok, err := acc.Next(); ok || err != nil {
		t.Fatalf("decoded before body was complete: ok=%v err=%v", ok, err)
	}
	_, _ = acc.Write(data[cut:])
	got := drain(t, acc)
	if len(got) != 1 || got[0] != body {
		t.Fatalf("got %q", got)
	}
}

func TestFramingResyncsAfterMalformedHeader(t *testing.T) {
	good := `{"jsonrpc":"2.0","method":"ok"}`
	acc := NewAccumulator(0)
	_, _ = acc.Write([]byte("Content-Length: nope\r\n\r\n"))
	_, _ = acc.Write([]byte("X-Other: 1\r\n\r\n"))
	_, _ = acc.Write(frame(good))

	for i := 0; i < 2; i++ {
		_, ok, err := acc.Next()
		if ok || !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("frame %d: expected ErrMalformedHeader, got ok=%v err=%v", i, ok, err)
		}
	}
	got := drain(t, acc)
	if len(got) != 1 || got[0] != good {
		t.Fatalf("after resync got %q", got)
	}
}

func TestFramingSkipsOversizedBody(t *testing.T) {
	big := `{"pad":"` + string(bytes.Repeat([]byte("x"), 64)) + `"}`
	good := `{"ok":1}`
	stream := append(frame(big), frame(good)...)

	acc := NewAccumulator(16)
	split := len(frame(big)) / 2
	_, _ = acc.Write(stream[:split])
	_, ok, err := acc.Next()
	if ok || !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got ok=%v err=%v", ok, err)
	}
	_, _ = acc.Write(stream[split:])
	got := drain(t, acc)
	if len(got) != 1 || got[0] != good {
		t.Fatalf("after oversized body got %q", got)
	}
}

func TestFramingHeaderWithoutTerminatorIsBounded(t *testing.T) {
	acc := NewAccumulator(0)
	_, _ = acc.Write(bytes.Repeat([]byte("a"), maxHeaderSize+10))
	_, ok, err := acc.Next()
	if ok || !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got ok=%v err=%v", ok, err)
	}
	if acc.Buffered() >= len(headerEnd) {
		t.Fatalf("buffer kept %d bytes", acc.Buffered())
	}
}
