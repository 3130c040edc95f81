package fuzztests

import (
	"bytes"
	"strconv"
	"testing"

	"spelld/internal/lsp"
)

// FuzzAccumulatorChunks frames one message delivered in chunks of a fuzzed
// size after fuzzed leading junk. The accumulator must never panic and,
// once the junk is dropped, must return the body intact.
func FuzzAccumulatorChunks(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`), []byte{}, uint8(1))
	f.Add([]byte(`{"text":"héllo 😀"}`), []byte("garbage\r\n\r\n"), uint8(3))
	f.Add([]byte{}, []byte("Content-Length: x\r\n\r\n"), uint8(7))

	f.Fuzz(func(t *testing.T, body, junk []byte, chunk uint8) {
		size := int(chunk%32) + 1
		var stream bytes.Buffer
		stream.Write(junk)
		stream.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n")
		stream.Write(body)
		data := stream.Bytes()

		acc := lsp.NewAccumulator(0)
		var got [][]byte
		for i := 0; i < len(data); i += size {
			_, _ = acc.Write(data[i:min(i+size, len(data))])
			for {
				b, ok, err := acc.Next()
				if err != nil {
					continue
				}
				if !ok {
					break
				}
				got = append(got, b)
			}
		}
		if len(junk) == 0 {
			if len(got) != 1 || !bytes.Equal(got[0], body) {
				t.Fatalf("framed %q, want one body %q", got, body)
			}
		}
	})
}
