// Package fuzztests houses Go fuzz harnesses for the spelling pipeline and
// the LSP framing layer. They guard against panics and out-of-range spans
// on arbitrary input.
//
// Run one with, for example:
//
//	go test ./internal/fuzz -run=^$ -fuzz=FuzzCheck
package fuzztests
