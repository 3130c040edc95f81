package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// ErrConnClosed is returned to callers still waiting for a response when
// the session ends.
var ErrConnClosed = errors.New("lsp connection closed")

// ResponseError is an error response received for a server-initiated call.
type ResponseError struct {
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// conn is the outbound half of the transport: serialized writes plus the
// pending map correlating server-initiated requests with client responses.
type conn struct {
	out    *bufio.Writer
	sendMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan *rpcMessage
	closed  bool
}

func newConn(w io.Writer) *conn {
	return &conn{
		out:     bufio.NewWriter(w),
		pending: make(map[int64]chan *rpcMessage),
	}
}

func (c *conn) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := writeMessage(c.out, payload); err != nil {
		return err
	}
	return c.out.Flush()
}

func (c *conn) reply(id json.RawMessage, result any) error {
	return c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (c *conn) replyError(id json.RawMessage, code int, message string) error {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	})
}

func (c *conn) notify(method string, params any) error {
	return c.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

// call sends a request to the client and waits for the correlated
// response. It must not be called from the read loop.
func (c *conn) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnClosed
	}
	c.nextID++
	id := c.nextID
	ch := make(chan *rpcMessage, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	err := c.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		c.forget(id)
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrConnClosed
		}
		if resp.Error != nil {
			return nil, &ResponseError{Code: resp.Error.Code, Message: resp.Error.Message}
		}
		return resp.Result, nil
	}
}

func (c *conn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// resolve hands a response to its waiting caller. It reports false when
// the id is unknown.
func (c *conn) resolve(msg *rpcMessage) bool {
	id, err := strconv.ParseInt(string(msg.ID), 10, 64)
	if err != nil {
		return false
	}
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if !ok {
		return false
	}
	ch <- msg
	return true
}

// pendingCount reports outstanding server-initiated requests.
func (c *conn) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// close fails every outstanding call with ErrConnClosed.
func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
