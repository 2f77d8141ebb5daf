package http1

import (
	"errors"
	"fmt"

	"coophttp/internal/asyncio"
	"coophttp/internal/task"
)

// ErrAlreadySent is returned by Write/WriteResponseFuture when a Response
// has already been sent once. Grounded on original_source/http/src/
// response.rs's Response, which tracks a "has this gone out yet" flag so a
// handler cannot accidentally write its response twice.
var ErrAlreadySent = errors.New("response has already been sent")

// Response is a server-built HTTP/1.x response: a status line, a header
// set, and a body given as a sequence of byte chunks (so a handler can
// stream a body across several writes instead of building one giant
// buffer up front). Grounded on original_source/http/src/response.rs.
type Response struct {
	Status  Status
	Headers *Headers
	Body    [][]byte

	sent bool
}

// NewResponse returns an empty response with the given status, headers
// set to NewHeaders().
func NewResponse(status Status) *Response {
	return &Response{Status: status, Headers: NewHeaders()}
}

// ErrorResponse builds a minimal text/plain response carrying message as
// its body, grounded on original_source/http/src/error.rs's HttpError
// plus Response::from_error (a status line, a Content-Type header, and
// the error text as the sole body chunk).
func ErrorResponse(status Status, message string) *Response {
	r := NewResponse(status)
	r.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	r.Body = [][]byte{[]byte(message)}
	return r
}

// Write appends a body chunk. It is a no-op error to call after the
// response has already been sent.
func (r *Response) Write(chunk []byte) error {
	if r.sent {
		return ErrAlreadySent
	}
	r.Body = append(r.Body, chunk)
	return nil
}

// WriteResponseFuture serializes a Response onto an asyncio.BufWriter:
// status line, then each header, then a blank line, then each body chunk,
// then flush. Grounded on the source's write_response (status line +
// headers + CRLF + body, one synchronous write call each); reshaped here
// into a Poll-driven sequence of writer stages so a slow or
// partially-ready connection suspends mid-response instead of blocking
// the whole executor thread.
type WriteResponseFuture struct {
	writer   *asyncio.BufWriter
	response *Response
	version  Version
	bodyOnly bool

	wire      []byte
	bodyIndex int
	stage     writeStage
	err       error
}

type writeStage int

const (
	stageBuildHead writeStage = iota
	stageWriteHead
	stageWriteBody
	stageFlush
	stageWriteDone
)

// NewWriteResponseFuture prepares resp to be written to w, with version on
// the status line. Grounded on SPEC_FULL.md's response-writing operation
// ("emit the response using the version from the request") — the caller
// threads through whatever HTTP-Version it parsed off the request, rather
// than this future assuming one. It fails immediately (Err() returns
// ErrAlreadySent) if resp was already sent.
func NewWriteResponseFuture(w *asyncio.BufWriter, resp *Response, version Version) *WriteResponseFuture {
	if resp.sent {
		return &WriteResponseFuture{err: ErrAlreadySent, stage: stageWriteDone}
	}
	resp.sent = true
	return &WriteResponseFuture{writer: w, response: resp, version: version}
}

// NewWriteBodyOnlyFuture writes resp's body chunks with no status line or
// headers, the HTTP/0.9 wire format. Grounded on
// original_source/src/protocol/http0/response.rs's write, which only
// ever writes the body chunks.
func NewWriteBodyOnlyFuture(w *asyncio.BufWriter, resp *Response) *WriteResponseFuture {
	if resp.sent {
		return &WriteResponseFuture{err: ErrAlreadySent, stage: stageWriteDone}
	}
	resp.sent = true
	return &WriteResponseFuture{writer: w, response: resp, bodyOnly: true, stage: stageWriteBody}
}

// Err returns the error Poll settled on, if any. Valid only once Poll has
// returned task.Ready.
func (f *WriteResponseFuture) Err() error { return f.err }

// Poll implements task.Future.
func (f *WriteResponseFuture) Poll(cx task.Context) task.Poll {
	for {
		switch f.stage {
		case stageBuildHead:
			f.wire = buildHead(f.response, f.version)
			f.stage = stageWriteHead

		case stageWriteHead:
			if len(f.wire) == 0 {
				f.stage = stageWriteBody
				continue
			}
			n := f.writer.WriteToBuf(f.wire)
			f.wire = f.wire[n:]
			if n == 0 {
				if err, poll := f.writer.PollFlush(cx); poll == task.Pending {
					return task.Pending
				} else if err != nil {
					f.err = err
					f.stage = stageWriteDone
					return task.Ready
				}
				continue
			}

		case stageWriteBody:
			if f.bodyIndex >= len(f.response.Body) {
				f.stage = stageFlush
				continue
			}
			chunk := f.response.Body[f.bodyIndex]
			n := f.writer.WriteToBuf(chunk)
			if n < len(chunk) {
				f.response.Body[f.bodyIndex] = chunk[n:]
				if err, poll := f.writer.PollFlush(cx); poll == task.Pending {
					return task.Pending
				} else if err != nil {
					f.err = err
					f.stage = stageWriteDone
					return task.Ready
				}
				continue
			}
			f.bodyIndex++

		case stageFlush:
			err, poll := f.writer.PollFlush(cx)
			if poll == task.Pending {
				return task.Pending
			}
			f.err = err
			f.stage = stageWriteDone
			return task.Ready

		case stageWriteDone:
			return task.Ready
		}
	}
}

func buildHead(r *Response, version Version) []byte {
	var b []byte
	b = append(b, fmt.Sprintf("%s %s\r\n", version, r.Status)...)
	r.Headers.Each(func(name HeaderName, value HeaderValue) {
		b = append(b, fmt.Sprintf("%s: %s\r\n", name, value)...)
	})
	b = append(b, "\r\n"...)
	return b
}

// HandleResult is what a Router produces for a request: either a Response
// to send back, or Matched=false to signal no route recognized the
// request (the caller falls back to a default 404 the way the source's
// server loop does when handler lookup comes up empty).
type HandleResult struct {
	Response *Response
	Matched  bool
}

// Router dispatches a built request to a handler. Grounded on
// original_source/http/src/server/mod.rs's Server<PARTS: ServerParts>,
// which holds a parts table of route handlers consulted per connection;
// reshaped into a single-method interface so any routing strategy (static
// table, trie, middleware chain) can sit behind it.
type Router interface {
	// Handle returns a Future that resolves to the result of routing req.
	Handle(req *Request) task.ValueFuture[HandleResult]
}

// readyHandleResult is a Future already holding its result, for routers
// whose dispatch never itself suspends (a static lookup table, say).
type readyHandleResult struct{ result HandleResult }

// Ready wraps a result that is immediately available, satisfying
// task.ValueFuture[HandleResult] for synchronous routers.
func Ready(result HandleResult) task.ValueFuture[HandleResult] {
	return readyHandleResult{result: result}
}

func (r readyHandleResult) Poll(task.Context) task.Poll { return task.Ready }
func (r readyHandleResult) Value() HandleResult         { return r.result }
