// Package asyncio provides the buffered reader/writer and non-blocking
// socket adapter the HTTP engine runs its chunk parser and response writer
// over. Grounded on the source's async_lib/src/future/io tree: AsyncRead/
// AsyncWrite traits (contracts.go), AsyncBuffer (buffer.go), AsyncBufReader/
// AsyncBufWritter (bufreader.go/bufwriter.go), and future/net/tcp.rs for the
// non-blocking socket translation (netconn.go).
package asyncio

import "coophttp/internal/task"

// Reader is the async equivalent of io.Reader: PollRead either completes
// with (n, err) or reports Pending, having arranged (directly or via the
// caller's busy-poll convention) for cx's waker to fire again once more
// data might be available.
type Reader interface {
	PollRead(cx task.Context, buf []byte) (n int, err error, poll task.Poll)
}

// Writer is the async equivalent of io.Writer, plus Flush/Close phases
// matching the source's PollWrite trait (poll_write/poll_flush/poll_close).
type Writer interface {
	PollWrite(cx task.Context, buf []byte) (n int, err error, poll task.Poll)
	PollFlush(cx task.Context) (err error, poll task.Poll)
	PollClose(cx task.Context) (err error, poll task.Poll)
}
