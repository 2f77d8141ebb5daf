package asyncio

import (
	"errors"

	"coophttp/internal/task"
)

// ErrWriteZero mirrors io.ErrShortWrite for the specific "inner write
// reported zero progress on a non-empty buffer" case the source treats as
// fatal rather than retryable.
var ErrWriteZero = errors.New("asyncio: inner writer wrote zero bytes of pending data")

// ErrWriterPanicked is returned once a BufWriter has had an inner write
// fail mid-flush and is asked to flush or close again, mirroring the
// source's Sink::poll_ready check against the panicked flag. WriteToBuf
// does not check the flag.
var ErrWriterPanicked = errors.New("asyncio: writer is poisoned after a prior failed flush")

// BufWriter accumulates bytes in a growable-but-capacity-tracked buffer and
// flushes them to inner in one or more PollWrite calls. Grounded on the
// source's AsyncBufWritter: the panicked flag is set before each inner
// write attempt and cleared when the attempt succeeds or reports Pending,
// so a panic or an error mid-flush leaves the writer poisoned rather than
// silently retrying from a corrupt offset.
type BufWriter struct {
	inner    Writer
	buf      []byte
	capacity int
	panicked bool
}

// NewBufWriter wraps inner with a buffer capped at DefaultBufferSize.
func NewBufWriter(inner Writer) *BufWriter {
	return NewBufWriterSize(inner, DefaultBufferSize)
}

// NewBufWriterSize wraps inner with a buffer capped at the given capacity.
func NewBufWriterSize(inner Writer, capacity int) *BufWriter {
	return &BufWriter{inner: inner, capacity: capacity}
}

// Capacity reports the fixed capacity chosen at construction.
func (w *BufWriter) Capacity() int {
	return w.capacity
}

func (w *BufWriter) spareCapacity() int {
	return w.capacity - len(w.buf)
}

// WriteToBuf copies as much of p as fits in spare capacity into the
// internal buffer and returns how many bytes it accepted. It never blocks
// and never itself touches the inner writer; call Flush to push buffered
// bytes out.
func (w *BufWriter) WriteToBuf(p []byte) int {
	amt := w.spareCapacity()
	if amt > len(p) {
		amt = len(p)
	}
	w.buf = append(w.buf, p[:amt]...)
	return amt
}

// PollFlush drives buffered bytes out through inner.PollWrite until the
// buffer is empty. Bytes already confirmed written are dropped from the
// front of the buffer before returning, on every exit path including
// Pending and error, so a retried flush never resends them.
func (w *BufWriter) PollFlush(cx task.Context) (err error, poll task.Poll) {
	if w.panicked {
		return ErrWriterPanicked, task.Ready
	}

	written := 0
	defer func() {
		if written > 0 {
			w.buf = w.buf[written:]
		}
	}()

	for written < len(w.buf) {
		w.panicked = true
		n, werr, p := w.inner.PollWrite(cx, w.buf[written:])
		if p == task.Pending {
			w.panicked = false
			return nil, task.Pending
		}

		if werr != nil {
			return werr, task.Ready
		}
		w.panicked = false
		if n == 0 {
			return ErrWriteZero, task.Ready
		}
		written += n
	}

	return nil, task.Ready
}

// PollClose flushes any remaining buffered bytes, then closes inner.
func (w *BufWriter) PollClose(cx task.Context) (err error, poll task.Poll) {
	if err, poll := w.PollFlush(cx); poll == task.Pending || err != nil {
		return err, poll
	}
	return w.inner.PollClose(cx)
}

// Panicked reports whether a prior flush left the writer poisoned.
func (w *BufWriter) Panicked() bool {
	return w.panicked
}
