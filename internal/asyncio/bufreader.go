package asyncio

import "coophttp/internal/task"

// BufReader pairs a fixed-capacity Buffer with an underlying Reader,
// refilling the buffer on demand the way the source's AsyncBufReader wraps
// an inner AsyncRead behind AsyncBuffer.
type BufReader struct {
	buf   *Buffer
	inner Reader
}

// NewBufReader wraps inner with a default-sized buffer.
func NewBufReader(inner Reader) *BufReader {
	return &BufReader{buf: NewDefaultBuffer(), inner: inner}
}

// NewBufReaderSize wraps inner with a buffer of the given capacity.
func NewBufReaderSize(inner Reader, capacity int) *BufReader {
	return &BufReader{buf: NewBuffer(capacity), inner: inner}
}

// PollRead always attempts one more underlying read into the buffer's
// unfilled tail before copying out to p, the same eager-refill order the
// source's AsyncBufReader::poll_read uses (read_more, then read). A reader
// that is pending on fresh bytes suspends the whole call even if some
// already-buffered data could technically satisfy p; this matches the
// source rather than optimizing it away.
func (r *BufReader) PollRead(cx task.Context, p []byte) (n int, err error, poll task.Poll) {
	if r.buf.Remaining() == 0 {
		r.buf.Backshift()
	}
	_, err, poll = r.buf.PollReadMore(cx, r.inner)
	if poll == task.Pending {
		return 0, nil, task.Pending
	}
	if err != nil {
		return 0, err, task.Ready
	}
	n = copy(p, r.buf.Bytes())
	r.buf.Consume(n)
	return n, nil, task.Ready
}

// PollFillBuf always attempts one more underlying read into the buffer's
// unfilled tail, then returns the unconsumed filled region without copying
// it out. Repeated calls (as the chunk parser makes while scanning for a
// CRLF) keep growing the buffered region one read at a time.
func (r *BufReader) PollFillBuf(cx task.Context) (buf []byte, err error, poll task.Poll) {
	if r.buf.Remaining() == 0 {
		r.buf.Backshift()
	}
	_, err, poll = r.buf.PollReadMore(cx, r.inner)
	if poll == task.Pending {
		return nil, nil, task.Pending
	}
	if err != nil {
		return nil, err, task.Ready
	}
	return r.buf.Bytes(), nil, task.Ready
}

// Consume marks amt bytes of the last-returned PollFillBuf slice as used.
func (r *BufReader) Consume(amt int) {
	r.buf.Consume(amt)
}

// Buffer exposes the currently filled, unconsumed bytes without consuming
// them, for callers (the chunk parser) that need to peek before deciding
// how much to consume.
func (r *BufReader) Buffer() []byte {
	return r.buf.Bytes()
}
