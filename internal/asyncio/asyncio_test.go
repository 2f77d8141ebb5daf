package asyncio

import (
	"bytes"
	"errors"
	"testing"

	"coophttp/internal/task"
)

type noopWaker struct{ woken int }

func (w *noopWaker) Wake() { w.woken++ }

type noopContext struct{ w task.Waker }

func (c noopContext) Waker() task.Waker { return c.w }

func newCx() task.Context { return noopContext{w: &noopWaker{}} }

// sliceReader is a Reader over a fixed byte slice, always Ready, used to
// drive BufReader/Buffer tests without a real socket.
type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) PollRead(cx task.Context, buf []byte) (int, error, task.Poll) {
	n := copy(buf, r.data[r.pos:])
	r.pos += n
	return n, nil, task.Ready
}

// pendingThenReader yields Pending once, then delegates to inner.
type pendingThenReader struct {
	inner   Reader
	pending bool
}

func (r *pendingThenReader) PollRead(cx task.Context, buf []byte) (int, error, task.Poll) {
	if !r.pending {
		r.pending = true
		cx.Waker().Wake()
		return 0, nil, task.Pending
	}
	return r.inner.PollRead(cx, buf)
}

func TestBufferReadMoreAndConsume(t *testing.T) {
	b := NewBuffer(16)
	src := &sliceReader{data: []byte("hello world")}

	n, err, poll := b.PollReadMore(newCx(), src)
	if poll != task.Ready || err != nil {
		t.Fatalf("unexpected poll=%v err=%v", poll, err)
	}
	if n != len("hello world") {
		t.Fatalf("expected %d bytes read, got %d", len("hello world"), n)
	}
	if b.Size() != n {
		t.Fatalf("expected size %d, got %d", n, b.Size())
	}

	out := make([]byte, 5)
	got, _, _ := b.PollRead(newCx(), out)
	if got != 5 || string(out) != "hello" {
		t.Fatalf("expected 'hello', got %q (%d)", out, got)
	}
	if b.Size() != n-5 {
		t.Fatalf("expected remaining size %d, got %d", n-5, b.Size())
	}
}

func TestBufferBackshiftCompacts(t *testing.T) {
	b := NewBuffer(8)
	src := &sliceReader{data: []byte("abcdefgh")}
	b.PollReadMore(newCx(), src)
	b.Consume(4)
	b.Backshift()
	if b.Size() != 4 {
		t.Fatalf("expected size 4 after backshift, got %d", b.Size())
	}
	if string(b.Bytes()) != "efgh" {
		t.Fatalf("expected efgh, got %q", b.Bytes())
	}
	if b.Remaining() != 4 {
		t.Fatalf("expected remaining 4 after backshift frees tail, got %d", b.Remaining())
	}
}

func TestBufReaderPropagatesPending(t *testing.T) {
	src := &pendingThenReader{inner: &sliceReader{data: []byte("data")}}
	r := NewBufReader(src)

	out := make([]byte, 4)
	_, _, poll := r.PollRead(newCx(), out)
	if poll != task.Pending {
		t.Fatalf("expected first poll to be Pending, got %v", poll)
	}

	n, err, poll := r.PollRead(newCx(), out)
	if poll != task.Ready || err != nil {
		t.Fatalf("expected second poll ready, got poll=%v err=%v", poll, err)
	}
	if n != 4 || string(out) != "data" {
		t.Fatalf("expected 'data', got %q (%d)", out, n)
	}
}

func TestBufReaderFillBufPeeksWithoutConsuming(t *testing.T) {
	r := NewBufReader(&sliceReader{data: []byte("peekaboo")})
	buf, err, poll := r.PollFillBuf(newCx())
	if poll != task.Ready || err != nil {
		t.Fatalf("unexpected poll=%v err=%v", poll, err)
	}
	if string(buf) != "peekaboo" {
		t.Fatalf("expected full buffer peek, got %q", buf)
	}
	r.Consume(4)
	if string(r.Buffer()) != "aboo" {
		t.Fatalf("expected remaining 'aboo', got %q", r.Buffer())
	}
}

// sliceWriter is a Writer collecting output into a bytes.Buffer, always
// Ready, used for BufWriter flush tests.
type sliceWriter struct {
	out bytes.Buffer
}

func (w *sliceWriter) PollWrite(cx task.Context, buf []byte) (int, error, task.Poll) {
	n, err := w.out.Write(buf)
	return n, err, task.Ready
}
func (w *sliceWriter) PollFlush(cx task.Context) (error, task.Poll) { return nil, task.Ready }
func (w *sliceWriter) PollClose(cx task.Context) (error, task.Poll) { return nil, task.Ready }

func TestBufWriterWritesThenFlush(t *testing.T) {
	inner := &sliceWriter{}
	w := NewBufWriter(inner)

	n := w.WriteToBuf([]byte("hello"))
	if n != 5 {
		t.Fatalf("expected 5 bytes buffered, got %d", n)
	}

	err, poll := w.PollFlush(newCx())
	if poll != task.Ready || err != nil {
		t.Fatalf("unexpected poll=%v err=%v", poll, err)
	}
	if inner.out.String() != "hello" {
		t.Fatalf("expected inner to receive 'hello', got %q", inner.out.String())
	}
}

func TestBufWriterWriteToBufRespectsSpareCapacity(t *testing.T) {
	w := NewBufWriterSize(&sliceWriter{}, 4)
	n := w.WriteToBuf([]byte("abcdef"))
	if n != 4 {
		t.Fatalf("expected only 4 bytes accepted, got %d", n)
	}
}

type zeroWriter struct{}

func (zeroWriter) PollWrite(cx task.Context, buf []byte) (int, error, task.Poll) {
	return 0, nil, task.Ready
}
func (zeroWriter) PollFlush(cx task.Context) (error, task.Poll) { return nil, task.Ready }
func (zeroWriter) PollClose(cx task.Context) (error, task.Poll) { return nil, task.Ready }

func TestBufWriterFlushReportsWriteZero(t *testing.T) {
	w := NewBufWriter(zeroWriter{})
	w.WriteToBuf([]byte("x"))
	err, poll := w.PollFlush(newCx())
	if poll != task.Ready || !errors.Is(err, ErrWriteZero) {
		t.Fatalf("expected ErrWriteZero, got poll=%v err=%v", poll, err)
	}
}

type pendingOnceWriter struct {
	pending bool
	inner   sliceWriter
}

func (w *pendingOnceWriter) PollWrite(cx task.Context, buf []byte) (int, error, task.Poll) {
	if !w.pending {
		w.pending = true
		return 0, nil, task.Pending
	}
	return w.inner.PollWrite(cx, buf)
}
func (w *pendingOnceWriter) PollFlush(cx task.Context) (error, task.Poll) { return nil, task.Ready }
func (w *pendingOnceWriter) PollClose(cx task.Context) (error, task.Poll) { return nil, task.Ready }

func TestBufWriterFlushDoesNotResendAfterPartialProgress(t *testing.T) {
	inner := &sliceWriter{}
	w := NewBufWriter(inner)
	w.WriteToBuf([]byte("ab"))

	// First flush writes "a" via PollWrite, then goes Pending before "b".
	first := &partialThenPendingWriter{inner: inner}
	w2 := NewBufWriter(first)
	w2.WriteToBuf([]byte("ab"))

	_, poll := w2.PollFlush(newCx())
	if poll != task.Pending {
		t.Fatalf("expected Pending on first flush attempt, got %v", poll)
	}

	err, poll := w2.PollFlush(newCx())
	if poll != task.Ready || err != nil {
		t.Fatalf("unexpected poll=%v err=%v", poll, err)
	}
	if inner.out.String() != "ab" {
		t.Fatalf("expected exactly 'ab' written once, got %q", inner.out.String())
	}
}

// partialThenPendingWriter writes exactly one byte then reports Pending
// once, so the caller's BufWriter must trim the already-written byte off
// its pending buffer before the next flush call resumes, rather than
// resending it.
type partialThenPendingWriter struct {
	inner *sliceWriter
	calls int
}

func (w *partialThenPendingWriter) PollWrite(cx task.Context, buf []byte) (int, error, task.Poll) {
	w.calls++
	switch w.calls {
	case 1:
		n, err := w.inner.out.Write(buf[:1])
		return n, err, task.Ready
	case 2:
		return 0, nil, task.Pending
	default:
		n, err := w.inner.out.Write(buf)
		return n, err, task.Ready
	}
}
func (w *partialThenPendingWriter) PollFlush(cx task.Context) (error, task.Poll) {
	return nil, task.Ready
}
func (w *partialThenPendingWriter) PollClose(cx task.Context) (error, task.Poll) {
	return nil, task.Ready
}
