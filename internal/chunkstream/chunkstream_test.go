package chunkstream

import (
	"testing"

	"coophttp/internal/asyncio"
	"coophttp/internal/task"
)

type noopWaker struct{ woken int }

func (w *noopWaker) Wake() { w.woken++ }

type noopContext struct{ w task.Waker }

func (c noopContext) Waker() task.Waker { return c.w }

func newCx() task.Context { return noopContext{w: &noopWaker{}} }

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) PollRead(cx task.Context, buf []byte) (int, error, task.Poll) {
	n := copy(buf, r.data[r.pos:])
	r.pos += n
	return n, nil, task.Ready
}

func TestParserSplitsOnCRLF(t *testing.T) {
	src := &sliceReader{data: []byte("GET / HTTP/1.0\r\nHost: x\r\n\r\n")}
	p := New(asyncio.NewBufReader(src))

	var chunks []string
	for {
		chunk, ok, err, poll := p.Poll(newCx())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if poll == task.Pending {
			continue
		}
		if !ok {
			break
		}
		chunks = append(chunks, string(chunk))
	}

	want := []string{"GET / HTTP/1.0", "Host: x", ""}
	if len(chunks) != len(want) {
		t.Fatalf("expected %v, got %v", want, chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, chunks)
		}
	}
}

func TestParserRejectsNonASCII(t *testing.T) {
	src := &sliceReader{data: []byte("GET /\x80 HTTP/1.0\r\n")}
	p := New(asyncio.NewBufReader(src))

	for {
		_, ok, err, poll := p.Poll(newCx())
		if poll == task.Pending {
			continue
		}
		if err != nil {
			var nonASCII *ErrNonASCII
			if e, is := err.(*ErrNonASCII); is {
				nonASCII = e
			}
			if nonASCII == nil {
				t.Fatalf("expected ErrNonASCII, got %v", err)
			}
			return
		}
		if !ok {
			t.Fatal("expected a non-ASCII parse error before stream end")
		}
	}
}

func TestParserEndsCleanlyOnEOF(t *testing.T) {
	src := &sliceReader{data: []byte("")}
	p := New(asyncio.NewBufReader(src))

	_, ok, err, poll := p.Poll(newCx())
	if poll == task.Pending {
		t.Fatal("did not expect Pending on an already-empty stream")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no chunk on empty stream")
	}
}
