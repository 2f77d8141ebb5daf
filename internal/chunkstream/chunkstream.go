// Package chunkstream splits an incoming byte stream into CRLF-delimited
// chunks (request line, each header line, and so on) the way the source's
// StreamParser does — distinct from HTTP's own `chunked` transfer-encoding,
// which spec.md's Non-goals explicitly exclude from decoding. Grounded on
// original_source/http/src/server/http1/types/mod.rs.
package chunkstream

import (
	"bytes"
	"fmt"

	"coophttp/internal/asyncio"
	"coophttp/internal/task"
)

// Separator is the two-byte CRLF sequence a chunk ends on.
var Separator = []byte("\r\n")

// ErrNonASCII reports a byte above 127 found while scanning for the next
// chunk boundary, carrying the offset it occurred at (within the scanned
// window, not the whole stream).
type ErrNonASCII struct{ Offset int }

func (e *ErrNonASCII) Error() string {
	return fmt.Sprintf("invalid (non-ASCII) byte found at offset %d", e.Offset)
}

// nextChunk scans buffer starting at index for the next CRLF, validating
// every byte visited is ASCII (<=127) along the way. Returns the index the
// separator starts at, or ok=false if no complete separator is present yet
// in buffer (the caller should read more and retry).
func nextChunk(buffer []byte, index int) (at int, ok bool, err error) {
	if index >= len(buffer) {
		return 0, false, nil
	}
	if buffer[index] > 127 {
		return 0, false, &ErrNonASCII{Offset: index}
	}

	length := len(buffer)
	for index < length {
		next := index + 1
		if next >= length {
			break
		}
		if buffer[next] > 127 {
			return 0, false, &ErrNonASCII{Offset: next}
		}
		if bytes.Equal(buffer[index:next+1], Separator) {
			return index, true, nil
		}
		index = next
	}
	return 0, false, nil
}

// Parser pulls complete chunks off an asyncio.BufReader, buffering any
// chunks found past the first one in a single read so they are handed out
// one at a time on subsequent Poll calls without re-scanning.
type Parser struct {
	reader  *asyncio.BufReader
	pending [][]byte
	done    bool
}

// New wraps reader for chunk-at-a-time parsing.
func New(reader *asyncio.BufReader) *Parser {
	return &Parser{reader: reader}
}

// Poll returns the next chunk (with its trailing CRLF already stripped),
// ok=false with no error once the underlying stream is exhausted with no
// further chunk pending, or suspends as task.Pending while waiting on more
// bytes from the reader.
func (p *Parser) Poll(cx task.Context) (chunk []byte, ok bool, err error, poll task.Poll) {
	if len(p.pending) > 0 {
		chunk = p.pending[0]
		p.pending = p.pending[1:]
		return chunk, true, nil, task.Ready
	}
	if p.done {
		return nil, false, nil, task.Ready
	}

	peek, rerr, rpoll := p.reader.PollFillBuf(cx)
	if rpoll == task.Pending {
		return nil, false, nil, task.Pending
	}
	if rerr != nil {
		return nil, false, rerr, task.Ready
	}
	if len(peek) == 0 {
		p.done = true
		return nil, false, nil, task.Ready
	}

	index := 0
	sepLen := len(Separator)
	for {
		at, found, err := nextChunk(peek, index)
		if err != nil {
			return nil, false, err, task.Ready
		}
		if !found {
			break
		}
		p.pending = append(p.pending, peek[index:at])
		index = at + sepLen
	}
	p.reader.Consume(index)

	if len(p.pending) == 0 {
		// No complete chunk yet in what's buffered; suspend until the
		// reader has more bytes to offer on a future poll.
		cx.Waker().Wake()
		return nil, false, nil, task.Pending
	}

	chunk = p.pending[0]
	p.pending = p.pending[1:]
	return chunk, true, nil, task.Ready
}
