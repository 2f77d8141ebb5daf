package http1

import (
	"fmt"
	"strconv"
	"strings"

	"coophttp/internal/asyncio"
	"coophttp/internal/chunkstream"
	"coophttp/internal/httpuri"
	"coophttp/internal/task"
)

// ErrBodyConsumed is returned by a second Body() read on a Request; a
// connection's body buffer is one-shot the way the source's
// Http1RequestBody::body() flips a consumed flag on first use.
var ErrBodyConsumed = fmt.Errorf("request body has already been read")

// Request is a fully parsed HTTP/1.x (or HTTP/0.9) request. Grounded on
// original_source/http/src/request.rs's RequestBuilder and
// original_source/src/http1/request.rs's parse_request.
type Request struct {
	URL     *httpuri.Url
	Method  Method
	Version Version
	Headers *Headers

	body     *asyncio.BufReader
	consumed bool
}

// Body returns the request's buffered body bytes. A second call returns
// ErrBodyConsumed, matching the one-shot RequestBody contract the source
// enforces with its own consumed flag.
func (r *Request) Body() ([]byte, error) {
	if r.consumed {
		return nil, ErrBodyConsumed
	}
	r.consumed = true
	if r.body == nil {
		return nil, nil
	}
	return r.body.Buffer(), nil
}

// ErrBuildRequest reports a failure parsing the request line or headers.
type ErrBuildRequest struct{ Reason string }

func (e *ErrBuildRequest) Error() string { return e.Reason }

func buildErr(format string, args ...any) error {
	return &ErrBuildRequest{Reason: fmt.Sprintf(format, args...)}
}

// requestBuildState steps BuildRequestFuture through the request line,
// then headers, then done.
type requestBuildState int

const (
	stateRequestLine requestBuildState = iota
	stateHeaders
	stateDone
)

// BuildRequestFuture drives chunkstream.Parser one chunk at a time to
// assemble a Request, suspending as task.Pending whenever the parser has
// no complete chunk buffered yet. Grounded on parse_request's sequential
// method/uri/version-then-headers read loop, reshaped into the
// poll-to-completion form every other I/O-bound piece of this package
// uses instead of parse_request's blocking reads.
type BuildRequestFuture struct {
	parser   *chunkstream.Parser
	reader   *asyncio.BufReader
	hostname string
	port     uint16

	state   requestBuildState
	method  Method
	uri     httpuri.Uri
	version Version
	headers *Headers

	result *Request
	err    error
}

// NewBuildRequestFuture starts assembling a request read from reader,
// filling in a default Host (hostname:port) for any relative/authority
// target the parsed URI doesn't already carry one for.
func NewBuildRequestFuture(reader *asyncio.BufReader, hostname string, port uint16) *BuildRequestFuture {
	return &BuildRequestFuture{
		parser:   chunkstream.New(reader),
		reader:   reader,
		hostname: hostname,
		port:     port,
		headers:  NewHeaders(),
	}
}

// Value returns the built Request and any build error. Valid only once
// Poll has returned task.Ready.
func (f *BuildRequestFuture) Value() (*Request, error) {
	return f.result, f.err
}

// Poll implements task.Future.
func (f *BuildRequestFuture) Poll(cx task.Context) task.Poll {
	for {
		switch f.state {
		case stateRequestLine:
			chunk, ok, err, poll := f.parser.Poll(cx)
			if poll == task.Pending {
				return task.Pending
			}
			if err != nil {
				f.err = err
				f.state = stateDone
				return task.Ready
			}
			if !ok {
				f.err = buildErr("empty request received")
				f.state = stateDone
				return task.Ready
			}
			if err := f.parseRequestLine(chunk); err != nil {
				f.err = err
				f.state = stateDone
				return task.Ready
			}
			f.state = stateHeaders

		case stateHeaders:
			chunk, ok, err, poll := f.parser.Poll(cx)
			if poll == task.Pending {
				return task.Pending
			}
			if err != nil {
				f.err = err
				f.state = stateDone
				return task.Ready
			}
			if !ok || len(chunk) == 0 {
				f.finish()
				f.state = stateDone
				return task.Ready
			}
			if err := f.parseHeaderLine(chunk); err != nil {
				f.err = err
				f.state = stateDone
				return task.Ready
			}

		case stateDone:
			return task.Ready
		}
	}
}

func (f *BuildRequestFuture) parseRequestLine(chunk []byte) error {
	fields := strings.Fields(string(chunk))
	if len(fields) == 0 {
		return buildErr("missing method at start of request")
	}

	method, ok := ParseMethod(fields[0])
	if !ok {
		return buildErr("%s is not a valid method!", fields[0])
	}
	f.method = method

	if len(fields) < 2 {
		return buildErr("uri missing from request")
	}
	uri, err := httpuri.ParseURI(fields[1])
	if err != nil {
		return err
	}
	f.uri = uri

	if len(fields) < 3 {
		// No HTTP-Version present: caller falls back to HTTP/0.9 handling
		// (GET-only, absolute-path-only) the way the source's
		// BuildError::MissingVersion routes into http0::build.
		return &ErrMissingVersion{Method: method, URI: uri}
	}
	version, err := ParseVersion([]byte(fields[2]))
	if err != nil {
		return err
	}
	f.version = version
	return nil
}

func (f *BuildRequestFuture) parseHeaderLine(chunk []byte) error {
	line := string(chunk)
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return buildErr("malformed header line: %q", line)
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	f.headers.Set(name, value)
	return nil
}

func (f *BuildRequestFuture) finish() {
	url := resolveRequestURL(f.uri, f.hostname, f.port, f.headers)
	f.result = &Request{
		URL:     url,
		Method:  f.method,
		Version: f.version,
		Headers: f.headers,
		body:    f.reader,
	}
}

// ErrHTTP09 reports a request line that cannot be served over the HTTP/0.9
// fallback path (only GET, absolute-path targets qualify).
type ErrHTTP09 struct{ Reason string }

func (e *ErrHTTP09) Error() string { return e.Reason }

// BuildHTTP09Request builds the minimal HTTP/0.9 request a missing
// HTTP-Version falls back to: GET only, an absolute-path target only, no
// headers, no body. Grounded on original_source/src/http0/request.rs's
// build, which rejects every other method or URI kind outright rather
// than trying to guess intent.
func BuildHTTP09Request(method Method, uri httpuri.Uri, hostname string, port uint16) (*Request, error) {
	if method != MethodGet {
		return nil, &ErrHTTP09{Reason: "only GET methods are allowed in HTTP/0.9 requests"}
	}
	if uri.Kind != httpuri.KindAbsolutePath {
		return nil, &ErrHTTP09{Reason: "only absolute paths are allowed in HTTP/0.9 requests"}
	}
	url := &httpuri.Url{Scheme: []string{"http"}, Host: hostname, Port: port, Path: uri.Path, Query: httpuri.NewQuery()}
	return &Request{
		URL:      url,
		Method:   method,
		Version:  Version{Major: 0, Minor: 9},
		Headers:  NewHeaders(),
		consumed: true,
	}, nil
}

// ErrMissingVersion signals a request line with no HTTP-Version field,
// matching the source's BuildError::MissingVersion — the caller should
// retry the already-parsed method/URI through the HTTP/0.9 path.
type ErrMissingVersion struct {
	Method Method
	URI    httpuri.Uri
}

func (e *ErrMissingVersion) Error() string {
	return "unable to find the http version"
}

// resolveRequestURL projects a parsed Request-URI onto a concrete Url
// given a default hostname/port, per spec.md §3's "each variant exposes a
// projection to a canonical URL given a default hostname+port".
func resolveRequestURL(uri httpuri.Uri, hostname string, port uint16, headers *Headers) *httpuri.Url {
	switch uri.Kind {
	case httpuri.KindAbsoluteURI:
		return uri.Absolute
	case httpuri.KindAuthority:
		host := uri.Host
		if host == "" {
			host = hostname
		}
		u := &httpuri.Url{Scheme: []string{"http"}, Host: host, Port: port, Path: "/", Query: httpuri.NewQuery()}
		if v, err := strconv.ParseUint(uri.Port, 10, 16); err == nil {
			u.Port = uint16(v)
		}
		return u
	default:
		host := hostname
		if hv, ok := headers.Get(headerWireName[HeaderHost]); ok {
			host = hv.Str()
		}
		path := "/"
		if uri.Kind == httpuri.KindAbsolutePath {
			path = uri.Path
		}
		return &httpuri.Url{Scheme: []string{"http"}, Host: host, Port: port, Path: path, Query: httpuri.NewQuery()}
	}
}
