package serve

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"coophttp/internal/http1"
	"coophttp/internal/task"
)

// echoRouter answers every request with a 200 whose body is the request
// path, except "/missing" which reports no match.
type echoRouter struct{}

func (echoRouter) Handle(req *http1.Request) task.ValueFuture[http1.HandleResult] {
	if req.URL.Path == "/missing" {
		return http1.Ready(http1.HandleResult{Matched: false})
	}
	resp := http1.NewResponse(http1.StatusOK)
	resp.Headers.Set("Content-Type", "text/plain")
	resp.Write([]byte(req.URL.Path))
	return http1.Ready(http1.HandleResult{Response: resp, Matched: true})
}

func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	srv, err := New("127.0.0.1", 0, echoRouter{}, nil, nil)
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	return srv, func() {
		cancel()
		<-done
	}
}

func sendRequest(t *testing.T, addr net.Addr, raw string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(raw)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			break
		}
	}
	return string(buf[:total])
}

func TestServerRoundTripsSimpleGet(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	got := sendRequest(t, srv.Addr(), "GET /hello HTTP/1.1\r\nHost: x\r\n\r\n")
	if !strings.Contains(got, "200 OK") {
		t.Fatalf("expected a 200 response, got: %q", got)
	}
	if !strings.HasSuffix(got, "/hello") {
		t.Fatalf("expected body echoing the path, got: %q", got)
	}
}

func TestServerReturns404WhenRouterDoesNotMatch(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	got := sendRequest(t, srv.Addr(), "GET /missing HTTP/1.1\r\nHost: x\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 404 NOT FOUND\r\n") {
		t.Fatalf("expected a literal 404 NOT FOUND status line, got: %q", got)
	}
}

func TestServerFallsBackToHTTP09(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	got := sendRequest(t, srv.Addr(), "GET /legacy\r\n")
	if got != "/legacy" {
		t.Fatalf("expected a bare-body HTTP/0.9 reply, got: %q", got)
	}
}

func TestServerRejectsMalformedRequestLine(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	got := sendRequest(t, srv.Addr(), "not a request at all\r\n\r\n")
	want := "HTTP/1.1 400 BAD REQUEST\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nnot is not a valid method!"
	if got != want {
		t.Fatalf("unexpected wire bytes:\n got: %q\nwant: %q", got, want)
	}
}
