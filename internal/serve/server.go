package serve

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"coophttp/internal/asyncio"
	"coophttp/internal/executor"
	"coophttp/internal/http1"
	"coophttp/internal/metrics"
)

// idlePoll bounds how long Run blocks waiting for the next accepted
// connection once the executor has no ready tasks, so the loop still
// wakes periodically to check ctx.Done() even with no traffic.
const idlePoll = 10 * time.Millisecond

// Server owns the listener and the single-goroutine executor that drives
// every connection task. Grounded on
// original_source/http/src/server/async_server.rs's AsyncServer::start:
// drain the connection channel, spawn a task per accepted connection,
// run a ready pass, repeat.
type Server struct {
	listener *Listener
	exec     *executor.Executor
	router   http1.Router
	hostname string
	port     uint16
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// New binds hostname:port and constructs a Server ready to Run.
func New(hostname string, port uint16, router http1.Router, logger *zap.Logger, reg *metrics.Registry) (*Server, error) {
	lis, err := Listen(hostname, port)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: lis,
		exec:     executor.New(executor.NewConfig()),
		router:   router,
		hostname: hostname,
		port:     port,
		logger:   logger,
		metrics:  reg,
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Run drives the serving loop until ctx is canceled, at which point the
// listener is closed and Run returns once any connections accepted
// before cancellation have finished or drainTimeout has elapsed. If the
// listener's connection channel closes first, Run returns at once
// without draining.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.listener.Close()
			s.drain()
			return
		case tcp, ok := <-s.listener.Conns():
			if !ok {
				return
			}
			s.spawn(tcp)
		default:
		}

		s.exec.RunReadyPass()
		if s.metrics != nil {
			s.metrics.TasksInFlight.Set(float64(s.exec.TaskCount()))
		}

		if s.exec.IsIdle() {
			select {
			case <-ctx.Done():
				s.listener.Close()
				s.drain()
				return
			case tcp, ok := <-s.listener.Conns():
				if !ok {
					return
				}
				s.spawn(tcp)
			case <-time.After(idlePoll):
			}
		}
	}
}

// drainTimeout bounds how long drain waits for in-flight connections to
// finish their one request/response cycle before giving up on a stalled
// peer (one that stopped sending mid-request).
const drainTimeout = 2 * time.Second

// drain runs ready passes until every in-flight connection task has
// completed or drainTimeout elapses, so a canceled context still lets
// accepted connections finish their one request/response cycle instead
// of being dropped mid-write.
func (s *Server) drain() {
	deadline := time.Now().Add(drainTimeout)
	for s.exec.TaskCount() > 0 && time.Now().Before(deadline) {
		s.exec.RunReadyPass()
	}
}

func (s *Server) spawn(tcp *net.TCPConn) {
	conn, err := asyncio.NewConn(tcp)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to configure accepted connection", zap.Error(err))
		}
		tcp.Close()
		return
	}
	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
	}
	t := newConnectionTask(conn, s.router, s.hostname, s.port, s.logger, s.metrics)
	s.exec.Spawn(t)
}
