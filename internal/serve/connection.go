package serve

import (
	"go.uber.org/zap"

	"coophttp/internal/asyncio"
	"coophttp/internal/http1"
	"coophttp/internal/metrics"
	"coophttp/internal/task"
	"coophttp/internal/util"
)

// connectionStage steps a connectionTask through request build, routing,
// and response writing.
type connectionStage int

const (
	stageBuild connectionStage = iota
	stageRoute
	stageWrite
	stageClose
)

// connectionTask is the per-connection Future spawned onto the
// executor. Grounded on original_source/http/src/server/mod.rs's
// handle_connection (build request, call the handler, log, write
// response) reshaped into a Poll-driven state machine so one slow
// connection cannot block any other task in the executor.
type connectionTask struct {
	conn     *asyncio.Conn
	reader   *asyncio.BufReader
	writer   *asyncio.BufWriter
	router   http1.Router
	hostname string
	port     uint16
	logger   *zap.Logger
	metrics  *metrics.Registry
	reqID    string

	stage connectionStage

	build    *http1.BuildRequestFuture
	req      *http1.Request
	routeFut task.ValueFuture[http1.HandleResult]
	resp     *http1.Response
	writeFut *http1.WriteResponseFuture
}

func newConnectionTask(conn *asyncio.Conn, router http1.Router, hostname string, port uint16, logger *zap.Logger, reg *metrics.Registry) *connectionTask {
	reader := asyncio.NewBufReader(conn)
	return &connectionTask{
		conn:     conn,
		reader:   reader,
		writer:   asyncio.NewBufWriter(conn),
		router:   router,
		hostname: hostname,
		port:     port,
		logger:   logger,
		metrics:  reg,
		reqID:    util.NewReqID(),
		build:    http1.NewBuildRequestFuture(reader, hostname, port),
	}
}

// Poll implements task.Future.
func (c *connectionTask) Poll(cx task.Context) task.Poll {
	for {
		switch c.stage {
		case stageBuild:
			if c.build.Poll(cx) == task.Pending {
				return task.Pending
			}
			c.resolveBuild()
			c.stage = stageRoute

		case stageRoute:
			if c.routeFut == nil {
				// Request building failed outright (not just a missing
				// version): c.resp already carries an error response.
				c.stage = stageWrite
				continue
			}
			if c.routeFut.Poll(cx) == task.Pending {
				return task.Pending
			}
			result := c.routeFut.Value()
			if result.Matched {
				c.resp = result.Response
			} else {
				c.resp = http1.ErrorResponse(http1.StatusNotFound, "no route matched this request")
			}
			c.stage = stageWrite

		case stageWrite:
			if c.writeFut == nil {
				version := http1.Version{Major: 1, Minor: 1}
				if c.req != nil {
					version = c.req.Version
				}
				if version.Major == 0 {
					c.writeFut = http1.NewWriteBodyOnlyFuture(c.writer, c.resp)
				} else {
					c.writeFut = http1.NewWriteResponseFuture(c.writer, c.resp, version)
				}
			}
			if c.writeFut.Poll(cx) == task.Pending {
				return task.Pending
			}
			if err := c.writeFut.Err(); err != nil && c.logger != nil {
				c.logger.Warn("failed to write response", zap.String("req_id", c.reqID), zap.Error(err))
			}
			if c.metrics != nil {
				c.metrics.ObserveStatusClass(c.resp.Status.Code())
			}
			c.stage = stageClose

		case stageClose:
			c.conn.PollClose(cx)
			if c.metrics != nil {
				c.metrics.ActiveConnections.Dec()
			}
			return task.Ready
		}
	}
}

// resolveBuild inspects the finished BuildRequestFuture and decides
// whether to route the built request, retry through the HTTP/0.9
// fallback, or settle an error response directly.
func (c *connectionTask) resolveBuild() {
	req, err := c.build.Value()
	if err == nil {
		c.req = req
		c.routeFut = c.router.Handle(req)
		return
	}

	if missing, ok := err.(*http1.ErrMissingVersion); ok {
		req09, err09 := http1.BuildHTTP09Request(missing.Method, missing.URI, c.hostname, c.port)
		if err09 != nil {
			c.resp = http1.ErrorResponse(http1.StatusBadRequest, err09.Error())
			return
		}
		c.req = req09
		c.routeFut = c.router.Handle(req09)
		return
	}

	if c.logger != nil {
		c.logger.Warn("failed to build request", zap.String("req_id", c.reqID), zap.Error(err))
	}
	c.resp = http1.ErrorResponse(http1.StatusBadRequest, err.Error())
}
