//go:build linux || darwin

package asyncio

import (
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"coophttp/internal/task"
)

// StopBlockAttempt bounds the retry loop used when a socket option fails
// transiently at setup time, matching the source's STOP_BLOCK_ATTEMPT.
const StopBlockAttempt = 10

// ReadTimeout and WriteTimeout are applied as SO_RCVTIMEO/SO_SNDTIMEO,
// matching the source's READ_TIMEOUT/WRITE_TIMEOUT. Like the original, they
// are set for parity with the source socket configuration even though a
// non-blocking socket never actually blocks long enough to hit them; EAGAIN
// from the non-blocking read/write path is what PollRead/PollWrite actually
// suspend on.
const (
	ReadTimeout  = 500 * time.Millisecond
	WriteTimeout = time.Second
)

var errEAGAIN = errors.New("asyncio: operation would block")

// Conn adapts a *net.TCPConn into the Reader/Writer contract by driving raw
// non-blocking read(2)/write(2) syscalls on the underlying file descriptor
// and translating EAGAIN/EWOULDBLOCK into task.Pending plus an immediate
// self-wake, the busy-poll strategy the design explicitly permits. This
// bypasses Go's runtime netpoller deliberately: the source sets O_NONBLOCK
// on the raw socket and polls it from the cooperative executor itself
// rather than handing blocking reads to a separate I/O reactor.
type Conn struct {
	tcp *net.TCPConn
	raw net.Conn // kept for Close/LocalAddr/RemoteAddr passthrough
	rc  interface {
		Control(func(fd uintptr)) error
	}
}

// NewConn wraps tcp, configuring it per the source's TcpStream::from:
// non-blocking, TCP_NODELAY, and the read/write timeouts above.
func NewConn(tcp *net.TCPConn) (*Conn, error) {
	sc, err := tcp.SyscallConn()
	if err != nil {
		return nil, err
	}

	c := &Conn{tcp: tcp, raw: tcp, rc: sc}

	var setupErr error
	retry(&setupErr, func() error {
		return sc.Control(func(fd uintptr) {
			setupErr = unix.SetNonblock(int(fd), true)
		})
	})
	if setupErr != nil {
		return nil, setupErr
	}

	retry(&setupErr, func() error {
		return sc.Control(func(fd uintptr) {
			setupErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		})
	})
	if setupErr != nil {
		return nil, setupErr
	}

	retry(&setupErr, func() error {
		return sc.Control(func(fd uintptr) {
			setupErr = unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_RCVTIMEO, durationToTimeval(ReadTimeout))
		})
	})
	retry(&setupErr, func() error {
		return sc.Control(func(fd uintptr) {
			setupErr = unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_SNDTIMEO, durationToTimeval(WriteTimeout))
		})
	})

	return c, nil
}

// retry re-runs fn up to StopBlockAttempt times, matching the source's
// while-let-Err loop around transient socket-option setup failures. An
// attempt counts as failed when fn returns an error (the Control call
// itself failed) or leaves *setupErr non-nil (the socket option call
// failed).
func retry(setupErr *error, fn func() error) {
	for attempt := 0; attempt <= StopBlockAttempt; attempt++ {
		if err := fn(); err == nil && *setupErr == nil {
			return
		}
	}
}

func durationToTimeval(d time.Duration) unix.Timeval {
	return unix.NsecToTimeval(d.Nanoseconds())
}

// PollRead attempts one non-blocking read(2). EAGAIN/EWOULDBLOCK suspends
// the calling task by returning Pending after immediately re-waking it.
func (c *Conn) PollRead(cx task.Context, buf []byte) (n int, err error, poll task.Poll) {
	ctlErr := c.rc.Control(func(fd uintptr) {
		n, err = unix.Read(int(fd), buf)
	})
	if ctlErr != nil {
		return 0, ctlErr, task.Ready
	}
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			cx.Waker().Wake()
			return 0, nil, task.Pending
		}
		return 0, err, task.Ready
	}
	return n, nil, task.Ready
}

// PollWrite attempts one non-blocking write(2), with the same EAGAIN
// translation as PollRead.
func (c *Conn) PollWrite(cx task.Context, buf []byte) (n int, err error, poll task.Poll) {
	ctlErr := c.rc.Control(func(fd uintptr) {
		n, err = unix.Write(int(fd), buf)
	})
	if ctlErr != nil {
		return 0, ctlErr, task.Ready
	}
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			cx.Waker().Wake()
			return 0, nil, task.Pending
		}
		return 0, err, task.Ready
	}
	return n, nil, task.Ready
}

// PollFlush is a no-op: writes land directly on the socket with no
// additional userspace buffering at this layer (that is BufWriter's job).
func (c *Conn) PollFlush(cx task.Context) (err error, poll task.Poll) {
	return nil, task.Ready
}

// PollClose closes the underlying connection.
func (c *Conn) PollClose(cx task.Context) (err error, poll task.Poll) {
	return c.tcp.Close(), task.Ready
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr { return c.raw.LocalAddr() }

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// TryClone duplicates the connection's file descriptor so a request task
// and its response task can own independent handles, matching the source's
// TcpStream::try_clone (used so one side's Drop does not close the fd out
// from under the other).
func (c *Conn) TryClone() (*Conn, error) {
	f, err := c.tcp.File()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dup, err := net.FileConn(f)
	if err != nil {
		return nil, err
	}
	tcp, ok := dup.(*net.TCPConn)
	if !ok {
		dup.Close()
		return nil, errors.New("asyncio: duplicated connection is not a TCP connection")
	}
	return NewConn(tcp)
}
