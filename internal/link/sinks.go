package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrUnknownTarget reports a link target string with an unsupported scheme.
var ErrUnknownTarget = errors.New("unknown link target")

// DefaultSendTimeout bounds a single token delivery on networked sinks.
const DefaultSendTimeout = time.Second

// Sink is a one-way channel to the traffic light actuator. Implementations
// frame each token with a trailing newline where the transport needs it.
// Sinks are driven from the single controller loop and are not safe for
// concurrent use unless documented otherwise.
type Sink interface {
	// Send delivers one command token.
	Send(ctx context.Context, token string) error

	io.Closer
}

// ParseTarget builds a sink from its configuration string:
//
//	console            write tokens to standard output
//	serial:<device>    write tokens to a serial device node
//	tcp:<host:port>    write tokens to a TCP endpoint
//
// The timeout bounds each delivery attempt on networked sinks; zero means
// DefaultSendTimeout.
func ParseTarget(target string, timeout time.Duration) (Sink, error) {
	scheme, rest, found := strings.Cut(target, ":")
	if !found {
		scheme = target
	}

	switch scheme {
	case "console":
		return NewConsoleSink(os.Stdout), nil
	case "serial":
		if rest == "" {
			return nil, fmt.Errorf("%w: serial target needs a device path", ErrUnknownTarget)
		}

		return NewSerialSink(rest), nil
	case "tcp":
		if rest == "" {
			return nil, fmt.Errorf("%w: tcp target needs a host:port address", ErrUnknownTarget)
		}

		return NewTCPSink(rest, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
}

// ConsoleSink prints each token on its own line. It stands in for the real
// actuator during bench runs.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink returns a sink printing tokens to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// Send implements Sink.
func (s *ConsoleSink) Send(_ context.Context, token string) error {
	if _, err := fmt.Fprintln(s.w, token); err != nil {
		return fmt.Errorf("write console: %w", err)
	}

	return nil
}

// Close implements Sink.
func (s *ConsoleSink) Close() error {
	return nil
}

// SerialSink writes newline-framed tokens to a serial device node such as
// /dev/ttyUSB0. The device is opened lazily and reopened after a failed
// write, so an unplugged adapter heals on the next delivery attempt.
type SerialSink struct {
	path string
	file *os.File
}

// NewSerialSink returns a sink for the given device path. The device is not
// touched until the first Send.
func NewSerialSink(path string) *SerialSink {
	return &SerialSink{path: path}
}

// Send implements Sink.
func (s *SerialSink) Send(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send on closed context: %w", err)
	}

	if s.file == nil {
		file, err := os.OpenFile(s.path, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("open serial device: %w", err)
		}

		s.file = file
	}

	if _, err := fmt.Fprintf(s.file, "%s\n", token); err != nil {
		// Drop the handle so the next attempt reopens the device.
		_ = s.file.Close()
		s.file = nil

		return fmt.Errorf("write serial device: %w", err)
	}

	return nil
}

// Close implements Sink.
func (s *SerialSink) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	if err != nil {
		return fmt.Errorf("close serial device: %w", err)
	}

	return nil
}

// TCPSink writes newline-framed tokens to a TCP endpoint, dialing lazily and
// redialing once per delivery after a broken connection.
type TCPSink struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
}

// NewTCPSink returns a sink for the given host:port address. Zero timeout
// means DefaultSendTimeout.
func NewTCPSink(addr string, timeout time.Duration) *TCPSink {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	return &TCPSink{addr: addr, timeout: timeout}
}

// Send implements Sink.
func (s *TCPSink) Send(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send on closed context: %w", err)
	}

	if s.conn == nil {
		conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
		if err != nil {
			return fmt.Errorf("dial actuator: %w", err)
		}

		s.conn = conn
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		s.drop()

		return fmt.Errorf("set write deadline: %w", err)
	}

	if _, err := fmt.Fprintf(s.conn, "%s\n", token); err != nil {
		s.drop()

		return fmt.Errorf("write actuator: %w", err)
	}

	return nil
}

// Close implements Sink.
func (s *TCPSink) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil

	if err != nil {
		return fmt.Errorf("close actuator connection: %w", err)
	}

	return nil
}

func (s *TCPSink) drop() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// MemorySink records tokens in memory. Replays and tests use it in place of
// a live actuator. It is safe for concurrent use.
type MemorySink struct {
	mu       sync.Mutex
	records  []string
	failures int
	failErr  error
}

// NewMemorySink returns an empty recorder.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// FailNext makes the following n Send calls return err without recording.
func (s *MemorySink) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = n
	s.failErr = err
}

// Send implements Sink.
func (s *MemorySink) Send(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--

		return s.failErr
	}

	s.records = append(s.records, token)

	return nil
}

// Records returns a copy of everything delivered so far.
func (s *MemorySink) Records() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.records))
	copy(out, s.records)

	return out
}

// Close implements Sink.
func (s *MemorySink) Close() error {
	return nil
}
