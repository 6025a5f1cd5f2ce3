package integration

import (
	"bufio"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeActuator is a TCP listener standing in for the light hardware. It
// records every newline-framed command token it receives.
type fakeActuator struct {
	listener net.Listener

	mu     sync.Mutex
	tokens []string
}

// startActuator listens on a loopback port and records incoming tokens until
// the test ends.
func startActuator(t *testing.T) *fakeActuator {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	actuator := &fakeActuator{listener: listener}

	go actuator.accept()

	t.Cleanup(func() {
		_ = listener.Close()
	})

	return actuator
}

func (a *fakeActuator) accept() {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			return
		}

		go a.read(conn)
	}
}

func (a *fakeActuator) read(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		a.mu.Lock()
		a.tokens = append(a.tokens, scanner.Text())
		a.mu.Unlock()
	}
}

// addr returns the host:port the actuator listens on.
func (a *fakeActuator) addr() string {
	return a.listener.Addr().String()
}

// recorded returns a copy of every token received so far.
func (a *fakeActuator) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.tokens))
	copy(out, a.tokens)

	return out
}

// awaitTokens blocks until the actuator has received at least n tokens and
// returns them. It fails the test after a generous deadline.
func (a *fakeActuator) awaitTokens(t *testing.T, n int) []string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)

	for {
		got := a.recorded()
		if len(got) >= n {
			return got
		}

		if time.Now().After(deadline) {
			t.Fatalf("actuator received %d tokens, want at least %d: %v", len(got), n, got)
		}

		time.Sleep(10 * time.Millisecond)
	}
}
