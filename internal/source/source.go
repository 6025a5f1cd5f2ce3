package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrBadSample reports a line that is not a vehicle count.
var ErrBadSample = errors.New("bad sample line")

// Source yields raw vehicle counts, one per control tick. Next returns
// io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (int, error)
}

type lineResult struct {
	count int
	err   error
}

// Lines reads whitespace-trimmed integer lines from a stream. Blank lines
// are skipped; a non-numeric line yields ErrBadSample for that call and
// reading continues. The stream is consumed by a background goroutine, so
// Next honors context cancellation even while the stream blocks.
type Lines struct {
	results chan lineResult
}

// NewLines starts reading counts from r.
func NewLines(r io.Reader) *Lines {
	l := &Lines{results: make(chan lineResult)}

	go l.scan(r)

	return l
}

func (l *Lines) scan(r io.Reader) {
	defer close(l.results)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		count, err := strconv.Atoi(text)
		if err != nil {
			l.results <- lineResult{err: fmt.Errorf("%w: %q", ErrBadSample, text)}

			continue
		}

		l.results <- lineResult{count: count}
	}

	if err := scanner.Err(); err != nil {
		l.results <- lineResult{err: fmt.Errorf("read samples: %w", err)}
	}
}

// Next implements Source.
func (l *Lines) Next(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case result, ok := <-l.results:
		if !ok {
			return 0, io.EOF
		}

		return result.count, result.err
	}
}

// Step is one scripted stretch of constant detector output.
type Step struct {
	// Count is the raw count reported for the duration of the step.
	Count int `yaml:"count"`
	// For is how long the step lasts.
	For time.Duration `yaml:"for"`
}

// Script replays a fixed sequence of steps, one count per tick interval.
// It is exhausted when the summed step durations have been ticked through.
type Script struct {
	steps    []Step
	interval time.Duration
	index    int
	left     time.Duration
}

// NewScript returns a script stepping through steps at the given tick
// interval.
func NewScript(steps []Step, interval time.Duration) *Script {
	s := &Script{steps: steps, interval: interval}
	if len(steps) > 0 {
		s.left = steps[0].For
	}

	// Zero-length leading steps contribute nothing.
	s.advance()

	return s
}

// Next implements Source.
func (s *Script) Next(_ context.Context) (int, error) {
	if s.index >= len(s.steps) {
		return 0, io.EOF
	}

	count := s.steps[s.index].Count

	s.left -= s.interval
	s.advance()

	return count, nil
}

func (s *Script) advance() {
	for s.index < len(s.steps) && s.left <= 0 {
		s.index++

		if s.index < len(s.steps) {
			s.left += s.steps[s.index].For
		}
	}
}
