// Package fanout provides a writer that duplicates a byte stream to
// several independent sinks.
//
// The object codec uses it to feed the same bytes to a SHA-1 accumulator
// and to a compressor in one pass, so the digest always describes exactly
// the bytes that were stored.
package fanout

import (
	"errors"
	"fmt"
	"io"
)

// ErrSinkDivergence reports that the sinks of a Writer accepted different
// byte counts for the same call. It signals a bug in a sink, not bad input.
var ErrSinkDivergence = errors.New("fan-out sinks diverged")

// DivergenceError records the per-sink byte counts of a diverging write.
type DivergenceError struct {
	// Accepted holds the count accepted by each sink, in sink order.
	Accepted []int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: accepted byte counts %v", ErrSinkDivergence, e.Accepted)
}

func (e *DivergenceError) Is(target error) bool {
	return target == ErrSinkDivergence
}

// flusher is implemented by buffered sinks such as zlib writers.
type flusher interface {
	Flush() error
}

// Writer forwards every write to all of its sinks in order.
type Writer struct {
	sinks   []io.Writer
	written int64
}

// New returns a Writer over the given sinks.
func New(sinks ...io.Writer) *Writer {
	copied := make([]io.Writer, len(sinks))
	copy(copied, sinks)
	return &Writer{sinks: copied}
}

// Write forwards p to each sink and returns the common byte count.
// It fails with a *DivergenceError when sinks disagree on the count.
func (w *Writer) Write(p []byte) (int, error) {
	if len(w.sinks) == 0 {
		w.written += int64(len(p))
		return len(p), nil
	}

	accepted := make([]int, len(w.sinks))
	for i, sink := range w.sinks {
		n, err := sink.Write(p)
		accepted[i] = n
		if err != nil {
			return n, fmt.Errorf("failed to write to sink %d: %w", i, err)
		}
	}

	for _, n := range accepted[1:] {
		if n != accepted[0] {
			return 0, &DivergenceError{Accepted: accepted}
		}
	}

	w.written += int64(accepted[0])
	return accepted[0], nil
}

// WriteAll writes every byte of p or fails.
// A call that makes no progress without an error ends with io.ErrShortWrite.
func (w *Writer) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

// Flush flushes every sink that supports it.
func (w *Writer) Flush() error {
	for i, sink := range w.sinks {
		f, ok := sink.(flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush sink %d: %w", i, err)
		}
	}
	return nil
}

// Written returns the number of bytes accepted by all sinks so far.
func (w *Writer) Written() int64 {
	return w.written
}
