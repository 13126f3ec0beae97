package ingest

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

const maxLineSize = 1024 * 1024

// ReaderSource implements Ingester over an already-open stream such as stdin
type ReaderSource struct {
	name string
	r    io.Reader
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	err error
}

// NewReaderSource creates a source reading lines from r. The name is used as
// LogLine.Source.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name: name,
		r:    r,
		done: make(chan struct{}),
	}
}

func (s *ReaderSource) Start() (<-chan LogLine, error) {
	if s.r == nil {
		return nil, fmt.Errorf("%s: nil reader", s.name)
	}

	out := make(chan LogLine)

	go func() {
		defer close(out)
		scanner := bufio.NewScanner(s.r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		n := 0
		for scanner.Scan() {
			n++
			select {
			case out <- LogLine{Source: s.name, Number: n, Content: scanner.Text()}:
			case <-s.done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.mu.Lock()
			s.err = fmt.Errorf("failed to read %s: %w", s.name, err)
			s.mu.Unlock()
		}
	}()

	return out, nil
}

func (s *ReaderSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ReaderSource) Stop() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
