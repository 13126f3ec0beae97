package ingest

import (
	"fmt"
	"sync"

	"github.com/nxadm/tail"
)

// LogLine represents a raw line from a log source
type LogLine struct {
	Source  string
	Number  int // 1-based
	Content string
}

// Ingester defines the interface for finite log sources. The channel returned
// by Start closes once the source is exhausted or has failed; Err reports why.
type Ingester interface {
	Start() (<-chan LogLine, error)
	Err() error
	Stop() error
}

// FileSource implements Ingester for a single file read up to EOF
type FileSource struct {
	path string
	t    *tail.Tail
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	err error
}

// NewFileSource creates a new source for a path
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: path,
		done: make(chan struct{}),
	}
}

// Start opens the file and returns a channel of its lines
func (f *FileSource) Start() (<-chan LogLine, error) {
	// Read once to EOF: no follow, no reopen, and a missing file is an error.
	config := tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	}

	t, err := tail.TailFile(f.path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	f.t = t

	out := make(chan LogLine)

	go func() {
		defer close(out)
		n := 0
		for line := range t.Lines {
			n++
			if line.Err != nil {
				f.setErr(fmt.Errorf("%s line %d: %w", f.path, n, line.Err))
				continue
			}
			select {
			case out <- LogLine{Source: f.path, Number: n, Content: line.Text}:
			case <-f.done:
				// Keep tail's sender unblocked until it notices the kill.
				for range t.Lines {
				}
				return
			}
		}
		// Lines closes before the tail goroutine reports its exit reason.
		if err := t.Wait(); err != nil {
			f.setErr(fmt.Errorf("failed to read %s: %w", f.path, err))
		}
	}()

	return out, nil
}

// Err returns the first read error, if any. Only meaningful once the channel
// returned by Start has been drained.
func (f *FileSource) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *FileSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

// Stop abandons the read
func (f *FileSource) Stop() error {
	f.once.Do(func() { close(f.done) })
	if f.t != nil {
		return f.t.Stop()
	}
	return nil
}
