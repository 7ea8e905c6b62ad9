package runner

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

const maxLineSize = 1024 * 1024

// Process is a started command whose output has not been read yet.
type Process struct {
	stdout io.Reader
	stderr io.Reader
	wait   func() error
}

// NewProcess wraps two output streams and a wait function.
// Fakes in tests build processes from in-memory readers.
func NewProcess(stdout, stderr io.Reader, wait func() error) *Process {
	if wait == nil {
		wait = func() error { return nil }
	}
	return &Process{stdout: stdout, stderr: stderr, wait: wait}
}

// Consume reads both streams concurrently, one goroutine per stream, and
// hands each line to its callback. It returns the exit error after both
// streams reach EOF. Callbacks for one stream are called in line order.
func (p *Process) Consume(onStdout, onStderr func(line string)) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(p.stdout, onStdout)
	}()
	go func() {
		defer wg.Done()
		scanLines(p.stderr, onStderr)
	}()
	wg.Wait()

	return p.wait()
}

// scanLines splits r on newline or carriage return. A line longer than
// maxLineSize stops scanning; the rest of r is discarded so the child
// never blocks on a full pipe.
func scanLines(r io.Reader, fn func(string)) {
	if r == nil {
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(splitLines)
	for scanner.Scan() {
		if fn != nil {
			fn(scanner.Text())
		}
	}
	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

func splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
