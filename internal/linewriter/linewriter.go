// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linewriter

import (
	"bytes"
	"strings"
	"sync"
)

const ellipsis = "..."

// Writer calls a function for every complete line written to it.
// It is safe for concurrent use.
type Writer struct {
	mu       sync.Mutex
	partial  bytes.Buffer
	lastLine string
	lines    int
	onLine   func(line string)
}

// New returns a Writer that calls onLine for each complete line, without the
// trailing newline. onLine may be nil.
func New(onLine func(line string)) *Writer {
	return &Writer{onLine: onLine}
}

// Write implements io.Writer. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := p

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			w.partial.Write(data)
			break
		}

		w.partial.Write(data[:i])
		w.emit()

		data = data[i+1:]
	}

	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.partial.Len() > 0 {
		w.emit()
	}
}

// emit must be called with the lock held.
func (w *Writer) emit() {
	line := strings.TrimSuffix(w.partial.String(), "\r")
	w.partial.Reset()

	w.lastLine = line
	w.lines++

	if w.onLine != nil {
		w.onLine(line)
	}
}

// LastLine returns the last complete line, truncated to maxLength when maxLength > 0.
func (w *Writer) LastLine(maxLength int) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Truncate(w.lastLine, maxLength)
}

// Lines returns the number of complete lines seen.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.lines
}

// Truncate shortens s to maxLength bytes, ending in an ellipsis, when maxLength > 0.
func Truncate(s string, maxLength int) string {
	if maxLength <= 0 || len(s) <= maxLength {
		return s
	}

	if maxLength <= len(ellipsis) {
		return s[:maxLength]
	}

	return s[:maxLength-len(ellipsis)] + ellipsis
}
