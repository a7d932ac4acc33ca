// Package jsonl implements the append-only record store: line-delimited
// JSON collections on local disk, human-inspectable, with no binary framing.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// maxLineSize bounds a single record line on read. Longer lines are treated
// like corrupt ones and skipped, never aborting the read.
const maxLineSize = 1 << 20

// Collection is a generic append-only collection backed by one .jsonl file.
// Appends rely on OS append atomicity for single lines; Update rewrites the
// whole file, so a per-collection mutex serializes writers within the
// process. Collections are small and updates rare — linear scans and full
// rewrites are the accepted cost.
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

// NewCollection creates a collection over the given file path. The file is
// created lazily on first append.
func NewCollection[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Append serializes rec and writes it as the newest entry, creating the
// backing file (and parent directory) if absent.
func (c *Collection[T]) Append(rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("jsonl: marshal record: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("jsonl: create dir: %w", err)
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("jsonl: open %s: %w", c.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("jsonl: append to %s: %w", c.path, err)
	}
	return nil
}

// All returns every record in insertion order. Blank lines, lines that fail
// to parse, and lines over maxLineSize are silently skipped, so a corrupt or
// oversized entry never aborts a read. A missing file reads as an empty
// collection.
func (c *Collection[T]) All() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readAll()
}

// FindFirst returns the first record matching pred in insertion order.
func (c *Collection[T]) FindFirst(pred func(T) bool) (T, bool, error) {
	var zero T
	items, err := c.All()
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if pred(it) {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Update applies patch to the first record matching match and rewrites the
// whole collection. It reports whether a record changed.
func (c *Collection[T]) Update(match func(T) bool, patch func(*T)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.readAll()
	if err != nil {
		return false, err
	}

	changed := false
	for i := range items {
		if match(items[i]) {
			patch(&items[i])
			changed = true
			break
		}
	}
	if !changed {
		return false, nil
	}

	var buf bytes.Buffer
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return false, fmt.Errorf("jsonl: marshal record: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("jsonl: rewrite %s: %w", c.path, err)
	}
	return true, nil
}

func (c *Collection[T]) readAll() ([]T, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jsonl: open %s: %w", c.path, err)
	}
	defer f.Close()

	var items []T
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			return nil, fmt.Errorf("jsonl: read %s: %w", c.path, err)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && len(trimmed) <= maxLineSize {
			var rec T
			// Tolerant reader: a corrupt line is dropped, not fatal.
			if err := json.Unmarshal(trimmed, &rec); err == nil {
				items = append(items, rec)
			}
		}

		if atEOF {
			return items, nil
		}
	}
}
