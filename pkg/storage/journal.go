package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Journal records the command lines that changed the book, in apply order.
type Journal interface {
	Append(line string) error
	Close() error
}

type NopJournal struct{}

func NewNopJournal() *NopJournal           { return &NopJournal{} }
func (j *NopJournal) Append(string) error { return nil }
func (j *NopJournal) Close() error        { return nil }

// FileJournal appends one command per line to a file.
type FileJournal struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileJournal(path string) (*FileJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create journal dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	return &FileJournal{f: f}, nil
}

func (j *FileJournal) Append(line string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := fmt.Fprintln(j.f, line); err != nil {
		return errors.Wrap(err, "append journal")
	}
	return nil
}

func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

var _ Journal = (*NopJournal)(nil)
var _ Journal = (*FileJournal)(nil)
