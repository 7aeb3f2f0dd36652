package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileWriter writes one output file. Writes go to a sibling temp file until
// Commit renames it onto FilePath. Abort discards everything.
type FileWriter struct {
	file   *os.File
	writer *bufio.Writer
	config FileWriterConfig
	mutex  sync.Mutex
	offset int64 // Bytes accepted so far
	done   bool
}

// NewFileWriter creates the temp file for config.FilePath
func NewFileWriter(config FileWriterConfig) (*FileWriter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.Mode == 0 {
		config.Mode = DefaultFileMode
	}

	// Ensure directory exists
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(config.FilePath)+".*.tmp")
	if err != nil {
		return nil, err
	}

	return &FileWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
	}, nil
}

// Write buffers p. It implements io.Writer.
func (w *FileWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.done {
		return 0, ErrClosed
	}
	n, err := w.writer.Write(p)
	w.offset += int64(n)
	return n, err
}

// WriteRecord appends one encoded record and returns the offset it starts at
func (w *FileWriter) WriteRecord(data []byte) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.done {
		return 0, ErrClosed
	}
	recordOffset := w.offset
	n, err := w.writer.Write(data)
	w.offset += int64(n)
	if err != nil {
		return 0, err
	}
	return recordOffset, nil
}

// Commit flushes, syncs and moves the file into place
func (w *FileWriter) Commit() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.done {
		return ErrClosed
	}
	w.done = true

	if err := w.finish(); err != nil {
		os.Remove(w.file.Name())
		return err
	}
	if err := os.Rename(w.file.Name(), w.config.FilePath); err != nil {
		os.Remove(w.file.Name())
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func (w *FileWriter) finish() error {
	// Flush buffered writes
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Chmod(w.config.Mode); err != nil {
		w.file.Close()
		return err
	}
	// Fsync to disk
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Abort removes the temp file. It is a no-op after Commit, so it can be
// deferred unconditionally.
func (w *FileWriter) Abort() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.done {
		return nil
	}
	w.done = true

	closeErr := w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}

// Size returns the number of bytes written so far
func (w *FileWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the destination path
func (w *FileWriter) Path() string {
	return w.config.FilePath
}

// TempPath returns the path of the file being written
func (w *FileWriter) TempPath() string {
	return w.file.Name()
}
