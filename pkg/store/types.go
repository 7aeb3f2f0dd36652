// Package store provides the output sink for converted STDF files.
//
// A FileWriter writes into a temporary file next to its destination and only
// renames it into place on Commit, so readers never observe a partially
// written file.
package store

import (
	"errors"
	"os"
)

// DefaultBufferSize is the write buffer used when none is configured
const DefaultBufferSize = 64 * 1024

// DefaultFileMode is the permission of committed files
const DefaultFileMode os.FileMode = 0644

// FileWriterConfig holds configuration for the file writer
type FileWriterConfig struct {
	FilePath   string      // Destination path
	BufferSize int         // Write buffer size
	Mode       os.FileMode // Permission of the committed file
}

// Errors
var (
	ErrClosed = errors.New("file writer already committed or aborted")
)
