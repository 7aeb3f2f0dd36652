package api

import (
	"context"
	"io"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/metrics"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
)

// Converter turns an uploaded table into an STDF stream
type Converter interface {
	Convert(r io.Reader, w io.Writer, cfg assemble.RunConfig) (*convert.Result, error)
}

// History reads stored conversion summaries
type History interface {
	Get(id ksuid.KSUID) (*storage.Entry, error)
	Recent(limit int) ([]*storage.Entry, error)
}

// Dependencies are the collaborators a server is built from. History,
// Metrics and Logger are optional.
type Dependencies struct {
	Converter Converter
	History   History
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled or the listener fails
	StartServer(ctx context.Context, deps Dependencies, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
