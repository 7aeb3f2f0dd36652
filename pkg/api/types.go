package api

import (
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // empty disables authentication

	// MaxUploadBytes bounds a request body; zero or less means no limit
	MaxUploadBytes int64

	// Run is the base conversion config each request starts from
	Run assemble.RunConfig
}

// Response headers set on a successful conversion
const (
	HeaderConversionID   = "X-Conversion-Id"
	HeaderDeviceCount    = "X-Device-Count"
	HeaderLotDisposition = "X-Lot-Disposition"
)

// defaultUploadName is the ATR input name for requests without ?name=
const defaultUploadName = "upload.csv"

// historyPageSize is the default and largest number of entries listed
const historyPageSize = 100
