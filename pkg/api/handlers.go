package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/batch"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/logging"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/metrics"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
)

// overridePrefix marks query parameters that set MIR fields
const overridePrefix = "mir."

// Server holds the API server state
type Server struct {
	converter Converter
	history   History
	config    ServerConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewServer creates a new API server
func NewServer(deps Dependencies, config ServerConfig) *Server {
	return &Server{
		converter: deps.Converter,
		history:   deps.History,
		config:    config,
		metrics:   deps.Metrics,
		logger:    logging.OrNop(deps.Logger),
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleConvert godoc
//
//	@Summary		Convert a CSV table
//	@Description	Convert the request body from the tabular test-results layout to an STDF v4 stream
//	@Tags			convert
//	@Accept			text/csv
//	@Produce		octet-stream
//	@Param			body		body		string	true	"CSV table"
//	@Param			name		query		string	false	"Input name recorded in the ATR"
//	@Param			head		query		int		false	"Test head number"
//	@Param			site		query		int		false	"Test site number"
//	@Param			timestamp	query		int		false	"Generation time in unix seconds"
//	@Param			label		query		string	false	"Source label recorded in the ATR"
//	@Param			note		query		[]string	false	"Extra ATR entries"
//	@Success		200			{file}		binary
//	@Header			200			{string}	X-Conversion-Id		"Conversion id"
//	@Header			200			{int}		X-Device-Count		"Number of devices"
//	@Header			200			{string}	X-Lot-Disposition	"P or F"
//	@Failure		400			{object}	APIResponse
//	@Failure		413			{object}	APIResponse
//	@Failure		422			{object}	APIResponse
//	@Failure		500			{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/convert [post]
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.runConfig(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := r.Body
	if s.config.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}

	var out bytes.Buffer
	res, err := s.converter.Convert(body, &out, cfg)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			sendError(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		case convert.IsInputError(err):
			sendError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			s.logger.Error("Conversion request failed", zap.Error(err))
			sendError(w, "Conversion failed", http.StatusInternalServerError)
		}
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(cfg.InputName)))
	h.Set("Content-Length", strconv.Itoa(out.Len()))
	h.Set(HeaderConversionID, res.ID.String())
	h.Set(HeaderDeviceCount, strconv.Itoa(res.Devices))
	h.Set(HeaderLotDisposition, res.Disposition())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// handleListConversions godoc
//
//	@Summary		List conversions
//	@Description	List the most recent conversions, newest first
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of entries (default 100)"
//	@Success		200		{object}	APIResponse{data=[]storage.Entry}
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/conversions [get]
func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		sendError(w, "Conversion history is disabled", http.StatusNotFound)
		return
	}

	limit := historyPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > historyPageSize {
			sendError(w, fmt.Sprintf("limit must be between 1 and %d", historyPageSize), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(limit)
	if err != nil {
		s.logger.Error("Failed to list conversions", zap.Error(err))
		sendError(w, "Failed to list conversions", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*storage.Entry{}
	}
	sendSuccess(w, entries)
}

// handleGetConversion godoc
//
//	@Summary		Get a conversion
//	@Description	Get the stored summary of one conversion
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Conversion id"
//	@Success		200	{object}	APIResponse{data=storage.Entry}
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/conversions/{id} [get]
func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		sendError(w, "Conversion history is disabled", http.StatusNotFound)
		return
	}

	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid conversion id", http.StatusBadRequest)
		return
	}

	entry, err := s.history.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Conversion not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to read conversion", zap.String("id", id.String()), zap.Error(err))
		sendError(w, "Failed to read conversion", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, entry)
}

// runConfig derives the conversion config of one request from the server
// defaults and its query parameters
func (s *Server) runConfig(r *http.Request) (assemble.RunConfig, error) {
	cfg := s.config.Run
	cfg.InputName = defaultUploadName
	cfg.MIROverrides = make(map[string]any, len(s.config.Run.MIROverrides))
	for k, v := range s.config.Run.MIROverrides {
		cfg.MIROverrides[k] = v
	}
	cfg.ExtraLogEntries = append([]string(nil), s.config.Run.ExtraLogEntries...)

	q := r.URL.Query()
	for key, values := range q {
		if !strings.HasPrefix(key, overridePrefix) || len(values) == 0 {
			continue
		}
		cfg.MIROverrides[strings.TrimPrefix(key, overridePrefix)] = values[len(values)-1]
	}
	cfg.ExtraLogEntries = append(cfg.ExtraLogEntries, q["note"]...)

	if name := q.Get("name"); name != "" {
		cfg.InputName = path.Base(name)
	}
	if label := q.Get("label"); label != "" {
		cfg.SourceLabel = label
	}
	if raw := q.Get("head"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return cfg, fmt.Errorf("invalid head %q", raw)
		}
		cfg.HeadNumber = uint8(n)
	}
	if raw := q.Get("site"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return cfg, fmt.Errorf("invalid site %q", raw)
		}
		cfg.SiteNumber = uint8(n)
	}
	if raw := q.Get("timestamp"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("invalid timestamp %q", raw)
		}
		cfg.GeneratedAt = uint32(n)
	}
	return cfg, nil
}

func outputName(input string) string {
	return strings.TrimSuffix(input, path.Ext(input)) + batch.OutputExt
}
