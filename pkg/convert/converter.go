// Package convert runs one CSV to STDF conversion: parse, assemble, then
// encode and write the records in order.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/logging"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/metrics"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/stdf"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/storage"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/store"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/table"
)

// History records finished conversions
type History interface {
	Put(id ksuid.KSUID, e *storage.Entry) error
}

// Result describes a completed conversion
type Result struct {
	ID           ksuid.KSUID
	Input        string
	Output       string
	Devices      int
	Good         int
	Measurements int
	Records      int
	Bytes        int64
	Passed       bool
	Duration     time.Duration

	// UnmappedOverrides lists MIR override keys that matched no field
	UnmappedOverrides []string
}

// Disposition returns "P" when every device passed, else "F"
func (r *Result) Disposition() string {
	if r.Passed {
		return "P"
	}
	return "F"
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) { c.logger = logging.OrNop(l) }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithHistory records every conversion, successful or not
func WithHistory(h History) Option {
	return func(c *Converter) { c.history = h }
}

// WithClock replaces time.Now for durations and history timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// Converter converts tables to STDF. It is safe for concurrent use.
type Converter struct {
	encoder *stdf.Encoder
	logger  *zap.Logger
	metrics *metrics.Metrics
	history History
	now     func() time.Time
}

// New creates a converter
func New(opts ...Option) *Converter {
	c := &Converter{
		encoder: stdf.NewEncoder(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert reads a table from r and writes the STDF stream to w. Nothing is
// written unless the whole table parses and assembles.
func (c *Converter) Convert(r io.Reader, w io.Writer, cfg assemble.RunConfig) (*Result, error) {
	run := c.begin(cfg.InputName, "")

	lot, err := c.prepare(r, cfg)
	if err == nil {
		err = c.emit(run.result, lot, w)
	}
	return c.end(run, err)
}

// ConvertFile converts inPath into outPath. The output file only appears if
// the conversion succeeds.
func (c *Converter) ConvertFile(inPath, outPath string, cfg assemble.RunConfig) (*Result, error) {
	if cfg.InputName == "" {
		cfg.InputName = filepath.Base(inPath)
	}
	run := c.begin(inPath, outPath)

	err := c.convertFile(run.result, inPath, outPath, cfg)
	return c.end(run, err)
}

func (c *Converter) convertFile(res *Result, inPath, outPath string, cfg assemble.RunConfig) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	lot, err := c.prepare(in, cfg)
	if err != nil {
		return err
	}

	sink, err := store.NewFileWriter(store.FileWriterConfig{FilePath: outPath})
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer sink.Abort()
	c.logger.Debug("Writing output",
		zap.String("id", res.ID.String()),
		zap.String("temp", sink.TempPath()))

	if err := c.emit(res, lot, sink); err != nil {
		return err
	}
	if size := sink.Size(); size != res.Bytes {
		return fmt.Errorf("output holds %d bytes, wrote %d", size, res.Bytes)
	}
	return sink.Commit()
}

// prepare parses and assembles the whole input. A zero GeneratedAt is
// replaced by the current clock.
func (c *Converter) prepare(r io.Reader, cfg assemble.RunConfig) (*assemble.Lot, error) {
	if cfg.GeneratedAt == 0 {
		cfg.GeneratedAt = uint32(c.now().Unix())
	}
	t, err := table.Parse(r)
	if err != nil {
		return nil, err
	}
	lot, err := assemble.Assemble(t, cfg)
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// recordWriter is a sink that reports where each record starts
type recordWriter interface {
	WriteRecord(data []byte) (int64, error)
}

// emit encodes and writes each record in order
func (c *Converter) emit(res *Result, lot *assemble.Lot, w io.Writer) error {
	res.Devices = lot.Parts
	res.Good = lot.Good
	res.Measurements = lot.Measurements
	res.Passed = lot.Passed
	res.UnmappedOverrides = lot.UnmappedOverrides

	for i, rec := range lot.Records {
		data, err := c.encoder.Encode(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		n, err := c.write(res, rec, w, data)
		res.Bytes += int64(n)
		if err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
		res.Records++
		c.metrics.RecordRecord(rec.Spec().Name, n)
	}
	return nil
}

func (c *Converter) write(res *Result, rec stdf.Record, w io.Writer, data []byte) (int, error) {
	rw, ok := w.(recordWriter)
	if !ok {
		return w.Write(data)
	}
	offset, err := rw.WriteRecord(data)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Wrote record",
		zap.String("id", res.ID.String()),
		zap.String("record", rec.Spec().Name),
		zap.Int64("offset", offset),
		zap.Int("bytes", len(data)))
	return len(data), nil
}

type run struct {
	result  *Result
	started time.Time
}

func (c *Converter) begin(input, output string) run {
	return run{
		result:  &Result{ID: ksuid.New(), Input: input, Output: output},
		started: c.now(),
	}
}

func (c *Converter) end(r run, err error) (*Result, error) {
	res := r.result
	res.Duration = c.now().Sub(r.started)

	c.metrics.RecordConversion(err == nil, res.Duration)
	c.record(r, err)

	if err != nil {
		c.logger.Warn("Conversion failed",
			zap.String("id", res.ID.String()),
			zap.String("input", res.Input),
			zap.Error(err))
		return nil, err
	}

	c.metrics.RecordLot(res.Devices, res.Measurements)
	if len(res.UnmappedOverrides) > 0 {
		c.logger.Warn("Ignoring MIR overrides with unknown field names",
			zap.String("id", res.ID.String()),
			zap.Strings("keys", res.UnmappedOverrides))
	}
	c.logger.Info("Conversion complete",
		zap.String("id", res.ID.String()),
		zap.String("input", res.Input),
		zap.String("output", res.Output),
		zap.Int("devices", res.Devices),
		zap.Int("good", res.Good),
		zap.Int("records", res.Records),
		zap.Int64("bytes", res.Bytes),
		zap.String("disposition", res.Disposition()),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (c *Converter) record(r run, err error) {
	if c.history == nil {
		return
	}
	res := r.result
	entry := &storage.Entry{
		Input:        res.Input,
		Output:       res.Output,
		Status:       "success",
		Devices:      res.Devices,
		Good:         res.Good,
		Measurements: res.Measurements,
		Records:      res.Records,
		Bytes:        res.Bytes,
		StartedAt:    r.started.UTC(),
		Duration:     res.Duration,
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
		entry.Output = ""
	} else {
		entry.Disposition = res.Disposition()
	}
	if herr := c.history.Put(res.ID, entry); herr != nil {
		c.logger.Warn("Failed to record conversion history", zap.String("id", res.ID.String()), zap.Error(herr))
	}
}
