package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/JonMunkholm/sheetmap/internal/logging"
)

// ServiceConfig holds the defaults applied to every conversion.
// TableStyle is used as given; the empty style disables table formatting.
type ServiceConfig struct {
	SheetName     string
	DateFormat    string
	TableStyle    TableStyle
	RowHeight     float64
	HeaderFont    string
	StrictMerge   bool
	Validate      bool
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service runs dataset conversions with shared defaults and bounded
// concurrency. It is safe for concurrent use.
type Service struct {
	cfg      ServiceConfig
	limiter  *Limiter
	validate *validator.Validate
}

// NewService creates a Service. Empty settings fall back to package defaults.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	if !cfg.TableStyle.Valid() {
		return nil, configErr("table style", "unknown style %q", cfg.TableStyle)
	}

	s := &Service{
		cfg:     cfg,
		limiter: NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
	}
	if cfg.Validate {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return s, nil
}

// ExportRequest holds the per-request export choices.
type ExportRequest struct {
	Order      Order
	Links      LinkMode
	LinkFields []string
	Merge      *MergeSpec
}

// ExportResult is a rendered workbook.
type ExportResult struct {
	OperationID string
	Dataset     string
	Records     int
	Data        []byte
}

// ImportResult is the outcome of reading a workbook.
type ImportResult struct {
	OperationID string          `json:"operation_id"`
	Dataset     string          `json:"dataset"`
	Count       int             `json:"count"`
	Records     json.RawMessage `json:"records"`
}

// ListDatasets returns information about all registered datasets.
func (s *Service) ListDatasets() []DatasetInfo {
	all := All()
	infos := make([]DatasetInfo, len(all))
	for i, ds := range all {
		infos[i] = ds.Info()
	}
	return infos
}

// Export renders a JSON array of records of the dataset key.
func (s *Service) Export(ctx context.Context, key string, body []byte, req ExportRequest) (*ExportResult, error) {
	ds, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, key)
	}

	logger, opID := logging.WithOperation(ctx, "dataset", key)

	opts := s.exportDefaults(logger)
	opts = append(opts, WithOrder(req.Order))
	switch req.Links {
	case LinkAll:
		opts = append(opts, WithHyperlinks())
	case LinkNamed:
		opts = append(opts, WithHyperlinkColumns(req.LinkFields...))
	}
	if req.Merge != nil {
		opts = append(opts, WithMerge(req.Merge.Unique, req.Merge.Width))
	}

	res := &ExportResult{OperationID: opID, Dataset: key}
	start := time.Now()
	err := s.limiter.Do(ctx, func() error {
		var err error
		res.Data, res.Records, err = ds.Export(body, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("export completed",
		"records", res.Records,
		"bytes", len(res.Data),
		"merge", req.Merge != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Template renders a header-only workbook in mapping order for users to fill in.
func (s *Service) Template(ctx context.Context, key string) (*ExportResult, error) {
	return s.Export(ctx, key, []byte("[]"), ExportRequest{Order: OrderMapping})
}

// Import reads a workbook of the dataset key.
func (s *Service) Import(ctx context.Context, key string, r io.Reader) (*ImportResult, error) {
	ds, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, key)
	}

	logger, opID := logging.WithOperation(ctx, "dataset", key)

	opts := []ImportOption{
		WithImportDateFormat(s.cfg.DateFormat),
		WithImportLogger(logger),
	}
	if s.validate != nil {
		opts = append(opts, WithValidator(s.validate))
	}

	res := &ImportResult{OperationID: opID, Dataset: key}
	start := time.Now()
	err := s.limiter.Do(ctx, func() error {
		var err error
		res.Records, res.Count, err = ds.Import(r, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("import completed",
		"records", res.Count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// LimiterStatus returns the conversion limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until in-flight conversions finish or ctx is done.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}

func (s *Service) exportDefaults(logger *slog.Logger) []ExportOption {
	opts := []ExportOption{
		WithSheetName(s.cfg.SheetName),
		WithDateFormat(s.cfg.DateFormat),
		WithTableStyle(s.cfg.TableStyle),
		WithLogger(logger),
	}
	if s.cfg.RowHeight > 0 {
		opts = append(opts, WithRowHeight(s.cfg.RowHeight))
	}
	if s.cfg.HeaderFont != "" {
		opts = append(opts, WithPalette(Palette{HeaderFont: s.cfg.HeaderFont}))
	}
	if s.cfg.StrictMerge {
		opts = append(opts, StrictMerge())
	}
	return opts
}
