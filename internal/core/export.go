package core

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// ExportOptions configures one export. Use the With* options rather than
// filling it directly; zero values mean the package defaults.
type ExportOptions struct {
	SheetName   string
	DateFormat  string
	TableStyle  TableStyle
	Order       Order
	Links       LinkMode
	LinkFields  []string
	Expansions  Expansions
	Merge       *MergeSpec
	StrictMerge bool
	Palette     Palette
	RowHeight   float64
	Logger      *slog.Logger
}

// ExportOption configures an export.
type ExportOption func(*ExportOptions)

// InMappingOrder lays columns out in mapping order and omits unmapped fields.
func InMappingOrder() ExportOption {
	return func(o *ExportOptions) { o.Order = OrderMapping }
}

// WithOrder sets the column order explicitly.
func WithOrder(order Order) ExportOption {
	return func(o *ExportOptions) { o.Order = order }
}

// WithHyperlinks links absolute URIs found in any column.
func WithHyperlinks() ExportOption {
	return func(o *ExportOptions) { o.Links = LinkAll }
}

// WithHyperlinkColumns links absolute URIs found in the named fields only.
func WithHyperlinkColumns(fields ...string) ExportOption {
	return func(o *ExportOptions) {
		o.Links = LinkNamed
		o.LinkFields = append(o.LinkFields, fields...)
	}
}

// WithExpansions expands string-sequence fields into repeated columns.
func WithExpansions(exp Expansions) ExportOption {
	return func(o *ExportOptions) { o.Expansions = exp }
}

// WithMerge groups rows by unique and merges the first width columns of
// each group. A width above one merges several fields per group.
func WithMerge(unique string, width int) ExportOption {
	return func(o *ExportOptions) { o.Merge = &MergeSpec{Unique: unique, Width: width} }
}

// StrictMerge makes a unique field missing from the mapping an error
// instead of an export without merging.
func StrictMerge() ExportOption {
	return func(o *ExportOptions) { o.StrictMerge = true }
}

// WithSheetName sets the worksheet title.
func WithSheetName(name string) ExportOption {
	return func(o *ExportOptions) { o.SheetName = name }
}

// WithDateFormat sets the Excel number format of date columns.
func WithDateFormat(format string) ExportOption {
	return func(o *ExportOptions) { o.DateFormat = format }
}

// WithTableStyle sets the table style of non-merge exports. An empty style
// disables table formatting.
func WithTableStyle(style TableStyle) ExportOption {
	return func(o *ExportOptions) { o.TableStyle = style }
}

// WithPalette overrides colors and fonts of merged exports.
func WithPalette(p Palette) ExportOption {
	return func(o *ExportOptions) { o.Palette = p }
}

// WithRowHeight sets the row height of merged exports.
func WithRowHeight(points float64) ExportOption {
	return func(o *ExportOptions) { o.RowHeight = points }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) ExportOption {
	return func(o *ExportOptions) { o.Logger = l }
}

func newExportOptions(opts []ExportOption) ExportOptions {
	o := ExportOptions{
		SheetName:  DefaultSheetName,
		DateFormat: DefaultDateFormat,
		TableStyle: DefaultTableStyle,
		RowHeight:  DefaultRowHeight,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.Palette = o.Palette.withDefaults()
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o ExportOptions) validate() error {
	if strings.TrimSpace(o.DateFormat) == "" {
		return configErr("date format", "must not be empty")
	}
	if !o.TableStyle.Valid() {
		return configErr("table style", "unknown style %q", o.TableStyle)
	}
	if o.Links == LinkNamed && len(o.LinkFields) == 0 {
		return configErr("hyperlink columns", "no fields named")
	}
	return nil
}

// Export renders records into a single-sheet workbook and returns its bytes.
//
// The pipeline is: resolve columns, build the grid, write it, link URIs,
// then either merge and band (WithMerge) or format the range as a table,
// and finally auto-fit the visible columns. The workbook is released on
// every return path.
func Export[T any](records []T, schema *Schema[T], mapping Mapping, opts ...ExportOption) ([]byte, error) {
	o := newExportOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	specs, err := ResolveColumns(schema, mapping, o.Expansions, o.Order)
	if err != nil {
		return nil, err
	}

	var plan mergePlan
	if o.Merge != nil {
		if plan, err = planMerge(*o.Merge, specs, o.StrictMerge); err != nil {
			return nil, err
		}
	}

	g := BuildGrid(records, schema, specs)
	o.Logger.Debug("grid built",
		"schema", schema.Name(),
		"rows", len(g.Rows),
		"columns", g.Width(),
	)

	book, err := sheet.New(o.SheetName)
	if err != nil {
		return nil, configErr("sheet name", "%v", err)
	}
	defer book.Close()

	if err := renderGrid(book, g, o.DateFormat); err != nil {
		return nil, err
	}

	links, err := annotateLinks(book, g, o.Links, o.LinkFields, o.Logger)
	if err != nil {
		return nil, err
	}

	if o.Merge != nil {
		if err := mergeLayout(book, g, plan, o); err != nil {
			return nil, err
		}
	} else if err := addTable(book, g, o); err != nil {
		return nil, err
	}

	if err := book.AutoFit(); err != nil {
		return nil, fmt.Errorf("auto-fit columns: %w", err)
	}
	data, err := book.Bytes()
	if err != nil {
		return nil, err
	}

	o.Logger.Debug("export complete",
		"schema", schema.Name(),
		"rows", len(records),
		"links", links,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

func mergeLayout(wb Workbook, g *Grid, plan mergePlan, o ExportOptions) error {
	if plan.column >= 0 {
		runs := FindRuns(g, plan.column)
		o.Logger.Debug("merging runs",
			"unique", o.Merge.Unique,
			"runs", len(runs),
			"width", plan.width,
		)
		if err := applyMerge(wb, runs, plan.width, plan.total, o.Palette); err != nil {
			return err
		}
	} else {
		o.Logger.Debug("merge skipped, unique column not in mapping", "unique", o.Merge.Unique)
	}
	return applyFrame(wb, len(g.Rows), plan.total, o.RowHeight, o.Palette)
}

// addTable formats the used range as an Excel table. Tables need at least
// one data row and distinct, non-empty headers; otherwise the sheet is left
// unformatted.
func addTable(book *sheet.Book, g *Grid, o ExportOptions) error {
	if o.TableStyle == "" || len(g.Rows) == 0 || g.Width() == 0 {
		return nil
	}
	seen := make(map[string]bool, g.Width())
	for _, c := range g.Columns {
		key := strings.ToLower(c.Name)
		if key == "" || seen[key] {
			o.Logger.Debug("table style skipped, headers not unique", "header", c.Name)
			return nil
		}
		seen[key] = true
	}
	if err := book.AddTable(1, 1, len(g.Rows)+1, g.Width(), string(o.TableStyle)); err != nil {
		return fmt.Errorf("add table: %w", err)
	}
	return nil
}
