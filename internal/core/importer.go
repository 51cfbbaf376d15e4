package core

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// Converter turns the displayed text of a cell into a field value. Its
// result is assigned to the field as is.
type Converter func(string) (any, error)

// ImportOptions configures one import.
type ImportOptions struct {
	DateFormat string
	Converters map[string]Converter
	Validator  *validator.Validate
	Logger     *slog.Logger
}

// ImportOption configures an import.
type ImportOption func(*ImportOptions)

// WithConverter registers a converter for field, replacing default coercion.
func WithConverter(field string, fn Converter) ImportOption {
	return func(o *ImportOptions) {
		if o.Converters == nil {
			o.Converters = make(map[string]Converter)
		}
		o.Converters[field] = fn
	}
}

// WithConverters registers several converters keyed by field name.
func WithConverters(m map[string]Converter) ImportOption {
	return func(o *ImportOptions) {
		for field, fn := range m {
			WithConverter(field, fn)(o)
		}
	}
}

// WithImportDateFormat sets the Excel date format tried first when a date
// cell holds text rather than a date serial.
func WithImportDateFormat(format string) ImportOption {
	return func(o *ImportOptions) { o.DateFormat = format }
}

// WithValidator validates every constructed record with v.
func WithValidator(v *validator.Validate) ImportOption {
	return func(o *ImportOptions) { o.Validator = v }
}

// WithImportLogger sets the logger for diagnostics.
func WithImportLogger(l *slog.Logger) ImportOption {
	return func(o *ImportOptions) { o.Logger = l }
}

type binding struct {
	col    int
	header string
	pos    int
}

// Import reads the first sheet of r into a new slice. It returns nil and the
// error on failure.
func Import[T any](r io.Reader, schema *Schema[T], headers map[string]string, opts ...ImportOption) ([]T, error) {
	var out []T
	if err := ImportInto(&out, r, schema, headers, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportInto reads the first sheet of r and appends one record per data row
// to dst.
//
// Row 1 is the header row; headers maps header text to field name. Data rows
// whose first cell is blank are skipped. A record is appended only once all of
// its cells converted, so on error dst holds exactly the rows read before the
// failing one.
func ImportInto[T any](dst *[]T, r io.Reader, schema *Schema[T], headers map[string]string, opts ...ImportOption) error {
	o := ImportOptions{DateFormat: DefaultDateFormat}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	byHeader := make(map[string]int, len(headers))
	for header, field := range headers {
		pos, ok := schema.position(field)
		if !ok {
			return configErr("header mapping", "header %q maps to unknown field %q", header, field)
		}
		byHeader[strings.TrimSpace(header)] = pos
	}
	converters := make(map[int]Converter, len(o.Converters))
	for field, fn := range o.Converters {
		pos, ok := schema.position(field)
		if !ok {
			return configErr("converters", "unknown field %q", field)
		}
		converters[pos] = fn
	}

	book, err := sheet.Open(r)
	if err != nil {
		return &MalformedWorkbookError{Err: err}
	}
	defer book.Close()

	display, err := book.Rows(false)
	if err != nil {
		return &MalformedWorkbookError{Err: err}
	}
	raw, err := book.Rows(true)
	if err != nil {
		return &MalformedWorkbookError{Err: err}
	}
	if len(display) == 0 {
		return &MalformedWorkbookError{Err: fmt.Errorf("%w: sheet %q has no used range", ErrEmptyWorkbook, book.SheetName())}
	}

	var binds []binding
	for i, h := range display[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if pos, ok := byHeader[h]; ok {
			binds = append(binds, binding{col: i, header: h, pos: pos})
		}
	}

	layout := GoLayout(o.DateFormat)
	start := time.Now()
	added, skipped := 0, 0

	for i := 1; i < len(display); i++ {
		if strings.TrimSpace(cellAt(display, i, 0)) == "" {
			skipped++
			continue
		}

		var rec T
		for _, b := range binds {
			f := schema.fields[b.pos]
			text := cellAt(display, i, b.col)
			fail := func(err error) error {
				return &ConversionError{Row: i + 1, Column: b.header, Field: f.name, Value: text, Err: err}
			}

			if conv, ok := converters[b.pos]; ok {
				v, err := conv(text)
				if err != nil {
					return fail(err)
				}
				if err := f.set(&rec, v); err != nil {
					return fail(err)
				}
				continue
			}

			rawText := strings.TrimSpace(cellAt(raw, i, b.col))
			if rawText == "" {
				continue
			}
			if err := coerceInto(&rec, f, text, rawText, layout); err != nil {
				return fail(err)
			}
		}

		if o.Validator != nil {
			if err := o.Validator.Struct(&rec); err != nil {
				return &ValidationError{Row: i + 1, Err: err}
			}
		}
		*dst = append(*dst, rec)
		added++
	}

	o.Logger.Debug("import complete",
		"schema", schema.Name(),
		"sheet", book.SheetName(),
		"rows", added,
		"skipped", skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// coerceInto applies the default conversion for f's kind. Typed kinds read
// the raw cell value so dates arrive as serials and numbers unrounded.
func coerceInto[T any](rec *T, f Field[T], text, raw, layout string) error {
	switch f.kind {
	case KindText:
		return f.set(rec, text)
	case KindInt:
		i, err := ParseInt(raw)
		if err != nil {
			return err
		}
		return f.set(rec, i)
	case KindFloat:
		v, err := ParseFloat(raw)
		if err != nil {
			return err
		}
		return f.set(rec, v)
	case KindBool:
		b, err := ParseBool(raw)
		if err != nil {
			return err
		}
		return f.set(rec, b)
	case KindTime:
		t, err := ParseTime(raw, layout)
		if err != nil {
			return err
		}
		return f.set(rec, t)
	case KindEnum:
		m, ok := f.member(strings.TrimSpace(text))
		if !ok {
			return fmt.Errorf("invalid enum: %q is not one of %s", text, strings.Join(f.members, ", "))
		}
		return f.set(rec, m)
	case KindStrings:
		cur, _ := f.get(rec).([]string)
		return f.set(rec, append(cur, SplitList(text)...))
	default:
		return fmt.Errorf("unsupported field kind %s", f.kind)
	}
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}
