package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// GridColumn is one physical column of a Grid.
type GridColumn struct {
	Name   string
	Field  string
	IsDate bool
	Hidden bool
}

// Grid is the materialized table of an export. Every row has exactly
// len(Columns) cells; a nil cell is blank. Cells hold string, int64,
// float64, bool or time.Time values.
type Grid struct {
	Columns []GridColumn
	Rows    [][]any
}

// BuildGrid materializes records under the resolved column specs.
// Expanded fields fill their columns left to right; shorter sequences leave
// trailing columns blank and longer ones are truncated.
func BuildGrid[T any](records []T, s *Schema[T], specs []ColumnSpec) *Grid {
	g := &Grid{Columns: make([]GridColumn, 0, physicalWidth(specs))}
	for _, spec := range specs {
		if spec.Expansion > 0 {
			for k := 0; k < spec.Expansion; k++ {
				g.Columns = append(g.Columns, GridColumn{
					Name:   ExpandedHeader(spec.Header, k),
					Field:  spec.Field,
					Hidden: spec.Hidden,
				})
			}
			continue
		}
		g.Columns = append(g.Columns, GridColumn{
			Name:   spec.Header,
			Field:  spec.Field,
			IsDate: spec.IsDate,
			Hidden: spec.Hidden,
		})
	}

	g.Rows = make([][]any, len(records))
	for r := range records {
		rec := &records[r]
		row := make([]any, len(g.Columns))
		for _, spec := range specs {
			if spec.Virtual {
				continue
			}
			v := s.fields[spec.pos].get(rec)
			if spec.Expansion > 0 {
				items, _ := v.([]string)
				for k := 0; k < spec.Expansion && k < len(items); k++ {
					row[spec.Index+k] = cellValue(items[k])
				}
				continue
			}
			row[spec.Index] = cellValue(v)
		}
		g.Rows[r] = row
	}
	return g
}

// Width returns the number of physical columns.
func (g *Grid) Width() int { return len(g.Columns) }

// Text returns the display string of a cell, used for run comparison and
// link detection. Rows and columns are 0-based.
func (g *Grid) Text(row, col int) string {
	return cellText(g.Rows[row][col])
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case []string:
		if len(x) == 0 {
			return nil
		}
		return strings.Join(x, ", ")
	}
	return v
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// renderGrid writes headers and data starting at A1, hides hidden columns
// and gives date columns the date number format.
func renderGrid(wb Workbook, g *Grid, dateFormat string) error {
	for c, col := range g.Columns {
		if err := wb.SetValue(1, c+1, col.Name); err != nil {
			return fmt.Errorf("write header %q: %w", col.Name, err)
		}
	}
	for r, row := range g.Rows {
		for c, v := range row {
			if err := wb.SetValue(r+2, c+1, v); err != nil {
				return fmt.Errorf("write cell (%d,%d): %w", r+2, c+1, err)
			}
		}
	}
	for c, col := range g.Columns {
		if col.Hidden {
			if err := wb.HideColumn(c + 1); err != nil {
				return fmt.Errorf("hide column %q: %w", col.Name, err)
			}
		}
		if col.IsDate && len(g.Rows) > 0 {
			if err := wb.ApplyStyle(2, c+1, len(g.Rows)+1, c+1, sheet.Style{NumFmt: dateFormat}); err != nil {
				return fmt.Errorf("format date column %q: %w", col.Name, err)
			}
		}
	}
	return nil
}
