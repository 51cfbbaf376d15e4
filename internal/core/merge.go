package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// MergeSpec asks for rows with equal values in the Unique field to be grouped:
// the first Width physical columns are merged vertically across each group
// and groups are banded with alternating fills.
type MergeSpec struct {
	Unique string `json:"unique"`
	Width  int    `json:"width"`
}

// Run is a maximal block of consecutive grid rows whose unique-column text
// is equal. Start and End are inclusive 0-based grid rows.
type Run struct {
	Start int
	End   int
}

// Len returns the number of rows in the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

// FindRuns partitions the rows of g into runs on physical column col.
// Runs are disjoint, contiguous and cover every row.
func FindRuns(g *Grid, col int) []Run {
	var runs []Run
	start := 0
	for i := range g.Rows {
		if i+1 < len(g.Rows) && g.Text(i, col) == g.Text(i+1, col) {
			continue
		}
		runs = append(runs, Run{Start: start, End: i})
		start = i + 1
	}
	return runs
}

// BandWidth returns how many leading columns banding and header styling
// cover. Expanded fields count once in mapCount but occupy their full
// width on the sheet.
func BandWidth(mapCount, expansionCount, expansionTotal int) int {
	if expansionCount > 0 {
		return mapCount - expansionCount + expansionTotal
	}
	return mapCount
}

// mergePlan is a validated MergeSpec bound to a concrete layout.
type mergePlan struct {
	column int // unique physical column, -1 when absent from the layout
	width  int
	total  int
}

// planMerge resolves spec against the layout. A unique field that is not a
// visible column yields column -1 (no merge) unless strict is set.
func planMerge(spec MergeSpec, specs []ColumnSpec, strict bool) (mergePlan, error) {
	physical := physicalWidth(specs)
	if spec.Width < 0 {
		return mergePlan{}, configErr("merge width", "must not be negative, got %d", spec.Width)
	}
	if spec.Width > physical {
		return mergePlan{}, configErr("merge width", "%d exceeds the %d exported columns", spec.Width, physical)
	}

	expansions, expanded := 0, 0
	for _, s := range specs {
		if s.Expansion > 0 {
			expansions++
			expanded += s.Expansion
		}
	}
	plan := mergePlan{
		column: -1,
		width:  spec.Width,
		total:  BandWidth(len(specs), expansions, expanded),
	}

	for _, s := range specs {
		if s.Hidden || !strings.EqualFold(s.Field, strings.TrimSpace(spec.Unique)) {
			continue
		}
		if s.Expansion > 0 {
			return mergePlan{}, configErr("merge unique column", "%q is an expanded collection field", spec.Unique)
		}
		plan.column = s.Index
		return plan, nil
	}
	if strict {
		return mergePlan{}, configErr("merge unique column", "%q is not in the mapping", spec.Unique)
	}
	return plan, nil
}

// applyMerge merges and bands every run. The run counter starts at one, so
// the first group gets the odd band.
func applyMerge(wb Workbook, runs []Run, width, total int, p Palette) error {
	if total <= 0 {
		return nil
	}
	for n, run := range runs {
		band := p.OddBand
		if (n+1)%2 == 0 {
			band = p.EvenBand
		}
		patch := sheet.Style{Fill: band, Border: p.Border}
		top, bottom := run.Start+2, run.End+2

		if run.Len() == 1 || width == 0 {
			if err := wb.ApplyStyle(top, 1, bottom, total, patch); err != nil {
				return err
			}
			continue
		}

		for c := 1; c <= width; c++ {
			if err := wb.Merge(top, c, bottom, c); err != nil {
				return fmt.Errorf("merge rows %d-%d of column %d: %w", top, bottom, c, err)
			}
			if err := wb.ApplyStyle(top, c, bottom, c, patch); err != nil {
				return err
			}
		}
		if total > width {
			if err := wb.ApplyStyle(top, width+1, bottom, total, patch); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyFrame gives every row a fixed height, left/center aligns all cells
// and styles the header row.
func applyFrame(wb Workbook, rows, total int, rowHeight float64, p Palette) error {
	for r := 1; r <= rows+1; r++ {
		if err := wb.SetRowHeight(r, rowHeight); err != nil {
			return fmt.Errorf("set height of row %d: %w", r, err)
		}
	}
	if total <= 0 {
		return nil
	}
	if err := wb.ApplyStyle(1, 1, rows+1, total, sheet.Style{HAlign: "left", VAlign: "center"}); err != nil {
		return err
	}
	return wb.ApplyStyle(1, 1, 1, total, sheet.Style{
		Fill:       p.HeaderFill,
		Border:     p.Border,
		Bold:       true,
		FontColor:  p.HeaderText,
		FontFamily: p.HeaderFont,
		FontSize:   p.HeaderSize,
	})
}
