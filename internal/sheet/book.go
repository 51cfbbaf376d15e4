// Package sheet provides the single-worksheet workbook used by the exporter
// and importer. It is a thin layer over excelize that adds two things excelize
// does not do on its own: per-cell style layering (excelize replaces a cell's
// style id wholesale) and content-based column auto-fit.
//
// A Book is owned by one caller for the duration of one export or import and
// is not safe for concurrent use.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

var (
	// ErrHyperlinkLimit is returned by SetHyperlink once the worksheet holds
	// the maximum number of hyperlinks the file format allows.
	ErrHyperlinkLimit = excelize.ErrTotalSheetHyperlinks

	// ErrNoSheets is returned by Open for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrClosed is returned by operations on a closed Book.
	ErrClosed = errors.New("workbook is closed")
)

const (
	minColumnWidth = 8
	maxColumnWidth = 255
	widthPadding   = 2
)

type cell struct {
	row, col int
}

// Book is a workbook with exactly one active worksheet. Rows and columns
// are 1-based throughout.
type Book struct {
	file  *excelize.File
	sheet string

	styles map[cell]Style
	dirty  map[cell]struct{}
	ids    map[Style]int

	closed bool
}

// New creates an empty workbook whose only sheet is called name.
func New(name string) (*Book, error) {
	f := excelize.NewFile()
	current := f.GetSheetName(0)
	if name != "" && name != current {
		if err := f.SetSheetName(current, name); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet to %q: %w", name, err)
		}
		current = name
	}
	return newBook(f, current), nil
}

// Open loads a workbook from r and selects its first sheet.
func Open(r io.Reader) (*Book, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, ErrNoSheets
	}
	return newBook(f, sheets[0]), nil
}

func newBook(f *excelize.File, sheet string) *Book {
	return &Book{
		file:   f,
		sheet:  sheet,
		styles: make(map[cell]Style),
		dirty:  make(map[cell]struct{}),
		ids:    make(map[Style]int),
	}
}

// SheetName returns the name of the active sheet.
func (b *Book) SheetName() string {
	return b.sheet
}

// SetValue writes v to a cell. A nil value leaves the cell blank.
func (b *Book) SetValue(row, col int, v any) error {
	if b.closed {
		return ErrClosed
	}
	if v == nil {
		return nil
	}
	name, err := cellName(row, col)
	if err != nil {
		return err
	}
	return b.file.SetCellValue(b.sheet, name, v)
}

// Rows returns the used range of the sheet. With raw set, number formats are
// not applied, so dates come back as serial numbers and numbers unrounded.
// Trailing blank cells of a row are omitted.
func (b *Book) Rows(raw bool) ([][]string, error) {
	if b.closed {
		return nil, ErrClosed
	}
	return b.file.GetRows(b.sheet, excelize.Options{RawCellValue: raw})
}

// SetHyperlink attaches an external link to a cell.
func (b *Book) SetHyperlink(row, col int, link string) error {
	if b.closed {
		return ErrClosed
	}
	name, err := cellName(row, col)
	if err != nil {
		return err
	}
	return b.file.SetCellHyperLink(b.sheet, name, link, "External")
}

// HideColumn hides a column.
func (b *Book) HideColumn(col int) error {
	if b.closed {
		return ErrClosed
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return b.file.SetColVisible(b.sheet, name, false)
}


// SetRowHeight sets the height of a row in points.
func (b *Book) SetRowHeight(row int, height float64) error {
	if b.closed {
		return ErrClosed
	}
	return b.file.SetRowHeight(b.sheet, row, height)
}

// ApplyStyle layers patch onto every cell of the inclusive range.
// Nothing is written to the file until the styles are flushed.
func (b *Book) ApplyStyle(top, left, bottom, right int, patch Style) error {
	if b.closed {
		return ErrClosed
	}
	if top < 1 || left < 1 || bottom < top || right < left {
		return fmt.Errorf("invalid style range (%d,%d)-(%d,%d)", top, left, bottom, right)
	}
	if patch.IsZero() {
		return nil
	}
	for r := top; r <= bottom; r++ {
		for c := left; c <= right; c++ {
			k := cell{r, c}
			b.styles[k] = b.styles[k].Merge(patch)
			b.dirty[k] = struct{}{}
		}
	}
	return nil
}

// Merge merges the inclusive range into one cell. The top-left value is kept.
func (b *Book) Merge(top, left, bottom, right int) error {
	if b.closed {
		return ErrClosed
	}
	from, err := cellName(top, left)
	if err != nil {
		return err
	}
	to, err := cellName(bottom, right)
	if err != nil {
		return err
	}
	return b.file.MergeCell(b.sheet, from, to)
}

// AddTable formats the range as an Excel table with the named built-in
// style, for example "TableStyleMedium9". The first row is the header row.
func (b *Book) AddTable(top, left, bottom, right int, style string) error {
	if b.closed {
		return ErrClosed
	}
	from, err := cellName(top, left)
	if err != nil {
		return err
	}
	to, err := cellName(bottom, right)
	if err != nil {
		return err
	}
	showStripes := true
	return b.file.AddTable(b.sheet, &excelize.Table{
		Range:          from + ":" + to,
		StyleName:      style,
		ShowRowStripes: &showStripes,
	})
}

// AutoFit sizes every visible column to its widest rendered value.
// Pending styles are flushed first so dates are measured as displayed.
func (b *Book) AutoFit() error {
	if b.closed {
		return ErrClosed
	}
	if err := b.flushStyles(); err != nil {
		return err
	}

	cols, err := b.file.GetCols(b.sheet)
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}
	for i, values := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		visible, err := b.file.GetColVisible(b.sheet, name)
		if err != nil {
			return err
		}
		if !visible {
			continue
		}

		widest := 0
		for _, v := range values {
			if w := displayWidth(v); w > widest {
				widest = w
			}
		}
		w := float64(widest + widthPadding)
		if w < minColumnWidth {
			w = minColumnWidth
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := b.file.SetColWidth(b.sheet, name, name, w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes flushes pending styles and serializes the workbook.
func (b *Book) Bytes() ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if err := b.flushStyles(); err != nil {
		return nil, err
	}
	buf, err := b.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook. It is safe to call more than once.
func (b *Book) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.file.Close()
}

// flushStyles materializes layered styles, reusing one style id per
// distinct composed style.
func (b *Book) flushStyles() error {
	for k := range b.dirty {
		st := b.styles[k]
		id, ok := b.ids[st]
		if !ok {
			var err error
			id, err = b.file.NewStyle(st.excelize())
			if err != nil {
				return fmt.Errorf("create style: %w", err)
			}
			b.ids[st] = id
		}
		name, err := cellName(k.row, k.col)
		if err != nil {
			return err
		}
		if err := b.file.SetCellStyle(b.sheet, name, name, id); err != nil {
			return err
		}
	}
	clear(b.dirty)
	return nil
}

func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// displayWidth counts East Asian wide and fullwidth runes as two columns.
// Multi-line values are measured by their longest line.
func displayWidth(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		n := 0
		for _, r := range line {
			switch width.LookupRune(r).Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				n += 2
			default:
				n++
			}
		}
		if n > widest {
			widest = n
		}
	}
	return widest
}
