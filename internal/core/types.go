// Package core maps typed record collections to and from single-sheet workbooks.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"regexp"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// FieldKind is the declared type of a record field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindEnum
	KindStrings
)

var kindNames = [...]string{"text", "int", "float", "bool", "time", "enum", "strings"}

func (k FieldKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Order selects how exported columns are laid out.
type Order int

const (
	// OrderNatural keeps the schema's declaration order. Fields missing from
	// a non-empty mapping are written but hidden.
	OrderNatural Order = iota
	// OrderMapping lays columns out strictly in mapping order and omits
	// unmapped fields.
	OrderMapping
)

// LinkMode selects which columns the hyperlink pass scans.
type LinkMode int

const (
	LinkNone LinkMode = iota
	LinkAll
	LinkNamed
)

// Defaults used when an option is not given.
const (
	DefaultSheetName  = "数据"
	DefaultDateFormat = "yyyy/dd/MM HH:mm:ss"
	DefaultTableStyle = "TableStyleMedium9"
	DefaultRowHeight  = 28
)

// TableStyle names one of the built-in Excel table styles, for example
// "TableStyleMedium9". The empty string disables table formatting.
type TableStyle string

var tableStyleRegex = regexp.MustCompile(`^TableStyle(Light([1-9]|1[0-9]|2[01])|Medium([1-9]|1[0-9]|2[0-8])|Dark([1-9]|1[01]))$`)

// Valid reports whether s is empty or a known built-in style name.
func (s TableStyle) Valid() bool {
	return s == "" || tableStyleRegex.MatchString(string(s))
}

// Palette holds the colors and fonts of the merge layout.
type Palette struct {
	OddBand    string // fill of the 1st, 3rd, ... run
	EvenBand   string // fill of the 2nd, 4th, ... run
	Border     string
	HeaderFill string
	HeaderFont string
	HeaderText string // header font color
	HeaderSize float64
}

// DefaultPalette is the blue banded look of merged exports.
var DefaultPalette = Palette{
	OddBand:    "DDEBF7",
	EvenBand:   "BDD7EE",
	Border:     "9C9C9C",
	HeaderFill: "5B9BD5",
	HeaderFont: "微软雅黑",
	HeaderText: "FFFFFF",
	HeaderSize: 12,
}

// withDefaults fills zero fields from DefaultPalette.
func (p Palette) withDefaults() Palette {
	d := DefaultPalette
	if p.OddBand == "" {
		p.OddBand = d.OddBand
	}
	if p.EvenBand == "" {
		p.EvenBand = d.EvenBand
	}
	if p.Border == "" {
		p.Border = d.Border
	}
	if p.HeaderFill == "" {
		p.HeaderFill = d.HeaderFill
	}
	if p.HeaderFont == "" {
		p.HeaderFont = d.HeaderFont
	}
	if p.HeaderText == "" {
		p.HeaderText = d.HeaderText
	}
	if p.HeaderSize <= 0 {
		p.HeaderSize = d.HeaderSize
	}
	return p
}

// Workbook is the part of the workbook capability the rendering passes use.
// Rows and columns are 1-based. *sheet.Book satisfies it.
type Workbook interface {
	SetValue(row, col int, v any) error
	SetHyperlink(row, col int, link string) error
	HideColumn(col int) error
	SetRowHeight(row int, height float64) error
	ApplyStyle(top, left, bottom, right int, patch sheet.Style) error
	Merge(top, left, bottom, right int) error
}
