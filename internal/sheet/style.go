package sheet

import "github.com/xuri/excelize/v2"

// Style is an additive cell style. Zero fields leave whatever an earlier
// patch set on the cell untouched, so passes can layer fills, fonts and
// number formats onto the same cell without knowing about each other.
//
// Colors are RGB hex strings without the leading '#'.
type Style struct {
	Fill       string
	Border     string // thin border on all four edges
	Bold       bool
	FontColor  string
	FontFamily string
	FontSize   float64
	HAlign     string
	VAlign     string
	NumFmt     string
}

// Merge returns s with every non-zero field of patch applied on top.
func (s Style) Merge(patch Style) Style {
	if patch.Fill != "" {
		s.Fill = patch.Fill
	}
	if patch.Border != "" {
		s.Border = patch.Border
	}
	if patch.Bold {
		s.Bold = true
	}
	if patch.FontColor != "" {
		s.FontColor = patch.FontColor
	}
	if patch.FontFamily != "" {
		s.FontFamily = patch.FontFamily
	}
	if patch.FontSize > 0 {
		s.FontSize = patch.FontSize
	}
	if patch.HAlign != "" {
		s.HAlign = patch.HAlign
	}
	if patch.VAlign != "" {
		s.VAlign = patch.VAlign
	}
	if patch.NumFmt != "" {
		s.NumFmt = patch.NumFmt
	}
	return s
}

// IsZero reports whether the style carries no formatting at all.
func (s Style) IsZero() bool {
	return s == Style{}
}

func (s Style) excelize() *excelize.Style {
	st := &excelize.Style{}
	if s.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + s.Fill}}
	}
	if s.Border != "" {
		color := "#" + s.Border
		st.Border = []excelize.Border{
			{Type: "left", Color: color, Style: 1},
			{Type: "top", Color: color, Style: 1},
			{Type: "bottom", Color: color, Style: 1},
			{Type: "right", Color: color, Style: 1},
		}
	}
	if s.Bold || s.FontColor != "" || s.FontFamily != "" || s.FontSize > 0 {
		st.Font = &excelize.Font{Bold: s.Bold, Family: s.FontFamily, Size: s.FontSize}
		if s.FontColor != "" {
			st.Font.Color = "#" + s.FontColor
		}
	}
	if s.HAlign != "" || s.VAlign != "" {
		st.Alignment = &excelize.Alignment{Horizontal: s.HAlign, Vertical: s.VAlign}
	}
	if s.NumFmt != "" {
		numFmt := s.NumFmt
		st.CustomNumFmt = &numFmt
	}
	return st
}
