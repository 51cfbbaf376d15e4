package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

// annotateLinks attaches hyperlinks to cells that hold absolute URIs.
//
// LinkAll scans every column; LinkNamed scans the columns whose field matches
// one of fields. Expanded columns share their field name, so naming the field
// covers all of its physical columns. Values that do not parse are left as
// plain text. It returns the number of links written.
func annotateLinks(wb Workbook, g *Grid, mode LinkMode, fields []string, logger *slog.Logger) (int, error) {
	if mode == LinkNone {
		return 0, nil
	}

	added := 0
	for c, col := range g.Columns {
		if mode == LinkNamed && !containsFold(fields, col.Field) {
			continue
		}
		for r := range g.Rows {
			s, ok := g.Rows[r][c].(string)
			if !ok {
				continue
			}
			link, ok := absoluteURI(s)
			if !ok {
				continue
			}
			if err := wb.SetHyperlink(r+2, c+1, link); err != nil {
				if errors.Is(err, sheet.ErrHyperlinkLimit) {
					logger.Warn("hyperlink limit reached, remaining links left as text",
						"links", added,
						"column", col.Name,
					)
					return added, nil
				}
				return added, fmt.Errorf("link cell (%d,%d): %w", r+2, c+1, err)
			}
			added++
		}
	}
	return added, nil
}

// absoluteURI reports whether s looks like an absolute URI and returns the
// trimmed link. Values containing inner whitespace are treated as text.
func absoluteURI(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	return s, true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
