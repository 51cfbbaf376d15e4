package core

import (
	"fmt"
	"strings"
)

// Column is one mapping entry: a source field and its display header.
type Column struct {
	Field  string `json:"field"`
	Header string `json:"header"`
}

// Mapping is an ordered field -> header table. Its order is the column order
// of mapping-ordered exports. Field keys match case-insensitively; a key that
// names no schema field produces a blank, header-only column.
type Mapping []Column

// Map builds a Mapping from field/header pairs:
//
//	core.Map("Name", "姓名", "JoinDate", "入职日期")
//
// It panics on an odd number of arguments.
func Map(pairs ...string) Mapping {
	if len(pairs)%2 != 0 {
		panic("core.Map: odd number of arguments")
	}
	m := make(Mapping, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m = append(m, Column{Field: pairs[i], Header: pairs[i+1]})
	}
	return m
}

// Validate checks for empty and duplicate field keys.
func (m Mapping) Validate() error {
	seen := make(map[string]bool, len(m))
	for _, c := range m {
		key := strings.ToLower(strings.TrimSpace(c.Field))
		if key == "" {
			return configErr("mapping", "empty field name for header %q", c.Header)
		}
		if seen[key] {
			return configErr("mapping", "duplicate field %q", c.Field)
		}
		seen[key] = true
	}
	return nil
}

// Lookup returns the entry for field.
func (m Mapping) Lookup(field string) (Column, bool) {
	for _, c := range m {
		if strings.EqualFold(strings.TrimSpace(c.Field), strings.TrimSpace(field)) {
			return c, true
		}
	}
	return Column{}, false
}

// Headers returns the headers in order.
func (m Mapping) Headers() []string {
	out := make([]string, len(m))
	for i, c := range m {
		out[i] = c.Header
	}
	return out
}

// Invert returns the header -> field table used by import.
func (m Mapping) Invert() map[string]string {
	return m.InvertExpanded(nil)
}

// InvertExpanded is Invert plus the numbered headers of every expanded
// field, so a workbook exported with exp reads back into the same fields.
// Headers named explicitly in the mapping take precedence.
func (m Mapping) InvertExpanded(exp Expansions) map[string]string {
	out := make(map[string]string, len(m))
	for _, c := range m {
		out[c.Header] = c.Field
	}
	for _, c := range m {
		n, ok := exp.Count(c.Field)
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			if h := ExpandedHeader(c.Header, i); out[h] == "" {
				out[h] = c.Field
			}
		}
	}
	return out
}

// Expansions maps a string-sequence field to the number of physical columns
// it expands into. Keys match case-insensitively.
type Expansions map[string]int

// Count returns the expansion count of field.
func (e Expansions) Count(field string) (int, bool) {
	for k, n := range e {
		if strings.EqualFold(k, field) {
			return n, true
		}
	}
	return 0, false
}

// ExpandedHeader names the i-th (0-based) physical column of an expanded
// field: header1, header2, ...
func ExpandedHeader(header string, i int) string {
	return fmt.Sprintf("%s%d", header, i+1)
}
