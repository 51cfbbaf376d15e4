package core

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// DatasetInfo contains display and layout information about a dataset.
type DatasetInfo struct {
	Key        string      `json:"key"`   // Unique identifier: "employees"
	Group      string      `json:"group"` // Grouping for listings: "HR"
	Label      string      `json:"label"` // Display name: "Employees"
	Mapping    Mapping     `json:"mapping"`
	Expansions Expansions  `json:"expansions,omitempty"`
	Merge      *MergeSpec  `json:"merge,omitempty"`       // Suggested grouping
	LinkFields []string    `json:"link_fields,omitempty"` // Fields holding URLs
	Fields     []FieldInfo `json:"fields"`
}

// FieldInfo describes one schema field.
type FieldInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Members []string `json:"members,omitempty"`
}

// Dataset is a registered record type that converts between a JSON array of
// records and a workbook.
type Dataset interface {
	Info() DatasetInfo
	// Export decodes a JSON array and renders it. It returns the workbook
	// bytes and the number of records.
	Export(body []byte, opts ...ExportOption) ([]byte, int, error)
	// Import reads a workbook and returns the records as a JSON array and
	// their number.
	Import(r io.Reader, opts ...ImportOption) ([]byte, int, error)
}

// Definition is the typed description of a dataset.
type Definition[T any] struct {
	Info       DatasetInfo
	Schema     *Schema[T]
	Converters map[string]Converter
}

type dataset[T any] struct {
	def Definition[T]
}

// Define turns a typed definition into a Dataset. Fields of the info are
// filled from the schema.
func Define[T any](def Definition[T]) Dataset {
	fields := def.Schema.Fields()
	def.Info.Fields = make([]FieldInfo, len(fields))
	for i, f := range fields {
		def.Info.Fields[i] = FieldInfo{Name: f.Name(), Kind: f.Kind().String(), Members: f.Members()}
	}
	return &dataset[T]{def: def}
}

func (d *dataset[T]) Info() DatasetInfo {
	return d.def.Info
}

func (d *dataset[T]) Export(body []byte, opts ...ExportOption) ([]byte, int, error) {
	var records []T
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, 0, fmt.Errorf("invalid json records: %w", err)
	}

	base := []ExportOption{WithExpansions(d.def.Info.Expansions)}
	data, err := Export(records, d.def.Schema, d.def.Info.Mapping, append(base, opts...)...)
	if err != nil {
		return nil, 0, err
	}
	return data, len(records), nil
}

func (d *dataset[T]) Import(r io.Reader, opts ...ImportOption) ([]byte, int, error) {
	base := []ImportOption{WithConverters(d.def.Converters)}
	records, err := Import(r, d.def.Schema, d.def.Info.Mapping.InvertExpanded(d.def.Info.Expansions), append(base, opts...)...)
	if err != nil {
		return nil, 0, err
	}
	if records == nil {
		records = []T{}
	}
	out, err := json.Marshal(records)
	if err != nil {
		return nil, 0, fmt.Errorf("encode records: %w", err)
	}
	return out, len(records), nil
}
