// Package core maps typed record collections to and from single-sheet
// workbooks.
//
// This package holds all conversion logic independent of any transport. It
// can be used by the web handlers, tests or other tools without modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Schema: a per-record-type accessor table built from reference
//     functions (see [Text], [Int], [Time], [Enum], [Strings]).
//   - Mapping: an ordered field to header table that names and orders the
//     exported columns.
//   - Export: column resolution, grid construction, hyperlink annotation and
//     either a table style or the merge layout.
//   - Import: header binding, per-kind coercion or custom converters, and
//     optional struct validation.
//   - Datasets: record types registered with the registry so they can be
//     converted by key from JSON.
//
// # Dataset Registry
//
// Datasets are registered at init time using [Register]:
//
//	core.Register(core.Define(core.Definition[Employee]{
//	    Info: core.DatasetInfo{
//	        Key:     "employees",
//	        Group:   "HR",
//	        Label:   "Employees",
//	        Mapping: core.Map("Name", "姓名", "JoinDate", "入职日期"),
//	    },
//	    Schema: employeeSchema,
//	}))
//
// # Merge Layout
//
// [WithMerge] groups consecutive rows that share the text of a unique column.
// The leading columns of each group are merged vertically, groups alternate
// between two fills, every row gets a fixed height and the header row is
// styled. Without it the used range is formatted as an Excel table.
//
// # Error Handling
//
// Failures are reported with [ConfigurationError], [ConversionError],
// [MalformedWorkbookError] and [ValidationError]. [MapError] turns any error
// into a user-facing message with a support code:
//
//   - CFG001: invalid settings
//   - CONV001-CONV005: cell conversion failures
//   - WB001-WB002: unreadable or empty workbooks
//   - VAL001: record validation failures
package core
