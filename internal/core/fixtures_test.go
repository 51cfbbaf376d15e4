package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetmap/internal/sheet"
)

type level int

const (
	levelJunior level = iota
	levelSenior
	levelLead
)

func (l level) String() string {
	switch l {
	case levelJunior:
		return "Junior"
	case levelSenior:
		return "Senior"
	case levelLead:
		return "Lead"
	}
	return "Unknown"
}

type employee struct {
	Name     string `validate:"required"`
	Dept     string
	JoinDate time.Time
	Age      int `validate:"gte=0"`
	Salary   float64
	Active   bool
	Level    level
	Tags     []string
	Site     string
}

var employeeSchema = MustSchema("employees",
	Text("Name", func(e *employee) *string { return &e.Name }),
	Text("Dept", func(e *employee) *string { return &e.Dept }),
	Time("JoinDate", func(e *employee) *time.Time { return &e.JoinDate }),
	Int("Age", func(e *employee) *int { return &e.Age }),
	Float("Salary", func(e *employee) *float64 { return &e.Salary }),
	Bool("Active", func(e *employee) *bool { return &e.Active }),
	Enum("Level", []level{levelJunior, levelSenior, levelLead}, func(e *employee) *level { return &e.Level }),
	Strings("Tags", func(e *employee) *[]string { return &e.Tags }),
	Text("Site", func(e *employee) *string { return &e.Site }),
)

var fullMapping = Map(
	"Name", "姓名",
	"Dept", "部门",
	"JoinDate", "入职日期",
	"Age", "年龄",
	"Salary", "工资",
	"Active", "在职",
	"Level", "级别",
	"Tags", "标签",
	"Site", "主页",
)

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func sampleEmployees() []employee {
	return []employee{
		{Name: "张三", Dept: "研发", JoinDate: date(2021, 3, 15, 9, 30, 0), Age: 31, Salary: 12500.5, Active: true, Level: levelSenior, Tags: []string{"go", "k8s"}, Site: "https://example.com/zhang"},
		{Name: "李四", Dept: "研发", JoinDate: date(2022, 7, 1, 8, 0, 0), Age: 26, Salary: 9800, Active: true, Level: levelJunior, Tags: []string{"vue"}},
		{Name: "王五", Dept: "销售", JoinDate: date(2019, 11, 20, 10, 15, 30), Age: 40, Salary: 15000, Active: false, Level: levelLead},
		{Name: "赵六", Dept: "研发", JoinDate: date(2023, 1, 9, 14, 45, 0), Age: 28, Salary: 11000.25, Active: true, Level: levelSenior, Site: "see wiki page"},
	}
}

type cellKey struct{ row, col int }

type styleCall struct {
	top, left, bottom, right int
	patch                    sheet.Style
}

type mergeCall struct {
	top, left, bottom, right int
}

// recordingBook is an in-memory Workbook that records every call.
type recordingBook struct {
	values    map[cellKey]any
	links     map[cellKey]string
	hidden    map[int]bool
	heights   map[int]float64
	styles    []styleCall
	merges    []mergeCall
	linkLimit int
}

func newRecordingBook() *recordingBook {
	return &recordingBook{
		values:  make(map[cellKey]any),
		links:   make(map[cellKey]string),
		hidden:  make(map[int]bool),
		heights: make(map[int]float64),
	}
}

func (b *recordingBook) SetValue(row, col int, v any) error {
	if v != nil {
		b.values[cellKey{row, col}] = v
	}
	return nil
}

func (b *recordingBook) SetHyperlink(row, col int, link string) error {
	if b.linkLimit > 0 && len(b.links) >= b.linkLimit {
		return sheet.ErrHyperlinkLimit
	}
	b.links[cellKey{row, col}] = link
	return nil
}

func (b *recordingBook) HideColumn(col int) error {
	b.hidden[col] = true
	return nil
}

func (b *recordingBook) SetRowHeight(row int, height float64) error {
	b.heights[row] = height
	return nil
}

func (b *recordingBook) ApplyStyle(top, left, bottom, right int, patch sheet.Style) error {
	b.styles = append(b.styles, styleCall{top, left, bottom, right, patch})
	return nil
}

func (b *recordingBook) Merge(top, left, bottom, right int) error {
	b.merges = append(b.merges, mergeCall{top, left, bottom, right})
	return nil
}

// styleAt layers every recorded patch covering the cell.
func (b *recordingBook) styleAt(row, col int) sheet.Style {
	var s sheet.Style
	for _, c := range b.styles {
		if row >= c.top && row <= c.bottom && col >= c.left && col <= c.right {
			s = s.Merge(c.patch)
		}
	}
	return s
}

// workbookReader writes rows to the first sheet of a new workbook.
func workbookReader(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

// openExport opens exported bytes for inspection.
func openExport(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
