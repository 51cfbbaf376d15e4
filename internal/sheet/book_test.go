package sheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewRenamesDefaultSheet(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "数据", b.SheetName())
	assert.Equal(t, []string{"数据"}, b.file.GetSheetList())
}

func TestStyleMerge(t *testing.T) {
	base := Style{Fill: "DDEBF7", Border: "9C9C9C"}
	got := base.Merge(Style{Bold: true, HAlign: "left", VAlign: "center"})

	assert.Equal(t, Style{
		Fill:   "DDEBF7",
		Border: "9C9C9C",
		Bold:   true,
		HAlign: "left",
		VAlign: "center",
	}, got)

	// zero fields never clear
	assert.Equal(t, got, got.Merge(Style{}))
}

func TestApplyStyleLayersPatches(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetValue(1, 1, "x"))
	require.NoError(t, b.ApplyStyle(1, 1, 1, 1, Style{Fill: "5B9BD5"}))
	require.NoError(t, b.ApplyStyle(1, 1, 1, 1, Style{Bold: true, FontColor: "FFFFFF"}))
	require.NoError(t, b.flushStyles())

	id, err := b.file.GetCellStyle(b.sheet, "A1")
	require.NoError(t, err)
	st, err := b.file.GetStyle(id)
	require.NoError(t, err)

	require.NotEmpty(t, st.Fill.Color)
	assert.True(t, strings.HasSuffix(strings.ToUpper(st.Fill.Color[0]), "5B9BD5"))
	require.NotNil(t, st.Font)
	assert.True(t, st.Font.Bold)
}

func TestApplyStyleSharesIDs(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.ApplyStyle(1, 1, 3, 2, Style{Fill: "BDD7EE"}))
	require.NoError(t, b.flushStyles())
	assert.Len(t, b.ids, 1)

	a, err := b.file.GetCellStyle(b.sheet, "A1")
	require.NoError(t, err)
	z, err := b.file.GetCellStyle(b.sheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, a, z)
}

func TestApplyStyleRejectsBadRange(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	defer b.Close()

	assert.Error(t, b.ApplyStyle(0, 1, 1, 1, Style{Bold: true}))
	assert.Error(t, b.ApplyStyle(3, 1, 2, 1, Style{Bold: true}))
}

func TestNumberFormatIsApplied(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetValue(2, 1, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, b.ApplyStyle(2, 1, 2, 1, Style{NumFmt: "yyyy/dd/MM HH:mm:ss"}))
	require.NoError(t, b.flushStyles())

	id, err := b.file.GetCellStyle(b.sheet, "A2")
	require.NoError(t, err)
	st, err := b.file.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, st.CustomNumFmt)
	assert.Equal(t, "yyyy/dd/MM HH:mm:ss", *st.CustomNumFmt)
}

func TestMergeHyperlinkAndVisibility(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetValue(2, 1, "A"))
	require.NoError(t, b.Merge(2, 1, 3, 1))
	require.NoError(t, b.SetValue(2, 2, "https://example.com"))
	require.NoError(t, b.SetHyperlink(2, 2, "https://example.com"))
	require.NoError(t, b.HideColumn(3))

	merged, err := b.file.GetMergeCells(b.sheet)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A2", merged[0].GetStartAxis())
	assert.Equal(t, "A3", merged[0].GetEndAxis())

	ok, link, err := b.file.GetCellHyperLink(b.sheet, "B2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", link)

	visible, err := b.file.GetColVisible(b.sheet, "C")
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestAutoFitMeasuresWideRunes(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	defer b.Close()

	long := strings.Repeat("中", 10) // 20 display columns
	require.NoError(t, b.SetValue(1, 1, long))
	require.NoError(t, b.SetValue(1, 2, "ab"))
	require.NoError(t, b.SetValue(1, 3, strings.Repeat("x", 40)))
	require.NoError(t, b.HideColumn(3))
	require.NoError(t, b.AutoFit())

	wide, err := b.file.GetColWidth(b.sheet, "A")
	require.NoError(t, err)
	narrow, err := b.file.GetColWidth(b.sheet, "B")
	require.NoError(t, err)

	assert.Equal(t, float64(20+widthPadding), wide)
	assert.Equal(t, float64(minColumnWidth), narrow)

	visible, err := b.file.GetColVisible(b.sheet, "C")
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"姓名", 4},
		{"ａｂ", 4},
		{"short\nlonger line", 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayWidth(tt.in), tt.in)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	b, err := New("数据")
	require.NoError(t, err)
	require.NoError(t, b.SetValue(1, 1, "姓名"))
	require.NoError(t, b.SetValue(2, 1, "A"))
	require.NoError(t, b.SetValue(2, 2, int64(42)))
	require.NoError(t, b.AddTable(1, 1, 2, 2, "TableStyleMedium9"))
	data, err := b.Bytes()
	require.NoError(t, err)
	require.NoError(t, b.Close())

	reopened, err := Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, "数据", reopened.SheetName())
	rows, err := reopened.Rows(false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "姓名", rows[0][0])
	assert.Equal(t, []string{"A", "42"}, rows[1])

	tables, err := reopened.file.GetTables(reopened.sheet)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "TableStyleMedium9", tables[0].StyleName)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func TestClosedBook(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.SetValue(1, 1, "x"), ErrClosed)
	_, err = b.Bytes()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHyperlinkLimitSentinel(t *testing.T) {
	assert.ErrorIs(t, ErrHyperlinkLimit, excelize.ErrTotalSheetHyperlinks)
}
