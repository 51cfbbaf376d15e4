package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headersOf(specs []ColumnSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Header
	}
	return out
}

func TestResolveColumns_NaturalOrder(t *testing.T) {
	m := Map("JoinDate", "入职日期", "name", "姓名")
	specs, err := ResolveColumns(employeeSchema, m, nil, OrderNatural)
	require.NoError(t, err)

	require.Len(t, specs, employeeSchema.Len())
	assert.Equal(t, "姓名", specs[0].Header)
	assert.False(t, specs[0].Hidden)
	assert.Equal(t, "Dept", specs[1].Header)
	assert.True(t, specs[1].Hidden)
	assert.Equal(t, "入职日期", specs[2].Header)
	assert.True(t, specs[2].IsDate)
	assert.False(t, specs[2].Hidden)

	for i, s := range specs {
		assert.Equal(t, i, s.Index)
	}
}

func TestResolveColumns_NaturalOrderEmptyMapping(t *testing.T) {
	specs, err := ResolveColumns(employeeSchema, nil, nil, OrderNatural)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Name", "Dept", "JoinDate", "Age", "Salary", "Active", "Level", "Tags", "Site"},
		headersOf(specs))
	for _, s := range specs {
		assert.False(t, s.Hidden, s.Field)
	}
}

func TestResolveColumns_MappingOrder(t *testing.T) {
	m := Map("Site", "主页", "Remark", "备注", "Tags", "标签", "Name", "姓名")
	specs, err := ResolveColumns(employeeSchema, m, Expansions{"tags": 3}, OrderMapping)
	require.NoError(t, err)

	require.Len(t, specs, 4)
	assert.Equal(t, []string{"主页", "备注", "标签", "姓名"}, headersOf(specs))

	assert.True(t, specs[1].Virtual)
	assert.Equal(t, 3, specs[2].Expansion)
	assert.Equal(t, []int{0, 1, 2, 5}, []int{specs[0].Index, specs[1].Index, specs[2].Index, specs[3].Index})
	assert.Equal(t, 6, physicalWidth(specs))
}

func TestResolveColumns_Errors(t *testing.T) {
	tests := []struct {
		name string
		m    Mapping
		exp  Expansions
	}{
		{"duplicate mapping key", Map("Name", "a", "NAME", "b"), nil},
		{"empty mapping key", Map(" ", "a"), nil},
		{"expansion of unknown field", nil, Expansions{"Skills": 2}},
		{"expansion of scalar field", nil, Expansions{"Name": 2}},
		{"expansion count zero", nil, Expansions{"Tags": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveColumns(employeeSchema, tt.m, tt.exp, OrderNatural)
			var cfg *ConfigurationError
			assert.True(t, errors.As(err, &cfg), "want ConfigurationError, got %v", err)
		})
	}
}

func TestMapping(t *testing.T) {
	m := Map("Name", "姓名", "JoinDate", "入职日期")

	assert.Equal(t, []string{"姓名", "入职日期"}, m.Headers())
	assert.Equal(t, map[string]string{"姓名": "Name", "入职日期": "JoinDate"}, m.Invert())

	c, ok := m.Lookup("joindate")
	require.True(t, ok)
	assert.Equal(t, "入职日期", c.Header)

	assert.Panics(t, func() { Map("Name") })
}

func TestExpansions(t *testing.T) {
	exp := Expansions{"Tags": 3, "Phones": 2}

	n, ok := exp.Count("tags")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "标签2", ExpandedHeader("标签", 1))
}

func TestMapping_InvertExpanded(t *testing.T) {
	m := Map("Name", "姓名", "Tags", "标签", "Phones", "电话2")

	tests := []struct {
		name string
		exp  Expansions
		want map[string]string
	}{
		{"no expansions", nil, map[string]string{"姓名": "Name", "标签": "Tags", "电话2": "Phones"}},
		{"numbered headers", Expansions{"tags": 2}, map[string]string{
			"姓名": "Name", "标签": "Tags", "标签1": "Tags", "标签2": "Tags", "电话2": "Phones",
		}},
		{"unknown field ignored", Expansions{"Skills": 2}, map[string]string{"姓名": "Name", "标签": "Tags", "电话2": "Phones"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.InvertExpanded(tt.exp))
		})
	}

	// An explicit header keeps its own field.
	clash := Map("Name", "姓名1", "Other", "姓名")
	got := clash.InvertExpanded(Expansions{"Other": 2})
	assert.Equal(t, "Name", got["姓名1"])
	assert.Equal(t, "Other", got["姓名2"])
}
