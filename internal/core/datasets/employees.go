package datasets

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/sheetmap/internal/core"
)

// Level is an employee's job level.
type Level int

const (
	LevelJunior Level = iota
	LevelSenior
	LevelLead
	LevelManager
)

var levelNames = []string{"Junior", "Senior", "Lead", "Manager"}

// Levels lists every level in rank order.
var Levels = []Level{LevelJunior, LevelSenior, LevelLead, LevelManager}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= len(levelNames) {
		return nil, fmt.Errorf("invalid enum: level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("invalid enum: %q is not a level", s)
}

// Employee is one row of the staff roster.
type Employee struct {
	Name       string    `json:"name" validate:"required"`
	Department string    `json:"department" validate:"required"`
	JoinDate   time.Time `json:"join_date"`
	Salary     float64   `json:"salary" validate:"gte=0"`
	Active     bool      `json:"active"`
	Level      Level     `json:"level"`
	Homepage   string    `json:"homepage,omitempty" validate:"omitempty,url"`
	Tags       []string  `json:"tags,omitempty"`
}

// EmployeeSchema is the accessor table of Employee.
var EmployeeSchema = core.MustSchema("employees",
	core.Text("Name", func(e *Employee) *string { return &e.Name }),
	core.Text("Department", func(e *Employee) *string { return &e.Department }),
	core.Time("JoinDate", func(e *Employee) *time.Time { return &e.JoinDate }),
	core.Float("Salary", func(e *Employee) *float64 { return &e.Salary }),
	core.Bool("Active", func(e *Employee) *bool { return &e.Active }),
	core.Enum("Level", Levels, func(e *Employee) *Level { return &e.Level }),
	core.Text("Homepage", func(e *Employee) *string { return &e.Homepage }),
	core.Strings("Tags", func(e *Employee) *[]string { return &e.Tags }),
)

func init() {
	core.Register(core.Define(core.Definition[Employee]{
		Info: core.DatasetInfo{
			Key:   "employees",
			Group: "HR",
			Label: "Employees",
			Mapping: core.Map(
				"Department", "部门",
				"Name", "姓名",
				"JoinDate", "入职日期",
				"Level", "职级",
				"Salary", "月薪",
				"Active", "状态",
				"Homepage", "个人主页",
				"Tags", "标签",
			),
			Expansions: core.Expansions{"Tags": 3},
			Merge:      &core.MergeSpec{Unique: "Department", Width: 1},
			LinkFields: []string{"Homepage"},
		},
		Schema: EmployeeSchema,
		Converters: map[string]core.Converter{
			"Active": parseEmploymentStatus,
		},
	}))
}

// parseEmploymentStatus reads the 状态 column, which HR fills in as
// 在职/离职 as often as yes/no.
func parseEmploymentStatus(s string) (any, error) {
	switch strings.TrimSpace(s) {
	case "在职":
		return true, nil
	case "离职", "":
		return false, nil
	}
	return core.ParseBool(s)
}
