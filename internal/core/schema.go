package core

// schema.go holds the per-record-type accessor table.
//
// A Schema is built once (usually in an init function) and only read
// afterwards, so it can be shared by concurrent exports and imports.
// Each Field is constructed from a reference function that returns a pointer
// into the record, which gives both the getter and the setter:
//
//	var employees = core.MustSchema("employees",
//	    core.Text("Name", func(e *Employee) *string { return &e.Name }),
//	    core.Time("JoinDate", func(e *Employee) *time.Time { return &e.JoinDate }),
//	    core.Int("Age", func(e *Employee) *int { return &e.Age }),
//	)

import (
	"fmt"
	"strings"
	"time"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type float interface {
	~float32 | ~float64
}

// Field is one entry of a record type's accessor table.
type Field[T any] struct {
	name    string
	kind    FieldKind
	members []string

	get    func(*T) any
	set    func(*T, any) error
	member func(string) (any, bool)
}

// Name returns the field name.
func (f Field[T]) Name() string { return f.name }

// Kind returns the declared type of the field.
func (f Field[T]) Kind() FieldKind { return f.kind }

// Members returns the member names of an enum field.
func (f Field[T]) Members() []string { return f.members }

// Get reads the field from rec.
func (f Field[T]) Get(rec *T) any { return f.get(rec) }

// Set assigns v to the field of rec. v must be of the field's Go type or a
// value that converts to it without loss.
func (f Field[T]) Set(rec *T, v any) error { return f.set(rec, v) }

// Text declares a string field.
func Text[T any](name string, ref func(*T) *string) Field[T] {
	return Field[T]{
		name: name,
		kind: KindText,
		get:  func(r *T) any { return *ref(r) },
		set: func(r *T, v any) error {
			switch x := v.(type) {
			case nil:
				*ref(r) = ""
			case string:
				*ref(r) = x
			case fmt.Stringer:
				*ref(r) = x.String()
			default:
				return mismatch(v, KindText)
			}
			return nil
		},
	}
}

// Int declares an integer field of any width or signedness.
func Int[T any, N integer](name string, ref func(*T) *N) Field[T] {
	return Field[T]{
		name: name,
		kind: KindInt,
		get:  func(r *T) any { return int64(*ref(r)) },
		set: func(r *T, v any) error {
			i, err := asInt64(v)
			if err != nil {
				return err
			}
			n := N(i)
			if int64(n) != i || (n < 0) != (i < 0) {
				return fmt.Errorf("invalid number: %d overflows %T", i, n)
			}
			*ref(r) = n
			return nil
		},
	}
}

// Float declares a floating point field.
func Float[T any, F float](name string, ref func(*T) *F) Field[T] {
	return Field[T]{
		name: name,
		kind: KindFloat,
		get:  func(r *T) any { return float64(*ref(r)) },
		set: func(r *T, v any) error {
			f, err := asFloat64(v)
			if err != nil {
				return err
			}
			*ref(r) = F(f)
			return nil
		},
	}
}

// Bool declares a boolean field.
func Bool[T any](name string, ref func(*T) *bool) Field[T] {
	return Field[T]{
		name: name,
		kind: KindBool,
		get:  func(r *T) any { return *ref(r) },
		set: func(r *T, v any) error {
			switch x := v.(type) {
			case bool:
				*ref(r) = x
			case string:
				b, err := ParseBool(x)
				if err != nil {
					return err
				}
				*ref(r) = b
			default:
				return mismatch(v, KindBool)
			}
			return nil
		},
	}
}

// Time declares a date/time field. Columns of time fields get the export
// date format.
func Time[T any](name string, ref func(*T) *time.Time) Field[T] {
	return Field[T]{
		name: name,
		kind: KindTime,
		get:  func(r *T) any { return *ref(r) },
		set: func(r *T, v any) error {
			switch x := v.(type) {
			case time.Time:
				*ref(r) = x
			case *time.Time:
				if x == nil {
					*ref(r) = time.Time{}
				} else {
					*ref(r) = *x
				}
			default:
				return mismatch(v, KindTime)
			}
			return nil
		},
	}
}

// Strings declares an ordered string sequence. On export it can be expanded
// into several physical columns; otherwise its elements are joined.
func Strings[T any](name string, ref func(*T) *[]string) Field[T] {
	return Field[T]{
		name: name,
		kind: KindStrings,
		get:  func(r *T) any { return *ref(r) },
		set: func(r *T, v any) error {
			switch x := v.(type) {
			case nil:
				*ref(r) = nil
			case []string:
				*ref(r) = x
			case string:
				*ref(r) = SplitList(x)
			default:
				return mismatch(v, KindStrings)
			}
			return nil
		},
	}
}

// Enum declares a field whose values are one of members, written and read
// by their String() names.
func Enum[T any, E interface {
	comparable
	fmt.Stringer
}](name string, members []E, ref func(*T) *E) Field[T] {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.String()
	}
	lookup := func(s string) (any, bool) {
		for i, n := range names {
			if n == s {
				return members[i], true
			}
		}
		for i, n := range names {
			if strings.EqualFold(n, s) {
				return members[i], true
			}
		}
		return nil, false
	}
	return Field[T]{
		name:    name,
		kind:    KindEnum,
		members: names,
		get:     func(r *T) any { return (*ref(r)).String() },
		set: func(r *T, v any) error {
			switch x := v.(type) {
			case E:
				*ref(r) = x
			case string:
				m, ok := lookup(x)
				if !ok {
					return fmt.Errorf("invalid enum: %q is not one of %s", x, strings.Join(names, ", "))
				}
				*ref(r) = m.(E)
			default:
				return mismatch(v, KindEnum)
			}
			return nil
		},
		member: lookup,
	}
}

// Schema is the accessor table of one record type.
type Schema[T any] struct {
	name   string
	fields []Field[T]
	index  map[string]int // lowercased name -> position
}

// NewSchema builds a schema from fields in declaration order. Field names are
// matched case-insensitively and must be unique under that rule.
func NewSchema[T any](name string, fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{
		name:   name,
		fields: make([]Field[T], 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if strings.TrimSpace(f.name) == "" {
			return nil, &ConfigurationError{Setting: "schema " + name, Reason: "field with empty name"}
		}
		if f.get == nil || f.set == nil {
			return nil, &ConfigurationError{Setting: "schema " + name, Reason: fmt.Sprintf("field %q has no accessor", f.name)}
		}
		if f.kind == KindEnum && len(f.members) == 0 {
			return nil, &ConfigurationError{Setting: "schema " + name, Reason: fmt.Sprintf("enum field %q has no members", f.name)}
		}
		key := strings.ToLower(f.name)
		if _, dup := s.index[key]; dup {
			return nil, &ConfigurationError{Setting: "schema " + name, Reason: fmt.Sprintf("duplicate field %q", f.name)}
		}
		s.index[key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Use it for package-level schemas declared at init time.
func MustSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema[T]) Name() string { return s.name }

// Len returns the number of fields.
func (s *Schema[T]) Len() int { return len(s.fields) }

// Fields returns the fields in declaration order.
func (s *Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup finds a field by case-insensitive name.
func (s *Schema[T]) Lookup(name string) (Field[T], bool) {
	i, ok := s.position(name)
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

func (s *Schema[T]) position(name string) (int, bool) {
	i, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

func mismatch(v any, kind FieldKind) error {
	return fmt.Errorf("cannot assign %T to %s field", v, kind)
}
