package core

// ColumnSpec is one logical export column resolved from a schema and a
// mapping. An expanded field occupies Width() adjacent physical columns.
type ColumnSpec struct {
	Index     int // first physical column, 0-based
	Field     string
	Header    string
	Kind      FieldKind
	IsDate    bool
	Expansion int // physical columns of an expanded field, 0 for a scalar
	Hidden    bool
	Virtual   bool // no schema field behind it; always blank

	pos int // schema position, -1 when virtual
}

// Width returns the number of physical columns the spec occupies.
func (c ColumnSpec) Width() int {
	if c.Expansion > 0 {
		return c.Expansion
	}
	return 1
}

// ResolveColumns derives the ordered column list for an export.
//
// In OrderNatural the schema's declaration order wins and the mapping only
// supplies headers; with a non-empty mapping, unmapped fields are hidden and
// mapping keys naming no field are ignored. In OrderMapping the mapping
// order wins, unmapped fields are omitted and unknown keys become blank
// columns.
func ResolveColumns[T any](s *Schema[T], m Mapping, exp Expansions, order Order) ([]ColumnSpec, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	for name, n := range exp {
		f, ok := s.Lookup(name)
		if !ok {
			return nil, configErr("expansions", "unknown field %q", name)
		}
		if f.kind != KindStrings {
			return nil, configErr("expansions", "field %q is %s, only string sequences expand", name, f.kind)
		}
		if n < 1 {
			return nil, configErr("expansions", "field %q needs a count of at least 1, got %d", name, n)
		}
	}

	var specs []ColumnSpec
	add := func(spec ColumnSpec) {
		if len(specs) > 0 {
			last := specs[len(specs)-1]
			spec.Index = last.Index + last.Width()
		}
		specs = append(specs, spec)
	}
	fromField := func(pos int, header string, hidden bool) ColumnSpec {
		f := s.fields[pos]
		spec := ColumnSpec{
			Field:  f.name,
			Header: header,
			Kind:   f.kind,
			IsDate: f.kind == KindTime,
			Hidden: hidden,
			pos:    pos,
		}
		if n, ok := exp.Count(f.name); ok {
			spec.Expansion = n
		}
		return spec
	}

	switch order {
	case OrderNatural:
		for pos, f := range s.fields {
			header, hidden := f.name, false
			if len(m) > 0 {
				if c, ok := m.Lookup(f.name); ok {
					header = c.Header
				} else {
					hidden = true
				}
			}
			add(fromField(pos, header, hidden))
		}
	case OrderMapping:
		for _, c := range m {
			pos, ok := s.position(c.Field)
			if !ok {
				add(ColumnSpec{Field: c.Field, Header: c.Header, Virtual: true, pos: -1})
				continue
			}
			add(fromField(pos, c.Header, false))
		}
	default:
		return nil, configErr("order", "unknown order %d", order)
	}
	return specs, nil
}

// physicalWidth returns the total number of physical columns.
func physicalWidth(specs []ColumnSpec) int {
	if len(specs) == 0 {
		return 0
	}
	last := specs[len(specs)-1]
	return last.Index + last.Width()
}
