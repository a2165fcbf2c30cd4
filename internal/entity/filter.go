package entity

// Filter is an explicit WHERE fragment with bindvar-style (?) placeholders.
// Filters compose with And; the store rebinds placeholders for the driver
// before execution.
type Filter struct {
	Clause string
	Args   []any
}

// Where builds a filter from a clause and its arguments.
func Where(clause string, args ...any) Filter {
	return Filter{Clause: clause, Args: args}
}

// And conjoins two filters. A zero filter on either side yields the other
// side unchanged.
func (f Filter) And(other Filter) Filter {
	switch {
	case f.IsZero():
		return other
	case other.IsZero():
		return f
	}
	return Filter{
		Clause: "(" + f.Clause + ") AND (" + other.Clause + ")",
		Args:   append(append([]any{}, f.Args...), other.Args...),
	}
}

// IsZero reports whether the filter has no clause.
func (f Filter) IsZero() bool {
	return f.Clause == ""
}
