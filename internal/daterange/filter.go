package daterange

// ColumnKind tells Apply how the filtered column is stored.
type ColumnKind int

const (
	// DateColumn stores a calendar day with no time of day.
	DateColumn ColumnKind = iota
	// TimestampColumn stores an absolute instant.
	TimestampColumn
)

func (k ColumnKind) String() string {
	if k == TimestampColumn {
		return "timestamp"
	}
	return "date"
}

// Filterer receives inclusive comparison predicates. Query builders for the
// different stores implement it.
type Filterer interface {
	Gte(column, value string)
	Lte(column, value string)
}

// Bounds encodes r for a column of the given kind. Empty bounds stay empty.
// Date columns compare against the civil date itself; timestamp columns
// compare against the first and last millisecond of the civil day in UTC.
func (c *Calendar) Bounds(r Range, kind ColumnKind) (lower, upper string, err error) {
	if r.StartDate != "" {
		if lower, err = c.encode(r.StartDate, kind, false); err != nil {
			return "", "", err
		}
	}
	if r.EndDate != "" {
		if upper, err = c.encode(r.EndDate, kind, true); err != nil {
			return "", "", err
		}
	}
	return lower, upper, nil
}

func (c *Calendar) encode(date string, kind ColumnKind, end bool) (string, error) {
	if kind == DateColumn {
		d, err := ParseDate(date)
		if err != nil {
			return "", err
		}
		return formatDate(d), nil
	}
	boundary := c.StartOfDay
	if end {
		boundary = c.EndOfDay
	}
	t, err := boundary(date)
	if err != nil {
		return "", err
	}
	return FormatInstant(t), nil
}

// Apply adds the range to f as >= / <= predicates on column.
func (c *Calendar) Apply(f Filterer, column string, r Range, kind ColumnKind) error {
	if f == nil || column == "" {
		return nil
	}
	lower, upper, err := c.Bounds(r, kind)
	if err != nil {
		return err
	}
	if lower != "" {
		f.Gte(column, lower)
	}
	if upper != "" {
		f.Lte(column, upper)
	}
	return nil
}
