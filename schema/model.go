package schema

// TableSpec describes one table of a report: the columns to load and the
// joins that hang further tables off it.
type TableSpec struct {
	Name       string
	Columns    []string
	Master     bool
	Joins      []JoinEdge
	ParseDates []string
}

// JoinEdge states that this table's On column equals JoinWith's JoinWithOn column.
type JoinEdge struct {
	On         string
	JoinWith   string
	JoinWithOn string
}

// Join returns the edge pointing at target, if the spec declares one.
func (t TableSpec) Join(target string) (JoinEdge, bool) {
	for _, j := range t.Joins {
		if j.JoinWith == target {
			return j, true
		}
	}
	return JoinEdge{}, false
}

// HasColumn reports whether name is one of the configured columns.
func (t TableSpec) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Report is a named list of table specs taken from the configuration file.
type Report struct {
	Name   string
	Tables []TableSpec
}

// Masters returns the master specs in declaration order.
func (r Report) Masters() []TableSpec {
	var masters []TableSpec
	for _, t := range r.Tables {
		if t.Master {
			masters = append(masters, t)
		}
	}
	return masters
}
