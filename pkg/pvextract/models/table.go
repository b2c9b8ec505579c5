package models

// PageGrid is the grid of cell texts extracted from one page. Row 0 holds the
// column names.
type PageGrid [][]string

// Header returns the header row, or nil for an empty grid.
func (g PageGrid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// PageRecords holds the partial records found on a single page, in the order
// students first appear on it.
type PageRecords struct {
	// Page is the 1-based page number the records come from.
	Page int

	order   []string
	records map[string]*Record
}

// NewPageRecords creates an empty set of partial records for a page.
func NewPageRecords(page int) *PageRecords {
	return &PageRecords{
		Page:    page,
		records: make(map[string]*Record),
	}
}

// GetOrCreate returns the record of student id, creating it if needed.
// created is true when the record did not exist yet.
func (p *PageRecords) GetOrCreate(id string) (rec *Record, created bool) {
	if rec, ok := p.records[id]; ok {
		return rec, false
	}
	rec = NewRecord(id)
	p.records[id] = rec
	p.order = append(p.order, id)
	return rec, true
}

// Get returns the record of student id.
func (p *PageRecords) Get(id string) (*Record, bool) {
	if p == nil {
		return nil, false
	}
	rec, ok := p.records[id]
	return rec, ok
}

// IDs returns student ids in first-seen order.
func (p *PageRecords) IDs() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.order...)
}

// Len returns the number of students on the page.
func (p *PageRecords) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Table is the merged set of student records of a run, ordered by first
// appearance of each student.
type Table struct {
	order   []string
	records map[string]*Record
	columns []string
	seen    map[string]struct{}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		records: make(map[string]*Record),
		seen:    make(map[string]struct{}),
	}
}

// Add appends rec to the table. A record with an id already present replaces
// the previous one without changing its position.
func (t *Table) Add(rec *Record) {
	if _, ok := t.records[rec.ID]; !ok {
		t.order = append(t.order, rec.ID)
	}
	t.records[rec.ID] = rec
	t.track(rec)
}

// Refresh recomputes the column set after records were modified in place.
func (t *Table) Refresh() {
	t.columns = nil
	t.seen = make(map[string]struct{})
	for _, id := range t.order {
		t.track(t.records[id])
	}
}

func (t *Table) track(rec *Record) {
	for _, f := range rec.fields {
		if _, ok := t.seen[f]; ok {
			continue
		}
		t.seen[f] = struct{}{}
		t.columns = append(t.columns, f)
	}
}

// Get returns the record of student id.
func (t *Table) Get(id string) (*Record, bool) {
	rec, ok := t.records[id]
	return rec, ok
}

// IDs returns student ids in first-seen order.
func (t *Table) IDs() []string {
	return append([]string(nil), t.order...)
}

// Records returns the records in first-seen order.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.records[id])
	}
	return out
}

// Len returns the number of students.
func (t *Table) Len() int {
	return len(t.order)
}

// Columns returns the union of the record fields in first-appearance order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// View is a read-only selection of columns over a table.
type View struct {
	Table   *Table
	Columns []string
}

// FullView returns a view over every column of the table.
func (t *Table) FullView() View {
	return View{Table: t, Columns: t.Columns()}
}

// Project returns a view restricted to the given columns.
func (t *Table) Project(columns []string) View {
	return View{Table: t, Columns: append([]string(nil), columns...)}
}
