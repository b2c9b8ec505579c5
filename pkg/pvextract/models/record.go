package models

// Synthetic field names of a student record.
const (
	FieldName    = "Name"
	FieldAverage = "Average"
	FieldResult  = "Result"
)

// Record is the set of fields known for one student. Fields keep the order in
// which they were first set.
type Record struct {
	// ID is the student number.
	ID string

	fields []string
	values map[string]Value
}

// NewRecord creates an empty record for the given student.
func NewRecord(id string) *Record {
	return &Record{
		ID:     id,
		values: make(map[string]Value),
	}
}

// Set stores v under field, replacing any previous value.
func (r *Record) Set(field string, v Value) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

// Get returns the value stored under field.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns field names in first-set order.
func (r *Record) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Name returns the display name of the student, if set.
func (r *Record) Name() string {
	v, _ := r.Get(FieldName)
	return v.Str
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := NewRecord(r.ID)
	for _, f := range r.fields {
		c.Set(f, r.values[f])
	}
	return c
}
