package models

import (
	"errors"
	"fmt"
)

// Canonical field names. The order of FieldNames is the CSV header order.
const (
	FieldURL            = "url"
	FieldTitle          = "title"
	FieldCompany        = "company"
	FieldLocation       = "location"
	FieldPosted         = "posted"
	FieldApplicants     = "applicants"
	FieldJobDescription = "job_description"
)

var fieldNames = []string{
	FieldURL,
	FieldTitle,
	FieldCompany,
	FieldLocation,
	FieldPosted,
	FieldApplicants,
	FieldJobDescription,
}

var ErrUnknownField = errors.New("unknown job record field")

// JobRecord is the result of scraping one job posting page.
// Missing values are always empty strings, never absent.
type JobRecord struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Posted         string `json:"posted"`
	Applicants     string `json:"applicants"`
	JobDescription string `json:"job_description"`
}

// Field is one name/value pair of a JobRecord.
type Field struct {
	Name  string
	Value string
}

// FieldNames returns a copy of the canonical field order
func FieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// IsField reports whether name is one of the seven canonical fields
func IsField(name string) bool {
	for _, f := range fieldNames {
		if f == name {
			return true
		}
	}
	return false
}

func NewJobRecord(url string) JobRecord {
	return JobRecord{URL: url}
}

func (r *JobRecord) ptr(name string) *string {
	switch name {
	case FieldURL:
		return &r.URL
	case FieldTitle:
		return &r.Title
	case FieldCompany:
		return &r.Company
	case FieldLocation:
		return &r.Location
	case FieldPosted:
		return &r.Posted
	case FieldApplicants:
		return &r.Applicants
	case FieldJobDescription:
		return &r.JobDescription
	}
	return nil
}

// Get returns the value of a field by its canonical name
func (r JobRecord) Get(name string) (string, bool) {
	p := r.ptr(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set assigns a field by its canonical name
func (r *JobRecord) Set(name, value string) error {
	p := r.ptr(name)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	*p = value
	return nil
}

// Fields returns the record as name/value pairs in canonical order
func (r JobRecord) Fields() []Field {
	out := make([]Field, 0, len(fieldNames))
	for _, name := range fieldNames {
		v, _ := r.Get(name)
		out = append(out, Field{Name: name, Value: v})
	}
	return out
}

// MissingFields lists the empty non-url fields in canonical order
func (r JobRecord) MissingFields() []string {
	var missing []string
	for _, f := range r.Fields() {
		if f.Name == FieldURL {
			continue
		}
		if f.Value == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// IsComplete is true when every field besides url holds text
func (r JobRecord) IsComplete() bool {
	return len(r.MissingFields()) == 0
}

// RecordFromRow builds a record from a dataset row keyed by column name.
// Columns the row does not have stay empty.
func RecordFromRow(row map[string]string) JobRecord {
	var r JobRecord
	for _, name := range fieldNames {
		_ = r.Set(name, row[name])
	}
	return r
}

// ApplyTo overwrites the seven canonical columns of row with the record's values
func (r JobRecord) ApplyTo(row map[string]string) {
	for _, f := range r.Fields() {
		row[f.Name] = f.Value
	}
}
