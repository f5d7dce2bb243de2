package entities

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("student id already exists")
	ErrInvalidStudent  = errors.New("student id and name are required")
)

// Student represents one student record in the store.
// Math and English are kept as opaque strings; an empty string means the
// score is absent. Numeric interpretation is left to callers.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Math    string `json:"math"`
	English string `json:"english"`
}

// Normalize strips surrounding whitespace from all fields.
func (s *Student) Normalize() {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Math = strings.TrimSpace(s.Math)
	s.English = strings.TrimSpace(s.English)
}

// Validate checks the required fields after normalization.
func (s *Student) Validate() error {
	if s.ID == "" || s.Name == "" {
		return ErrInvalidStudent
	}
	return nil
}

// StudentPatch is a partial update for a student. Nil fields keep the
// stored value.
type StudentPatch struct {
	Name    *string `json:"name"`
	Math    *string `json:"math"`
	English *string `json:"english"`
}

// Apply overlays the patch onto an existing record.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Math != nil {
		s.Math = strings.TrimSpace(*p.Math)
	}
	if p.English != nil {
		s.English = strings.TrimSpace(*p.English)
	}
}

// IngestionRun records one raw-file load into a staging table.
type IngestionRun struct {
	ID         int    `json:"id" db:"id"`
	SourceFile string `json:"source_file" db:"source_file"`
	Schema     string `json:"schema" db:"schema_name"`
	Table      string `json:"table" db:"table_name"`
	RowCount   int    `json:"row_count" db:"row_count"`
}
