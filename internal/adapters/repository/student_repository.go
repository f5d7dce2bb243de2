package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/ports"
)

// storeHeader is the fixed header of the backing file. Data rows follow
// the same field order on every write.
var storeHeader = []string{"id", "name", "math", "english"}

// StudentRepositoryImpl implements StudentRepository on top of a single
// CSV file. Every mutation rewrites the whole file (Add appends after a
// duplicate scan); rewrites go through a temp file and an atomic rename
// so a crash mid-write cannot leave a torn store. No lock is held between
// calls and concurrent multi-process access is not supported.
type StudentRepositoryImpl struct {
	path string
}

// NewStudentRepository creates a new CSV-backed student repository.
func NewStudentRepository(path string) ports.StudentRepository {
	return &StudentRepositoryImpl{path: path}
}

func (r *StudentRepositoryImpl) EnsureInitialized(ctx context.Context) error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat student store: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	return r.writeAll(nil)
}

func (r *StudentRepositoryImpl) Add(ctx context.Context, student *entities.Student) error {
	student.Normalize()
	if err := student.Validate(); err != nil {
		return err
	}

	students, err := r.readAll()
	if err != nil {
		return err
	}
	for _, s := range students {
		if s.ID == student.ID {
			return entities.ErrStudentExists
		}
	}

	return r.appendRow(student)
}

func (r *StudentRepositoryImpl) Get(ctx context.Context, id string) (*entities.Student, error) {
	students, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for _, s := range students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *StudentRepositoryImpl) List(ctx context.Context) ([]*entities.Student, error) {
	return r.readAll()
}

func (r *StudentRepositoryImpl) Update(ctx context.Context, id string, patch entities.StudentPatch) (*entities.Student, error) {
	students, err := r.readAll()
	if err != nil {
		return nil, err
	}

	var updated *entities.Student
	for _, s := range students {
		if s.ID == id {
			patch.Apply(s)
			if err := s.Validate(); err != nil {
				return nil, err
			}
			updated = s
			break
		}
	}
	if updated == nil {
		return nil, entities.ErrStudentNotFound
	}

	if err := r.writeAll(students); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *StudentRepositoryImpl) Delete(ctx context.Context, id string) error {
	students, err := r.readAll()
	if err != nil {
		return err
	}

	kept := students[:0]
	for _, s := range students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(students) {
		return entities.ErrStudentNotFound
	}

	return r.writeAll(kept)
}

func (r *StudentRepositoryImpl) Upsert(ctx context.Context, student *entities.Student) error {
	student.Normalize()
	if err := student.Validate(); err != nil {
		return err
	}

	students, err := r.readAll()
	if err != nil {
		return err
	}
	for i, s := range students {
		if s.ID == student.ID {
			students[i] = student
			return r.writeAll(students)
		}
	}

	return r.appendRow(student)
}

// readAll loads every record in file order.
func (r *StudentRepositoryImpl) readAll() ([]*entities.Student, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open student store: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(storeHeader)

	// Skip the header line; an empty store is exactly the header.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read store header: %w", err)
	}

	var students []*entities.Student
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read student row: %w", err)
		}
		students = append(students, &entities.Student{
			ID:      row[0],
			Name:    row[1],
			Math:    row[2],
			English: row[3],
		})
	}

	return students, nil
}

// writeAll rewrites the entire store through a temp file in the same
// directory, then renames it over the original.
func (r *StudentRepositoryImpl) writeAll(students []*entities.Student) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".students-*.csv")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(storeHeader)
	for _, s := range students {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write([]string{s.ID, s.Name, s.Math, s.English})
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write student store: %w", writeErr)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace student store: %w", err)
	}
	return nil
}

// appendRow adds one record to the end of the store.
func (r *StudentRepositoryImpl) appendRow(s *entities.Student) error {
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open student store: %w", err)
	}

	writer := csv.NewWriter(f)
	writeErr := writer.Write([]string{s.ID, s.Name, s.Math, s.English})
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return fmt.Errorf("append student row: %w", writeErr)
	}
	return nil
}
