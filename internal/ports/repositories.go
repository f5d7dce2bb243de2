package ports

import (
	"context"

	"github.com/gradebook/core/internal/domain/entities"
)

// StudentRepository defines the interface for student record storage.
//
// Get treats absence as a normal outcome and returns (nil, nil) when the
// id is unknown; only Update and Delete report a missing id as
// entities.ErrStudentNotFound.
type StudentRepository interface {
	// EnsureInitialized guarantees the backing store exists and carries
	// the expected header. Idempotent.
	EnsureInitialized(ctx context.Context) error
	Add(ctx context.Context, student *entities.Student) error
	Get(ctx context.Context, id string) (*entities.Student, error)
	List(ctx context.Context) ([]*entities.Student, error)
	Update(ctx context.Context, id string, patch entities.StudentPatch) (*entities.Student, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, student *entities.Student) error
}

// Dataset is a parsed raw file headed for a staging table: a header row
// and data rows aligned with it, all values as text.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// DatasetStore defines the interface for loading raw datasets into the
// warehouse staging area.
type DatasetStore interface {
	// EnsureTable creates the schema and an all-text staging table for
	// the dataset columns if they do not exist yet.
	EnsureTable(ctx context.Context, schema, table string, columns []string) error
	// AppendRows inserts every row in one transaction.
	AppendRows(ctx context.Context, schema, table string, ds Dataset) error
	RecordRun(ctx context.Context, run *entities.IngestionRun) error
}
