package ports

import (
	"context"

	"github.com/gradebook/core/internal/domain/entities"
)

// StudentService defines the interface for student record operations.
type StudentService interface {
	EnrollStudent(ctx context.Context, req EnrollStudentRequest) (*entities.Student, error)
	GetStudent(ctx context.Context, id string) (*entities.Student, error)
	ListStudents(ctx context.Context) ([]*entities.Student, error)
	UpdateStudent(ctx context.Context, id string, req UpdateStudentRequest) (*entities.Student, error)
	DeleteStudent(ctx context.Context, id string) error
	UpsertStudent(ctx context.Context, req EnrollStudentRequest) (*entities.Student, error)
}

// EnrollStudentRequest is the payload for creating (or upserting) a student.
// Scores are optional and shape-checked only; they are stored as text.
type EnrollStudentRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Math    string `json:"math" validate:"omitempty,numeric"`
	English string `json:"english" validate:"omitempty,numeric"`
}

// UpdateStudentRequest is a partial update; nil fields are left unchanged.
type UpdateStudentRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Math    *string `json:"math" validate:"omitempty,numeric"`
	English *string `json:"english" validate:"omitempty,numeric"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an issued access token.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IngestRequest names a raw file and its destination staging table.
type IngestRequest struct {
	FilePath string
	Schema   string
	Table    string
}

// IngestResult reports what a completed ingestion wrote.
type IngestResult struct {
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	RowCount int    `json:"row_count"`
}
