package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/ports"
)

func newTestRepo(t *testing.T) (ports.StudentRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stu.csv")
	repo := NewStudentRepository(path)
	require.NoError(t, repo.EnsureInitialized(context.Background()))
	return repo, path
}

func strptr(s string) *string { return &s }

func TestEnsureInitialized_CreatesHeaderOnlyFile(t *testing.T) {
	_, path := newTestRepo(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,math,english\n", string(data))
}

func TestEnsureInitialized_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "stu.csv")
	repo := NewStudentRepository(path)

	require.NoError(t, repo.EnsureInitialized(context.Background()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice"}))
	require.NoError(t, repo.EnsureInitialized(ctx))

	// Re-initializing must not wipe existing records
	students, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAdd_ThenGet_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	added := &entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}
	require.NoError(t, repo.Add(ctx, added))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, added, got)
}

func TestAdd_EmptyIDOrName(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	err := repo.Add(ctx, &entities.Student{ID: "", Name: "Alice"})
	assert.ErrorIs(t, err, entities.ErrInvalidStudent)

	err = repo.Add(ctx, &entities.Student{ID: "1", Name: "   "})
	assert.ErrorIs(t, err, entities.ErrInvalidStudent)

	students, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestAdd_DuplicateID_LeavesStoreUnchanged(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}))

	err := repo.Add(ctx, &entities.Student{ID: "1", Name: "Bob"})
	assert.ErrorIs(t, err, entities.ErrStudentExists)

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Alice", students[0].Name)
}

func TestAdd_TrimsWhitespace(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: " 7 ", Name: " Grace "}))

	got, err := repo.Get(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Grace", got.Name)
}

func TestGet_MissingID_IsNotAnError(t *testing.T) {
	repo, _ := newTestRepo(t)

	got, err := repo.Get(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_ReturnsAppendOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ids := []string{"3", "1", "2"}
	for _, id := range ids {
		require.NoError(t, repo.Add(ctx, &entities.Student{ID: id, Name: "Student " + id}))
	}

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, students[i].ID)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}))

	updated, err := repo.Update(ctx, "1", entities.StudentPatch{Math: strptr("100")})
	require.NoError(t, err)
	assert.Equal(t, "100", updated.Math)

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, &entities.Student{ID: "1", Name: "Alice", Math: "100", English: "88"}, got)
}

func TestUpdate_MissingID_LeavesStoreUnchanged(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice"}))

	_, err := repo.Update(ctx, "2", entities.StudentPatch{Name: strptr("Bob")})
	assert.ErrorIs(t, err, entities.ErrStudentNotFound)

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Alice", students[0].Name)
}

func TestDelete_RemovesOnlyThatRecord(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice"}))
	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "2", Name: "Bob"}))

	require.NoError(t, repo.Delete(ctx, "1"))

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "2", students[0].ID)

	// A second delete of the same id must fail
	err = repo.Delete(ctx, "1")
	assert.ErrorIs(t, err, entities.ErrStudentNotFound)
}

func TestUpsert_InsertsThenReplaces(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entities.Student{ID: "1", Name: "Alice", Math: "95"}))

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)

	require.NoError(t, repo.Upsert(ctx, &entities.Student{ID: "1", Name: "Alice", Math: "99"}))

	students, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "99", students[0].Math)
}

func TestUpsert_IdempotentUnderRepeatedInput(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	s := entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}
	require.NoError(t, repo.Upsert(ctx, &s))

	once, err := os.ReadFile(path)
	require.NoError(t, err)

	again := s
	require.NoError(t, repo.Upsert(ctx, &again))

	twice, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

func TestRoundTrip_SpecialCharacters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	added := &entities.Student{ID: "x,1", Name: `Liu "Leo", Jr.`, Math: "90", English: ""}
	require.NoError(t, repo.Add(ctx, added))

	got, err := repo.Get(ctx, "x,1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, added, got)
}

func TestEmptyScores_StayEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice"}))

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Math)
	assert.Equal(t, "", got.English)
}

func TestScenario_EnrollUpdateDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	// Empty store -> add -> list returns exactly that record
	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}))
	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, &entities.Student{ID: "1", Name: "Alice", Math: "95", English: "88"}, students[0])

	// Duplicate add fails, store untouched
	err = repo.Add(ctx, &entities.Student{ID: "1", Name: "Bob"})
	assert.ErrorIs(t, err, entities.ErrStudentExists)

	// Partial update of one score
	_, err = repo.Update(ctx, "1", entities.StudentPatch{Math: strptr("100")})
	require.NoError(t, err)
	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &entities.Student{ID: "1", Name: "Alice", Math: "100", English: "88"}, got)

	// Delete leaves the other record alone
	require.NoError(t, repo.Add(ctx, &entities.Student{ID: "2", Name: "Bob"}))
	require.NoError(t, repo.Delete(ctx, "1"))
	students, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "2", students[0].ID)
}

func TestReadAll_FailsWhenStoreMissing(t *testing.T) {
	repo := NewStudentRepository(filepath.Join(t.TempDir(), "missing", "stu.csv"))

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
