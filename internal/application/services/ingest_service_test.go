package services

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

// stubDatasetStore records what the ingestion hands to the staging layer.
type stubDatasetStore struct {
	schema  string
	table   string
	columns []string
	dataset ports.Dataset
	run     *entities.IngestionRun
}

func (s *stubDatasetStore) EnsureTable(ctx context.Context, schema, table string, columns []string) error {
	s.schema, s.table, s.columns = schema, table, columns
	return nil
}

func (s *stubDatasetStore) AppendRows(ctx context.Context, schema, table string, ds ports.Dataset) error {
	s.dataset = ds
	return nil
}

func (s *stubDatasetStore) RecordRun(ctx context.Context, run *entities.IngestionRun) error {
	s.run = run
	return nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngest_CSVFile(t *testing.T) {
	path := writeTempFile(t, "traffic.csv", "Site ID , Count\n101,2500\n102,1800\n")
	store := &stubDatasetStore{}
	svc := NewIngestService(store, testLogger())

	result, err := svc.Ingest(context.Background(), ports.IngestRequest{
		FilePath: path,
		Schema:   "staging",
		Table:    "traffic",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, []string{"Site ID", "Count"}, store.columns)
	assert.Equal(t, [][]string{{"101", "2500"}, {"102", "1800"}}, store.dataset.Rows)
	require.NotNil(t, store.run)
	assert.Equal(t, "traffic.csv", store.run.SourceFile)
	assert.Equal(t, 2, store.run.RowCount)
}

func TestParseFile_JSONBareArray(t *testing.T) {
	path := writeTempFile(t, "crashes.json",
		`[{"id": 1, "city": "Cary"}, {"id": 2, "city": "Apex", "severity": "minor"}]`)
	svc := NewIngestService(&stubDatasetStore{}, testLogger())

	ds, err := svc.ParseFile(path)
	require.NoError(t, err)

	// Columns are the sorted union of keys
	assert.Equal(t, []string{"city", "id", "severity"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, []string{"Cary", "1", ""}, ds.Rows[0])
	assert.Equal(t, []string{"Apex", "2", "minor"}, ds.Rows[1])
}

func TestParseFile_JSONDataEnvelope(t *testing.T) {
	path := writeTempFile(t, "crashes.json", `{"data": [{"id": 7}]}`)
	svc := NewIngestService(&stubDatasetStore{}, testLogger())

	ds, err := svc.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, ds.Columns)
	assert.Equal(t, [][]string{{"7"}}, ds.Rows)
}

func TestParseFile_JSONNestedValuesBecomeText(t *testing.T) {
	path := writeTempFile(t, "crashes.json",
		`[{"id": 1, "tags": ["night", "rain"], "open": true, "note": null}]`)
	svc := NewIngestService(&stubDatasetStore{}, testLogger())

	ds, err := svc.ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "note", "open", "tags"}, ds.Columns)
	assert.Equal(t, []string{"1", "", "true", `["night","rain"]`}, ds.Rows[0])
}

func TestParseFile_RejectsUnknownFormat(t *testing.T) {
	path := writeTempFile(t, "data.parquet", "binary")
	svc := NewIngestService(&stubDatasetStore{}, testLogger())

	_, err := svc.ParseFile(path)
	assert.Error(t, err)
}

func TestParseFile_RejectsNonListJSON(t *testing.T) {
	path := writeTempFile(t, "scalar.json", `{"count": 3}`)
	svc := NewIngestService(&stubDatasetStore{}, testLogger())

	_, err := svc.ParseFile(path)
	assert.Error(t, err)
}
