package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/infrastructure/logger"
	"github.com/gradebook/core/internal/ports"
)

// IngestService loads raw CSV or JSON files into postgres staging tables.
type IngestService struct {
	store  ports.DatasetStore
	logger *logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(store ports.DatasetStore, logger *logger.Logger) *IngestService {
	return &IngestService{
		store:  store,
		logger: logger,
	}
}

// Ingest parses the source file and appends every row to the staging
// table, creating schema and table on first use.
func (s *IngestService) Ingest(ctx context.Context, req ports.IngestRequest) (*ports.IngestResult, error) {
	ds, err := s.ParseFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	if err := s.store.EnsureTable(ctx, req.Schema, req.Table, ds.Columns); err != nil {
		return nil, err
	}
	if err := s.store.AppendRows(ctx, req.Schema, req.Table, *ds); err != nil {
		return nil, err
	}

	run := &entities.IngestionRun{
		SourceFile: filepath.Base(req.FilePath),
		Schema:     req.Schema,
		Table:      req.Table,
		RowCount:   len(ds.Rows),
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("Dataset ingested",
		"source_file", run.SourceFile,
		"schema", req.Schema,
		"table", req.Table,
		"row_count", run.RowCount,
	)

	return &ports.IngestResult{
		Schema:   req.Schema,
		Table:    req.Table,
		RowCount: run.RowCount,
	}, nil
}

// ParseFile reads a raw file into a Dataset. The format is picked by
// extension: .csv or .json.
func (s *IngestService) ParseFile(path string) (*ports.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(path)
	case ".json":
		return parseJSON(path)
	default:
		return nil, fmt.Errorf("unsupported source format: %s", filepath.Ext(path))
	}
}

func parseCSV(path string) (*ports.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv source: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("source file %s is empty", filepath.Base(path))
	}

	columns := make([]string, len(records[0]))
	for i, c := range records[0] {
		columns[i] = strings.TrimSpace(c)
	}

	return &ports.Dataset{Columns: columns, Rows: records[1:]}, nil
}

// parseJSON accepts either a bare array of objects or an envelope with a
// "data" key holding one. Nested values are re-encoded as JSON text so
// they can land in TEXT columns.
func parseJSON(path string) (*ports.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse json source: %w", err)
	}

	if envelope, ok := payload.(map[string]interface{}); ok {
		if data, ok := envelope["data"]; ok {
			payload = data
		}
	}

	list, ok := payload.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of objects in %s", filepath.Base(path))
	}

	// Columns are the union of keys across all records, sorted so the
	// staging table layout is deterministic.
	seen := make(map[string]bool)
	objects := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a list of objects in %s", filepath.Base(path))
		}
		for key := range obj {
			seen[strings.TrimSpace(key)] = true
		}
		objects = append(objects, obj)
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	index := make(map[string]int, len(columns))
	for i, key := range columns {
		index[key] = i
	}

	rows := make([][]string, len(objects))
	for i, obj := range objects {
		row := make([]string, len(columns))
		for key, value := range obj {
			cell, err := stringifyValue(value)
			if err != nil {
				return nil, err
			}
			row[index[strings.TrimSpace(key)]] = cell
		}
		rows[i] = row
	}

	return &ports.Dataset{Columns: columns, Rows: rows}, nil
}

func stringifyValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	default:
		// Lists and nested objects are stored as JSON text.
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode nested value: %w", err)
		}
		return string(encoded), nil
	}
}
