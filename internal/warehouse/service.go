// Package warehouse is the dataset/table facade over the data warehouse:
// dataset and table CRUD, row retrieval, and CSV bulk load.
package warehouse

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stratusops/stratus/internal/fault"
)

// Warehouse is the slice of the warehouse client this facade consumes. The
// bq package provides the production implementation. Implementations return
// fault-classified errors; LoadCSV blocks until the load job completes.
type Warehouse interface {
	ListDatasets(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, dataset string) ([]string, error)
	CreateDataset(ctx context.Context, dataset string) error
	DatasetExists(ctx context.Context, dataset string) (bool, error)
	DeleteDataset(ctx context.Context, dataset string) error
	TableExists(ctx context.Context, dataset, table string) (bool, error)
	CreateTable(ctx context.Context, dataset, table string, fields []Field) error
	DeleteTable(ctx context.Context, dataset, table string) error
	ReadTable(ctx context.Context, dataset, table string) (fieldNames []string, rows [][]any, err error)
	LoadCSV(ctx context.Context, dataset, table, jobID string, data []byte) error
}

type Service struct {
	wh Warehouse
}

func New(wh Warehouse) *Service { return &Service{wh: wh} }

func (s *Service) ListDatasets(ctx context.Context) ([]string, error) {
	names, err := s.wh.ListDatasets(ctx)
	if err != nil {
		return nil, fault.Wrapf(err, "Failed to list datasets")
	}
	return names, nil
}

// DatasetInfo returns the table names of a dataset.
func (s *Service) DatasetInfo(ctx context.Context, dataset string) ([]string, error) {
	tables, err := s.wh.ListTables(ctx, dataset)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFoundf("Dataset not found: %s", dataset)
		}
		return nil, fault.Wrapf(err, "Failed to get dataset info")
	}
	return tables, nil
}

func (s *Service) CreateDataset(ctx context.Context, dataset string) (string, error) {
	if err := s.wh.CreateDataset(ctx, dataset); err != nil {
		return "", fault.Wrapf(err, "Failed to create dataset")
	}
	return "Successfully created dataset: " + dataset, nil
}

// DeleteDataset checks existence before deleting; an absent dataset is
// NotFound and the delete call is never attempted.
func (s *Service) DeleteDataset(ctx context.Context, dataset string) (string, error) {
	exists, err := s.wh.DatasetExists(ctx, dataset)
	if err != nil {
		return "", fault.Wrapf(err, "Failed to delete dataset")
	}
	if !exists {
		return "", fault.NotFoundf("Dataset not found: %s", dataset)
	}
	if err := s.wh.DeleteDataset(ctx, dataset); err != nil {
		return "", fault.Wrapf(err, "Failed to delete dataset")
	}
	return "Successfully deleted dataset: " + dataset, nil
}

// GetData returns every row of the table as a name-to-value mapping, zipping
// positional values against the field names. An empty table is surfaced as
// NotFound rather than an empty success.
func (s *Service) GetData(ctx context.Context, dataset, table string) ([]map[string]any, error) {
	exists, err := s.wh.TableExists(ctx, dataset, table)
	if err != nil {
		return nil, fault.Wrapf(err, "Failed to get data from table")
	}
	if !exists {
		return nil, fault.NotFoundf("Table not found: %s", table)
	}
	fieldNames, rows, err := s.wh.ReadTable(ctx, dataset, table)
	if err != nil {
		return nil, fault.Wrapf(err, "Failed to get data from table")
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, len(fieldNames))
		for i, name := range fieldNames {
			if i < len(row) {
				m[name] = row[i]
			}
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fault.NotFoundf("no data found in table: %s", table)
	}
	return out, nil
}

// CreateTable parses the JSON schema body and creates the table.
func (s *Service) CreateTable(ctx context.Context, dataset, table string, body []byte) (string, error) {
	fields, err := ParseSchema(body)
	if err != nil {
		return "", err
	}
	if err := s.wh.CreateTable(ctx, dataset, table, fields); err != nil {
		return "", fault.Wrapf(err, "Failed to create table")
	}
	return fmt.Sprintf("Successfully created table: %s.%s", dataset, table), nil
}

// UploadCSV bulk-appends CSV data to an existing table and blocks until the
// load job completes.
func (s *Service) UploadCSV(ctx context.Context, dataset, table string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fault.BadRequestf("Empty CSV file uploaded")
	}
	exists, err := s.wh.TableExists(ctx, dataset, table)
	if err != nil {
		return "", fault.Wrapf(err, "Failed to upload data to table")
	}
	if !exists {
		return "", fault.NotFoundf("Table not found: %s", table)
	}
	jobID := "jobId_" + uuid.NewString()
	if err := s.wh.LoadCSV(ctx, dataset, table, jobID, data); err != nil {
		return "", fault.Wrapf(err, "Failed to upload data to table")
	}
	return fmt.Sprintf("Successfully appended data from CSV to table: %s.%s", dataset, table), nil
}

// DeleteTable deletes a table; the vendor's not-found is surfaced as NotFound.
func (s *Service) DeleteTable(ctx context.Context, dataset, table string) (string, error) {
	if err := s.wh.DeleteTable(ctx, dataset, table); err != nil {
		if fault.IsNotFound(err) {
			return "", fault.NotFoundf("Table not found: %s", table)
		}
		return "", fault.Wrapf(err, "Failed to delete table")
	}
	return "Table deleted successfully: " + table, nil
}
