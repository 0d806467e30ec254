// Package bq adapts the BigQuery SDK to the warehouse and model facades.
package bq

import (
	"bytes"
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/stratusops/stratus/internal/bqml"
	"github.com/stratusops/stratus/internal/config"
	"github.com/stratusops/stratus/internal/fault"
	"github.com/stratusops/stratus/internal/warehouse"
)

const listPageSize = 100

type Client struct {
	bq          *bigquery.Client
	location    string
	waitTimeout time.Duration
}

var (
	_ warehouse.Warehouse = (*Client)(nil)
	_ bqml.ModelStore     = (*Client)(nil)
)

func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	client, err := bigquery.NewClient(ctx, cfg.GCPProject)
	if err != nil {
		return nil, err
	}
	return &Client{bq: client, location: cfg.BQLocation, waitTimeout: cfg.JobWaitTimeout}, nil
}

func (c *Client) Close() error { return c.bq.Close() }

// wait blocks on a job with a bounded deadline so a wedged warehouse job
// cannot pin a request handler forever.
func (c *Client) wait(ctx context.Context, job *bigquery.Job) (*bigquery.JobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()
	return job.Wait(ctx)
}

func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	it := c.bq.Datasets(ctx)
	it.PageInfo().MaxSize = listPageSize
	out := []string{}
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fault.FromWarehouse(err, "list datasets")
		}
		out = append(out, ds.DatasetID)
	}
	return out, nil
}

func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	it := c.bq.Dataset(dataset).Tables(ctx)
	it.PageInfo().MaxSize = listPageSize
	out := []string{}
	for {
		tbl, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fault.FromWarehouse(err, "list tables")
		}
		out = append(out, tbl.TableID)
	}
	return out, nil
}

func (c *Client) CreateDataset(ctx context.Context, dataset string) error {
	err := c.bq.Dataset(dataset).Create(ctx, &bigquery.DatasetMetadata{Location: c.location})
	if err != nil {
		return fault.FromWarehouse(err, "create dataset")
	}
	return nil
}

func (c *Client) DatasetExists(ctx context.Context, dataset string) (bool, error) {
	_, err := c.bq.Dataset(dataset).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fault.FromWarehouse(err, "dataset metadata")
	}
	return true, nil
}

func (c *Client) DeleteDataset(ctx context.Context, dataset string) error {
	if err := c.bq.Dataset(dataset).DeleteWithContents(ctx); err != nil {
		return fault.FromWarehouse(err, "delete dataset")
	}
	return nil
}

func (c *Client) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	_, err := c.bq.Dataset(dataset).Table(table).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fault.FromWarehouse(err, "table metadata")
	}
	return true, nil
}

func (c *Client) CreateTable(ctx context.Context, dataset, table string, fields []warehouse.Field) error {
	schema := make(bigquery.Schema, 0, len(fields))
	for _, f := range fields {
		schema = append(schema, &bigquery.FieldSchema{Name: f.Name, Type: bigquery.FieldType(f.Type)})
	}
	err := c.bq.Dataset(dataset).Table(table).Create(ctx, &bigquery.TableMetadata{Schema: schema})
	if err != nil {
		return fault.FromWarehouse(err, "create table")
	}
	return nil
}

func (c *Client) DeleteTable(ctx context.Context, dataset, table string) error {
	if err := c.bq.Dataset(dataset).Table(table).Delete(ctx); err != nil {
		return fault.FromWarehouse(err, "delete table")
	}
	return nil
}

func (c *Client) ReadTable(ctx context.Context, dataset, table string) ([]string, [][]any, error) {
	tbl := c.bq.Dataset(dataset).Table(table)
	md, err := tbl.Metadata(ctx)
	if err != nil {
		return nil, nil, fault.FromWarehouse(err, "table metadata")
	}
	names := make([]string, 0, len(md.Schema))
	for _, f := range md.Schema {
		names = append(names, f.Name)
	}
	it := tbl.Read(ctx)
	rows := [][]any{}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fault.FromWarehouse(err, "read table")
		}
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v
		}
		rows = append(rows, vals)
	}
	return names, rows, nil
}

func (c *Client) LoadCSV(ctx context.Context, dataset, table, jobID string, data []byte) error {
	src := bigquery.NewReaderSource(bytes.NewReader(data))
	src.SourceFormat = bigquery.CSV
	loader := c.bq.Dataset(dataset).Table(table).LoaderFrom(src)
	loader.JobID = jobID
	loader.Location = c.location
	job, err := loader.Run(ctx)
	if err != nil {
		return fault.FromWarehouse(err, "start load job")
	}
	status, err := c.wait(ctx, job)
	if err != nil {
		return fault.FromWarehouse(err, "wait for load job")
	}
	if err := status.Err(); err != nil {
		return fault.Upstreamf("was unable to load data: %v", err)
	}
	return nil
}

func (c *Client) ListModels(ctx context.Context, dataset string) ([]bqml.ModelInfo, error) {
	it := c.bq.Dataset(dataset).Models(ctx)
	it.PageInfo().MaxSize = listPageSize
	out := []bqml.ModelInfo{}
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fault.FromWarehouse(err, "list models")
		}
		info := bqml.ModelInfo{ID: m.ModelID}
		// Description and type only come with per-model metadata.
		if md, err := m.Metadata(ctx); err == nil {
			info.Description = md.Description
			info.Type = md.Type
		}
		out = append(out, info)
	}
	return out, nil
}

func (c *Client) DeleteModel(ctx context.Context, dataset, model string) error {
	if err := c.bq.Dataset(dataset).Model(model).Delete(ctx); err != nil {
		return fault.FromWarehouse(err, "delete model")
	}
	return nil
}

// RunQuery runs a query under the caller-chosen job id and blocks until the
// job completes. A job-level failure is surfaced with its error detail.
func (c *Client) RunQuery(ctx context.Context, jobID, sql string) error {
	q := c.bq.Query(sql)
	q.JobID = jobID
	q.Location = c.location
	job, err := q.Run(ctx)
	if err != nil {
		return fault.FromWarehouse(err, "run query")
	}
	status, err := c.wait(ctx, job)
	if err != nil {
		return fault.FromWarehouse(err, "wait for query job")
	}
	if err := status.Err(); err != nil {
		return fault.Upstreamf("query job failed: %v", err)
	}
	return nil
}

func (c *Client) JobState(ctx context.Context, jobID string) (*bqml.JobState, error) {
	job, err := c.bq.JobFromIDLocation(ctx, jobID, c.location)
	if err != nil {
		return nil, fault.FromWarehouse(err, "lookup job")
	}
	status := job.LastStatus()
	if status == nil {
		if status, err = job.Status(ctx); err != nil {
			return nil, fault.FromWarehouse(err, "job status")
		}
	}
	out := &bqml.JobState{State: stateName(status.State)}
	if err := status.Err(); err != nil {
		out.ErrorDetail = err.Error()
	}
	return out, nil
}

func stateName(s bigquery.State) string {
	switch s {
	case bigquery.Pending:
		return "PENDING"
	case bigquery.Running:
		return "RUNNING"
	case bigquery.Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

func isNotFound(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == 404
	}
	return false
}
