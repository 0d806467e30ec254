package warehouse

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stratusops/stratus/internal/fault"
)

// fakeWarehouse is an in-memory Warehouse.
type fakeWarehouse struct {
	datasets map[string]map[string]*fakeTable
	loadErr  error
	loads    []string // job ids passed to LoadCSV
	loadData [][]byte // payloads passed to LoadCSV
	deletes  int      // DeleteDataset invocations
}

type fakeTable struct {
	fields []Field
	rows   [][]any
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{datasets: map[string]map[string]*fakeTable{}}
}

func (f *fakeWarehouse) ListDatasets(ctx context.Context) ([]string, error) {
	out := []string{}
	for name := range f.datasets {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeWarehouse) ListTables(ctx context.Context, dataset string) ([]string, error) {
	tables, ok := f.datasets[dataset]
	if !ok {
		return nil, fault.NotFoundf("dataset absent")
	}
	out := []string{}
	for name := range tables {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeWarehouse) CreateDataset(ctx context.Context, dataset string) error {
	if _, ok := f.datasets[dataset]; ok {
		return fault.Conflictf("dataset already exists")
	}
	f.datasets[dataset] = map[string]*fakeTable{}
	return nil
}

func (f *fakeWarehouse) DatasetExists(ctx context.Context, dataset string) (bool, error) {
	_, ok := f.datasets[dataset]
	return ok, nil
}

func (f *fakeWarehouse) DeleteDataset(ctx context.Context, dataset string) error {
	f.deletes++
	delete(f.datasets, dataset)
	return nil
}

func (f *fakeWarehouse) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	_, ok := f.datasets[dataset][table]
	return ok, nil
}

func (f *fakeWarehouse) CreateTable(ctx context.Context, dataset, table string, fields []Field) error {
	ds, ok := f.datasets[dataset]
	if !ok {
		return fault.NotFoundf("dataset absent")
	}
	ds[table] = &fakeTable{fields: fields}
	return nil
}

func (f *fakeWarehouse) DeleteTable(ctx context.Context, dataset, table string) error {
	if _, ok := f.datasets[dataset][table]; !ok {
		return fault.NotFoundf("table absent")
	}
	delete(f.datasets[dataset], table)
	return nil
}

func (f *fakeWarehouse) ReadTable(ctx context.Context, dataset, table string) ([]string, [][]any, error) {
	t, ok := f.datasets[dataset][table]
	if !ok {
		return nil, nil, fault.NotFoundf("table absent")
	}
	names := make([]string, 0, len(t.fields))
	for _, fld := range t.fields {
		names = append(names, fld.Name)
	}
	return names, t.rows, nil
}

func (f *fakeWarehouse) LoadCSV(ctx context.Context, dataset, table, jobID string, data []byte) error {
	f.loads = append(f.loads, jobID)
	f.loadData = append(f.loadData, data)
	return f.loadErr
}

func TestCreateTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWarehouse()
	svc := New(fw)
	if _, err := svc.CreateDataset(ctx, "ds"); err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	if _, err := svc.CreateTable(ctx, "ds", "events", []byte(`{"fields":[{"name":"id","type":"INTEGER"}]}`)); err != nil {
		t.Fatalf("create table: %v", err)
	}
	tables, err := svc.DatasetInfo(ctx, "ds")
	if err != nil {
		t.Fatalf("dataset info: %v", err)
	}
	found := false
	for _, name := range tables {
		if name == "events" { found = true }
	}
	if !found {
		t.Fatalf("expected events in %v", tables)
	}
}

func TestCreateTableRejectsUnknownType(t *testing.T) {
	svc := New(newFakeWarehouse())
	_, err := svc.CreateTable(context.Background(), "ds", "t", []byte(`{"fields":[{"name":"id","type":"VARCHAR"}]}`))
	if fault.KindOf(err) != fault.BadRequest {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestCreateTableRejectsMalformedBody(t *testing.T) {
	svc := New(newFakeWarehouse())
	for _, body := range []string{"not json", "{}", `{"fields":[]}`, `{"fields":[{"type":"STRING"}]}`} {
		_, err := svc.CreateTable(context.Background(), "ds", "t", []byte(body))
		if fault.KindOf(err) != fault.BadRequest {
			t.Fatalf("body %q: expected BadRequest, got %v", body, err)
		}
	}
}

func TestParseSchemaNormalizesTypes(t *testing.T) {
	fields, err := ParseSchema([]byte(`{"fields":[{"name":"a","type":"int64"},{"name":"b","type":"Bool"},{"name":"c","type":"struct"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"INTEGER", "BOOLEAN", "RECORD"}
	for i, f := range fields {
		if f.Type != want[i] {
			t.Fatalf("field %d: got %s, want %s", i, f.Type, want[i])
		}
	}
}

func TestGetDataEmptyTableIsNotFound(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{
		"empty": {fields: []Field{{Name: "id", Type: "INTEGER"}}},
	}
	svc := New(fw)
	_, err := svc.GetData(ctx, "ds", "empty")
	if !fault.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "no data") {
		t.Fatalf("message %q should mention no data", err.Error())
	}
}

func TestGetDataZipsRowsAgainstFieldNames(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{
		"users": {
			fields: []Field{{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "STRING"}},
			rows:   [][]any{{int64(1), "ada"}, {int64(2), "grace"}},
		},
	}
	svc := New(fw)
	rows, err := svc.GetData(ctx, "ds", "users")
	if err != nil {
		t.Fatalf("get data: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["id"] != int64(1) || rows[0]["name"] != "ada" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
}

func TestGetDataMissingTable(t *testing.T) {
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{}
	svc := New(fw)
	_, err := svc.GetData(context.Background(), "ds", "ghost")
	if !fault.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteDatasetMissingNeverDeletes(t *testing.T) {
	fw := newFakeWarehouse()
	svc := New(fw)
	_, err := svc.DeleteDataset(context.Background(), "ghost")
	if !fault.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if fw.deletes != 0 {
		t.Fatalf("delete should not have been attempted")
	}
}

func TestUploadCSVEmptyFile(t *testing.T) {
	svc := New(newFakeWarehouse())
	_, err := svc.UploadCSV(context.Background(), "ds", "t", nil)
	if fault.KindOf(err) != fault.BadRequest {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "Empty CSV file uploaded") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestUploadCSVGeneratesUniqueJobIDs(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{"t": {}}
	svc := New(fw)
	for i := 0; i < 2; i++ {
		if _, err := svc.UploadCSV(ctx, "ds", "t", []byte("id\n1\n")); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}
	if len(fw.loads) != 2 || fw.loads[0] == fw.loads[1] {
		t.Fatalf("expected two distinct job ids, got %v", fw.loads)
	}
	if !strings.HasPrefix(fw.loads[0], "jobId_") {
		t.Fatalf("job id %q should carry the jobId_ prefix", fw.loads[0])
	}
}

func TestUploadCSVPassesEveryRowThrough(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{"t": {}}
	svc := New(fw)
	csv := []byte("1,emea\n2,apac\n3,amer\n")
	if _, err := svc.UploadCSV(ctx, "ds", "t", csv); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(fw.loadData) != 1 {
		t.Fatalf("expected one load, got %d", len(fw.loadData))
	}
	if !bytes.Equal(fw.loadData[0], csv) {
		t.Fatalf("payload altered: got %q, want %q", fw.loadData[0], csv)
	}
	if got := bytes.Count(fw.loadData[0], []byte("\n")); got != 3 {
		t.Fatalf("expected 3 rows to reach the loader, got %d", got)
	}
}

func TestUploadCSVJobFailureSurfacesVendorText(t *testing.T) {
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{"t": {}}
	fw.loadErr = fault.Upstreamf("was unable to load data: bad row 7")
	svc := New(fw)
	_, err := svc.UploadCSV(context.Background(), "ds", "t", []byte("x\n"))
	if fault.KindOf(err) != fault.Upstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad row 7") {
		t.Fatalf("vendor detail lost: %q", err.Error())
	}
}

func TestDeleteTableMissingIsNotFound(t *testing.T) {
	fw := newFakeWarehouse()
	fw.datasets["ds"] = map[string]*fakeTable{}
	svc := New(fw)
	_, err := svc.DeleteTable(context.Background(), "ds", "ghost")
	if !fault.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Table not found") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
