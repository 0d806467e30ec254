package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) registerWarehouse(r chi.Router) {
	r.Route("/data-warehousing", func(r chi.Router) {
		r.Get("/dataset", h.listDatasets)
		r.Get("/dataset/{datasetName}", h.datasetInfo)
		r.Post("/dataset/{datasetName}", h.createDataset)
		r.Delete("/dataset/{datasetName}", h.deleteDataset)
		r.Get("/data/{datasetName}", h.getData)
		r.Post("/data/{datasetName}", h.createTable)
		r.Delete("/data/{datasetName}", h.deleteTable)
		r.Post("/data/{datasetName}/upload", h.uploadCSV)
	})
}

func (h *handlers) listDatasets(w http.ResponseWriter, r *http.Request) {
	addEvent(r, "datasets.list", nil)
	names, err := h.svcs.Warehouse.ListDatasets(r.Context())
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (h *handlers) datasetInfo(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	addEvent(r, "dataset.info", map[string]any{"dataset": dataset})
	tables, err := h.svcs.Warehouse.DatasetInfo(r.Context(), dataset)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, tables)
}

func (h *handlers) createDataset(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	addEvent(r, "dataset.create", map[string]any{"dataset": dataset})
	msg, err := h.svcs.Warehouse.CreateDataset(r.Context(), dataset)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) deleteDataset(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	addEvent(r, "dataset.delete", map[string]any{"dataset": dataset})
	msg, err := h.svcs.Warehouse.DeleteDataset(r.Context(), dataset)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) getData(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	table := r.URL.Query().Get("tableName")
	if table == "" {
		respondError(w, r, 400, "tableName is required")
		return
	}
	addEvent(r, "table.read", map[string]any{"dataset": dataset, "table": table})
	rows, err := h.svcs.Warehouse.GetData(r.Context(), dataset, table)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, rows)
}

func (h *handlers) createTable(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	table := r.URL.Query().Get("tableName")
	if table == "" {
		respondError(w, r, 400, "tableName is required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, 400, err.Error())
		return
	}
	addEvent(r, "table.create", map[string]any{"dataset": dataset, "table": table})
	msg, err := h.svcs.Warehouse.CreateTable(r.Context(), dataset, table, body)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) deleteTable(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	table := r.URL.Query().Get("tableName")
	if table == "" {
		respondError(w, r, 400, "tableName is required")
		return
	}
	addEvent(r, "table.delete", map[string]any{"dataset": dataset, "table": table})
	msg, err := h.svcs.Warehouse.DeleteTable(r.Context(), dataset, table)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) uploadCSV(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	table := r.URL.Query().Get("tableName")
	if table == "" {
		respondError(w, r, 400, "tableName is required")
		return
	}
	data, hdr, err := h.readMultipartFile(w, r)
	if err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			respondError(w, r, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		respondError(w, r, 400, "file is required")
		return
	}
	addEvent(r, "table.load", map[string]any{"dataset": dataset, "table": table, "file": hdr.Filename, "size": len(data)})
	msg, err := h.svcs.Warehouse.UploadCSV(r.Context(), dataset, table, data)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}
