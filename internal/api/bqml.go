package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) registerModels(r chi.Router) {
	r.Route("/bigquery-ai", func(r chi.Router) {
		r.Get("/model/{datasetName}", h.listModels)
		r.Post("/model/{datasetName}", h.createModel)
		r.Delete("/model/{datasetName}", h.deleteModel)
		r.Get("/model/{datasetName}/{modelName}", h.evaluateModel)
		r.Get("/checkTraining/{jobId}", h.checkTraining)
	})
}

func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	addEvent(r, "models.list", map[string]any{"dataset": dataset})
	models, err := h.svcs.Models.ListModels(r.Context(), dataset)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, models)
}

func (h *handlers) createModel(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	var in struct {
		ModelName string `json:"modelName"`
		SQL       string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ModelName == "" || in.SQL == "" {
		respondError(w, r, 400, "Missing required fields in request: modelName or sql")
		return
	}
	addEvent(r, "model.create", map[string]any{"dataset": dataset, "model": in.ModelName})
	msg, err := h.svcs.Models.CreateModel(r.Context(), dataset, in.ModelName, in.SQL)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) deleteModel(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	model := r.URL.Query().Get("modelName")
	if model == "" {
		respondError(w, r, 400, "modelName is required")
		return
	}
	addEvent(r, "model.delete", map[string]any{"dataset": dataset, "model": model})
	msg, err := h.svcs.Models.DeleteModel(r.Context(), dataset, model)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) evaluateModel(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "datasetName")
	model := chi.URLParam(r, "modelName")
	var in struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.SQL == "" {
		respondError(w, r, 400, "Missing required fields in request: sql")
		return
	}
	addEvent(r, "model.evaluate", map[string]any{"dataset": dataset, "model": model})
	msg, err := h.svcs.Models.EvaluateModel(r.Context(), dataset, model, in.SQL)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) checkTraining(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	addEvent(r, "job.status", map[string]any{"jobId": jobID})
	status, err := h.svcs.Models.CheckTraining(r.Context(), jobID)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, status)
}
