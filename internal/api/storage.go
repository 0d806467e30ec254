package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) registerStorage(r chi.Router) {
	r.Route("/cloud-storage", func(r chi.Router) {
		r.Get("/bucket", h.listBuckets)
		r.Post("/bucket", h.createBucket)
		r.Get("/bucket/{bucketName}", h.listBucketFiles)
		r.Get("/bucketFile/{bucketName}", h.downloadFile)
		r.Post("/bucketFile/{bucketName}", h.uploadFile)
		r.Delete("/bucketFile/{bucketName}", h.deleteFile)
	})
}

func (h *handlers) listBuckets(w http.ResponseWriter, r *http.Request) {
	addEvent(r, "buckets.list", nil)
	names, err := h.svcs.Storage.ListBuckets(r.Context())
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (h *handlers) createBucket(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucketName")
	if bucket == "" {
		respondError(w, r, 400, "bucketName is required")
		return
	}
	addEvent(r, "bucket.create", map[string]any{"bucket": bucket})
	msg, err := h.svcs.Storage.CreateBucket(r.Context(), bucket)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) listBucketFiles(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucketName")
	addEvent(r, "objects.list", map[string]any{"bucket": bucket})
	files, err := h.svcs.Storage.ListFiles(r.Context(), bucket)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeJSON(w, files)
}

func (h *handlers) downloadFile(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucketName")
	file := r.URL.Query().Get("fileName")
	if file == "" {
		respondError(w, r, 400, "fileName is required")
		return
	}
	addEvent(r, "object.download", map[string]any{"bucket": bucket, "key": file})
	data, err := h.svcs.Storage.Download(r.Context(), bucket, file)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+file+"\"")
	w.Write(data)
}

// readMultipartFile pulls the "file" form part, bounded by the configured
// upload limit.
func (h *handlers) readMultipartFile(w http.ResponseWriter, r *http.Request) ([]byte, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, err
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, hdr, nil
}

func (h *handlers) uploadFile(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucketName")
	data, hdr, err := h.readMultipartFile(w, r)
	if err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			respondError(w, r, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		respondError(w, r, 400, "file is required")
		return
	}
	addEvent(r, "object.upload", map[string]any{"bucket": bucket, "key": hdr.Filename, "size": len(data)})
	msg, err := h.svcs.Storage.Upload(r.Context(), bucket, hdr.Filename, data, hdr.Header.Get("Content-Type"))
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func (h *handlers) deleteFile(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucketName")
	file := r.URL.Query().Get("fileName")
	if file == "" {
		respondError(w, r, 400, "fileName is required")
		return
	}
	addEvent(r, "object.delete", map[string]any{"bucket": bucket, "key": file})
	msg, err := h.svcs.Storage.Delete(r.Context(), bucket, file)
	if err != nil {
		respondFault(w, r, err)
		return
	}
	writeText(w, msg)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(msg))
}
