package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/stratusops/stratus/internal/db"
	"github.com/stratusops/stratus/internal/logging"
	"github.com/stratusops/stratus/internal/models"
)

var appStart = time.Now()
var totalRequests uint64
var total4xx uint64
var total5xx uint64
var bytesIn uint64
var bytesOut uint64
var totalDurationNs uint64

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(appStart).Seconds()
	tr := atomic.LoadUint64(&totalRequests)
	dn := atomic.LoadUint64(&totalDurationNs)
	avgMs := 0.0
	if tr > 0 {
		avgMs = float64(dn) / float64(tr) / 1e6
	}
	json.NewEncoder(w).Encode(map[string]any{
		"uptimeSec":     uptime,
		"uptimeHuman":   (time.Duration(uptime) * time.Second).String(),
		"startedAt":     appStart.Format(time.RFC3339),
		"goroutines":    runtime.NumGoroutine(),
		"heapAlloc":     m.HeapAlloc,
		"heapSys":       m.HeapSys,
		"lastGCUnix":    m.LastGC,
		"gcNum":         m.NumGC,
		"totalRequests": tr,
		"total4xx":      atomic.LoadUint64(&total4xx),
		"total5xx":      atomic.LoadUint64(&total5xx),
		"bytesIn":       atomic.LoadUint64(&bytesIn),
		"bytesOut":      atomic.LoadUint64(&bytesOut),
		"avgDurationMs": avgMs,
	})
}

// errorsHandler returns recent traces with errors (status >= 400) and the last error event message.
func errorsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var trs []models.TraceRow
	if err := db.DB.Where("status >= ?", 400).Order("started desc").Limit(200).Find(&trs).Error; err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	out := make([]map[string]any, 0, len(trs))
	for _, t := range trs {
		var ev models.TraceEventRow
		_ = db.DB.Where("trace_id = ? AND name = ?", t.ID, "error").Order("time desc").First(&ev).Error
		msg := ""
		if ev.Fields != "" {
			var f map[string]any
			_ = json.Unmarshal([]byte(ev.Fields), &f)
			if s, ok := f["message"].(string); ok {
				msg = s
			}
		}
		out = append(out, map[string]any{
			"id":         t.ID,
			"method":     t.Method,
			"path":       t.Path,
			"status":     t.Status,
			"durationMs": float64(t.DurationNs) / 1e6,
			"message":    msg,
			"started":    t.Started,
		})
	}
	json.NewEncoder(w).Encode(out)
}

// logsRecent returns recent structured logs; sourced from DB to survive restarts.
func logsRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			limit = i
		}
	}
	var rows []models.LogEntry
	if err := db.DB.Order("time desc").Limit(limit).Find(&rows).Error; err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		var f map[string]any
		if r.Fields != "" {
			_ = json.Unmarshal([]byte(r.Fields), &f)
		}
		out = append(out, map[string]any{"time": r.Time, "level": r.Level, "msg": r.Msg, "fields": f})
	}
	json.NewEncoder(w).Encode(out)
}

// logsDownload returns recent logs as NDJSON for easy download
func logsDownload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-store")
	limit := 1000
	if v := r.URL.Query().Get("limit"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			limit = i
		}
	}
	enc := json.NewEncoder(w)
	for _, e := range logging.Recent(limit) {
		_ = enc.Encode(e)
	}
}

// logsGetLevel returns current log level
func logsGetLevel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"level": logging.GetLevel()})
}

// logsSetLevel updates global log level
func logsSetLevel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if in.Level == "" {
		http.Error(w, "level required", 400)
		return
	}
	logging.SetLevel(in.Level)
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "level": logging.GetLevel()})
}

// logsStream streams logs via Server-Sent Events
func logsStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", 500)
		return
	}
	// optional level filter
	qLevel := r.URL.Query().Get("level")
	write := func(e any) {
		b, _ := json.Marshal(e)
		w.Write([]byte("data: "))
		w.Write(b)
		w.Write([]byte("\n\n"))
		fl.Flush()
	}
	// send a small backlog first
	for _, e := range logging.Recent(50) {
		if qLevel == "" || e.Level == qLevel {
			write(e)
		}
	}
	ch, cancel := logging.Subscribe()
	defer cancel()
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if qLevel == "" || e.Level == qLevel {
				write(e)
			}
		}
	}
}
