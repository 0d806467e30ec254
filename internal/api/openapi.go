package api

import (
	"encoding/json"
	"net/http"

	"github.com/stratusops/stratus/internal/version"
)

func openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Minimal OpenAPI 3.0 spec describing the primary API endpoints
	spec := map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "Stratus API", "version": version.Version, "description": "Cloud storage and data warehousing facade (Buckets, Files, Datasets, Tables, Models, Observability)"},
		"servers": []any{map[string]any{"url": "/"}},
		"paths": map[string]any{
			"/cloud-storage/bucket": map[string]any{
				"get":  map[string]any{"summary": "List buckets", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"post": map[string]any{"summary": "Create bucket", "parameters": []any{map[string]any{"name": "bucketName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/cloud-storage/bucket/{bucketName}": map[string]any{
				"parameters": []any{map[string]any{"name": "bucketName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "List files in bucket", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/cloud-storage/bucketFile/{bucketName}": map[string]any{
				"parameters": []any{map[string]any{"name": "bucketName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "Download file", "parameters": []any{map[string]any{"name": "fileName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"post":       map[string]any{"summary": "Upload file", "requestBody": map[string]any{"required": true, "content": map[string]any{"multipart/form-data": map[string]any{"schema": map[string]any{"type": "object", "properties": map[string]any{"file": map[string]any{"type": "string", "format": "binary"}}, "required": []any{"file"}}}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"delete":     map[string]any{"summary": "Delete file", "parameters": []any{map[string]any{"name": "fileName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/data-warehousing/dataset": map[string]any{
				"get": map[string]any{"summary": "List datasets", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/data-warehousing/dataset/{datasetName}": map[string]any{
				"parameters": []any{map[string]any{"name": "datasetName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "List tables in dataset", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"post":       map[string]any{"summary": "Create dataset", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"delete":     map[string]any{"summary": "Delete dataset", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/data-warehousing/data/{datasetName}": map[string]any{
				"parameters": []any{map[string]any{"name": "datasetName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}, map[string]any{"name": "tableName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "Read table data", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"post":       map[string]any{"summary": "Create table", "requestBody": map[string]any{"required": true, "content": map[string]any{"application/json": map[string]any{"schema": map[string]any{"$ref": "#/components/schemas/TableSchema"}}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"delete":     map[string]any{"summary": "Delete table", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/data-warehousing/data/{datasetName}/upload": map[string]any{
				"post": map[string]any{"summary": "Load CSV into table", "parameters": []any{map[string]any{"name": "tableName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}}, "requestBody": map[string]any{"required": true, "content": map[string]any{"multipart/form-data": map[string]any{"schema": map[string]any{"type": "object", "properties": map[string]any{"file": map[string]any{"type": "string", "format": "binary"}}, "required": []any{"file"}}}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/bigquery-ai/model/{datasetName}": map[string]any{
				"parameters": []any{map[string]any{"name": "datasetName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "List models", "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"post":       map[string]any{"summary": "Create model", "requestBody": map[string]any{"required": true, "content": map[string]any{"application/json": map[string]any{"schema": map[string]any{"type": "object", "properties": map[string]any{"modelName": map[string]any{"type": "string"}, "sql": map[string]any{"type": "string"}}, "required": []any{"modelName", "sql"}}}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
				"delete":     map[string]any{"summary": "Delete model", "parameters": []any{map[string]any{"name": "modelName", "in": "query", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/bigquery-ai/model/{datasetName}/{modelName}": map[string]any{
				"parameters": []any{map[string]any{"name": "datasetName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}, map[string]any{"name": "modelName", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
				"get":        map[string]any{"summary": "Evaluate model", "requestBody": map[string]any{"required": true, "content": map[string]any{"application/json": map[string]any{"schema": map[string]any{"type": "object", "properties": map[string]any{"sql": map[string]any{"type": "string"}}, "required": []any{"sql"}}}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/bigquery-ai/checkTraining/{jobId}": map[string]any{
				"get": map[string]any{"summary": "Check training job status", "parameters": []any{map[string]any{"name": "jobId", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/obs/metrics":  map[string]any{"get": map[string]any{"summary": "Server metrics", "responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
			"/obs/errors":   map[string]any{"get": map[string]any{"summary": "Recent error traces", "responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
			"/trace/recent": map[string]any{"get": map[string]any{"summary": "Recent traces", "responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
			"/trace/{id}":   map[string]any{"get": map[string]any{"summary": "Trace detail", "parameters": []any{map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}}, "responses": map[string]any{"200": map[string]any{"description": "OK"}}}},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"TableSchema": map[string]any{"type": "object", "properties": map[string]any{
					"fields": map[string]any{"type": "array", "items": map[string]any{"type": "object", "properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"type": map[string]any{"type": "string"},
					}, "required": []any{"name", "type"}}},
				}, "required": []any{"fields"}},
			},
		},
	}
	json.NewEncoder(w).Encode(spec)
}
